package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/fleet-mirror/internal/dispatcher"
	"github.com/benmeehan/fleet-mirror/internal/mocks"
	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/pkg/location"
)

func awaitEvents(t *testing.T, rec *mocks.EventRecorder, n int) []dispatcher.Event {
	t.Helper()
	var got []dispatcher.Event
	require.Eventually(t, func() bool {
		got = append(got, rec.Drain()...)
		return len(got) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestGeolocationService_PostsFix(t *testing.T) {
	provider := new(mocks.MockLocationProvider)
	provider.On("GetLocation", mock.Anything).Return(location.Location{Latitude: 25.03, Longitude: 121.56, Accuracy: 20}, nil)
	rec := new(mocks.EventRecorder)

	svc := NewGeolocationService(time.Second, provider, rec, zerolog.Nop())
	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())

	events := awaitEvents(t, rec, 1)
	assert.Equal(t, dispatcher.DeviceLocation{Location: models.LatLng{Lat: 25.03, Lng: 121.56}}, events[0])

	require.NoError(t, svc.Stop())
	assert.Error(t, svc.Stop())
	provider.AssertExpectations(t)
}

func TestGeolocationService_PostsFailure(t *testing.T) {
	rec := new(mocks.EventRecorder)
	svc := NewGeolocationService(time.Second, location.NoneProvider{}, rec, zerolog.Nop())
	require.NoError(t, svc.Start())

	events := awaitEvents(t, rec, 1)
	ev, ok := events[0].(dispatcher.DeviceLocation)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Err, location.ErrUnavailable)
	require.NoError(t, svc.Stop())
}

func TestGeolocationService_TimeoutIsReported(t *testing.T) {
	provider := new(mocks.MockLocationProvider)
	provider.On("GetLocation", mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(location.Location{}, context.DeadlineExceeded)
	rec := new(mocks.EventRecorder)

	svc := NewGeolocationService(20*time.Millisecond, provider, rec, zerolog.Nop())
	require.NoError(t, svc.Start())

	events := awaitEvents(t, rec, 1)
	assert.ErrorIs(t, events[0].(dispatcher.DeviceLocation).Err, context.DeadlineExceeded)
	require.NoError(t, svc.Stop())
}

func TestGeolocationService_StopAbandonsLookup(t *testing.T) {
	provider := new(mocks.MockLocationProvider)
	provider.On("GetLocation", mock.Anything).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Return(location.Location{}, context.Canceled)
	rec := new(mocks.EventRecorder)

	svc := NewGeolocationService(time.Minute, provider, rec, zerolog.Nop())
	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())

	assert.Empty(t, rec.Drain())
}
