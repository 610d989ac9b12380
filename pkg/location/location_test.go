package location

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarm/serial"
	"googlemaps.github.io/maps"
)

const gpsStream = `garbage line
$GPRMC,015540.000,A,2506.0000,N,12133.0000,E,0.0,0.0,151026,,,A*69
$GPGGA,015539.000,,,,,0,0,,,M,,M,,*43
$GNGGA,015540.000,2506.0000,N,12133.0000,E,1,10,0.9,20.0,M,15.0,M,,*7A
$GPGGA,092750.000,5321.6802,N,00630.3372,W,1,8,1.03,61.7,M,55.2,M,,*76
`

func TestReadFix_FirstValidGGA(t *testing.T) {
	loc, err := ReadFix(strings.NewReader(gpsStream))
	require.NoError(t, err)
	assert.InDelta(t, 25.1, loc.Latitude, 1e-9)
	assert.InDelta(t, 121.55, loc.Longitude, 1e-9)
	assert.InDelta(t, 0.9, loc.Accuracy, 1e-9)
}

func TestReadFix_NoFix(t *testing.T) {
	_, err := ReadFix(strings.NewReader("$GPGGA,015539.000,,,,,0,0,,,M,,M,,*43\n"))
	assert.ErrorIs(t, err, ErrUnavailable)
}

type blockingPort struct {
	closed chan struct{}
}

func (p *blockingPort) Read([]byte) (int, error) {
	<-p.closed
	return 0, io.EOF
}

func (p *blockingPort) Close() error {
	close(p.closed)
	return nil
}

func TestDeviceSensorProvider_ContextCancel(t *testing.T) {
	port := &blockingPort{closed: make(chan struct{})}
	p := NewDeviceSensorProvider("/dev/ttyUSB0", 9600)
	p.open = func(*serial.Config) (io.ReadCloser, error) { return port, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.GetLocation(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeviceSensorProvider_OpenFailure(t *testing.T) {
	p := NewDeviceSensorProvider("/dev/missing", 9600)
	p.open = func(*serial.Config) (io.ReadCloser, error) { return nil, errors.New("no such device") }

	_, err := p.GetLocation(context.Background())
	assert.ErrorContains(t, err, "/dev/missing")
}

type fakeGeolocator struct {
	req  *maps.GeolocationRequest
	resp *maps.GeolocationResult
	err  error
}

func (f *fakeGeolocator) Geolocate(_ context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error) {
	f.req = r
	return f.resp, f.err
}

type fakeScanner struct {
	aps []maps.WiFiAccessPoint
	err error
}

func (f fakeScanner) WiFiAccessPoints(context.Context) ([]maps.WiFiAccessPoint, error) {
	return f.aps, f.err
}

func (f fakeScanner) CellTowers(context.Context, int) ([]maps.CellTower, error) {
	return nil, errors.New("no modem")
}

func TestGoogleGeolocationProvider_FallsBackToIP(t *testing.T) {
	client := &fakeGeolocator{resp: &maps.GeolocationResult{
		Location: maps.LatLng{Lat: 25.04, Lng: 121.53},
		Accuracy: 1200,
	}}
	g := &GoogleGeolocationProvider{
		client:  client,
		scanner: fakeScanner{err: errors.New("nmcli not found")},
		logger:  zerolog.New(io.Discard),
	}

	loc, err := g.GetLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Location{Latitude: 25.04, Longitude: 121.53, Accuracy: 1200}, loc)
	assert.True(t, client.req.ConsiderIP)
	assert.Empty(t, client.req.WiFiAccessPoints)
	assert.Empty(t, client.req.CellTowers)
}

func TestGoogleGeolocationProvider_Error(t *testing.T) {
	g := &GoogleGeolocationProvider{
		client:  &fakeGeolocator{err: errors.New("quota exceeded")},
		scanner: fakeScanner{},
		logger:  zerolog.New(io.Discard),
	}
	_, err := g.GetLocation(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestParseWiFiList(t *testing.T) {
	out := "AA\\:BB\\:CC\\:DD\\:EE\\:FF:72\nnot-a-mac:10\n11\\:22\\:33\\:44\\:55\\:66:abc\n"
	aps, err := parseWiFiList(out)
	require.NoError(t, err)
	require.Len(t, aps, 1)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", aps[0].MACAddress)
	assert.Equal(t, 72.0, aps[0].SignalStrength)
}

func TestParseModemInfo(t *testing.T) {
	towers, err := parseModemInfo("modem.3gpp.mcc : 466\nmodem.3gpp.mnc : 92\nmodem.3gpp.lac : 2A\nmodem.3gpp.cid : 01F4\n")
	require.NoError(t, err)
	assert.Equal(t, []maps.CellTower{{MobileCountryCode: 466, MobileNetworkCode: 92, LocationAreaCode: 42, CellID: 500}}, towers)

	_, err = parseModemInfo("modem.3gpp.lac : 2A\n")
	assert.Error(t, err)
}

func TestNoneAndStaticProviders(t *testing.T) {
	_, err := NoneProvider{}.GetLocation(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	loc, err := StaticProvider{Location: Location{Latitude: 1, Longitude: 2}}.GetLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, loc.Latitude)
}
