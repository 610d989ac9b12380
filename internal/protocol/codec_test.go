package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/fleet-mirror/internal/models"
	"github.com/benmeehan/fleet-mirror/internal/protocol"
)

// TestDecode_InitialData decodes the message the server sends on connect.
func TestDecode_InitialData(t *testing.T) {
	payload := []byte(`{
		"type": "initial_data",
		"vehicles": [
			{"id": "UBER-001", "lat": 25.1, "lng": 121.55, "speed": 52.3, "direction": 181.4, "status": "busy", "timestamp": 1700000000.5}
		],
		"user_location": {"lat": 25.05, "lng": 121.5}
	}`)

	msg, err := protocol.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, protocol.TypeInitialData, msg.Type)
	require.Len(t, msg.Vehicles, 1)
	assert.Equal(t, models.VehicleRecord{
		ID:       "UBER-001",
		Position: models.LatLng{Lat: 25.1, Lng: 121.55},
		Speed:    52.3,
		Heading:  181.4,
		Status:   models.StatusBusy,
	}, msg.Vehicles[0])
	require.NotNil(t, msg.UserLocation)
	assert.Equal(t, models.LatLng{Lat: 25.05, Lng: 121.5}, *msg.UserLocation)
	assert.Zero(t, msg.Rejected)
}

// TestDecode_VehicleUpdateWithoutLocation checks that vehicle_update never carries a user location.
func TestDecode_VehicleUpdateWithoutLocation(t *testing.T) {
	msg, err := protocol.Decode([]byte(`{"type":"vehicle_update","vehicles":[],"user_location":{"lat":1,"lng":2}}`))
	require.NoError(t, err)

	assert.Equal(t, protocol.TypeVehicleUpdate, msg.Type)
	assert.Empty(t, msg.Vehicles)
	assert.Nil(t, msg.UserLocation)
}

// TestDecode_Malformed covers payloads that must be dropped.
func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"type":`,
		"missing type":     `{"vehicles":[]}`,
		"wrong field type": `{"type":"vehicle_update","vehicles":"none"}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := protocol.Decode([]byte(payload))
			assert.ErrorIs(t, err, protocol.ErrMalformed)
		})
	}
}

// TestDecode_UnknownType keeps the type so the caller can log it.
func TestDecode_UnknownType(t *testing.T) {
	msg, err := protocol.Decode([]byte(`{"type":"weather","vehicles":[]}`))

	assert.ErrorIs(t, err, protocol.ErrUnknownType)
	assert.Equal(t, protocol.MessageType("weather"), msg.Type)
}

// TestDecode_RejectsInvalidEntries drops bad entries but keeps the rest of the snapshot.
func TestDecode_RejectsInvalidEntries(t *testing.T) {
	payload := []byte(`{"type":"vehicle_update","vehicles":[
		{"id":"UBER-001","lat":25.1,"lng":121.5,"speed":40,"direction":10,"status":"available"},
		{"id":"","lat":25.1,"lng":121.5,"speed":40,"direction":10,"status":"available"},
		{"id":"UBER-003","lat":25.1,"lng":121.5,"speed":-1,"direction":10,"status":"available"},
		{"id":"UBER-004","lat":25.1,"lng":121.5,"speed":40,"direction":10,"status":"parked"}
	]}`)

	msg, err := protocol.Decode(payload)
	require.NoError(t, err)

	require.Len(t, msg.Vehicles, 1)
	assert.Equal(t, "UBER-001", msg.Vehicles[0].ID)
	assert.Equal(t, 3, msg.Rejected)
}

// TestDecode_InvalidUserLocationKeepsVehicles drops only the bad location.
func TestDecode_InvalidUserLocationKeepsVehicles(t *testing.T) {
	for _, typ := range []string{"initial_data", "location_updated"} {
		t.Run(typ, func(t *testing.T) {
			payload := []byte(`{"type":"` + typ + `","vehicles":[
				{"id":"UBER-001","lat":25.1,"lng":121.5,"speed":40,"direction":10,"status":"available"}
			],"user_location":{"lat":95,"lng":121.5}}`)

			msg, err := protocol.Decode(payload)
			require.NoError(t, err)

			require.Len(t, msg.Vehicles, 1)
			assert.Equal(t, "UBER-001", msg.Vehicles[0].ID)
			assert.Nil(t, msg.UserLocation)
			assert.Equal(t, 1, msg.Rejected)
		})
	}
}

// TestEncode_UserLocation checks the outbound wire format.
func TestEncode_UserLocation(t *testing.T) {
	payload, err := protocol.Encode(protocol.NewUserLocationMessage(models.LatLng{Lat: 25.04, Lng: 121.53}))
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"user_location","lat":25.04,"lng":121.53}`, string(payload))
}
