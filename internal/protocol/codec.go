package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/benmeehan/fleet-mirror/internal/models"
)

var (
	// ErrMalformed is returned for payloads that are not a valid message envelope.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for well-formed messages with an unsupported type.
	ErrUnknownType = errors.New("unknown message type")
)

var validate = validator.New()

// Decode parses an inbound payload. Invalid vehicle entries and an invalid
// user location are skipped and counted in Message.Rejected rather than
// failing the whole message.
func Decode(payload []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	msg := Message{Type: env.Type}
	switch env.Type {
	case TypeInitialData, TypeVehicleUpdate, TypeLocationUpdated:
	default:
		return msg, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	msg.Vehicles = make([]models.VehicleRecord, 0, len(env.Vehicles))
	for _, entry := range env.Vehicles {
		if err := validate.Struct(entry); err != nil {
			msg.Rejected++
			continue
		}
		msg.Vehicles = append(msg.Vehicles, entry.record())
	}

	if env.UserLocation != nil && env.Type != TypeVehicleUpdate {
		if err := validate.Struct(env.UserLocation); err != nil {
			msg.Rejected++
		} else {
			msg.UserLocation = &models.LatLng{Lat: env.UserLocation.Lat, Lng: env.UserLocation.Lng}
		}
	}

	return msg, nil
}

// Encode serializes an outbound message.
func Encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return payload, nil
}

func (e VehicleEntry) record() models.VehicleRecord {
	return models.VehicleRecord{
		ID:       e.ID,
		Position: models.LatLng{Lat: e.Lat, Lng: e.Lng},
		Speed:    e.Speed,
		Heading:  e.Direction,
		Status:   models.VehicleStatus(e.Status),
	}
}
