package models

import "time"

// ConnectionState is the lifecycle state of the fleet channel.
type ConnectionState string

const (
	StateConnecting ConnectionState = "connecting"
	StateOpen       ConnectionState = "open"
	StateClosed     ConnectionState = "closed"
)

// ConnectionStatus is what the connection manager publishes on every state change.
type ConnectionStatus struct {
	State       ConnectionState `json:"state"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	RetryIn     time.Duration   `json:"retry_in"`
	// Terminal is set once the reconnect budget is exhausted.
	Terminal bool `json:"terminal"`
}
