package messaging

import "time"

const (
	// ConfigUpdateExchange is the fanout exchange every configuration change is broadcast to.
	ConfigUpdateExchange     = "config_update_exchange"
	configUpdateExchangeType = "fanout"
)

// ConfigUpdatePayload is the event emitted after a configuration value was persisted.
type ConfigUpdatePayload struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
