package bridge

import (
	"time"

	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/homeassistant"
)

type stateDefinition struct {
	name  string
	topic func(topics homeassistant.Topics) string
	// get reports false when there is nothing to publish
	get func(entity climate.Entity) (string, bool)
}

type entry struct {
	entity    climate.Entity
	topics    homeassistant.Topics
	published map[string]string
	polledAt  time.Time

	modeUntranslatable bool
}

// State is a snapshot of one climate entity.
type State struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Available          bool      `json:"available"`
	Mode               string    `json:"mode,omitempty"`
	Modes              []string  `json:"modes"`
	CurrentTemperature float64   `json:"current_temperature"`
	TargetTemperature  float64   `json:"target_temperature"`
	TemperatureStep    float64   `json:"target_temperature_step"`
	TemperatureUnit    string    `json:"temperature_unit"`
	MinTemp            float64   `json:"min_temp"`
	MaxTemp            float64   `json:"max_temp"`
	FanMode            string    `json:"fan_mode,omitempty"`
	FanModes           []string  `json:"fan_modes,omitempty"`
	SupportedFeatures  int       `json:"supported_features"`
	LastPolled         time.Time `json:"last_polled"`
}
