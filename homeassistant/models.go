package homeassistant

type deviceConfiguration struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
}

type climateConfiguration struct {
	UniqueId                string              `json:"unique_id"`
	Name                    string              `json:"name"`
	Modes                   []string            `json:"modes"`
	ModeStateTopic          string              `json:"mode_state_topic"`
	ModeCommandTopic        string              `json:"mode_command_topic"`
	CurrentTemperatureTopic string              `json:"current_temperature_topic"`
	TemperatureStateTopic   string              `json:"temperature_state_topic,omitempty"`
	TemperatureCommandTopic string              `json:"temperature_command_topic,omitempty"`
	FanModes                []string            `json:"fan_modes,omitempty"`
	FanModeStateTopic       string              `json:"fan_mode_state_topic,omitempty"`
	FanModeCommandTopic     string              `json:"fan_mode_command_topic,omitempty"`
	MinTemp                 float64             `json:"min_temp"`
	MaxTemp                 float64             `json:"max_temp"`
	TempStep                float64             `json:"temp_step"`
	TemperatureUnit         string              `json:"temperature_unit"`
	Precision               float64             `json:"precision"`
	AvailabilityTopic       string              `json:"availability_topic"`
	Device                  deviceConfiguration `json:"device"`
}

// Topics are the state and command topics of one climate entity.
type Topics struct {
	ModeState          string
	ModeCommand        string
	TemperatureState   string
	TemperatureCommand string
	CurrentTemperature string
	FanModeState       string
	FanModeCommand     string
	Availability       string
}
