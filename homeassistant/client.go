package homeassistant

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/config"
)

type Client struct {
	mqtt mqtt.Client
}

func NewClient(mqtt mqtt.Client) *Client {
	return &Client{
		mqtt: mqtt,
	}
}

func ClimateTopics(objectID string) Topics {
	prefix := fmt.Sprintf("%v/%v", config.TopicPrefix, objectID)

	return Topics{
		ModeState:          prefix + "/mode/state",
		ModeCommand:        prefix + "/mode/cmd",
		TemperatureState:   prefix + "/temperature/state",
		TemperatureCommand: prefix + "/temperature/cmd",
		CurrentTemperature: prefix + "/current_temperature/state",
		FanModeState:       prefix + "/fan_mode/state",
		FanModeCommand:     prefix + "/fan_mode/cmd",
		Availability:       prefix + "/availability",
	}
}

func ConfigTopic(objectID string) string {
	return fmt.Sprintf("%v/climate/%v/config", config.HomeAssistantPrefix, objectID)
}

// RegisterClimate publishes the discovery config for a climate entity. Topics
// for features the device lacks are left out so Home Assistant hides them.
func (h *Client) RegisterClimate(entity climate.Entity) error {
	objectID := entity.UniqueID()
	topics := ClimateTopics(objectID)

	climateConfig := climateConfiguration{
		UniqueId:                objectID,
		Name:                    entity.Name(),
		Modes:                   climate.ModeNames(entity.Modes()),
		ModeStateTopic:          topics.ModeState,
		ModeCommandTopic:        topics.ModeCommand,
		CurrentTemperatureTopic: topics.CurrentTemperature,
		MinTemp:                 entity.MinTemp(),
		MaxTemp:                 entity.MaxTemp(),
		TempStep:                entity.TargetTemperatureStep(),
		TemperatureUnit:         entity.TemperatureUnit().Short(),
		Precision:               entity.Precision(),
		AvailabilityTopic:       topics.Availability,
		Device: deviceConfiguration{
			Identifiers:  []string{objectID},
			Name:         entity.Name(),
			Manufacturer: "Floureon",
		},
	}

	features := entity.SupportedFeatures()
	if features.Has(climate.FeatureTargetTemperature) {
		climateConfig.TemperatureStateTopic = topics.TemperatureState
		climateConfig.TemperatureCommandTopic = topics.TemperatureCommand
	}
	if features.Has(climate.FeatureFanMode) {
		climateConfig.FanModes = entity.FanModes()
		climateConfig.FanModeStateTopic = topics.FanModeState
		climateConfig.FanModeCommandTopic = topics.FanModeCommand
	}

	payload, err := json.Marshal(climateConfig)
	if err != nil {
		return err
	}

	if t := h.mqtt.Publish(ConfigTopic(objectID), 0, true, payload); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	return nil
}
