package bridge

import (
	"strconv"

	"github.com/victorjacobs/go-floureon/climate"
	"github.com/victorjacobs/go-floureon/homeassistant"
)

var stateDefinitions = [...]stateDefinition{
	{
		name:  "mode",
		topic: func(t homeassistant.Topics) string { return t.ModeState },
		get: func(e climate.Entity) (string, bool) {
			mode, ok := e.Mode()
			return string(mode), ok
		},
	},
	{
		name:  "current temperature",
		topic: func(t homeassistant.Topics) string { return t.CurrentTemperature },
		get: func(e climate.Entity) (string, bool) {
			return formatTemperature(e.CurrentTemperature()), true
		},
	},
	{
		name:  "target temperature",
		topic: func(t homeassistant.Topics) string { return t.TemperatureState },
		get: func(e climate.Entity) (string, bool) {
			if !e.SupportedFeatures().Has(climate.FeatureTargetTemperature) {
				return "", false
			}
			return formatTemperature(e.TargetTemperature()), true
		},
	},
	{
		name:  "fan mode",
		topic: func(t homeassistant.Topics) string { return t.FanModeState },
		get: func(e climate.Entity) (string, bool) {
			if !e.SupportedFeatures().Has(climate.FeatureFanMode) {
				return "", false
			}
			return e.FanMode(), true
		},
	},
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', 1, 64)
}
