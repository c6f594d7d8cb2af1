package climate

// Mode is an operating mode in Home Assistant's climate vocabulary.
type Mode string

const (
	ModeOff     Mode = "off"
	ModeAuto    Mode = "auto"
	ModeCool    Mode = "cool"
	ModeFanOnly Mode = "fan_only"
	ModeHeat    Mode = "heat"
)

var modeToVendor = map[Mode]string{
	ModeOff:     "off",
	ModeAuto:    "auto",
	ModeCool:    "cold",
	ModeFanOnly: "wind",
	ModeHeat:    "hot",
}

var vendorToMode = func() map[string]Mode {
	m := make(map[string]Mode, len(modeToVendor))
	for mode, token := range modeToVendor {
		m[token] = mode
	}
	return m
}()

// ToVendor returns the device token for a platform mode.
func ToVendor(mode Mode) (string, bool) {
	token, ok := modeToVendor[mode]
	return token, ok
}

// FromVendor returns the platform mode for a device token. Tokens outside the
// table are not recognised.
func FromVendor(token string) (Mode, bool) {
	mode, ok := vendorToMode[token]
	return mode, ok
}

// ModeNames returns the distinct mode names in first-seen order.
func ModeNames(modes []Mode) []string {
	seen := make(map[Mode]bool, len(modes))
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		if seen[m] {
			continue
		}
		seen[m] = true
		names = append(names, string(m))
	}
	return names
}

// Feature is a bit in the supported features mask reported to Home Assistant.
type Feature int

const (
	FeatureTargetTemperature Feature = 1
	FeatureFanMode           Feature = 8
)

func (f Feature) Has(flag Feature) bool {
	return f&flag == flag
}

type Unit string

const (
	Celsius    Unit = "°C"
	Fahrenheit Unit = "°F"
)

// Short returns the single letter form used in MQTT discovery payloads.
func (u Unit) Short() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

func convertTemperature(celsius float64, to Unit) float64 {
	if to == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}
