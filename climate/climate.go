package climate

import (
	"context"
	"log"
)

const (
	minTempCelsius = 15
	maxTempCelsius = 30

	PrecisionTenths = 0.1
)

// Entity is the climate surface Home Assistant sees for one device.
type Entity interface {
	UniqueID() string
	Name() string
	Available() bool
	Update() error

	Precision() float64
	TemperatureUnit() Unit
	Mode() (Mode, bool)
	Modes() []Mode
	CurrentTemperature() float64
	TargetTemperature() float64
	TargetTemperatureStep() float64
	FanMode() string
	FanModes() []string
	MinTemp() float64
	MaxTemp() float64
	SupportedFeatures() Feature

	SetTemperature(req TemperatureRequest) error
	SetFanMode(fanMode string) error
	SetMode(mode Mode) error
}

// TemperatureRequest carries an optional target temperature.
type TemperatureRequest struct {
	Temperature *float64
}

type Adapter struct {
	session     Session
	operations  []Mode
	initialMode Mode
}

var _ Entity = (*Adapter)(nil)

func New(session Session) *Adapter {
	initialMode := ModeHeat
	if !session.State() {
		initialMode = ModeOff
	}

	return &Adapter{
		session:     session,
		operations:  []Mode{ModeOff, ModeHeat, ModeAuto},
		initialMode: initialMode,
	}
}

// Setup builds an adapter for every discovered device present in the
// registry. Unknown ids are skipped.
func Setup(registry Registry, discovery *Discovery) []*Adapter {
	if discovery == nil {
		return nil
	}

	var adapters []*Adapter
	for _, id := range discovery.DeviceIDs {
		session, ok := registry.Device(id)
		if !ok {
			log.Printf("Device %v not found, skipping", id)
			continue
		}
		adapters = append(adapters, New(session))
	}

	return adapters
}

// Attach extends the supported modes with those the device reports. It runs
// once, before the entity is exposed.
func (a *Adapter) Attach(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tokens := a.session.OperationList()
	if tokens == nil {
		return nil
	}

	for _, token := range tokens {
		if mode, ok := FromVendor(token); ok {
			a.operations = append(a.operations, mode)
		}
	}

	return nil
}

func (a *Adapter) InitialMode() Mode {
	return a.initialMode
}

func (a *Adapter) UniqueID() string {
	return a.session.ObjectID()
}

func (a *Adapter) Name() string {
	return a.session.Name()
}

func (a *Adapter) Available() bool {
	return a.session.Available()
}

func (a *Adapter) Update() error {
	return a.session.Update()
}

func (a *Adapter) Precision() float64 {
	return PrecisionTenths
}

func (a *Adapter) TemperatureUnit() Unit {
	if a.session.TemperatureUnit() == "FAHRENHEIT" {
		return Fahrenheit
	}
	return Celsius
}

// Mode returns false when the device reports a token outside the
// translation table.
func (a *Adapter) Mode() (Mode, bool) {
	if !a.session.State() {
		return ModeOff, true
	}

	token, ok := a.session.CurrentOperation()
	if !ok {
		return ModeAuto, true
	}

	return FromVendor(token)
}

func (a *Adapter) Modes() []Mode {
	return a.operations
}

func (a *Adapter) CurrentTemperature() float64 {
	return float64(a.session.CurrentTemperature()) / 10
}

func (a *Adapter) TargetTemperature() float64 {
	return float64(a.session.TargetTemperature()) / 10
}

func (a *Adapter) TargetTemperatureStep() float64 {
	return a.session.TargetTemperatureStep()
}

func (a *Adapter) FanMode() string {
	return a.session.CurrentFanMode()
}

func (a *Adapter) FanModes() []string {
	return a.session.FanModes()
}

func (a *Adapter) MinTemp() float64 {
	return convertTemperature(minTempCelsius, a.TemperatureUnit())
}

func (a *Adapter) MaxTemp() float64 {
	return convertTemperature(maxTempCelsius, a.TemperatureUnit())
}

func (a *Adapter) SupportedFeatures() Feature {
	var supports Feature
	if a.session.SupportTargetTemperature() {
		supports |= FeatureTargetTemperature
	}
	if a.session.SupportWindSpeed() {
		supports |= FeatureFanMode
	}
	return supports
}

func (a *Adapter) SetTemperature(req TemperatureRequest) error {
	if req.Temperature == nil {
		return nil
	}
	return a.session.SetTemperature(*req.Temperature)
}

func (a *Adapter) SetFanMode(fanMode string) error {
	return a.session.SetFanMode(fanMode)
}

// SetMode only switches the device on or off. Any mode other than off powers
// the device on and it resumes whatever mode it was last in.
func (a *Adapter) SetMode(mode Mode) error {
	if mode == ModeOff {
		return a.session.TurnOff()
	}
	return a.session.TurnOn()
}
