package climate

// Session is a live handle on one physical device. Reads are served from the
// session's own state cache; writes go to the device and return its error.
type Session interface {
	ObjectID() string
	Name() string
	Available() bool
	Update() error

	State() bool
	// CurrentOperation reports false when the device has no specific mode.
	CurrentOperation() (string, bool)
	OperationList() []string
	TemperatureUnit() string
	CurrentTemperature() int
	TargetTemperature() int
	SetTemperature(temperature float64) error
	TargetTemperatureStep() float64
	CurrentFanMode() string
	SetFanMode(fanMode string) error
	FanModes() []string
	SupportTargetTemperature() bool
	SupportWindSpeed() bool
	TurnOn() error
	TurnOff() error
}

// Registry looks up device sessions by id.
type Registry interface {
	Device(id string) (Session, bool)
}

// Discovery lists the devices to expose as climate entities.
type Discovery struct {
	DeviceIDs []string
}
