package tuya

import "time"

type Command byte

const (
	CommandHeartbeat       Command = 0x00
	CommandQueryProduct    Command = 0x01
	CommandSendDatapoint   Command = 0x06
	CommandReportDatapoint Command = 0x07
	CommandQueryDatapoints Command = 0x08
)

type DatapointType byte

const (
	DatapointBool  DatapointType = 0x01
	DatapointValue DatapointType = 0x02
	DatapointEnum  DatapointType = 0x04
)

type Frame struct {
	Version byte
	Command Command
	Data    []byte
}

type Datapoint struct {
	ID    byte
	Type  DatapointType
	Value []byte
}

// Datapoints maps device functions to datapoint ids. Zero means the device
// does not have the function.
type Datapoints struct {
	Power              byte
	Mode               byte
	TargetTemperature  byte
	CurrentTemperature byte
	FanSpeed           byte
	Unit               byte
}

type Options struct {
	ID         string
	Name       string
	SerialPort string
	BaudRate   int
	// Unit is used when the device has no unit datapoint.
	Unit string
	// TemperatureMultiplier scales raw temperature values to tenths of a
	// degree: 1 for devices reporting tenths, 10 for whole degrees.
	TemperatureMultiplier int
	TargetTemperatureStep float64
	Datapoints            Datapoints
	// Modes and FanModes list the enum values in datapoint index order.
	Modes         []string
	FanModes      []string
	ResponseDelay time.Duration
	ReadTimeout   time.Duration
}

const (
	UnitCelsius    = "CELSIUS"
	UnitFahrenheit = "FAHRENHEIT"
)
