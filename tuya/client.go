package tuya

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	defaultBaudRate      = 9600
	defaultResponseDelay = 100 * time.Millisecond
	defaultReadTimeout   = time.Second
	defaultStep          = 0.5

	maxReplySize = 4096
)

var (
	ErrUnsupported    = errors.New("datapoint not configured")
	ErrMalformedReply = errors.New("malformed reply")
)

type openFunc func(name string, baudRate int, readTimeout time.Duration) (io.ReadWriteCloser, error)

// Session talks to a Tuya MCU over a serial port and caches the datapoints it
// reports. It is safe for concurrent use.
type Session struct {
	options Options
	open    openFunc

	mutex      sync.Mutex
	datapoints  map[byte]Datapoint
	available   bool
	initialized bool
}

func NewSession(options Options) (*Session, error) {
	if options.ID == "" {
		return nil, errors.New("device id is required")
	}
	if options.SerialPort == "" {
		return nil, fmt.Errorf("device %v: serial port is required", options.ID)
	}
	if options.Datapoints.Power == 0 {
		return nil, fmt.Errorf("device %v: power datapoint is required", options.ID)
	}

	if options.BaudRate == 0 {
		options.BaudRate = defaultBaudRate
	}
	if options.TemperatureMultiplier == 0 {
		options.TemperatureMultiplier = 1
	}
	if options.TargetTemperatureStep == 0 {
		options.TargetTemperatureStep = defaultStep
	}
	if options.ResponseDelay == 0 {
		options.ResponseDelay = defaultResponseDelay
	}
	if options.ReadTimeout == 0 {
		options.ReadTimeout = defaultReadTimeout
	}
	if options.Unit == "" {
		options.Unit = UnitCelsius
	}

	return &Session{
		options:    options,
		open:       openSerial,
		datapoints: make(map[byte]Datapoint),
	}, nil
}

func openSerial(name string, baudRate int, readTimeout time.Duration) (io.ReadWriteCloser, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}

	return port, nil
}

func (s *Session) ObjectID() string {
	return strings.ReplaceAll(strings.ToLower(s.options.ID), " ", "_")
}

func (s *Session) Name() string {
	if s.options.Name == "" {
		return s.options.ID
	}
	return s.options.Name
}

func (s *Session) Available() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.available
}

// Update queries every datapoint and applies the reports in the reply. The
// first successful call is preceded by the heartbeat and product query the
// MCU expects from a new module.
func (s *Session) Update() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.initialized {
		if err := s.handshake(); err != nil {
			s.available = false
			return err
		}
		s.initialized = true
	}

	frames, err := s.exchange(CommandQueryDatapoints, []byte{})
	if err := s.exchangeFailed(err); err != nil {
		return fmt.Errorf("query datapoints: %w", err)
	}

	s.available = true
	if n := s.apply(frames); n == 0 {
		log.Printf("Device %v returned no datapoints", s.options.ID)
	}

	return nil
}

// handshake must be called with the mutex held.
func (s *Session) handshake() error {
	if _, err := s.exchange(CommandHeartbeat, []byte{}); err != nil && !errors.Is(err, ErrMalformedReply) {
		return fmt.Errorf("heartbeat: %w", err)
	}

	frames, err := s.exchange(CommandQueryProduct, []byte{})
	if err != nil && !errors.Is(err, ErrMalformedReply) {
		return fmt.Errorf("query product: %w", err)
	}

	for _, frame := range frames {
		if frame.Command == CommandQueryProduct {
			log.Printf("Device %v product info: %s", s.options.ID, frame.Data)
		}
	}

	return nil
}

// exchangeFailed reports whether err from exchange should fail the call. A
// malformed tail is logged and the complete frames before it are kept.
// Caller must hold the mutex.
func (s *Session) exchangeFailed(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrMalformedReply) {
		log.Printf("Device %v: %v", s.options.ID, err)
		return nil
	}

	s.available = false
	s.initialized = false
	return err
}

func (s *Session) State() bool {
	dp, ok := s.datapoint(s.options.Datapoints.Power)
	return ok && dp.Bool()
}

func (s *Session) CurrentOperation() (string, bool) {
	dp, ok := s.datapoint(s.options.Datapoints.Mode)
	if !ok {
		return "", false
	}

	index := dp.Enum()
	if index < len(s.options.Modes) {
		return s.options.Modes[index], true
	}

	// Unknown enum index, surfaced as-is
	return strconv.Itoa(index), true
}

func (s *Session) OperationList() []string {
	if s.options.Datapoints.Mode == 0 || len(s.options.Modes) == 0 {
		return nil
	}
	return append([]string(nil), s.options.Modes...)
}

func (s *Session) TemperatureUnit() string {
	if dp, ok := s.datapoint(s.options.Datapoints.Unit); ok {
		if dp.Enum() == 1 {
			return UnitFahrenheit
		}
		return UnitCelsius
	}
	return s.options.Unit
}

func (s *Session) CurrentTemperature() int {
	dp, _ := s.datapoint(s.options.Datapoints.CurrentTemperature)
	return dp.Int() * s.options.TemperatureMultiplier
}

func (s *Session) TargetTemperature() int {
	dp, _ := s.datapoint(s.options.Datapoints.TargetTemperature)
	return dp.Int() * s.options.TemperatureMultiplier
}

func (s *Session) SetTemperature(temperature float64) error {
	if s.options.Datapoints.TargetTemperature == 0 {
		return fmt.Errorf("set temperature: %w", ErrUnsupported)
	}

	raw := int(math.Round(temperature * 10 / float64(s.options.TemperatureMultiplier)))
	return s.send(ValueDatapoint(s.options.Datapoints.TargetTemperature, raw))
}

func (s *Session) TargetTemperatureStep() float64 {
	return s.options.TargetTemperatureStep
}

func (s *Session) CurrentFanMode() string {
	dp, ok := s.datapoint(s.options.Datapoints.FanSpeed)
	if !ok {
		return ""
	}

	index := dp.Enum()
	if index < len(s.options.FanModes) {
		return s.options.FanModes[index]
	}
	return strconv.Itoa(index)
}

func (s *Session) SetFanMode(fanMode string) error {
	if s.options.Datapoints.FanSpeed == 0 {
		return fmt.Errorf("set fan mode: %w", ErrUnsupported)
	}

	for i, m := range s.options.FanModes {
		if m == fanMode {
			return s.send(EnumDatapoint(s.options.Datapoints.FanSpeed, i))
		}
	}

	return fmt.Errorf("received unexpected fan mode: %v", fanMode)
}

func (s *Session) FanModes() []string {
	return append([]string(nil), s.options.FanModes...)
}

func (s *Session) SupportTargetTemperature() bool {
	return s.options.Datapoints.TargetTemperature != 0
}

func (s *Session) SupportWindSpeed() bool {
	return s.options.Datapoints.FanSpeed != 0 && len(s.options.FanModes) > 0
}

func (s *Session) TurnOn() error {
	return s.send(BoolDatapoint(s.options.Datapoints.Power, true))
}

func (s *Session) TurnOff() error {
	return s.send(BoolDatapoint(s.options.Datapoints.Power, false))
}

func (s *Session) datapoint(id byte) (Datapoint, bool) {
	if id == 0 {
		return Datapoint{}, false
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	dp, ok := s.datapoints[id]
	return dp, ok
}

func (s *Session) send(dp Datapoint) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	frames, err := s.exchange(CommandSendDatapoint, packDatapoint(dp))
	if err := s.exchangeFailed(err); err != nil {
		return fmt.Errorf("send datapoint %v: %w", dp.ID, err)
	}

	s.available = true
	// Not every MCU echoes the new value, so keep what was sent
	if s.apply(frames) == 0 {
		s.datapoints[dp.ID] = dp
	}

	return nil
}

// apply stores reported datapoints and returns how many were applied. Caller
// must hold the mutex.
func (s *Session) apply(frames []Frame) int {
	var n int
	for _, frame := range frames {
		if frame.Command != CommandReportDatapoint {
			continue
		}

		datapoints, err := unpackDatapoints(frame.Data)
		if err != nil {
			log.Printf("Device %v sent malformed report: %v", s.options.ID, err)
			continue
		}

		for _, dp := range datapoints {
			s.datapoints[dp.ID] = dp
			n++
		}
	}
	return n
}

// exchange writes one frame and reads the reply until it parses cleanly or
// the port stops returning data. A reply ending in a malformed frame returns
// the frames before it together with an error wrapping ErrMalformedReply.
// Caller must hold the mutex.
func (s *Session) exchange(command Command, data []byte) ([]Frame, error) {
	port, err := s.open(s.options.SerialPort, s.options.BaudRate, s.options.ReadTimeout)
	if err != nil {
		return nil, err
	}
	defer port.Close()

	packed, err := packFrame(command, data)
	if err != nil {
		return nil, err
	}

	n, err := port.Write(packed)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, errors.New("nothing written")
	}

	time.Sleep(s.options.ResponseDelay)

	var buff []byte
	chunk := make([]byte, 512)
	for len(buff) < maxReplySize {
		n, err = port.Read(chunk)
		if err != nil {
			return nil, err
		}

		// A read timeout returns no data
		if n == 0 {
			break
		}

		buff = append(buff, chunk[:n]...)
		if _, err := unpackFrames(buff); err == nil {
			break
		}
	}

	if len(buff) == 0 {
		return nil, errors.New("no response")
	}

	frames, err := unpackFrames(buff)
	if err != nil {
		return frames, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	return frames, nil
}
