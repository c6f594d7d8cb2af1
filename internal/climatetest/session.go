// Package climatetest provides an in-memory device session for tests.
package climatetest

import "sync"

// Session is a scripted device session. Set fields before handing it out;
// write calls are recorded in Calls.
type Session struct {
	ID          string
	DisplayName string
	Online      bool
	On          bool
	Operation   string
	HasMode     bool
	Operations  []string
	Unit        string
	Current     int
	Target      int
	Step        float64
	Fan         string
	Fans        []string
	SupportTemp bool
	SupportFan  bool
	Err         error
	UpdateErr   error
	// OnUpdate runs inside Update when set.
	OnUpdate func()

	mutex sync.Mutex
	calls []string
}

func (s *Session) record(call string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.calls = append(s.calls, call)
}

func (s *Session) Calls() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return append([]string(nil), s.calls...)
}

func (s *Session) ObjectID() string { return s.ID }
func (s *Session) Name() string     { return s.DisplayName }
func (s *Session) Available() bool  { return s.Online }

func (s *Session) Update() error {
	s.record("update")
	if s.OnUpdate != nil {
		s.OnUpdate()
	}
	return s.UpdateErr
}

func (s *Session) State() bool                      { return s.On }
func (s *Session) CurrentOperation() (string, bool) { return s.Operation, s.HasMode }
func (s *Session) OperationList() []string          { return s.Operations }
func (s *Session) TemperatureUnit() string          { return s.Unit }
func (s *Session) CurrentTemperature() int          { return s.Current }
func (s *Session) TargetTemperature() int           { return s.Target }
func (s *Session) TargetTemperatureStep() float64   { return s.Step }
func (s *Session) CurrentFanMode() string           { return s.Fan }
func (s *Session) FanModes() []string               { return s.Fans }
func (s *Session) SupportTargetTemperature() bool   { return s.SupportTemp }
func (s *Session) SupportWindSpeed() bool           { return s.SupportFan }

func (s *Session) SetTemperature(temperature float64) error {
	s.record("set_temperature")
	if s.Err == nil {
		s.Target = int(temperature * 10)
	}
	return s.Err
}

func (s *Session) SetFanMode(fanMode string) error {
	s.record("set_fan_mode:" + fanMode)
	if s.Err == nil {
		s.Fan = fanMode
	}
	return s.Err
}

func (s *Session) TurnOn() error {
	s.record("turn_on")
	if s.Err == nil {
		s.On = true
	}
	return s.Err
}

func (s *Session) TurnOff() error {
	s.record("turn_off")
	if s.Err == nil {
		s.On = false
	}
	return s.Err
}
