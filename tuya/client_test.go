package tuya

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakePort answers every write with response. Reads drain the reply, at most
// chunk bytes at a time when chunk is set, and return no data once it is
// exhausted, like a serial read timeout.
type fakePort struct {
	written  [][]byte
	response []byte
	chunk    int

	pending []byte
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, append([]byte(nil), b...))
	p.pending = p.response
	return len(b), nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.chunk > 0 && len(b) > p.chunk {
		b = b[:p.chunk]
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Close() error { return nil }

func report(datapoints ...Datapoint) []byte {
	var buff []byte
	for _, dp := range datapoints {
		packed, _ := packFrame(CommandReportDatapoint, packDatapoint(dp))
		buff = append(buff, packed...)
	}
	return buff
}

func newTestSession(t *testing.T, port *fakePort) *Session {
	t.Helper()

	session, err := NewSession(Options{
		ID:         "Living Room",
		Name:       "Living room heater",
		SerialPort: "/dev/ttyS1",
		Datapoints: Datapoints{
			Power:              1,
			TargetTemperature:  2,
			CurrentTemperature: 3,
			Mode:               4,
			FanSpeed:           5,
		},
		Modes:         []string{"auto", "cold", "hot", "wind"},
		FanModes:      []string{"low", "middle", "high"},
		ResponseDelay: time.Millisecond,
	})
	assert.NoError(t, err)

	session.open = func(string, int, time.Duration) (io.ReadWriteCloser, error) {
		return port, nil
	}
	return session
}

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(Options{})
	assert.Error(t, err)

	_, err = NewSession(Options{ID: "a"})
	assert.Error(t, err)

	_, err = NewSession(Options{ID: "a", SerialPort: "/dev/ttyS0"})
	assert.Error(t, err)

	session, err := NewSession(Options{ID: "a", SerialPort: "/dev/ttyS0", Datapoints: Datapoints{Power: 1}})
	assert.NoError(t, err)
	assert.Equal(t, 0.5, session.TargetTemperatureStep())
	assert.Equal(t, UnitCelsius, session.TemperatureUnit())
	assert.Nil(t, session.OperationList())
	assert.False(t, session.SupportTargetTemperature())
	assert.False(t, session.SupportWindSpeed())
}

func TestSessionIdentity(t *testing.T) {
	session := newTestSession(t, &fakePort{})

	assert.Equal(t, "living_room", session.ObjectID())
	assert.Equal(t, "Living room heater", session.Name())
	assert.False(t, session.Available())
}

func TestSessionUpdate(t *testing.T) {
	port := &fakePort{response: report(
		BoolDatapoint(1, true),
		ValueDatapoint(2, 230),
		ValueDatapoint(3, 215),
		EnumDatapoint(4, 1),
		EnumDatapoint(5, 2),
	)}
	session := newTestSession(t, port)

	assert.NoError(t, session.Update())
	assert.Equal(t, [][]byte{
		{0x55, 0xaa, 0x00, 0x00, 0x00, 0x00, 0xff},
		{0x55, 0xaa, 0x00, 0x01, 0x00, 0x00, 0x00},
		{0x55, 0xaa, 0x00, 0x08, 0x00, 0x00, 0x07},
	}, port.written)

	assert.True(t, session.Available())
	assert.True(t, session.State())
	assert.Equal(t, 230, session.TargetTemperature())
	assert.Equal(t, 215, session.CurrentTemperature())
	assert.Equal(t, "high", session.CurrentFanMode())

	mode, ok := session.CurrentOperation()
	assert.True(t, ok)
	assert.Equal(t, "cold", mode)
}

func TestSessionHandshakeOnce(t *testing.T) {
	productInfo, _ := packFrame(CommandQueryProduct, []byte(`{"p":"abc","v":"1.0.0"}`))
	port := &fakePort{response: productInfo}
	session := newTestSession(t, port)

	assert.NoError(t, session.Update())
	assert.NoError(t, session.Update())

	assert.Len(t, port.written, 4)
	assert.Equal(t, byte(CommandQueryDatapoints), port.written[3][3])
}

func TestSessionHandshakeAfterFailure(t *testing.T) {
	port := &fakePort{response: report(BoolDatapoint(1, true))}
	session := newTestSession(t, port)
	assert.NoError(t, session.Update())

	open := session.open
	session.open = func(string, int, time.Duration) (io.ReadWriteCloser, error) {
		return nil, errors.New("unplugged")
	}
	assert.Error(t, session.Update())

	session.open = open
	assert.NoError(t, session.Update())
	// heartbeat, product, query, then the same three again
	assert.Len(t, port.written, 6)
	assert.Equal(t, byte(CommandHeartbeat), port.written[3][3])
}

func TestSessionUpdateKeepsFramesBeforeTruncatedTail(t *testing.T) {
	full := report(
		BoolDatapoint(1, true),
		ValueDatapoint(3, 215),
		EnumDatapoint(4, 2),
	)
	session := newTestSession(t, &fakePort{response: full[:len(full)-3]})

	assert.NoError(t, session.Update())
	assert.True(t, session.Available())
	assert.True(t, session.State())
	assert.Equal(t, 215, session.CurrentTemperature())

	_, ok := session.CurrentOperation()
	assert.False(t, ok)
}

func TestSessionUpdateReadsSplitReply(t *testing.T) {
	port := &fakePort{
		response: report(
			BoolDatapoint(1, true),
			ValueDatapoint(2, 230),
			ValueDatapoint(3, 215),
			EnumDatapoint(4, 2),
		),
		chunk: 5,
	}
	session := newTestSession(t, port)

	assert.NoError(t, session.Update())
	assert.Equal(t, 230, session.TargetTemperature())

	mode, ok := session.CurrentOperation()
	assert.True(t, ok)
	assert.Equal(t, "hot", mode)
}

func TestSessionUnknownEnumIndex(t *testing.T) {
	session := newTestSession(t, &fakePort{response: report(EnumDatapoint(4, 9))})

	assert.NoError(t, session.Update())
	mode, ok := session.CurrentOperation()
	assert.True(t, ok)
	assert.Equal(t, "9", mode)
}

func TestSessionNoModeReported(t *testing.T) {
	session := newTestSession(t, &fakePort{response: report(BoolDatapoint(1, true))})

	assert.NoError(t, session.Update())
	_, ok := session.CurrentOperation()
	assert.False(t, ok)
}

func TestSessionUpdateFailure(t *testing.T) {
	session := newTestSession(t, &fakePort{})
	failure := errors.New("no such device")
	session.open = func(string, int, time.Duration) (io.ReadWriteCloser, error) {
		return nil, failure
	}

	assert.ErrorIs(t, session.Update(), failure)
	assert.False(t, session.Available())
}

func TestSessionTurnOnOff(t *testing.T) {
	port := &fakePort{}
	session := newTestSession(t, port)

	// The MCU does not echo, so the sent value is kept
	port.response = []byte{0x00}
	assert.NoError(t, session.TurnOn())
	assert.True(t, session.State())

	port.response = report(BoolDatapoint(1, false))
	assert.NoError(t, session.TurnOff())
	assert.False(t, session.State())

	assert.Len(t, port.written, 2)
	assert.True(t, bytes.HasPrefix(port.written[0], []byte{0x55, 0xaa, 0x00, 0x06}))
	assert.Equal(t, []byte{0x01, 0x01, 0x00, 0x01, 0x01}, port.written[0][6:11])
	assert.Equal(t, []byte{0x01, 0x01, 0x00, 0x01, 0x00}, port.written[1][6:11])
}

func TestSessionSetTemperature(t *testing.T) {
	port := &fakePort{response: []byte{0x00}}
	session := newTestSession(t, port)

	assert.NoError(t, session.SetTemperature(22.5))
	assert.Equal(t, 225, session.TargetTemperature())

	frames, err := unpackFrames(port.written[0])
	assert.NoError(t, err)
	datapoints, err := unpackDatapoints(frames[0].Data)
	assert.NoError(t, err)
	assert.Equal(t, ValueDatapoint(2, 225), datapoints[0])
}

func TestSessionSetTemperatureWholeDegrees(t *testing.T) {
	port := &fakePort{response: []byte{0x00}}
	session := newTestSession(t, port)
	session.options.TemperatureMultiplier = 10

	assert.NoError(t, session.SetTemperature(22))
	assert.Equal(t, 220, session.TargetTemperature())
}

func TestSessionSetFanMode(t *testing.T) {
	port := &fakePort{response: []byte{0x00}}
	session := newTestSession(t, port)

	assert.NoError(t, session.SetFanMode("middle"))
	assert.Equal(t, "middle", session.CurrentFanMode())

	assert.Error(t, session.SetFanMode("turbo"))
	assert.Len(t, port.written, 1)
}

func TestSessionUnsupported(t *testing.T) {
	session, err := NewSession(Options{ID: "a", SerialPort: "/dev/ttyS0", Datapoints: Datapoints{Power: 1}})
	assert.NoError(t, err)

	assert.ErrorIs(t, session.SetTemperature(20), ErrUnsupported)
	assert.ErrorIs(t, session.SetFanMode("low"), ErrUnsupported)
}

func TestSessionUnitDatapoint(t *testing.T) {
	session := newTestSession(t, &fakePort{response: report(EnumDatapoint(6, 1))})
	session.options.Datapoints.Unit = 6

	assert.Equal(t, UnitCelsius, session.TemperatureUnit())
	assert.NoError(t, session.Update())
	assert.Equal(t, UnitFahrenheit, session.TemperatureUnit())
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	session := newTestSession(t, &fakePort{})

	assert.NoError(t, registry.Add("living_room", session))
	assert.Error(t, registry.Add("living_room", session))

	found, ok := registry.Device("living_room")
	assert.True(t, ok)
	assert.Equal(t, session, found)

	_, ok = registry.Device("attic")
	assert.False(t, ok)

	assert.Equal(t, []string{"living_room"}, registry.IDs())
}
