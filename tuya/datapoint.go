package tuya

import (
	"encoding/binary"
	"fmt"
)

func BoolDatapoint(id byte, value bool) Datapoint {
	var b byte
	if value {
		b = 1
	}
	return Datapoint{ID: id, Type: DatapointBool, Value: []byte{b}}
}

func ValueDatapoint(id byte, value int) Datapoint {
	return Datapoint{ID: id, Type: DatapointValue, Value: binary.BigEndian.AppendUint32(nil, uint32(int32(value)))}
}

func EnumDatapoint(id byte, value int) Datapoint {
	return Datapoint{ID: id, Type: DatapointEnum, Value: []byte{byte(value)}}
}

func (d Datapoint) Bool() bool {
	return len(d.Value) > 0 && d.Value[0] != 0
}

// Int decodes value datapoints as signed 32 bit big endian.
func (d Datapoint) Int() int {
	switch len(d.Value) {
	case 0:
		return 0
	case 4:
		return int(int32(binary.BigEndian.Uint32(d.Value)))
	default:
		var v int
		for _, b := range d.Value {
			v = v<<8 | int(b)
		}
		return v
	}
}

func (d Datapoint) Enum() int {
	if len(d.Value) == 0 {
		return 0
	}
	return int(d.Value[0])
}

func packDatapoint(d Datapoint) []byte {
	packed := []byte{d.ID, byte(d.Type)}
	packed = binary.BigEndian.AppendUint16(packed, uint16(len(d.Value)))
	return append(packed, d.Value...)
}

func unpackDatapoints(data []byte) ([]Datapoint, error) {
	var datapoints []Datapoint

	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("truncated datapoint header: %x", data)
		}

		length := int(binary.BigEndian.Uint16(data[2:4]))
		if len(data) < 4+length {
			return nil, fmt.Errorf("datapoint %v: expected %v bytes, got %v", data[0], length, len(data)-4)
		}

		value := make([]byte, length)
		copy(value, data[4:4+length])
		datapoints = append(datapoints, Datapoint{
			ID:    data[0],
			Type:  DatapointType(data[1]),
			Value: value,
		})

		data = data[4+length:]
	}

	return datapoints, nil
}
