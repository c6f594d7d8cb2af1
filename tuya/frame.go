package tuya

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	headerHigh    = 0x55
	headerLow     = 0xaa
	versionModule = 0x00

	// header(2) + version + command + length(2) + checksum
	frameOverhead = 7
)

var ErrChecksum = errors.New("checksum mismatch")

func packFrame(command Command, data []byte) ([]byte, error) {
	if len(data) > 0xffff {
		return nil, fmt.Errorf("payload too large: %v bytes", len(data))
	}

	packed := make([]byte, 0, frameOverhead+len(data))
	packed = append(packed, headerHigh, headerLow, versionModule, byte(command))
	packed = binary.BigEndian.AppendUint16(packed, uint16(len(data)))
	packed = append(packed, data...)
	packed = append(packed, checksum(packed))

	return packed, nil
}

func checksum(data []byte) byte {
	var sum int
	for _, b := range data {
		sum += int(b)
	}
	return byte(sum & 0xff)
}

// unpackFrames decodes every frame in buff. Bytes before a frame header are
// skipped.
func unpackFrames(buff []byte) ([]Frame, error) {
	var frames []Frame

	for len(buff) > 0 {
		start := indexOfHeader(buff)
		if start < 0 {
			break
		}
		buff = buff[start:]

		if len(buff) < frameOverhead {
			return frames, fmt.Errorf("truncated frame: %x", buff)
		}

		dataLength := int(binary.BigEndian.Uint16(buff[4:6]))
		end := 6 + dataLength
		if len(buff) < end+1 {
			return frames, fmt.Errorf("truncated frame, expected %v data bytes, got %v", dataLength, len(buff)-frameOverhead)
		}

		if checksum(buff[:end]) != buff[end] {
			return frames, fmt.Errorf("frame %x: %w", buff[:end+1], ErrChecksum)
		}

		data := make([]byte, dataLength)
		copy(data, buff[6:end])
		frames = append(frames, Frame{
			Version: buff[2],
			Command: Command(buff[3]),
			Data:    data,
		})

		buff = buff[end+1:]
	}

	return frames, nil
}

func indexOfHeader(buff []byte) int {
	for i := 0; i+1 < len(buff); i++ {
		if buff[i] == headerHigh && buff[i+1] == headerLow {
			return i
		}
	}
	return -1
}
