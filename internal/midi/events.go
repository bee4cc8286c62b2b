// Package midi turns a stream of timestamped MIDI channel messages into
// channel state and voice-control calls against a Synthesizer, the way
// a hardware EMU8000's command FIFO feeds its voice array.
package midi

import "fmt"

// Kind names a MIDI channel voice message type, keyed by the high
// nibble of its status byte (http://www.midi.org/techspecs/midimessages.php).
type Kind uint8

const (
	NoteOff Kind = 0x8
	NoteOn  Kind = 0x9
	PolyAftertouch Kind = 0xA
	ControlChange Kind = 0xB
	ProgramChange Kind = 0xC
	ChannelAftertouch Kind = 0xD
	PitchBend Kind = 0xE
)

func (k Kind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyAftertouch:
		return "PolyAftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelAftertouch:
		return "ChannelAftertouch"
	case PitchBend:
		return "PitchBend"
	default:
		return fmt.Sprintf("Kind(%#x)", uint8(k))
	}
}

// Event is one sample-accurate MIDI channel message, queued by the
// control thread and drained by the audio thread at its scheduled time.
type Event struct {
	Time    uint64 // absolute sample frame this event takes effect
	Channel uint8  // 0..15
	Kind    Kind
	Data1   uint8 // note/controller/program, meaning depends on Kind
	Data2   uint8 // velocity/value, unused for ProgramChange/ChannelAftertouch
	seq     uint64 // insertion order, breaks Time ties FIFO
}

// DecodeStatus splits a MIDI status byte into its message kind and
// channel. ok is false for system/realtime bytes (status&0xF0 == 0xF0),
// which this engine does not schedule as channel events.
func DecodeStatus(status byte) (kind Kind, channel uint8, ok bool) {
	if status < 0x80 {
		return 0, 0, false
	}
	k := Kind(status >> 4)
	if k == 0xF {
		return 0, 0, false
	}
	return k, status & 0x0F, true
}

// PitchBendValue reassembles a 14-bit pitch bend amount from its two
// 7-bit data bytes, LSB first as on the wire. Center (no bend) is 8192.
func PitchBendValue(data1, data2 uint8) uint16 {
	return uint16(data1&0x7F) | uint16(data2&0x7F)<<7
}
