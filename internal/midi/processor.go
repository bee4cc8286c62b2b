package midi

import (
	"fmt"
	"sync/atomic"
)

// VoiceController is the subset of Synthesizer that MidiProcessor
// drives. Kept as an interface so midi can be tested without an audio
// engine, and so the audio thread owns the only implementation.
type VoiceController interface {
	NoteOn(channel, key, velocity uint8)
	NoteOff(channel, key uint8)
	PolyAftertouch(channel, key, pressure uint8)
	ChannelAftertouch(channel, pressure uint8)
	ProgramChange(channel uint8, bank uint16, program uint8)
	PitchBend(channel uint8, value uint16, rangeSemitones uint8)
	Volume(channel uint8, amount uint8)
	Pan(channel uint8, amount uint8)
	Expression(channel uint8, amount uint8)
	ModWheel(channel uint8, amount uint8)
	ReverbSend(channel uint8, amount uint8)
	ChorusSend(channel uint8, amount uint8)
	AllNotesOff(channel uint8)
	AllSoundOff(channel uint8)
	ReleaseNote(channel, key uint8) // sustain/sostenuto deferred release
}

const numChannels = 16

// Processor owns the 16 MIDI channels' running state and the
// sample-accurate handoff between whatever thread calls QueueEvent and
// whatever thread calls Advance. QueueEvent is safe to call from one
// control-thread goroutine while Advance runs on one audio-thread
// goroutine; neither is safe for concurrent callers of the same method
// (single producer, single consumer).
type Processor struct {
	ring     *spscQueue
	pending  *eventQueue
	channels [numChannels]ChannelState
	seq      atomic.Uint64
	voices   VoiceController
}

// NewProcessor creates a Processor that drives voices through vc.
// queueCapacity bounds how many events may be in flight between one
// Advance call and the next before QueueEvent starts rejecting events.
func NewProcessor(vc VoiceController, queueCapacity int) *Processor {
	p := &Processor{
		ring:    newSPSCQueue(queueCapacity),
		pending: newEventQueue(),
		voices:  vc,
	}
	for i := range p.channels {
		p.channels[i].Reset()
	}
	return p
}

// Channel returns a read-only snapshot accessor for channel ch's state.
func (p *Processor) Channel(ch uint8) *ChannelState {
	if ch >= numChannels {
		return nil
	}
	return &p.channels[ch]
}

// QueueEvent schedules a raw MIDI channel message for effect at sample
// time t. Events with a non-channel status byte (system/realtime) are
// silently ignored rather than rejected. An error is returned
// only if the handoff ring is full.
func (p *Processor) QueueEvent(t uint64, status, data1, data2 byte) error {
	kind, channel, ok := DecodeStatus(status)
	if !ok {
		return nil
	}
	ev := Event{Time: t, Channel: channel, Kind: kind, Data1: data1, Data2: data2, seq: p.seq.Add(1)}
	if !p.ring.push(ev) {
		return fmt.Errorf("midi: event queue full (time=%d channel=%d kind=%s)", t, channel, kind)
	}
	return nil
}

// DrainPending moves every event queued so far from the producer ring
// into the time-ordered pending queue, without applying any of them.
// Exposed so a sample-accurate caller can peek NextEventTime before
// deciding how far to Advance.
func (p *Processor) DrainPending() {
	for {
		ev, ok := p.ring.pop()
		if !ok {
			break
		}
		p.pending.insert(ev)
	}
}

// NextEventTime reports the absolute sample time of the earliest
// pending event, if any is queued ahead of the last Advance call.
func (p *Processor) NextEventTime() (uint64, bool) {
	return p.pending.peekTime()
}

// Advance drains every event scheduled at or before upTo, applying each
// to channel state and the voice controller in strict (time, arrival)
// order, then returns.
func (p *Processor) Advance(upTo uint64) {
	p.DrainPending()
	for {
		ev, ok := p.pending.popReady(upTo)
		if !ok {
			break
		}
		p.apply(ev)
	}
}

func (p *Processor) apply(ev Event) {
	ch := &p.channels[ev.Channel]
	switch ev.Kind {
	case NoteOn:
		if ev.Data2 == 0 {
			p.noteOff(ev.Channel, ev.Data1)
			return
		}
		if ch.DownNotes == nil {
			ch.DownNotes = make(map[uint8]bool)
		}
		ch.DownNotes[ev.Data1] = true
		p.voices.NoteOn(ev.Channel, ev.Data1, ev.Data2)
	case NoteOff:
		p.noteOff(ev.Channel, ev.Data1)
	case PolyAftertouch:
		p.voices.PolyAftertouch(ev.Channel, ev.Data1, ev.Data2)
	case ChannelAftertouch:
		p.voices.ChannelAftertouch(ev.Channel, ev.Data1)
	case ProgramChange:
		ch.Program = ev.Data1
		p.voices.ProgramChange(ev.Channel, ch.bankNumber(), ch.Program)
	case PitchBend:
		ch.PitchBend = PitchBendValue(ev.Data1, ev.Data2)
		p.voices.PitchBend(ev.Channel, ch.PitchBend, ch.PitchBendRangeSemi)
	case ControlChange:
		p.applyCC(ev.Channel, ev.Data1, ev.Data2)
	}
}

// noteOff honors the sustain/sostenuto capture rules: a note-off
// arriving while the pedal is held is deferred until the
// pedal lifts, rather than releasing the voice immediately.
func (p *Processor) noteOff(channel, key uint8) {
	ch := &p.channels[channel]
	delete(ch.DownNotes, key)
	if ch.Sustain {
		if ch.SustainedNotes == nil {
			ch.SustainedNotes = make(map[uint8]bool)
		}
		ch.SustainedNotes[key] = true
		return
	}
	if ch.Sostenuto && ch.SostenutoCaptured[key] {
		if ch.SustainedNotes == nil {
			ch.SustainedNotes = make(map[uint8]bool)
		}
		ch.SustainedNotes[key] = true
		return
	}
	p.voices.NoteOff(channel, key)
}

func (p *Processor) applyCC(channel, cc, val uint8) {
	ch := &p.channels[channel]
	switch cc {
	case CCSustain:
		wasHeld := ch.Sustain
		ch.Sustain = val >= 64
		if wasHeld && !ch.Sustain {
			p.releaseCaptured(channel)
		}
	case CCSostenuto:
		wasHeld := ch.Sostenuto
		if !wasHeld && val >= 64 {
			ch.SostenutoCaptured = p.capturePlayingNotes(channel)
		}
		ch.Sostenuto = val >= 64
		if wasHeld && !ch.Sostenuto {
			p.releaseCaptured(channel)
			ch.SostenutoCaptured = nil
		}
	case CCVolume:
		ch.applyControlChange(cc, val)
		p.voices.Volume(channel, val)
	case CCPan:
		ch.applyControlChange(cc, val)
		p.voices.Pan(channel, val)
	case CCExpression:
		ch.applyControlChange(cc, val)
		p.voices.Expression(channel, val)
	case CCModWheel:
		ch.applyControlChange(cc, val)
		p.voices.ModWheel(channel, val)
	case CCReverbSend:
		ch.applyControlChange(cc, val)
		p.voices.ReverbSend(channel, val)
	case CCChorusSend:
		ch.applyControlChange(cc, val)
		p.voices.ChorusSend(channel, val)
	case CCAllSoundOff:
		p.voices.AllSoundOff(channel)
	case CCAllNotesOff:
		p.voices.AllNotesOff(channel)
		ch.SustainedNotes = nil
	case CCResetControllers:
		ch.applyControlChange(cc, val) // resets ch, preserving bank/program
		p.voices.Volume(channel, ch.Volume)
		p.voices.Pan(channel, ch.Pan)
		p.voices.Expression(channel, ch.Expression)
		p.voices.ModWheel(channel, ch.ModWheel)
		p.voices.ReverbSend(channel, ch.ReverbSend)
		p.voices.ChorusSend(channel, ch.ChorusSend)
		p.voices.PitchBend(channel, ch.PitchBend, ch.PitchBendRangeSemi)
	default:
		ch.applyControlChange(cc, val)
	}
}

// releaseCaptured releases every note the pedal deferred, implementing
// the sustain/sostenuto-lift semantics.
func (p *Processor) releaseCaptured(channel uint8) {
	ch := &p.channels[channel]
	for key := range ch.SustainedNotes {
		p.voices.ReleaseNote(channel, key)
	}
	ch.SustainedNotes = nil
}

// capturePlayingNotes snapshots the keys currently sounding on channel,
// latched at the instant CCSostenuto is pressed.
func (p *Processor) capturePlayingNotes(channel uint8) map[uint8]bool {
	ch := &p.channels[channel]
	snap := make(map[uint8]bool, len(ch.DownNotes))
	for k := range ch.DownNotes {
		snap[k] = true
	}
	return snap
}
