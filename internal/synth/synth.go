// Package synth implements the 32-voice polyphonic sample generator:
// voice allocation, DAHDSR envelopes, LFOs, a resonant filter and the
// per-sample mixdown into a dry stereo pair plus reverb/chorus send
// buses.
package synth

import (
	"sync"

	"github.com/go-emu8000/softsynth/internal/sfont"
)

const NumVoices = 32

// Interpolation selects how Voice.readSample reconstructs a
// fractional-position sample: linear (smooth, default) or none (the
// frame at the cursor's integer part, matching the EMU8000's lo-fi
// rompler mode).
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationNone
)

// Synthesizer owns the voice pool, one mixer per MIDI channel, and the
// SoundFont store voices spawn from. It implements midi.VoiceController
// so a midi.Processor can drive it directly.
type Synthesizer struct {
	mu sync.Mutex

	store *sfont.Store
	voices [NumVoices]Voice
	mixers [16]channelMixer
	bankProgram [16]struct {
		bank    uint16
		program uint8
	}

	sampleRate float64
	now        uint64

	maxVoices int
	interp    Interpolation
}

// New creates a Synthesizer rendering at sampleRate Hz, selecting
// presets out of store.
func New(store *sfont.Store, sampleRate float64) *Synthesizer {
	s := &Synthesizer{store: store, sampleRate: sampleRate, maxVoices: NumVoices}
	for i := range s.mixers {
		s.mixers[i] = newChannelMixer()
	}
	return s
}

// SetMaxPolyphony caps how many of the fixed voice pool NoteOn may
// allocate into, clamped to [1, NumVoices]. Voices beyond the cap stay
// idle; existing playing voices are unaffected.
func (s *Synthesizer) SetMaxPolyphony(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	if n > NumVoices {
		n = NumVoices
	}
	s.maxVoices = n
}

// SetInterpolation selects the sample-read interpolation algorithm
// subsequent NoteOn calls spawn voices with.
func (s *Synthesizer) SetInterpolation(i Interpolation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interp = i
}

// SetStore swaps the active SoundFont. Existing voices keep playing
// from their already-resolved generator sets; only subsequent NoteOn
// calls see the new store.
func (s *Synthesizer) SetStore(store *sfont.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// NoteOn implements midi.VoiceController.
func (s *Synthesizer) NoteOn(channel, key, velocity uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp := s.bankProgram[channel]
	preset, ok := s.store.LookupPreset(bp.bank, uint16(bp.program))
	if !ok {
		return
	}
	pairs := s.store.MatchingZones(preset, key, velocity)
	for _, pair := range pairs {
		gs := sfont.Resolve(pair.Instrument, pair.InstZone, pair.Preset, pair.PresetZone)
		v := s.allocate(channel, gs[sfont.GenExclusiveClass], s.now)
		v.start(pair, s.store, channel, key, velocity, &s.mixers[channel], s.sampleRate, s.now, s.interp)
	}
}

// NoteOff implements midi.VoiceController.
func (s *Synthesizer) NoteOff(channel, key uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.voices {
		v := &s.voices[i]
		if v.active() && v.channel == channel && v.key == key && v.state == voicePlaying {
			v.noteOff()
		}
	}
}

// ReleaseNote is the deferred-release counterpart NoteOff uses once a
// held sustain/sostenuto pedal lifts; behaviorally identical to NoteOff.
func (s *Synthesizer) ReleaseNote(channel, key uint8) { s.NoteOff(channel, key) }

func (s *Synthesizer) PolyAftertouch(channel, key, pressure uint8) {}

func (s *Synthesizer) ChannelAftertouch(channel, pressure uint8) {}

// ProgramChange implements midi.VoiceController.
func (s *Synthesizer) ProgramChange(channel uint8, bank uint16, program uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bankProgram[channel] = struct {
		bank    uint16
		program uint8
	}{bank, program}
}

// PitchBend implements midi.VoiceController.
func (s *Synthesizer) PitchBend(channel uint8, value uint16, rangeSemitones uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].pitchBend = value
	s.mixers[channel].pitchBendRange = rangeSemitones
}

// Volume implements midi.VoiceController (CC7, channel volume).
func (s *Synthesizer) Volume(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].volume = amount
}

// Pan implements midi.VoiceController (CC10).
func (s *Synthesizer) Pan(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].pan = amount
}

// Expression implements midi.VoiceController (CC11).
func (s *Synthesizer) Expression(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].expression = amount
}

// ModWheel implements midi.VoiceController (CC1).
func (s *Synthesizer) ModWheel(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].modWheel = amount
}

// ReverbSend implements midi.VoiceController.
func (s *Synthesizer) ReverbSend(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].reverbSend = amount
}

// ChorusSend implements midi.VoiceController.
func (s *Synthesizer) ChorusSend(channel uint8, amount uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mixers[channel].chorusSend = amount
}

// AllNotesOff implements midi.VoiceController.
func (s *Synthesizer) AllNotesOff(channel uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.voices {
		v := &s.voices[i]
		if v.active() && v.channel == channel {
			v.noteOff()
		}
	}
}

// AllSoundOff implements midi.VoiceController.
func (s *Synthesizer) AllSoundOff(channel uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.voices {
		v := &s.voices[i]
		if v.active() && v.channel == channel {
			v.state = voiceIdle
		}
	}
}

// ActiveVoiceCount reports how many voices are currently sounding,
// for metering/tests.
func (s *Synthesizer) ActiveVoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.voices {
		if s.voices[i].active() {
			n++
		}
	}
	return n
}

// RenderBlock fills outL/outR with the dry mix of every active voice
// for one block of frames, and accumulates each voice's effects-send
// contribution into reverbSend/chorusSend (mono buses, pre-effects).
// All four slices must be the same length. Each rendered frame advances
// the synthesizer's internal sample counter, which voice-age scoring uses.
func (s *Synthesizer) RenderBlock(outL, outR, reverbSend, chorusSend []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(outL)
	for i := 0; i < n; i++ {
		var l, r, rv, ch float32
		for vi := range s.voices {
			v := &s.voices[vi]
			if !v.active() {
				continue
			}
			vl, vr, vrv, vch := v.render()
			l += vl
			r += vr
			rv += vrv
			ch += vch
		}
		outL[i] = l
		outR[i] = r
		reverbSend[i] = rv
		chorusSend[i] = ch
		s.now++
	}
}
