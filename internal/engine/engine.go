package engine

import (
	"math"

	"github.com/go-emu8000/softsynth/internal/fx"
	"github.com/go-emu8000/softsynth/internal/midi"
	"github.com/go-emu8000/softsynth/internal/sfont"
	"github.com/go-emu8000/softsynth/internal/synth"
)

// MaxVoices is the engine's fixed polyphony, re-exported so a driver
// can validate a requested voice budget against it.
const MaxVoices = synth.NumVoices

// Engine is the complete render pipeline: SoundFont store -> MIDI
// processor -> synthesizer -> effects bus -> stereo output, advanced
// one block at a time.
type Engine struct {
	store *sfont.Store
	proc  *midi.Processor
	synth *synth.Synthesizer
	bus   *fx.Bus

	sampleRate float64
	blockTime  uint64 // absolute sample time of the next block's frame 0
	masterGain float64

	reverbSend, chorusSend []float32
}

// New builds an Engine rendering store's presets at cfg.SampleRate.
func New(cfg Config, store *sfont.Store) *Engine {
	s := synth.New(store, cfg.SampleRate)
	s.SetMaxPolyphony(cfg.MaxPolyphony)
	s.SetInterpolation(cfg.Interpolation)

	bus := fx.NewBus(cfg.SampleRate)
	bus.SetReverbEnabled(cfg.ReverbEnabled)
	bus.SetChorusEnabled(cfg.ChorusEnabled)

	e := &Engine{
		store:      store,
		synth:      s,
		proc:       midi.NewProcessor(s, cfg.QueueCapacity),
		bus:        bus,
		sampleRate: cfg.SampleRate,
		masterGain: cfg.MasterGain,
	}
	return e
}

// LoadStore swaps the active SoundFont without disturbing already
// playing voices.
func (e *Engine) LoadStore(store *sfont.Store) {
	e.store = store
	e.synth.SetStore(store)
}

// Enqueue schedules a raw MIDI channel message for effect at absolute
// sample time t.
func (e *Engine) Enqueue(t uint64, status, data1, data2 byte) error {
	return e.proc.QueueEvent(t, status, data1, data2)
}

// RenderBlock advances MIDI processing through this block's span and
// fills outL/outR (equal length) with the mixed, effected stereo
// signal for frames [blockTime, blockTime+len(outL)). Pending events
// are applied at their own sample offset: the block is rendered in
// sub-spans split at each event boundary rather than all at once, so a
// NoteOn scheduled mid-block doesn't sound a block early. Events whose
// time is already before the block start are applied at frame 0.
func (e *Engine) RenderBlock(outL, outR []float32) {
	n := len(outL)
	if cap(e.reverbSend) < n {
		e.reverbSend = make([]float32, n)
		e.chorusSend = make([]float32, n)
	}
	reverbSend := e.reverbSend[:n]
	chorusSend := e.chorusSend[:n]

	e.proc.DrainPending()

	blockEnd := e.blockTime + uint64(n)
	t := e.blockTime
	cursor := 0
	for cursor < n {
		subLen := n - cursor
		if evTime, ok := e.proc.NextEventTime(); ok && evTime < blockEnd {
			if evTime <= t {
				e.proc.Advance(t)
				continue
			}
			subLen = int(evTime - t)
		}

		subL := outL[cursor : cursor+subLen]
		subR := outR[cursor : cursor+subLen]
		subRv := reverbSend[cursor : cursor+subLen]
		subCh := chorusSend[cursor : cursor+subLen]

		e.synth.RenderBlock(subL, subR, subRv, subCh)
		e.bus.Process(subRv, subCh, subL, subR)

		cursor += subLen
		t += uint64(subLen)
	}

	applyMasterGain(outL, outR, float32(e.masterGain))
	e.blockTime = blockEnd
}

// applyMasterGain scales outL/outR by gain and soft-saturates the
// result, the final output-stage limiter standing between the mixed
// voices/effects and whatever audio backend consumes the block.
func applyMasterGain(outL, outR []float32, gain float32) {
	for i := range outL {
		outL[i] = saturate(outL[i] * gain)
		outR[i] = saturate(outR[i] * gain)
	}
}

// saturate soft-clips toward +-1 with a tanh curve once a sample
// exceeds unity, rather than hard-clipping.
func saturate(x float32) float32 {
	if x > 1 || x < -1 {
		return float32(math.Tanh(float64(x)))
	}
	return x
}

// ActiveVoiceCount reports how many voices are currently sounding.
func (e *Engine) ActiveVoiceCount() int { return e.synth.ActiveVoiceCount() }

// SampleRate returns the engine's render rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }
