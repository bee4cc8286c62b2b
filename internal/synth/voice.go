package synth

import (
	"math"

	"github.com/go-emu8000/softsynth/internal/sfont"
)

// voiceState names where a Voice sits in its lifecycle, independent of
// its volume envelope's own phase, so the allocator can find idle
// voices without inspecting envelope internals.
type voiceState int

const (
	voiceIdle voiceState = iota
	voicePlaying
	voiceReleasing
)

// channelMixer holds the live per-channel controller values a playing
// Voice reads every sample: pitch bend, pan, volume/expression, mod
// wheel and effects sends. Synthesizer owns one per MIDI channel and
// updates it from MidiProcessor's VoiceController callbacks.
type channelMixer struct {
	pitchBend      uint16
	pitchBendRange uint8
	pan            uint8
	volume         uint8
	expression     uint8
	modWheel       uint8
	reverbSend     uint8
	chorusSend     uint8
}

func newChannelMixer() channelMixer {
	return channelMixer{
		pitchBend:      8192,
		pitchBendRange: 2,
		pan:            64,
		volume:         100,
		expression:     127,
	}
}

// Voice is one of the synthesizer's 32 concurrently playable voices: a
// sample generator, two envelopes, two LFOs, and one resonant filter,
// following the EMU8000 per-voice signal path.
type Voice struct {
	state voiceState

	channel        uint8
	key            uint8
	velocity       uint8
	exclusiveClass int16

	sample *sfont.Sample
	gs     sfont.GeneratorSet

	sampleRate   float64 // output render rate
	cursor       float64 // fractional frame position within sample.Data
	sampleEnd    float64
	loopStart    float64
	loopEnd      float64
	sampleModes  int16

	volEnv envelope
	modEnv envelope
	modLFO lfo
	vibLFO lfo
	filter lowpassFilter

	pan        float64 // -1..1
	attenCb    float64 // static (non-velocity) attenuation, centibels
	velAttenCb float64 // velocity-derived attenuation contribution, centibels

	mixer *channelMixer
	interp Interpolation

	startedAt uint64 // render-time sample counter at NoteOn, for age scoring
}

// start spawns the voice for one matched (preset zone, instrument
// zone) pair, running the generator-merge and voice-spawn sequence.
func (v *Voice) start(pair sfont.ZonePair, store *sfont.Store, channel, key, velocity uint8, mixer *channelMixer, sampleRate float64, now uint64, interp Interpolation) {
	gs := sfont.Resolve(pair.Instrument, pair.InstZone, pair.Preset, pair.PresetZone)
	sample := store.Sample(pair.InstZone.SampleIndex)

	v.state = voicePlaying
	v.channel, v.key, v.velocity = channel, key, velocity
	v.exclusiveClass = int16(gs[sfont.GenExclusiveClass])
	v.sample = sample
	v.gs = gs
	v.sampleRate = sampleRate
	v.mixer = mixer
	v.interp = interp
	v.startedAt = now

	startOff := int32(gs[sfont.GenStartAddrsOffset]) + int32(gs[sfont.GenStartAddrsCoarseOffset])*32768
	endOff := int32(gs[sfont.GenEndAddrsOffset]) + int32(gs[sfont.GenEndAddrsCoarseOffset])*32768
	loopStartOff := int32(gs[sfont.GenStartloopAddrsOffset]) + int32(gs[sfont.GenStartloopAddrsCoarseOffset])*32768
	loopEndOff := int32(gs[sfont.GenEndloopAddrsOffset]) + int32(gs[sfont.GenEndloopAddrsCoarseOffset])*32768

	v.cursor = clampFrame(float64(startOff), sample)
	v.sampleEnd = clampFrame(float64(sample.Len())+float64(endOff), sample)
	v.loopStart = clampFrame(float64(int32(sample.LoopStart)+loopStartOff), sample)
	v.loopEnd = clampFrame(float64(int32(sample.LoopEnd)+loopEndOff), sample)
	if v.loopEnd <= v.loopStart {
		v.loopEnd = v.loopStart + 1
	}
	v.sampleModes = gs[sfont.GenSampleModes]

	v.volEnv.configure(gs[sfont.GenDelayVolEnv], gs[sfont.GenAttackVolEnv], gs[sfont.GenHoldVolEnv], gs[sfont.GenDecayVolEnv], gs[sfont.GenReleaseVolEnv], gs[sfont.GenSustainVolEnv], sampleRate)
	v.modEnv.configure(gs[sfont.GenDelayModEnv], gs[sfont.GenAttackModEnv], gs[sfont.GenHoldModEnv], gs[sfont.GenDecayModEnv], gs[sfont.GenReleaseModEnv], gs[sfont.GenSustainModEnv], sampleRate)
	v.modLFO.configure(gs[sfont.GenDelayModLFO], gs[sfont.GenFreqModLFO], sampleRate)
	v.vibLFO.configure(gs[sfont.GenDelayVibLFO], gs[sfont.GenFreqVibLFO], sampleRate)
	v.filter.reset(sampleRate)

	v.pan = clampf(float64(gs[sfont.GenPan])/500, -1, 1)
	v.attenCb = float64(gs[sfont.GenInitialAttenuation])
	v.velAttenCb = velocityToAttenuationCb(velocity)
}

// noteOff releases the voice. With GenSampleModes loop-until-release
// (3) looping stops here and the sample plays on to its end; with
// continuous loop (1) the sample keeps looping through the release tail.
func (v *Voice) noteOff() {
	if v.state != voicePlaying {
		return
	}
	v.state = voiceReleasing
	v.volEnv.noteOff()
	v.modEnv.noteOff()
}

// forceRelease fast-releases the voice over a fixed duration instead of
// the generator-derived release time, for exclusive-class choke and
// voice stealing where an instant cut to silence would click.
func (v *Voice) forceRelease(seconds float64) {
	if v.state == voiceIdle {
		return
	}
	v.state = voiceReleasing
	v.volEnv.forceRelease(seconds)
	v.modEnv.forceRelease(seconds)
}

func (v *Voice) active() bool { return v.state != voiceIdle }

// render produces one stereo sample frame plus this voice's reverb and
// chorus send levels, and advances all internal state by one sample.
func (v *Voice) render() (left, right, reverbSend, chorusSend float32) {
	if v.state == voiceIdle {
		return 0, 0, 0, 0
	}

	volLevel := v.volEnv.advance()
	modLevel := v.modEnv.advance()
	modLfoVal := v.modLFO.advance()
	vibLfoVal := v.vibLFO.advance()

	if v.volEnv.finished() {
		v.state = voiceIdle
		return 0, 0, 0, 0
	}

	pitchCents := v.pitchCents(modLevel, modLfoVal, vibLfoVal)
	ratio := math.Exp2(pitchCents/1200) * float64(v.sample.SampleRate) / v.sampleRate

	sampleVal := v.readSample()
	v.advanceCursor(ratio)

	cutoffCents := v.gs[sfont.GenInitialFilterFc] + int16(float64(v.gs[sfont.GenModEnvToFilterFc])*modLevel) + int16(float64(v.gs[sfont.GenModLFOToFilterFc])*modLfoVal)
	v.filter.setParams(cutoffCents, v.gs[sfont.GenInitialFilterQ])
	filtered := v.filter.process(sampleVal)

	attenCb := v.attenCb + v.velAttenCb + v.mixer.ccAttenuationCb() - float64(v.gs[sfont.GenModLFOToVolume])*modLfoVal
	amp := volLevel * centibelsToLinear(int16(clampf(attenCb, 0, 1440)))

	out := filtered * float32(amp)

	pan := v.pan + v.mixer.ccPanOffset()
	pan = clampf(pan, -1, 1)
	leftGain, rightGain := panGains(pan)
	left = out * leftGain
	right = out * rightGain

	reverbAmt := clampf((float64(v.gs[sfont.GenReverbEffectsSend])+v.mixer.ccReverbCb())/1000, 0, 1)
	chorusAmt := clampf((float64(v.gs[sfont.GenChorusEffectsSend])+v.mixer.ccChorusCb())/1000, 0, 1)
	// The mono effects sends carry (L+R)/2 of the panned voice output.
	mono := (left + right) / 2
	reverbSend = mono * float32(reverbAmt)
	chorusSend = mono * float32(chorusAmt)
	return left, right, reverbSend, chorusSend
}

func (v *Voice) pitchCents(modLevel, modLfoVal, vibLfoVal float64) float64 {
	gs := v.gs
	rootKey := int(gs[sfont.GenOverridingRootKey])
	if rootKey < 0 {
		rootKey = int(v.sample.OriginalKey)
	}
	keynum := int(v.key)
	if gs[sfont.GenKeynum] >= 0 {
		keynum = int(gs[sfont.GenKeynum])
	}
	scale := float64(gs[sfont.GenScaleTuning])

	cents := float64(keynum-rootKey) * scale
	cents += float64(gs[sfont.GenCoarseTune]) * 100
	cents += float64(gs[sfont.GenFineTune])
	cents += float64(v.sample.Correction)
	cents += float64(gs[sfont.GenModEnvToPitch]) * modLevel
	cents += float64(gs[sfont.GenModLFOToPitch]) * modLfoVal
	cents += float64(gs[sfont.GenVibLFOToPitch]) * vibLfoVal
	cents += v.mixer.ccModWheelVibCents() * vibLfoVal
	cents += v.mixer.pitchBendCents()
	return cents
}

// readSample reconstructs the frame at cursor, linearly interpolating
// the two surrounding frames unless the voice was started with
// InterpolationNone.
func (v *Voice) readSample() float32 {
	data := v.sample.Data
	i0 := int(v.cursor)
	if i0 < 0 || i0 >= len(data) {
		return 0
	}
	if v.interp == InterpolationNone {
		return float32(data[i0]) / 32768
	}
	frac := v.cursor - float64(i0)
	s0 := data[i0]
	i1 := i0 + 1
	if v.loops() && i1 >= int(v.loopEnd) {
		i1 = int(v.loopStart)
	}
	if i1 < 0 || i1 >= len(data) {
		i1 = i0
	}
	s1 := data[i1]
	return float32((1-frac)*float64(s0)+frac*float64(s1)) / 32768
}

// loops reports whether the cursor should currently wrap at the loop
// points. SampleModeLoop sustains indefinitely; SampleModeLoopContinue
// only loops while the voice is still playing and falls through to
// play-to-end once release begins.
func (v *Voice) loops() bool {
	switch v.sampleModes {
	case sfont.SampleModeLoop:
		return true
	case sfont.SampleModeLoopContinue:
		return v.state != voiceReleasing
	default:
		return false
	}
}

func (v *Voice) advanceCursor(ratio float64) {
	v.cursor += ratio
	if v.loops() {
		if v.cursor >= v.loopEnd {
			span := v.loopEnd - v.loopStart
			if span <= 0 {
				span = 1
			}
			v.cursor = v.loopStart + math.Mod(v.cursor-v.loopStart, span)
		}
		return
	}
	if v.cursor >= v.sampleEnd {
		v.state = voiceIdle
	}
}

func clampFrame(v float64, s *sfont.Sample) float64 {
	return clampf(v, 0, float64(s.Len()))
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// velocityToAttenuationCb approximates the SF2 default modulator
// (MIDI velocity -> initial attenuation, concave, amount 960cb): full
// velocity contributes no attenuation, velocity 0 would contribute the
// full 960 centibels and velocity 1 contributes about 931.
func velocityToAttenuationCb(vel uint8) float64 {
	if vel >= 127 {
		return 0
	}
	x := float64(vel) / 127
	concave := 1 - math.Log10(9*x+1) // 1 at x=0, 0 at x=1
	return concave * 960
}

func panGains(pan float64) (left, right float32) {
	angle := (pan + 1) * math.Pi / 4 // -1 => 0 (left), 0 => pi/4 (center), 1 => pi/2 (right)
	return float32(math.Cos(angle)), float32(math.Sin(angle))
}

func (m *channelMixer) pitchBendCents() float64 {
	norm := (float64(m.pitchBend) - 8192) / 8192
	return norm * float64(m.pitchBendRange) * 100
}

// ccAttenuationCb folds CC7 (volume) and CC11 (expression) into
// additional attenuation, per the SF2 default modulator table.
func (m *channelMixer) ccAttenuationCb() float64 {
	volAtten := velocityToAttenuationCb(m.volume)
	expAtten := velocityToAttenuationCb(m.expression)
	return volAtten + expAtten
}

func (m *channelMixer) ccPanOffset() float64 {
	return (float64(m.pan) - 64) / 63
}

// ccModWheelVibCents is the SF2 default modulator for CC1 (mod wheel ->
// vibrato LFO to pitch, 50 cents full-scale), summed with the zone's
// own GenVibLFOToPitch amount.
func (m *channelMixer) ccModWheelVibCents() float64 {
	return float64(m.modWheel) / 127 * 50
}

func (m *channelMixer) ccReverbCb() float64 {
	return float64(m.reverbSend) / 127 * 1000
}

func (m *channelMixer) ccChorusCb() float64 {
	return float64(m.chorusSend) / 127 * 1000
}
