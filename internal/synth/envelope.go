package synth

import "math"

// EnvPhase names one stage of a DAHDSR envelope generator.
type EnvPhase int

const (
	EnvDelay EnvPhase = iota
	EnvAttack
	EnvHold
	EnvDecay
	EnvSustain
	EnvRelease
	EnvFinished
)

// envelope is a Delay-Attack-Hold-Decay-Sustain-Release generator
// driven in real sample-rate time, following the six SF2 generator
// pairs (GenXxxVolEnv / GenXxxModEnv share this shape).
// Attack ramps linearly to 1.0; decay and release ramp linearly in
// amplitude toward their target level, reaching it exactly at the end of
// the stage's duration. They are not exponential (linear-in-dB) curves.
type envelope struct {
	sampleRate float64

	delaySec, attackSec, holdSec, decaySec, releaseSec float64
	sustainLevel                                        float64 // 0..1, linear

	phase    EnvPhase
	phaseT   float64 // seconds elapsed in the current phase
	level    float64 // current output, 0..1
	releaseFrom float64 // level at the instant release began
}

// configure sets the envelope's per-stage durations from a resolved
// generator set. timecents follow the SF2 convention: seconds =
// 2^(tc/1200); -12000 is the SF2 idiom for "effectively zero".
func (e *envelope) configure(delayTc, attackTc, holdTc, decayTc, releaseTc int16, sustainCb int16, sampleRate float64) {
	e.sampleRate = sampleRate
	e.delaySec = timecentsToSeconds(delayTc)
	e.attackSec = timecentsToSeconds(attackTc)
	e.holdSec = timecentsToSeconds(holdTc)
	e.decaySec = timecentsToSeconds(decayTc)
	e.releaseSec = timecentsToSeconds(releaseTc)
	// sustainCb is attenuation in centibels from full scale (0 = no
	// attenuation, 1000 = -100dB, i.e. silence).
	e.sustainLevel = centibelsToLinear(sustainCb)
	e.phase = EnvDelay
	e.phaseT = 0
	e.level = 0
}

func timecentsToSeconds(tc int16) float64 {
	if tc <= -12000 {
		return 0
	}
	return math.Exp2(float64(tc) / 1200.0)
}

func centibelsToLinear(cb int16) float64 {
	if cb <= 0 {
		return 1
	}
	if cb >= 1000 {
		return 0
	}
	return math.Pow(10, -float64(cb)/200.0)
}

// noteOff begins the release phase from wherever the envelope currently is.
func (e *envelope) noteOff() {
	if e.phase == EnvFinished {
		return
	}
	e.phase = EnvRelease
	e.phaseT = 0
	e.releaseFrom = e.level
}

// forceRelease overrides the release phase with a fixed, short ramp to
// silence from the envelope's current level, for exclusive-class choke
// and voice stealing rather than the generator's own release time.
func (e *envelope) forceRelease(seconds float64) {
	if e.phase == EnvFinished {
		return
	}
	e.releaseSec = seconds
	e.phase = EnvRelease
	e.phaseT = 0
	e.releaseFrom = e.level
}

func (e *envelope) finished() bool { return e.phase == EnvFinished }

// advance steps the envelope by one sample period and returns the new
// level, 0..1.
func (e *envelope) advance() float64 {
	dt := 1.0 / e.sampleRate
	switch e.phase {
	case EnvDelay:
		e.phaseT += dt
		e.level = 0
		if e.phaseT >= e.delaySec {
			e.phase = EnvAttack
			e.phaseT = 0
		}
	case EnvAttack:
		e.phaseT += dt
		if e.attackSec <= 0 {
			e.level = 1
		} else {
			e.level = e.phaseT / e.attackSec
		}
		if e.level >= 1 {
			e.level = 1
			e.phase = EnvHold
			e.phaseT = 0
		}
	case EnvHold:
		e.phaseT += dt
		e.level = 1
		if e.phaseT >= e.holdSec {
			e.phase = EnvDecay
			e.phaseT = 0
		}
	case EnvDecay:
		e.phaseT += dt
		if e.decaySec <= 0 {
			e.level = e.sustainLevel
		} else {
			frac := e.phaseT / e.decaySec
			if frac > 1 {
				frac = 1
			}
			e.level = 1 + frac*(e.sustainLevel-1)
		}
		if e.phaseT >= e.decaySec {
			e.phase = EnvSustain
			e.phaseT = 0
			e.level = e.sustainLevel
		}
	case EnvSustain:
		e.level = e.sustainLevel
	case EnvRelease:
		e.phaseT += dt
		if e.releaseSec <= 0 {
			e.level = 0
		} else {
			frac := e.phaseT / e.releaseSec
			if frac > 1 {
				frac = 1
			}
			e.level = e.releaseFrom * (1 - frac)
		}
		if e.phaseT >= e.releaseSec || e.level <= 0.0001 {
			e.level = 0
			e.phase = EnvFinished
		}
	case EnvFinished:
		e.level = 0
	}
	return e.level
}
