package synth

import "math"

// lfo is a free-running sine low-frequency oscillator with a startup
// delay, used for both the modulation LFO and the vibrato LFO
// (GenDelayModLFO/GenFreqModLFO and GenDelayVibLFO/GenFreqVibLFO).
// Output is bipolar, -1..1.
type lfo struct {
	sampleRate float64
	delaySec   float64
	freqHz     float64
	phaseT     float64 // seconds since note start
	phase      float64 // oscillator phase, 0..1
}

func (l *lfo) configure(delayTc, freqCents int16, sampleRate float64) {
	l.sampleRate = sampleRate
	l.delaySec = timecentsToSeconds(delayTc)
	l.freqHz = absoluteCentsToHz(freqCents)
	l.phaseT = 0
	l.phase = 0
}

// absoluteCentsToHz converts an SF2 "absolute cents" frequency
// generator value to Hz: 8.176Hz * 2^(cents/1200).
func absoluteCentsToHz(cents int16) float64 {
	return 8.176 * math.Exp2(float64(cents)/1200.0)
}

// advance steps the LFO by one sample period and returns its current
// output.
func (l *lfo) advance() float64 {
	dt := 1.0 / l.sampleRate
	l.phaseT += dt
	if l.phaseT < l.delaySec {
		return 0
	}
	l.phase += l.freqHz * dt
	if l.phase >= 1 {
		l.phase -= math.Floor(l.phase)
	}
	return math.Sin(2 * math.Pi * l.phase)
}
