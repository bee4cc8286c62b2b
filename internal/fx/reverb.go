// Package fx implements the shared reverb and chorus send/return effects
// fed by every Voice's per-sample send gains, rather than one effect
// instance per voice.
package fx

// combFilter is one feedback comb filter stage of the Schroeder/Freeverb
// reverb network: a delay line with feedback and one-pole damping in
// the feedback path.
type combFilter struct {
	buf    []float32
	pos    int
	feedback float32
	damp     float32
	filterStore float32
}

func newComb(delaySamples int, feedback, damp float32) *combFilter {
	if delaySamples < 1 {
		delaySamples = 1
	}
	return &combFilter{buf: make([]float32, delaySamples), feedback: feedback, damp: damp}
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.filterStore = out*(1-c.damp) + c.filterStore*c.damp
	c.buf[c.pos] = in + c.filterStore*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// allpassFilter is a Schroeder allpass diffuser stage.
type allpassFilter struct {
	buf  []float32
	pos  int
	gain float32
}

func newAllpass(delaySamples int, gain float32) *allpassFilter {
	if delaySamples < 1 {
		delaySamples = 1
	}
	return &allpassFilter{buf: make([]float32, delaySamples), gain: gain}
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.gain
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// Reverb is a four-comb/two-allpass Schroeder network, run once per
// sample from a single mono send bus and spread to stereo with
// a small tuning offset between channels.
type Reverb struct {
	combsL, combsR     [4]*combFilter
	allpassesL, allpassesR [2]*allpassFilter
	preDelay           []float32
	preDelayPos        int
	wet, roomSize, damp float32
}

// combTuningsMs / allpassTuningsMs are Freeverb-derived delay lengths
// (milliseconds at 44.1kHz), rounded to the engine's actual sample rate.
var combTuningsMs = [4]float64{25.3, 26.9, 28.9, 30.2}
var allpassTuningsMs = [2]float64{12.6, 10.0}
var stereoSpreadMs = 0.9

// NewReverb builds a reverb tuned for sampleRate. roomSize and damp are
// both in 0..1; roomSize scales comb feedback, damp scales the comb
// network's high-frequency damping.
func NewReverb(sampleRate float64, roomSize, damp float32) *Reverb {
	r := &Reverb{wet: 1, roomSize: roomSize, damp: damp}
	feedback := 0.28 + roomSize*0.7
	for i := 0; i < 4; i++ {
		n := int(combTuningsMs[i] / 1000 * sampleRate)
		r.combsL[i] = newComb(n, feedback, damp)
		r.combsR[i] = newComb(int(float64(n)+stereoSpreadMs/1000*sampleRate), feedback, damp)
	}
	for i := 0; i < 2; i++ {
		n := int(allpassTuningsMs[i] / 1000 * sampleRate)
		r.allpassesL[i] = newAllpass(n, 0.5)
		r.allpassesR[i] = newAllpass(int(float64(n)+stereoSpreadMs/1000*sampleRate), 0.5)
	}
	preDelayN := int(0.02 * sampleRate)
	if preDelayN < 1 {
		preDelayN = 1
	}
	r.preDelay = make([]float32, preDelayN)
	return r
}

// Process runs one mono send sample through the network, producing a
// stereo wet pair.
func (r *Reverb) Process(in float32) (wetL, wetR float32) {
	r.preDelay[r.preDelayPos] = in
	r.preDelayPos++
	if r.preDelayPos >= len(r.preDelay) {
		r.preDelayPos = 0
	}
	delayed := r.preDelay[r.preDelayPos]

	var l, rr float32
	for i := 0; i < 4; i++ {
		l += r.combsL[i].process(delayed)
		rr += r.combsR[i].process(delayed)
	}
	for i := 0; i < 2; i++ {
		l = r.allpassesL[i].process(l)
		rr = r.allpassesR[i].process(rr)
	}
	return l * r.wet, rr * r.wet
}
