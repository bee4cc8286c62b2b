package fx

import "math"

// Chorus is a modulated-delay-line chorus fed from a single mono send
// bus: two taps, modulated by independent LFOs and panned apart, so a
// single sustained note spreads in the stereo field.
type Chorus struct {
	buf      []float32
	pos      int
	sampleRate float64

	rateHz  float64
	depthMs float64
	phaseL, phaseR float64
}

// NewChorus builds a chorus tuned for sampleRate with a 0.5-4Hz typical
// rate and a few-millisecond depth.
func NewChorus(sampleRate float64, rateHz, depthMs float64) *Chorus {
	maxDelayMs := depthMs + 5
	n := int(maxDelayMs/1000*sampleRate) + 2
	return &Chorus{
		buf:        make([]float32, n),
		sampleRate: sampleRate,
		rateHz:     rateHz,
		depthMs:    depthMs,
		phaseR:     0.5, // half-cycle (antiphase) offset decorrelates L/R
	}
}

// Process runs one mono send sample through the network, producing a
// stereo wet pair.
func (c *Chorus) Process(in float32) (wetL, wetR float32) {
	c.buf[c.pos] = in
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}

	dt := c.rateHz / c.sampleRate
	c.phaseL += dt
	if c.phaseL >= 1 {
		c.phaseL -= math.Floor(c.phaseL)
	}
	c.phaseR += dt
	if c.phaseR >= 1 {
		c.phaseR -= math.Floor(c.phaseR)
	}

	wetL = c.tap(c.phaseL)
	wetR = c.tap(c.phaseR)
	return wetL, wetR
}

func (c *Chorus) tap(phase float64) float32 {
	delayMs := c.depthMs * (0.5 + 0.5*math.Sin(2*math.Pi*phase))
	delaySamples := delayMs / 1000 * c.sampleRate

	readPos := float64(c.pos) - delaySamples
	n := len(c.buf)
	for readPos < 0 {
		readPos += float64(n)
	}
	i0 := int(readPos) % n
	frac := readPos - math.Floor(readPos)
	i1 := (i0 + 1) % n
	return float32((1-frac)*float64(c.buf[i0]) + frac*float64(c.buf[i1]))
}
