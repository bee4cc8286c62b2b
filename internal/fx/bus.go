package fx

// Bus ties the shared Reverb and Chorus sends together and mixes their
// wet output back into the dry stereo bus, implementing a send/return
// architecture: one Reverb and one Chorus instance serve every voice,
// rather than a per-voice effect chain.
type Bus struct {
	reverb *Reverb
	chorus *Chorus

	reverbEnabled bool
	chorusEnabled bool
}

// NewBus builds a Bus tuned for sampleRate with reasonable default
// reverb/chorus parameters, both enabled.
func NewBus(sampleRate float64) *Bus {
	return &Bus{
		reverb:        NewReverb(sampleRate, 0.6, 0.3),
		chorus:        NewChorus(sampleRate, 0.9, 4.0),
		reverbEnabled: true,
		chorusEnabled: true,
	}
}

// SetReverbEnabled toggles whether Process mixes the reverb return into
// the output, without resetting the reverb's internal delay state.
func (b *Bus) SetReverbEnabled(enabled bool) { b.reverbEnabled = enabled }

// SetChorusEnabled toggles whether Process mixes the chorus return into
// the output, without resetting the chorus's internal delay state.
func (b *Bus) SetChorusEnabled(enabled bool) { b.chorusEnabled = enabled }

// Process runs reverbSend/chorusSend (mono, pre-effects, one sample per
// frame) through their respective networks and adds the wet result into
// outL/outR in place. All four slices must be the same length.
func (b *Bus) Process(reverbSend, chorusSend, outL, outR []float32) {
	n := len(outL)
	for i := 0; i < n; i++ {
		var rl, rr, cl, cr float32
		if b.reverbEnabled {
			rl, rr = b.reverb.Process(reverbSend[i])
		}
		if b.chorusEnabled {
			cl, cr = b.chorus.Process(chorusSend[i])
		}
		outL[i] += rl + cl
		outR[i] += rr + cr
	}
}
