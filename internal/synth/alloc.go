package synth

const (
	exclusiveKillSeconds = 0.008 // <=10ms fast release for exclusive-class choke
	stealReleaseSeconds  = 0.004 // <=5ms fast release before a stolen voice is reused
)

// allocate picks a voice to spawn a new note into: the first idle slot
// if one exists, otherwise the lowest-scoring active voice is stolen.
// Before spawning, every active voice sharing the new note's non-zero
// exclusive class is fast-released rather than cut instantly. The
// search is bounded by maxVoices, the engine's configured polyphony
// cap; voices beyond that cap stay idle and unused.
func (s *Synthesizer) allocate(channel uint8, exclusiveClass int16, now uint64) *Voice {
	if exclusiveClass != 0 {
		for i := range s.voices {
			v := &s.voices[i]
			if v.active() && v.channel == channel && v.exclusiveClass == exclusiveClass {
				v.forceRelease(exclusiveKillSeconds)
			}
		}
	}

	n := s.maxVoices
	if n <= 0 || n > len(s.voices) {
		n = len(s.voices)
	}
	pool := s.voices[:n]

	for i := range pool {
		if !pool[i].active() {
			return &pool[i]
		}
	}

	worst := 0
	worstScore := stealScore(&pool[0], now)
	for i := 1; i < len(pool); i++ {
		sc := stealScore(&pool[i], now)
		if sc < worstScore {
			worstScore = sc
			worst = i
		}
	}
	stolen := &pool[worst]
	stolen.forceRelease(stealReleaseSeconds)
	return stolen
}

// stealScore ranks a voice for stealing: allocate steals the voice with
// the lowest score. Release (+1000) and decay (+500) phases and higher
// attenuation raise the score; age lowers it by one point per 441
// samples, so among otherwise equal voices the oldest is stolen.
func stealScore(v *Voice, now uint64) float64 {
	score := 0.0
	switch v.volEnv.phase {
	case EnvRelease:
		score += 1000
	case EnvDecay:
		score += 500
	}
	score += v.attenCb + v.velAttenCb
	age := now - v.startedAt
	score -= float64(age) / 441.0
	return score
}
