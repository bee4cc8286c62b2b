package synth_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-emu8000/softsynth/internal/sfont"
	"github.com/go-emu8000/softsynth/internal/synth"
	"github.com/go-emu8000/softsynth/internal/testutil"
)

func loadTestStore(t *testing.T) *sfont.Store {
	t.Helper()
	buf := testutil.DefaultBuilder().Build()
	store, err := sfont.Load(buf)
	require.NoError(t, err)
	return store
}

func TestSynthesizer_SilentByDefault(t *testing.T) {
	store := loadTestStore(t)
	s := synth.New(store, 44100)

	outL := make([]float32, 256)
	outR := make([]float32, 256)
	rv := make([]float32, 256)
	ch := make([]float32, 256)
	s.RenderBlock(outL, outR, rv, ch)

	for i := range outL {
		require.Zero(t, outL[i])
		require.Zero(t, outR[i])
	}
	require.Equal(t, 0, s.ActiveVoiceCount())
}

func TestSynthesizer_NoteOnProducesSound(t *testing.T) {
	store := loadTestStore(t)
	s := synth.New(store, 44100)

	s.NoteOn(0, 60, 100)
	require.Equal(t, 1, s.ActiveVoiceCount())

	outL := make([]float32, 1024)
	outR := make([]float32, 1024)
	rv := make([]float32, 1024)
	ch := make([]float32, 1024)
	s.RenderBlock(outL, outR, rv, ch)

	energy := float64(0)
	for i := range outL {
		energy += float64(outL[i]) * float64(outL[i])
	}
	require.Greater(t, energy, 0.0)
}

func TestSynthesizer_NoteOffReleasesVoice(t *testing.T) {
	store := loadTestStore(t)
	s := synth.New(store, 44100)

	s.NoteOn(0, 60, 100)
	s.NoteOff(0, 60)

	outL := make([]float32, 44100*2)
	outR := make([]float32, 44100*2)
	rv := make([]float32, 44100*2)
	ch := make([]float32, 44100*2)
	s.RenderBlock(outL, outR, rv, ch)

	require.Equal(t, 0, s.ActiveVoiceCount())
}

func TestSynthesizer_PolyphonyCapAndStealing(t *testing.T) {
	store := loadTestStore(t)
	s := synth.New(store, 44100)

	for key := uint8(0); key < 40; key++ {
		s.NoteOn(0, key, 100)
	}
	require.Equal(t, synth.NumVoices, s.ActiveVoiceCount())
}

func TestSynthesizer_AllSoundOff(t *testing.T) {
	store := loadTestStore(t)
	s := synth.New(store, 44100)

	s.NoteOn(0, 60, 100)
	s.NoteOn(0, 64, 100)
	s.AllSoundOff(0)
	require.Equal(t, 0, s.ActiveVoiceCount())
}

func TestSynthesizer_PitchBendShiftsFrequency(t *testing.T) {
	store := loadTestStore(t)

	measure := func(bendSemitones float64) float64 {
		s := synth.New(store, 44100)
		if bendSemitones != 0 {
			// bend range default is 2 semitones; +8192 maps to +range.
			v := uint16(8192 + int(8192*bendSemitones/2))
			s.PitchBend(0, v, 2)
		}
		s.NoteOn(0, 60, 100)
		n := 4096
		outL := make([]float32, n)
		outR := make([]float32, n)
		rv := make([]float32, n)
		ch := make([]float32, n)
		s.RenderBlock(outL, outR, rv, ch)

		zeroCrossings := 0
		for i := 1; i < n; i++ {
			if (outL[i-1] < 0) != (outL[i] < 0) {
				zeroCrossings++
			}
		}
		return float64(zeroCrossings)
	}

	base := measure(0)
	bent := measure(1) // +1 semitone, ratio 2^(1/12)
	if base > 0 {
		ratio := bent / base
		want := math.Exp2(1.0 / 12)
		require.InDelta(t, want, ratio, 0.15)
	}
}
