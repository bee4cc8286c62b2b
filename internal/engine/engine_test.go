package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-emu8000/softsynth/internal/engine"
	"github.com/go-emu8000/softsynth/internal/sfont"
	"github.com/go-emu8000/softsynth/internal/testutil"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	buf := testutil.DefaultBuilder().Build()
	store, err := sfont.Load(buf)
	require.NoError(t, err)
	return engine.New(engine.DefaultConfig(), store)
}

func TestEngine_NoteOnThroughRenderProducesSound(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Enqueue(0, 0x90, 60, 100))

	outL := make([]float32, 4096)
	outR := make([]float32, 4096)
	e.RenderBlock(outL, outR)

	require.Equal(t, 1, e.ActiveVoiceCount())

	energy := float64(0)
	for i := range outL {
		energy += float64(outL[i]) * float64(outL[i])
	}
	require.Greater(t, energy, 0.0)
}

func TestEngine_MultipleBlocksAdvanceMidiTime(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Enqueue(5000, 0x90, 60, 100))

	blockSize := 1024
	outL := make([]float32, blockSize)
	outR := make([]float32, blockSize)

	for i := 0; i < 6; i++ {
		e.RenderBlock(outL, outR)
	}
	require.Equal(t, 1, e.ActiveVoiceCount())
}

func TestEngine_ReverbSendIncreasesEnergy(t *testing.T) {
	energyFor := func(reverbCC uint8) float64 {
		e := newTestEngine(t)
		require.NoError(t, e.Enqueue(0, 0xB0, reverbSendCC, reverbCC))
		require.NoError(t, e.Enqueue(0, 0x90, 60, 100))

		outL := make([]float32, 8192)
		outR := make([]float32, 8192)
		e.RenderBlock(outL, outR)

		energy := 0.0
		for i := range outL {
			energy += float64(outL[i])*float64(outL[i]) + float64(outR[i])*float64(outR[i])
		}
		return energy
	}

	dry := energyFor(0)
	wet := energyFor(127)
	require.Greater(t, wet, dry)
}

const reverbSendCC = 91
