package fx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-emu8000/softsynth/internal/fx"
)

func TestReverb_ProducesTailAfterImpulse(t *testing.T) {
	r := fx.NewReverb(44100, 0.6, 0.3)

	l, rr := r.Process(1.0)
	_ = l
	_ = rr

	energy := float32(0)
	for i := 0; i < 4096; i++ {
		wl, wr := r.Process(0)
		energy += wl*wl + wr*wr
	}
	require.Greater(t, energy, float32(0))
}

func TestReverb_SilentInputStaysSilent(t *testing.T) {
	r := fx.NewReverb(44100, 0.6, 0.3)
	for i := 0; i < 2048; i++ {
		wl, wr := r.Process(0)
		require.Zero(t, wl)
		require.Zero(t, wr)
	}
}

func TestBus_AddsWetSignalToDryBus(t *testing.T) {
	b := fx.NewBus(44100)

	n := 2048
	reverbSend := make([]float32, n)
	chorusSend := make([]float32, n)
	reverbSend[0] = 1.0

	outL := make([]float32, n)
	outR := make([]float32, n)
	b.Process(reverbSend, chorusSend, outL, outR)

	energy := float32(0)
	for i := range outL {
		energy += outL[i]*outL[i] + outR[i]*outR[i]
	}
	require.Greater(t, energy, float32(0))
}

func TestChorus_SilentInputStaysSilent(t *testing.T) {
	c := fx.NewChorus(44100, 0.9, 4.0)
	for i := 0; i < 1024; i++ {
		wl, wr := c.Process(0)
		require.Zero(t, wl)
		require.Zero(t, wr)
	}
}
