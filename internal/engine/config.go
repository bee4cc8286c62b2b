// Package engine wires the SoundFont store, MIDI event processor,
// polyphonic synthesizer and effects bus into the single entry point a
// driver (CLI, GUI, audio callback) renders through.
package engine

import "github.com/go-emu8000/softsynth/internal/synth"

// Config bounds an Engine's resources and default render behavior at
// construction time.
type Config struct {
	SampleRate    float64 // render rate, Hz
	QueueCapacity int     // pending MIDI events the control thread may queue ahead of the audio thread

	MasterGain    float64             // linear output gain applied after mixing and effects, >= 0
	MaxPolyphony  int                 // voice budget, clamped to the engine's fixed NumVoices pool
	Interpolation synth.Interpolation // sample-read interpolation method
	ReverbEnabled bool
	ChorusEnabled bool
}

// DefaultConfig returns sensible defaults for live playback.
func DefaultConfig() Config {
	return Config{
		SampleRate:    44100,
		QueueCapacity: 1024,
		MasterGain:    1.0,
		MaxPolyphony:  synth.NumVoices,
		Interpolation: synth.InterpolationLinear,
		ReverbEnabled: true,
		ChorusEnabled: true,
	}
}
