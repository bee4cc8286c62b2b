package audiobackend

import "time"

// NullOutput discards audio, pacing writes in real time so a headless
// run behaves like a live one for timing-sensitive callers.
type NullOutput struct {
	sampleRate int
}

func (n *NullOutput) Open(sampleRate, bufferSize int) error {
	n.sampleRate = sampleRate
	return nil
}

func (n *NullOutput) Close() error { return nil }

func (n *NullOutput) Write(samples []int16) error {
	rate := n.sampleRate
	if rate == 0 {
		rate = 44100
	}
	frames := len(samples) / wavChannels
	time.Sleep(time.Duration(frames) * time.Second / time.Duration(rate))
	return nil
}

func (n *NullOutput) IsPlaying() bool { return true }
