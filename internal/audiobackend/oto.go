package audiobackend

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

var (
	globalOtoMutex sync.Mutex
	globalContext  *oto.Context
	globalPlayers  int
)

// StreamingOtoOutput drives live audio through Oto v3 with stereo
// interleaved frames over a pipe, one global playback context shared
// across instances.
type StreamingOtoOutput struct {
	player *oto.Player
	writer *io.PipeWriter
	reader *io.PipeReader

	sampleRate int
	bufferSize int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewStreamingOtoOutput returns an unopened output; call Open to start
// the platform audio context.
func NewStreamingOtoOutput() (*StreamingOtoOutput, error) {
	return &StreamingOtoOutput{}, nil
}

const otoChannels = 2

func (s *StreamingOtoOutput) Open(sampleRate, bufferSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player != nil {
		return fmt.Errorf("stream already open")
	}

	s.sampleRate = sampleRate
	s.bufferSize = bufferSize
	s.reader, s.writer = io.Pipe()

	globalOtoMutex.Lock()
	if globalContext == nil {
		bufferSizeBytes := bufferSize * otoChannels * 2
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: otoChannels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   time.Duration(bufferSizeBytes) * time.Second / time.Duration(sampleRate*otoChannels*2),
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			globalOtoMutex.Unlock()
			return fmt.Errorf("failed to create oto context: %w", err)
		}
		<-ready
		globalContext = ctx
	}
	globalPlayers++
	ctx := globalContext
	globalOtoMutex.Unlock()

	s.player = ctx.NewPlayer(s.reader)
	s.closed = false

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.player.Play()
	}()

	return nil
}

func (s *StreamingOtoOutput) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.writer != nil {
		s.writer.Close()
		s.writer = nil
	}
	time.Sleep(100 * time.Millisecond)

	if s.player != nil {
		s.player.Close()
		s.player = nil
	}
	if s.reader != nil {
		s.reader.Close()
		s.reader = nil
	}

	globalOtoMutex.Lock()
	globalPlayers--
	globalOtoMutex.Unlock()

	s.wg.Wait()
	return nil
}

func (s *StreamingOtoOutput) Write(samples []int16) error {
	s.mu.Lock()
	if s.closed || s.writer == nil {
		s.mu.Unlock()
		return fmt.Errorf("stream not open")
	}
	writer := s.writer
	s.mu.Unlock()

	raw := make([]byte, len(samples)*2)
	for i, sample := range samples {
		raw[i*2] = byte(sample)
		raw[i*2+1] = byte(sample >> 8)
	}
	_, err := writer.Write(raw)
	return err
}

func (s *StreamingOtoOutput) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.player != nil
}
