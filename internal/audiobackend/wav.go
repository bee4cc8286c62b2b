package audiobackend

import (
	"encoding/binary"
	"fmt"
	"os"
)

// WAVOutput writes a stereo 16-bit PCM WAV file, promoted from the
// teacher's inline cmd-level WAVOutput into a shared backend.
type WAVOutput struct {
	file       *os.File
	filename   string
	sampleRate int
	written    int64
}

// NewWAVOutput returns an unopened WAV sink targeting filename.
func NewWAVOutput(filename string) (*WAVOutput, error) {
	return &WAVOutput{filename: filename}, nil
}

const wavChannels = 2

func (w *WAVOutput) Open(sampleRate, bufferSize int) error {
	w.sampleRate = sampleRate

	file, err := os.Create(w.filename)
	if err != nil {
		return err
	}
	w.file = file

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], wavChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	byteRate := sampleRate * wavChannels * 2
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], wavChannels*2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0)

	_, err = w.file.Write(header)
	return err
}

func (w *WAVOutput) Close() error {
	if w.file == nil {
		return nil
	}

	w.file.Seek(4, 0)
	binary.Write(w.file, binary.LittleEndian, uint32(w.written+36))
	w.file.Seek(40, 0)
	binary.Write(w.file, binary.LittleEndian, uint32(w.written))

	return w.file.Close()
}

func (w *WAVOutput) Write(samples []int16) error {
	if w.file == nil {
		return fmt.Errorf("file not open")
	}
	raw := make([]byte, len(samples)*2)
	for i, sample := range samples {
		raw[i*2] = byte(sample)
		raw[i*2+1] = byte(sample >> 8)
	}
	n, err := w.file.Write(raw)
	w.written += int64(n)
	return err
}

func (w *WAVOutput) IsPlaying() bool { return w.file != nil }
