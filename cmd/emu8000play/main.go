// Command emu8000play loads a SoundFont and plays a flat CSV event
// script through the synthesis engine: flag-parse, load, backend
// select, then a signal-handled render loop with a progress ticker.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-emu8000/softsynth/internal/audiobackend"
	"github.com/go-emu8000/softsynth/internal/engine"
	"github.com/go-emu8000/softsynth/internal/sfont"
)

var (
	sampleRate = flag.Int("rate", 44100, "Sample rate (Hz)")
	bufferSize = flag.Int("buffer", 2048, "Buffer size (frames)")
	gain       = flag.Float64("gain", 1.0, "Output gain multiplier")
	reverb     = flag.Int("reverb", -1, "Force CC91 (reverb send) on every channel, 0-127 (-1 = leave as scripted)")
	chorus     = flag.Int("chorus", -1, "Force CC93 (chorus send) on every channel, 0-127 (-1 = leave as scripted)")
	polyphony  = flag.Int("polyphony", engine.MaxVoices, "Advisory voice budget; capped at the engine's fixed voice count")
	output     = flag.String("output", "oto", "Output backend (oto, wav, null)")
	wavFile    = flag.String("wav", "", "Output WAV file (when using wav output)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <soundfont.sf2> <events.csv>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "emu8000play - render a MIDI-event CSV script through a SoundFont\n\n")
		fmt.Fprintf(os.Stderr, "Each CSV row is: sampleTime,channel,status,data1,data2 (hex or decimal)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(1)
	}

	sf2Path, scriptPath := flag.Arg(0), flag.Arg(1)

	if *polyphony > engine.MaxVoices {
		fmt.Printf("Warning: -polyphony %d exceeds the engine's fixed %d-voice pool; capping.\n", *polyphony, engine.MaxVoices)
	}

	data, err := os.ReadFile(sf2Path)
	if err != nil {
		log.Fatalf("Failed to read SoundFont: %v", err)
	}

	fmt.Printf("Loading %s...\n", sf2Path)
	store, err := sfont.Load(data)
	if err != nil {
		log.Fatalf("Failed to parse SoundFont: %v", err)
	}
	fmt.Printf("Presets: %d  Instruments: %d  Samples: %d\n",
		store.PresetCount(), store.InstrumentCount(), store.SampleCount())

	events, err := loadEventScript(scriptPath)
	if err != nil {
		log.Fatalf("Failed to read event script: %v", err)
	}
	if *reverb >= 0 {
		events = append(overrideCC(91, uint8(*reverb)), events...)
	}
	if *chorus >= 0 {
		events = append(overrideCC(93, uint8(*chorus)), events...)
	}

	cfg := engine.DefaultConfig()
	cfg.SampleRate = float64(*sampleRate)
	cfg.MasterGain = *gain
	cfg.MaxPolyphony = *polyphony
	eng := engine.New(cfg, store)

	for _, ev := range events {
		if err := eng.Enqueue(ev.time, ev.status, ev.data1, ev.data2); err != nil {
			log.Printf("Dropping event at t=%d: %v", ev.time, err)
		}
	}

	var audioOut audiobackend.Output
	switch *output {
	case "oto":
		audioOut, err = audiobackend.NewStreamingOtoOutput()
	case "wav":
		if *wavFile == "" {
			*wavFile = strings.TrimSuffix(scriptPath, ".csv") + ".wav"
		}
		audioOut, err = audiobackend.NewWAVOutput(*wavFile)
	case "null":
		audioOut = &audiobackend.NullOutput{}
	default:
		log.Fatalf("Unknown output backend: %s", *output)
	}
	if err != nil {
		log.Fatalf("Failed to create audio output: %v", err)
	}

	if err := audioOut.Open(*sampleRate, *bufferSize); err != nil {
		log.Fatalf("Failed to open audio output: %v", err)
	}
	defer audioOut.Close()

	lastTime := uint64(0)
	for _, ev := range events {
		if ev.time > lastTime {
			lastTime = ev.time
		}
	}
	totalBlocks := int(lastTime/uint64(*bufferSize)) + 8 // a few extra blocks for release tails

	fmt.Printf("Playing %d events over ~%d blocks... (Press Ctrl+C to stop)\n", len(events), totalBlocks)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		outL := make([]float32, *bufferSize)
		outR := make([]float32, *bufferSize)
		pcm := make([]int16, 0, *bufferSize*2)

		for block := 0; block < totalBlocks; block++ {
			eng.RenderBlock(outL, outR)
			pcm = audiobackend.InterleaveStereo(outL, outR, pcm)
			if err := audioOut.Write(pcm); err != nil {
				log.Printf("Audio write error: %v", err)
			}
		}
		close(done)
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			fmt.Printf("\n\nStopping...\n")
			return
		case <-done:
			fmt.Printf("\n\nPlayback finished.\n")
			return
		case <-ticker.C:
			fmt.Printf("\rActive voices: %2d", eng.ActiveVoiceCount())
		}
	}
}

type scriptEvent struct {
	time                 uint64
	status, data1, data2 byte
}

// loadEventScript parses a time,channel,status,d1,d2 CSV, accepting
// either decimal or 0x-prefixed hex fields. channel is folded into
// the low nibble of status, mirroring how a wire MIDI byte carries it.
func loadEventScript(path string) ([]scriptEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var events []scriptEvent
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 5 {
			continue
		}
		t, err := parseUint(row[0])
		if err != nil {
			return nil, fmt.Errorf("bad time %q: %w", row[0], err)
		}
		channel, err := parseUint(row[1])
		if err != nil {
			return nil, fmt.Errorf("bad channel %q: %w", row[1], err)
		}
		status, err := parseUint(row[2])
		if err != nil {
			return nil, fmt.Errorf("bad status %q: %w", row[2], err)
		}
		d1, err := parseUint(row[3])
		if err != nil {
			return nil, fmt.Errorf("bad data1 %q: %w", row[3], err)
		}
		d2, err := parseUint(row[4])
		if err != nil {
			return nil, fmt.Errorf("bad data2 %q: %w", row[4], err)
		}
		events = append(events, scriptEvent{
			time:   t,
			status: byte(status)&0xF0 | byte(channel)&0x0F,
			data1:  byte(d1),
			data2:  byte(d2),
		})
	}
	return events, nil
}

// overrideCC returns a CC event for every channel at t=0, so a forced
// send level takes effect before any scripted note-on.
func overrideCC(cc, val uint8) []scriptEvent {
	out := make([]scriptEvent, 0, 16)
	for ch := uint8(0); ch < 16; ch++ {
		out = append(out, scriptEvent{time: 0, status: 0xB0 | ch, data1: cc, data2: val})
	}
	return out
}

func parseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}
