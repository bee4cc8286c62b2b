// Package main implements a minimal Fyne-based patch browser and
// virtual keyboard for exercising the synthesis engine: a widget list
// of loaded presets, a file-open dialog, and a background playback
// goroutine driving the engine's render loop, kept as a thin shell
// over the public Engine API.
package main

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/go-emu8000/softsynth/internal/audiobackend"
	"github.com/go-emu8000/softsynth/internal/engine"
	"github.com/go-emu8000/softsynth/internal/sfont"
)

const (
	guiSampleRate = 44100
	guiBufferSize = 1024
	keyboardLowest = 48 // C3
	keyboardKeys   = 25 // two octaves + 1
)

type patchBrowserGUI struct {
	app    fyne.App
	window fyne.Window

	mutex       sync.Mutex
	store       *sfont.Store
	eng         *engine.Engine
	audioOutput audiobackend.Output
	playing     bool
	sampleTime  uint64

	presetsLabel  *widget.Label
	presetList    *widget.List
	presetNames   []string
	selectedBank  uint16
	selectedProg  uint16
	voiceLabel    *widget.Label
	keyButtons    []*widget.Button
}

func newPatchBrowserGUI() *patchBrowserGUI {
	g := &patchBrowserGUI{
		app: app.New(),
	}
	g.createUI()
	return g
}

func (g *patchBrowserGUI) createUI() {
	g.window = g.app.NewWindow("emu8000 Patch Browser")
	g.window.Resize(fyne.NewSize(820, 480))

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open SoundFont...", g.openSoundFont),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", g.app.Quit),
	)
	g.window.SetMainMenu(fyne.NewMainMenu(fileMenu))

	g.presetsLabel = widget.NewLabel("No SoundFont loaded")
	g.presetsLabel.TextStyle = fyne.TextStyle{Bold: true}

	g.presetList = widget.NewList(
		func() int { return len(g.presetNames) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(g.presetNames[id])
		},
	)
	g.presetList.OnSelected = g.selectPreset

	openButton := widget.NewButtonWithIcon("Open SoundFont...", theme.FolderOpenIcon(), g.openSoundFont)

	leftPane := container.NewBorder(
		container.NewVBox(g.presetsLabel, openButton, widget.NewSeparator()),
		nil, nil, nil,
		container.NewScroll(g.presetList),
	)

	g.voiceLabel = widget.NewLabel("Active voices: 0")

	keyboard := g.createKeyboard()

	rightPane := container.NewBorder(
		widget.NewLabelWithStyle("Virtual Keyboard", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		g.voiceLabel, nil, nil,
		container.NewScroll(keyboard),
	)

	split := container.NewHSplit(leftPane, rightPane)
	split.SetOffset(0.35)

	g.window.SetContent(split)
	g.window.SetOnClosed(g.cleanup)

	g.startVoiceMeter()
}

func (g *patchBrowserGUI) createKeyboard() fyne.CanvasObject {
	row := container.NewHBox()
	g.keyButtons = make([]*widget.Button, 0, keyboardKeys)
	for i := 0; i < keyboardKeys; i++ {
		key := uint8(keyboardLowest + i)
		label := noteName(key)
		btn := widget.NewButton(label, nil)
		k := key
		btn.OnTapped = func() { g.playKey(k) }
		g.keyButtons = append(g.keyButtons, btn)
		row.Add(btn)
	}
	row.Add(layout.NewSpacer())
	return row
}

func (g *patchBrowserGUI) openSoundFont() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()

		data := make([]byte, 0)
		buf := make([]byte, 64*1024)
		for {
			n, rerr := reader.Read(buf)
			if n > 0 {
				data = append(data, buf[:n]...)
			}
			if rerr != nil {
				break
			}
		}

		store, err := sfont.Load(data)
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		g.loadStore(store)
	}, g.window)
}

func (g *patchBrowserGUI) loadStore(store *sfont.Store) {
	g.mutex.Lock()
	g.store = store
	if g.eng == nil {
		cfg := engine.DefaultConfig()
		cfg.SampleRate = guiSampleRate
		g.eng = engine.New(cfg, store)
	} else {
		g.eng.LoadStore(store)
	}
	g.mutex.Unlock()

	names := make([]string, 0)
	for p := range store.Presets() {
		names = append(names, fmt.Sprintf("%03d:%03d  %s", p.Bank, p.Program, p.Name))
	}
	g.presetNames = names
	g.presetsLabel.SetText(fmt.Sprintf("%d presets", len(names)))
	g.presetList.Refresh()

	if err := g.ensureAudio(); err != nil {
		dialog.ShowError(err, g.window)
	}
}

func (g *patchBrowserGUI) selectPreset(id widget.ListItemID) {
	if g.store == nil {
		return
	}
	i := 0
	for p := range g.store.Presets() {
		if i == id {
			g.mutex.Lock()
			g.selectedBank, g.selectedProg = p.Bank, p.Program
			g.mutex.Unlock()
			if g.eng != nil {
				g.eng.Enqueue(g.clockTime(), 0xB0, 0, byte(p.Bank>>7))
				g.eng.Enqueue(g.clockTime(), 0xB0, 32, byte(p.Bank&0x7F))
				g.eng.Enqueue(g.clockTime(), 0xC0, byte(p.Program), 0)
			}
			return
		}
		i++
	}
}

func (g *patchBrowserGUI) ensureAudio() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.playing {
		return nil
	}

	out, err := audiobackend.NewStreamingOtoOutput()
	if err != nil {
		return err
	}
	if err := out.Open(guiSampleRate, guiBufferSize); err != nil {
		return err
	}
	g.audioOutput = out
	g.playing = true

	go g.renderLoop()
	return nil
}

func (g *patchBrowserGUI) renderLoop() {
	outL := make([]float32, guiBufferSize)
	outR := make([]float32, guiBufferSize)
	pcm := make([]int16, 0, guiBufferSize*2)

	for {
		g.mutex.Lock()
		if !g.playing || g.eng == nil {
			g.mutex.Unlock()
			return
		}
		eng := g.eng
		out := g.audioOutput
		g.mutex.Unlock()

		eng.RenderBlock(outL, outR)
		pcm = audiobackend.InterleaveStereo(outL, outR, pcm)
		if err := out.Write(pcm); err != nil {
			return
		}

		g.mutex.Lock()
		g.sampleTime += uint64(guiBufferSize)
		g.mutex.Unlock()
	}
}

func (g *patchBrowserGUI) clockTime() uint64 {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.sampleTime
}

// playKey triggers a note-on now and schedules the matching note-off
// a fixed hold time later, so a mouse click plays a short note rather
// than requiring a separate release gesture.
func (g *patchBrowserGUI) playKey(key uint8) {
	g.mutex.Lock()
	eng := g.eng
	t := g.sampleTime
	g.mutex.Unlock()
	if eng == nil {
		return
	}
	eng.Enqueue(t, 0x90, key, 100)

	holdSamples := uint64(300 * guiSampleRate / 1000)
	go func() {
		time.Sleep(300 * time.Millisecond)
		g.mutex.Lock()
		releaseAt := g.sampleTime
		g.mutex.Unlock()
		if releaseAt < t+holdSamples {
			releaseAt = t + holdSamples
		}
		eng.Enqueue(releaseAt, 0x80, key, 0)
	}()
}

func (g *patchBrowserGUI) startVoiceMeter() {
	ticker := time.NewTicker(150 * time.Millisecond)
	go func() {
		for range ticker.C {
			g.mutex.Lock()
			eng := g.eng
			g.mutex.Unlock()
			if eng == nil {
				continue
			}
			count := eng.ActiveVoiceCount()
			g.voiceLabel.SetText(fmt.Sprintf("Active voices: %d", count))
		}
	}()
}

func (g *patchBrowserGUI) cleanup() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.playing = false
	if g.audioOutput != nil {
		g.audioOutput.Close()
		g.audioOutput = nil
	}
}

func (g *patchBrowserGUI) Run() {
	g.window.ShowAndRun()
}

func noteName(key uint8) string {
	names := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(key)/12 - 1
	return fmt.Sprintf("%s%d", names[key%12], octave)
}
