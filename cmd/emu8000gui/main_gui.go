package main

import "os"

func main() {
	// Disable Fyne thread checks, as the widget calls here are all
	// dispatched from the main goroutine or via widget.Refresh/SetText,
	// which Fyne treats as thread-safe.
	os.Setenv("FYNE_DISABLETHREAD", "1")

	gui := newPatchBrowserGUI()
	gui.Run()
}
