package midi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-emu8000/softsynth/internal/midi"
)

type fakeVoices struct {
	onCount, offCount int
	lastOn            [2]uint8 // key, velocity
	lastOff           uint8
	released          []uint8
	allNotesOff       bool
	allSoundOff       bool
	program           uint8
	bank              uint16
	bendValue         uint16
	bendRange         uint8
	reverb, chorus    uint8
	volume, pan, expression, modWheel uint8
}

func (f *fakeVoices) NoteOn(channel, key, velocity uint8) {
	f.onCount++
	f.lastOn = [2]uint8{key, velocity}
}
func (f *fakeVoices) NoteOff(channel, key uint8) {
	f.offCount++
	f.lastOff = key
}
func (f *fakeVoices) PolyAftertouch(channel, key, pressure uint8) {}
func (f *fakeVoices) ChannelAftertouch(channel, pressure uint8)   {}
func (f *fakeVoices) ProgramChange(channel uint8, bank uint16, program uint8) {
	f.bank, f.program = bank, program
}
func (f *fakeVoices) PitchBend(channel uint8, value uint16, rangeSemitones uint8) {
	f.bendValue, f.bendRange = value, rangeSemitones
}
func (f *fakeVoices) Volume(channel uint8, amount uint8)     { f.volume = amount }
func (f *fakeVoices) Pan(channel uint8, amount uint8)        { f.pan = amount }
func (f *fakeVoices) Expression(channel uint8, amount uint8) { f.expression = amount }
func (f *fakeVoices) ModWheel(channel uint8, amount uint8)   { f.modWheel = amount }
func (f *fakeVoices) ReverbSend(channel uint8, amount uint8) { f.reverb = amount }
func (f *fakeVoices) ChorusSend(channel uint8, amount uint8) { f.chorus = amount }
func (f *fakeVoices) AllNotesOff(channel uint8)              { f.allNotesOff = true }
func (f *fakeVoices) AllSoundOff(channel uint8)              { f.allSoundOff = true }
func (f *fakeVoices) ReleaseNote(channel, key uint8)         { f.released = append(f.released, key) }

func TestProcessor_NoteOnOff(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(100, 0x90, 60, 100))
	require.NoError(t, p.QueueEvent(200, 0x80, 60, 0))

	p.Advance(50)
	require.Equal(t, 0, fv.onCount)

	p.Advance(150)
	require.Equal(t, 1, fv.onCount)
	require.Equal(t, [2]uint8{60, 100}, fv.lastOn)

	p.Advance(250)
	require.Equal(t, 1, fv.offCount)
	require.Equal(t, uint8(60), fv.lastOff)
}

func TestProcessor_NoteOnVelocityZeroIsNoteOff(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0x90, 72, 0))
	p.Advance(0)
	require.Equal(t, 0, fv.onCount)
	require.Equal(t, 1, fv.offCount)
}

func TestProcessor_SustainDefersRelease(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCSustain, 127)) // pedal down
	require.NoError(t, p.QueueEvent(1, 0x90, 60, 100))
	require.NoError(t, p.QueueEvent(2, 0x80, 60, 0)) // key up, pedal still down
	p.Advance(2)
	require.Equal(t, 0, fv.offCount)

	require.NoError(t, p.QueueEvent(3, 0xB0, midi.CCSustain, 0)) // pedal up
	p.Advance(3)
	require.Equal(t, []uint8{60}, fv.released)
}

func TestProcessor_FIFOTieBreakOnEqualTime(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(10, 0x90, 1, 1))
	require.NoError(t, p.QueueEvent(10, 0x90, 2, 2))
	require.NoError(t, p.QueueEvent(10, 0x90, 3, 3))
	p.Advance(10)

	require.Equal(t, 3, fv.onCount)
	require.Equal(t, [2]uint8{3, 3}, fv.lastOn)
}

func TestProcessor_ProgramChangeUsesLatchedBank(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCBankSelectMSB, 1))
	require.NoError(t, p.QueueEvent(1, 0xC0, 5, 0))
	p.Advance(1)

	require.Equal(t, uint16(1<<7), fv.bank)
	require.Equal(t, uint8(5), fv.program)
}

func TestProcessor_AllNotesOff(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCAllNotesOff, 0))
	p.Advance(0)
	require.True(t, fv.allNotesOff)
}

func TestProcessor_ChannelMixerCCsPropagateToVoices(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCVolume, 80))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCPan, 20))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCExpression, 90))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCModWheel, 64))
	p.Advance(0)

	require.Equal(t, uint8(80), fv.volume)
	require.Equal(t, uint8(20), fv.pan)
	require.Equal(t, uint8(90), fv.expression)
	require.Equal(t, uint8(64), fv.modWheel)
}

func TestProcessor_ResetControllersReachesVoices(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCVolume, 20))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCPan, 0))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCReverbSend, 127))
	require.NoError(t, p.QueueEvent(0, 0xB0, midi.CCResetControllers, 0))
	p.Advance(0)

	require.Equal(t, uint8(100), fv.volume)
	require.Equal(t, uint8(64), fv.pan)
	require.Equal(t, uint8(40), fv.reverb)
}

func TestProcessor_IgnoresSystemRealtimeStatus(t *testing.T) {
	fv := &fakeVoices{}
	p := midi.NewProcessor(fv, 64)

	require.NoError(t, p.QueueEvent(0, 0xF8, 0, 0)) // MIDI clock
	p.Advance(0)
	require.Equal(t, 0, fv.onCount)
}
