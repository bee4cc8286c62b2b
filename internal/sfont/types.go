// Package sfont parses SoundFont 2.0 byte buffers into an immutable,
// read-only patch database: samples, instruments and presets linked
// by generator/modulator-bearing zones. Nothing in this package is
// mutated once Load returns.
package sfont

// Sample is immutable 16-bit mono PCM plus its SoundFont metadata.
// The backing slice is owned exclusively by the Store that produced
// it and is shared by reference across every Voice that plays it.
type Sample struct {
	Name         string
	Data         []int16 // mono PCM, native sample rate
	SampleRate   uint32
	LoopStart    uint32 // frame offset, inclusive
	LoopEnd      uint32 // frame offset, exclusive
	OriginalKey  uint8  // MIDI root key
	Correction   int8   // fine tune, cents
	SampleType   uint16 // shdr sampleType field (mono/left/right/linked/ROM)
}

// Len reports the sample's playable length in frames.
func (s *Sample) Len() int { return len(s.Data) }

// Modulator is a (source → destination generator) routing rule. Only
// the SoundFont 2.0 default modulator set is evaluated at render time;
// non-default rows are retained for completeness but never applied.
type Modulator struct {
	SrcOper        uint16
	DestOper       Generator
	Amount         int16
	AmtSrcOper     uint16
	TransOper      uint16
}

// ModulatorList is an ordered set of modulator rows attached to a zone.
type ModulatorList []Modulator

// Zone is a rectangle in (key, velocity) space plus generator and
// modulator overrides. An instrument zone references exactly one
// Sample; a preset zone references exactly one Instrument. The first
// zone in a list may be "global" (sample-less / instrument-less) and
// contributes defaults to its siblings without itself being spawned.
type Zone struct {
	Generators map[Generator]int16
	Modulators ModulatorList
	Global     bool

	// Exactly one of these is set for a non-global zone.
	SampleIndex     int // into Store.samples, valid iff Global == false for an instrument zone
	InstrumentIndex int // into Store.instruments, valid iff Global == false for a preset zone
}

// KeyRange returns the zone's key rectangle, defaulting to 0..127 when
// the zone has no explicit GenKeyRange generator.
func (z *Zone) KeyRange() (lo, hi uint8) {
	if v, ok := z.Generators[GenKeyRange]; ok {
		return uint8(v & 0xFF), uint8(uint16(v) >> 8)
	}
	return 0, 127
}

// VelRange returns the zone's velocity rectangle, defaulting to 0..127.
func (z *Zone) VelRange() (lo, hi uint8) {
	if v, ok := z.Generators[GenVelRange]; ok {
		return uint8(v & 0xFF), uint8(uint16(v) >> 8)
	}
	return 0, 127
}

// Contains reports whether (key, vel) falls within the zone's rectangle.
func (z *Zone) Contains(key, vel uint8) bool {
	klo, khi := z.KeyRange()
	vlo, vhi := z.VelRange()
	return key >= klo && key <= khi && vel >= vlo && vel <= vhi
}

// Instrument is a name plus an ordered list of instrument zones.
// Immutable after load.
type Instrument struct {
	Name  string
	Zones []Zone // Zones[0] is the global zone iff Zones[0].Global
}

// Preset is (bank, program) plus name and ordered preset zones.
// Bank 128 is the percussion bank by convention only — the data path
// is identical to any other bank.
type Preset struct {
	Bank    uint16
	Program uint16
	Name    string
	Zones   []Zone // Zones[0] is the global zone iff Zones[0].Global
}

// Info holds the SoundFont's INFO chunk metadata, surfaced read-only.
type Info struct {
	Version      [2]uint16 // major, minor
	SoundEngine  string
	BankName     string
	ROMName      string
	Engineer     string
	Product      string
	CreationDate string
	Comment      string
	Software     string
}
