package sfont

import "iter"

// Store owns all samples, instruments and presets parsed from one
// SoundFont buffer. Immutable after Load returns; safe for concurrent
// read-only use by every Voice that references it.
type Store struct {
	info        Info
	samples     []Sample
	instruments []Instrument
	presets     []Preset
	byBankProg  map[uint32]int // (bank<<16|program) -> index into presets
}

// Info returns the SoundFont's INFO-chunk metadata.
func (s *Store) Info() Info { return s.info }

// Sample returns the sample at idx, or nil if idx is out of range.
func (s *Store) Sample(idx int) *Sample {
	if idx < 0 || idx >= len(s.samples) {
		return nil
	}
	return &s.samples[idx]
}

// Instrument returns the instrument at idx, or nil if idx is out of range.
func (s *Store) Instrument(idx int) *Instrument {
	if idx < 0 || idx >= len(s.instruments) {
		return nil
	}
	return &s.instruments[idx]
}

// LookupPreset finds the preset for (bank, program), if loaded.
func (s *Store) LookupPreset(bank, program uint16) (*Preset, bool) {
	idx, ok := s.byBankProg[uint32(bank)<<16|uint32(program)]
	if !ok {
		return nil, false
	}
	return &s.presets[idx], true
}

// SampleCount reports how many playable samples were loaded.
func (s *Store) SampleCount() int { return len(s.samples) }

// InstrumentCount reports how many instruments were loaded.
func (s *Store) InstrumentCount() int { return len(s.instruments) }

// PresetCount reports how many presets were loaded.
func (s *Store) PresetCount() int { return len(s.presets) }

// Presets iterates every loaded preset in phdr order.
func (s *Store) Presets() iter.Seq[*Preset] {
	return func(yield func(*Preset) bool) {
		for i := range s.presets {
			if !yield(&s.presets[i]) {
				return
			}
		}
	}
}

func (s *Store) buildSamples(t *pdtaTables, smpl []int16) error {
	// shdr is sentinel-terminated: the last record ("EOS") is a
	// terminator, never a playable sample.
	if len(t.shdr) < 1 {
		return parseErr(MissingChunk, "shdr has no records")
	}
	recs := t.shdr[:len(t.shdr)-1]
	s.samples = make([]Sample, len(recs))
	for i, r := range recs {
		if r.end < r.start || int(r.end) > len(smpl) {
			return parseErr(InvalidReference, "sample %q [%d,%d) out of bounds (smpl len=%d)", r.name, r.start, r.end, len(smpl))
		}
		data := make([]int16, r.end-r.start)
		copy(data, smpl[r.start:r.end])
		s.samples[i] = Sample{
			Name:        r.name,
			Data:        data,
			SampleRate:  r.sampleRate,
			LoopStart:   clampLoop(r.startLoop, r.start, r.end) - r.start,
			LoopEnd:     clampLoop(r.endLoop, r.start, r.end) - r.start,
			OriginalKey: r.originalKey,
			Correction:  r.correction,
			SampleType:  r.sampleType,
		}
	}
	return nil
}

func clampLoop(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Store) buildInstruments(t *pdtaTables) error {
	if len(t.inst) < 1 {
		return parseErr(MissingChunk, "inst has no records")
	}
	recs := t.inst[:len(t.inst)-1]
	s.instruments = make([]Instrument, len(recs))
	for i, r := range recs {
		var bagEnd uint16
		if i+1 < len(t.inst) {
			bagEnd = t.inst[i+1].bagNdx
		} else {
			bagEnd = uint16(len(t.ibag))
		}
		zones, err := buildZonesGeneric(r.bagNdx, bagEnd, t.ibag, t.igen, t.imod, func(g Generator) bool { return g == GenSampleID })
		if err != nil {
			return err
		}
		for zi := range zones {
			if zones[zi].Global {
				continue
			}
			if zones[zi].SampleIndex < 0 || zones[zi].SampleIndex >= len(s.samples) {
				return parseErr(InvalidReference, "instrument %q zone references sample %d (have %d)", r.name, zones[zi].SampleIndex, len(s.samples))
			}
			if err := validateRanges(zones[zi]); err != nil {
				return err
			}
		}
		s.instruments[i] = Instrument{Name: r.name, Zones: zones}
	}
	return nil
}

func (s *Store) buildPresets(t *pdtaTables) error {
	if len(t.phdr) < 1 {
		return parseErr(MissingChunk, "phdr has no records")
	}
	recs := t.phdr[:len(t.phdr)-1]
	s.presets = make([]Preset, len(recs))
	s.byBankProg = make(map[uint32]int, len(recs))
	for i, r := range recs {
		var bagEnd uint16
		if i+1 < len(t.phdr) {
			bagEnd = t.phdr[i+1].bagNdx
		} else {
			bagEnd = uint16(len(t.pbag))
		}
		zones, err := buildZonesGeneric(r.bagNdx, bagEnd, t.pbag, t.pgen, t.pmod, func(g Generator) bool { return g == GenInstrument })
		if err != nil {
			return err
		}
		for zi := range zones {
			if zones[zi].Global {
				continue
			}
			if zones[zi].InstrumentIndex < 0 || zones[zi].InstrumentIndex >= len(s.instruments) {
				return parseErr(InvalidReference, "preset %q zone references instrument %d (have %d)", r.name, zones[zi].InstrumentIndex, len(s.instruments))
			}
			if err := validateRanges(zones[zi]); err != nil {
				return err
			}
		}
		s.presets[i] = Preset{Bank: r.bank, Program: r.preset, Name: r.name, Zones: zones}
		s.byBankProg[uint32(r.bank)<<16|uint32(r.preset)] = i
	}
	return nil
}

func validateRanges(z Zone) error {
	klo, khi := z.KeyRange()
	if klo > khi {
		return parseErr(InvalidRange, "key range lo=%d > hi=%d", klo, khi)
	}
	vlo, vhi := z.VelRange()
	if vlo > vhi {
		return parseErr(InvalidRange, "velocity range lo=%d > hi=%d", vlo, vhi)
	}
	return nil
}
