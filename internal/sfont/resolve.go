package sfont

// GlobalZone returns the instrument's global zone, if its first zone
// is global, else nil.
func (i *Instrument) GlobalZone() *Zone {
	if len(i.Zones) > 0 && i.Zones[0].Global {
		return &i.Zones[0]
	}
	return nil
}

// GlobalZone returns the preset's global zone, if its first zone is
// global, else nil.
func (p *Preset) GlobalZone() *Zone {
	if len(p.Zones) > 0 && p.Zones[0].Global {
		return &p.Zones[0]
	}
	return nil
}

// Resolve computes the effective generator set for one (presetZone,
// instZone) pair, following the SoundFont 2.0 generator merge rule:
// defaults, instrument global (overlay), instrument zone (overlay),
// preset global (additive), preset zone (additive).
func Resolve(inst *Instrument, instZone *Zone, preset *Preset, presetZone *Zone) GeneratorSet {
	gs := NewDefaultGeneratorSet()
	if gz := inst.GlobalZone(); gz != nil {
		gs.Overlay(gz.Generators)
	}
	gs.Overlay(instZone.Generators)
	if gz := preset.GlobalZone(); gz != nil {
		gs.OverlayAdditive(gz.Generators)
	}
	gs.OverlayAdditive(presetZone.Generators)
	return gs
}

// MatchingZones returns every (presetZone, instZone) index pair whose
// rectangles both contain (key, vel). Global
// zones are never matched as spawn targets.
func (s *Store) MatchingZones(preset *Preset, key, vel uint8) []ZonePair {
	var pairs []ZonePair
	for pi := range preset.Zones {
		pz := &preset.Zones[pi]
		if pz.Global || !pz.Contains(key, vel) {
			continue
		}
		inst := s.Instrument(pz.InstrumentIndex)
		if inst == nil {
			continue
		}
		for ii := range inst.Zones {
			iz := &inst.Zones[ii]
			if iz.Global || !iz.Contains(key, vel) {
				continue
			}
			pairs = append(pairs, ZonePair{
				Preset:     preset,
				PresetZone: pz,
				Instrument: inst,
				InstZone:   iz,
			})
		}
	}
	return pairs
}

// ZonePair names one matched (preset zone, instrument zone) spawn
// target, ready for Resolve.
type ZonePair struct {
	Preset     *Preset
	PresetZone *Zone
	Instrument *Instrument
	InstZone   *Zone
}
