package sfont

import (
	"bytes"
	"encoding/binary"
)

// pdtaTables holds every decoded pdta sub-chunk array before zones are
// built from them.
type pdtaTables struct {
	phdr []phdrRecord
	pbag []bagRecord
	pmod []modRecord
	pgen []genRecord
	inst []instRecord
	ibag []bagRecord
	imod []modRecord
	igen []genRecord
	shdr []shdrRecord
}

// Load parses a SoundFont 2.0 byte buffer into an immutable Store, the
// way ymDecode stages `depackFile -> deInterleave -> ymDecode` over a
// raw byte buffer: readChunk/splitTopLevelLists split the top-level
// chunks, parseInfo/parseSdta/parsePdta decode each LIST's payload, then
// buildSamples/buildInstruments/buildPresets assemble the in-memory
// patch graph.
func Load(buf []byte) (*Store, error) {
	if len(buf) < 12 || string(buf[0:4]) != "RIFF" {
		return nil, parseErr(NotRiff, "missing RIFF magic")
	}
	top, _, err := readChunk(buf, 0)
	if err != nil {
		return nil, err
	}
	form, payload, err := formType(top)
	if err != nil {
		return nil, err
	}
	if form != "sfbk" {
		return nil, parseErr(BadRiffType, "form type %q, want sfbk", form)
	}

	// The three top-level chunks all share the id "LIST" and are
	// distinguished only by their form type, so walk them directly
	// rather than through an id-keyed map.
	infoChunk, sdtaChunk, pdtaChunk, err := splitTopLevelLists(payload)
	if err != nil {
		return nil, err
	}

	info, err := parseInfo(infoChunk)
	if err != nil {
		return nil, err
	}

	smpl, err := parseSdta(sdtaChunk)
	if err != nil {
		return nil, err
	}

	tables, err := parsePdta(pdtaChunk)
	if err != nil {
		return nil, err
	}

	if info.Version[0] != 2 {
		return nil, parseErr(BadVersion, "major version %d, want 2", info.Version[0])
	}

	store := &Store{info: info}
	if err := store.buildSamples(tables, smpl); err != nil {
		return nil, err
	}
	if err := store.buildInstruments(tables); err != nil {
		return nil, err
	}
	if err := store.buildPresets(tables); err != nil {
		return nil, err
	}
	return store, nil
}

// splitTopLevelLists walks the three top-level LIST chunks (INFO,
// sdta, pdta) in order, since a plain id->chunk map can't distinguish
// chunks that share the "LIST" id.
func splitTopLevelLists(payload []byte) (info, sdta, pdta []byte, err error) {
	off := 0
	have := map[string][]byte{}
	for off < len(payload) {
		c, next, e := readChunk(payload, off)
		if e != nil {
			return nil, nil, nil, e
		}
		if idString(c.id[:]) == "LIST" {
			ft, rest, e := formType(c)
			if e != nil {
				return nil, nil, nil, e
			}
			have[ft] = rest
		}
		off = next
	}
	infoData, ok := have["INFO"]
	if !ok {
		return nil, nil, nil, parseErr(MissingChunk, "INFO")
	}
	sdtaData, ok := have["sdta"]
	if !ok {
		return nil, nil, nil, parseErr(MissingChunk, "sdta")
	}
	pdtaData, ok := have["pdta"]
	if !ok {
		return nil, nil, nil, parseErr(MissingChunk, "pdta")
	}
	return infoData, sdtaData, pdtaData, nil
}

func parseInfo(payload []byte) (Info, error) {
	subs, err := splitSubChunks(payload)
	if err != nil {
		return Info{}, err
	}
	ifil, ok := subs["ifil"]
	if !ok {
		return Info{}, parseErr(MissingChunk, "ifil")
	}
	if len(ifil.data) < 4 {
		return Info{}, parseErr(TruncatedChunk, "ifil")
	}
	info := Info{
		Version: [2]uint16{
			binary.LittleEndian.Uint16(ifil.data[0:2]),
			binary.LittleEndian.Uint16(ifil.data[2:4]),
		},
	}
	if c, ok := subs["isng"]; ok {
		info.SoundEngine = readCString(c.data)
	}
	if c, ok := subs["INAM"]; ok {
		info.BankName = readCString(c.data)
	}
	if c, ok := subs["irom"]; ok {
		info.ROMName = readCString(c.data)
	}
	if c, ok := subs["IENG"]; ok {
		info.Engineer = readCString(c.data)
	}
	if c, ok := subs["IPRD"]; ok {
		info.Product = readCString(c.data)
	}
	if c, ok := subs["ICRD"]; ok {
		info.CreationDate = readCString(c.data)
	}
	if c, ok := subs["ICMT"]; ok {
		info.Comment = readCString(c.data)
	}
	if c, ok := subs["ISFT"]; ok {
		info.Software = readCString(c.data)
	}
	return info, nil
}

func parseSdta(payload []byte) ([]int16, error) {
	subs, err := splitSubChunks(payload)
	if err != nil {
		return nil, err
	}
	smpl, ok := subs["smpl"]
	if !ok {
		return nil, parseErr(MissingChunk, "smpl")
	}
	if len(smpl.data)%2 != 0 {
		return nil, parseErr(TruncatedChunk, "smpl length %d is not 16-bit aligned", len(smpl.data))
	}
	n := len(smpl.data) / 2
	out := make([]int16, n)
	r := bytes.NewReader(smpl.data)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, parseErr(TruncatedChunk, "smpl: %v", err)
	}
	return out, nil
}

func parsePdta(payload []byte) (*pdtaTables, error) {
	subs, err := splitSubChunks(payload)
	if err != nil {
		return nil, err
	}
	required := []string{"phdr", "pbag", "pmod", "pgen", "inst", "ibag", "imod", "igen", "shdr"}
	for _, id := range required {
		if _, ok := subs[id]; !ok {
			return nil, parseErr(MissingChunk, id)
		}
	}

	t := &pdtaTables{}
	var e error
	if t.phdr, e = decodePhdr(subs["phdr"].data); e != nil {
		return nil, e
	}
	if t.pbag, e = decodeBag(subs["pbag"].data, "pbag"); e != nil {
		return nil, e
	}
	if t.pmod, e = decodeMod(subs["pmod"].data, "pmod"); e != nil {
		return nil, e
	}
	if t.pgen, e = decodeGen(subs["pgen"].data, "pgen"); e != nil {
		return nil, e
	}
	if t.inst, e = decodeInst(subs["inst"].data); e != nil {
		return nil, e
	}
	if t.ibag, e = decodeBag(subs["ibag"].data, "ibag"); e != nil {
		return nil, e
	}
	if t.imod, e = decodeMod(subs["imod"].data, "imod"); e != nil {
		return nil, e
	}
	if t.igen, e = decodeGen(subs["igen"].data, "igen"); e != nil {
		return nil, e
	}
	if t.shdr, e = decodeShdr(subs["shdr"].data); e != nil {
		return nil, e
	}
	return t, nil
}

// buildZonesGeneric slices a bag array into per-parent zone lists
// between successive bagNdx values, then slices each zone's generator
// (and modulator) list between successive genNdx/modNdx values. A zone
// whose last generator is not the terminal reference generator
// (sampleID for instrument zones, instrument for preset zones) is a
// global zone. isTerminal reports whether a generator id is the
// zone's required last/reference generator.
func buildZonesGeneric(bagStart, bagEnd uint16, bags []bagRecord, gens []genRecord, mods []modRecord, isTerminal func(Generator) bool) ([]Zone, error) {
	if int(bagEnd) > len(bags) || bagStart > bagEnd {
		return nil, parseErr(InvalidReference, "bag range [%d,%d) out of bounds (len=%d)", bagStart, bagEnd, len(bags))
	}
	zones := make([]Zone, 0, bagEnd-bagStart)
	for bi := bagStart; bi < bagEnd; bi++ {
		genStart := bags[bi].genNdx
		modStart := bags[bi].modNdx
		var genEnd, modEnd uint16
		if bi+1 < uint16(len(bags)) {
			genEnd = bags[bi+1].genNdx
			modEnd = bags[bi+1].modNdx
		} else {
			genEnd = uint16(len(gens))
			modEnd = uint16(len(mods))
		}
		if int(genEnd) > len(gens) || genStart > genEnd {
			return nil, parseErr(InvalidReference, "gen range [%d,%d) out of bounds (len=%d)", genStart, genEnd, len(gens))
		}
		if int(modEnd) > len(mods) || modStart > modEnd {
			return nil, parseErr(InvalidReference, "mod range [%d,%d) out of bounds (len=%d)", modStart, modEnd, len(mods))
		}

		z := Zone{Generators: make(map[Generator]int16, genEnd-genStart)}
		var ref Generator
		var hasRef bool
		for gi := genStart; gi < genEnd; gi++ {
			g := gens[gi]
			if g.oper >= NumGenerators {
				return nil, parseErr(InvalidRange, "generator id %d out of range (max %d)", g.oper, NumGenerators-1)
			}
			z.Generators[g.oper] = g.amount
			if gi == genEnd-1 && isTerminal(g.oper) {
				ref = g.oper
				hasRef = true
			}
		}
		for mi := modStart; mi < modEnd; mi++ {
			m := mods[mi]
			z.Modulators = append(z.Modulators, Modulator{
				SrcOper:    m.srcOper,
				DestOper:   m.destOper,
				Amount:     m.amount,
				AmtSrcOper: m.amtSrcOper,
				TransOper:  m.transOper,
			})
		}
		if !hasRef {
			z.Global = true
		} else if ref == GenSampleID {
			z.SampleIndex = int(z.Generators[GenSampleID])
		} else if ref == GenInstrument {
			z.InstrumentIndex = int(z.Generators[GenInstrument])
		}
		zones = append(zones, z)
	}
	return zones, nil
}
