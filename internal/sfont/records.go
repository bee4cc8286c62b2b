package sfont

import "encoding/binary"

// Fixed-size pdta record shapes. Every array is
// sentinel-terminated: the last record is a terminator row that is
// never itself a playable preset/instrument/sample, only an end
// marker for slicing the record before it.

const (
	phdrRecSize = 38
	pbagRecSize = 4
	pgenRecSize = 4
	instRecSize = 22
	ibagRecSize = 4
	igenRecSize = 4
	shdrRecSize = 46
	modRecSize  = 10
)

type phdrRecord struct {
	name    string
	preset  uint16
	bank    uint16
	bagNdx  uint16
}

func decodePhdr(data []byte) ([]phdrRecord, error) {
	if len(data)%phdrRecSize != 0 || len(data) < phdrRecSize {
		return nil, parseErr(TruncatedChunk, "phdr size %d not a multiple of %d", len(data), phdrRecSize)
	}
	n := len(data) / phdrRecSize
	out := make([]phdrRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*phdrRecSize:]
		out[i] = phdrRecord{
			name:   readCString(r[0:20]),
			preset: binary.LittleEndian.Uint16(r[20:22]),
			bank:   binary.LittleEndian.Uint16(r[22:24]),
			bagNdx: binary.LittleEndian.Uint16(r[24:26]),
		}
	}
	return out, nil
}

type bagRecord struct {
	genNdx uint16
	modNdx uint16
}

func decodeBag(data []byte, kind string) ([]bagRecord, error) {
	if len(data)%pbagRecSize != 0 || len(data) < pbagRecSize {
		return nil, parseErr(TruncatedChunk, "%s size %d not a multiple of %d", kind, len(data), pbagRecSize)
	}
	n := len(data) / pbagRecSize
	out := make([]bagRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*pbagRecSize:]
		out[i] = bagRecord{
			genNdx: binary.LittleEndian.Uint16(r[0:2]),
			modNdx: binary.LittleEndian.Uint16(r[2:4]),
		}
	}
	return out, nil
}

type genRecord struct {
	oper   Generator
	amount int16
}

func decodeGen(data []byte, kind string) ([]genRecord, error) {
	if len(data)%pgenRecSize != 0 {
		return nil, parseErr(TruncatedChunk, "%s size %d not a multiple of %d", kind, len(data), pgenRecSize)
	}
	n := len(data) / pgenRecSize
	out := make([]genRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*pgenRecSize:]
		out[i] = genRecord{
			oper:   Generator(binary.LittleEndian.Uint16(r[0:2])),
			amount: int16(binary.LittleEndian.Uint16(r[2:4])),
		}
	}
	return out, nil
}

type modRecord struct {
	srcOper    uint16
	destOper   Generator
	amount     int16
	amtSrcOper uint16
	transOper  uint16
}

func decodeMod(data []byte, kind string) ([]modRecord, error) {
	if len(data)%modRecSize != 0 {
		return nil, parseErr(TruncatedChunk, "%s size %d not a multiple of %d", kind, len(data), modRecSize)
	}
	n := len(data) / modRecSize
	out := make([]modRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*modRecSize:]
		out[i] = modRecord{
			srcOper:    binary.LittleEndian.Uint16(r[0:2]),
			destOper:   Generator(binary.LittleEndian.Uint16(r[2:4])),
			amount:     int16(binary.LittleEndian.Uint16(r[4:6])),
			amtSrcOper: binary.LittleEndian.Uint16(r[6:8]),
			transOper:  binary.LittleEndian.Uint16(r[8:10]),
		}
	}
	return out, nil
}

type instRecord struct {
	name   string
	bagNdx uint16
}

func decodeInst(data []byte) ([]instRecord, error) {
	if len(data)%instRecSize != 0 || len(data) < instRecSize {
		return nil, parseErr(TruncatedChunk, "inst size %d not a multiple of %d", len(data), instRecSize)
	}
	n := len(data) / instRecSize
	out := make([]instRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*instRecSize:]
		out[i] = instRecord{
			name:   readCString(r[0:20]),
			bagNdx: binary.LittleEndian.Uint16(r[20:22]),
		}
	}
	return out, nil
}

type shdrRecord struct {
	name        string
	start       uint32
	end         uint32
	startLoop   uint32
	endLoop     uint32
	sampleRate  uint32
	originalKey uint8
	correction  int8
	sampleLink  uint16
	sampleType  uint16
}

func decodeShdr(data []byte) ([]shdrRecord, error) {
	if len(data)%shdrRecSize != 0 || len(data) < shdrRecSize {
		return nil, parseErr(TruncatedChunk, "shdr size %d not a multiple of %d", len(data), shdrRecSize)
	}
	n := len(data) / shdrRecSize
	out := make([]shdrRecord, n)
	for i := 0; i < n; i++ {
		r := data[i*shdrRecSize:]
		out[i] = shdrRecord{
			name:        readCString(r[0:20]),
			start:       binary.LittleEndian.Uint32(r[20:24]),
			end:         binary.LittleEndian.Uint32(r[24:28]),
			startLoop:   binary.LittleEndian.Uint32(r[28:32]),
			endLoop:     binary.LittleEndian.Uint32(r[32:36]),
			sampleRate:  binary.LittleEndian.Uint32(r[36:40]),
			originalKey: r[40],
			correction:  int8(r[41]),
			sampleLink:  binary.LittleEndian.Uint16(r[42:44]),
			sampleType:  binary.LittleEndian.Uint16(r[44:46]),
		}
	}
	return out, nil
}
