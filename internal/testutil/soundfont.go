// Package testutil synthesizes minimal, byte-exact SoundFont 2.0
// buffers for tests, independent of the sfont parser itself so the
// parser can be exercised end-to-end against known-good input.
package testutil

import (
	"bytes"
	"encoding/binary"
)

// SoundFontBuilder assembles a single-sample, single-instrument,
// single-preset SoundFont buffer for tests. Zero value is usable;
// call Build to get the final byte slice.
type SoundFontBuilder struct {
	SampleData   []int16
	SampleRate   uint32
	RootKey      uint8
	LoopStart    uint32
	LoopEnd      uint32
	KeyLo, KeyHi uint8
	VelLo, VelHi uint8
	Bank         uint16
	Program      uint16
	PresetName   string
	InstName     string
	SampleName   string
}

// DefaultBuilder returns a builder for a 1-second 440Hz-ish sawtooth
// sample spanning the full keyboard, at preset (0,0).
func DefaultBuilder() *SoundFontBuilder {
	n := 44100
	data := make([]int16, n)
	for i := range data {
		data[i] = int16((i % 200) * 150)
	}
	return &SoundFontBuilder{
		SampleData: data,
		SampleRate: 44100,
		RootKey:    60,
		LoopStart:  0,
		LoopEnd:    uint32(n),
		KeyLo:      0,
		KeyHi:      127,
		VelLo:      0,
		VelHi:      127,
		Bank:       0,
		Program:    0,
		PresetName: "TestPreset",
		InstName:   "TestInstrument",
		SampleName: "TestSample",
	}
}

func chunk(id string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func cstr(s string, size int) []byte {
	b := make([]byte, size)
	copy(b, s)
	return b
}

// Build assembles the full RIFF byte buffer.
func (b *SoundFontBuilder) Build() []byte {
	info := b.buildInfo()
	sdta := b.buildSdta()
	pdta := b.buildPdta()

	var payload bytes.Buffer
	payload.WriteString("sfbk")
	payload.Write(chunk("LIST", append([]byte("INFO"), info...)))
	payload.Write(chunk("LIST", append([]byte("sdta"), sdta...)))
	payload.Write(chunk("LIST", append([]byte("pdta"), pdta...)))

	return chunk("RIFF", payload.Bytes())
}

func (b *SoundFontBuilder) buildInfo() []byte {
	var buf bytes.Buffer
	ifil := make([]byte, 4)
	binary.LittleEndian.PutUint16(ifil[0:2], 2)
	binary.LittleEndian.PutUint16(ifil[2:4], 1)
	buf.Write(chunk("ifil", ifil))
	buf.Write(chunk("isng", append([]byte("EMU8000"), 0)))
	buf.Write(chunk("INAM", append([]byte("Test Bank"), 0)))
	return buf.Bytes()
}

func (b *SoundFontBuilder) buildSdta() []byte {
	var buf bytes.Buffer
	raw := make([]byte, len(b.SampleData)*2)
	for i, s := range b.SampleData {
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(s))
	}
	buf.Write(chunk("smpl", raw))
	return buf.Bytes()
}

func u16(v uint16) []byte { b := make([]byte, 2); binary.LittleEndian.PutUint16(b, v); return b }
func u32(v uint32) []byte { b := make([]byte, 4); binary.LittleEndian.PutUint32(b, v); return b }

func (b *SoundFontBuilder) buildPdta() []byte {
	var out bytes.Buffer

	// igen: [keyRange, velRange, sampleID, terminator]
	var igen bytes.Buffer
	igen.Write(u16(43)) // GenKeyRange
	igen.Write([]byte{b.KeyLo, b.KeyHi})
	igen.Write(u16(44)) // GenVelRange
	igen.Write([]byte{b.VelLo, b.VelHi})
	igen.Write(u16(53)) // GenSampleID
	igen.Write(u16(0))
	igen.Write(u16(0)) // terminator oper/amount
	igen.Write(u16(0))

	// ibag: [{genNdx:0, modNdx:0}, {genNdx:3, modNdx:0}] (3 real gens then terminator bag)
	var ibag bytes.Buffer
	ibag.Write(u16(0))
	ibag.Write(u16(0))
	ibag.Write(u16(3))
	ibag.Write(u16(0))

	var imod bytes.Buffer // empty + nothing needed beyond terminator handled by empty slice

	// inst: [{name, bagNdx:0}, terminator{bagNdx:1}]
	var inst bytes.Buffer
	inst.Write(cstr(b.InstName, 20))
	inst.Write(u16(0))
	inst.Write(cstr("EOI", 20))
	inst.Write(u16(1))

	// pgen: [instrument, terminator]
	var pgen bytes.Buffer
	pgen.Write(u16(41)) // GenInstrument
	pgen.Write(u16(0))
	pgen.Write(u16(0))
	pgen.Write(u16(0))

	// pbag: [{genNdx:0,modNdx:0}, {genNdx:1,modNdx:0}]
	var pbag bytes.Buffer
	pbag.Write(u16(0))
	pbag.Write(u16(0))
	pbag.Write(u16(1))
	pbag.Write(u16(0))

	var pmod bytes.Buffer

	// phdr: [{name,preset,bank,bagNdx:0, 3x u32 ignored}, terminator{bagNdx:1}]
	var phdr bytes.Buffer
	phdr.Write(cstr(b.PresetName, 20))
	phdr.Write(u16(b.Program))
	phdr.Write(u16(b.Bank))
	phdr.Write(u16(0))
	phdr.Write(u32(0))
	phdr.Write(u32(0))
	phdr.Write(u32(0))
	phdr.Write(cstr("EOP", 20))
	phdr.Write(u16(0))
	phdr.Write(u16(0))
	phdr.Write(u16(1))
	phdr.Write(u32(0))
	phdr.Write(u32(0))
	phdr.Write(u32(0))

	// shdr: [{sample}, terminator]
	var shdr bytes.Buffer
	shdr.Write(cstr(b.SampleName, 20))
	shdr.Write(u32(0))
	shdr.Write(u32(uint32(len(b.SampleData))))
	shdr.Write(u32(b.LoopStart))
	shdr.Write(u32(b.LoopEnd))
	shdr.Write(u32(b.SampleRate))
	shdr.WriteByte(b.RootKey)
	shdr.WriteByte(0)
	shdr.Write(u16(0))
	shdr.Write(u16(0))
	shdr.Write(cstr("EOS", 20))
	shdr.Write(u32(0))
	shdr.Write(u32(0))
	shdr.Write(u32(0))
	shdr.Write(u32(0))
	shdr.Write(u32(0))
	shdr.WriteByte(0)
	shdr.WriteByte(0)
	shdr.Write(u16(0))
	shdr.Write(u16(0))

	out.Write(chunk("phdr", phdr.Bytes()))
	out.Write(chunk("pbag", pbag.Bytes()))
	out.Write(chunk("pmod", pmod.Bytes()))
	out.Write(chunk("pgen", pgen.Bytes()))
	out.Write(chunk("inst", inst.Bytes()))
	out.Write(chunk("ibag", ibag.Bytes()))
	out.Write(chunk("imod", imod.Bytes()))
	out.Write(chunk("igen", igen.Bytes()))
	out.Write(chunk("shdr", shdr.Bytes()))
	return out.Bytes()
}
