package sfont

import "encoding/binary"

// chunk is one parsed RIFF chunk: its four-byte id and its payload
// (not including the 8-byte id+size header). For LIST chunks the
// payload's first 4 bytes are the form type; formType splits them off.
type chunk struct {
	id   [4]byte
	data []byte
}

func idString(b []byte) string {
	return string(b)
}

// readChunk reads one RIFF chunk header+payload starting at off,
// returning the chunk and the offset of the next chunk. RIFF chunks
// are word-aligned: a chunk with odd size is followed by one pad byte.
func readChunk(buf []byte, off int) (chunk, int, error) {
	if off+8 > len(buf) {
		return chunk{}, 0, parseErr(TruncatedChunk, "chunk header at offset %d", off)
	}
	var c chunk
	copy(c.id[:], buf[off:off+4])
	size := binary.LittleEndian.Uint32(buf[off+4 : off+8])
	start := off + 8
	end := start + int(size)
	if end > len(buf) {
		return chunk{}, 0, parseErr(TruncatedChunk, "chunk %q wants %d bytes, only %d available", idString(c.id[:]), size, len(buf)-start)
	}
	c.data = buf[start:end]
	next := end
	if size%2 == 1 {
		next++ // pad byte
	}
	return c, next, nil
}

// formType returns a LIST/RIFF chunk's 4-byte form type and the
// remaining payload after it.
func formType(c chunk) (string, []byte, error) {
	if len(c.data) < 4 {
		return "", nil, parseErr(TruncatedChunk, "chunk %q has no form type", idString(c.id[:]))
	}
	return idString(c.data[0:4]), c.data[4:], nil
}

// splitSubChunks walks every sub-chunk in a LIST payload into a map
// keyed by chunk id. Sub-chunks of SoundFont files never nest further.
func splitSubChunks(payload []byte) (map[string]chunk, error) {
	out := make(map[string]chunk)
	off := 0
	for off < len(payload) {
		c, next, err := readChunk(payload, off)
		if err != nil {
			return nil, err
		}
		out[idString(c.id[:])] = c
		off = next
	}
	return out, nil
}

func readCString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
