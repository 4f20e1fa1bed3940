package midi

import (
	"encoding/binary"
)

// Minimal SMF writer used to build test inputs.

func varUint(v uint32) []byte {
	out := []byte{byte(v & 0x7F)}
	for v >>= 7; v > 0; v >>= 7 {
		out = append([]byte{byte(v&0x7F) | 0x80}, out...)
	}
	return out
}

func header(format, trackCount, division uint16) []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, trackCount)
	b = binary.BigEndian.AppendUint16(b, division)
	return b
}

func chunk(id string, body []byte) []byte {
	b := []byte(id)
	b = binary.BigEndian.AppendUint32(b, uint32(len(body)))
	return append(b, body...)
}

func track(events ...[]byte) []byte {
	var body []byte
	for _, e := range events {
		body = append(body, e...)
	}
	return chunk("MTrk", body)
}

func file(format, division uint16, tracks ...[]byte) []byte {
	b := header(format, uint16(len(tracks)), division)
	for _, t := range tracks {
		b = append(b, t...)
	}
	return b
}

// ev prefixes raw event bytes with a delta time.
func ev(delta uint32, data ...byte) []byte {
	return append(varUint(delta), data...)
}

func meta(delta uint32, subtype byte, body ...byte) []byte {
	b := ev(delta, 0xFF, subtype)
	b = append(b, varUint(uint32(len(body)))...)
	return append(b, body...)
}

func endOfTrack(delta uint32) []byte {
	return meta(delta, 0x2F)
}
