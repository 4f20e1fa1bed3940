package cursor

import (
	"encoding/binary"

	"github.com/jsphweid/midifile/smferr"
)

// Cursor reads big-endian values from a byte buffer that it never modifies.
// Offsets reported in errors are relative to the start of the original buffer,
// also for cursors returned by Sub.
type Cursor struct {
	buf  []byte
	i    int
	base int
}

func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset is the absolute position of the next byte to be read.
func (c *Cursor) Offset() int {
	return c.base + c.i
}

func (c *Cursor) BytesRemaining() int {
	return len(c.buf) - c.i
}

func (c *Cursor) IsEndOfFile() bool {
	return c.i >= len(c.buf)
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.BytesRemaining() {
		return nil, smferr.New(smferr.KindUnexpectedEOF, c.Offset(),
			"need %d bytes, %d remaining", n, c.BytesRemaining())
	}
	b := c.buf[c.i : c.i+n]
	c.i += n
	return b, nil
}

// PopBytes returns the next n bytes as a copy.
func (c *Cursor) PopBytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (c *Cursor) PopASCII(n int) (string, error) {
	b, err := c.take(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Cursor) PopUint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) PopInt8() (int8, error) {
	b, err := c.PopUint8()
	return int8(b), err
}

func (c *Cursor) PopUint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) PopUint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// PopVarUint reads a MIDI variable-length quantity: 7 bits per byte, most
// significant group first, high bit set on every byte but the last.
// Sequences longer than the usual 4 bytes are accepted as long as the value
// still fits in 32 bits.
func (c *Cursor) PopVarUint() (uint32, error) {
	start := c.Offset()
	var result uint32
	for {
		b, err := c.PopUint8()
		if err != nil {
			return 0, err
		}
		if result>>25 != 0 {
			return 0, smferr.New(smferr.KindMalformedVarInt, start,
				"value does not fit in 32 bits")
		}
		result = result<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// Sub splits off the next n bytes into a cursor of their own and advances c
// past them. Reads on the returned cursor fail at its end even if c has more.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	start := c.Offset()
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{buf: b, base: start}, nil
}
