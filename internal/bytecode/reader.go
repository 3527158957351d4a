package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ernie/ggtools/internal/ggerr"
)

type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) peekMagic(magic [4]byte) bool {
	if r.remaining() < 4 {
		return false
	}
	return bytes.Equal(r.data[r.pos:r.pos+4], magic[:])
}

func (r *reader) expectMagic(magic [4]byte) error {
	if !r.peekMagic(magic) {
		got := "<eof>"
		if r.remaining() >= 4 {
			got = fmt.Sprintf("% x", r.data[r.pos:r.pos+4])
		}
		return &ggerr.MalformedFunction{Offset: int64(r.pos), Reason: fmt.Sprintf("expected magic % x, got %s", magic, got)}
	}
	r.pos += 4
	return nil
}

func (r *reader) readU32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, &ggerr.MalformedFunction{Offset: int64(r.pos), Reason: "truncated u32"}
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) readU16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, &ggerr.MalformedFunction{Offset: int64(r.pos), Reason: "truncated u16"}
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) readN(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, &ggerr.MalformedFunction{Offset: int64(r.pos), Reason: fmt.Sprintf("truncated block body, need %d bytes", n)}
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readCString() (string, error) {
	start := r.pos
	for r.pos < len(r.data) && r.data[r.pos] != 0 {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return "", &ggerr.MalformedFunction{Offset: int64(start), Reason: "unterminated string"}
	}
	s := string(r.data[start:r.pos])
	r.pos++ // skip NUL
	return s, nil
}
