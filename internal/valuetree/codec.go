package valuetree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ernie/ggtools/internal/game"
	"github.com/ernie/ggtools/internal/ggerr"
)

var (
	fileHeader   = [4]byte{0x01, 0x02, 0x03, 0x04}
	fileVersion  = [4]byte{0x01, 0x00, 0x00, 0x00}
	endOfOffsets = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
)

const (
	tagNull         = 0x01
	tagDict         = 0x02
	tagArray        = 0x03
	tagString       = 0x04
	tagInt          = 0x05
	tagFloat        = 0x06
	tagOffsetsStart = 0x07
	tagStringsStart = 0x08
	tagVec2         = 0x09
	tagVec2Pair     = 0x0A
	tagVec2Triplet  = 0x0B
)

// Read parses a ValueTree document. g selects the stringRef width (u16 for
// Return to Monkey Island, u32 otherwise).
func Read(data []byte, g game.Game) (*Node, error) {
	if len(data) < 12 || !bytes.Equal(data[0:4], fileHeader[:]) {
		return nil, &ggerr.MalformedHeader{Offset: 0, Expected: fmt.Sprintf("% x", fileHeader), Actual: fmt.Sprintf("% x", safeSlice(data, 0, 4))}
	}
	if !bytes.Equal(data[4:8], fileVersion[:]) {
		return nil, &ggerr.MalformedHeader{Offset: 4, Expected: fmt.Sprintf("% x", fileVersion), Actual: fmt.Sprintf("% x", data[4:8])}
	}
	idxOffset := int(binary.LittleEndian.Uint32(data[8:12]))

	r := &reader{data: data, pos: 12, refWidth: g.StringRefWidth()}
	root, err := r.readValue()
	if err != nil {
		return nil, err
	}
	if r.pos != idxOffset {
		return nil, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: fmt.Sprintf("value section ended at %d, expected idxOffset %d", r.pos, idxOffset)}
	}

	if err := r.expectByte(tagOffsetsStart); err != nil {
		return nil, err
	}
	var offsets []int
	for {
		if r.pos+4 > len(r.data) {
			return nil, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "truncated string-offsets table"}
		}
		if bytes.Equal(r.data[r.pos:r.pos+4], endOfOffsets[:]) {
			r.pos += 4
			break
		}
		offsets = append(offsets, int(binary.LittleEndian.Uint32(r.data[r.pos:r.pos+4])))
		r.pos += 4
	}
	if err := r.expectByte(tagStringsStart); err != nil {
		return nil, err
	}
	r.offsets = offsets
	if err := resolveAllStringRefs(root, r); err != nil {
		return nil, err
	}
	return root, nil
}

func safeSlice(b []byte, lo, hi int) []byte {
	if hi > len(b) {
		hi = len(b)
	}
	if lo > hi {
		lo = hi
	}
	return b[lo:hi]
}

type pendingRef struct {
	node *Node
	idx  int
}

type reader struct {
	data     []byte
	pos      int
	refWidth int
	offsets  []int
	pending  []pendingRef
}

func (r *reader) expectByte(want byte) error {
	if r.pos >= len(r.data) {
		return &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "unexpected end of data"}
	}
	if r.data[r.pos] != want {
		return &ggerr.MalformedHeader{Offset: int64(r.pos), Expected: fmt.Sprintf("0x%02X", want), Actual: fmt.Sprintf("0x%02X", r.data[r.pos])}
	}
	r.pos++
	return nil
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "unexpected end of data"}
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readU32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "truncated u32"}
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) readStringRefIndex() (int, error) {
	if r.refWidth == 2 {
		if r.pos+2 > len(r.data) {
			return 0, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "truncated stringRef"}
		}
		v := binary.LittleEndian.Uint16(r.data[r.pos : r.pos+2])
		r.pos += 2
		return int(v), nil
	}
	v, err := r.readU32()
	return int(v), err
}

// readValue reads one value. String/Int/Float/Vec* nodes are returned with
// an empty Text and their stringRef index queued in r.pending until
// resolveAllStringRefs fills them in — the offsets table isn't known yet
// while we're still inside the value section.
func (r *reader) readValue() (*Node, error) {
	tag, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNull:
		return &Node{Kind: KindNull}, nil
	case tagDict:
		return r.readDict()
	case tagArray:
		return r.readArray()
	case tagString, tagInt, tagFloat, tagVec2, tagVec2Pair, tagVec2Triplet:
		idx, err := r.readStringRefIndex()
		if err != nil {
			return nil, err
		}
		n := &Node{Kind: tagToKind(tag)}
		r.pending = append(r.pending, pendingRef{node: n, idx: idx})
		return n, nil
	default:
		return nil, &ggerr.MalformedTree{Offset: int64(r.pos - 1), Reason: fmt.Sprintf("unknown value tag 0x%02X", tag)}
	}
}

func tagToKind(tag byte) Kind {
	switch tag {
	case tagString:
		return KindString
	case tagInt:
		return KindInt
	case tagFloat:
		return KindFloat
	case tagVec2:
		return KindVec2
	case tagVec2Pair:
		return KindVec2Pair
	default:
		return KindVec2Triplet
	}
}

func (r *reader) readDict() (*Node, error) {
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	d := NewDict()
	for i := uint32(0); i < count; i++ {
		keyIdx, err := r.readStringRefIndex()
		if err != nil {
			return nil, err
		}
		keyNode := &Node{Kind: KindString}
		r.pending = append(r.pending, pendingRef{node: keyNode, idx: keyIdx})
		val, err := r.readValue()
		if err != nil {
			return nil, err
		}
		d.pendingInsert(keyNode, val)
	}
	if err := r.expectByte(tagDict); err != nil {
		return nil, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "dict not closed with matching tag"}
	}
	return &Node{Kind: KindDict, Dict: d}, nil
}

// pendingInsert appends before keys are resolved to real strings; it
// finalizes into the real indexed Dict.Set semantics during
// resolveAllStringRefs.
func (d *Dict) pendingInsert(keyNode, val *Node) {
	d.Entries = append(d.Entries, DictEntry{Key: "", Value: val})
	d.Entries[len(d.Entries)-1].keyNode = keyNode
}

func (r *reader) readArray() (*Node, error) {
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	items := make([]*Node, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := r.readValue()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := r.expectByte(tagArray); err != nil {
		return nil, &ggerr.MalformedTree{Offset: int64(r.pos), Reason: "array not closed with matching tag"}
	}
	return &Node{Kind: KindArray, Array: items}, nil
}

func resolveAllStringRefs(root *Node, r *reader) error {
	for i := range r.pending {
		p := &r.pending[i]
		s, err := stringAt(r.data, r.offsets, p.idx)
		if err != nil {
			return err
		}
		p.node.Text = s
	}
	return fixupDictKeys(root)
}

func fixupDictKeys(n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindDict:
		finalized := NewDict()
		for _, e := range n.Dict.Entries {
			key := e.Key
			if e.keyNode != nil {
				key = e.keyNode.Text
			}
			if err := fixupDictKeys(e.Value); err != nil {
				return err
			}
			finalized.Set(key, e.Value)
		}
		*n.Dict = *finalized
	case KindArray:
		for _, item := range n.Array {
			if err := fixupDictKeys(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func stringAt(data []byte, offsets []int, idx int) (string, error) {
	if idx < 0 || idx >= len(offsets) {
		return "", &ggerr.MalformedTree{Reason: fmt.Sprintf("stringRef index %d out of range (%d strings)", idx, len(offsets))}
	}
	off := offsets[idx]
	if off < 0 || off > len(data) {
		return "", &ggerr.MalformedTree{Offset: int64(off), Reason: "string offset out of range"}
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", &ggerr.MalformedTree{Offset: int64(off), Reason: "unterminated string"}
	}
	return string(data[off:end]), nil
}
