package valuetree

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ernie/ggtools/internal/game"
)

// Write serialises a Node back to wire bytes. Parsing then writing the
// same tree reproduces the original bytes exactly: same string dedup
// order, same key order, same index layout.
func Write(root *Node, g game.Game) ([]byte, error) {
	w := &writer{refWidth: g.StringRefWidth(), stringIndex: make(map[string]int)}
	if err := w.writeValue(root); err != nil {
		return nil, err
	}
	valueBytes := w.body.Bytes()

	idxOffset := 12 + len(valueBytes)
	offsetsSize := 1 + 4*len(w.strings) + 4 + 1
	stringsStart := idxOffset + offsetsSize

	var out bytes.Buffer
	out.Write(fileHeader[:])
	out.Write(fileVersion[:])
	var idxBuf [4]byte
	binary.LittleEndian.PutUint32(idxBuf[:], uint32(idxOffset))
	out.Write(idxBuf[:])
	out.Write(valueBytes)

	out.WriteByte(tagOffsetsStart)
	cursor := stringsStart
	for _, s := range w.strings {
		var off [4]byte
		binary.LittleEndian.PutUint32(off[:], uint32(cursor))
		out.Write(off[:])
		cursor += len(s) + 1
	}
	out.Write(endOfOffsets[:])
	out.WriteByte(tagStringsStart)
	for _, s := range w.strings {
		out.WriteString(s)
		out.WriteByte(0)
	}
	return out.Bytes(), nil
}

type writer struct {
	body        bytes.Buffer
	strings     []string
	stringIndex map[string]int
	refWidth    int
}

func (w *writer) internString(s string) int {
	if i, ok := w.stringIndex[s]; ok {
		return i
	}
	i := len(w.strings)
	w.strings = append(w.strings, s)
	w.stringIndex[s] = i
	return i
}

func (w *writer) writeStringRef(idx int) {
	if w.refWidth == 2 {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(idx))
		w.body.Write(b[:])
		return
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(idx))
	w.body.Write(b[:])
}

func (w *writer) writeValue(n *Node) error {
	if n == nil {
		n = &Node{Kind: KindNull}
	}
	switch n.Kind {
	case KindNull:
		w.body.WriteByte(tagNull)
	case KindDict:
		w.body.WriteByte(tagDict)
		var count [4]byte
		binary.LittleEndian.PutUint32(count[:], uint32(len(n.Dict.Entries)))
		w.body.Write(count[:])
		for _, e := range n.Dict.Entries {
			w.writeStringRef(w.internString(e.Key))
			if err := w.writeValue(e.Value); err != nil {
				return err
			}
		}
		w.body.WriteByte(tagDict)
	case KindArray:
		w.body.WriteByte(tagArray)
		var count [4]byte
		binary.LittleEndian.PutUint32(count[:], uint32(len(n.Array)))
		w.body.Write(count[:])
		for _, item := range n.Array {
			if err := w.writeValue(item); err != nil {
				return err
			}
		}
		w.body.WriteByte(tagArray)
	case KindString:
		w.body.WriteByte(tagString)
		w.writeStringRef(w.internString(n.Text))
	case KindInt:
		w.body.WriteByte(tagInt)
		w.writeStringRef(w.internString(n.Text))
	case KindFloat:
		w.body.WriteByte(tagFloat)
		w.writeStringRef(w.internString(n.Text))
	case KindVec2:
		w.body.WriteByte(tagVec2)
		w.writeStringRef(w.internString(n.Text))
	case KindVec2Pair:
		w.body.WriteByte(tagVec2Pair)
		w.writeStringRef(w.internString(n.Text))
	case KindVec2Triplet:
		w.body.WriteByte(tagVec2Triplet)
		w.writeStringRef(w.internString(n.Text))
	default:
		return fmt.Errorf("valuetree: unknown node kind %d", n.Kind)
	}
	return nil
}
