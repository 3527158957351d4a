package dialogue

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ernie/ggtools/internal/cipher"
)

// buildYack hand-assembles a minimal decoded .yack buffer: one ACTOR_SAY
// statement at line 3 referencing string index 0 ("Hello"), then the
// END_PROGRAM terminator.
func buildYack(t *testing.T) []byte {
	t.Helper()
	var stmt bytes.Buffer
	stmt.WriteByte(1) // ACTOR_SAY
	writeU32(&stmt, 3) // line number
	writeU32(&stmt, 0) // reserved
	stmt.WriteByte(0)  // extraArgCount -> 2 total args
	writeI32(&stmt, 0) // arg0 -> string index 0 ("Hello")
	writeI32(&stmt, -1)
	stmt.WriteByte(0) // END_PROGRAM

	stringListOffset := 8 + stmt.Len()

	var strs bytes.Buffer
	writeU32(&strs, unknownNumber)
	writeU32(&strs, 1)
	strs.WriteString("Hello")
	strs.WriteByte(0)

	var out bytes.Buffer
	out.Write(header[:])
	writeU32(&out, uint32(stringListOffset))
	out.Write(stmt.Bytes())
	out.Write(strs.Bytes())
	return out.Bytes()
}

func writeU32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeI32(b *bytes.Buffer, v int32) { writeU32(b, uint32(v)) }

func TestDecodeSingleSayStatement(t *testing.T) {
	decoded := buildYack(t)
	filename := "Carla.yack"
	encoded := cipher.DecodeDialogueKey(decoded, keyOffset(filename))

	statements, err := Decode(encoded, filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(statements) != 1 {
		t.Fatalf("expected exactly 1 statement, got %d", len(statements))
	}
	s := statements[0]
	if s.LineNumber != 3 || s.Opcode != OpActorSay {
		t.Fatalf("unexpected statement: %+v", s)
	}
	if len(s.Args) != 2 || !s.Args[0].IsText || s.Args[0].String != "Hello" {
		t.Fatalf("unexpected args: %+v", s.Args)
	}
}
