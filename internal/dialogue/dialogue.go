// Package dialogue decrypts and decodes ".yack" dialogue VM images into an
// ordered list of statements.
package dialogue

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ernie/ggtools/internal/cipher"
	"github.com/ernie/ggtools/internal/ggerr"
)

// Opcode is the dialogue VM's statement opcode. Values match the wire
// encoding exactly so Opcode(raw) is always a valid conversion.
type Opcode int

const (
	OpEndProgram   Opcode = 0
	OpActorSay     Opcode = 1
	OpAssign       Opcode = 2
	OpPause        Opcode = 5
	OpWaitFor      Opcode = 7
	OpEmitCode     Opcode = 8
	OpLabel        Opcode = 9
	OpGotoLabel    Opcode = 10
	OpEndChoices   Opcode = 11
	OpBeginChoices Opcode = 12
	OpGotoIf       Opcode = 19
	OpChoice1      Opcode = 100
	OpChoice2      Opcode = 101
	OpChoice3      Opcode = 102
	OpChoice4      Opcode = 103
	OpChoice5      Opcode = 104
	OpChoice6      Opcode = 105
	OpChoice7      Opcode = 106
	OpChoice8      Opcode = 107
	OpChoice9      Opcode = 108
)

var opcodeNames = map[Opcode]string{
	OpEndProgram: "end", OpActorSay: "say", OpAssign: "assign", OpPause: "pause",
	OpWaitFor: "waitFor", OpEmitCode: "emitCode", OpLabel: "label",
	OpGotoLabel: "gotoLabel", OpEndChoices: "endChoices", OpBeginChoices: "beginChoices",
	OpGotoIf: "gotoIf",
	OpChoice1: "choice1", OpChoice2: "choice2", OpChoice3: "choice3",
	OpChoice4: "choice4", OpChoice5: "choice5", OpChoice6: "choice6",
	OpChoice7: "choice7", OpChoice8: "choice8", OpChoice9: "choice9",
}

// Name renders a known opcode's mnemonic, or "unknown(n)" for anything the
// table above doesn't recognise — unrecognised opcodes are a warning
// condition, never fatal.
func (o Opcode) Name() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(o))
}

// Arg is one statement argument: its raw integer value, and (if it was a
// valid string-pool index) the resolved text.
type Arg struct {
	Raw    int32
	String string
	IsText bool
}

func (a Arg) String2() string {
	if a.IsText {
		return a.String
	}
	return strconv.FormatInt(int64(a.Raw), 10)
}

// Statement is one decoded dialogue-program instruction.
type Statement struct {
	LineNumber int32
	Opcode     Opcode
	Args       []Arg
}

var header = [4]byte{0x00, 0x78, 0xE6, 0xDC}

const unknownNumber = 1120122089

// keyOffset derives the cipher's per-file start index from its basename,
// subtracting the length of the ".yack" suffix.
func keyOffset(filename string) int {
	return len(filepath.Base(filename)) - len(".yack")
}

// Decode deciphers and parses a .yack file's bytes into its statement
// stream, stopping at the first END_PROGRAM opcode.
func Decode(encoded []byte, filename string) ([]Statement, error) {
	decoded := cipher.DecodeDialogueKey(encoded, keyOffset(filename))

	if len(decoded) < 8 || decoded[0] != header[0] || decoded[1] != header[1] || decoded[2] != header[2] || decoded[3] != header[3] {
		return nil, &ggerr.MalformedHeader{Offset: 0, Expected: fmt.Sprintf("% x", header), Actual: fmt.Sprintf("% x", safePrefix(decoded, 4))}
	}
	stringListOffset := int(binary.LittleEndian.Uint32(decoded[4:8]))
	if stringListOffset < 0 || stringListOffset+8 > len(decoded) {
		return nil, &ggerr.MalformedHeader{Offset: 4, Expected: "string-list offset within file", Actual: strconv.Itoa(stringListOffset)}
	}

	magic := binary.LittleEndian.Uint32(decoded[stringListOffset : stringListOffset+4])
	if magic != unknownNumber {
		return nil, &ggerr.MalformedHeader{Offset: int64(stringListOffset), Expected: strconv.Itoa(unknownNumber), Actual: strconv.FormatUint(uint64(magic), 10)}
	}
	stringCount := int(binary.LittleEndian.Uint32(decoded[stringListOffset+4 : stringListOffset+8]))
	pos := stringListOffset + 8
	strings := make([]string, 0, stringCount)
	for i := 0; i < stringCount; i++ {
		s, next, err := readCString(decoded, pos)
		if err != nil {
			return nil, err
		}
		strings = append(strings, s)
		pos = next
	}

	var statements []Statement
	pos = 8
	for {
		if pos >= len(decoded) {
			return nil, &ggerr.MalformedTree{Offset: int64(pos), Reason: "statement stream ran past end of data without END_PROGRAM"}
		}
		opcodeByte := int8(decoded[pos])
		pos++
		if opcodeByte == int8(OpEndProgram) {
			break
		}
		if pos+8 > len(decoded) {
			return nil, &ggerr.MalformedTree{Offset: int64(pos), Reason: "truncated statement header"}
		}
		lineNumber := int32(binary.LittleEndian.Uint32(decoded[pos : pos+4]))
		reserved := int32(binary.LittleEndian.Uint32(decoded[pos+4 : pos+8]))
		pos += 8
		_ = reserved // expected 0; not fatal if it isn't

		if pos >= len(decoded) {
			return nil, &ggerr.MalformedTree{Offset: int64(pos), Reason: "truncated extra-arg count"}
		}
		extraArgCount := int(decoded[pos])
		pos++
		argCount := extraArgCount + 2

		args := make([]Arg, 0, argCount)
		for i := 0; i < argCount; i++ {
			if pos+4 > len(decoded) {
				return nil, &ggerr.MalformedTree{Offset: int64(pos), Reason: "truncated statement argument"}
			}
			raw := int32(binary.LittleEndian.Uint32(decoded[pos : pos+4]))
			pos += 4
			a := Arg{Raw: raw}
			if raw >= 0 && int(raw) < len(strings) {
				a.IsText = true
				a.String = strings[raw]
			}
			args = append(args, a)
		}
		statements = append(statements, Statement{
			LineNumber: lineNumber,
			Opcode:     Opcode(opcodeByte),
			Args:       args,
		})
	}
	return statements, nil
}

func readCString(data []byte, start int) (string, int, error) {
	end := start
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", 0, &ggerr.MalformedTree{Offset: int64(start), Reason: "unterminated string in dialogue string pool"}
	}
	return string(data[start:end]), end + 1, nil
}

func safePrefix(b []byte, n int) []byte {
	if n > len(b) {
		n = len(b)
	}
	return b[:n]
}

// Render renders a statement the way the original disassembler-style tools
// do, useful for quick CLI inspection: "line N: OPNAME arg1; arg2; ...".
func (s Statement) Render() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String2()
	}
	return fmt.Sprintf("line %d: %s %s", s.LineNumber, s.Opcode.Name(), strings.Join(parts, "; "))
}
