package bytecode

import (
	"bytes"
	"encoding/binary"
	"math"
)

// EmitFunction re-serialises a single function record at the block level.
// It is the inverse of parseFunctionBody: parsing then emitting yields
// identical bytes. The decompiler's textual output is lossy and is not
// expected to round-trip; this operates purely on the structural model.
func EmitFunction(f *Function) []byte {
	var body bytes.Buffer

	body.Write(mysteryBlock[:])
	writeU32(&body, 0)
	writeU32(&body, 1)
	writeU16(&body, 1025)

	var info bytes.Buffer
	writeCString(&info, f.UID)
	writeCString(&info, f.Name)
	scriptName := ""
	if f.ParentScript != nil {
		scriptName = f.ParentScript.Name
	}
	writeCString(&info, scriptName)
	info.Write(f.InfoTail)
	body.Write(infoBlock[:])
	writeU32(&body, uint32(info.Len()))
	body.Write(info.Bytes())

	stringsBody, offsetByString := encodeStringsBlock(f.Strings)
	body.Write(stringsBlock[:])
	writeU32(&body, uint32(len(stringsBody)))
	body.Write(stringsBody)

	var vars bytes.Buffer
	for _, c := range f.Constants {
		switch c.Kind {
		case ConstInt:
			writeU32(&vars, constTypeInt)
			writeU32(&vars, uint32(c.Int))
		case ConstFloat:
			writeU32(&vars, constTypeFloat)
			writeU32(&vars, math.Float32bits(c.Float))
		case ConstString:
			writeU32(&vars, constTypeString)
			writeU32(&vars, offsetByString[c.String])
		}
	}
	body.Write(variablesBlock[:])
	writeU32(&body, uint32(vars.Len()))
	body.Write(vars.Bytes())

	var instrs bytes.Buffer
	for _, ins := range f.Instructions {
		writeU32(&instrs, ins.Word)
	}
	body.Write(instructionsBlock[:])
	writeU32(&body, uint32(instrs.Len()))
	body.Write(instrs.Bytes())

	var lines bytes.Buffer
	for _, l := range f.Lines {
		writeU32(&lines, uint32(l.LineNumber))
		writeU32(&lines, uint32(l.StartIndex))
		writeU32(&lines, uint32(l.EndIndex))
	}
	body.Write(linesBlock[:])
	writeU32(&body, uint32(lines.Len()))
	body.Write(lines.Bytes())

	body.Write(functionEnd[:])
	writeU32(&body, 0)

	var out bytes.Buffer
	out.Write(functionStart[:])
	writeU32(&out, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

// encodeStringsBlock lays strings out in ascending offset order (their
// natural map iteration order doesn't matter — it's keyed by byte offset
// already) and returns both the block body and a reverse lookup used by
// the constant-pool encoder.
func encodeStringsBlock(strings map[uint32]string) ([]byte, map[string]uint32) {
	offsets := make([]uint32, 0, len(strings))
	for off := range strings {
		offsets = append(offsets, off)
	}
	// Simple insertion sort is fine: function string pools are small.
	for i := 1; i < len(offsets); i++ {
		for j := i; j > 0 && offsets[j-1] > offsets[j]; j-- {
			offsets[j-1], offsets[j] = offsets[j], offsets[j-1]
		}
	}
	var body bytes.Buffer
	byString := make(map[string]uint32, len(offsets))
	for _, off := range offsets {
		s := strings[off]
		for uint32(body.Len()) < off {
			body.WriteByte(0)
		}
		byString[s] = uint32(body.Len())
		body.WriteString(s)
		body.WriteByte(0)
	}
	return body.Bytes(), byString
}

func writeU32(b *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	b.Write(buf[:])
}

func writeU16(b *bytes.Buffer, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	b.Write(buf[:])
}

func writeCString(b *bytes.Buffer, s string) {
	b.WriteString(s)
	b.WriteByte(0)
}
