// Package bytecode parses the stack-machine bytecode container: a stream
// of function records, each with a string pool, a typed constant pool, a
// flat instruction stream, and a line-mapping table.
package bytecode

var (
	functionStart = [4]byte{0x9C, 0x78, 0x41, 0x34}
	functionEnd   = [4]byte{0x1C, 0xA3, 0x0D, 0x47}

	mysteryBlock      = [4]byte{0x25, 0xA1, 0x46, 0x7F}
	infoBlock         = [4]byte{0x62, 0x4B, 0xF9, 0x16}
	stringsBlock      = [4]byte{0xFA, 0x1C, 0x3F, 0x98}
	variablesBlock    = [4]byte{0x3A, 0xC3, 0x4B, 0xFD}
	instructionsBlock = [4]byte{0x1D, 0x4D, 0xED, 0x55}
	linesBlock        = [4]byte{0x42, 0x40, 0xD3, 0x62}
)

const (
	constTypeInt    = 0x102
	constTypeFloat  = 0x103
	constTypeString = 0x204
)

const rootFunctionName = "$root$"
