package bytecode

import "github.com/ernie/ggtools/internal/game"

// ConstantKind tags a Constant's variant.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstString
)

// Constant is one entry of a function's typed constant pool (the
// VARIABLES block).
type Constant struct {
	Kind   ConstantKind
	Int    int32
	Float  float32
	String string
}

// Instruction is one packed 32-bit word decomposed per the container
// format: opcode in the low 6 bits, three parameters above it.
type Instruction struct {
	Word   uint32
	Opcode int
	P1     int32
	P2     int
	P3     int32
}

// decodeInstruction splits a raw instruction word into its fields.
func decodeInstruction(word uint32) Instruction {
	return Instruction{
		Word:   word,
		Opcode: int(word & 0x3F),
		P1:     int32(word >> 7),
		P2:     int((word >> 16) & 0xFF),
		P3:     int32(word >> 23),
	}
}

// JumpDistance extracts the signed 14-bit jump offset carried in P1 for
// jump opcodes.
func (i Instruction) JumpDistance() int32 {
	v := uint32(i.P1) & 0x3FFF
	if v&0x2000 != 0 {
		return int32(v) - 0x4000
	}
	return int32(v)
}

// LineRange maps a source line number to a slice of the instruction
// stream.
type LineRange struct {
	LineNumber int
	StartIndex int
	EndIndex   int
}

// Function is one bytecode routine: its own string and constant pools, a
// flat instruction stream, and a line-mapping table.
type Function struct {
	ParentScript *Script
	UID          string
	Name         string
	Strings      map[uint32]string
	Constants    []Constant
	Instructions []Instruction
	Lines        []LineRange
	Opcodes      *OpcodeTable

	// InfoTail holds the game-specific scalar fields that trail the INFO
	// block's three strings. Their meaning is unknown; they are preserved
	// and round-tripped, never interpreted.
	InfoTail []byte
}

// Script is a named collection of functions loaded from one bytecode file.
// The same script name may appear across multiple function records; they
// are grouped here in first-seen order.
type Script struct {
	Name            string
	Game            game.Game
	FunctionOrder   []string // UIDs in first-seen order
	FunctionsByUID  map[string]*Function
	RootFunction    *Function // the function named "$root$", if present
}

func newScript(name string, g game.Game) *Script {
	return &Script{Name: name, Game: g, FunctionsByUID: make(map[string]*Function)}
}

func (s *Script) addFunction(f *Function) {
	f.ParentScript = s
	if _, exists := s.FunctionsByUID[f.UID]; !exists {
		s.FunctionOrder = append(s.FunctionOrder, f.UID)
	}
	s.FunctionsByUID[f.UID] = f
	if f.Name == rootFunctionName {
		s.RootFunction = f
	}
}
