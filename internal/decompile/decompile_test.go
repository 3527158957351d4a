package decompile

import (
	"strings"
	"testing"

	"github.com/ernie/ggtools/internal/bytecode"
	"github.com/ernie/ggtools/internal/game"
)

func buildWord(opcode int, p1 int32, p2 int, p3 int32) uint32 {
	return uint32(opcode)&0x3F | (uint32(p1) << 7) | (uint32(p2&0xFF) << 16) | (uint32(p3) << 23)
}

func TestDecompileMinimalCallStatement(t *testing.T) {
	raw := func() []byte {
		f := &bytecode.Function{
			UID:       "uid-1",
			Name:      "onEnter",
			Strings:   map[uint32]string{0: "ping"},
			Constants: []bytecode.Constant{{Kind: bytecode.ConstString, String: "ping"}},
			Instructions: []bytecode.Instruction{
				decodeFor(buildWord(1, 0, 0, 0)),  // PUSH_CONST constants[0] -> "ping"
				decodeFor(buildWord(23, 0, 0, 0)), // CALL, 0 arguments -> ping()
			},
			Lines: []bytecode.LineRange{{LineNumber: 1, StartIndex: 0, EndIndex: 2}},
		}
		return bytecode.EmitFunction(f)
	}()

	scripts, err := bytecode.Parse(raw, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}
	fn := scripts[0].FunctionsByUID[scripts[0].FunctionOrder[0]]
	out := Decompile(fn)
	if !strings.Contains(out, `"ping"()`) {
		t.Fatalf("expected a %q()-shaped call in output, got:\n%s", "ping", out)
	}
}

// decodeFor mirrors bytecode's unexported decodeInstruction for test use.
func decodeFor(word uint32) bytecode.Instruction {
	return bytecode.Instruction{
		Word:   word,
		Opcode: int(word & 0x3F),
		P1:     int32(word >> 7),
		P2:     int((word >> 16) & 0xFF),
		P3:     int32(word >> 23),
	}
}
