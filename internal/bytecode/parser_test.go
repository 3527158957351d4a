package bytecode

import (
	"bytes"
	"testing"

	"github.com/ernie/ggtools/internal/game"
)

// buildMinimalFunction constructs one raw function record: a single
// constant "ping" and two instructions, PUSH_CONST 0 then CALL 1 (RTMI
// opcode numbers), matching the minimal-function test scenario.
func buildMinimalFunction(t *testing.T) []byte {
	t.Helper()
	f := &Function{
		UID:       "uid-1",
		Name:      "onEnter",
		Strings:   map[uint32]string{0: "ping"},
		Constants: []Constant{{Kind: ConstString, String: "ping"}},
		Instructions: []Instruction{
			decodeInstruction(buildWord(1, 0, 0, 0)),  // PUSH_CONST, p3=0 -> constants[0]
			decodeInstruction(buildWord(23, 0, 0, 1)), // CALL, p3=1 arg
		},
		Lines: []LineRange{{LineNumber: 1, StartIndex: 0, EndIndex: 2}},
	}
	script := newScript("MainScript", game.ReturnToMonkeyIsland)
	script.addFunction(f)
	return EmitFunction(f)
}

func buildWord(opcode int, p1 int32, p2 int, p3 int32) uint32 {
	return uint32(opcode)&0x3F | (uint32(p1) << 7) | (uint32(p2&0xFF) << 16) | (uint32(p3) << 23)
}

func TestParseMinimalFunction(t *testing.T) {
	raw := buildMinimalFunction(t)
	scripts, err := Parse(raw, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(scripts))
	}
	s := scripts[0]
	if len(s.FunctionOrder) != 1 {
		t.Fatalf("expected 1 function, got %d", len(s.FunctionOrder))
	}
	fn := s.FunctionsByUID[s.FunctionOrder[0]]
	if len(fn.Lines) != 1 || len(fn.Instructions) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if fn.Constants[0].Kind != ConstString || fn.Constants[0].String != "ping" {
		t.Fatalf("unexpected constant: %+v", fn.Constants[0])
	}
	if fn.Opcodes.Resolve(fn.Instructions[0].Opcode) != OpPushConst {
		t.Fatalf("expected PUSH_CONST, got %v", fn.Opcodes.Resolve(fn.Instructions[0].Opcode))
	}
	if fn.Opcodes.Resolve(fn.Instructions[1].Opcode) != OpCall {
		t.Fatalf("expected CALL, got %v", fn.Opcodes.Resolve(fn.Instructions[1].Opcode))
	}
}

func TestFunctionBlockRoundTrip(t *testing.T) {
	raw := buildMinimalFunction(t)
	scripts, err := Parse(raw, game.ReturnToMonkeyIsland)
	if err != nil {
		t.Fatal(err)
	}
	fn := scripts[0].FunctionsByUID[scripts[0].FunctionOrder[0]]
	reemitted := EmitFunction(fn)
	if !bytes.Equal(raw, reemitted) {
		t.Fatalf("block-level round trip mismatch:\n got  % x\nwant  % x", reemitted, raw)
	}
}

func TestMultipleFunctionsGroupByScript(t *testing.T) {
	f1 := &Function{UID: "a", Name: "fn1", Strings: map[uint32]string{}, Lines: []LineRange{}}
	f2 := &Function{UID: "b", Name: "fn2", Strings: map[uint32]string{}, Lines: []LineRange{}}
	var buf bytes.Buffer
	for _, f := range []*Function{f1, f2} {
		s := newScript("Shared", game.Delores)
		s.addFunction(f)
		buf.Write(EmitFunction(f))
	}
	scripts, err := Parse(buf.Bytes(), game.Delores)
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 1 {
		t.Fatalf("expected functions to group into 1 script, got %d", len(scripts))
	}
	if len(scripts[0].FunctionOrder) != 2 {
		t.Fatalf("expected 2 functions, got %d", len(scripts[0].FunctionOrder))
	}
}
