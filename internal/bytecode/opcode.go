package bytecode

import "github.com/ernie/ggtools/internal/game"

// Op is a decompiler-facing opcode name, resolved once per Script from a
// per-game numeric table so the decompiler's hot dispatch loop never
// branches on Game.
type Op int

const (
	OpUnknown Op = iota
	OpNop
	OpPushConst
	OpPushNull
	OpPushLocal
	OpPushUpvar
	OpPushGlobal
	OpPushFunction
	OpPushVar
	OpPushGlobalRef
	OpPushLocalRef
	OpPushUpvarRef
	OpPushVarRef
	OpPushIndexedRef
	OpDupTop
	OpUnot
	OpUminus
	OpUonecomp
	OpMath // RTMI generic arithmetic/comparison opcode
	// Delores-only arithmetic/comparison, each a distinct opcode
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpShiftL
	OpShiftR
	OpMod
	OpEqEq
	OpNeq
	OpLt
	OpGt
	OpLeq
	OpGeq
	OpLand
	OpLor
	OpBand
	OpBor
	OpIn
	OpIndex
	OpIterate
	OpIterateKV
	OpCall
	OpFCall
	OpCallIndexed
	OpCallNative
	OpFCallNative
	OpPop
	OpStoreLocal
	OpStoreUpvar
	OpStoreRoot
	OpStoreVar
	OpStoreIndexed
	OpSetLocal
	OpNullLocal // RTMI only
	OpMathRef
	OpIncRef
	OpDecRef
	OpAddLocal
	OpJump
	OpJumpTrue
	OpJumpFalse
	OpJumpTopTrue
	OpJumpTopFalse
	OpTernary
	OpNewTable
	OpNewArray
	OpNewSlot
	OpNewThisSlot
	OpDeleteSlot
	OpReturn
	OpClone
	OpBreakpoint // RTMI only
	OpRemoved
)

// OpcodeTable maps a game's raw numeric opcode to the shared Op enum.
type OpcodeTable struct {
	byNumber map[int]Op
}

func (t *OpcodeTable) Resolve(n int) Op {
	if op, ok := t.byNumber[n]; ok {
		return op
	}
	return OpUnknown
}

// TableFor resolves the opcode table for g. Thimbleweed Park never carries
// Dink bytecode, so it has no table.
func TableFor(g game.Game) *OpcodeTable {
	switch g {
	case game.Delores:
		return doloresTable
	case game.ReturnToMonkeyIsland:
		return rtmiTable
	default:
		return nil
	}
}

var doloresTable = &OpcodeTable{byNumber: map[int]Op{
	0: OpNop, 1: OpPushConst, 2: OpPushNull, 3: OpPushLocal, 4: OpPushUpvar,
	5: OpPushGlobal, 6: OpPushFunction, 7: OpPushVar, 8: OpPushGlobalRef,
	9: OpPushLocalRef, 10: OpPushUpvarRef, 11: OpPushVarRef, 12: OpPushIndexedRef,
	13: OpDupTop, 14: OpUnot, 15: OpUminus, 16: OpUonecomp,
	17: OpAdd, 18: OpSub, 19: OpMul, 20: OpDiv, 21: OpShiftL, 22: OpShiftR,
	23: OpMod, 24: OpEqEq, 25: OpNeq, 26: OpLt, 27: OpGt, 28: OpLeq, 29: OpGeq,
	30: OpLand, 31: OpLor, 32: OpBand, 33: OpBor, 34: OpIn, 35: OpIndex,
	36: OpIterate, 37: OpIterateKV, 38: OpCall, 39: OpFCall, 40: OpCallIndexed,
	41: OpCallNative, 42: OpFCallNative, 43: OpPop, 44: OpStoreLocal,
	45: OpStoreUpvar, 46: OpStoreRoot, 47: OpStoreVar, 48: OpStoreIndexed,
	49: OpSetLocal, 50: OpMathRef, 51: OpIncRef, 52: OpDecRef, 53: OpAddLocal,
	54: OpJump, 55: OpJumpTrue, 56: OpJumpFalse, 57: OpJumpTopTrue,
	58: OpJumpTopFalse, 59: OpTernary, 60: OpNewTable, 61: OpNewArray,
	62: OpNewSlot, 63: OpNewThisSlot, 64: OpDeleteSlot, 65: OpReturn,
	66: OpClone, 67: OpRemoved,
}}

var rtmiTable = &OpcodeTable{byNumber: map[int]Op{
	0: OpNop, 1: OpPushConst, 2: OpPushNull, 3: OpPushLocal, 4: OpPushUpvar,
	5: OpPushGlobal, 6: OpPushFunction, 7: OpPushVar, 8: OpPushGlobalRef,
	9: OpPushLocalRef, 10: OpPushUpvarRef, 11: OpPushVarRef, 12: OpPushIndexedRef,
	13: OpDupTop, 14: OpUnot, 15: OpUminus, 16: OpUonecomp,
	17: OpMath, 18: OpLand, 19: OpLor, 20: OpIndex, 21: OpIterate, 22: OpIterateKV,
	23: OpCall, 24: OpFCall, 25: OpCallIndexed, 26: OpCallNative, 27: OpFCallNative,
	28: OpPop, 29: OpStoreLocal, 30: OpStoreUpvar, 31: OpStoreRoot, 32: OpStoreVar,
	33: OpStoreIndexed, 34: OpSetLocal, 35: OpNullLocal, 36: OpMathRef,
	37: OpIncRef, 38: OpDecRef, 39: OpAddLocal, 40: OpJump, 41: OpJumpTrue,
	42: OpJumpFalse, 43: OpJumpTopTrue, 44: OpJumpTopFalse, 45: OpTernary,
	46: OpNewTable, 47: OpNewArray, 48: OpNewSlot, 49: OpNewThisSlot,
	50: OpDeleteSlot, 51: OpReturn, 52: OpClone, 53: OpBreakpoint, 54: OpRemoved,
}}
