// Package decompile reconstructs indented, source-like text from one
// bytecode function by simulating its stack machine: push/call/store,
// control flow (if/else/return), arithmetic and comparison.
package decompile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ernie/ggtools/internal/bytecode"
)

// Decompile renders one function's instructions as indented pseudo-source.
// The output is never expected to round-trip back to bytecode — it is a
// readable reconstruction, not an encoder.
func Decompile(f *bytecode.Function) string {
	d := &decompiler{fn: f, closeAt: make(map[int]int)}
	return d.run()
}

type decompiler struct {
	fn      *bytecode.Function
	stack   []string
	indent  int
	lines   []string
	closeAt map[int]int // absolute instruction index -> number of indents to close

	tableMarks []int // stack of recorded stack-depths for nested NEW_TABLE opens
}

func (d *decompiler) run() string {
	d.emit(fmt.Sprintf("function %s() {", d.fn.Name))
	d.indent++

	for li, lr := range d.fn.Lines {
		d.applyScheduledCloses(lr.StartIndex)

		start, end := lr.StartIndex, lr.EndIndex
		if start < 0 {
			start = 0
		}
		if end > len(d.fn.Instructions) {
			end = len(d.fn.Instructions)
		}
		for idx := start; idx < end; idx++ {
			d.step(idx, d.fn.Instructions[idx])
			d.applyScheduledClosesWithinLine(idx)
		}

		var nextStart int
		if li+1 < len(d.fn.Lines) {
			nextStart = d.fn.Lines[li+1].StartIndex
		} else {
			nextStart = len(d.fn.Instructions)
		}
		d.applyScheduledCloses(nextStart)
	}

	if len(d.stack) > 0 {
		d.emit("return " + strings.Join(d.stack, ", "))
		d.stack = nil
	}
	for d.indent > 1 {
		d.indent--
		d.emit("}")
	}
	d.indent--
	d.emit("} [end function]")
	return strings.Join(d.lines, "\n")
}

func (d *decompiler) applyScheduledCloses(idx int) {
	if n, ok := d.closeAt[idx]; ok {
		for i := 0; i < n; i++ {
			if d.indent > 1 {
				d.indent--
			}
			d.emit("}")
		}
		delete(d.closeAt, idx)
	}
}

func (d *decompiler) applyScheduledClosesWithinLine(idx int) {
	d.applyScheduledCloses(idx + 1)
}

func (d *decompiler) emit(s string) {
	d.lines = append(d.lines, strings.Repeat("  ", d.indent)+s)
}

func (d *decompiler) push(s string) { d.stack = append(d.stack, s) }

func (d *decompiler) pop() string {
	if len(d.stack) == 0 {
		return "[[empty stack]]"
	}
	v := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return v
}

func (d *decompiler) popN(n int32) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := int32(n) - 1; i >= 0; i-- {
		out[i] = d.pop()
	}
	return out
}

func (d *decompiler) constant(p3 int32) string {
	if int(p3) < 0 || int(p3) >= len(d.fn.Constants) {
		return fmt.Sprintf("[[invalid variable %d]]", p3)
	}
	c := d.fn.Constants[p3]
	switch c.Kind {
	case bytecode.ConstInt:
		return strconv.FormatInt(int64(c.Int), 10)
	case bytecode.ConstFloat:
		return strconv.FormatFloat(float64(c.Float), 'g', -1, 32)
	default:
		return c.String
	}
}

func (d *decompiler) step(idx int, ins bytecode.Instruction) {
	op := bytecode.OpUnknown
	if d.fn.Opcodes != nil {
		op = d.fn.Opcodes.Resolve(ins.Opcode)
	}

	switch op {
	case bytecode.OpPushNull:
		d.push("null")
	case bytecode.OpPushConst:
		d.pushConstant(ins.P3, true)
	case bytecode.OpPushLocal, bytecode.OpPushUpvar, bytecode.OpPushGlobal,
		bytecode.OpPushVar, bytecode.OpPushGlobalRef, bytecode.OpPushLocalRef,
		bytecode.OpPushUpvarRef, bytecode.OpPushVarRef, bytecode.OpPushIndexedRef:
		d.pushConstant(ins.P3, false)
	case bytecode.OpPushFunction:
		d.push("function " + d.constant(ins.P3))
	case bytecode.OpDupTop:
		if len(d.stack) > 0 {
			d.push(d.stack[len(d.stack)-1])
		}
	case bytecode.OpIndex:
		x := d.pop()
		name := d.constant(ins.P3)
		if x == name {
			d.push("[this]." + name)
		} else {
			d.push(x + "." + name)
		}
	case bytecode.OpNewArray:
		count := d.constantInt(ins.P3)
		items := d.popN(count)
		d.push("[ " + strings.Join(items, ", ") + " ]")
	case bytecode.OpNewTable:
		if ins.P3 == 0 {
			d.tableMarks = append(d.tableMarks, len(d.stack))
		} else {
			depth := 0
			if len(d.tableMarks) > 0 {
				depth = d.tableMarks[len(d.tableMarks)-1]
				d.tableMarks = d.tableMarks[:len(d.tableMarks)-1]
			}
			if depth > len(d.stack) {
				depth = len(d.stack)
			}
			entries := append([]string(nil), d.stack[depth:]...)
			d.stack = d.stack[:depth]
			d.push("{ " + strings.Join(entries, ", ") + " }")
		}
	case bytecode.OpNewSlot:
		v := d.pop()
		d.push(d.constant(ins.P3) + " = " + v)
	case bytecode.OpCall, bytecode.OpCallIndexed, bytecode.OpCallNative:
		d.renderCall(ins.P3, true)
	case bytecode.OpFCall, bytecode.OpFCallNative:
		d.renderCall(ins.P3, false)
	case bytecode.OpStoreLocal, bytecode.OpStoreUpvar, bytecode.OpStoreRoot, bytecode.OpStoreVar:
		v := d.pop()
		d.emit(d.constant(ins.P3) + " = " + v)
	case bytecode.OpStoreIndexed:
		value := d.pop()
		container := d.pop()
		key := d.pop()
		d.emit(fmt.Sprintf("%s[%s] <- %s", container, key, value))
	case bytecode.OpNewThisSlot:
		v := d.pop()
		slot := strings.Trim(d.pop(), `"`)
		d.emit(slot + " <- " + v)
	case bytecode.OpIncRef:
		v := d.pop()
		d.emit(v + "++")
	case bytecode.OpUnot:
		v := d.pop()
		if strings.Contains(v, " ") {
			v = "(" + v + ")"
		}
		d.push("!" + v)
	case bytecode.OpUminus:
		d.push("-" + d.pop())
	case bytecode.OpUonecomp:
		d.push("~" + d.pop())
	case bytecode.OpReturn:
		d.emit("return " + strings.Join(d.stack, ", "))
		d.stack = nil
	case bytecode.OpJump:
		d.emit("} else {")
		d.scheduleClose(idx, ins, true)
	case bytecode.OpJumpTrue, bytecode.OpJumpFalse:
		cond := d.pop()
		if op == bytecode.OpJumpTrue {
			cond = negate(cond)
		}
		dist := ins.JumpDistance()
		if dist == 0 {
			d.emit(fmt.Sprintf("if (%s) { return }", cond))
			return
		}
		if len(d.lines) > 0 && strings.HasSuffix(strings.TrimSpace(d.lines[len(d.lines)-1]), "} else {") {
			d.lines[len(d.lines)-1] = strings.TrimSuffix(d.lines[len(d.lines)-1], "else {") + fmt.Sprintf("else if (%s) {", cond)
		} else {
			d.emit(fmt.Sprintf("if (%s) {", cond))
		}
		d.indent++
		d.scheduleClose(idx, ins, false)
	case bytecode.OpJumpTopTrue:
		d.push("||")
	case bytecode.OpJumpTopFalse:
		d.push("&&")
	case bytecode.OpMath:
		if ins.P3 == 63 {
			d.binOp("==")
		} else {
			d.emit(fmt.Sprintf("// warning: unrendered MATH sub-opcode %d", ins.P3))
		}
	case bytecode.OpNullLocal:
		d.emit(d.constant(ins.P3) + " <- null")
	case bytecode.OpEqEq:
		d.binOp("==")
	case bytecode.OpNeq:
		d.binOp("!=")
	case bytecode.OpLt:
		d.binOp("<")
	case bytecode.OpGt:
		d.binOp(">")
	case bytecode.OpLeq:
		d.binOp("<=")
	case bytecode.OpGeq:
		d.binOp(">=")
	case bytecode.OpAdd:
		d.binOp("+")
	case bytecode.OpSub:
		d.binOp("-")
	case bytecode.OpMul:
		d.binOp("*")
	case bytecode.OpDiv:
		d.binOp("/")
	case bytecode.OpMod:
		d.binOp("%")
	case bytecode.OpShiftL:
		d.binOp("<<")
	case bytecode.OpShiftR:
		d.binOp(">>")
	case bytecode.OpLand:
		d.binOp("&&")
	case bytecode.OpLor:
		d.binOp("||")
	case bytecode.OpBand:
		d.binOp("&")
	case bytecode.OpBor:
		d.binOp("|")
	case bytecode.OpIn:
		d.binOp("in")
	case bytecode.OpPop:
		if len(d.stack) > 0 {
			d.emit(d.pop())
		}
	case bytecode.OpNop, bytecode.OpDeleteSlot, bytecode.OpClone, bytecode.OpBreakpoint,
		bytecode.OpIterate, bytecode.OpIterateKV, bytecode.OpSetLocal, bytecode.OpMathRef,
		bytecode.OpDecRef, bytecode.OpAddLocal, bytecode.OpTernary, bytecode.OpRemoved:
		// Recognised but structurally inert for text reconstruction purposes.
	default:
		d.emit(fmt.Sprintf("// warning: unknown opcode %d at instruction %d", ins.Opcode, idx))
	}
}

func (d *decompiler) pushConstant(p3 int32, quoteStrings bool) {
	if int(p3) < 0 || int(p3) >= len(d.fn.Constants) {
		d.push(fmt.Sprintf("[[invalid variable %d]]", p3))
		return
	}
	c := d.fn.Constants[p3]
	if quoteStrings && c.Kind == bytecode.ConstString {
		d.push(`"` + c.String + `"`)
		return
	}
	d.push(d.constant(p3))
}

func (d *decompiler) constantInt(p3 int32) int32 {
	if int(p3) < 0 || int(p3) >= len(d.fn.Constants) {
		return 0
	}
	c := d.fn.Constants[p3]
	if c.Kind == bytecode.ConstInt {
		return c.Int
	}
	return 0
}

func (d *decompiler) renderCall(p3 int32, statement bool) {
	// The callee is on top of the stack, above its arguments.
	callee := d.pop()
	var args []string
	if statement {
		// OP_CALL executes immediately, consuming every argument still on
		// the stack (not just p3 of them) and finishing the line.
		args = d.stack
		d.stack = nil
	} else {
		// OP_FCALL stores its result as an argument for an enclosing CALL,
		// so it only takes the last p3 arguments off the stack, leaving
		// anything below for that enclosing call.
		args = d.popN(p3)
	}
	expr := callee + "(" + strings.Join(args, ", ") + ")"
	if statement {
		d.emit(expr)
	} else {
		d.push(expr)
	}
}

func (d *decompiler) binOp(op string) {
	b := d.pop()
	a := d.pop()
	d.push(a + " " + op + " " + b)
}

func negate(cond string) string {
	if strings.Contains(cond, " ") {
		return "!(" + cond + ")"
	}
	return "!" + cond
}

func (d *decompiler) scheduleClose(idx int, ins bytecode.Instruction, isUnconditionalJump bool) {
	dist := ins.JumpDistance()
	target := idx + int(dist) + 1
	within := false
	for _, lr := range d.fn.Lines {
		if idx >= lr.StartIndex && idx < lr.EndIndex {
			within = target > lr.StartIndex && target <= lr.EndIndex
			break
		}
	}
	if within {
		d.closeAt[target]++
	} else {
		// Close at the start of the next line (JUMP), or leave scheduled
		// against the jump target's instruction index (JUMP_TRUE/FALSE).
		if isUnconditionalJump {
			d.closeAt[idx+1]++
		} else {
			d.closeAt[target]++
		}
	}
}
