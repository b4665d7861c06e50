package compiler

import (
	"testing"

	"github.com/wings-lang/wings/internal/parser"
)

func mustCompile(t *testing.T, src string) *Chunk {
	t.Helper()
	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		t.Fatalf("parse errors: %v", errs.Errors)
	}
	chunk, cerrs := Compile(prog, "<test>")
	if cerrs.HasErrors() {
		t.Fatalf("compile errors: %v", cerrs.Errors)
	}
	return chunk
}

func opSeq(chunk *Chunk) []OpCode {
	ops := make([]OpCode, len(chunk.Code))
	for i, inst := range chunk.Code {
		ops[i] = inst.Op
	}
	return ops
}

func TestCompileLiteralExprStmt(t *testing.T) {
	chunk := mustCompile(t, "1 + 2\n")
	want := []OpCode{OpLoadConst, OpLoadConst, OpAdd, OpPop, OpLoadNone, OpReturn}
	ops := opSeq(chunk)
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d = %v, want %v (full: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestCompileAssignAndLoadGlobal(t *testing.T) {
	chunk := mustCompile(t, "x = 1\ny = x\n")
	ops := opSeq(chunk)
	want := []OpCode{OpLoadConst, OpStoreGlobal, OpLoadGlobal, OpStoreGlobal, OpLoadNone, OpReturn}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d = %v, want %v (full: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestCompileIfElse(t *testing.T) {
	chunk := mustCompile(t, "if x:\n    y = 1\nelse:\n    y = 2\n")
	ops := opSeq(chunk)
	want := []OpCode{
		OpLoadGlobal, OpJumpIfFalse,
		OpLoadConst, OpStoreGlobal,
		OpJump,
		OpLoadConst, OpStoreGlobal,
		OpLoadNone, OpReturn,
	}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d = %v, want %v (full: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestCompileWhileBreakContinue(t *testing.T) {
	chunk := mustCompile(t, "while x:\n    if y:\n        break\n    continue\n")
	// Just assert it compiles cleanly and every jump target lands in range.
	for i, inst := range chunk.Code {
		switch inst.Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue, OpJumpIfFalseOrPop, OpJumpIfTrueOrPop:
			if int(inst.A) < 0 || int(inst.A) > len(chunk.Code) {
				t.Fatalf("instruction %d (%v) jumps out of range: %d", i, inst.Op, inst.A)
			}
		}
	}
}

func TestCompileFunctionDefBuildsProto(t *testing.T) {
	chunk := mustCompile(t, "def f(a, b=2):\n    return a + b\n")
	if len(chunk.FuncProtos) != 1 {
		t.Fatalf("FuncProtos count = %d, want 1", len(chunk.FuncProtos))
	}
	proto := chunk.FuncProtos[0]
	if proto.Name != "f" {
		t.Fatalf("proto.Name = %q, want f", proto.Name)
	}
	if proto.NumDefaults != 1 {
		t.Fatalf("proto.NumDefaults = %d, want 1", proto.NumDefaults)
	}
	if len(proto.Params) != 2 || proto.Params[0].Name != "a" || proto.Params[1].Name != "b" {
		t.Fatalf("proto.Params = %+v", proto.Params)
	}
	ops := opSeq(chunk)
	// Default expr, MAKE_CLOSURE, STORE_GLOBAL, then the implicit module return.
	want := []OpCode{OpLoadConst, OpMakeClosure, OpStoreGlobal, OpLoadNone, OpReturn}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d = %v, want %v (full: %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestCompileClosureCapturesOuterLocal(t *testing.T) {
	chunk := mustCompile(t, "def outer():\n    x = 1\n    def inner():\n        return x\n    return inner\n")
	if len(chunk.FuncProtos) != 1 {
		t.Fatalf("FuncProtos = %d, want 1", len(chunk.FuncProtos))
	}
	outer := chunk.FuncProtos[0]
	if len(outer.CellNames) != 1 || outer.CellNames[0] != "x" {
		t.Fatalf("outer.CellNames = %v, want [x]", outer.CellNames)
	}
	if len(outer.Chunk.FuncProtos) != 1 {
		t.Fatalf("outer nested protos = %d, want 1", len(outer.Chunk.FuncProtos))
	}
	inner := outer.Chunk.FuncProtos[0]
	if len(inner.CaptureNames) != 1 || inner.CaptureNames[0] != "x" {
		t.Fatalf("inner.CaptureNames = %v, want [x]", inner.CaptureNames)
	}
}

func TestCompileTryExceptFinallyBalancesTryFrames(t *testing.T) {
	chunk := mustCompile(t, "try:\n    x = 1\nexcept ValueError as e:\n    x = 2\nfinally:\n    x = 3\n")
	var pushes, pops int
	for i, inst := range chunk.Code {
		switch inst.Op {
		case OpPushTry:
			pushes++
			if int(inst.A) <= i || int(inst.A) > len(chunk.Code) {
				t.Fatalf("PUSH_TRY at %d has handler target %d out of range", i, inst.A)
			}
		case OpPopTry:
			pops++
		}
	}
	// One frame over the try body, one over the except clause's body.
	if pushes != 2 || pops != 2 {
		t.Fatalf("PUSH_TRY/POP_TRY = %d/%d, want 2/2", pushes, pops)
	}
}

func TestCompileDelStatement(t *testing.T) {
	chunk := mustCompile(t, "x = 1\ndel x\n")
	ops := opSeq(chunk)
	want := []OpCode{OpLoadConst, OpStoreGlobal, OpDeleteGlobal, OpLoadNone, OpReturn}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("op %d = %v, want %v (full %v)", i, ops[i], want[i], ops)
		}
	}
}

func TestCompileClassDefBuildsNamespaceProto(t *testing.T) {
	chunk := mustCompile(t, "class Point:\n    def __init__(self, x):\n        self.x = x\n")
	if len(chunk.FuncProtos) != 1 {
		t.Fatalf("FuncProtos = %d, want 1", len(chunk.FuncProtos))
	}
	proto := chunk.FuncProtos[0]
	if !proto.IsClassBody {
		t.Fatalf("proto.IsClassBody = false, want true")
	}
	if len(proto.Chunk.FuncProtos) != 1 || proto.Chunk.FuncProtos[0].Name != "__init__" {
		t.Fatalf("class body protos = %+v", proto.Chunk.FuncProtos)
	}
}

func TestCompileCallWithSplatAndKwargs(t *testing.T) {
	chunk := mustCompile(t, "f(1, *rest, y=2, **extra)\n")
	ops := opSeq(chunk)
	found := map[OpCode]bool{}
	for _, op := range ops {
		found[op] = true
	}
	// The `y=2` kwarg and the `**extra` merge both write into the
	// built kwargs dict through a __setitem__/update call (OpLoadAttr +
	// OpCall), not OpStoreIndex: the dict sits buried under the name/
	// value it's being written with, and there's no stack-rotate opcode
	// to reorder three slots in place.
	for _, want := range []OpCode{OpBuildList, OpBuildDict, OpCall, OpLoadAttr} {
		if !found[want] {
			t.Fatalf("opcodes %v missing %v", ops, want)
		}
	}
	foundSetItem := false
	for _, k := range chunk.Consts {
		if k.Str == "__setitem__" {
			foundSetItem = true
		}
	}
	if !foundSetItem {
		t.Fatalf("expected __setitem__ constant for the y=2 kwarg write, consts: %+v", chunk.Consts)
	}
}
