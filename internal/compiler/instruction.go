// Package compiler lowers a parsed *ast.Program into bytecode chunks that
// internal/vm executes. The instruction set is a flat stack machine: most
// opcodes carry a single operand A, whose meaning (constant-pool index,
// local slot, jump target, argument count, ...) depends on the opcode.
package compiler

import "fmt"

// OpCode is a single bytecode instruction's operation.
type OpCode uint8

const (
	// ----------------------------------------------------------------
	// Constants and literals
	// ----------------------------------------------------------------

	// OpLoadConst pushes Consts[A].
	// Stack: [] -> [const]
	OpLoadConst OpCode = iota
	// OpLoadNone pushes the None singleton.
	OpLoadNone
	// OpLoadTrue pushes True.
	OpLoadTrue
	// OpLoadFalse pushes False.
	OpLoadFalse

	// ----------------------------------------------------------------
	// Variables: plain locals, own boxed cells, inherited captures,
	// module globals. Each storage class gets its own load/store/delete
	// trio so the VM never has to branch on variable kind at runtime.
	// ----------------------------------------------------------------

	OpLoadLocal
	OpStoreLocal
	OpDeleteLocal

	OpLoadCell
	OpStoreCell
	OpDeleteCell

	OpLoadCapture
	OpStoreCapture

	// OpLoadGlobal/OpStoreGlobal/OpDeleteGlobal take A as an index into
	// Consts holding the name string.
	OpLoadGlobal
	OpStoreGlobal
	OpDeleteGlobal

	// ----------------------------------------------------------------
	// Stack shuffling
	// ----------------------------------------------------------------

	OpPop
	OpDup

	// ----------------------------------------------------------------
	// Container construction. A is the element count (OpBuildDict counts
	// pairs, so it pops 2*A values).
	// ----------------------------------------------------------------

	OpBuildTuple
	OpBuildList
	OpBuildSet
	OpBuildDict
	// OpBuildSlice pops step, upper, lower (in that order) and pushes a
	// KindSlice object; any of the three may be None to mean omitted.
	OpBuildSlice

	// OpUnpackSequence pops one iterable and pushes its A elements,
	// first element ending on top, for a tuple/list assignment target.
	OpUnpackSequence

	// ----------------------------------------------------------------
	// Arithmetic, bitwise, comparison: each op pops two operands and
	// pushes one result; the actual operation dispatches on the
	// operands' runtime Kind (and __dunder__ overloads for instances) in
	// internal/vm, never at compile time.
	// ----------------------------------------------------------------

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpLShift
	OpRShift
	OpBitAnd
	OpBitOr
	OpBitXor

	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpCmpIn
	OpCmpNotIn
	OpCmpIs
	OpCmpIsNot

	OpNeg
	OpPos
	OpInvert
	OpNot

	// ----------------------------------------------------------------
	// Control flow. Jump targets are absolute instruction indices,
	// patched by the compiler after the jump's destination is known.
	// ----------------------------------------------------------------

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	// OpJumpIfFalseOrPop/OpJumpIfTrueOrPop implement and/or short
	// circuit: if the jump is taken the tested value is left on the
	// stack as the expression's result, otherwise it is popped and
	// evaluation falls through to the other operand.
	OpJumpIfFalseOrPop
	OpJumpIfTrueOrPop

	// ----------------------------------------------------------------
	// Attributes, indexing, calls
	// ----------------------------------------------------------------

	// OpLoadAttr/OpStoreAttr/OpDeleteAttr take A as a Consts name index.
	// OpStoreAttr stack: [value, obj] -> [].
	OpLoadAttr
	OpStoreAttr
	OpDeleteAttr

	// OpLoadIndex stack: [obj, index] -> [result].
	OpLoadIndex
	// OpStoreIndex stack: [value, obj, index] -> [].
	OpStoreIndex
	// OpDeleteIndex stack: [obj, index] -> [].
	OpDeleteIndex

	// OpCall: stack [..., callee, argsTuple, kwargsDictOrNone] -> [result].
	OpCall

	// OpMakeClosure: A is an index into the chunk's FuncProtos. It pops
	// NumDefaults default values (in parameter order) from the stack,
	// gathers the proto's CaptureNames from the current frame, and
	// pushes a fresh Function object.
	OpMakeClosure

	// OpMakeClass: A is a Consts name index for the class name. It pops
	// a bases tuple and a freshly-executed class-body namespace dict,
	// pushing the constructed Class object.
	OpMakeClass

	// ----------------------------------------------------------------
	// Functions, exceptions, modules
	// ----------------------------------------------------------------

	// OpReturn pops the return value (or uses None if A == 0) and
	// unwinds the current frame.
	OpReturn

	// OpRaise: A == 0 pops and raises a value; A == 1 re-raises the
	// currently active exception (bare `raise`).
	OpRaise

	// OpPushTry opens a protected region: A is the handler target the VM
	// jumps to if an exception reaches this frame while the region is
	// active. The frame records the operand-stack depth at push time, so
	// unwinding restores the stack to exactly what the surrounding
	// expression had in flight and then pushes the exception object.
	OpPushTry
	// OpPopTry retires the innermost protected region on normal exit from
	// a try body (or an except-clause body). Early exits (return, break,
	// continue) compile their own OpPopTry sequence for every region they
	// leave.
	OpPopTry

	// OpMatchException: stack [excObj, typeTuple] -> [bool]; true if
	// excObj's class is a subclass of any type in typeTuple (or
	// typeTuple is empty, matching bare `except`).
	OpMatchException

	// OpClearException empties the VM's current-exception slot. Emitted
	// at the entry of a matched except clause, so handling an exception
	// resumes normal flow: a bare `raise` after the handler completes no
	// longer sees the already-handled exception.
	OpClearException

	// OpImportModule: A is a Consts name index for the dotted module
	// path; pushes the module object.
	OpImportModule
	// OpImportFrom: A is a Consts name index for one imported name;
	// stack [module] -> [module, value].
	OpImportFrom
	// OpImportStar implements `from m import *`: stack [module] ->
	// [module] (it peeks, like OpImportFrom, so the same trailing OpPop
	// balances the stack regardless of which import-from form compiled).
	// It copies every one of the module's globals into the current
	// frame's own globals table directly, since the names are only known
	// at runtime.
	OpImportStar

	OpNop
)

// Instruction is one bytecode op plus its operand and source position
// (carried directly rather than in a separate line table, since every
// instruction already needs a position for tracebacks).
type Instruction struct {
	Op  OpCode
	A   int32
	Pos Pos
}

// Pos mirrors diag.Pos without importing internal/diag from this leaf
// type, kept identical in shape so callers convert with a single
// composite literal.
type Pos struct {
	Line   int
	Column int
}

func (i Instruction) String() string {
	if name, ok := opNames[i.Op]; ok {
		return fmt.Sprintf("%-20s %d", name, i.A)
	}
	return fmt.Sprintf("OP(%d) %d", i.Op, i.A)
}

var opNames = map[OpCode]string{
	OpLoadConst:        "LOAD_CONST",
	OpLoadNone:         "LOAD_NONE",
	OpLoadTrue:         "LOAD_TRUE",
	OpLoadFalse:        "LOAD_FALSE",
	OpLoadLocal:        "LOAD_LOCAL",
	OpStoreLocal:       "STORE_LOCAL",
	OpDeleteLocal:      "DELETE_LOCAL",
	OpLoadCell:         "LOAD_CELL",
	OpStoreCell:        "STORE_CELL",
	OpDeleteCell:       "DELETE_CELL",
	OpLoadCapture:      "LOAD_CAPTURE",
	OpStoreCapture:     "STORE_CAPTURE",
	OpLoadGlobal:       "LOAD_GLOBAL",
	OpStoreGlobal:      "STORE_GLOBAL",
	OpDeleteGlobal:     "DELETE_GLOBAL",
	OpPop:              "POP",
	OpDup:              "DUP",
	OpBuildTuple:       "BUILD_TUPLE",
	OpBuildList:        "BUILD_LIST",
	OpBuildSet:         "BUILD_SET",
	OpBuildDict:        "BUILD_DICT",
	OpBuildSlice:       "BUILD_SLICE",
	OpUnpackSequence:   "UNPACK_SEQUENCE",
	OpAdd:              "ADD",
	OpSub:              "SUB",
	OpMul:              "MUL",
	OpDiv:              "DIV",
	OpFloorDiv:         "FLOOR_DIV",
	OpMod:              "MOD",
	OpPow:              "POW",
	OpLShift:           "LSHIFT",
	OpRShift:           "RSHIFT",
	OpBitAnd:           "BIT_AND",
	OpBitOr:            "BIT_OR",
	OpBitXor:           "BIT_XOR",
	OpCmpEq:            "CMP_EQ",
	OpCmpNe:            "CMP_NE",
	OpCmpLt:            "CMP_LT",
	OpCmpLe:            "CMP_LE",
	OpCmpGt:            "CMP_GT",
	OpCmpGe:            "CMP_GE",
	OpCmpIn:            "CMP_IN",
	OpCmpNotIn:         "CMP_NOT_IN",
	OpCmpIs:            "CMP_IS",
	OpCmpIsNot:         "CMP_IS_NOT",
	OpNeg:              "NEG",
	OpPos:              "POS",
	OpInvert:           "INVERT",
	OpNot:              "NOT",
	OpJump:             "JUMP",
	OpJumpIfFalse:      "JUMP_IF_FALSE",
	OpJumpIfTrue:       "JUMP_IF_TRUE",
	OpJumpIfFalseOrPop: "JUMP_IF_FALSE_OR_POP",
	OpJumpIfTrueOrPop:  "JUMP_IF_TRUE_OR_POP",
	OpLoadAttr:         "LOAD_ATTR",
	OpStoreAttr:        "STORE_ATTR",
	OpDeleteAttr:       "DELETE_ATTR",
	OpLoadIndex:        "LOAD_INDEX",
	OpStoreIndex:       "STORE_INDEX",
	OpDeleteIndex:      "DELETE_INDEX",
	OpCall:             "CALL",
	OpMakeClosure:      "MAKE_CLOSURE",
	OpMakeClass:        "MAKE_CLASS",
	OpReturn:           "RETURN",
	OpRaise:            "RAISE",
	OpPushTry:          "PUSH_TRY",
	OpPopTry:           "POP_TRY",
	OpMatchException:   "MATCH_EXCEPTION",
	OpClearException:   "CLEAR_EXCEPTION",
	OpImportModule:     "IMPORT_MODULE",
	OpImportFrom:       "IMPORT_FROM",
	OpImportStar:       "IMPORT_STAR",
	OpNop:              "NOP",
}
