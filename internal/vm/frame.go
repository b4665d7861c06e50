package vm

import (
	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
)

// Frame is one active call's executor state (the glossary's "Frame"): pc,
// the three variable-storage classes a function's FuncProto partitions
// locals into, and the operand-stack region this call owns.
type Frame struct {
	fn    *object.Function
	chunk *compiler.Chunk
	ip    int

	locals   []*object.Object
	cells    []*object.Cell
	captures []*object.Cell
	globals  *object.AttrTable

	// kwargs is this call's bound **kwargs dict (or nil), kept alive as
	// a GC root for as long as the frame is active.
	kwargs *object.Object

	// stackBase is the operand-stack depth when this frame was pushed;
	// OpReturn (and a fully-unwound frame) truncate back to it.
	stackBase int

	// tryStack holds the frame's active protected regions, innermost
	// last. OpPushTry records where to jump and how deep the operand
	// stack was, so unwinding restores exactly the surrounding
	// expression's in-flight values before pushing the exception.
	tryStack []tryFrame

	// isClassBody is set for frames executing an IsClassBody proto, so
	// OpReturn can harvest the namespace dict from locals instead of
	// returning a value.
	isClassBody bool
}

type tryFrame struct {
	target    int
	stackSize int
}

func (f *Frame) localSlot(idx int32) *object.Object     { return f.locals[idx] }
func (f *Frame) setLocalSlot(idx int32, v *object.Object) { f.locals[idx] = v }
