package vm

import (
	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
)

// Run executes chunk as the top-level body of a freshly registered module
// named moduleName and returns the value its final OpReturn leaves: None
// for a compiler.Compile chunk, the trailing expression's value for a
// compiler.CompileEval chunk that ends in a bare expression.
func (vm *VM) Run(chunk *compiler.Chunk, moduleName string) (*object.Object, error) {
	module := vm.newModule(moduleName)
	vm.modules[moduleName] = module

	fn := &object.Function{
		Body:       chunk,
		Name:       moduleName,
		Locals:     nil,
		Globals:    module.Attrs,
		SourceFile: chunk.SourceFile,
	}
	frame, err := vm.makeFrame(fn)
	if err != nil {
		return nil, err
	}
	vm.frames = append(vm.frames, frame)
	return vm.runLoop(0)
}

func (vm *VM) newModule(name string) *object.Object {
	if m, ok := vm.modules[name]; ok {
		return m
	}
	o := &object.Object{Kind: object.KindModule, Str: name, Attrs: object.NewAttrTable()}
	return o
}

// runLoop executes instructions until the frame stack depth returns to
// depth, then returns whatever OpReturn left on top of the operand stack
// (the call's result). Both the top-level Run and any native-triggered
// nested call (vm.callValue) share this loop; each invocation unwinds
// exceptions only through its own frames, handing anything deeper to its
// caller so native code between interpreted frames can observe (or
// swallow, for StopIteration) the error itself.
//
// The instruction boundary is also the collector's safepoint: every live
// object is reachable from the operand stack, the frame variables, or a
// module at this point, so a threshold-triggered collection here can
// never sweep a value native code is still constructing.
func (vm *VM) runLoop(depth int) (*object.Object, error) {
	for len(vm.frames) > depth {
		frame := vm.frames[len(vm.frames)-1]

		if vm.heap.ShouldCollect() {
			vm.heap.Collect()
		}
		if vm.heap.TakeExhausted() {
			if !vm.unwind(vm.raise(vm.memoryError), depth) {
				return nil, &thrownException{exc: vm.memoryError}
			}
			continue
		}

		if frame.ip >= len(frame.chunk.Code) {
			return nil, runtimeErrorf("frame ran off the end of its chunk without a return")
		}

		inst := frame.chunk.Code[frame.ip]
		frame.ip++

		if err := vm.step(frame, inst); err != nil {
			if !vm.unwind(err, depth) {
				return nil, err
			}
			continue
		}
	}
	if len(vm.stack) == 0 {
		return vm.none, nil
	}
	result := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return result, nil
}

func (vm *VM) push(o *object.Object) { vm.stack = append(vm.stack, o) }

func (vm *VM) pop() *object.Object {
	o := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return o
}

func (vm *VM) popN(n int) []*object.Object {
	out := make([]*object.Object, n)
	copy(out, vm.stack[len(vm.stack)-n:])
	vm.stack = vm.stack[:len(vm.stack)-n]
	return out
}

func (vm *VM) top() *object.Object { return vm.stack[len(vm.stack)-1] }

// step executes one instruction against frame, the flat switch the
// compiler's opcode doc comments describe operand-by-operand.
func (vm *VM) step(frame *Frame, inst compiler.Instruction) error {
	switch inst.Op {
	case compiler.OpLoadConst:
		vm.push(frame.chunk.Consts[inst.A])
	case compiler.OpLoadNone:
		vm.push(vm.none)
	case compiler.OpLoadTrue:
		vm.push(vm.trueObj)
	case compiler.OpLoadFalse:
		vm.push(vm.falseObj)

	case compiler.OpLoadLocal:
		vm.push(frame.locals[inst.A])
	case compiler.OpStoreLocal:
		frame.locals[inst.A] = vm.pop()
	case compiler.OpDeleteLocal:
		frame.locals[inst.A] = vm.none

	case compiler.OpLoadCell:
		vm.push(frame.cells[inst.A].Value)
	case compiler.OpStoreCell:
		frame.cells[inst.A].Value = vm.pop()
	case compiler.OpDeleteCell:
		frame.cells[inst.A].Value = vm.none

	case compiler.OpLoadCapture:
		vm.push(frame.captures[inst.A].Value)
	case compiler.OpStoreCapture:
		frame.captures[inst.A].Value = vm.pop()

	case compiler.OpLoadGlobal:
		name := frame.chunk.Consts[inst.A].Str
		if v, ok := frame.globals.Get(name); ok {
			vm.push(v)
			return nil
		}
		if v, ok := vm.builtins.Get(name); ok {
			vm.push(v)
			return nil
		}
		return vm.raisef("NameError", "name %q is not defined", name)
	case compiler.OpStoreGlobal:
		name := frame.chunk.Consts[inst.A].Str
		frame.globals.Set(name, vm.pop())
	case compiler.OpDeleteGlobal:
		name := frame.chunk.Consts[inst.A].Str
		if !frame.globals.Delete(name) {
			return vm.raisef("NameError", "name %q is not defined", name)
		}

	case compiler.OpPop:
		vm.pop()
	case compiler.OpDup:
		vm.push(vm.top())

	case compiler.OpBuildTuple:
		vm.push(vm.newTuple(vm.popN(int(inst.A))))
	case compiler.OpBuildList:
		vm.push(vm.newList(vm.popN(int(inst.A))))
	case compiler.OpBuildSet:
		return vm.execBuildSet(int(inst.A))
	case compiler.OpBuildDict:
		return vm.execBuildDict(int(inst.A))
	case compiler.OpBuildSlice:
		step, upper, lower := vm.pop(), vm.pop(), vm.pop()
		s := vm.heap.New(object.KindSlice)
		s.SliceLower, s.SliceUpper, s.SliceStep = lower, upper, step
		vm.push(s)
	case compiler.OpUnpackSequence:
		return vm.execUnpack(int(inst.A))

	case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpFloorDiv,
		compiler.OpMod, compiler.OpPow, compiler.OpLShift, compiler.OpRShift,
		compiler.OpBitAnd, compiler.OpBitOr, compiler.OpBitXor:
		return vm.execBinary(inst.Op)
	case compiler.OpCmpEq, compiler.OpCmpNe, compiler.OpCmpLt, compiler.OpCmpLe,
		compiler.OpCmpGt, compiler.OpCmpGe, compiler.OpCmpIn, compiler.OpCmpNotIn,
		compiler.OpCmpIs, compiler.OpCmpIsNot:
		return vm.execCompare(inst.Op)
	case compiler.OpNeg, compiler.OpPos, compiler.OpInvert, compiler.OpNot:
		return vm.execUnary(inst.Op)

	case compiler.OpJump:
		frame.ip = int(inst.A)
	case compiler.OpJumpIfFalse:
		if !vm.pop().IsTruthy() {
			frame.ip = int(inst.A)
		}
	case compiler.OpJumpIfTrue:
		if vm.pop().IsTruthy() {
			frame.ip = int(inst.A)
		}
	case compiler.OpJumpIfFalseOrPop:
		if !vm.top().IsTruthy() {
			frame.ip = int(inst.A)
		} else {
			vm.pop()
		}
	case compiler.OpJumpIfTrueOrPop:
		if vm.top().IsTruthy() {
			frame.ip = int(inst.A)
		} else {
			vm.pop()
		}

	case compiler.OpLoadAttr:
		obj := vm.pop()
		v, err := vm.getAttr(obj, frame.chunk.Consts[inst.A].Str)
		if err != nil {
			return err
		}
		vm.push(v)
	case compiler.OpStoreAttr:
		obj := vm.pop()
		val := vm.pop()
		return vm.setAttr(obj, frame.chunk.Consts[inst.A].Str, val)
	case compiler.OpDeleteAttr:
		obj := vm.pop()
		return vm.deleteAttr(obj, frame.chunk.Consts[inst.A].Str)

	case compiler.OpLoadIndex:
		idx := vm.pop()
		obj := vm.pop()
		v, err := vm.getIndex(obj, idx)
		if err != nil {
			return err
		}
		vm.push(v)
	case compiler.OpStoreIndex:
		idx := vm.pop()
		obj := vm.pop()
		val := vm.pop()
		return vm.setIndex(obj, idx, val)
	case compiler.OpDeleteIndex:
		idx := vm.pop()
		obj := vm.pop()
		return vm.deleteIndex(obj, idx)

	case compiler.OpCall:
		kwargs := vm.pop()
		argsObj := vm.pop()
		callee := vm.pop()
		return vm.execCall(callee, argsObj, kwargs)

	case compiler.OpMakeClosure:
		return vm.execMakeClosure(frame, int(inst.A))
	case compiler.OpMakeClass:
		return vm.execMakeClass(frame, frame.chunk.Consts[inst.A].Str)

	case compiler.OpReturn:
		return vm.execReturn(frame, inst.A != 0)

	case compiler.OpRaise:
		return vm.execRaise(inst.A != 0)
	case compiler.OpPushTry:
		frame.tryStack = append(frame.tryStack, tryFrame{target: int(inst.A), stackSize: len(vm.stack)})
	case compiler.OpPopTry:
		if len(frame.tryStack) == 0 {
			return runtimeErrorf("POP_TRY with no active try frame")
		}
		frame.tryStack = frame.tryStack[:len(frame.tryStack)-1]
	case compiler.OpMatchException:
		return vm.execMatchException()
	case compiler.OpClearException:
		vm.currentException = nil

	case compiler.OpImportModule:
		name := frame.chunk.Consts[inst.A].Str
		mod, err := vm.importModule(name)
		if err != nil {
			return err
		}
		vm.push(mod)
	case compiler.OpImportFrom:
		mod := vm.top()
		name := frame.chunk.Consts[inst.A].Str
		v, ok := mod.Attrs.Get(name)
		if !ok {
			return vm.raisef("ImportError", "cannot import name %q", name)
		}
		vm.push(v)
	case compiler.OpImportStar:
		mod := vm.top()
		for _, name := range mod.Attrs.Names() {
			if len(name) > 0 && name[0] == '_' {
				continue
			}
			v, _ := mod.Attrs.Get(name)
			frame.globals.Set(name, v)
		}

	case compiler.OpNop:
		// nothing

	default:
		return runtimeErrorf("unimplemented opcode %v", inst.Op)
	}
	return nil
}

// execReturn pops the return value (or substitutes None), unwinds the
// current frame, and either pushes the result into the caller's frame (a
// class-body frame instead harvests a namespace dict, per
// FuncProto.IsClassBody's contract) or, for the outermost frame, hands it
// back to runLoop's caller untouched.
func (vm *VM) execReturn(frame *Frame, hasValue bool) error {
	var result *object.Object
	if hasValue {
		result = vm.pop()
	} else {
		result = vm.none
	}

	if frame.isClassBody {
		ns := vm.newDict()
		he := vm.hashEq()
		for i, name := range frame.fn.Locals {
			_ = ns.Dict.Set(he, vm.newString(name), frame.locals[i])
		}
		result = ns
	}

	vm.stack = vm.stack[:frame.stackBase]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.push(result)
	return nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
