package vm

import (
	"os"
	"path/filepath"

	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/parser"
)

// makeFrame allocates a fresh Frame for an interpreted (non-native) call:
// local/cell slots sized from fn's compiled layout, captures resolved by
// name against fn.Captures, and stackBase pinned to the operand stack's
// current depth so OpReturn/unwind know where this call's region starts.
func (vm *VM) makeFrame(fn *object.Function) (*Frame, error) {
	chunk, ok := fn.Body.(*compiler.Chunk)
	if !ok {
		return nil, runtimeErrorf("call target %q has no compiled body", fn.Name)
	}

	frame := &Frame{
		fn:          fn,
		chunk:       chunk,
		locals:      make([]*object.Object, len(fn.Locals)),
		cells:       make([]*object.Cell, len(fn.CellNames)),
		captures:    make([]*object.Cell, len(fn.CaptureNames)),
		globals:     fn.Globals,
		stackBase:   len(vm.stack),
		isClassBody: fn.IsClassBody,
	}
	for i := range frame.locals {
		frame.locals[i] = vm.none
	}
	for i := range frame.cells {
		frame.cells[i] = &object.Cell{Value: vm.none}
	}
	for i, name := range fn.CaptureNames {
		cell := fn.Captures[name]
		if cell == nil {
			cell = &object.Cell{Value: vm.none}
		}
		frame.captures[i] = cell
	}
	return frame, nil
}

// setParamSlot writes a bound parameter value into whichever storage class
// the compiler assigned its name to: a boxed cell (if a nested closure
// captures it) or a plain local slot.
func (vm *VM) setParamSlot(frame *Frame, fn *object.Function, name string, value *object.Object) {
	if idx := indexOf(fn.CellNames, name); idx >= 0 {
		frame.cells[idx].Value = value
		return
	}
	if idx := indexOf(fn.Locals, name); idx >= 0 {
		frame.locals[idx] = value
	}
}

// bindParams implements the parameter-binding algorithm (positional
// assignment, *args/**kwargs collection, default substitution) a call
// applies before its frame starts executing. fn.Self, when set, is bound
// to the first positional-eligible parameter ahead of the caller's args.
// Named parameters declared after a *args parameter are keyword-only:
// positional filling stops at the star, so surplus positionals always
// route into *args (or fail), never into a keyword-only slot.
func (vm *VM) bindParams(frame *Frame, fn *object.Function, args []*object.Object, kwargsObj *object.Object) error {
	if fn.Self != nil {
		args = append([]*object.Object{fn.Self}, args...)
	}

	var posParams, kwOnlyParams []object.Param
	var starName, starStarName string
	for _, p := range fn.Params {
		switch p.Kind {
		case object.ParamStar:
			starName = p.Name
		case object.ParamStarStar:
			starStarName = p.Name
		default:
			if starName != "" {
				kwOnlyParams = append(kwOnlyParams, p)
			} else {
				posParams = append(posParams, p)
			}
		}
	}

	seen := make(map[string]bool, len(posParams)+len(kwOnlyParams))
	i := 0
	for ; i < len(posParams) && i < len(args); i++ {
		vm.setParamSlot(frame, fn, posParams[i].Name, args[i])
		seen[posParams[i].Name] = true
	}

	if i < len(args) {
		if starName == "" {
			return vm.raisef("TypeError", "%s() takes %d positional argument(s) but %d were given", fn.Name, len(posParams), len(args))
		}
		vm.setParamSlot(frame, fn, starName, vm.newTuple(args[i:]))
	} else if starName != "" {
		vm.setParamSlot(frame, fn, starName, vm.newTuple(nil))
	}

	named := append(append([]object.Param(nil), posParams...), kwOnlyParams...)

	extraKwargs := vm.newDict()
	if kwargsObj != nil && kwargsObj.Kind == object.KindDict {
		he := vm.hashEq()
		it := kwargsObj.Dict.Iter()
		for {
			k, v, ok := it.Next()
			if !ok {
				break
			}
			if k.Kind != object.KindString {
				return vm.raisef("TypeError", "keywords must be strings")
			}
			matched := false
			for _, p := range named {
				if p.Name != k.Str {
					continue
				}
				if seen[p.Name] {
					return vm.raisef("TypeError", "%s() got multiple values for argument %q", fn.Name, p.Name)
				}
				vm.setParamSlot(frame, fn, p.Name, v)
				seen[p.Name] = true
				matched = true
				break
			}
			if matched {
				continue
			}
			if starStarName == "" {
				return vm.raisef("TypeError", "%s() got an unexpected keyword argument %q", fn.Name, k.Str)
			}
			if err := extraKwargs.Dict.Set(he, k, v); err != nil {
				return err
			}
		}
	}
	if starStarName != "" {
		vm.setParamSlot(frame, fn, starStarName, extraKwargs)
	}

	for _, p := range posParams {
		if seen[p.Name] {
			continue
		}
		if p.Default != nil {
			vm.setParamSlot(frame, fn, p.Name, p.Default)
			continue
		}
		return vm.raisef("TypeError", "%s() missing required argument: %q", fn.Name, p.Name)
	}
	for _, p := range kwOnlyParams {
		if seen[p.Name] {
			continue
		}
		if p.Default != nil {
			vm.setParamSlot(frame, fn, p.Name, p.Default)
			continue
		}
		return vm.raisef("TypeError", "%s() missing required keyword argument: %q", fn.Name, p.Name)
	}
	return nil
}

// execCall implements OpCall: callee(*argsObj.Items, **kwargsObj).
func (vm *VM) execCall(callee, argsObj, kwargsObj *object.Object) error {
	args := argsObj.Items
	result, err := vm.callValue(callee, args, kwargsObj)
	if err != nil {
		return err
	}
	vm.push(result)
	return nil
}

// callValue is the native-code entry point for invoking any callable
// object.Object: an interpreted or native function, a class (construction),
// or an instance exposing __call__. Every dunder-dispatch site in
// operators.go/attrs.go/iter.go routes through this.
func (vm *VM) callValue(callee *object.Object, args []*object.Object, kwargsObj *object.Object) (*object.Object, error) {
	switch callee.Kind {
	case object.KindFunction:
		return vm.invokeFunction(callee.Func, args, kwargsObj)
	case object.KindClass:
		return vm.instantiate(callee, args, kwargsObj)
	case object.KindInstance:
		if m, ok := lookupMethod(callee, "__call__"); ok {
			return vm.callValue(m, args, kwargsObj)
		}
	}
	return nil, vm.raisef("TypeError", "%s object is not callable", callee.TypeTag())
}

func (vm *VM) invokeFunction(fn *object.Function, args []*object.Object, kwargsObj *object.Object) (*object.Object, error) {
	if fn.Native != nil {
		return fn.Native(args, kwargsObj)
	}
	// Depth is checked before the new frame exists, and the error is the
	// pre-allocated singleton, so delivering it needs no allocation at
	// the moment the stack is already at its limit.
	if vm.maxRecursion > 0 && len(vm.frames) >= vm.maxRecursion {
		return nil, vm.raise(vm.recursionError)
	}
	frame, err := vm.makeFrame(fn)
	if err != nil {
		return nil, err
	}
	if err := vm.bindParams(frame, fn, args, kwargsObj); err != nil {
		return nil, err
	}
	frame.kwargs = kwargsObj
	depth := len(vm.frames)
	vm.frames = append(vm.frames, frame)
	return vm.runLoop(depth)
}

// instantiate builds a new instance of classObj: a native Ctor hook (every
// builtin exception class has one) takes over entirely, otherwise a plain
// instance is allocated, parented to the class's attribute table, and its
// __init__ (if any) is run for side effects.
func (vm *VM) instantiate(classObj *object.Object, args []*object.Object, kwargsObj *object.Object) (*object.Object, error) {
	cls := classObj.Class
	if cls.Ctor != nil {
		return cls.Ctor(args, kwargsObj)
	}

	inst := vm.heap.New(object.KindInstance)
	inst.ClassRef = classObj
	inst.Attrs = object.NewAttrTable()
	inst.Attrs.AddParent(cls.Attrs)

	if initFn, ok := cls.Attrs.Get("__init__"); ok && initFn.Kind == object.KindFunction {
		bound := bindIfMethod(initFn, inst)
		if _, err := vm.callValue(bound, args, kwargsObj); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (vm *VM) execBuildSet(n int) error {
	items := vm.popN(n)
	s := vm.newSet()
	he := vm.hashEq()
	for _, it := range items {
		if err := s.Set.Add(he, it); err != nil {
			return err
		}
	}
	vm.push(s)
	return nil
}

func (vm *VM) execBuildDict(numPairs int) error {
	flat := vm.popN(numPairs * 2)
	d := vm.newDict()
	he := vm.hashEq()
	for i := 0; i < numPairs; i++ {
		if err := d.Dict.Set(he, flat[i*2], flat[i*2+1]); err != nil {
			return err
		}
	}
	vm.push(d)
	return nil
}

// execUnpack pops one iterable and pushes exactly n elements, first element
// ending on top (compileStore then pops targets in declaration order).
func (vm *VM) execUnpack(n int) error {
	iterable := vm.pop()
	items, err := vm.iterableToSlice(iterable)
	if err != nil {
		return err
	}
	if len(items) != n {
		return vm.raisef("ValueError", "too many values to unpack (expected %d, got %d)", n, len(items))
	}
	for i := len(items) - 1; i >= 0; i-- {
		vm.push(items[i])
	}
	return nil
}

// importModule implements the import algorithm: already-loaded modules
// are returned as-is, then a registered native ModuleLoader is tried, then
// a file under importPath is parsed/compiled/executed as the module body.
func (vm *VM) importModule(name string) (*object.Object, error) {
	if mod, ok := vm.modules[name]; ok {
		return mod, nil
	}
	if loader, ok := vm.moduleLoaders[name]; ok {
		mod, err := loader(vm, name)
		if err != nil {
			return nil, err
		}
		vm.modules[name] = mod
		return mod, nil
	}
	if vm.importPath == "" {
		return nil, vm.raisef("ImportError", "no module named %q", name)
	}

	path := filepath.Join(vm.importPath, name+".wings")
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, vm.raisef("ImportError", "no module named %q", name)
	}

	prog, errs := parser.Parse(string(src))
	if errs.HasErrors() {
		return nil, vm.raisef("SyntaxError", "%s", errs.Error())
	}
	chunk, errs := compiler.Compile(prog, path)
	if errs.HasErrors() {
		return nil, vm.raisef("SyntaxError", "%s", errs.Error())
	}

	module := vm.newModule(name)
	vm.modules[name] = module

	fn := &object.Function{
		Body:       chunk,
		Name:       name,
		Globals:    module.Attrs,
		SourceFile: chunk.SourceFile,
	}
	frame, err := vm.makeFrame(fn)
	if err != nil {
		return nil, err
	}
	depth := len(vm.frames)
	vm.frames = append(vm.frames, frame)
	if _, err := vm.runLoop(depth); err != nil {
		delete(vm.modules, name)
		return nil, err
	}
	return module, nil
}
