package vm

import "github.com/wings-lang/wings/internal/object"

// execMakeClosure implements OpMakeClosure: pop NumDefaults default values
// (assigned to the trailing positional parameters that declared one),
// resolve proto.CaptureNames against the defining frame's own cells/
// captures, and push a fresh Function object.
func (vm *VM) execMakeClosure(frame *Frame, protoIdx int) error {
	proto := frame.chunk.FuncProtos[protoIdx]
	defaults := vm.popN(proto.NumDefaults)

	params := make([]object.Param, len(proto.Params))
	var posIdx []int
	for i, pp := range proto.Params {
		params[i] = object.Param{Name: pp.Name, Kind: pp.Kind}
		if pp.Kind == object.ParamPositional {
			posIdx = append(posIdx, i)
		}
	}
	start := len(posIdx) - len(defaults)
	if start < 0 {
		start = 0
	}
	for j, di := range posIdx[start:] {
		params[di].Default = defaults[j]
	}

	captures := make(map[string]*object.Cell, len(proto.CaptureNames))
	for _, name := range proto.CaptureNames {
		if idx := indexOf(frame.fn.CellNames, name); idx >= 0 {
			captures[name] = frame.cells[idx]
			continue
		}
		if idx := indexOf(frame.fn.CaptureNames, name); idx >= 0 {
			captures[name] = frame.captures[idx]
		}
	}

	fn := &object.Function{
		Body:         proto.Chunk,
		Name:         proto.Name,
		Module:       frame.fn.Module,
		IsMethod:     proto.IsMethod,
		IsClassBody:  proto.IsClassBody,
		Params:       params,
		VarArgsName:  proto.VarArgsName,
		KwArgsName:   proto.KwArgsName,
		Captures:     captures,
		CaptureNames: proto.CaptureNames,
		Locals:       proto.LocalNames,
		CellNames:    proto.CellNames,
		Globals:      frame.globals,
		SourceFile:   proto.SourceFile,
	}
	obj := vm.heap.New(object.KindFunction)
	obj.Func = fn
	vm.push(obj)
	return nil
}

// execMakeClass implements OpMakeClass: pop the bases tuple and the
// already-executed class-body namespace dict, build the Class descriptor,
// and push the resulting Class object. A class with no explicit bases
// implicitly derives from the bootstrapped root object class.
func (vm *VM) execMakeClass(frame *Frame, className string) error {
	bases := vm.pop()
	ns := vm.pop()

	attrs := object.NewAttrTable()
	for _, b := range bases.Items {
		if b.Kind != object.KindClass {
			return vm.raisef("TypeError", "bases must be classes")
		}
		attrs.AddParent(b.Class.Attrs)
	}
	baseList := append([]*object.Object(nil), bases.Items...)
	if len(baseList) == 0 && vm.objectClass != nil {
		attrs.AddParent(vm.objectClass.Class.Attrs)
		baseList = []*object.Object{vm.objectClass}
	}

	it := ns.Dict.Iter()
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		if k.Kind == object.KindString {
			attrs.Set(k.Str, v)
		}
	}

	classObj := vm.heap.New(object.KindClass)
	classObj.Class = &object.Class{
		Name:  className,
		Bases: baseList,
		Attrs: attrs,
	}
	classObj.Attrs = attrs
	attrs.Set("__class__", classObj)
	vm.push(classObj)
	return nil
}

// execRaise implements OpRaise: a plain `raise expr` pops the value
// (instantiating it if a bare class was raised) and raises it; the
// bare-`raise` re-raise form raises whatever the VM's current-exception
// slot holds.
func (vm *VM) execRaise(isReraise bool) error {
	if isReraise {
		if vm.currentException == nil {
			return vm.raisef("RuntimeError", "no active exception to re-raise")
		}
		return vm.raise(vm.currentException)
	}

	exc := vm.pop()
	if exc.Kind == object.KindClass {
		inst, err := vm.instantiate(exc, nil, nil)
		if err != nil {
			return err
		}
		exc = inst
	}
	if exc.Kind != object.KindInstance {
		return vm.raisef("TypeError", "exceptions must derive from BaseException")
	}
	return vm.raise(exc)
}

// execMatchException implements OpMatchException: stack [excObj,
// typeTuple] -> [bool]; an empty typeTuple matches a bare `except`.
func (vm *VM) execMatchException() error {
	typeTuple := vm.pop()
	excObj := vm.pop()

	if len(typeTuple.Items) == 0 {
		vm.push(vm.trueObj)
		return nil
	}
	for _, t := range typeTuple.Items {
		if t.Kind == object.KindClass && isInstanceOf(excObj, t) {
			vm.push(vm.trueObj)
			return nil
		}
	}
	vm.push(vm.falseObj)
	return nil
}
