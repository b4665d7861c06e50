package vm

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/wings-lang/wings/internal/object"
)

// bootstrapBuiltins populates the global builtin namespace (the fallback
// OpLoadGlobal resolves against) and the implicit
// object root every base-less class derives from. Builtin scalar/
// container types are themselves Class objects with a native Ctor, so
// type()/isinstance() and user construction (list(x), int("3"), ...)
// share one mechanism.
func (vm *VM) bootstrapBuiltins() {
	vm.objectClass = &object.Object{Kind: object.KindClass}
	vm.objectClass.Class = &object.Class{Name: "object", Attrs: object.NewAttrTable()}
	vm.objectClass.Attrs = vm.objectClass.Class.Attrs
	vm.objectClass.Attrs.Set("__class__", vm.objectClass)
	vm.builtins.Set("object", vm.objectClass)

	vm.builtinTypeClasses = map[object.Kind]*object.Object{}
	mkType := func(name string, kind object.Kind, ctor object.NativeFn) {
		c := &object.Object{Kind: object.KindClass}
		c.Class = &object.Class{Name: name, Attrs: object.NewAttrTable(), Ctor: ctor}
		c.Attrs = c.Class.Attrs
		c.Attrs.Set("__class__", c)
		vm.builtinTypeClasses[kind] = c
		vm.builtins.Set(name, c)
	}
	mkType("int", object.KindInt, vm.ctorInt)
	mkType("float", object.KindFloat, vm.ctorFloat)
	mkType("str", object.KindString, vm.ctorStr)
	mkType("bool", object.KindBool, vm.ctorBool)
	mkType("list", object.KindList, vm.ctorList)
	mkType("tuple", object.KindTuple, vm.ctorTuple)
	mkType("dict", object.KindDict, vm.ctorDict)
	mkType("set", object.KindSet, vm.ctorSet)

	register := func(name string, fn object.NativeFn) {
		obj := &object.Object{Kind: object.KindFunction}
		obj.Func = &object.Function{Name: name, Native: fn}
		vm.builtins.Set(name, obj)
	}
	register("print", vm.builtinPrint)
	register("len", vm.builtinLen)
	register("range", vm.builtinRange)
	register("type", vm.builtinType)
	register("isinstance", vm.builtinIsinstance)
	register("repr", vm.builtinRepr)
	register("sorted", vm.builtinSorted)
	register("abs", vm.builtinAbs)
	register("min", vm.builtinMinMax(false))
	register("max", vm.builtinMinMax(true))
	register("sum", vm.builtinSum)
	register("round", vm.builtinRound)
	register("hash", vm.builtinHash)
	register("id", vm.builtinID)
	register("iter", vm.builtinIter)
	register("next", vm.builtinNext)
	register("getattr", vm.builtinGetattr)
	register("setattr", vm.builtinSetattr)
	register("hasattr", vm.builtinHasattr)
	if vm.osAccess {
		register("open", vm.builtinOpen)
	}
}

func (vm *VM) builtinPrint(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	sep := " "
	if s, ok := kwarg(vm, kwargs, "sep"); ok && s.Kind == object.KindString {
		sep = s.Str
	}
	end := "\n"
	if e, ok := kwarg(vm, kwargs, "end"); ok && e.Kind == object.KindString {
		end = e.Str
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = vm.str(a)
	}
	if _, err := vm.output.Write([]byte(strings.Join(parts, sep) + end)); err != nil {
		return nil, vm.raisef("OSError", "%v", err)
	}
	return vm.none, nil
}

func (vm *VM) objLen(o *object.Object) (int64, error) {
	switch o.Kind {
	case object.KindList, object.KindTuple:
		return int64(len(o.Items)), nil
	case object.KindString:
		return int64(len([]rune(o.Str))), nil
	case object.KindDict:
		return int64(o.Dict.Len()), nil
	case object.KindSet:
		return int64(o.Set.Len()), nil
	case object.KindInstance:
		if m, ok := lookupMethod(o, "__len__"); ok {
			res, err := vm.callValue(m, nil, nil)
			if err != nil {
				return 0, err
			}
			if res.Kind != object.KindInt {
				return 0, vm.raisef("TypeError", "__len__ must return an int")
			}
			return res.Int, nil
		}
	}
	return 0, vm.raisef("TypeError", "object of type %q has no len()", o.TypeTag())
}

func (vm *VM) builtinLen(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "len() takes exactly one argument")
	}
	n, err := vm.objLen(args[0])
	if err != nil {
		return nil, err
	}
	return vm.newInt(n), nil
}

// builtinRange eagerly materializes its result as a List (a deliberate
// scope simplification: the language has no separate lazy range type).
func (vm *VM) builtinRange(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	asI := func(o *object.Object) (int64, error) {
		if o.Kind != object.KindInt {
			return 0, vm.raisef("TypeError", "range() arguments must be integers")
		}
		return o.Int, nil
	}
	var start, stop, step int64 = 0, 0, 1
	var err error
	switch len(args) {
	case 1:
		stop, err = asI(args[0])
	case 2:
		start, err = asI(args[0])
		if err == nil {
			stop, err = asI(args[1])
		}
	case 3:
		start, err = asI(args[0])
		if err == nil {
			stop, err = asI(args[1])
		}
		if err == nil {
			step, err = asI(args[2])
		}
	default:
		return nil, vm.raisef("TypeError", "range() expected 1 to 3 arguments, got %d", len(args))
	}
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, vm.raisef("ValueError", "range() arg 3 must not be zero")
	}
	var items []*object.Object
	if step > 0 {
		for i := start; i < stop; i += step {
			items = append(items, vm.newInt(i))
		}
	} else {
		for i := start; i > stop; i += step {
			items = append(items, vm.newInt(i))
		}
	}
	return vm.newList(items), nil
}

func (vm *VM) ctorInt(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.newInt(0), nil
	}
	a := args[0]
	switch a.Kind {
	case object.KindInt:
		return a, nil
	case object.KindFloat:
		return vm.newInt(int64(a.Float)), nil
	case object.KindBool:
		return vm.newInt(asInt(a)), nil
	case object.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(a.Str), 10, 64)
		if err != nil {
			return nil, vm.raisef("ValueError", "invalid literal for int() with base 10: %s", vm.repr(a))
		}
		return vm.newInt(n), nil
	}
	return nil, vm.raisef("TypeError", "int() argument must be a string or a number, not %q", a.TypeTag())
}

func (vm *VM) ctorFloat(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.newFloat(0), nil
	}
	a := args[0]
	switch a.Kind {
	case object.KindFloat:
		return a, nil
	case object.KindInt:
		return vm.newFloat(float64(a.Int)), nil
	case object.KindBool:
		return vm.newFloat(float64(asInt(a))), nil
	case object.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(a.Str), 64)
		if err != nil {
			return nil, vm.raisef("ValueError", "could not convert string to float: %s", vm.repr(a))
		}
		return vm.newFloat(f), nil
	}
	return nil, vm.raisef("TypeError", "float() argument must be a string or a number, not %q", a.TypeTag())
}

func (vm *VM) ctorStr(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.newString(""), nil
	}
	return vm.newString(vm.str(args[0])), nil
}

func (vm *VM) ctorBool(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.falseObj, nil
	}
	t, err := vm.isTruthy(args[0])
	if err != nil {
		return nil, err
	}
	return vm.newBool(t), nil
}

func (vm *VM) ctorList(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.newList(nil), nil
	}
	items, err := vm.iterableToSlice(args[0])
	if err != nil {
		return nil, err
	}
	return vm.newList(items), nil
}

func (vm *VM) ctorTuple(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) == 0 {
		return vm.newTuple(nil), nil
	}
	items, err := vm.iterableToSlice(args[0])
	if err != nil {
		return nil, err
	}
	return vm.newTuple(items), nil
}

func (vm *VM) ctorSet(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	s := vm.newSet()
	if len(args) == 0 {
		return s, nil
	}
	items, err := vm.iterableToSlice(args[0])
	if err != nil {
		return nil, err
	}
	he := vm.hashEq()
	for _, it := range items {
		if err := s.Set.Add(he, it); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (vm *VM) ctorDict(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	d := vm.newDict()
	he := vm.hashEq()
	if len(args) == 1 {
		if args[0].Kind == object.KindDict {
			it := args[0].Dict.Iter()
			for {
				k, v, ok := it.Next()
				if !ok {
					break
				}
				if err := d.Dict.Set(he, k, v); err != nil {
					return nil, err
				}
			}
		} else {
			items, err := vm.iterableToSlice(args[0])
			if err != nil {
				return nil, err
			}
			for _, pair := range items {
				if (pair.Kind != object.KindTuple && pair.Kind != object.KindList) || len(pair.Items) != 2 {
					return nil, vm.raisef("ValueError", "dictionary update sequence element is not a pair")
				}
				if err := d.Dict.Set(he, pair.Items[0], pair.Items[1]); err != nil {
					return nil, err
				}
			}
		}
	}
	if kwargs != nil && kwargs.Kind == object.KindDict {
		it := kwargs.Dict.Iter()
		for {
			k, v, ok := it.Next()
			if !ok {
				break
			}
			if err := d.Dict.Set(he, k, v); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (vm *VM) builtinType(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "type() takes exactly one argument")
	}
	a := args[0]
	if a.Kind == object.KindInstance {
		return a.ClassRef, nil
	}
	if cls, ok := vm.builtinTypeClasses[a.Kind]; ok {
		return cls, nil
	}
	return nil, vm.raisef("TypeError", "no type object for %q", a.TypeTag())
}

func (vm *VM) builtinIsinstance(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 2 {
		return nil, vm.raisef("TypeError", "isinstance() takes exactly two arguments")
	}
	obj, target := args[0], args[1]
	var targets []*object.Object
	if target.Kind == object.KindTuple {
		targets = target.Items
	} else {
		targets = []*object.Object{target}
	}
	for _, t := range targets {
		if t.Kind != object.KindClass {
			continue
		}
		if obj.Kind == object.KindInstance {
			if isInstanceOf(obj, t) {
				return vm.trueObj, nil
			}
			continue
		}
		if cls, ok := vm.builtinTypeClasses[obj.Kind]; ok && cls == t {
			return vm.trueObj, nil
		}
		if obj.Kind == object.KindBool && t == vm.builtinTypeClasses[object.KindInt] {
			return vm.trueObj, nil
		}
	}
	return vm.falseObj, nil
}

func (vm *VM) builtinRepr(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "repr() takes exactly one argument")
	}
	return vm.newString(vm.repr(args[0])), nil
}

func (vm *VM) builtinSorted(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "sorted() takes exactly one argument")
	}
	items, err := vm.iterableToSlice(args[0])
	if err != nil {
		return nil, err
	}
	tmp := vm.newList(items)
	if _, err := listMethods["sort"](vm, tmp, nil, kwargs); err != nil {
		return nil, err
	}
	return tmp, nil
}

func (vm *VM) builtinAbs(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "abs() takes exactly one argument")
	}
	a := args[0]
	switch a.Kind {
	case object.KindFloat:
		return vm.newFloat(math.Abs(a.Float)), nil
	case object.KindInt, object.KindBool:
		v := asInt(a)
		if v < 0 {
			v = -v
		}
		return vm.newInt(v), nil
	}
	return nil, vm.raisef("TypeError", "bad operand type for abs(): %q", a.TypeTag())
}

// builtinMinMax returns the min()/max() builtin: both accept either a
// single iterable or two-or-more positional candidates, plus an optional
// key= kwarg, differing only in which side of compareOrdered wins.
func (vm *VM) builtinMinMax(wantMax bool) object.NativeFn {
	name := "min"
	if wantMax {
		name = "max"
	}
	return func(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
		var items []*object.Object
		var err error
		if len(args) == 1 {
			items, err = vm.iterableToSlice(args[0])
			if err != nil {
				return nil, err
			}
		} else {
			items = args
		}
		if len(items) == 0 {
			if d, ok := kwarg(vm, kwargs, "default"); ok {
				return d, nil
			}
			return nil, vm.raisef("ValueError", "%s() arg is an empty sequence", name)
		}
		keyFn, hasKey := kwarg(vm, kwargs, "key")
		keyOf := func(v *object.Object) (*object.Object, error) {
			if !hasKey {
				return v, nil
			}
			return vm.callValue(keyFn, []*object.Object{v}, nil)
		}
		best := items[0]
		bestKey, err := keyOf(best)
		if err != nil {
			return nil, err
		}
		for _, it := range items[1:] {
			k, err := keyOf(it)
			if err != nil {
				return nil, err
			}
			c, err := vm.compareOrdered(k, bestKey)
			if err != nil {
				return nil, err
			}
			if (wantMax && c > 0) || (!wantMax && c < 0) {
				best, bestKey = it, k
			}
		}
		return best, nil
	}
}

func (vm *VM) builtinSum(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, vm.raisef("TypeError", "sum() takes one or two arguments")
	}
	items, err := vm.iterableToSlice(args[0])
	if err != nil {
		return nil, err
	}
	var acc *object.Object
	if len(args) == 2 {
		acc = args[1]
	} else {
		acc = vm.newInt(0)
	}
	for _, it := range items {
		acc, err = vm.doAdd(acc, it)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// builtinRound implements round-half-away-from-zero, resolving the
// banker's-rounding-vs-half-away-from-zero ambiguity toward the simpler,
// more widely expected rule.
func (vm *VM) builtinRound(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, vm.raisef("TypeError", "round() takes one or two arguments")
	}
	a := args[0]
	if !isNumeric(a) {
		return nil, vm.raisef("TypeError", "type %q doesn't define __round__ method", a.TypeTag())
	}
	roundHalfAway := func(v float64) float64 {
		if v >= 0 {
			return math.Floor(v + 0.5)
		}
		return math.Ceil(v - 0.5)
	}
	if len(args) == 2 {
		if args[1].Kind != object.KindInt {
			return nil, vm.raisef("TypeError", "ndigits must be an integer")
		}
		mul := math.Pow(10, float64(args[1].Int))
		return vm.newFloat(roundHalfAway(asFloat(a)*mul) / mul), nil
	}
	if a.Kind == object.KindInt {
		return a, nil
	}
	return vm.newInt(int64(roundHalfAway(asFloat(a)))), nil
}

func (vm *VM) builtinHash(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "hash() takes exactly one argument")
	}
	h, err := vm.hashEq().Hash(args[0])
	if err != nil {
		return nil, err
	}
	return vm.newInt(int64(h)), nil
}

// builtinID exposes each object's identity: its Go pointer printed and
// reparsed as a number, since the language has no unsafe-pointer literal
// of its own to expose directly.
func (vm *VM) builtinID(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "id() takes exactly one argument")
	}
	ptr := strings.TrimPrefix(fmt.Sprintf("%p", args[0]), "0x")
	n, err := strconv.ParseInt(ptr, 16, 64)
	if err != nil {
		return vm.newInt(0), nil
	}
	return vm.newInt(n), nil
}

func (vm *VM) builtinIter(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 1 {
		return nil, vm.raisef("TypeError", "iter() takes exactly one argument")
	}
	a := args[0]
	switch a.Kind {
	case object.KindList:
		return vm.newSeqIterator(append([]*object.Object(nil), a.Items...)), nil
	case object.KindTuple:
		return vm.newSeqIterator(a.Items), nil
	case object.KindString:
		return vm.newStringIterator(a.Str), nil
	case object.KindDict:
		return vm.newDictIterator(a), nil
	case object.KindSet:
		return vm.newSetIterator(a), nil
	case object.KindInstance:
		if m, ok := lookupMethod(a, "__iter__"); ok {
			return vm.callValue(m, nil, nil)
		}
	}
	return nil, vm.raisef("TypeError", "%q object is not iterable", a.TypeTag())
}

func (vm *VM) builtinNext(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, vm.raisef("TypeError", "next() takes one or two arguments")
	}
	m, ok := lookupMethod(args[0], "__next__")
	if !ok {
		return nil, vm.raisef("TypeError", "%q object is not an iterator", args[0].TypeTag())
	}
	res, err := vm.callValue(m, nil, nil)
	if err != nil {
		if texc, ok := err.(*thrownException); ok && len(args) == 2 && isInstanceOf(texc.exc, vm.exceptionClasses["StopIteration"]) {
			return args[1], nil
		}
		return nil, err
	}
	return res, nil
}

func (vm *VM) builtinGetattr(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, vm.raisef("TypeError", "getattr() takes two or three arguments")
	}
	if args[1].Kind != object.KindString {
		return nil, vm.raisef("TypeError", "attribute name must be a string")
	}
	v, err := vm.getAttr(args[0], args[1].Str)
	if err != nil {
		if len(args) == 3 {
			if _, ok := err.(*thrownException); ok {
				return args[2], nil
			}
		}
		return nil, err
	}
	return v, nil
}

func (vm *VM) builtinSetattr(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 3 {
		return nil, vm.raisef("TypeError", "setattr() takes exactly three arguments")
	}
	if args[1].Kind != object.KindString {
		return nil, vm.raisef("TypeError", "attribute name must be a string")
	}
	if err := vm.setAttr(args[0], args[1].Str, args[2]); err != nil {
		return nil, err
	}
	return vm.none, nil
}

func (vm *VM) builtinHasattr(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) != 2 {
		return nil, vm.raisef("TypeError", "hasattr() takes exactly two arguments")
	}
	if args[1].Kind != object.KindString {
		return nil, vm.raisef("TypeError", "attribute name must be a string")
	}
	_, err := vm.getAttr(args[0], args[1].Str)
	return vm.newBool(err == nil), nil
}

// builtinOpen is only registered when the embedder opted into
// EnableOSAccess: it returns a thin file-handle instance exposing
// read/write/close/__enter__/__exit__ as native bound methods.
func (vm *VM) builtinOpen(args []*object.Object, kwargs *object.Object) (*object.Object, error) {
	if len(args) < 1 || args[0].Kind != object.KindString {
		return nil, vm.raisef("TypeError", "open() requires a string path")
	}
	mode := "r"
	if m, ok := argOrKwarg(vm, args, 1, kwargs, "mode"); ok && m.Kind == object.KindString {
		mode = m.Str
	}
	flag := os.O_RDONLY
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return nil, vm.raisef("ValueError", "invalid mode %q", mode)
	}
	f, err := os.OpenFile(args[0].Str, flag, 0o644)
	if err != nil {
		return nil, vm.raisef("OSError", "%v", err)
	}
	return vm.newFileHandle(f), nil
}
