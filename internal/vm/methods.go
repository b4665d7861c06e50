package vm

import (
	"sort"
	"strings"

	"github.com/wings-lang/wings/internal/object"
)

func kwarg(vm *VM, kwargs *object.Object, name string) (*object.Object, bool) {
	if kwargs == nil || kwargs.Kind != object.KindDict {
		return nil, false
	}
	v, ok, _ := kwargs.Dict.Get(vm.hashEq(), vm.newString(name))
	return v, ok
}

func argOrKwarg(vm *VM, args []*object.Object, pos int, kwargs *object.Object, name string) (*object.Object, bool) {
	if pos < len(args) {
		return args[pos], true
	}
	return kwarg(vm, kwargs, name)
}

var (
	listMethods   map[string]nativeMethod
	tupleMethods  map[string]nativeMethod
	dictMethods   map[string]nativeMethod
	setMethods    map[string]nativeMethod
	stringMethods map[string]nativeMethod
)

// init assigns the method tables in a function body rather than as
// var initializer expressions: the closures below call back into VM
// methods (getIndex, callValue, ...) that themselves dispatch through
// builtinMethod into these same tables, which the compiler's variable
// initializer dependency analysis would otherwise flag as a cycle.
func init() {
	listMethods = map[string]nativeMethod{
		"append": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "append() takes exactly one argument")
			}
			self.Items = append(self.Items, args[0])
			return vm.none, nil
		},
		"extend": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "extend() takes exactly one argument")
			}
			items, err := vm.iterableToSlice(args[0])
			if err != nil {
				return nil, err
			}
			self.Items = append(self.Items, items...)
			return vm.none, nil
		},
		"pop": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(self.Items) == 0 {
				return nil, vm.raisef("IndexError", "pop from empty list")
			}
			i := len(self.Items) - 1
			if len(args) == 1 {
				if args[0].Kind != object.KindInt {
					return nil, vm.raisef("TypeError", "pop() index must be an integer")
				}
				i = normalizeScalarIndex(int(args[0].Int), len(self.Items))
			}
			if i < 0 || i >= len(self.Items) {
				return nil, vm.raisef("IndexError", "pop index out of range")
			}
			v := self.Items[i]
			self.Items = append(self.Items[:i], self.Items[i+1:]...)
			return v, nil
		},
		"insert": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 2 || args[0].Kind != object.KindInt {
				return nil, vm.raisef("TypeError", "insert() takes an index and a value")
			}
			i := normalizeScalarIndex(int(args[0].Int), len(self.Items))
			if i < 0 {
				i = 0
			}
			if i > len(self.Items) {
				i = len(self.Items)
			}
			self.Items = append(self.Items, nil)
			copy(self.Items[i+1:], self.Items[i:])
			self.Items[i] = args[1]
			return vm.none, nil
		},
		"remove": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "remove() takes exactly one argument")
			}
			he := vm.hashEq()
			for i, e := range self.Items {
				eq, err := he.Equal(e, args[0])
				if err != nil {
					return nil, err
				}
				if eq {
					self.Items = append(self.Items[:i], self.Items[i+1:]...)
					return vm.none, nil
				}
			}
			return nil, vm.raisef("ValueError", "value not in list")
		},
		"index": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "index() takes exactly one argument")
			}
			he := vm.hashEq()
			for i, e := range self.Items {
				eq, err := he.Equal(e, args[0])
				if err != nil {
					return nil, err
				}
				if eq {
					return vm.newInt(int64(i)), nil
				}
			}
			return nil, vm.raisef("ValueError", "value not in list")
		},
		"count": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "count() takes exactly one argument")
			}
			he := vm.hashEq()
			n := int64(0)
			for _, e := range self.Items {
				eq, err := he.Equal(e, args[0])
				if err != nil {
					return nil, err
				}
				if eq {
					n++
				}
			}
			return vm.newInt(n), nil
		},
		"clear": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			self.Items = nil
			return vm.none, nil
		},
		"reverse": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			for i, j := 0, len(self.Items)-1; i < j; i, j = i+1, j-1 {
				self.Items[i], self.Items[j] = self.Items[j], self.Items[i]
			}
			return vm.none, nil
		},
		"sort": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			keyFn, hasKey := kwarg(vm, kwargs, "key")
			reverseArg, hasReverse := kwarg(vm, kwargs, "reverse")
			reverse := hasReverse && reverseArg.IsTruthy()

			keys := make([]*object.Object, len(self.Items))
			for i, item := range self.Items {
				if hasKey && keyFn.Kind != object.KindNone {
					k, err := vm.callValue(keyFn, []*object.Object{item}, nil)
					if err != nil {
						return nil, err
					}
					keys[i] = k
				} else {
					keys[i] = item
				}
			}
			var sortErr error
			idx := make([]int, len(self.Items))
			for i := range idx {
				idx[i] = i
			}
			sort.SliceStable(idx, func(a, b int) bool {
				if sortErr != nil {
					return false
				}
				c, err := vm.compareOrdered(keys[idx[a]], keys[idx[b]])
				if err != nil {
					sortErr = err
					return false
				}
				if reverse {
					return c > 0
				}
				return c < 0
			})
			if sortErr != nil {
				return nil, sortErr
			}
			sorted := make([]*object.Object, len(self.Items))
			for i, j := range idx {
				sorted[i] = self.Items[j]
			}
			self.Items = sorted
			return vm.none, nil
		},
		"__len__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(len(self.Items))), nil
		},
		"__iter__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newSeqIterator(append([]*object.Object(nil), self.Items...)), nil
		},
		"__contains__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			found, err := vm.contains(self, args[0])
			if err != nil {
				return nil, err
			}
			return vm.newBool(found), nil
		},
		"__getitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.getIndex(self, args[0])
		},
		"__setitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.none, vm.setIndex(self, args[0], args[1])
		},
	}

	tupleMethods = map[string]nativeMethod{
		"index": listMethods["index"],
		"count": listMethods["count"],
		"__len__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(len(self.Items))), nil
		},
		"__iter__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newSeqIterator(append([]*object.Object(nil), self.Items...)), nil
		},
		"__contains__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			found, err := vm.contains(self, args[0])
			if err != nil {
				return nil, err
			}
			return vm.newBool(found), nil
		},
		"__getitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.getIndex(self, args[0])
		},
	}

	dictMethods = map[string]nativeMethod{
		"get": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) < 1 {
				return nil, vm.raisef("TypeError", "get() takes at least one argument")
			}
			v, ok, err := self.Dict.Get(vm.hashEq(), args[0])
			if err != nil {
				return nil, err
			}
			if ok {
				return v, nil
			}
			if len(args) > 1 {
				return args[1], nil
			}
			return vm.none, nil
		},
		"pop": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) < 1 {
				return nil, vm.raisef("TypeError", "pop() takes at least one argument")
			}
			v, ok, err := self.Dict.Get(vm.hashEq(), args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				if len(args) > 1 {
					return args[1], nil
				}
				return nil, vm.raisef("KeyError", "%s", vm.repr(args[0]))
			}
			_, _ = self.Dict.Delete(vm.hashEq(), args[0])
			return v, nil
		},
		"keys": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newList(self.Dict.Keys()), nil
		},
		"values": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newList(self.Dict.Values()), nil
		},
		"items": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			keys, vals := self.Dict.Keys(), self.Dict.Values()
			out := make([]*object.Object, len(keys))
			for i := range keys {
				out[i] = vm.newTuple([]*object.Object{keys[i], vals[i]})
			}
			return vm.newList(out), nil
		},
		"update": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 || args[0].Kind != object.KindDict {
				return nil, vm.raisef("TypeError", "update() takes exactly one dict argument")
			}
			he := vm.hashEq()
			it := args[0].Dict.Iter()
			for {
				k, v, ok := it.Next()
				if !ok {
					break
				}
				if err := self.Dict.Set(he, k, v); err != nil {
					return nil, err
				}
			}
			return vm.none, nil
		},
		"clear": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			self.Dict = object.NewDict()
			return vm.none, nil
		},
		"__len__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(self.Dict.Len())), nil
		},
		"__iter__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newDictIterator(self), nil
		},
		"__contains__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			_, ok, err := self.Dict.Get(vm.hashEq(), args[0])
			if err != nil {
				return nil, err
			}
			return vm.newBool(ok), nil
		},
		"__getitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.getIndex(self, args[0])
		},
		"__setitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.none, vm.setIndex(self, args[0], args[1])
		},
	}

	setMethods = map[string]nativeMethod{
		"add": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "add() takes exactly one argument")
			}
			return vm.none, self.Set.Add(vm.hashEq(), args[0])
		},
		"remove": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			ok, err := self.Set.Remove(vm.hashEq(), args[0])
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, vm.raisef("KeyError", "%s", vm.repr(args[0]))
			}
			return vm.none, nil
		},
		"discard": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			_, err := self.Set.Remove(vm.hashEq(), args[0])
			return vm.none, err
		},
		"union": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			out := vm.newSet()
			he := vm.hashEq()
			for _, item := range self.Set.Items() {
				if err := out.Set.Add(he, item); err != nil {
					return nil, err
				}
			}
			for _, a := range args {
				items, err := vm.iterableToSlice(a)
				if err != nil {
					return nil, err
				}
				for _, item := range items {
					if err := out.Set.Add(he, item); err != nil {
						return nil, err
					}
				}
			}
			return out, nil
		},
		"__len__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(self.Set.Len())), nil
		},
		"__iter__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newSetIterator(self), nil
		},
		"__contains__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			ok, err := self.Set.Contains(vm.hashEq(), args[0])
			if err != nil {
				return nil, err
			}
			return vm.newBool(ok), nil
		},
	}

	stringMethods = map[string]nativeMethod{
		"upper": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newString(strings.ToUpper(self.Str)), nil
		},
		"lower": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newString(strings.ToLower(self.Str)), nil
		},
		"strip": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) == 1 && args[0].Kind == object.KindString {
				return vm.newString(strings.Trim(self.Str, args[0].Str)), nil
			}
			return vm.newString(strings.TrimSpace(self.Str)), nil
		},
		"lstrip": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) == 1 && args[0].Kind == object.KindString {
				return vm.newString(strings.TrimLeft(self.Str, args[0].Str)), nil
			}
			return vm.newString(strings.TrimLeft(self.Str, " \t\n\r")), nil
		},
		"rstrip": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) == 1 && args[0].Kind == object.KindString {
				return vm.newString(strings.TrimRight(self.Str, args[0].Str)), nil
			}
			return vm.newString(strings.TrimRight(self.Str, " \t\n\r")), nil
		},
		"split": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			var parts []string
			if len(args) == 0 || args[0].Kind == object.KindNone {
				parts = strings.Fields(self.Str)
			} else {
				parts = strings.Split(self.Str, args[0].Str)
			}
			out := make([]*object.Object, len(parts))
			for i, p := range parts {
				out[i] = vm.newString(p)
			}
			return vm.newList(out), nil
		},
		"join": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 1 {
				return nil, vm.raisef("TypeError", "join() takes exactly one argument")
			}
			items, err := vm.iterableToSlice(args[0])
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(items))
			for i, it := range items {
				if it.Kind != object.KindString {
					return nil, vm.raisef("TypeError", "join() argument must be a sequence of strings")
				}
				parts[i] = it.Str
			}
			return vm.newString(strings.Join(parts, self.Str)), nil
		},
		"replace": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			if len(args) != 2 {
				return nil, vm.raisef("TypeError", "replace() takes exactly two arguments")
			}
			return vm.newString(strings.ReplaceAll(self.Str, args[0].Str, args[1].Str)), nil
		},
		"startswith": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newBool(strings.HasPrefix(self.Str, args[0].Str)), nil
		},
		"endswith": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newBool(strings.HasSuffix(self.Str, args[0].Str)), nil
		},
		"find": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(strings.Index(self.Str, args[0].Str))), nil
		},
		"format": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			out := self.Str
			for i, a := range args {
				out = strings.Replace(out, "{}", vm.str(a), 1)
				out = strings.ReplaceAll(out, "{"+itoa(i)+"}", vm.str(a))
			}
			return vm.newString(out), nil
		},
		"__len__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newInt(int64(len([]rune(self.Str)))), nil
		},
		"__iter__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newStringIterator(self.Str), nil
		},
		"__contains__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.newBool(strings.Contains(self.Str, args[0].Str)), nil
		},
		"__getitem__": func(vm *VM, self *object.Object, args []*object.Object, kwargs *object.Object) (*object.Object, error) {
			return vm.getIndex(self, args[0])
		},
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// iterableToSlice drives a value's iteration protocol (native list/tuple/
// str/dict/set fast paths, __iter__/__next__ dispatch otherwise) to a
// materialized slice, the form extend()/update()/join()/list() all need.
func (vm *VM) iterableToSlice(v *object.Object) ([]*object.Object, error) {
	switch v.Kind {
	case object.KindList, object.KindTuple:
		return append([]*object.Object(nil), v.Items...), nil
	case object.KindString:
		runes := []rune(v.Str)
		out := make([]*object.Object, len(runes))
		for i, r := range runes {
			out[i] = vm.newString(string(r))
		}
		return out, nil
	case object.KindDict:
		return v.Dict.Keys(), nil
	case object.KindSet:
		return v.Set.Items(), nil
	}

	iterFn, err := vm.getAttr(v, "__iter__")
	if err != nil {
		return nil, vm.raisef("TypeError", "%s object is not iterable", v.TypeTag())
	}
	iterator, err := vm.callValue(iterFn, nil, nil)
	if err != nil {
		return nil, err
	}
	nextFn, err := vm.getAttr(iterator, "__next__")
	if err != nil {
		return nil, err
	}
	var out []*object.Object
	for {
		item, err := vm.callValue(nextFn, nil, nil)
		if err != nil {
			if texc, ok := err.(*thrownException); ok && isInstanceOf(texc.exc, vm.exceptionClasses["StopIteration"]) {
				break
			}
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
