package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wings-lang/wings/internal/object"
)

// str renders obj the way print()/str() do: unquoted strings, dispatching
// to a user class's __str__ (falling back to __repr__) before the builtin
// rendering.
func (vm *VM) str(obj *object.Object) string {
	if obj.Kind == object.KindInstance {
		if m, ok := lookupMethod(obj, "__str__"); ok {
			if res, err := vm.callValue(m, nil, nil); err == nil && res.Kind == object.KindString {
				return res.Str
			}
		}
		// Exception instances stringify to their constructor message, the
		// `print("caught", e)` rendering tracebacks also use.
		if msg, ok := obj.Attrs.Get("_message"); ok && msg.Kind == object.KindString {
			return msg.Str
		}
	}
	if obj.Kind == object.KindString {
		return obj.Str
	}
	return vm.repr(obj)
}

// repr renders obj the way repr() does: quoted strings, Python-style
// literal syntax for containers, dispatching to __repr__ for instances.
func (vm *VM) repr(obj *object.Object) string {
	if obj.Kind == object.KindInstance {
		if m, ok := lookupMethod(obj, "__repr__"); ok {
			if res, err := vm.callValue(m, nil, nil); err == nil && res.Kind == object.KindString {
				return res.Str
			}
		}
		return fmt.Sprintf("<%s object>", obj.TypeTag())
	}

	switch obj.Kind {
	case object.KindNone:
		return "None"
	case object.KindBool:
		if obj.Bool {
			return "True"
		}
		return "False"
	case object.KindInt:
		return strconv.FormatInt(obj.Int, 10)
	case object.KindFloat:
		return strconv.FormatFloat(obj.Float, 'g', -1, 64)
	case object.KindString:
		return quoteStr(obj.Str)
	case object.KindTuple:
		parts := make([]string, len(obj.Items))
		for i, e := range obj.Items {
			parts[i] = vm.repr(e)
		}
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case object.KindList:
		parts := make([]string, len(obj.Items))
		for i, e := range obj.Items {
			parts[i] = vm.repr(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case object.KindDict:
		var parts []string
		it := obj.Dict.Iter()
		for {
			k, v, ok := it.Next()
			if !ok {
				break
			}
			parts = append(parts, vm.repr(k)+": "+vm.repr(v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case object.KindSet:
		var parts []string
		it := obj.Set.Iter()
		for {
			k, ok := it.Next()
			if !ok {
				break
			}
			parts = append(parts, vm.repr(k))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case object.KindFunction:
		return fmt.Sprintf("<function %s>", obj.Func.Name)
	case object.KindClass:
		return fmt.Sprintf("<class %s>", obj.Class.Name)
	case object.KindModule:
		return fmt.Sprintf("<module %s>", obj.Str)
	case object.KindSlice:
		return fmt.Sprintf("slice(%s, %s, %s)", vm.repr(orNone(vm, obj.SliceLower)), vm.repr(orNone(vm, obj.SliceUpper)), vm.repr(orNone(vm, obj.SliceStep)))
	}
	return obj.TypeTag()
}

func orNone(vm *VM, o *object.Object) *object.Object {
	if o == nil {
		return vm.none
	}
	return o
}

// quoteStr renders a string literal the way the language writes one:
// single-quoted, with the escapes the lexer accepts, so repr output can
// be fed back through eval for the faithful-repr types.
func quoteStr(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString("\\'")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
