// Package object implements the heap object model: the tagged runtime
// value, the copy-on-write attribute table, the ordered dictionary/set
// containers, the function and class descriptors, and the tracing
// collector that owns them all. This is the leaf package of the pipeline
// (spec dependency order: GC/object model -> lexer -> parser -> compiler
// -> executor) so it deliberately knows nothing about internal/compiler or
// internal/vm; compiled function bodies are carried as an opaque `any`
// (see Function.Body) that only internal/vm interprets.
package object

// Kind discriminates the heap object's payload, the tagged-variant
// dispatch the design notes call for instead of a host-language type
// hierarchy.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTuple
	KindList
	KindDict
	KindSet
	KindFunction
	KindClass
	KindInstance
	KindModule
	KindSlice
)

// TypeTag returns the short dunder-style type name
// (__int, __str, __list, ...), or the user class name for instances.
func (o *Object) TypeTag() string {
	switch o.Kind {
	case KindNone:
		return "__null"
	case KindBool:
		return "__bool"
	case KindInt:
		return "__int"
	case KindFloat:
		return "__float"
	case KindString:
		return "__str"
	case KindTuple:
		return "__tuple"
	case KindList:
		return "__list"
	case KindDict:
		return "__map"
	case KindSet:
		return "__set"
	case KindFunction:
		return "__func"
	case KindClass:
		return "__class"
	case KindInstance:
		if o.ClassRef != nil {
			return o.ClassRef.Class.Name
		}
		return "__instance"
	case KindModule:
		return "__module"
	case KindSlice:
		return "__slice"
	default:
		return "__unknown"
	}
}

// Finalizer is a userdata-carrying callback run exactly once, before an
// object is reclaimed.
type Finalizer struct {
	Fn       func(o *Object, userdata any)
	Userdata any
}

// Object is every runtime value: a tagged heap object with a type-specific
// payload slot, an attribute table, finalizers, and the bookkeeping the
// collector needs.
type Object struct {
	Kind Kind

	Bool  bool
	Int   int64
	Float float64
	Str   string

	Items []*Object // Tuple, List
	Dict  *Dict      // Dict
	Set   *Set       // Set
	Func  *Function  // Function
	Class *Class     // Class (KindClass payload)

	ClassRef *Object // KindInstance: the class object this instance was built from

	// SliceLower/Upper/Step hold a KindSlice object's bounds; nil means
	// the corresponding part was omitted (`a[:n]`, `a[n:]`, `a[::2]`).
	SliceLower *Object
	SliceUpper *Object
	SliceStep  *Object

	Attrs *AttrTable // instance/class/module attribute table

	Finalizers []Finalizer

	// Userdata is the embedder/native-code payload slot: native wrapper
	// objects (file handles) stash Go-side state here that the collector does
	// not walk, so it must never be the only reference keeping another
	// *Object alive (root that object through Attrs instead).
	Userdata any

	heap     *Heap
	marked   bool
	finalRan bool
	extRefs  int32
}

// GetUserdata/SetUserdata implement the embedder-facing userdata slot.
func (o *Object) GetUserdata() any       { return o.Userdata }
func (o *Object) SetUserdata(v any)      { o.Userdata = v }

// Heap returns the owning context's heap, the object's "owning-context
// back-reference".
func (o *Object) Heap() *Heap { return o.heap }

// IncRef/DecRef implement the external reference-pinning affordance native
// callers use to keep an object alive across collections.
func (o *Object) IncRef() { o.extRefs++ }
func (o *Object) DecRef() {
	if o.extRefs > 0 {
		o.extRefs--
	}
}

func (o *Object) AddFinalizer(fn func(o *Object, userdata any), userdata any) {
	o.Finalizers = append(o.Finalizers, Finalizer{Fn: fn, Userdata: userdata})
}

// IsTruthy implements the language's truthiness rule used by `if`/`while`/
// `and`/`or`/`not` and the `OpToBool`-equivalent conversion: None and False
// are falsey; 0 and 0.0 are falsey; empty string/list/tuple/dict/set are
// falsey; everything else (including all class instances, which may
// override via `__bool__` at the VM dispatch layer) is truthy.
func (o *Object) IsTruthy() bool {
	switch o.Kind {
	case KindNone:
		return false
	case KindBool:
		return o.Bool
	case KindInt:
		return o.Int != 0
	case KindFloat:
		return o.Float != 0
	case KindString:
		return o.Str != ""
	case KindTuple, KindList:
		return len(o.Items) > 0
	case KindDict:
		return o.Dict.Len() > 0
	case KindSet:
		return o.Set.Len() > 0
	default:
		return true
	}
}
