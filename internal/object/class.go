package object

// Class is the class descriptor: name, module, ordered base list, and
// the instance-attribute table methods live in. The MRO is not
// precomputed; attribute lookup resolves it lazily by walking the
// attribute table's parent chain left-first depth-first, since each
// base class's Attrs table is itself a parent of this one.
type Class struct {
	Name     string
	Module   string
	Bases    []*Object // base class objects, in declaration order
	Attrs    *AttrTable // instance methods/class attributes
	Ctor     NativeFn   // optional native construction hook
	Userdata any
}
