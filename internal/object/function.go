package object

// ParamKind classifies an interpreted function's parameter, mirroring
// ast.ParamKind one layer down so object need not import internal/ast.
type ParamKind uint8

const (
	ParamPositional ParamKind = iota
	ParamStar
	ParamStarStar
)

// Param is one parameter slot of an interpreted function.
type Param struct {
	Name    string
	Default *Object // nil if no default
	Kind    ParamKind
}

// Cell is the shared, mutable single-slot reference closures use for
// captured locals: rebinding in the enclosing scope or the nested function
// is observed by the other side, because both hold the same *Cell.
type Cell struct {
	Value *Object
}

// NativeFn is a host-provided callable. It receives already-bound
// positional args and a (possibly nil) kwargs dict object.
type NativeFn func(args []*Object, kwargs *Object) (*Object, error)

// Function is the universal callable descriptor. Exactly one of
// Native/Body is set: Body is an opaque value interpreted only by
// internal/vm (a *compiler.Chunk), kept as `any` here so the leaf
// object package never imports the compiler.
type Function struct {
	Native NativeFn
	Body   any

	Self     *Object // bound self, nil if unbound
	Module   string
	Name     string
	IsMethod bool
	// IsClassBody mirrors compiler.FuncProto.IsClassBody: calling such a
	// function harvests its frame's locals into a namespace dict instead
	// of returning a value (see compiler/chunk.go's FuncProto doc).
	IsClassBody bool
	Userdata    any

	Params      []Param
	VarArgsName string // "" if the function takes no *args
	KwArgsName  string // "" if the function takes no **kwargs

	// Captures holds the shared cells this closure inherited from its
	// defining frame, keyed by name; CaptureNames gives the slot order
	// OpLoadCapture/OpStoreCapture index into, rebuilt as an ordered
	// slice each time a frame for this function is constructed.
	Captures     map[string]*Cell
	CaptureNames []string

	// Locals names this function's own plain-slot locals (including any
	// non-cell-promoted parameters), in FuncProto.LocalNames order.
	Locals []string
	// CellNames names this function's own boxed-cell locals (including
	// any cell-promoted parameters), in FuncProto.CellNames order.
	CellNames []string

	// Globals is the attribute table backing the defining module's
	// namespace: OpLoadGlobal/OpStoreGlobal resolve against this table,
	// not whatever module happens to be calling in.
	Globals *AttrTable

	SourceFile string
}

// Bind returns a shallow copy of f with Self set to self, the transient
// view a method attribute access produces.
func (f *Function) Bind(self *Object) *Function {
	bound := *f
	bound.Self = self
	return &bound
}
