package compiler

import "github.com/wings-lang/wings/internal/object"

// Chunk is one compiled code unit: a module body or a function body. Consts
// holds pre-built literal objects (never heap-tracked: they are immutable
// and live exactly as long as the Chunk, so collecting them would only add
// bookkeeping cost); FuncProtos holds the compiled templates for every
// function/lambda/class-body literal defined directly inside this chunk,
// referenced by OpMakeClosure/OpMakeClass's operand.
type Chunk struct {
	Name       string
	Consts     []*object.Object
	FuncProtos []*FuncProto
	Code       []Instruction

	SourceFile string
}

// ParamProto mirrors object.Param minus the Default expression (defaults
// are evaluated at def-time and passed to OpMakeClosure on the stack, not
// baked into the proto).
type ParamProto struct {
	Name string
	Kind object.ParamKind
}

// FuncProto is the compiled template for one `def`/`lambda`/class body:
// everything needed to build an object.Function at OpMakeClosure time
// except the actual default values and captured cells, which depend on the
// enclosing frame at the moment the closure is created.
type FuncProto struct {
	Name       string
	Params     []ParamProto
	NumDefaults int
	VarArgsName string
	KwArgsName  string

	// LocalNames/CellNames index plain-slot and own-boxed-cell storage,
	// in the order the compiler assigned slots; used by disassembly and
	// by the VM to size a new frame.
	LocalNames []string
	CellNames  []string
	// CaptureNames lists, in order, the free variables this function
	// reads from its defining frame; OpMakeClosure resolves each name to
	// a *object.Cell (from the defining frame's own cells or its own
	// inherited captures) and hands the set to the new Function.
	CaptureNames []string

	Chunk      *Chunk
	IsMethod   bool
	// IsClassBody marks a proto compiled from a class statement's body.
	// The VM calls it like any other closure but, instead of returning
	// the body's final expression, collects its frame's local slots
	// (named by LocalNames) into a namespace dict and returns that
	// instead, for OpMakeClass to consume.
	IsClassBody bool
	SourceFile  string
}

func (c *Chunk) addConst(o *object.Object) int32 {
	c.Consts = append(c.Consts, o)
	return int32(len(c.Consts) - 1)
}

// internConstString reuses an existing string constant with the same
// value when one exists, keeping the pool small for name lookups (attr,
// global, import names) that repeat heavily within one chunk.
func (c *Chunk) internConstString(s string) int32 {
	for i, o := range c.Consts {
		if o.Kind == object.KindString && o.Str == s {
			return int32(i)
		}
	}
	return c.addConst(&object.Object{Kind: object.KindString, Str: s})
}

func (c *Chunk) emit(op OpCode, a int32, pos Pos) int {
	c.Code = append(c.Code, Instruction{Op: op, A: a, Pos: pos})
	return len(c.Code) - 1
}

func (c *Chunk) here() int { return len(c.Code) }

func (c *Chunk) patchJump(idx int, target int) {
	c.Code[idx].A = int32(target)
}
