package compiler

import (
	"github.com/wings-lang/wings/internal/ast"
	"github.com/wings-lang/wings/internal/object"
)

// compileFunctionProto compiles one def/lambda/class-method body into a
// FuncProto, recursing into a child Compiler via newFunctionCompiler. The
// caller (compileFunctionDef/compileLambda) still owns emitting
// OpMakeClosure against the returned proto's index.
func (c *Compiler) compileFunctionProto(name string, params []ast.Param, locals, captures, globals []string, body []ast.Stmt, isMethod bool) *FuncProto {
	return c.compileFunctionProtoKind(name, params, locals, captures, globals, body, isMethod, false)
}

func (c *Compiler) compileFunctionProtoKind(name string, params []ast.Param, locals, captures, globals []string, body []ast.Stmt, isMethod, isClassBody bool) *FuncProto {
	child := c.newFunctionCompiler(name, params, locals, captures, body, globals)

	child.compileStmts(body)
	// Fall off the end of the body: return None like every other path.
	child.chunk.emit(OpLoadNone, 0, Pos{})
	child.chunk.emit(OpReturn, 1, Pos{})

	paramProtos := make([]ParamProto, len(params))
	numDefaults := 0
	for i, p := range params {
		paramProtos[i] = ParamProto{Name: p.Name, Kind: object.ParamKind(p.Kind)}
		if p.Default != nil {
			numDefaults++
		}
	}

	var varArgsName, kwArgsName string
	for _, p := range params {
		switch p.Kind {
		case ast.ParamStar:
			varArgsName = p.Name
		case ast.ParamStarStar:
			kwArgsName = p.Name
		}
	}

	return &FuncProto{
		Name:         name,
		Params:       paramProtos,
		NumDefaults:  numDefaults,
		VarArgsName:  varArgsName,
		KwArgsName:   kwArgsName,
		LocalNames:   child.ownLocalNames,
		CellNames:    child.ownCellNames,
		CaptureNames: child.ownCaptureNames,
		Chunk:        child.chunk,
		IsMethod:     isMethod,
		IsClassBody:  isClassBody,
		SourceFile:   child.source,
	}
}

// emitMakeClosure compiles each parameter's default expression (in
// declaration order, skipping params with none) onto the stack in the
// *defining* scope, then emits OpMakeClosure. The VM pops NumDefaults
// values off the stack and resolves proto.CaptureNames against the
// current frame's own cells/captures to build the new Function's closure.
func (c *Compiler) emitMakeClosure(protoIdx int32, params []ast.Param, pos Pos) {
	for _, p := range params {
		if p.Default != nil {
			c.compileExpr(p.Default)
		}
	}
	c.chunk.emit(OpMakeClosure, protoIdx, pos)
}

func (c *Compiler) compileFunctionDef(n *ast.FunctionDef, pos Pos) {
	proto := c.compileFunctionProto(n.Name, n.Params, n.Locals, n.Captures, n.Globals, n.Body, n.IsMethod)
	idx := c.addFuncProto(proto)
	c.emitMakeClosure(idx, n.Params, pos)
	c.compileStoreName(n.Name, pos)
}

// compileClassDef compiles the class body as an ordinary statement
// sequence executed in a fresh namespace: OpMakeClass pops the resulting
// namespace dict and a bases tuple, builds the object.Class, and the
// result is bound to the class name exactly like a function value.
func (c *Compiler) compileClassDef(n *ast.ClassDef, pos Pos) {
	locals := classBodyLocals(n.Body)
	proto := c.compileFunctionProtoKind(n.Name, nil, locals, classBodyCaptures(n.Body, locals), nil, n.Body, false, true)
	idx := c.addFuncProto(proto)
	c.chunk.emit(OpMakeClosure, idx, pos)
	c.chunk.emit(OpBuildTuple, 0, pos)
	c.chunk.emit(OpLoadNone, 0, pos)
	c.chunk.emit(OpCall, 0, pos) // no args; IsClassBody makes the VM return a namespace dict, not a value

	for _, b := range n.Bases {
		c.compileExpr(b)
	}
	c.chunk.emit(OpBuildTuple, int32(len(n.Bases)), pos)

	nameIdx := c.internString(n.Name)
	c.chunk.emit(OpMakeClass, nameIdx, pos)
	c.compileStoreName(n.Name, pos)
}

// classBodyLocals collects the names a class body assigns directly (its
// methods and class attributes), which become the namespace dict's keys
// once the body's frame executes and the VM harvests its locals.
func classBodyLocals(body []ast.Stmt) []string {
	var names []string
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, s := range body {
		switch n := s.(type) {
		case *ast.FunctionDef:
			add(n.Name)
		case *ast.ClassDef:
			add(n.Name)
		case *ast.AssignStmt:
			if id, ok := n.Target.(*ast.Identifier); ok {
				add(id.Name)
			}
		}
	}
	return names
}

// classBodyCaptures collects the enclosing-scope names the class body's
// methods close over, so the class-body chunk can route them through from
// the frame that executed the class statement (a method defined in a
// class nested inside a function still sees that function's locals).
func classBodyCaptures(body []ast.Stmt, locals []string) []string {
	isLocal := map[string]bool{}
	for _, l := range locals {
		isLocal[l] = true
	}
	var names []string
	seen := map[string]bool{}
	for _, s := range body {
		fd, ok := s.(*ast.FunctionDef)
		if !ok {
			continue
		}
		for _, cap := range fd.Captures {
			if isLocal[cap] || seen[cap] {
				continue
			}
			seen[cap] = true
			names = append(names, cap)
		}
	}
	return names
}
