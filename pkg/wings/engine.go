// Package wings is the embedder-facing Go API around the interpreter:
// an Engine owns one VM context (one heap, one global namespace, one
// builtin/module registry), and Value is an opaque handle onto a heap
// object living inside that context.
package wings

import (
	"fmt"

	"github.com/wings-lang/wings/internal/compiler"
	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/parser"
	"github.com/wings-lang/wings/internal/stdlib/mathmod"
	"github.com/wings-lang/wings/internal/stdlib/osmod"
	"github.com/wings-lang/wings/internal/stdlib/randmod"
	"github.com/wings-lang/wings/internal/stdlib/sysmod"
	"github.com/wings-lang/wings/internal/stdlib/timemod"
	"github.com/wings-lang/wings/internal/vm"
)

// Engine is one embeddable interpreter context.
type Engine struct {
	vm        *vm.VM
	cfg       engineConfig
	evalCount int
}

// New builds an Engine, applying every Option before constructing the
// underlying VM so the whole configuration is known up front.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{gcRunFactor: 2.0, maxRecursion: 1000}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{cfg: cfg}
	e.vm = vm.New(vm.Config{
		Output:         cfg.output,
		MaxAlloc:       cfg.maxAlloc,
		MaxRecursion:   cfg.maxRecursion,
		GCRunFactor:    cfg.gcRunFactor,
		ImportPath:     cfg.importPath,
		Argv:           cfg.argv,
		EnableOSAccess: cfg.osAccess,
	})
	e.registerStdlib()
	return e, nil
}

// registerStdlib wires the native standard library in as module loaders:
// math/random carry no host side effects and are always available, while
// os/time/sys are only registered when the embedder opted into
// WithOSAccess, mirroring EnableOSAccess gating the VM's own open()
// builtin.
func (e *Engine) registerStdlib() {
	e.vm.RegisterModuleLoader("math", mathmod.Loader)
	e.vm.RegisterModuleLoader("random", randmod.Loader)
	if !e.cfg.osAccess {
		return
	}
	e.vm.RegisterModuleLoader("os", osmod.Loader)
	e.vm.RegisterModuleLoader("time", timemod.Loader)
	e.vm.RegisterModuleLoader("sys", func(v *vm.VM, name string) (*object.Object, error) {
		return sysmod.Loader(v, name, e.cfg.argv)
	})
}

// Close releases the engine's resources. The collector is pure Go
// memory, so this is a no-op today, but kept so an embedder's
// lifecycle code (defer e.Close()) survives a future resource (e.g. a
// background GC goroutine) being added without a signature change.
func (e *Engine) Close() {}

// compileSource runs the lex/parse/compile pipeline through the
// expression-yielding CompileEval entry (so Eval("1 + 2") returns 3
// instead of a module's implicit None), surfacing the first stage's
// diagnostics (formatted, colorless, for a host log) as a plain error
// reporting the earliest stage that failed.
func (e *Engine) compileSource(src, sourceFile string) (*compiler.Chunk, error) {
	prog, errs := parser.Parse(src)
	if errs.HasErrors() {
		err := fmt.Errorf("%s", errs.Error())
		if e.cfg.errorCB != nil {
			e.cfg.errorCB(err)
		}
		return nil, err
	}
	chunk, errs := compiler.CompileEval(prog, sourceFile)
	if errs.HasErrors() {
		err := fmt.Errorf("%s", errs.Error())
		if e.cfg.errorCB != nil {
			e.cfg.errorCB(err)
		}
		return nil, err
	}
	return chunk, nil
}

// Eval compiles and immediately runs src as a module body, returning
// its implicit final value. Successive Eval calls against the same
// Engine share one `<eval>` module namespace, so later calls see
// globals earlier ones defined (a REPL's incremental-evaluation
// contract).
func (e *Engine) Eval(src string) (Value, error) {
	chunk, err := e.compileSource(src, "<eval>")
	if err != nil {
		return Value{}, err
	}
	result, err := e.vm.Run(chunk, "<eval>")
	if err != nil {
		return Value{}, e.wrapError(err)
	}
	return newValue(e, result), nil
}

// Compile compiles src without running it, returning a reusable
// Function an embedder can Run repeatedly without re-parsing.
func (e *Engine) Compile(src string) (*Function, error) {
	e.evalCount++
	name := fmt.Sprintf("<compiled-%d>", e.evalCount)
	chunk, err := e.compileSource(src, name)
	if err != nil {
		return nil, err
	}
	return &Function{engine: e, chunk: chunk, name: name}, nil
}

// Global looks up name in the top-level `<eval>` module's namespace,
// falling back to the builtin table.
func (e *Engine) Global(name string) (Value, bool) {
	mod := e.evalModule()
	v, ok := e.vm.Global(mod, name)
	if !ok {
		return Value{}, false
	}
	return newValue(e, v), true
}

// SetGlobal writes name into the top-level `<eval>` module's
// namespace, visible to every subsequent Eval call.
func (e *Engine) SetGlobal(name string, v Value) {
	e.vm.SetGlobal(e.evalModule(), name, v.obj)
}

// evalModule returns the shared `<eval>` module namespace Global/
// SetGlobal/Eval all operate against.
func (e *Engine) evalModule() *object.Object {
	return e.vm.Module("<eval>")
}

// RegisterFunction installs fn as a global builtin callable under
// name, reachable from any script this Engine runs.
func (e *Engine) RegisterFunction(name string, fn NativeFunc) {
	e.vm.RegisterFunction(name, e.toNativeFn(fn))
}

// RegisterModuleLoader installs a native loader for `import name`,
// tried before the file-based `<importPath>/name.wings` fallback.
func (e *Engine) RegisterModuleLoader(name string, loader ModuleLoader) {
	e.vm.RegisterModuleLoader(name, e.toModuleLoader(loader))
}
