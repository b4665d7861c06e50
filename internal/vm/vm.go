// Package vm is the tree-of-frames bytecode executor: it runs the
// Chunks internal/compiler produces against the object model in
// internal/object, implementing the call convention, attribute protocol,
// operator dunder dispatch, iteration protocol, exception handling, and
// import semantics the rest of the pipeline assumes.
package vm

import (
	"fmt"
	"io"

	"github.com/wings-lang/wings/internal/object"
)

// Config bundles the context-lifecycle knobs. pkg/wings's
// Option functions translate into this struct; internal/vm never reads
// flags or environment itself.
type Config struct {
	Output       io.Writer
	MaxAlloc     int
	MaxRecursion int
	GCRunFactor  float64
	ImportPath   string
	Argv         []string
	EnableOSAccess bool
}

const defaultMaxRecursion = 1000

// ModuleLoader resolves a dotted module name the VM couldn't find among
// already-loaded or native modules, returning the freshly built module
// object.
type ModuleLoader func(vm *VM, name string) (*object.Object, error)

// VM is one execution context: a single cooperative scheduler over one
// heap, driven from one OS thread. Objects from one VM must never be
// touched by another.
type VM struct {
	heap   *object.Heap
	stack  []*object.Object
	frames []*Frame

	output       io.Writer
	maxRecursion int
	importPath   string
	argv         *object.Object
	osAccess     bool

	modules       map[string]*object.Object
	moduleLoaders map[string]ModuleLoader
	builtins      *object.AttrTable

	// exceptionClasses indexes the bootstrapped BaseException hierarchy
	// by name, both for isinstance/except-matching and so stdlib modules
	// can raise (ValueError, TypeError, ...) without re-looking the
	// class up through a global load.
	exceptionClasses map[string]*object.Object

	// currentException is the VM-wide "current exception" slot:
	// set on every raise, read by a bare `raise` to re-raise whatever is
	// currently being handled.
	currentException *object.Object

	// recursionError/memoryError are pre-allocated once at VM creation
	// so depth/heap exhaustion never needs to allocate to report itself.
	recursionError *object.Object
	memoryError    *object.Object

	recursionDepth int

	// none/trueObj/falseObj are the shared singletons every OpLoadNone/
	// OpLoadTrue/OpLoadFalse (and every internal None/bool result)
	// reuses, so `is` identity comparisons on them behave the way a
	// real singleton demands.
	none     *object.Object
	trueObj  *object.Object
	falseObj *object.Object

	// objectClass is the implicit root every class-with-no-explicit-bases
	// inherits from, bootstrapped once alongside
	// the builtin function table.
	objectClass *object.Object

	// builtinTypeClasses indexes the builtin scalar/container Class
	// objects (int, str, list, ...) by the Kind they construct, so
	// type()/isinstance() can treat them uniformly with user classes.
	builtinTypeClasses map[object.Kind]*object.Object
}

// New builds a VM with its own heap, bootstraps the BaseException
// hierarchy and global builtins, and wires the heap's root set to this
// VM's live state.
func New(cfg Config) *VM {
	if cfg.GCRunFactor < 1.0 {
		cfg.GCRunFactor = 2.0
	}
	if cfg.MaxRecursion <= 0 {
		cfg.MaxRecursion = defaultMaxRecursion
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	vm := &VM{
		heap:          object.NewHeap(cfg.GCRunFactor, cfg.MaxAlloc),
		output:        cfg.Output,
		maxRecursion:  cfg.MaxRecursion,
		importPath:    cfg.ImportPath,
		osAccess:      cfg.EnableOSAccess,
		modules:       map[string]*object.Object{},
		moduleLoaders: map[string]ModuleLoader{},
		builtins:      object.NewAttrTable(),
	}
	vm.heap.RootsFn = vm.roots

	vm.none = &object.Object{Kind: object.KindNone}
	vm.trueObj = &object.Object{Kind: object.KindBool, Bool: true}
	vm.falseObj = &object.Object{Kind: object.KindBool, Bool: false}

	vm.bootstrapExceptions()
	vm.bootstrapBuiltins()

	vm.recursionError = vm.newExceptionInstance("RecursionError", "maximum recursion depth exceeded")
	vm.memoryError = vm.newExceptionInstance("MemoryError", "heap exhausted")
	vm.recursionError.IncRef()
	vm.memoryError.IncRef()

	argv := make([]*object.Object, len(cfg.Argv))
	for i, a := range cfg.Argv {
		argv[i] = vm.newString(a)
	}
	vm.argv = vm.newList(argv)
	vm.argv.IncRef()

	return vm
}

// RegisterModuleLoader installs a native loader for a module name, tried
// before the file-based `<importPath>/name.wings` fallback.
func (vm *VM) RegisterModuleLoader(name string, loader ModuleLoader) {
	vm.moduleLoaders[name] = loader
}

// Argv returns the process-argument list object pinned for this context.
func (vm *VM) Argv() *object.Object { return vm.argv }

// Heap exposes the owning heap, mainly for embedder-level Engine methods.
func (vm *VM) Heap() *object.Heap { return vm.heap }

// Output returns the configured print destination.
func (vm *VM) Output() io.Writer { return vm.output }

// Global looks a name up in module's global namespace, falling back to
// builtins, the same resolution OpLoadGlobal performs at runtime.
func (vm *VM) Global(module *object.Object, name string) (*object.Object, bool) {
	if module != nil && module.Attrs != nil {
		if v, ok := module.Attrs.Get(name); ok {
			return v, true
		}
	}
	return vm.builtins.Get(name)
}

// SetGlobal writes name into module's own namespace.
func (vm *VM) SetGlobal(module *object.Object, name string, v *object.Object) {
	module.Attrs.Set(name, v)
}

// roots supplies object.Heap's RootsFn: every live frame's locals/cells/
// captures/operand-stack slice, the current exception, argv, the builtin
// and module registries.
func (vm *VM) roots() []*object.Object {
	var out []*object.Object
	out = append(out, vm.stack...)
	out = append(out, vm.currentException, vm.argv, vm.recursionError, vm.memoryError)
	out = append(out, vm.none, vm.trueObj, vm.falseObj)
	for _, f := range vm.frames {
		out = append(out, f.locals...)
		for _, c := range f.cells {
			if c != nil {
				out = append(out, c.Value)
			}
		}
		for _, c := range f.captures {
			if c != nil {
				out = append(out, c.Value)
			}
		}
		out = append(out, f.kwargs)
	}
	for _, m := range vm.modules {
		out = append(out, m)
	}
	for _, cls := range vm.exceptionClasses {
		out = append(out, cls)
	}
	for _, name := range vm.builtins.Names() {
		if v, ok := vm.builtins.Get(name); ok {
			out = append(out, v)
		}
	}
	out = append(out, vm.objectClass)
	for _, cls := range vm.builtinTypeClasses {
		out = append(out, cls)
	}
	return out
}

// runtimeErrorf builds a host-level diagnostic for conditions the
// language spec treats as interpreter bugs rather than script exceptions
// (a malformed chunk, an operand-stack underflow): these never happen on
// well-formed compiler output, so they surface as a Go error rather than
// a script-catchable exception.
func runtimeErrorf(format string, args ...any) error {
	return fmt.Errorf("vm: "+format, args...)
}
