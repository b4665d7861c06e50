package wings

import (
	"github.com/wings-lang/wings/internal/object"
	"github.com/wings-lang/wings/internal/vm"
)

// ModuleLoader resolves an `import name` the engine's already-loaded
// cache and file-based `<importPath>/name.wings` fallback both missed,
// returning the module's namespace as a Value (expected to be a dict-
// or module-shaped object built via Engine.NewDict/NewModule-style
// helpers and populated with Engine.RegisterFunction-wrapped entries).
type ModuleLoader func(e *Engine, name string) (Value, error)

func (e *Engine) toModuleLoader(loader ModuleLoader) vm.ModuleLoader {
	return func(_ *vm.VM, name string) (*object.Object, error) {
		v, err := loader(e, name)
		if err != nil {
			return nil, e.unwrapError(err)
		}
		return v.obj, nil
	}
}
