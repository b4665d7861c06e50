package wings

import (
	"fmt"

	"github.com/wings-lang/wings/internal/vm"
)

// ScriptError wraps an uncaught script-level exception so Go code can
// inspect it without reaching into internal/vm: Exception is the
// exception instance itself (its attributes, including
// `args`/`_message`, are reachable via Value).
type ScriptError struct {
	Exception Value
	message   string
}

func (e *ScriptError) Error() string { return e.message }

// wrapError classifies err as either a ScriptError (a raised exception
// the script never caught) or passes a host-level error through
// unchanged, and fires the configured error callback for the latter.
func (e *Engine) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if exc, ok := vm.ExceptionFromError(err); ok {
		return &ScriptError{Exception: newValue(e, exc), message: err.Error()}
	}
	if e.cfg.errorCB != nil {
		e.cfg.errorCB(err)
	}
	return err
}

// Raise raises a new instance of the named builtin exception class
// (ValueError, TypeError, ...) with a formatted message, for use inside
// a RegisterFunction callback that wants to signal failure to the
// script the way a builtin operator does.
func (e *Engine) Raise(className, format string, args ...any) error {
	return e.vm.Raise(className, "%s", fmt.Sprintf(format, args...))
}

// CurrentException returns whatever the VM's current-exception slot
// holds: the instance a bare `raise` would re-raise, or the exception
// an Eval/Compile-then-Run call most recently left uncaught.
func (e *Engine) CurrentException() (Value, bool) {
	exc := e.vm.CurrentException()
	if exc == nil {
		return Value{}, false
	}
	return newValue(e, exc), true
}

// FormatTraceback renders a ScriptError as a traceback-shaped report:
// the exception's type name followed by its message, matching the
// one-frame shape the VM retains once unwinding has discarded the
// frames that raised it (unwinding pops each frame while searching for
// a handler, so deeper call-site context does not survive an uncaught
// raise).
func (e *Engine) FormatTraceback(err error) string {
	se, ok := err.(*ScriptError)
	if !ok {
		return err.Error()
	}
	return fmt.Sprintf("Traceback (most recent call last):\n%s", se.message)
}
