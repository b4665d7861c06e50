package wings

import "io"

// engineConfig collects every Option's effect before New builds the
// underlying VM; internal/vm never reads flags or env vars itself.
type engineConfig struct {
	output       io.Writer
	maxAlloc     int
	maxRecursion int
	gcRunFactor  float64
	importPath   string
	argv         []string
	osAccess     bool
	errorCB      func(err error)
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

// WithOutput redirects print()'s destination (default io.Discard).
func WithOutput(w io.Writer) Option {
	return func(c *engineConfig) { c.output = w }
}

// WithMaxAlloc caps the heap's total live-object count before the
// collector refuses further allocation (0 means unbounded).
func WithMaxAlloc(n int) Option {
	return func(c *engineConfig) { c.maxAlloc = n }
}

// WithMaxRecursion caps the interpreted call-frame stack depth.
func WithMaxRecursion(n int) Option {
	return func(c *engineConfig) { c.maxRecursion = n }
}

// WithGCRunFactor sets the live/allocated-since-last-collection ratio
// that triggers the next mark-and-sweep pass.
func WithGCRunFactor(f float64) Option {
	return func(c *engineConfig) { c.gcRunFactor = f }
}

// WithImportPath sets the directory file-based `import` resolves
// `<name>.wings` modules against.
func WithImportPath(dir string) Option {
	return func(c *engineConfig) { c.importPath = dir }
}

// WithArgv seeds the process-argument list a script sees.
func WithArgv(argv []string) Option {
	return func(c *engineConfig) { c.argv = argv }
}

// WithOSAccess gates the filesystem-touching builtins (open(), and the
// os/time/sys native modules) behind an explicit opt-in, since an
// embedder sandboxing untrusted scripts must be able to leave it off.
func WithOSAccess(enabled bool) Option {
	return func(c *engineConfig) { c.osAccess = enabled }
}

// WithErrorCallback installs a host-level diagnostic sink for layer-a
// errors (lex/parse/compile failures): cb receives the formatted
// *diag.List error before Eval/Compile returns it, so an embedder can
// log or surface it without re-deriving source position context.
func WithErrorCallback(cb func(err error)) Option {
	return func(c *engineConfig) { c.errorCB = cb }
}
