package compiler

import "fmt"

// Diagnostic is one recoverable issue found during compilation.
// Diagnostics never change the compiled output beyond the documented
// fallback behavior; they exist so callers can report or assert on
// them without capturing process output.
type Diagnostic struct {
	Path    string
	Message string
}

// String renders the diagnostic as "path: message".
func (d Diagnostic) String() string {
	return d.Path + ": " + d.Message
}

// Diagnostics collects warnings emitted during one compilation run.
type Diagnostics struct {
	list []Diagnostic
}

// Warnf records a warning for the given path.
func (d *Diagnostics) Warnf(path, format string, args ...any) {
	d.list = append(d.list, Diagnostic{
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	})
}

// All returns the collected diagnostics in emission order.
func (d *Diagnostics) All() []Diagnostic {
	return d.list
}
