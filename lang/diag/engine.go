package diag

import (
	"sort"

	"golang.org/x/exp/slices"

	"github.com/mna/slang/lang/token"
)

// DefaultMaxErrors is the default error-count ceiling enforced by Engine.
const DefaultMaxErrors = 100

// Engine collects diagnostics emitted by any pipeline stage. It enforces an
// error-count ceiling and deduplicates diagnostics by (code, line, column,
// message). It does not itself short-circuit a caller on error.
type Engine struct {
	// Recovery records whether recovery mode was requested. It is a plain flag
	// for callers; the parser and analyzer do not read it and continue past
	// errors whether or not it is set.
	Recovery bool

	// MaxErrors is the error-count ceiling. A value <= 0 uses DefaultMaxErrors.
	MaxErrors int

	diags      []Diagnostic
	seen       map[string]bool
	errCount   int
	warnCount  int
	ceilingHit bool
}

// NewEngine creates an Engine with default settings.
func NewEngine() *Engine {
	return &Engine{seen: make(map[string]bool)}
}

func (e *Engine) maxErrors() int {
	if e.MaxErrors <= 0 {
		return DefaultMaxErrors
	}
	return e.MaxErrors
}

// Emit records a diagnostic, subject to deduplication and the error
// ceiling. Once the ceiling is hit, a single synthetic TooManyErrors
// diagnostic is appended and all further emissions (of any severity) are
// discarded.
func (e *Engine) Emit(d Diagnostic) {
	if e.ceilingHit {
		return
	}
	if e.seen == nil {
		e.seen = make(map[string]bool)
	}
	key := d.dedupKey()
	if e.seen[key] {
		return
	}

	if d.Severity == Error {
		if e.errCount >= e.maxErrors() {
			e.ceilingHit = true
			e.seen[key] = true
			e.diags = append(e.diags, Diagnostic{
				Severity: Error,
				Code:     TooManyErrors,
				Message:  TooManyErrors.Description(),
			})
			return
		}
		e.errCount++
	} else if d.Severity == Warning {
		e.warnCount++
	}

	e.seen[key] = true
	e.diags = append(e.diags, d)
}

// EmitError records an Error diagnostic at the given location.
func (e *Engine) EmitError(code Code, msg string, loc token.Position) {
	e.Emit(Diagnostic{Severity: Error, Code: code, Message: msg, Location: loc})
}

// EmitWarning records a Warning diagnostic at the given location.
func (e *Engine) EmitWarning(code Code, msg string, loc token.Position) {
	e.Emit(Diagnostic{Severity: Warning, Code: code, Message: msg, Location: loc})
}

// EmitWithSuggestion records an Error diagnostic carrying a single
// suggestion.
func (e *Engine) EmitWithSuggestion(code Code, msg string, loc token.Position, s Suggestion) {
	e.Emit(Diagnostic{Severity: Error, Code: code, Message: msg, Location: loc, Suggestions: []Suggestion{s}})
}

// HasErrors reports whether any Error-severity diagnostic was collected.
func (e *Engine) HasErrors() bool { return e.errCount > 0 }

// ErrorCount and WarningCount return the number of collected diagnostics of
// that severity (the synthetic "too many errors" diagnostic is not counted).
func (e *Engine) ErrorCount() int   { return e.errCount }
func (e *Engine) WarningCount() int { return e.warnCount }

// TakeDiagnostics returns all collected diagnostics, ordered by location,
// and resets the Engine to an empty state (error/warning counters, ceiling
// and dedup cache are all cleared).
func (e *Engine) TakeDiagnostics() []Diagnostic {
	out := slices.Clone(e.diags)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Location, out[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	e.diags = nil
	e.seen = make(map[string]bool)
	e.errCount = 0
	e.warnCount = 0
	e.ceilingHit = false
	return out
}

// Diagnostics returns a read-only snapshot of the currently collected
// diagnostics without resetting the engine.
func (e *Engine) Diagnostics() []Diagnostic { return slices.Clone(e.diags) }
