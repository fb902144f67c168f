// Package symbols implements the symbol table shared by the analyzer and
// code generator: a stack of lexical scopes mapping names to the symbols
// declared in them.
package symbols

import (
	"fmt"

	"github.com/mna/slang/lang/types"
)

// Kind distinguishes the three forms a symbol can take.
type Kind int

const (
	KindType Kind = iota
	KindVariable
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Symbol is a single named entity visible in some scope: a type, a variable
// or a function. Mutable is only meaningful for KindVariable.
type Symbol struct {
	Name    string
	Kind    Kind
	Type    types.ID
	Mutable bool
}

type scope struct {
	names map[string]*Symbol
}

// Table is a stack of lexical scopes. The bottom of the stack is the global
// scope, which is never popped. Lookup walks from the innermost scope
// outward, so an inner declaration shadows an outer one of the same name.
type Table struct {
	scopes []*scope
}

// NewTable creates a Table with a single, empty global scope.
func NewTable() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, newScope())
	return t
}

func newScope() *scope { return &scope{names: make(map[string]*Symbol)} }

// BeginScope pushes a new, empty scope.
func (t *Table) BeginScope() { t.scopes = append(t.scopes, newScope()) }

// EndScope pops the innermost scope. It panics if called on the global
// scope, mirroring the invariant that the global scope always exists.
func (t *Table) EndScope() {
	if len(t.scopes) <= 1 {
		panic("symbols: cannot end the global scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of scopes currently on the stack, including the
// global scope (so the global scope has depth 1).
func (t *Table) Depth() int { return len(t.scopes) }

// Define adds sym to the innermost scope. It reports an error if a symbol
// with the same name already exists in that scope; shadowing an outer scope
// is always allowed.
func (t *Table) Define(sym Symbol) error {
	cur := t.scopes[len(t.scopes)-1]
	if existing, ok := cur.names[sym.Name]; ok {
		return fmt.Errorf("%s %q is already defined in the current scope", existing.Kind, sym.Name)
	}
	s := sym
	cur.names[sym.Name] = &s
	return nil
}

// Lookup searches for name starting from the innermost scope outward.
func (t *Table) Lookup(name string) (Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if s, ok := t.scopes[i].names[name]; ok {
			return *s, true
		}
	}
	return Symbol{}, false
}

// LookupLocal searches only the innermost scope, without falling back to
// enclosing scopes. It is used where shadowing itself must be detected.
func (t *Table) LookupLocal(name string) (Symbol, bool) {
	cur := t.scopes[len(t.scopes)-1]
	s, ok := cur.names[name]
	if !ok {
		return Symbol{}, false
	}
	return *s, true
}

// InGlobalScope reports whether the table currently has only the global
// scope on the stack.
func (t *Table) InGlobalScope() bool { return len(t.scopes) == 1 }
