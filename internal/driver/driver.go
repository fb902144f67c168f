// Package driver wires lexer, parser, analyzer, compiler and vm behind a
// single sequence of calls — tokenize, parse, analyze, codegen, interpret —
// all sharing one diag.Engine and one types.Registry.
package driver

import (
	"fmt"
	"io"

	"github.com/mna/slang/internal/config"
	"github.com/mna/slang/lang/analyzer"
	"github.com/mna/slang/lang/ast"
	"github.com/mna/slang/lang/compiler"
	"github.com/mna/slang/lang/diag"
	"github.com/mna/slang/lang/lexer"
	"github.com/mna/slang/lang/parser"
	"github.com/mna/slang/lang/symbols"
	"github.com/mna/slang/lang/token"
	"github.com/mna/slang/lang/types"
	"github.com/mna/slang/lang/vm"
)

// Driver holds the state shared across every stage run against one or more
// files in a single invocation: the file set every position is relative to,
// the type registry every stage reads and writes, and the diagnostic
// engine every stage reports to.
type Driver struct {
	FileSet *token.FileSet
	Types   *types.Registry
	Diags   *diag.Engine
}

// New creates a Driver configured from cfg: its diagnostic engine takes cfg's
// recovery flag and error ceiling. The Driver holds no natives; they are
// passed to each Interpret or Run call.
func New(cfg config.Config) *Driver {
	diags := diag.NewEngine()
	diags.Recovery = cfg.Recover
	if cfg.MaxErrors > 0 {
		diags.MaxErrors = cfg.MaxErrors
	}
	return &Driver{
		FileSet: token.NewFileSet(),
		Types:   types.NewRegistry(),
		Diags:   diags,
	}
}

// Tokenize runs the lexer stage only, reporting lexical diagnostics to
// d.Diags.
func (d *Driver) Tokenize(filename string, src []byte) (*token.File, []token.Token) {
	return lexer.Tokenize(d.FileSet, filename, src, func(pos token.Position, msg string) {
		d.Diags.EmitError(diag.InvalidToken, msg, pos)
	})
}

// Parse runs the lexer and parser stages, reporting every diagnostic to
// d.Diags. The returned Chunk is always non-nil.
func (d *Driver) Parse(filename string, src []byte) *ast.Chunk {
	return parser.Parse(d.FileSet, filename, src, d.Diags, d.Types)
}

// Analyze runs the semantic analyzer over an already-parsed chunk.
func (d *Driver) Analyze(chunk *ast.Chunk) *symbols.Table {
	return analyzer.Analyze(d.FileSet, chunk, d.Diags, d.Types)
}

// Codegen compiles an analyzed chunk to bytecode. Callers must not call
// Codegen on a chunk that went through Analyze with errors: the compiler's
// behavior on an unresolved or mistyped node is undefined.
func (d *Driver) Codegen(chunk *ast.Chunk) *compiler.Chunk {
	return compiler.Compile(d.FileSet, chunk, d.Diags)
}

// Interpret runs a compiled chunk to completion on a fresh Thread, with
// stdout wired to out and every native in natives predeclared alongside the
// built-in print_value.
func (d *Driver) Interpret(c *compiler.Chunk, out io.Writer, natives map[string]*vm.NativeFunction) error {
	th := vm.NewThread()
	th.Stdout = out
	for name, fn := range natives {
		th.Predeclared(name, fn)
	}
	return th.Run(c)
}

// Result is the accumulated output of running the full pipeline over one
// file.
type Result struct {
	File     *token.File
	Chunk    *ast.Chunk
	Symbols  *symbols.Table
	Compiled *compiler.Chunk
}

// Run drives the full tokenize -> parse -> analyze -> codegen -> interpret
// pipeline for one file, stopping before a stage whose precondition was
// violated by an earlier stage's diagnostics (parse errors prevent analyze;
// analyze errors prevent codegen and interpret). The returned
// Result holds whatever stages did run; d.Diags holds every diagnostic
// collected along the way.
func (d *Driver) Run(filename string, src []byte, out io.Writer, natives map[string]*vm.NativeFunction) (*Result, error) {
	res := &Result{}

	res.Chunk = d.Parse(filename, src)
	res.File = d.FileSet.File(res.Chunk.EOF)
	if d.Diags.HasErrors() {
		return res, fmt.Errorf("driver: %d parse error(s)", d.Diags.ErrorCount())
	}

	res.Symbols = d.Analyze(res.Chunk)
	if d.Diags.HasErrors() {
		return res, fmt.Errorf("driver: %d semantic error(s)", d.Diags.ErrorCount())
	}

	res.Compiled = d.Codegen(res.Chunk)
	if d.Diags.HasErrors() {
		return res, fmt.Errorf("driver: %d codegen error(s)", d.Diags.ErrorCount())
	}

	if err := d.Interpret(res.Compiled, out, natives); err != nil {
		return res, fmt.Errorf("driver: %w", err)
	}
	return res, nil
}
