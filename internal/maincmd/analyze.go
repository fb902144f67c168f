package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/slang/lang/ast"
)

func (c *Cmd) Analyze(ctx context.Context, stdio mainer.Stdio, args []string) error {
	cfg := loadConfig()

	var failed bool
	for _, path := range args {
		src, err := readSource(path)
		if err != nil {
			printError(stdio, err)
			failed = true
			continue
		}

		d := newDriver(cfg)
		printer := newASTPrinter(stdio.Stdout, func(n ast.Node) string {
			start, _ := n.Span()
			return d.FileSet.Position(start).String()
		})

		chunk := d.Parse(path, src)
		if !d.Diags.HasErrors() {
			// cannot analyze an AST that failed to parse.
			d.Analyze(chunk)
		}
		printer.Print(chunk)

		if err := reportAndFail(stdio, cfg, d.Diags, nil); err != nil {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("analyze: failed")
	}
	return nil
}
