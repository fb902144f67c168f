package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/mna/slang/lang/compiler"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
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
		chunk := d.Parse(path, src)
		var compiled *compiler.Chunk
		if !d.Diags.HasErrors() {
			d.Analyze(chunk)
		}
		if !d.Diags.HasErrors() {
			compiled = d.Codegen(chunk)
		}
		if compiled != nil {
			fmt.Fprintln(stdio.Stdout, compiler.Disassemble(compiled))
		}

		if err := reportAndFail(stdio, cfg, d.Diags, nil); err != nil {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("compile: failed")
	}
	return nil
}
