package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
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
		if _, err := d.Run(path, src, stdio.Stdout, nil); err != nil {
			if !d.Diags.HasErrors() {
				// front-end diagnostics print below; a runtime error has no
				// diag.Diagnostic of its own, so report it directly.
				printError(stdio, err)
			}
			failed = true
		}

		if err := reportAndFail(stdio, cfg, d.Diags, nil); err != nil {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("run: failed")
	}
	return nil
}
