package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
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
		file, toks := d.Tokenize(path, src)
		for _, tok := range toks {
			pos := file.Position(tok.Pos)
			fmt.Fprintf(stdio.Stdout, "%s: %s\n", pos, tok)
		}
		if err := reportAndFail(stdio, cfg, d.Diags, nil); err != nil {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("tokenize: failed")
	}
	return nil
}
