package maincmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/mna/mainer"

	"github.com/mna/slang/internal/config"
	"github.com/mna/slang/internal/driver"
	"github.com/mna/slang/lang/diag"
)

func newRunID() string {
	return uuid.NewString()
}

func loadConfig() config.Config {
	dir, err := os.Getwd()
	if err != nil {
		return config.Default()
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// colorWriter wraps w, prefixing lines that open with "error[" or
// "warning[" with an ANSI color escape and resetting it at line's end. It
// is the only place in this repository that emits ANSI codes: lang/diag's
// own Reporter stays colorless and deterministic.
type colorWriter struct {
	w io.Writer
}

func (cw colorWriter) Write(p []byte) (int, error) {
	s := string(p)
	switch {
	case len(s) >= 6 && s[:6] == "error[":
		s = "\x1b[31m" + s
	case len(s) >= 8 && s[:8] == "warning[":
		s = "\x1b[33m" + s
	default:
		return cw.w.Write(p)
	}
	n, err := io.WriteString(cw.w, s+"\x1b[0m")
	if n > len(p) {
		n = len(p)
	}
	return n, err
}

func diagWriter(stdio mainer.Stdio, cfg config.Config) io.Writer {
	if colorize(cfg, stdio) {
		return colorWriter{w: stdio.Stderr}
	}
	return stdio.Stderr
}

// reportAndFail renders every diagnostic collected by d onto stdio.Stderr
// and returns a non-nil error if any of them was an Error, so the caller
// can propagate a failing exit code.
func reportAndFail(stdio mainer.Stdio, cfg config.Config, d *diag.Engine, source func(string) (string, bool)) error {
	diags := d.TakeDiagnostics()
	if len(diags) == 0 {
		return nil
	}
	r := diag.NewReporter(diagWriter(stdio, cfg), source)
	r.ReportAll(diags)
	if hasError(diags) {
		return fmt.Errorf("%s: %d diagnostic(s)", "slang", len(diags))
	}
	return nil
}

func hasError(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

func readSource(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func newDriver(cfg config.Config) *driver.Driver {
	return driver.New(cfg)
}
