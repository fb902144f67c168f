package diag

import (
	"fmt"
	"io"
	"strings"
)

// Reporter renders diagnostics to a writer in the style:
//
//	error[E1001]: expected semicolon after statement
//	 --> example.sl:3:12
//	  |
//	3 | let x = 1
//	  |           ^
//	  help: add a ';' here
//
// followed by a trailing summary of error/warning counts. It never emits
// ANSI color codes itself — that decision belongs to the CLI adapter that
// knows whether its output is a terminal (see internal/maincmd).
type Reporter struct {
	w    io.Writer
	Source func(filename string) (line string, ok bool)
}

// NewReporter creates a Reporter writing to w. source, if non-nil, is used to
// fetch the text of the source line referenced by a diagnostic's location
// for the gutter-prefixed excerpt; if nil or the line cannot be found, the
// excerpt is omitted.
func NewReporter(w io.Writer, source func(filename string) (string, bool)) *Reporter {
	return &Reporter{w: w, Source: source}
}

// Report renders a single diagnostic.
func (r *Reporter) Report(d Diagnostic) {
	fmt.Fprintf(r.w, "%s[%s]: %s\n", d.Severity, d.Code, d.Message)
	if d.Location.IsValid() {
		fname := d.Location.Filename
		if fname == "" {
			fname = "<input>"
		}
		fmt.Fprintf(r.w, " --> %s:%d:%d\n", fname, d.Location.Line, d.Location.Column)

		if r.Source != nil {
			if line, ok := r.Source(d.Location.Filename); ok {
				gutter := fmt.Sprintf("%d", d.Location.Line)
				pad := strings.Repeat(" ", len(gutter))
				fmt.Fprintf(r.w, "%s |\n", pad)
				fmt.Fprintf(r.w, "%s | %s\n", gutter, line)

				length := d.Location.Length
				if length < 1 {
					length = 1
				}
				col := d.Location.Column
				if col < 1 {
					col = 1
				}
				fmt.Fprintf(r.w, "%s | %s%s\n", pad, strings.Repeat(" ", col-1), strings.Repeat("^", length))
			}
		}
	}
	for _, s := range d.Suggestions {
		fmt.Fprintf(r.w, "  help: %s\n", s.Message)
	}
	for _, rel := range d.Related {
		fmt.Fprintf(r.w, "  note: %s\n", rel.Message)
	}
}

// ReportAll renders every diagnostic in order, followed by a summary line.
func (r *Reporter) ReportAll(diags []Diagnostic) {
	var errs, warns int
	for _, d := range diags {
		r.Report(d)
		switch d.Severity {
		case Error:
			errs++
		case Warning:
			warns++
		}
	}
	fmt.Fprintf(r.w, "%d error(s), %d warning(s)\n", errs, warns)
}
