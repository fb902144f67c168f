package lexer

import "github.com/mna/slang/lang/token"

// Tokenize registers src as a new file in fset and scans it to completion,
// returning every token including the trailing EOF. It is the entry point
// the driver and parser use instead of driving a Lexer by hand.
func Tokenize(fset *token.FileSet, filename string, src []byte, errHandler ErrorHandler) (*token.File, []token.Token) {
	file := fset.AddFile(filename, -1, len(src))
	l := New(file, src, errHandler)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return file, toks
}
