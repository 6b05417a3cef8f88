package lexer

import "strings"

// numberTokenizer scans decimal literals with an optional fraction part.
type numberTokenizer struct{}

func (numberTokenizer) canHandle(lx *Lexer) bool {
	if !lx.exprContext() {
		return false
	}
	r := lx.cur.Peek()
	if isDigit(r) {
		return true
	}
	return r == '.' && isDigit(lx.cur.PeekAt(1))
}

func (numberTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	var b strings.Builder
	for isDigit(lx.cur.Peek()) {
		b.WriteRune(lx.cur.Advance())
	}
	if lx.cur.Peek() == '.' && isDigit(lx.cur.PeekAt(1)) {
		b.WriteRune(lx.cur.Advance())
		for isDigit(lx.cur.Peek()) {
			b.WriteRune(lx.cur.Advance())
		}
	}
	lx.emit(Number, b.String(), line, col)
}
