package lexer

import "strings"

// stringTokenizer scans quoted strings inside commands and expressions.
// The closing quote must match the quote that opened the string. An
// unescaped { suspends string scanning and hands control back to the
// driver until the matching } closes the interpolation, after which this
// tokenizer resumes the same string.
type stringTokenizer struct{}

func (stringTokenizer) canHandle(lx *Lexer) bool {
	if lx.state.InString() {
		// Resume only once the interpolation has fully closed.
		return !lx.state.InInterpolation()
	}
	return isQuote(lx.cur.Peek()) && lx.exprContext()
}

func (stringTokenizer) handle(lx *Lexer) {
	if !lx.state.InString() {
		lx.state.QuoteChar = lx.cur.Advance()
	}
	line, col := lx.cur.Line(), lx.cur.Col()
	var b strings.Builder
	for {
		r := lx.cur.Peek()
		switch {
		case r == 0 || isNewline(r):
			lx.errorf("unterminated string")
			lx.state.QuoteChar = 0
			lx.emit(String, b.String(), line, col)
			return
		case r == '\\':
			lx.cur.Advance()
			esc := lx.cur.Advance()
			switch esc {
			case '{', '}', '\'', '"', '\\':
				b.WriteRune(esc)
			case 0:
				lx.errorf("unterminated string")
				lx.state.QuoteChar = 0
				lx.emit(String, b.String(), line, col)
				return
			default:
				lx.warnf("unknown escape \\%c in string", esc)
				b.WriteRune(esc)
			}
		case r == '{':
			// Interpolation start: emit the chunk scanned so far and
			// let normal tokenizing run until the matching }.
			lx.emit(String, b.String(), line, col)
			bLine, bCol := lx.cur.Line(), lx.cur.Col()
			lx.cur.Advance()
			lx.state.InterpDepth++
			lx.emit(LBrace, "{", bLine, bCol)
			return
		case r == lx.state.QuoteChar:
			lx.cur.Advance()
			lx.state.QuoteChar = 0
			lx.emit(String, b.String(), line, col)
			return
		default:
			b.WriteRune(lx.cur.Advance())
		}
	}
}
