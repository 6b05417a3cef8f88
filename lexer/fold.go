package lexer

// foldTokenizer owns newlines and comments. One call consumes the rest of
// the current line (including a trailing comment), then swallows any run
// of blank or comment-only lines, collapsing the whole run into a single
// Newline token. The next line with real content is left untouched at
// column 1 so indentation logic fires on it.
type foldTokenizer struct{}

const commentMarker = "//"

func (foldTokenizer) canHandle(lx *Lexer) bool {
	return isNewline(lx.cur.Peek()) || lx.cur.HasPrefix(commentMarker)
}

func (foldTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()

	if lx.state.InString() || lx.state.InInterpolation() {
		if lx.state.InString() {
			lx.errorf("unterminated string")
		} else {
			lx.errorf("unterminated interpolation")
		}
		lx.state.QuoteChar = 0
		lx.state.InterpDepth = 0
	}
	if lx.state.InCommand {
		lx.warnf("unterminated command, expected >>")
		lx.state.InCommand = false
	}

	// Rest of the current line, comment included.
	for !lx.cur.AtEnd() && !isNewline(lx.cur.Peek()) {
		lx.cur.Advance()
	}
	if !lx.cur.AtEnd() {
		lx.cur.Advance()
	}

	// Swallow blank and comment-only lines.
	for !lx.cur.AtEnd() && lineIsInsignificant(lx.cur) {
		for !lx.cur.AtEnd() && !isNewline(lx.cur.Peek()) {
			lx.cur.Advance()
		}
		if !lx.cur.AtEnd() {
			lx.cur.Advance()
		}
	}

	lx.state.ResetLine()
	lx.emit(Newline, "\n", line, col)
}

// lineIsInsignificant reports whether the line under the cursor holds no
// content besides whitespace and an optional comment.
func lineIsInsignificant(cur *Cursor) bool {
	i := 0
	for isBlank(cur.PeekAt(i)) {
		i++
	}
	r := cur.PeekAt(i)
	if r == 0 || isNewline(r) {
		return true
	}
	return r == '/' && cur.PeekAt(i+1) == '/'
}
