package lexer

// indentTokenizer is evaluated once per line, at column 1, while inside a
// node body. It measures leading whitespace, restores the cursor, and
// compares the width against the indent stack: wider pushes one level and
// emits Indent; narrower pops levels, emitting one Dedent immediately and
// queueing the rest as pending; equal emits nothing.
type indentTokenizer struct{}

func (indentTokenizer) canHandle(lx *Lexer) bool {
	if lx.cur.Col() != 1 || lx.state.indentChecked {
		return false
	}
	if !lx.state.InNodeBody || lx.state.InCommand || lx.state.InString() {
		return false
	}
	// Blank and comment-only lines belong to the fold tokenizer.
	return !lineIsInsignificant(lx.cur)
}

func (indentTokenizer) handle(lx *Lexer) {
	line := lx.cur.Line()
	m := lx.cur.Mark()
	width := 0
	sawSpace, sawTab := false, false
	for isBlank(lx.cur.Peek()) {
		if lx.cur.Advance() == ' ' {
			sawSpace = true
		} else {
			sawTab = true
		}
		width++
	}
	if sawSpace && sawTab {
		lx.warnf("mixed tabs and spaces in indentation")
	}
	lx.cur.Restore(m)
	lx.state.indentChecked = true

	top := lx.indent.top()
	switch {
	case width > top:
		lx.indent.push(width)
		lx.emit(Indent, "", line, 1)
	case width < top:
		pops := 0
		for lx.indent.top() > width {
			lx.indent.pop()
			pops++
		}
		if lx.indent.top() != width {
			lx.errorf("indentation width %d does not match any open level", width)
		}
		lx.emit(Dedent, "", line, 1)
		lx.indent.pending += pops - 1
	}
}
