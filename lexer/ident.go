package lexer

import "strings"

// identTokenizer scans $variables, identifiers, and keywords. Outside
// expression context it fires only where an identifier is grammatically
// possible: after ---, after #, inside a speaker header, or at the start
// of a line that is either an if/elif/else/endif statement or a
// speaker-annotated dialogue line.
type identTokenizer struct{}

func (identTokenizer) canHandle(lx *Lexer) bool {
	r := lx.cur.Peek()
	if r == '$' && isIdentStart(lx.cur.PeekAt(1)) && lx.exprContext() {
		return true
	}
	if !isIdentStart(r) {
		return false
	}
	st := &lx.state
	if lx.exprContext() || st.AfterHash || st.AfterNode || st.InHeader {
		return true
	}
	if !st.InNodeBody || st.InCommand || !lx.atLineStart() {
		return false
	}
	if isBlockKeyword(peekWord(lx.cur, 0)) {
		return true
	}
	return headerColonAhead(lx.cur)
}

func (identTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	st := &lx.state

	if lx.cur.Peek() == '$' {
		var b strings.Builder
		b.WriteRune(lx.cur.Advance())
		for isIdentPart(lx.cur.Peek()) {
			b.WriteRune(lx.cur.Advance())
		}
		lx.emit(Variable, b.String(), line, col)
		return
	}

	var b strings.Builder
	for isIdentPart(lx.cur.Peek()) {
		b.WriteRune(lx.cur.Advance())
	}
	word := b.String()

	switch {
	case lx.exprContext():
		if kind, ok := lookupKeyword(word); ok {
			lx.emit(kind, word, line, col)
			return
		}
		lx.emit(Ident, word, line, col)
	case st.AfterHash:
		st.AfterHash = false
		lx.emit(Ident, word, line, col)
	case st.AfterNode, st.InHeader:
		lx.emit(Ident, word, line, col)
	default:
		// Line start: block keywords win over speaker names.
		if isBlockKeyword(word) {
			kind, _ := lookupKeyword(word)
			if kind == KwIf || kind == KwElif {
				st.InExprLine = true
			}
			lx.emit(kind, word, line, col)
			return
		}
		st.InHeader = true
		lx.emit(Ident, word, line, col)
	}
}

func isBlockKeyword(word string) bool {
	switch kind, ok := lookupKeyword(word); {
	case !ok:
		return false
	default:
		return kind == KwIf || kind == KwElif || kind == KwElse || kind == KwEndif
	}
}

func peekWord(cur *Cursor, from int) string {
	var b strings.Builder
	for i := from; isIdentPart(cur.PeekAt(i)); i++ {
		b.WriteRune(cur.PeekAt(i))
	}
	return b.String()
}

// headerColonAhead reports whether the line under the cursor opens with a
// speaker header: an identifier, an optional (emotion) annotation, and a
// colon, with nothing else in between.
func headerColonAhead(cur *Cursor) bool {
	i := 0
	for isIdentPart(cur.PeekAt(i)) {
		i++
	}
	if i == 0 {
		return false
	}
	for isBlank(cur.PeekAt(i)) {
		i++
	}
	if cur.PeekAt(i) == '(' {
		i++
		for isBlank(cur.PeekAt(i)) {
			i++
		}
		if !isIdentStart(cur.PeekAt(i)) {
			return false
		}
		for isIdentPart(cur.PeekAt(i)) {
			i++
		}
		for isBlank(cur.PeekAt(i)) {
			i++
		}
		if cur.PeekAt(i) != ')' {
			return false
		}
		i++
		for isBlank(cur.PeekAt(i)) {
			i++
		}
	}
	return cur.PeekAt(i) == ':'
}
