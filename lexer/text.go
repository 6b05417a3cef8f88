package lexer

import "strings"

// textTokenizer is the fallback for node-body prose. It consumes until a
// structural character (# tag, { interpolation, command start, comment,
// newline, or an unconsumed speaker colon) without consuming it, and
// applies the prose escape set, including \--- and \=== for literal
// marker text.
type textTokenizer struct{}

func (textTokenizer) canHandle(lx *Lexer) bool {
	st := &lx.state
	if !st.InNodeBody || st.InCommand || st.InString() || st.InInterpolation() {
		return false
	}
	if st.InExprLine || st.InHeader || st.AfterNode {
		return false
	}
	r := lx.cur.Peek()
	if r == 0 || isNewline(r) {
		return false
	}
	if isBlank(r) {
		// Keep inter-segment spacing after an interpolation; leading
		// whitespace elsewhere belongs to the driver.
		return lx.last == RBrace
	}
	return true
}

func (textTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	var b strings.Builder
	trimRight := false

scan:
	for {
		r := lx.cur.Peek()
		switch {
		case r == 0 || isNewline(r):
			trimRight = true
			break scan
		case lx.cur.HasPrefix(commentMarker):
			trimRight = true
			break scan
		case r == '\\':
			lx.cur.Advance()
			if lx.cur.HasPrefix("---") || lx.cur.HasPrefix("===") {
				for i := 0; i < 3; i++ {
					b.WriteRune(lx.cur.Advance())
				}
				continue
			}
			esc := lx.cur.Advance()
			switch esc {
			case ':', '#', '{', '}', '<', '>', '\'', '"', '\\':
				b.WriteRune(esc)
			case 0:
				b.WriteRune('\\')
			default:
				b.WriteRune('\\')
				b.WriteRune(esc)
			}
		case r == '#':
			trimRight = true
			break scan
		case r == '{':
			break scan
		case lx.cur.HasPrefix("<<"):
			trimRight = true
			break scan
		case r == ':' && !lx.state.ColonSeen && lastIsNonBlank(&b):
			break scan
		default:
			b.WriteRune(lx.cur.Advance())
		}
	}

	text := b.String()
	if trimRight {
		text = strings.TrimRight(text, " \t")
	}
	if text == "" {
		return
	}
	lx.emit(Text, text, line, col)
}

func lastIsNonBlank(b *strings.Builder) bool {
	s := b.String()
	if s == "" {
		return false
	}
	last := rune(s[len(s)-1])
	return !isBlank(last)
}
