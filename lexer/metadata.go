package lexer

import "strings"

// metadataTokenizer scans one [key:value] metadata line. The parser only
// honors these directly after a node's opening marker; lexically they are
// recognized at the start of any line in a node body.
type metadataTokenizer struct{}

func (metadataTokenizer) canHandle(lx *Lexer) bool {
	return lx.state.InNodeBody && !lx.state.InCommand && !lx.state.InString() &&
		lx.atLineStart() && lx.cur.Peek() == '['
}

func (metadataTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	lx.cur.Advance()
	lx.emit(LBracket, "[", line, col)
	skipBlanks(lx.cur)

	if !isIdentStart(lx.cur.Peek()) {
		lx.errorf("expected metadata key")
		consumeMetadataRest(lx)
		return
	}
	keyLine, keyCol := lx.cur.Line(), lx.cur.Col()
	var key strings.Builder
	for isIdentPart(lx.cur.Peek()) {
		key.WriteRune(lx.cur.Advance())
	}
	lx.emit(Ident, key.String(), keyLine, keyCol)
	skipBlanks(lx.cur)

	if lx.cur.Peek() != ':' {
		lx.errorf("expected : after metadata key %q", key.String())
		consumeMetadataRest(lx)
		return
	}
	cLine, cCol := lx.cur.Line(), lx.cur.Col()
	lx.cur.Advance()
	lx.emit(Colon, ":", cLine, cCol)

	vLine, vCol := lx.cur.Line(), lx.cur.Col()
	var val strings.Builder
	for !lx.cur.AtEnd() && lx.cur.Peek() != ']' && !isNewline(lx.cur.Peek()) {
		val.WriteRune(lx.cur.Advance())
	}
	lx.emit(Text, strings.TrimSpace(val.String()), vLine, vCol)

	if lx.cur.Peek() == ']' {
		bLine, bCol := lx.cur.Line(), lx.cur.Col()
		lx.cur.Advance()
		lx.emit(RBracket, "]", bLine, bCol)
	} else {
		lx.errorf("unterminated metadata entry, expected ]")
	}
}

func skipBlanks(cur *Cursor) {
	for isBlank(cur.Peek()) {
		cur.Advance()
	}
}

// consumeMetadataRest drops the remainder of a malformed metadata entry.
func consumeMetadataRest(lx *Lexer) {
	for !lx.cur.AtEnd() && lx.cur.Peek() != ']' && !isNewline(lx.cur.Peek()) {
		lx.cur.Advance()
	}
	if lx.cur.Peek() == ']' {
		lx.cur.Advance()
	}
}
