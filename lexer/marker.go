package lexer

// nodeMarkerTokenizer recognizes the node delimiters: --- opens a node
// body, === closes one. Each fires only in its valid state and only when
// not escaped.
type nodeMarkerTokenizer struct{}

func (nodeMarkerTokenizer) canHandle(lx *Lexer) bool {
	if lx.state.InCommand || lx.state.InString() || lx.cur.Escaped() {
		return false
	}
	if lx.cur.HasPrefix("---") {
		return !lx.state.InNodeBody
	}
	if lx.cur.HasPrefix("===") {
		return lx.state.InNodeBody
	}
	return false
}

func (nodeMarkerTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	open := lx.cur.Peek() == '-'
	for i := 0; i < 3; i++ {
		lx.cur.Advance()
	}
	if open {
		lx.state.InNodeBody = true
		lx.state.AfterNode = true
		lx.emit(NodeStart, "---", line, col)
		return
	}
	// Close any indentation still open inside the node.
	for lx.indent.pending > 0 {
		lx.indent.pending--
		lx.emit(Dedent, "", line, col)
	}
	for lx.indent.depth() > 0 {
		lx.indent.pop()
		lx.emit(Dedent, "", line, col)
	}
	lx.state.InNodeBody = false
	lx.state.ResetLine()
	lx.state.indentChecked = true
	lx.emit(NodeEnd, "===", line, col)
}

// commandMarkerTokenizer toggles command mode on << and >>. Only
// meaningful inside a node body.
type commandMarkerTokenizer struct{}

func (commandMarkerTokenizer) canHandle(lx *Lexer) bool {
	if !lx.state.InNodeBody || lx.state.InString() || lx.cur.Escaped() {
		return false
	}
	if lx.cur.HasPrefix("<<") {
		return !lx.state.InCommand
	}
	if lx.cur.HasPrefix(">>") {
		return lx.state.InCommand
	}
	return false
}

func (commandMarkerTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	open := lx.cur.Peek() == '<'
	lx.cur.Advance()
	lx.cur.Advance()
	if open {
		lx.state.InCommand = true
		lx.emit(CommandStart, "<<", line, col)
		return
	}
	if lx.state.InInterpolation() {
		lx.errorf("unclosed interpolation in command")
		lx.state.InterpDepth = 0
	}
	lx.state.InCommand = false
	lx.emit(CommandEnd, ">>", line, col)
}
