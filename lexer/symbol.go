package lexer

// symbolTokenizer scans operators and structural punctuation. In
// expression context every operator is live; in prose context only the
// structural characters fire (#, -> at line start, header parentheses and
// colon, interpolation braces).
type symbolTokenizer struct{}

var twoCharSymbols = []struct {
	text string
	kind Kind
}{
	{"==", Eq},
	{"!=", Neq},
	{"<=", Lte},
	{">=", Gte},
	{"&&", And},
	{"||", Or},
	{"->", Arrow},
}

var oneCharSymbols = map[rune]Kind{
	':': Colon,
	'#': Hash,
	'{': LBrace,
	'}': RBrace,
	'(': LParen,
	')': RParen,
	'[': LBracket,
	']': RBracket,
	'.': Dot,
	',': Comma,
	'=': Assign,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'%': Percent,
	'<': Lt,
	'>': Gt,
	'!': Not,
	'^': Xor,
}

func (symbolTokenizer) canHandle(lx *Lexer) bool {
	if lx.state.InString() && !lx.state.InInterpolation() {
		return false
	}
	r := lx.cur.Peek()
	if lx.exprContext() {
		for _, s := range twoCharSymbols {
			if lx.cur.HasPrefix(s.text) {
				return true
			}
		}
		_, ok := oneCharSymbols[r]
		return ok
	}
	if !lx.state.InNodeBody {
		return false
	}
	switch {
	case r == '#' && !lx.cur.Escaped():
		return true
	case r == '{' && !lx.cur.Escaped():
		return true
	case r == '}' && lx.state.InInterpolation():
		return true
	case lx.cur.HasPrefix("->") && lx.atLineStart():
		return true
	case lx.state.InHeader && (r == '(' || r == ')' || r == ':'):
		return true
	}
	return false
}

func (symbolTokenizer) handle(lx *Lexer) {
	line, col := lx.cur.Line(), lx.cur.Col()
	if lx.exprContext() || lx.cur.HasPrefix("->") {
		for _, s := range twoCharSymbols {
			if lx.cur.HasPrefix(s.text) {
				lx.cur.Advance()
				lx.cur.Advance()
				lx.emit(s.kind, s.text, line, col)
				return
			}
		}
	}
	r := lx.cur.Advance()
	kind := oneCharSymbols[r]
	switch kind {
	case LBrace:
		lx.state.InterpDepth++
	case RBrace:
		if lx.state.InInterpolation() {
			lx.state.InterpDepth--
		} else {
			lx.errorf("unexpected } outside interpolation")
		}
	case Colon:
		if lx.state.InHeader {
			lx.state.InHeader = false
			lx.state.ColonSeen = true
		}
	case Hash:
		lx.state.AfterHash = true
	}
	lx.emit(kind, string(r), line, col)
}
