package parser

import "github.com/talekit/talekit/lexer"

// TokenBuffer is a seekable view over a token stream. Snapshot/Restore
// give the expression parser cheap speculative lookahead; Seek is used by
// error-recovery resynchronization.
type TokenBuffer struct {
	toks []lexer.Token
	pos  int
}

func NewTokenBuffer(toks []lexer.Token) *TokenBuffer {
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.EOF {
		toks = append(toks, lexer.Token{Kind: lexer.EOF})
	}
	return &TokenBuffer{toks: toks}
}

// Current returns the token under the read head without consuming it.
func (b *TokenBuffer) Current() lexer.Token {
	return b.Peek(0)
}

// Peek returns the token n positions ahead. Past the end it returns the
// final EOF token.
func (b *TokenBuffer) Peek(n int) lexer.Token {
	i := b.pos + n
	if i >= len(b.toks) {
		return b.toks[len(b.toks)-1]
	}
	return b.toks[i]
}

// Advance consumes and returns the current token. The read head never
// moves past the final EOF.
func (b *TokenBuffer) Advance() lexer.Token {
	t := b.Current()
	if b.pos < len(b.toks)-1 {
		b.pos++
	}
	return t
}

func (b *TokenBuffer) AtEnd() bool {
	return b.Current().Kind == lexer.EOF
}

func (b *TokenBuffer) Pos() int {
	return b.pos
}

func (b *TokenBuffer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(b.toks)-1 {
		pos = len(b.toks) - 1
	}
	b.pos = pos
}

// Snapshot returns a position restorable with Restore.
func (b *TokenBuffer) Snapshot() int {
	return b.pos
}

func (b *TokenBuffer) Restore(snap int) {
	b.Seek(snap)
}

// Match reports whether the current token is one of the given kinds.
func (b *TokenBuffer) Match(kinds ...lexer.Kind) bool {
	cur := b.Current().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// Consume advances past the current token if it has the given kind.
func (b *TokenBuffer) Consume(kind lexer.Kind) (lexer.Token, bool) {
	if b.Current().Kind != kind {
		return lexer.Token{}, false
	}
	return b.Advance(), true
}
