package lexer

import "strings"

// Cursor tracks a position in the raw source text and exposes the
// character-class predicates shared by the tokenizers.
type Cursor struct {
	src  []rune
	pos  int
	line int // 1-based
	col  int // 1-based
}

// NewCursor normalizes line endings and a leading BOM, then positions
// the cursor at the first rune.
func NewCursor(source string) *Cursor {
	source = strings.TrimPrefix(source, "\ufeff")
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	return &Cursor{src: []rune(source), line: 1, col: 1}
}

type mark struct {
	pos, line, col int
}

func (c *Cursor) Mark() mark {
	return mark{pos: c.pos, line: c.line, col: c.col}
}

func (c *Cursor) Restore(m mark) {
	c.pos, c.line, c.col = m.pos, m.line, m.col
}

func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.src)
}

func (c *Cursor) Line() int { return c.line }
func (c *Cursor) Col() int  { return c.col }

// Peek returns the current rune, or 0 at end of input.
func (c *Cursor) Peek() rune {
	return c.PeekAt(0)
}

// PeekAt returns the rune n positions ahead, or 0 past the end.
func (c *Cursor) PeekAt(n int) rune {
	if c.pos+n >= len(c.src) {
		return 0
	}
	return c.src[c.pos+n]
}

// Advance consumes and returns the current rune.
func (c *Cursor) Advance() rune {
	if c.AtEnd() {
		return 0
	}
	r := c.src[c.pos]
	c.pos++
	if r == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	return r
}

// HasPrefix reports whether the upcoming text starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	for i, r := range []rune(s) {
		if c.PeekAt(i) != r {
			return false
		}
	}
	return true
}

// Escaped reports whether the current position is preceded by an odd
// number of consecutive backslashes.
func (c *Cursor) Escaped() bool {
	n := 0
	for i := c.pos - 1; i >= 0 && c.src[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func isQuote(r rune) bool {
	return r == '\'' || r == '"'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNewline(r rune) bool {
	return r == '\n'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}
