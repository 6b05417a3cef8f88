// Package lexer turns dialogue script text into a flat token stream. The
// scan is a single pass and never fails hard: malformed input produces
// diagnostics plus best-effort tokens so the parser can still recover.
package lexer

import (
	"github.com/talekit/talekit/diag"
)

// tokenizer is a single-responsibility scanner. At each position the
// driver asks the tokenizers in priority order; the first canHandle that
// returns true owns the next token.
type tokenizer interface {
	canHandle(lx *Lexer) bool
	handle(lx *Lexer)
}

type Lexer struct {
	cur    *Cursor
	state  State
	indent IndentationState
	toks   []Token
	diags  []diag.Diagnostic
	last   Kind // kind of the most recently emitted token

	tokenizers []tokenizer
}

// New builds a lexer over source. One lexer serves one tokenize pass;
// concurrent tokenization of different texts uses separate instances.
func New(source string) *Lexer {
	lx := &Lexer{
		cur:    NewCursor(source),
		indent: newIndentationState(),
		last:   Newline,
	}
	lx.tokenizers = []tokenizer{
		foldTokenizer{},
		indentTokenizer{},
		nodeMarkerTokenizer{},
		commandMarkerTokenizer{},
		metadataTokenizer{},
		stringTokenizer{},
		numberTokenizer{},
		identTokenizer{},
		symbolTokenizer{},
		textTokenizer{},
	}
	return lx
}

// Tokenize scans source into tokens. The returned stream ends with
// exactly one EOF token.
func Tokenize(source string) ([]Token, []diag.Diagnostic) {
	return New(source).Run()
}

func (lx *Lexer) Run() ([]Token, []diag.Diagnostic) {
	for !lx.cur.AtEnd() {
		if lx.indent.pending > 0 {
			lx.indent.pending--
			lx.emit(Dedent, "", lx.cur.Line(), lx.cur.Col())
			continue
		}
		if lx.step() {
			continue
		}
		r := lx.cur.Peek()
		if isBlank(r) {
			lx.cur.Advance()
			continue
		}
		if !lx.state.InNodeBody {
			lx.skipStrayLine()
			continue
		}
		lx.errorf("unexpected character %q", r)
		lx.cur.Advance()
	}
	lx.finish()
	return lx.toks, lx.diags
}

func (lx *Lexer) step() bool {
	for _, t := range lx.tokenizers {
		if t.canHandle(lx) {
			t.handle(lx)
			return true
		}
	}
	return false
}

// finish closes any open construct and balances the indent stack, one
// Dedent per open level, before the final EOF.
func (lx *Lexer) finish() {
	line, col := lx.cur.Line(), lx.cur.Col()
	if lx.state.InString() {
		lx.errorf("unterminated string at end of input")
		lx.state.QuoteChar = 0
	}
	if lx.state.InCommand {
		lx.warnf("unterminated command at end of input")
		lx.state.InCommand = false
	}
	if lx.last != Newline && lx.last != NodeEnd {
		lx.emit(Newline, "\n", line, col)
	}
	for lx.indent.pending > 0 {
		lx.indent.pending--
		lx.emit(Dedent, "", line, col)
	}
	for lx.indent.depth() > 0 {
		lx.indent.pop()
		lx.emit(Dedent, "", line, col)
	}
	lx.emit(EOF, "", line, col)
}

// skipStrayLine consumes a line of content found outside any node body.
func (lx *Lexer) skipStrayLine() {
	lx.warnf("content outside of node is ignored")
	for !lx.cur.AtEnd() && !isNewline(lx.cur.Peek()) {
		lx.cur.Advance()
	}
	if !lx.cur.AtEnd() {
		lx.cur.Advance()
	}
	lx.state.ResetLine()
}

func (lx *Lexer) emit(kind Kind, lexeme string, line, col int) {
	lx.toks = append(lx.toks, Token{Kind: kind, Lexeme: lexeme, Line: line, Column: col})
	lx.last = kind
}

func (lx *Lexer) warnf(format string, args ...any) {
	lx.diags = append(lx.diags, diag.Warningf(lx.cur.Line(), lx.cur.Col(), format, args...))
}

func (lx *Lexer) errorf(format string, args ...any) {
	lx.diags = append(lx.diags, diag.Errorf(lx.cur.Line(), lx.cur.Col(), format, args...))
}

// exprContext reports whether expression tokens (numbers, operators,
// variables) may fire at the current position.
func (lx *Lexer) exprContext() bool {
	return lx.state.InCommand || lx.state.InInterpolation() || lx.state.InExprLine
}

// atLineStart reports whether the next token would be the first
// significant token of its logical line.
func (lx *Lexer) atLineStart() bool {
	switch lx.last {
	case Newline, Indent, Dedent:
		return true
	default:
		return false
	}
}
