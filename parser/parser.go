// Package parser builds the dialogue AST from a token stream. Parsing
// never aborts on the first problem: unexpected tokens are recorded as
// diagnostics and the parser resynchronizes to the next statement or node
// boundary, so one malformed line does not lose the rest of the script.
package parser

import (
	"fmt"

	"github.com/talekit/talekit/ast"
	"github.com/talekit/talekit/diag"
	"github.com/talekit/talekit/lexer"
)

type Parser struct {
	buf   *TokenBuffer
	diags []diag.Diagnostic
}

// Parse builds a script from tokens, accumulating diagnostics instead of
// failing.
func Parse(toks []lexer.Token) (*ast.Script, []diag.Diagnostic) {
	p := &Parser{buf: NewTokenBuffer(toks)}
	script := p.parseScript()
	return script, p.diags
}

// ParseSource tokenizes and parses in one step, merging lexer and parser
// diagnostics.
func ParseSource(source string) (*ast.Script, []diag.Diagnostic) {
	toks, lexDiags := lexer.Tokenize(source)
	script, parseDiags := Parse(toks)
	return script, append(lexDiags, parseDiags...)
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) {
	p.diags = append(p.diags, diag.Errorf(tok.Line, tok.Column, format, args...))
}

func (p *Parser) warnf(tok lexer.Token, format string, args ...any) {
	p.diags = append(p.diags, diag.Warningf(tok.Line, tok.Column, format, args...))
}

// syncTo advances to the next token whose kind is in the caller-supplied
// set, leaving it unconsumed. EOF always terminates the scan.
func (p *Parser) syncTo(kinds ...lexer.Kind) {
	for !p.buf.AtEnd() && !p.buf.Match(kinds...) {
		p.buf.Advance()
	}
}

func (p *Parser) expect(kind lexer.Kind, what string) (lexer.Token, bool) {
	if tok, ok := p.buf.Consume(kind); ok {
		return tok, true
	}
	tok := p.buf.Current()
	p.errorf(tok, "expected %s, got %s", what, tok.Kind)
	return tok, false
}

func (p *Parser) skipNewlines() {
	for p.buf.Match(lexer.Newline) {
		p.buf.Advance()
	}
}

func (p *Parser) parseScript() *ast.Script {
	script := &ast.Script{}
	for {
		p.skipNewlines()
		if p.buf.AtEnd() {
			return script
		}
		if !p.buf.Match(lexer.NodeStart) {
			tok := p.buf.Current()
			p.errorf(tok, "expected node start ---, got %s", tok.Kind)
			p.buf.Advance()
			p.syncTo(lexer.NodeStart)
			continue
		}
		script.Nodes = append(script.Nodes, p.parseNode(len(script.Nodes)))
	}
}

func (p *Parser) parseNode(index int) *ast.NodeDef {
	start := p.buf.Advance() // NodeStart
	node := &ast.NodeDef{
		Metadata: map[string]string{},
		Content:  []ast.ContentNode{},
		Line:     start.Line,
	}
	if tok, ok := p.buf.Consume(lexer.Ident); ok {
		node.Name = tok.Lexeme
	}
	p.skipNewlines()

	// Metadata lines directly after the opening marker, until the first
	// content line.
	for p.buf.Match(lexer.LBracket) {
		p.parseMetadataEntry(node)
		p.skipNewlines()
	}
	if node.Name == "" {
		if title, ok := node.Metadata["title"]; ok && title != "" {
			node.Name = title
		}
	}
	if node.Name == "" {
		p.errorf(start, "node has no name: give it one inline after --- or via a title metadata entry")
		node.Name = fmt.Sprintf("$unnamed_%d", index+1)
	}

	node.Content = p.parseBlock()

	if _, ok := p.buf.Consume(lexer.NodeEnd); !ok {
		tok := p.buf.Current()
		p.errorf(tok, "node %s is not closed, expected ===", node.Name)
		p.syncTo(lexer.NodeEnd, lexer.NodeStart)
		p.buf.Consume(lexer.NodeEnd)
	}
	return node
}

func (p *Parser) parseMetadataEntry(node *ast.NodeDef) {
	p.buf.Advance() // LBracket
	key, ok := p.buf.Consume(lexer.Ident)
	if !ok {
		p.errorf(p.buf.Current(), "expected metadata key")
		p.syncTo(lexer.Newline, lexer.NodeEnd)
		return
	}
	if _, ok := p.buf.Consume(lexer.Colon); !ok {
		p.errorf(p.buf.Current(), "expected : in metadata entry %q", key.Lexeme)
		p.syncTo(lexer.Newline, lexer.NodeEnd)
		return
	}
	value := ""
	if tok, ok := p.buf.Consume(lexer.Text); ok {
		value = tok.Lexeme
	}
	if _, ok := p.buf.Consume(lexer.RBracket); !ok {
		p.errorf(p.buf.Current(), "unterminated metadata entry %q", key.Lexeme)
		p.syncTo(lexer.Newline, lexer.NodeEnd)
	}
	if _, exists := node.Metadata[key.Lexeme]; exists {
		p.warnf(key, "duplicate metadata key %q", key.Lexeme)
	}
	node.Metadata[key.Lexeme] = value
}

// parseBlock parses content items until the current nesting level closes
// (Dedent, NodeEnd, EOF, or a conditional branch keyword).
func (p *Parser) parseBlock() []ast.ContentNode {
	content := []ast.ContentNode{}
	for {
		p.skipNewlines()
		switch p.buf.Current().Kind {
		case lexer.Dedent, lexer.NodeEnd, lexer.EOF,
			lexer.KwElif, lexer.KwElse, lexer.KwEndif:
			return content
		case lexer.Indent:
			p.errorf(p.buf.Current(), "unexpected indentation")
			p.buf.Advance()
		case lexer.Ident, lexer.Text, lexer.LBrace:
			content = append(content, p.parseDialogue())
		case lexer.Arrow:
			content = append(content, p.parseChoice())
		case lexer.KwIf:
			content = append(content, p.parseConditional())
		case lexer.CommandStart:
			if cmd := p.parseCommand(); cmd != nil {
				content = append(content, cmd)
			}
		default:
			tok := p.buf.Current()
			p.errorf(tok, "unexpected %s in node content", tok.Kind)
			p.buf.Advance()
			p.syncTo(lexer.Newline, lexer.Dedent, lexer.NodeEnd)
		}
	}
}

// parseNested parses an optionally present, more deeply indented block
// under a dialogue line or choice.
func (p *Parser) parseNested() []ast.ContentNode {
	snap := p.buf.Snapshot()
	p.skipNewlines()
	if _, ok := p.buf.Consume(lexer.Indent); !ok {
		p.buf.Restore(snap)
		return []ast.ContentNode{}
	}
	content := p.parseBlock()
	if _, ok := p.buf.Consume(lexer.Dedent); !ok {
		p.errorf(p.buf.Current(), "unterminated nested block")
	}
	return content
}

func (p *Parser) parseDialogue() *ast.Dialogue {
	d := &ast.Dialogue{
		Segments: []ast.TextSegment{},
		Nested:   []ast.ContentNode{},
		Line:     p.buf.Current().Line,
	}
	if p.buf.Match(lexer.Ident) {
		d.Speaker = p.buf.Advance().Lexeme
		if _, ok := p.buf.Consume(lexer.LParen); ok {
			if tok, ok := p.buf.Consume(lexer.Ident); ok {
				d.Emotion = tok.Lexeme
			} else {
				p.errorf(p.buf.Current(), "expected emotion name")
			}
			if _, ok := p.buf.Consume(lexer.RParen); !ok {
				p.errorf(p.buf.Current(), "unterminated emotion annotation")
			}
		}
		p.expect(lexer.Colon, ": after speaker")
	}
	d.Segments = p.parseTextSegments(&d.Tags)
	d.Nested = p.parseNested()
	return d
}

// parseTextSegments collects literal text, {expr} interpolations, and
// (when tags is non-nil) #tag annotations until the end of the line.
func (p *Parser) parseTextSegments(tags *[]string) []ast.TextSegment {
	segs := []ast.TextSegment{}
	for {
		switch p.buf.Current().Kind {
		case lexer.Text:
			segs = append(segs, ast.TextLiteral{Text: p.buf.Advance().Lexeme})
		case lexer.LBrace:
			p.buf.Advance()
			expr := p.parseExpression()
			if _, ok := p.buf.Consume(lexer.RBrace); !ok {
				p.errorf(p.buf.Current(), "unterminated interpolation, expected }")
				p.syncTo(lexer.RBrace, lexer.Newline)
				p.buf.Consume(lexer.RBrace)
			}
			segs = append(segs, ast.TextInterp{Expr: expr})
		case lexer.Hash:
			hash := p.buf.Advance()
			tok, ok := p.buf.Consume(lexer.Ident)
			if !ok {
				p.errorf(hash, "expected tag name after #")
				continue
			}
			if tags != nil {
				*tags = append(*tags, tok.Lexeme)
			} else {
				p.warnf(hash, "tags are not allowed here")
			}
		default:
			return segs
		}
	}
}

func (p *Parser) parseChoice() *ast.Choice {
	arrow := p.buf.Advance() // Arrow
	c := &ast.Choice{
		Segments: []ast.TextSegment{},
		Content:  []ast.ContentNode{},
		Line:     arrow.Line,
	}
	for {
		switch p.buf.Current().Kind {
		case lexer.Text:
			c.Segments = append(c.Segments, ast.TextLiteral{Text: p.buf.Advance().Lexeme})
		case lexer.LBrace:
			p.buf.Advance()
			expr := p.parseExpression()
			if _, ok := p.buf.Consume(lexer.RBrace); !ok {
				p.errorf(p.buf.Current(), "unterminated interpolation, expected }")
			}
			c.Segments = append(c.Segments, ast.TextInterp{Expr: expr})
		case lexer.CommandStart:
			start := p.buf.Advance()
			if _, ok := p.buf.Consume(lexer.KwIf); !ok {
				p.errorf(start, "only an <<if ...>> guard may follow a choice")
				p.syncTo(lexer.CommandEnd, lexer.Newline)
				p.buf.Consume(lexer.CommandEnd)
				continue
			}
			if c.Guard != nil {
				p.warnf(start, "choice already has a guard")
			}
			c.Guard = p.parseExpression()
			if _, ok := p.buf.Consume(lexer.CommandEnd); !ok {
				p.errorf(p.buf.Current(), "unterminated guard, expected >>")
				p.syncTo(lexer.CommandEnd, lexer.Newline)
				p.buf.Consume(lexer.CommandEnd)
			}
		default:
			c.Content = p.parseNested()
			return c
		}
	}
}

func (p *Parser) parseConditional() *ast.Conditional {
	kw := p.buf.Advance() // KwIf
	cond := &ast.Conditional{
		Cond:  p.parseExpression(),
		Then:  []ast.ContentNode{},
		Elifs: []ast.ElifBranch{},
		Else:  []ast.ContentNode{},
		Line:  kw.Line,
	}
	cond.Then = p.parseBranchBody()
	for {
		p.skipNewlines()
		switch p.buf.Current().Kind {
		case lexer.KwElif:
			p.buf.Advance()
			branch := ast.ElifBranch{Cond: p.parseExpression()}
			branch.Content = p.parseBranchBody()
			cond.Elifs = append(cond.Elifs, branch)
		case lexer.KwElse:
			p.buf.Advance()
			if cond.HasElse {
				p.errorf(p.buf.Current(), "duplicate else branch")
			}
			cond.HasElse = true
			cond.Else = p.parseBranchBody()
		case lexer.KwEndif:
			p.buf.Advance()
			return cond
		default:
			tok := p.buf.Current()
			p.errorf(tok, "unterminated if block, expected endif before %s", tok.Kind)
			return cond
		}
	}
}

// parseBranchBody parses the indented content of one if/elif/else branch.
func (p *Parser) parseBranchBody() []ast.ContentNode {
	if _, ok := p.buf.Consume(lexer.Newline); !ok {
		p.errorf(p.buf.Current(), "expected newline after condition")
		p.syncTo(lexer.Newline, lexer.NodeEnd)
		p.buf.Consume(lexer.Newline)
	}
	p.skipNewlines()
	if _, ok := p.buf.Consume(lexer.Indent); !ok {
		// An empty branch is allowed; elif/else/endif follows directly.
		return []ast.ContentNode{}
	}
	content := p.parseBlock()
	if _, ok := p.buf.Consume(lexer.Dedent); !ok {
		p.errorf(p.buf.Current(), "unterminated branch block")
	}
	return content
}

func (p *Parser) parseCommand() ast.Command {
	start := p.buf.Advance() // CommandStart
	var cmd ast.Command
	switch p.buf.Current().Kind {
	case lexer.KwJump:
		p.buf.Advance()
		tok, ok := p.buf.Consume(lexer.Ident)
		if !ok {
			p.errorf(p.buf.Current(), "expected node name after jump")
			p.syncTo(lexer.CommandEnd, lexer.Newline)
			p.buf.Consume(lexer.CommandEnd)
			return nil
		}
		cmd = &ast.JumpCmd{Target: tok.Lexeme, Line: start.Line}
	case lexer.KwWait:
		p.buf.Advance()
		cmd = &ast.WaitCmd{Duration: p.parseExpression(), Line: start.Line}
	case lexer.KwVar, lexer.KwSet, lexer.KwAdd, lexer.KwSub, lexer.KwMul, lexer.KwDiv, lexer.KwMod:
		cmd = p.parseSetCommand(start)
	default:
		cmd = &ast.CallCmd{Call: p.parseExpression(), Line: start.Line}
	}
	if _, ok := p.buf.Consume(lexer.CommandEnd); !ok {
		p.errorf(p.buf.Current(), "unterminated command, expected >>")
		p.syncTo(lexer.CommandEnd, lexer.Newline)
		p.buf.Consume(lexer.CommandEnd)
	}
	return cmd
}

func (p *Parser) parseSetCommand(start lexer.Token) ast.Command {
	op := p.buf.Advance()
	name, ok := p.buf.Consume(lexer.Variable)
	if !ok {
		p.errorf(p.buf.Current(), "expected $variable after %s", op.Lexeme)
		p.syncTo(lexer.CommandEnd, lexer.Newline)
		return nil
	}
	// set/var accept an optional = before the value.
	if op.Kind == lexer.KwSet || op.Kind == lexer.KwVar {
		p.buf.Consume(lexer.Assign)
	}
	return &ast.SetCmd{
		Name:  variableName(name),
		Op:    opWord(op.Kind),
		Value: p.parseExpression(),
		Line:  start.Line,
	}
}

func opWord(kind lexer.Kind) string {
	switch kind {
	case lexer.KwVar:
		return "var"
	case lexer.KwAdd:
		return "add"
	case lexer.KwSub:
		return "sub"
	case lexer.KwMul:
		return "mul"
	case lexer.KwDiv:
		return "div"
	case lexer.KwMod:
		return "mod"
	default:
		return "set"
	}
}

// variableName strips the $ prefix from a variable token lexeme.
func variableName(tok lexer.Token) string {
	if len(tok.Lexeme) > 0 && tok.Lexeme[0] == '$' {
		return tok.Lexeme[1:]
	}
	return tok.Lexeme
}
