package parser

import (
	"strconv"

	"github.com/talekit/talekit/ast"
	"github.com/talekit/talekit/lexer"
)

// Binary operator precedence, low to high. Unary operators bind tighter
// than all of these and live in parseUnary. The word aliases (eq, gte,
// and, ...) arrive as the same token kinds as their symbols.
func opPrecedence(kind lexer.Kind) int {
	switch kind {
	case lexer.Or, lexer.Xor:
		return 1
	case lexer.And:
		return 2
	case lexer.Eq, lexer.Neq:
		return 3
	case lexer.Lt, lexer.Gt, lexer.Lte, lexer.Gte:
		return 4
	case lexer.Plus, lexer.Minus:
		return 5
	case lexer.Star, lexer.Slash, lexer.Percent:
		return 6
	default:
		return 0
	}
}

func opSymbol(kind lexer.Kind) string {
	switch kind {
	case lexer.Or:
		return "or"
	case lexer.Xor:
		return "xor"
	case lexer.And:
		return "and"
	case lexer.Eq:
		return "=="
	case lexer.Neq:
		return "!="
	case lexer.Lt:
		return "<"
	case lexer.Gt:
		return ">"
	case lexer.Lte:
		return "<="
	case lexer.Gte:
		return ">="
	case lexer.Plus:
		return "+"
	case lexer.Minus:
		return "-"
	case lexer.Star:
		return "*"
	case lexer.Slash:
		return "/"
	case lexer.Percent:
		return "%"
	case lexer.Not:
		return "not"
	default:
		return "?"
	}
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseExpressionWithPrecedence(1)
}

func (p *Parser) parseExpressionWithPrecedence(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		kind := p.buf.Current().Kind
		prec := opPrecedence(kind)
		if prec < minPrec {
			return left
		}
		p.buf.Advance()
		right := p.parseExpressionWithPrecedence(prec + 1)
		left = ast.BinaryExpr{Op: opSymbol(kind), Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.buf.Current().Kind {
	case lexer.Minus:
		p.buf.Advance()
		return ast.UnaryExpr{Op: "-", Operand: p.parseUnary()}
	case lexer.Not:
		p.buf.Advance()
		return ast.UnaryExpr{Op: "not", Operand: p.parseUnary()}
	default:
		return p.parsePostfixChain(p.parsePrimary())
	}
}

// parsePostfixChain layers member access, indexing, and calls
// left-to-right on a primary result. The dot lookahead is speculative: a
// dot not followed by a name is handed back to the caller untouched.
func (p *Parser) parsePostfixChain(expr ast.Expr) ast.Expr {
	for {
		switch p.buf.Current().Kind {
		case lexer.Dot:
			snap := p.buf.Snapshot()
			p.buf.Advance()
			tok, ok := p.buf.Consume(lexer.Ident)
			if !ok {
				p.buf.Restore(snap)
				return expr
			}
			expr = ast.MemberExpr{Target: expr, Name: tok.Lexeme}
		case lexer.LBracket:
			p.buf.Advance()
			index := p.parseExpression()
			if _, ok := p.buf.Consume(lexer.RBracket); !ok {
				p.errorf(p.buf.Current(), "expected ] after index expression")
			}
			expr = ast.IndexExpr{Target: expr, Index: index}
		case lexer.LParen:
			p.buf.Advance()
			call := ast.CallExpr{Target: expr}
			if !p.buf.Match(lexer.RParen) {
				for {
					call.Args = append(call.Args, p.parseExpression())
					if _, ok := p.buf.Consume(lexer.Comma); !ok {
						break
					}
				}
			}
			if _, ok := p.buf.Consume(lexer.RParen); !ok {
				p.errorf(p.buf.Current(), "expected ) after call arguments")
			}
			expr = call
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.buf.Current()
	switch tok.Kind {
	case lexer.Number:
		p.buf.Advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorf(tok, "invalid number %q", tok.Lexeme)
			return ast.NullLit{}
		}
		return ast.NumberLit{Value: v}
	case lexer.String:
		return p.parseStringLiteral()
	case lexer.KwTrue:
		p.buf.Advance()
		return ast.BoolLit{Value: true}
	case lexer.KwFalse:
		p.buf.Advance()
		return ast.BoolLit{Value: false}
	case lexer.KwNull:
		p.buf.Advance()
		return ast.NullLit{}
	case lexer.Variable:
		p.buf.Advance()
		return ast.VarExpr{Name: variableName(tok)}
	case lexer.Ident:
		p.buf.Advance()
		return ast.IdentExpr{Name: tok.Lexeme}
	case lexer.LParen:
		p.buf.Advance()
		expr := p.parseExpression()
		if _, ok := p.buf.Consume(lexer.RParen); !ok {
			p.errorf(p.buf.Current(), "expected closing )")
		}
		return expr
	default:
		p.errorf(tok, "expected expression, got %s", tok.Kind)
		if !p.buf.Match(lexer.Newline, lexer.CommandEnd, lexer.RBrace, lexer.Dedent, lexer.NodeEnd) {
			p.buf.Advance()
		}
		return ast.NullLit{}
	}
}

// parseStringLiteral consumes a string, folding any {expr} interpolation
// chunks the lexer split out into a single InterpString.
func (p *Parser) parseStringLiteral() ast.Expr {
	first := p.buf.Advance()
	if !p.buf.Match(lexer.LBrace) {
		return ast.StringLit{Value: first.Lexeme}
	}
	segs := []ast.TextSegment{}
	if first.Lexeme != "" {
		segs = append(segs, ast.TextLiteral{Text: first.Lexeme})
	}
	for {
		if _, ok := p.buf.Consume(lexer.LBrace); !ok {
			break
		}
		segs = append(segs, ast.TextInterp{Expr: p.parseExpression()})
		if _, ok := p.buf.Consume(lexer.RBrace); !ok {
			p.errorf(p.buf.Current(), "unterminated interpolation in string")
			break
		}
		chunk, ok := p.buf.Consume(lexer.String)
		if !ok {
			p.errorf(p.buf.Current(), "unterminated string after interpolation")
			break
		}
		if chunk.Lexeme != "" {
			segs = append(segs, ast.TextLiteral{Text: chunk.Lexeme})
		}
	}
	return ast.InterpString{Segments: segs}
}
