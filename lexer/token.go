package lexer

import "strings"

// Kind classifies a token. A token stream always ends with exactly one EOF.
type Kind int

const (
	EOF Kind = iota
	Newline
	Indent
	Dedent

	NodeStart    // ---
	NodeEnd      // ===
	CommandStart // <<
	CommandEnd   // >>

	Text
	String
	Number
	Ident
	Variable // $name

	KwIf
	KwElif
	KwElse
	KwEndif
	KwTrue
	KwFalse
	KwNull
	KwVar
	KwSet
	KwAdd
	KwSub
	KwMul
	KwDiv
	KwMod
	KwJump
	KwWait

	Colon
	Hash
	Arrow // ->
	LBrace
	RBrace
	LParen
	RParen
	LBracket
	RBracket
	Dot
	Comma

	Assign // =
	Plus
	Minus
	Star
	Slash
	Percent
	Eq
	Neq
	Lt
	Gt
	Lte
	Gte
	And
	Or
	Xor
	Not
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Newline:      "NEWLINE",
	Indent:       "INDENT",
	Dedent:       "DEDENT",
	NodeStart:    "NODE_START",
	NodeEnd:      "NODE_END",
	CommandStart: "COMMAND_START",
	CommandEnd:   "COMMAND_END",
	Text:         "TEXT",
	String:       "STRING",
	Number:       "NUMBER",
	Ident:        "IDENTIFIER",
	Variable:     "VARIABLE",
	KwIf:         "IF",
	KwElif:       "ELIF",
	KwElse:       "ELSE",
	KwEndif:      "ENDIF",
	KwTrue:       "TRUE",
	KwFalse:      "FALSE",
	KwNull:       "NULL",
	KwVar:        "VAR",
	KwSet:        "SET",
	KwAdd:        "ADD",
	KwSub:        "SUB",
	KwMul:        "MUL",
	KwDiv:        "DIV",
	KwMod:        "MOD",
	KwJump:       "JUMP",
	KwWait:       "WAIT",
	Colon:        "COLON",
	Hash:         "HASH",
	Arrow:        "ARROW",
	LBrace:       "LBRACE",
	RBrace:       "RBRACE",
	LParen:       "LPAREN",
	RParen:       "RPAREN",
	LBracket:     "LBRACKET",
	RBracket:     "RBRACKET",
	Dot:          "DOT",
	Comma:        "COMMA",
	Assign:       "ASSIGN",
	Plus:         "PLUS",
	Minus:        "MINUS",
	Star:         "STAR",
	Slash:        "SLASH",
	Percent:      "PERCENT",
	Eq:           "EQ",
	Neq:          "NEQ",
	Lt:           "LT",
	Gt:           "GT",
	Lte:          "LTE",
	Gte:          "GTE",
	And:          "AND",
	Or:           "OR",
	Xor:          "XOR",
	Not:          "NOT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is one lexical unit. Immutable once produced.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
	Column int
}

// keywords maps lower-cased identifiers to their token kinds. Operator
// words (eq, gte, and, ...) map straight to the operator kinds so the
// parser never needs to special-case them.
var keywords = map[string]Kind{
	"if":    KwIf,
	"elif":  KwElif,
	"else":  KwElse,
	"endif": KwEndif,
	"true":  KwTrue,
	"false": KwFalse,
	"null":  KwNull,
	"var":   KwVar,
	"set":   KwSet,
	"add":   KwAdd,
	"sub":   KwSub,
	"mul":   KwMul,
	"div":   KwDiv,
	"mod":   KwMod,
	"jump":  KwJump,
	"wait":  KwWait,
	"eq":    Eq,
	"is":    Eq,
	"neq":   Neq,
	"gt":    Gt,
	"lt":    Lt,
	"gte":   Gte,
	"lte":   Lte,
	"and":   And,
	"or":    Or,
	"not":   Not,
	"xor":   Xor,
}

// lookupKeyword matches word case-insensitively against the keyword table.
func lookupKeyword(word string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(word)]
	return k, ok
}
