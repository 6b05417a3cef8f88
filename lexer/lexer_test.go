package lexer

import (
	"strings"
	"testing"

	"github.com/talekit/talekit/diag"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func assertKinds(t *testing.T, toks []Token, want []Kind) {
	t.Helper()
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s (stream: %v)", i, got[i], want[i], got)
		}
	}
}

func TestTokenizeSpeakerLine(t *testing.T) {
	toks, diags := Tokenize("--- start\nA: Hi #greet\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		Ident, Colon, Text, Hash, Ident, Newline,
		NodeEnd, EOF,
	})
	if toks[1].Lexeme != "start" {
		t.Fatalf("node name: got %q", toks[1].Lexeme)
	}
	if toks[3].Lexeme != "A" || toks[5].Lexeme != "Hi" || toks[7].Lexeme != "greet" {
		t.Fatalf("lexemes: speaker=%q text=%q tag=%q", toks[3].Lexeme, toks[5].Lexeme, toks[7].Lexeme)
	}
}

func TestTokenizeEmotionHeader(t *testing.T) {
	toks, diags := Tokenize("--- n\nMia (happy): Sure!\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		Ident, LParen, Ident, RParen, Colon, Text, Newline,
		NodeEnd, EOF,
	})
	if toks[5].Lexeme != "happy" {
		t.Fatalf("emotion: got %q", toks[5].Lexeme)
	}
}

func TestIndentDedentBalance(t *testing.T) {
	srcs := []string{
		"--- a\nA: one\n    B: two\n        C: three\nD: four\n===",
		"--- a\nA: one\n  B: two\n    C: three\n  D: four\n===",
		"--- a\n-> pick\n    A: picked\n===",
		"--- a\nA: one\n\tB: two\n===",
	}
	for _, src := range srcs {
		toks, _ := Tokenize(src)
		indents, dedents := 0, 0
		for _, tok := range toks {
			switch tok.Kind {
			case Indent:
				indents++
			case Dedent:
				dedents++
			}
		}
		if indents != dedents {
			t.Fatalf("unbalanced: %d INDENT vs %d DEDENT in %q", indents, dedents, src)
		}
	}
}

func TestIndentMismatchIsError(t *testing.T) {
	// Dedenting to width 2 when only levels 0 and 4 are open.
	_, diags := Tokenize("--- a\nA: one\n    B: two\n  C: three\n===")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected indentation error, got %v", diags)
	}
}

func TestMixedTabsAndSpacesWarns(t *testing.T) {
	_, diags := Tokenize("--- a\nA: one\n \tB: two\n===")
	found := false
	for _, d := range diags {
		if d.Severity == diag.Warning && strings.Contains(d.Message, "mixed tabs") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected mixed-indentation warning, got %v", diags)
	}
}

func TestCommentAndBlankFolding(t *testing.T) {
	src := "--- a\nA: one // trailing\n\n// full comment line\n\n\nB: two\n==="
	toks, diags := Tokenize(src)
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		Ident, Colon, Text, Newline,
		Ident, Colon, Text, Newline,
		NodeEnd, EOF,
	})
	if toks[5].Lexeme != "one" {
		t.Fatalf("comment not stripped from text: %q", toks[5].Lexeme)
	}
}

func TestCommandTokens(t *testing.T) {
	toks, diags := Tokenize("--- a\n<<set $gold = $gold + 10>>\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		CommandStart, KwSet, Variable, Assign, Variable, Plus, Number, CommandEnd, Newline,
		NodeEnd, EOF,
	})
	if toks[5].Lexeme != "$gold" {
		t.Fatalf("variable lexeme: %q", toks[5].Lexeme)
	}
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	toks, diags := Tokenize("--- a\nIF $x\n    A: yes\nENDIF\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		KwIf, Variable, Newline,
		Indent, Ident, Colon, Text, Newline,
		Dedent, KwEndif, Newline,
		NodeEnd, EOF,
	})
}

func TestStringInterpolation(t *testing.T) {
	toks, diags := Tokenize("--- a\n<<set $msg = \"Hi {$name}!\">>\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		CommandStart, KwSet, Variable, Assign,
		String, LBrace, Variable, RBrace, String,
		CommandEnd, Newline,
		NodeEnd, EOF,
	})
	if toks[7].Lexeme != "Hi " || toks[11].Lexeme != "!" {
		t.Fatalf("string chunks: %q / %q", toks[7].Lexeme, toks[11].Lexeme)
	}
}

func TestTextInterpolation(t *testing.T) {
	toks, diags := Tokenize("--- a\nA: You have {$gold} gold\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		Ident, Colon, Text, LBrace, Variable, RBrace, Text, Newline,
		NodeEnd, EOF,
	})
	if toks[5].Lexeme != "You have " {
		t.Fatalf("pre-interp text: %q", toks[5].Lexeme)
	}
	if toks[9].Lexeme != " gold" {
		t.Fatalf("post-interp text: %q", toks[9].Lexeme)
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, diags := Tokenize("--- a\n<<set $x = \"oops>>\n===")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected unterminated-string error, got %v", diags)
	}
}

func TestUnterminatedInterpolationIsError(t *testing.T) {
	// A bare {…} in prose cut off by the newline is an interpolation
	// problem, not a string one.
	_, diags := Tokenize("--- a\nYou have {gold\n===")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected unterminated-interpolation error, got %v", diags)
	}
	found := false
	for _, d := range diags {
		if strings.Contains(d.Message, "unterminated interpolation") {
			found = true
		}
		if strings.Contains(d.Message, "unterminated string") {
			t.Fatalf("misreported as a string problem: %v", d)
		}
	}
	if !found {
		t.Fatalf("missing interpolation diagnostic: %v", diags)
	}
}

func TestQuoteMismatchStaysOpen(t *testing.T) {
	// A double-quoted string is not closed by a single quote.
	_, diags := Tokenize("--- a\n<<set $x = \"mixed'>>\n===")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected unterminated-string error, got %v", diags)
	}
}

func TestEscapedMarkersAreLiteralText(t *testing.T) {
	toks, diags := Tokenize("--- a\nA: \\--- and \\=== stay\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	var text string
	for _, tok := range toks {
		if tok.Kind == Text {
			text = tok.Lexeme
		}
	}
	if text != "--- and === stay" {
		t.Fatalf("escaped markers: %q", text)
	}
}

func TestProseEscapes(t *testing.T) {
	toks, _ := Tokenize("--- a\nA: a\\:b \\#c \\{d\\}\n===")
	var text string
	for _, tok := range toks {
		if tok.Kind == Text {
			text = tok.Lexeme
		}
	}
	if text != "a:b #c {d}" {
		t.Fatalf("escapes: %q", text)
	}
}

func TestContentOutsideNodeIsSkipped(t *testing.T) {
	toks, diags := Tokenize("stray prose\n--- a\nA: hi\n===")
	hasWarning := false
	for _, d := range diags {
		if d.Severity == diag.Warning {
			hasWarning = true
		}
	}
	if !hasWarning {
		t.Fatalf("expected a warning for stray content, got %v", diags)
	}
	if toks[0].Kind != NodeStart {
		t.Fatalf("first token: got %s, want NODE_START", toks[0].Kind)
	}
}

func TestMetadataLine(t *testing.T) {
	toks, diags := Tokenize("--- intro\n[title: The Intro]\nA: hi\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		LBracket, Ident, Colon, Text, RBracket, Newline,
		Ident, Colon, Text, Newline,
		NodeEnd, EOF,
	})
	if toks[4].Lexeme != "title" || toks[6].Lexeme != "The Intro" {
		t.Fatalf("metadata: key=%q value=%q", toks[4].Lexeme, toks[6].Lexeme)
	}
}

func TestChoiceArrow(t *testing.T) {
	toks, diags := Tokenize("--- a\n-> Leave\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	assertKinds(t, toks, []Kind{
		NodeStart, Ident, Newline,
		Arrow, Text, Newline,
		NodeEnd, EOF,
	})
	if toks[4].Lexeme != "Leave" {
		t.Fatalf("choice text: %q", toks[4].Lexeme)
	}
}

func TestSingleEOF(t *testing.T) {
	for _, src := range []string{"", "\n\n", "--- a\n===", "--- a\nA: hi"} {
		toks, _ := Tokenize(src)
		count := 0
		for _, tok := range toks {
			if tok.Kind == EOF {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("%q: %d EOF tokens", src, count)
		}
		if toks[len(toks)-1].Kind != EOF {
			t.Fatalf("%q: stream does not end with EOF", src)
		}
	}
}

func TestReconstructSignificantText(t *testing.T) {
	// Lexemes of significant tokens appear in source order.
	src := "--- start\nMia: Hello there\n<<jump next>>\n==="
	toks, _ := Tokenize(src)
	pos := 0
	for _, tok := range toks {
		if tok.Lexeme == "" || tok.Kind == Newline {
			continue
		}
		idx := strings.Index(src[pos:], tok.Lexeme)
		if idx < 0 {
			t.Fatalf("lexeme %q (kind %s) not found in order", tok.Lexeme, tok.Kind)
		}
		pos += idx + len(tok.Lexeme)
	}
}
