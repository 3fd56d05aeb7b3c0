package syntax

import "testing"

// lexAll scans the source to completion, failing the test on lexical errors.
func lexAll(t *testing.T, src string) []*Token {
	t.Helper()

	defer func() {
		if x := recover(); x != nil {
			t.Fatalf("lexical error: %v", x)
		}
	}()

	l := NewLexer(src)
	var toks []*Token
	for {
		tok := l.NextToken()
		if tok.Kind == TokEOF {
			return toks
		}

		toks = append(toks, tok)
	}
}

func TestLexBasicTokens(t *testing.T) {
	toks := lexAll(t, `fn main() -> i32 { return 42; }`)

	wantKinds := []int{
		TokFn, TokIdent, TokLParen, TokRParen, TokArrow, TokIdent,
		TokLBrace, TokReturn, TokIntLit, TokSemicolon, TokRBrace,
	}

	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(wantKinds))
	}

	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Errorf("token %d (%q): kind = %d, want %d", i, toks[i].Value, toks[i].Kind, want)
		}
	}
}

func TestLexOperators(t *testing.T) {
	tests := []struct {
		src  string
		kind int
	}{
		{"%%", TokPercPerc},
		{"%=", TokPercentAssign},
		{"??", TokQuestQuest},
		{"?=", TokQuestEq},
		{"?", TokQuestion},
		{"++", TokPlusPlus},
		{"+=", TokPlusAssign},
		{"...", TokEllipsis},
		{"<<=", TokShlAssign},
		{"<<", TokShl},
		{"=>", TokFatArrow},
		{"->", TokArrow},
		{"&&", TokAndAnd},
		{"&", TokAmp},
	}

	for _, tt := range tests {
		toks := lexAll(t, tt.src)
		if len(toks) != 1 {
			t.Errorf("%q: got %d tokens, want 1", tt.src, len(toks))
			continue
		}

		if toks[0].Kind != tt.kind {
			t.Errorf("%q: kind = %d, want %d", tt.src, toks[0].Kind, tt.kind)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		src     string
		kind    int
		value   string
	}{
		{"42", TokIntLit, "42"},
		{"0xff", TokIntLit, "0xff"},
		{"0b101", TokIntLit, "0b101"},
		{"3.25", TokFloatLit, "3.25"},
		{"1e9", TokFloatLit, "1e9"},
		{"2.5e-3", TokFloatLit, "2.5e-3"},
	}

	for _, tt := range tests {
		toks := lexAll(t, tt.src)
		if len(toks) != 1 || toks[0].Kind != tt.kind || toks[0].Value != tt.value {
			t.Errorf("%q: got kind %d value %q", tt.src, toks[0].Kind, toks[0].Value)
		}
	}

	// A trailing dot is a field access, not a float.
	toks := lexAll(t, "3.len")
	if len(toks) != 3 || toks[0].Kind != TokIntLit || toks[1].Kind != TokDot {
		t.Errorf("3.len did not lex as int-dot-ident")
	}
}

func TestLexStrings(t *testing.T) {
	toks := lexAll(t, `"foo\n" c"bar" 'x' '\0'`)

	if toks[0].Kind != TokStringLit || toks[0].Value != "foo\n" {
		t.Errorf("string literal = %q", toks[0].Value)
	}

	if toks[1].Kind != TokCStringLit || toks[1].Value != "bar" {
		t.Errorf("c-string literal = %q (kind %d)", toks[1].Value, toks[1].Kind)
	}

	if toks[2].Kind != TokCharLit || toks[2].Value != "x" {
		t.Errorf("char literal = %q", toks[2].Value)
	}

	if toks[3].Kind != TokCharLit || toks[3].Value[0] != 0 {
		t.Errorf("escaped NUL char literal = %q", toks[3].Value)
	}
}

func TestLexComments(t *testing.T) {
	toks := lexAll(t, "a // comment\nb")
	if len(toks) != 2 || toks[0].Value != "a" || toks[1].Value != "b" {
		t.Errorf("comment not skipped: %d tokens", len(toks))
	}

	if toks[1].Line != 1 {
		t.Errorf("line tracking across comments: line = %d, want 1", toks[1].Line)
	}
}

func TestLexPositions(t *testing.T) {
	toks := lexAll(t, "ab cd\nef")

	wants := []struct{ line, col int }{{0, 0}, {0, 3}, {1, 0}}
	for i, want := range wants {
		if toks[i].Line != want.line || toks[i].Col != want.col {
			t.Errorf("token %d at %d:%d, want %d:%d",
				i, toks[i].Line, toks[i].Col, want.line, want.col)
		}
	}
}
