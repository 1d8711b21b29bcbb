package parser

import "testing"

func tokenKinds(toks []Token) []TokenKind {
	kinds := make([]TokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestTokenizeKeywordsAndIdents(t *testing.T) {
	toks, err := NewLexer([]byte("int void const x return0")).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokInt32, TokVoid, TokConst, TokIdent, TokIdent, TokEOF}
	got := tokenKinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeTwoCharOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want TokenKind
	}{
		{"eq", "==", TokEq},
		{"ne", "!=", TokNe},
		{"le", "<=", TokLe},
		{"ge", ">=", TokGe},
		{"and", "&&", TokAnd},
		{"or", "||", TokOr},
		{"not", "!", TokNot},
		{"lt", "<", TokLt},
		{"gt", ">", TokGt},
		{"assign", "=", TokAssign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := NewLexer([]byte(tt.src)).Tokenize()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if toks[0].Kind != tt.want {
				t.Errorf("got %v, want %v", toks[0].Kind, tt.want)
			}
		})
	}
}

func TestTokenizeIntegerLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int32
	}{
		{"decimal", "42", 42},
		{"hex", "0x2A", 42},
		{"hex upper", "0X2a", 42},
		{"octal", "052", 42},
		{"zero", "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := NewLexer([]byte(tt.src)).Tokenize()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if toks[0].Kind != TokInt {
				t.Fatalf("got kind %v, want TokInt", toks[0].Kind)
			}
			if toks[0].Int != tt.want {
				t.Errorf("got %d, want %d", toks[0].Int, tt.want)
			}
		})
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	toks, err := NewLexer([]byte("1 // line comment\n+ /* block\ncomment */ 2")).Tokenize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{TokInt, TokPlus, TokInt, TokEOF}
	got := tokenKinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenizeRejectsUnknownCharacter(t *testing.T) {
	if _, err := NewLexer([]byte("1 $ 2")).Tokenize(); err == nil {
		t.Fatal("expected an error for an unrecognized character")
	}
}
