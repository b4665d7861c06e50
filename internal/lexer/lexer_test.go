package lexer

import "testing"

func tokenLiterals(b *Block) []string {
	out := make([]string, len(b.Tokens))
	for i, t := range b.Tokens {
		out[i] = t.Literal
	}
	return out
}

func TestLexSimpleStatement(t *testing.T) {
	tree, errs := Lex("print(2 + 3 * 4)\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(tree.Root.Children))
	}
	lits := tokenLiterals(tree.Root.Children[0])
	want := []string{"print", "(", "2", "+", "3", "*", "4", ")"}
	if len(lits) != len(want) {
		t.Fatalf("got %v want %v", lits, want)
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Errorf("token %d: got %q want %q", i, lits[i], want[i])
		}
	}
}

func TestLexIndentationBlocks(t *testing.T) {
	src := "if x:\n  print(1)\n  if y:\n    print(2)\n  print(3)\nprint(4)\n"
	tree, errs := Lex(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(tree.Root.Children))
	}
	ifStmt := tree.Root.Children[0]
	if len(ifStmt.Children) != 3 {
		t.Fatalf("expected 3 statements under if, got %d", len(ifStmt.Children))
	}
	nested := ifStmt.Children[1]
	if len(nested.Children) != 1 {
		t.Fatalf("expected nested if to have 1 child, got %d", len(nested.Children))
	}
}

func TestLexBracketContinuation(t *testing.T) {
	src := "x = (1 +\n  2 +\n  3)\n"
	tree, errs := Lex(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	if len(tree.Root.Children) != 1 {
		t.Fatalf("expected 1 logical statement, got %d", len(tree.Root.Children))
	}
}

func TestLexNumberBases(t *testing.T) {
	tree, errs := Lex("x = 0xFF + 0b101 + 0o17 + 1.5\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	toks := tree.Root.Children[0].Tokens
	var ints, floats int
	for _, tk := range toks {
		switch tk.Kind {
		case Int:
			ints++
		case Float:
			floats++
		}
	}
	if ints != 3 || floats != 1 {
		t.Fatalf("got %d ints, %d floats", ints, floats)
	}
}

func TestLexFractionalLiteralInHexBase(t *testing.T) {
	tree, errs := Lex("x = 0x1.8\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	toks := tree.Root.Children[0].Tokens
	f := toks[len(toks)-1]
	if f.Kind != Float || f.Float != 1.5 {
		t.Fatalf("0x1.8 lexed as %+v, want float 1.5", f)
	}
}

func TestLexBlankAndCommentOnlyLines(t *testing.T) {
	src := "x = 1\n\n# just a comment\n   \ny = 2\n"
	tree, errs := Lex(src)
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	if len(tree.Root.Children) != 2 {
		t.Fatalf("expected 2 statements across blank/comment lines, got %d", len(tree.Root.Children))
	}
}

func TestLexStringEscapes(t *testing.T) {
	tree, errs := Lex(`x = "a\nb\tc\x41"` + "\n")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	toks := tree.Root.Children[0].Tokens
	str := toks[len(toks)-1]
	if str.Kind != String {
		t.Fatalf("expected string token, got %v", str.Kind)
	}
	if str.Literal != "a\nb\tcA" {
		t.Fatalf("got %q", str.Literal)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, errs := Lex(`x = "abc`)
	if !errs.HasErrors() {
		t.Fatal("expected an error for unterminated string")
	}
}

func TestLexIntOverflow(t *testing.T) {
	_, errs := Lex("x = 99999999999999999999999999\n")
	if !errs.HasErrors() {
		t.Fatal("expected overflow error")
	}
}

func TestLexInconsistentIndentation(t *testing.T) {
	src := "if x:\n  print(1)\n   print(2)\n"
	_, errs := Lex(src)
	if !errs.HasErrors() {
		t.Fatal("expected inconsistent indentation error")
	}
}

func TestLexKeywordsVsWords(t *testing.T) {
	tree, _ := Lex("class Foo:\n  pass\n")
	toks := tree.Root.Children[0].Tokens
	if toks[0].Kind != Keyword || toks[0].Literal != "class" {
		t.Fatalf("expected keyword class, got %+v", toks[0])
	}
	if toks[1].Kind != Word || toks[1].Literal != "Foo" {
		t.Fatalf("expected word Foo, got %+v", toks[1])
	}
}
