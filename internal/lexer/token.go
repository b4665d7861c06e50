package lexer

import "github.com/wings-lang/wings/internal/diag"

// Kind classifies a Token.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Symbol
	Word
	Keyword
	EOF
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case Word:
		return "word"
	case Keyword:
		return "keyword"
	case EOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Token is one lexical unit.
type Token struct {
	Kind    Kind
	Literal string // raw text for symbols/words/keywords; decoded text for strings
	Int     int64
	Float   float64
	Bool    bool
	Pos     diag.Pos
}

// Keywords is the closed set of reserved words.
var Keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "elif": true, "else": true,
	"while": true, "for": true, "break": true, "continue": true, "pass": true,
	"def": true, "lambda": true, "return": true,
	"class": true,
	"try": true, "except": true, "finally": true, "raise": true,
	"import": true, "from": true, "as": true,
	"global": true, "nonlocal": true,
	"with": true,
	"True": true, "False": true, "None": true,
	"del": true,
}

// Symbols is every operator/punctuation symbol, one- and multi-character, used by the
// lexer's longest-prefix match. Order does not matter; length is what is
// tried longest-first.
var Symbols = []string{
	// three-char
	"**=", "//=", "<<=", ">>=",
	// two-char
	"**", "//", "==", "!=", "<=", ">=", "->", "::",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>",
	// one-char
	"+", "-", "*", "/", "%", "(", ")", "[", "]", "{", "}",
	",", ":", ".", "=", "<", ">", "&", "|", "^", "~", "@", ";",
}
