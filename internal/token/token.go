// Package token defines the lexical tokens of the Lox language.
package token

import "fmt"

// Kind identifies the class of a token.
type Kind uint8

const (
	// Single-character tokens.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	Import

	// Other.
	EOF
	UnterminatedString
	Unknown
)

var kindNames = map[Kind]string{
	LeftParen:          "'('",
	RightParen:         "')'",
	LeftBrace:          "'{'",
	RightBrace:         "'}'",
	LeftBracket:        "'['",
	RightBracket:       "']'",
	Comma:              "','",
	Dot:                "'.'",
	Minus:              "'-'",
	Plus:               "'+'",
	Semicolon:          "';'",
	Slash:              "'/'",
	Star:               "'*'",
	Bang:               "'!'",
	BangEqual:          "'!='",
	Equal:              "'='",
	EqualEqual:         "'=='",
	Greater:            "'>'",
	GreaterEqual:       "'>='",
	Less:               "'<'",
	LessEqual:          "'<='",
	Identifier:         "identifier",
	String:             "string",
	Number:             "number",
	And:                "'and'",
	Class:              "'class'",
	Else:               "'else'",
	False:              "'false'",
	Fun:                "'fun'",
	For:                "'for'",
	If:                 "'if'",
	Nil:                "nil",
	Or:                 "'or'",
	Print:              "'print'",
	Return:             "'return'",
	Super:              "'super'",
	This:               "'this'",
	True:               "'true'",
	Var:                "'var'",
	While:              "'while'",
	Import:             "'import'",
	EOF:                "<EOF>",
	UnterminatedString: "<Unterminated String>",
	Unknown:            "<Unknown>",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]Kind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
	"import": Import,
}

// Token is a lexical token. Text holds the identifier or string payload,
// Number the numeric payload; both are zero for other kinds.
type Token struct {
	Kind   Kind
	Text   string
	Number float64
}

func (t Token) String() string {
	return t.Kind.String()
}
