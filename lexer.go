// lexer.go: tokenizer for olang source text.
//
// The lexer is pull-based: the parser asks for one token at a time via Next,
// so tokens are produced lazily and the stream is never materialized unless a
// caller uses Tokenize. A lexer cannot be resumed after an error; restart by
// creating a new one over the same source.
//
// At every position all rules are tried and the longest match wins. When two
// rules match the same length the one declared first wins, which is how the
// keyword `let` beats the identifier rule and `**` beats `*`.
//
// Runs of whitespace that contain a line break become a single Newline token
// (the statement separator); any other whitespace is discarded.
package olang

import (
	"fmt"
	"unicode/utf8"
)

// TokenKind is the lexical category of a token.
type TokenKind int

const (
	EOF TokenKind = iota
	Number
	Let
	ID
	StarStar   // "**"
	Arrow      // "=>"
	Equals     // "="
	Plus       // "+"
	Minus      // "-"
	Star       // "*"
	Slash      // "/"
	Percent    // "%"
	LeftParen  // "("
	RightParen // ")"
	LeftBrace  // "{"
	RightBrace // "}"
	Comma      // ","
	Semicolon  // ";"
	Newline
)

var tokenKindNames = [...]string{
	EOF:        "EOF",
	Number:     "Number",
	Let:        "Let",
	ID:         "Identifier",
	StarStar:   "StarStar",
	Arrow:      "Arrow",
	Equals:     "Equals",
	Plus:       "Plus",
	Minus:      "Minus",
	Star:       "Star",
	Slash:      "Slash",
	Percent:    "Percent",
	LeftParen:  "LeftParen",
	RightParen: "RightParen",
	LeftBrace:  "LeftBrace",
	RightBrace: "RightBrace",
	Comma:      "Comma",
	Semicolon:  "Semicolon",
	Newline:    "Newline",
}

// String returns the stable name of the kind.
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// TokenKinds lists every token kind in declaration order.
func TokenKinds() []TokenKind {
	out := make([]TokenKind, len(tokenKindNames))
	for i := range tokenKindNames {
		out[i] = TokenKind(i)
	}
	return out
}

// Token is a lexical token. Line and Col are 1-based and refer to the first
// byte of the token.
type Token struct {
	Kind TokenKind
	Text string
	Span Span
	Line int
	Col  int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	if t.Kind == Newline {
		return "newline"
	}
	return fmt.Sprintf("'%s'", t.Text)
}

// LexError reports input that matches no token rule.
type LexError struct {
	Offset int
	Line   int
	Col    int
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Lexer scans an olang source string into tokens.
type Lexer struct {
	src  string
	cur  int
	line int
	col  int
	err  error
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Next returns the next significant token. After the input is exhausted it
// keeps returning EOF; after an error it keeps returning that error.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	for {
		if l.cur >= len(l.src) {
			return Token{Kind: EOF, Span: Span{l.cur, l.cur}, Line: l.line, Col: l.col}, nil
		}
		kind, n := l.longestMatch()
		if n == 0 {
			l.err = &LexError{
				Offset: l.cur,
				Line:   l.line,
				Col:    l.col,
				Msg:    "unexpected character " + l.describeCurrent(),
			}
			return Token{}, l.err
		}
		tok := Token{
			Kind: kind,
			Text: l.src[l.cur : l.cur+n],
			Span: Span{l.cur, l.cur + n},
			Line: l.line,
			Col:  l.col,
		}
		l.advance(n)
		if kind == skipKind {
			continue
		}
		return tok, nil
	}
}

// Tokenize drains a fresh lexer over src. The returned slice ends with EOF.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks, nil
		}
	}
}

//// END_OF_PUBLIC

// skipKind marks whitespace that carries no line break. It never leaves Next.
const skipKind TokenKind = -1

type lexRule struct {
	kind  TokenKind
	match func(s string) int
}

// Declaration order is the tie-breaker.
var lexRules = []lexRule{
	{Number, matchNumber},
	{Let, matchWord("let")},
	{ID, matchIdentifier},
	{StarStar, matchLiteral("**")},
	{Arrow, matchLiteral("=>")},
	{Equals, matchLiteral("=")},
	{Plus, matchLiteral("+")},
	{Minus, matchLiteral("-")},
	{Star, matchLiteral("*")},
	{Slash, matchLiteral("/")},
	{Percent, matchLiteral("%")},
	{LeftParen, matchLiteral("(")},
	{RightParen, matchLiteral(")")},
	{LeftBrace, matchLiteral("{")},
	{RightBrace, matchLiteral("}")},
	{Comma, matchLiteral(",")},
	{Semicolon, matchLiteral(";")},
	{Newline, matchNewline},
	{skipKind, matchSpace},
}

func (l *Lexer) longestMatch() (TokenKind, int) {
	rest := l.src[l.cur:]
	best, bestLen := EOF, 0
	for _, r := range lexRules {
		if n := r.match(rest); n > bestLen {
			best, bestLen = r.kind, n
		}
	}
	return best, bestLen
}

// describeCurrent quotes the rune at the cursor, or the raw byte when the
// input is not valid UTF-8 there.
func (l *Lexer) describeCurrent() string {
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	if r == utf8.RuneError && size <= 1 {
		return fmt.Sprintf("'\\x%02x'", l.src[l.cur])
	}
	return fmt.Sprintf("%q", r)
}

// advance moves the cursor n bytes. Columns count runes.
func (l *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		c := l.src[l.cur]
		switch {
		case c == '\n':
			l.line++
			l.col = 1
		case !utf8.RuneStart(c):
		default:
			l.col++
		}
		l.cur++
	}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
func isBlank(c byte) bool      { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// \d+(\.\d+)?
func matchNumber(s string) int {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return 0
	}
	if i+1 < len(s) && s[i] == '.' && isDigit(s[i+1]) {
		i += 2
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

func matchIdentifier(s string) int {
	if len(s) == 0 || !isIdentStart(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return i
}

// matchWord matches w exactly; the identifier rule wins on longer words
// because it produces a longer match.
func matchWord(w string) func(string) int {
	return func(s string) int {
		if len(s) >= len(w) && s[:len(w)] == w {
			return len(w)
		}
		return 0
	}
}

func matchLiteral(lit string) func(string) int {
	return matchWord(lit)
}

func matchNewline(s string) int {
	i, sawNL := 0, false
	for i < len(s) && isBlank(s[i]) {
		if s[i] == '\n' {
			sawNL = true
		}
		i++
	}
	if !sawNL {
		return 0
	}
	return i
}

func matchSpace(s string) int {
	i := 0
	for i < len(s) && isBlank(s[i]) && s[i] != '\n' {
		i++
	}
	return i
}
