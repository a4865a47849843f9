// parser.go: recursive-descent parser for olang.
//
// OVERVIEW
// --------
// The parser pulls tokens lazily from the lexer and builds a typed AST rooted
// at *Program. Precedence is encoded structurally, lowest binding outermost:
//
//	expression     := function | declaration | assignment
//	assignment     := additive ( "=" additive )*            left-assoc
//	additive       := multiplicative ( ("+"|"-") multiplicative )*
//	multiplicative := power ( ("*"|"/"|"%") power )*
//	power          := term ( "**" power )?                   right-assoc
//	term           := number | call | identifier | "-" term | "(" expression ")"
//	function       := "(" [id {"," id}] ")" "=>" ( expression | block )
//	declaration    := "let" id "=" expression
//	block          := "{" statements "}"
//	program        := statements EOF
//
// The left-associative rules are loops that accumulate into the left operand,
// so long chains do not grow the Go stack. Only power recurses on its right
// operand.
//
// Expression alternatives are an ordered choice. A function literal is
// recognised by a bounded lookahead over "( ids ) =>" before anything is
// consumed, so at most one alternative ever succeeds and there is no
// backtracking state.
//
// Newlines
// --------
// The lexer emits Newline tokens. They separate statements at the top level
// and inside blocks, are skipped after any operator, "=", "=>" or ",", and are
// ignored entirely inside parentheses.
//
// Errors
// ------
// All failures are *ParseError (or *LexError when the lexer fails while the
// parser pulls a token). A ParseError raised at end of input is marked
// Incomplete so line-oriented front ends can ask for more input.
package olang

import (
	"errors"
	"fmt"
	"strconv"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseError reports a token sequence that does not match the grammar.
type ParseError struct {
	Offset     int
	Line       int
	Col        int
	Msg        string
	Expected   string // name of the construct the parser wanted
	Found      string // rendering of the offending token
	Incomplete bool   // the failure happened at end of input
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err is a parse error caused by running out of
// input, i.e. the source is a valid prefix that needs more text.
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Incomplete
}

// ParseOption configures a parse.
type ParseOption func(*parser)

// WithParseDepth bounds expression nesting. Zero means unbounded.
func WithParseDepth(n int) ParseOption {
	return func(p *parser) { p.maxDepth = n }
}

// Parse turns src into a *Program. The returned error is a *LexError or a
// *ParseError; the program is nil whenever the error is non-nil.
func Parse(src string, opts ...ParseOption) (prog *Program, err error) {
	p := &parser{lex: NewLexer(src), src: src, outer: map[Node]Span{}}
	for _, o := range opts {
		o(p)
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	return p.program(), nil
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(src string) *Program {
	prog, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return prog
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

type bailout struct{ err error }

type parser struct {
	lex *Lexer
	src string
	buf []Token // lookahead, filled lazily

	// newline handling: top of stack true means newlines are ignored
	nl []bool

	// outer extents of parenthesized expressions, used for parent spans
	outer map[Node]Span

	depth    int
	maxDepth int
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) fail(err error) { panic(bailout{err}) }

func (p *parser) raw(i int) Token {
	for len(p.buf) <= i {
		t, err := p.lex.Next()
		if err != nil {
			p.fail(err)
		}
		p.buf = append(p.buf, t)
		if t.Kind == EOF {
			break
		}
	}
	if i >= len(p.buf) {
		return p.buf[len(p.buf)-1]
	}
	return p.buf[i]
}

func (p *parser) newlinesIgnored() bool {
	return len(p.nl) > 0 && p.nl[len(p.nl)-1]
}

func (p *parser) peek() Token {
	for {
		t := p.raw(0)
		if t.Kind == Newline && p.newlinesIgnored() {
			p.buf = p.buf[1:]
			continue
		}
		return t
	}
}

func (p *parser) next() Token {
	t := p.peek()
	if t.Kind != EOF {
		p.buf = p.buf[1:]
	}
	return t
}

func (p *parser) check(k TokenKind) bool { return p.peek().Kind == k }

func (p *parser) accept(k TokenKind) bool {
	if p.check(k) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(k TokenKind, what string) Token {
	if p.check(k) {
		return p.next()
	}
	p.errorAt(p.peek(), what)
	return Token{}
}

func (p *parser) skipNewlines() {
	for p.check(Newline) {
		p.next()
	}
}

func (p *parser) skipSeparators() {
	for p.check(Newline) || p.check(Semicolon) {
		p.next()
	}
}

func (p *parser) pushNL(ignore bool) { p.nl = append(p.nl, ignore) }
func (p *parser) popNL()             { p.nl = p.nl[:len(p.nl)-1] }

func (p *parser) errorAt(t Token, expected string) {
	p.fail(&ParseError{
		Offset:     t.Span.Start,
		Line:       t.Line,
		Col:        t.Col,
		Msg:        fmt.Sprintf("expected %s, found %s", expected, t),
		Expected:   expected,
		Found:      t.String(),
		Incomplete: t.Kind == EOF,
	})
}

func (p *parser) errorMsg(t Token, msg string) {
	p.fail(&ParseError{
		Offset:     t.Span.Start,
		Line:       t.Line,
		Col:        t.Col,
		Msg:        msg,
		Found:      t.String(),
		Incomplete: t.Kind == EOF,
	})
}

func (p *parser) enter() {
	p.depth++
	if p.maxDepth > 0 && p.depth > p.maxDepth {
		p.errorMsg(p.peek(), fmt.Sprintf("expression nested deeper than %d levels", p.maxDepth))
	}
}

func (p *parser) leave() { p.depth-- }

// extent is the span of n including any parentheses that wrapped it.
func (p *parser) extent(n Node) Span {
	if sp, ok := p.outer[n]; ok {
		return sp
	}
	return n.Span()
}

// ───────────────────────────────── grammar ──────────────────────────────────

func (p *parser) program() *Program {
	prog := &Program{base: base{Loc: Span{0, len(p.src)}}}
	p.skipSeparators()
	for !p.check(EOF) {
		prog.Statements = append(prog.Statements, p.expression())
		if p.check(EOF) {
			break
		}
		if !p.check(Newline) && !p.check(Semicolon) {
			p.errorAt(p.peek(), "end of input")
		}
		p.skipSeparators()
	}
	return prog
}

func (p *parser) expression() Expression {
	p.enter()
	defer p.leave()

	switch {
	case p.check(LeftParen) && p.atFunctionLiteral():
		return p.function()
	case p.check(Let):
		return p.declaration()
	default:
		return p.assignment()
	}
}

// atFunctionLiteral scans "( [id {, id}] ) =>" without consuming anything.
// A trailing comma is let through so that params() reports it.
func (p *parser) atFunctionLiteral() bool {
	i := 1
	skip := func() {
		for p.raw(i).Kind == Newline {
			i++
		}
	}
	skip()
	for p.raw(i).Kind != RightParen {
		if p.raw(i).Kind == EOF {
			// let the function rule report the unfinished parameter list
			return true
		}
		if p.raw(i).Kind != ID {
			return false
		}
		i++
		skip()
		switch p.raw(i).Kind {
		case Comma:
			i++
			skip()
		case RightParen, EOF:
		default:
			return false
		}
	}
	return p.raw(i+1).Kind == Arrow
}

func (p *parser) function() *FunctionExpression {
	open := p.expect(LeftParen, "'('")
	params := p.params()
	p.expect(Arrow, "'=>'")
	p.skipNewlines()

	fn := &FunctionExpression{Parameters: params}
	if p.check(LeftBrace) {
		var rb Token
		fn.Body, rb = p.block()
		fn.Loc = Span{open.Span.Start, rb.Span.End}
		return fn
	}
	body := p.expression()
	fn.Body = []Expression{body}
	fn.Loc = Span{open.Span.Start, p.extent(body).End}
	return fn
}

// params parses the parameter list after "(" up to and including ")".
func (p *parser) params() []*Identifier {
	p.pushNL(true)
	var params []*Identifier
	seen := map[string]bool{}
	for more := !p.check(RightParen); more; more = p.accept(Comma) {
		t := p.expect(ID, "parameter name")
		if seen[t.Text] {
			p.errorMsg(t, fmt.Sprintf("duplicate parameter '%s'", t.Text))
		}
		seen[t.Text] = true
		params = append(params, &Identifier{base: base{Loc: t.Span}, Name: t.Text})
	}
	p.expect(RightParen, "')'")
	p.popNL()
	return params
}

func (p *parser) block() ([]Expression, Token) {
	p.expect(LeftBrace, "'{'")
	p.pushNL(false)
	var stmts []Expression
	p.skipSeparators()
	for !p.check(RightBrace) {
		if p.check(EOF) {
			p.errorAt(p.peek(), "'}'")
		}
		stmts = append(stmts, p.expression())
		if p.check(RightBrace) {
			break
		}
		if !p.check(Newline) && !p.check(Semicolon) {
			p.errorAt(p.peek(), "';', newline or '}'")
		}
		p.skipSeparators()
	}
	rb := p.expect(RightBrace, "'}'")
	p.popNL()
	return stmts, rb
}

func (p *parser) declaration() *VariableDeclaration {
	let := p.expect(Let, "'let'")
	t := p.expect(ID, "variable name")
	p.expect(Equals, "'='")
	p.skipNewlines()
	init := p.expression()
	return &VariableDeclaration{
		base:        base{Loc: Span{let.Span.Start, p.extent(init).End}},
		Name:        &Identifier{base: base{Loc: t.Span}, Name: t.Text},
		Initializer: init,
	}
}

func (p *parser) binary(left Expression, op BinaryOperator, right Expression) *BinaryExpression {
	return &BinaryExpression{
		base:     base{Loc: p.extent(left).Join(p.extent(right))},
		Left:     left,
		Operator: op,
		Right:    right,
	}
}

func (p *parser) assignment() Expression {
	left := p.additive()
	for p.accept(Equals) {
		p.skipNewlines()
		left = p.binary(left, OpAssign, p.additive())
	}
	return left
}

func (p *parser) additive() Expression {
	left := p.multiplicative()
	for {
		var op BinaryOperator
		switch p.peek().Kind {
		case Plus:
			op = OpAdd
		case Minus:
			op = OpSubtract
		default:
			return left
		}
		p.next()
		p.skipNewlines()
		left = p.binary(left, op, p.multiplicative())
	}
}

func (p *parser) multiplicative() Expression {
	left := p.power()
	for {
		var op BinaryOperator
		switch p.peek().Kind {
		case Star:
			op = OpMultiply
		case Slash:
			op = OpDivide
		case Percent:
			op = OpModulo
		default:
			return left
		}
		p.next()
		p.skipNewlines()
		left = p.binary(left, op, p.power())
	}
}

func (p *parser) power() Expression {
	left := p.term()
	if !p.accept(StarStar) {
		return left
	}
	p.skipNewlines()
	p.enter()
	defer p.leave()
	return p.binary(left, OpPower, p.power())
}

func (p *parser) term() Expression {
	t := p.peek()
	switch t.Kind {
	case Number:
		p.next()
		v, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			p.errorMsg(t, fmt.Sprintf("invalid number %q", t.Text))
		}
		return &NumericLiteral{base: base{Loc: t.Span}, Value: v}

	case ID:
		p.next()
		id := &Identifier{base: base{Loc: t.Span}, Name: t.Text}
		if p.check(LeftParen) {
			return p.call(id)
		}
		return id

	case Minus:
		p.next()
		p.enter()
		defer p.leave()
		operand := p.term()
		return &UnaryExpression{
			base:     base{Loc: Span{t.Span.Start, p.extent(operand).End}},
			Operator: OpNegate,
			Operand:  operand,
		}

	case LeftParen:
		p.next()
		p.pushNL(true)
		e := p.expression()
		rp := p.expect(RightParen, "')'")
		p.popNL()
		p.outer[e] = Span{t.Span.Start, rp.Span.End}
		return e

	default:
		p.errorAt(t, "expression")
		return nil
	}
}

func (p *parser) call(callee *Identifier) *FunctionCall {
	p.expect(LeftParen, "'('")
	p.pushNL(true)
	var args []Expression
	for more := !p.check(RightParen); more; more = p.accept(Comma) {
		args = append(args, p.expression())
	}
	rp := p.expect(RightParen, "')'")
	p.popNL()
	return &FunctionCall{
		base:      base{Loc: Span{callee.Span().Start, rp.Span.End}},
		Callee:    callee,
		Arguments: args,
	}
}
