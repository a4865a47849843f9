// printer.go: renders AST nodes back to source text.
//
// Print renders a node as olang source. Binary and unary expressions are
// always parenthesized, so the output does not depend on precedence and
// re-parsing it yields a tree Equal to the input. Function bodies are always
// written as braced blocks, one statement per line, indented two spaces.
package olang

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders n as source text.
func Print(n Node) string {
	var b strings.Builder
	p := pp{out: out{b: &b}}
	p.node(n)
	return b.String()
}

// Pretty parses src and returns it reprinted.
func Pretty(src string) (string, error) {
	prog, err := Parse(src)
	if err != nil {
		return "", WrapErrorWithSource(err, src)
	}
	return Print(prog), nil
}

/* ---------- output buffer ---------- */

type out struct {
	b     *strings.Builder
	depth int
}

func (o *out) write(s string) { o.b.WriteString(s) }
func (o *out) nl()            { o.b.WriteByte('\n') }
func (o *out) pad() {
	for i := 0; i < o.depth; i++ {
		o.b.WriteString("  ")
	}
}
func (o *out) withIndent(fn func()) { o.depth++; fn(); o.depth-- }

/* ---------- printer ---------- */

type pp struct {
	out out
}

func (p *pp) write(s string) { p.out.write(s) }

func (p *pp) node(n Node) {
	switch n := n.(type) {
	case *Program:
		for i, s := range n.Statements {
			if i > 0 {
				p.out.nl()
				p.out.pad()
			}
			p.node(s)
		}
	case *NumericLiteral:
		p.write(strconv.FormatFloat(n.Value, 'f', -1, 64))
	case *Identifier:
		p.write(n.Name)
	case *UnaryExpression:
		p.write("(" + n.Operator.String())
		p.operand(n.Operand)
		p.write(")")
	case *BinaryExpression:
		p.write("(")
		p.operand(n.Left)
		p.write(" " + n.Operator.String() + " ")
		p.operand(n.Right)
		p.write(")")
	case *VariableDeclaration:
		p.write("let " + n.Name.Name + " = ")
		p.node(n.Initializer)
	case *FunctionExpression:
		p.function(n)
	case *FunctionCall:
		p.write(n.Callee.Name + "(")
		for i, a := range n.Arguments {
			if i > 0 {
				p.write(", ")
			}
			p.node(a)
		}
		p.write(")")
	default:
		panic(fmt.Sprintf("olang: unhandled node %T", n))
	}
}

// operand prints an operator operand. Declarations and function literals are
// only reachable through a parenthesized expression there.
func (p *pp) operand(n Expression) {
	switch n.(type) {
	case *VariableDeclaration, *FunctionExpression:
		p.write("(")
		p.node(n)
		p.write(")")
	default:
		p.node(n)
	}
}

func (p *pp) function(n *FunctionExpression) {
	names := make([]string, len(n.Parameters))
	for i, id := range n.Parameters {
		names[i] = id.Name
	}
	p.write("(" + strings.Join(names, ", ") + ") => {")
	if len(n.Body) == 0 {
		p.write("}")
		return
	}
	p.out.withIndent(func() {
		for _, s := range n.Body {
			p.out.nl()
			p.out.pad()
			p.node(s)
		}
	})
	p.out.nl()
	p.out.pad()
	p.write("}")
}
