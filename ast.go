// ast.go: the olang syntax tree.
//
// Node is a closed sum type: the unexported marker method keeps the set of
// variants fixed to the types in this file. Every traversal (printer,
// evaluator, encoder, Equal) switches over the concrete types and panics in
// the default branch, so a new variant shows up as a failing test in every
// consumer that forgot it.
//
// Nodes are built once by the parser and never mutated afterwards; a parsed
// tree may be shared read-only between goroutines.
package olang

import (
	"fmt"
)

// NodeKind names a node variant. The string values are stable and are part
// of the export format consumed by external tools.
type NodeKind string

const (
	KindNumericLiteral      NodeKind = "NumericLiteral"
	KindIdentifier          NodeKind = "Identifier"
	KindUnaryExpression     NodeKind = "UnaryExpression"
	KindBinaryExpression    NodeKind = "BinaryExpression"
	KindVariableDeclaration NodeKind = "VariableDeclaration"
	KindFunctionExpression  NodeKind = "FunctionExpression"
	KindFunctionCall        NodeKind = "FunctionCall"
	KindProgram             NodeKind = "Program"
)

// NodeKinds lists every node kind.
func NodeKinds() []NodeKind {
	return []NodeKind{
		KindNumericLiteral,
		KindIdentifier,
		KindUnaryExpression,
		KindBinaryExpression,
		KindVariableDeclaration,
		KindFunctionExpression,
		KindFunctionCall,
		KindProgram,
	}
}

// Node is implemented by every syntax tree node.
type Node interface {
	Kind() NodeKind
	Span() Span
	node()
}

// Expression is any node that may appear as a statement or operand.
// Every variant except Program is an Expression.
type Expression interface {
	Node
	expr()
}

// BinaryOperator enumerates the binary operators.
type BinaryOperator int

const (
	OpAssign BinaryOperator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
)

var binaryOpSymbols = [...]string{
	OpAssign:   "=",
	OpAdd:      "+",
	OpSubtract: "-",
	OpMultiply: "*",
	OpDivide:   "/",
	OpModulo:   "%",
	OpPower:    "**",
}

var binaryOpNames = [...]string{
	OpAssign:   "Assign",
	OpAdd:      "Add",
	OpSubtract: "Subtract",
	OpMultiply: "Multiply",
	OpDivide:   "Divide",
	OpModulo:   "Modulo",
	OpPower:    "Power",
}

// String returns the operator's source symbol.
func (op BinaryOperator) String() string {
	if op >= 0 && int(op) < len(binaryOpSymbols) {
		return binaryOpSymbols[op]
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

// Name returns the operator's stable name ("Add", "Power", ...).
func (op BinaryOperator) Name() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return op.String()
}

// UnaryOperator enumerates the prefix operators. Negation is the only one.
type UnaryOperator int

const (
	OpNegate UnaryOperator = iota
)

func (op UnaryOperator) String() string {
	if op == OpNegate {
		return "-"
	}
	return fmt.Sprintf("UnaryOperator(%d)", int(op))
}

// Name returns the operator's stable name.
func (op UnaryOperator) Name() string {
	if op == OpNegate {
		return "Negate"
	}
	return op.String()
}

type base struct {
	Loc Span
}

func (b *base) Span() Span { return b.Loc }
func (*base) node()        {}

// NumericLiteral is an integer or decimal literal.
type NumericLiteral struct {
	base
	Value float64
}

// Identifier is a name reference.
type Identifier struct {
	base
	Name string
}

// UnaryExpression is a prefix operator applied to an operand.
type UnaryExpression struct {
	base
	Operator UnaryOperator
	Operand  Expression
}

// BinaryExpression covers arithmetic and assignment.
type BinaryExpression struct {
	base
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

// VariableDeclaration is `let name = initializer`.
type VariableDeclaration struct {
	base
	Name        *Identifier
	Initializer Expression
}

// FunctionExpression is `(params) => body`. Parameter names are unique.
// A single-expression body is stored as a one-element Body.
type FunctionExpression struct {
	base
	Parameters []*Identifier
	Body       []Expression
}

// FunctionCall is `callee(args...)`.
type FunctionCall struct {
	base
	Callee    *Identifier
	Arguments []Expression
}

// Program is the root of every parse.
type Program struct {
	base
	Statements []Expression
}

func (*NumericLiteral) Kind() NodeKind      { return KindNumericLiteral }
func (*Identifier) Kind() NodeKind          { return KindIdentifier }
func (*UnaryExpression) Kind() NodeKind     { return KindUnaryExpression }
func (*BinaryExpression) Kind() NodeKind    { return KindBinaryExpression }
func (*VariableDeclaration) Kind() NodeKind { return KindVariableDeclaration }
func (*FunctionExpression) Kind() NodeKind  { return KindFunctionExpression }
func (*FunctionCall) Kind() NodeKind        { return KindFunctionCall }
func (*Program) Kind() NodeKind             { return KindProgram }

func (*NumericLiteral) expr()      {}
func (*Identifier) expr()          {}
func (*UnaryExpression) expr()     {}
func (*BinaryExpression) expr()    {}
func (*VariableDeclaration) expr() {}
func (*FunctionExpression) expr()  {}
func (*FunctionCall) expr()        {}

// ---------------------------------------------------------------------------
// Constructors. Nodes built here have a zero Span; the parser sets spans
// directly. Tests and tools use these to describe expected trees.
// ---------------------------------------------------------------------------

func NewNumericLiteral(v float64) *NumericLiteral { return &NumericLiteral{Value: v} }

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

func NewUnaryExpression(op UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{Operator: op, Operand: operand}
}

func NewBinaryExpression(left Expression, op BinaryOperator, right Expression) *BinaryExpression {
	return &BinaryExpression{Left: left, Operator: op, Right: right}
}

func NewVariableDeclaration(name *Identifier, init Expression) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Initializer: init}
}

func NewFunctionExpression(params []*Identifier, body []Expression) *FunctionExpression {
	return &FunctionExpression{Parameters: params, Body: body}
}

func NewFunctionCall(callee *Identifier, args []Expression) *FunctionCall {
	return &FunctionCall{Callee: callee, Arguments: args}
}

func NewProgram(stmts ...Expression) *Program { return &Program{Statements: stmts} }

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *NumericLiteral, *Identifier:
		return nil
	case *UnaryExpression:
		return []Node{n.Operand}
	case *BinaryExpression:
		return []Node{n.Left, n.Right}
	case *VariableDeclaration:
		return []Node{n.Name, n.Initializer}
	case *FunctionExpression:
		out := make([]Node, 0, len(n.Parameters)+len(n.Body))
		for _, p := range n.Parameters {
			out = append(out, p)
		}
		for _, s := range n.Body {
			out = append(out, s)
		}
		return out
	case *FunctionCall:
		out := make([]Node, 0, 1+len(n.Arguments))
		out = append(out, n.Callee)
		for _, a := range n.Arguments {
			out = append(out, a)
		}
		return out
	case *Program:
		out := make([]Node, 0, len(n.Statements))
		for _, s := range n.Statements {
			out = append(out, s)
		}
		return out
	default:
		panic(fmt.Sprintf("olang: unhandled node %T", n))
	}
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Equal reports whether a and b are structurally equal. Spans are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *NumericLiteral:
		return x.Value == b.(*NumericLiteral).Value
	case *Identifier:
		return x.Name == b.(*Identifier).Name
	case *UnaryExpression:
		y := b.(*UnaryExpression)
		return x.Operator == y.Operator && Equal(x.Operand, y.Operand)
	case *BinaryExpression:
		y := b.(*BinaryExpression)
		return x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *VariableDeclaration:
		y := b.(*VariableDeclaration)
		return Equal(x.Name, y.Name) && Equal(x.Initializer, y.Initializer)
	case *FunctionExpression:
		y := b.(*FunctionExpression)
		if len(x.Parameters) != len(y.Parameters) {
			return false
		}
		for i := range x.Parameters {
			if x.Parameters[i].Name != y.Parameters[i].Name {
				return false
			}
		}
		return equalList(x.Body, y.Body)
	case *FunctionCall:
		y := b.(*FunctionCall)
		return Equal(x.Callee, y.Callee) && equalList(x.Arguments, y.Arguments)
	case *Program:
		return equalList(x.Statements, b.(*Program).Statements)
	default:
		panic(fmt.Sprintf("olang: unhandled node %T", a))
	}
}

func equalList(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
