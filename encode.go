package olang

import (
	"fmt"
)

// EncodeNode converts n into plain maps and slices for JSON/YAML export.
// Every map carries "kind" and "pos"; the remaining keys mirror the node's
// fields. Operators are encoded by symbol.
func EncodeNode(n Node) map[string]any {
	m := map[string]any{
		"kind": string(n.Kind()),
		"pos":  n.Span(),
	}
	switch n := n.(type) {
	case *NumericLiteral:
		m["value"] = n.Value
	case *Identifier:
		m["name"] = n.Name
	case *UnaryExpression:
		m["operator"] = n.Operator.String()
		m["operand"] = EncodeNode(n.Operand)
	case *BinaryExpression:
		m["left"] = EncodeNode(n.Left)
		m["operator"] = n.Operator.String()
		m["right"] = EncodeNode(n.Right)
	case *VariableDeclaration:
		m["name"] = EncodeNode(n.Name)
		m["initializer"] = EncodeNode(n.Initializer)
	case *FunctionExpression:
		params := make([]any, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = EncodeNode(p)
		}
		m["parameters"] = params
		m["body"] = encodeList(n.Body)
	case *FunctionCall:
		m["callee"] = EncodeNode(n.Callee)
		m["arguments"] = encodeList(n.Arguments)
	case *Program:
		m["statements"] = encodeList(n.Statements)
	default:
		panic(fmt.Sprintf("olang: unhandled node %T", n))
	}
	return m
}

func encodeList(xs []Expression) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = EncodeNode(x)
	}
	return out
}

// EncodeToken converts t for export.
func EncodeToken(t Token) map[string]any {
	return map[string]any{
		"kind": t.Kind.String(),
		"text": t.Text,
		"pos":  t.Span,
		"line": t.Line,
		"col":  t.Col,
	}
}
