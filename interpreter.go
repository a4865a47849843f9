// interpreter.go: tree-walking evaluator for olang programs.
//
// EXECUTION & SCOPING
// -------------------
// Evaluation is a recursive walk over the typed AST. Each node evaluates to a
// Value in the current *Scope; the only side effect is adding bindings to the
// current frame (`let` and `=`).
//
//   - Program statements run in one root frame owned by the run.
//   - A call creates a fresh frame whose parent is the frame active at the
//     *call site*. Function values do not capture their definition scope, so
//     free names in a body are resolved through the caller's chain.
//   - Binding is declare-once per frame: `let x` or `x = …` when x is already
//     bound in the current frame is a runtime error. Outer bindings are
//     shadowed, never overwritten.
//
// Entry points:
//   - Evaluate(prog, opts...) evaluates in a fresh root frame that is dropped
//     when the call returns.
//   - NewInterpreter + Run/EvalSource keep the root frame (Global) between
//     calls, which is what the REPL uses.
//
// TRACING
// -------
// With WithTracer, every node reports an Event after its value is produced,
// so events arrive in post-order (children before parents). Tracing only
// reads state and never changes the result.
package olang

import (
	"fmt"
	"math"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// RuntimeErrorKind classifies runtime failures. Kinds are errors themselves,
// so errors.Is(err, ErrUndefined) matches any *RuntimeError of that kind.
type RuntimeErrorKind int

const (
	ErrUndefined RuntimeErrorKind = iota + 1
	ErrType
	ErrMissingArgument
	ErrDuplicateBinding
	ErrNotCallable
	ErrInvalidAssignment
	ErrDepthExceeded
)

var runtimeErrorKindNames = map[RuntimeErrorKind]string{
	ErrUndefined:         "undefined",
	ErrType:              "type error",
	ErrMissingArgument:   "missing argument",
	ErrDuplicateBinding:  "duplicate binding",
	ErrNotCallable:       "not callable",
	ErrInvalidAssignment: "invalid assignment",
	ErrDepthExceeded:     "call depth exceeded",
}

func (k RuntimeErrorKind) Error() string {
	if s, ok := runtimeErrorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("runtime error kind %d", int(k))
}

// RuntimeError aborts an evaluation. Span locates the node that failed.
type RuntimeError struct {
	Kind RuntimeErrorKind
	Msg  string
	Span Span
}

func (e *RuntimeError) Error() string { return "RUNTIME ERROR: " + e.Msg }

func (e *RuntimeError) Unwrap() error { return e.Kind }

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTracer delivers evaluation events to t.
func WithTracer(t Tracer) Option {
	return func(ip *Interpreter) { ip.tracer = t }
}

// WithMaxDepth bounds nested function calls. Zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(ip *Interpreter) { ip.maxDepth = n }
}

// Interpreter evaluates programs against a persistent root scope.
// An Interpreter is not safe for concurrent use; create one per goroutine.
// Parsed programs may be shared between interpreters.
type Interpreter struct {
	Global *Scope

	tracer   Tracer
	maxDepth int
	depth    int
	seq      int
}

// NewInterpreter returns an interpreter with an empty Global scope.
func NewInterpreter(opts ...Option) *Interpreter {
	ip := &Interpreter{Global: NewScope(nil)}
	for _, o := range opts {
		o(ip)
	}
	return ip
}

// Evaluate runs prog in a fresh root scope and returns the value of its last
// statement (null for an empty program).
func Evaluate(prog *Program, opts ...Option) (Value, error) {
	return NewInterpreter(opts...).Run(prog)
}

// Run evaluates prog in ip.Global. Bindings made by prog persist.
func (ip *Interpreter) Run(prog *Program) (Value, error) {
	ip.depth = 0
	return ip.eval(prog, ip.Global)
}

// EvalSource parses src and runs it in ip.Global. Errors are returned as
// produced (*LexError, *ParseError or *RuntimeError); use
// WrapErrorWithSource to render them.
func (ip *Interpreter) EvalSource(src string, opts ...ParseOption) (Value, error) {
	prog, err := Parse(src, opts...)
	if err != nil {
		return Null, err
	}
	return ip.Run(prog)
}

// Call applies fn to already evaluated arguments with a call scope chained to
// ip.Global. It follows the same arity rules and depth limit as a call
// expression.
func (ip *Interpreter) Call(fn Value, args ...Value) (Value, error) {
	f, ok := fn.AsFun()
	if !ok {
		return Null, &RuntimeError{Kind: ErrNotCallable, Msg: fmt.Sprintf("%s is not a function", fn.Tag)}
	}
	if len(args) < len(f.Parameters) {
		return Null, &RuntimeError{
			Kind: ErrMissingArgument,
			Msg:  fmt.Sprintf("missing argument '%s'", f.Parameters[len(args)].Name),
			Span: f.Span(),
		}
	}
	if ip.maxDepth > 0 && ip.depth >= ip.maxDepth {
		return Null, &RuntimeError{
			Kind: ErrDepthExceeded,
			Msg:  fmt.Sprintf("call depth exceeded %d", ip.maxDepth),
			Span: f.Span(),
		}
	}
	frame := NewScope(ip.Global)
	for i, p := range f.Parameters {
		if !frame.Declare(p.Name, args[i]) {
			return Null, duplicate(p)
		}
	}
	ip.depth++
	defer func() { ip.depth-- }()
	return ip.body(f, frame)
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
//                                 PRIVATE
////////////////////////////////////////////////////////////////////////////////

func rtErr(kind RuntimeErrorKind, n Node, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...), Span: n.Span()}
}

func duplicate(id *Identifier) *RuntimeError {
	return rtErr(ErrDuplicateBinding, id, "variable already declared: %s", id.Name)
}

func (ip *Interpreter) emit(n Node, scope *Scope, v Value) {
	if ip.tracer == nil {
		return
	}
	ip.seq++
	ip.tracer.Trace(Event{
		Seq:    ip.seq,
		Kind:   n.Kind(),
		Span:   n.Span(),
		Scopes: scope.Snapshot(),
		Code:   Print(n),
		Value:  v,
	})
}

func (ip *Interpreter) eval(n Node, scope *Scope) (Value, error) {
	v, err := ip.evalNode(n, scope)
	if err != nil {
		return Null, err
	}
	ip.emit(n, scope, v)
	return v, nil
}

func (ip *Interpreter) evalNode(n Node, scope *Scope) (Value, error) {
	switch n := n.(type) {
	case *NumericLiteral:
		return Num(n.Value), nil

	case *Identifier:
		v, ok := scope.Lookup(n.Name)
		if !ok {
			return Null, rtErr(ErrUndefined, n, "undefined variable: %s", n.Name)
		}
		return v, nil

	case *UnaryExpression:
		v, err := ip.eval(n.Operand, scope)
		if err != nil {
			return Null, err
		}
		f, ok := v.AsNum()
		if !ok {
			return Null, rtErr(ErrType, n, "operand of '%s' must be a number, got %s", n.Operator, v.Tag)
		}
		return Num(-f), nil

	case *BinaryExpression:
		if n.Operator == OpAssign {
			return ip.assign(n, scope)
		}
		left, err := ip.eval(n.Left, scope)
		if err != nil {
			return Null, err
		}
		right, err := ip.eval(n.Right, scope)
		if err != nil {
			return Null, err
		}
		return arith(n, left, right)

	case *VariableDeclaration:
		v, err := ip.eval(n.Initializer, scope)
		if err != nil {
			return Null, err
		}
		if !scope.Declare(n.Name.Name, v) {
			return Null, duplicate(n.Name)
		}
		return v, nil

	case *FunctionExpression:
		return FunVal(n), nil

	case *FunctionCall:
		return ip.call(n, scope)

	case *Program:
		return ip.sequence(n.Statements, scope)

	default:
		panic(fmt.Sprintf("olang: unhandled node %T", n))
	}
}

// assign resolves the target before evaluating the right side, then binds it
// in the current frame under the declare-once rule.
func (ip *Interpreter) assign(n *BinaryExpression, scope *Scope) (Value, error) {
	target, ok := n.Left.(*Identifier)
	if !ok {
		return Null, rtErr(ErrInvalidAssignment, n.Left, "invalid assignment target: %s", n.Left.Kind())
	}
	if scope.HasOwn(target.Name) {
		return Null, duplicate(target)
	}
	v, err := ip.eval(n.Right, scope)
	if err != nil {
		return Null, err
	}
	if !scope.Declare(target.Name, v) {
		// the right side declared the same name
		return Null, duplicate(target)
	}
	return v, nil
}

func arith(n *BinaryExpression, left, right Value) (Value, error) {
	a, okA := left.AsNum()
	b, okB := right.AsNum()
	if !okA || !okB {
		return Null, rtErr(ErrType, n, "operands of '%s' must be numbers, got %s and %s", n.Operator, left.Tag, right.Tag)
	}
	switch n.Operator {
	case OpAdd:
		return Num(a + b), nil
	case OpSubtract:
		return Num(a - b), nil
	case OpMultiply:
		return Num(a * b), nil
	case OpDivide:
		return Num(a / b), nil
	case OpModulo:
		return Num(math.Mod(a, b)), nil
	case OpPower:
		return Num(math.Pow(a, b)), nil
	default:
		panic(fmt.Sprintf("olang: unhandled binary operator %d", n.Operator))
	}
}

func (ip *Interpreter) call(n *FunctionCall, scope *Scope) (Value, error) {
	callee, ok := scope.Lookup(n.Callee.Name)
	if !ok {
		return Null, rtErr(ErrUndefined, n.Callee, "undefined variable: %s", n.Callee.Name)
	}
	fn, ok := callee.AsFun()
	if !ok {
		return Null, rtErr(ErrNotCallable, n.Callee, "%s is not a function (got %s)", n.Callee.Name, callee.Tag)
	}
	if len(n.Arguments) < len(fn.Parameters) {
		missing := fn.Parameters[len(n.Arguments)]
		return Null, rtErr(ErrMissingArgument, n, "missing argument '%s' in call to %s", missing.Name, n.Callee.Name)
	}

	if ip.maxDepth > 0 && ip.depth >= ip.maxDepth {
		return Null, rtErr(ErrDepthExceeded, n, "call depth exceeded %d in call to %s", ip.maxDepth, n.Callee.Name)
	}

	frame := NewScope(scope)
	for i, p := range fn.Parameters {
		v, err := ip.eval(n.Arguments[i], scope)
		if err != nil {
			return Null, err
		}
		if !frame.Declare(p.Name, v) {
			return Null, duplicate(p)
		}
	}

	ip.depth++
	defer func() { ip.depth-- }()
	return ip.body(fn, frame)
}

func (ip *Interpreter) body(fn *FunctionExpression, frame *Scope) (Value, error) {
	return ip.sequence(fn.Body, frame)
}

func (ip *Interpreter) sequence(stmts []Expression, scope *Scope) (Value, error) {
	result := Null
	for _, s := range stmts {
		v, err := ip.eval(s, scope)
		if err != nil {
			return Null, err
		}
		result = v
	}
	return result, nil
}
