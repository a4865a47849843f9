package olang

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func evalSrc(t *testing.T, src string, opts ...Option) Value {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	v, err := Evaluate(prog, opts...)
	if err != nil {
		t.Fatalf("Evaluate error: %v\nsource:\n%s", err, src)
	}
	return v
}

func mustEvalPersistent(t *testing.T, ip *Interpreter, src string) Value {
	t.Helper()
	v, err := ip.EvalSource(src)
	if err != nil {
		t.Fatalf("eval error for %q: %v", src, err)
	}
	return v
}

func runtimeErr(t *testing.T, src string, kind RuntimeErrorKind, opts ...Option) *RuntimeError {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v\nsource:\n%s", err, src)
	}
	v, err := Evaluate(prog, opts...)
	if err == nil {
		t.Fatalf("expected %s error for %q, got value %s", kind.Error(), src, v)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %s error for %q, got %v", kind.Error(), src, err)
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	return re
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum {
		t.Fatalf("want num %g, got %#v", f, v)
	}
	got := v.Data.(float64)
	if !(got == f) {
		t.Fatalf("want num %g, got %g (%#v)", f, got, v)
	}
}

func wantNull(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNull {
		t.Fatalf("want null, got %#v", v)
	}
}

func wantErrContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil || !strings.Contains(err.Error(), substr) {
		t.Fatalf("want error containing %q, got %v", substr, err)
	}
}

// --- arithmetic ------------------------------------------------------------

func Test_Interpreter_Arithmetic(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"1 + 1", 2},
		{"1 + 2 * 3", 7},
		{"1 + 2 * 18", 37},
		{"1 + 2 * 18 / 3", 13},
		{"1 + 2 * 18 / 3 * 2", 25},
		{"2 ** 2", 4},
		{"2 ** 3", 8},
		{"2 ** 3 ** 2", 512},
		{"2 ** 3 ** 2 ** 2", 2.4178516392292583e24},
		{"(1 + 2) * 3", 9},
		{"1 + 2 * (3 + 4)", 15},
		{"10 * 2 ** 3", 80},
		{"1 * 2 * 3", 6},
		{"10 - 4 - 3", 3},
		{"-1", -1},
		{"-1 + 2", 1},
		{"-1 * 2", -2},
		{"--3", 3},
		{"7 % 3", 1},
		{"-7 % 3", -1},
		{"7.5 % 2", 1.5},
		{"1 / 4", 0.25},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			wantNum(t, evalSrc(t, c.src), c.want)
		})
	}
}

func Test_Interpreter_IEEE_Division(t *testing.T) {
	if v := evalSrc(t, "1 / 0"); !math.IsInf(v.Data.(float64), 1) {
		t.Fatalf("1/0 = %v", v)
	}
	if v := evalSrc(t, "-1 / 0"); !math.IsInf(v.Data.(float64), -1) {
		t.Fatalf("-1/0 = %v", v)
	}
	if v := evalSrc(t, "0 / 0"); !math.IsNaN(v.Data.(float64)) {
		t.Fatalf("0/0 = %v", v)
	}
	if v := evalSrc(t, "1 % 0"); !math.IsNaN(v.Data.(float64)) {
		t.Fatalf("1%%0 = %v", v)
	}
}

func Test_Interpreter_Empty_Program_Is_Null(t *testing.T) {
	wantNull(t, evalSrc(t, ""))
	wantNull(t, evalSrc(t, "\n;\n"))
}

func Test_Interpreter_Program_Returns_Last_Statement(t *testing.T) {
	wantNum(t, evalSrc(t, "1; 2; 3"), 3)
	wantNum(t, evalSrc(t, "let a = 4"), 4)
}

// --- bindings --------------------------------------------------------------

func Test_Interpreter_Let_And_Lookup(t *testing.T) {
	wantNum(t, evalSrc(t, "let a = 2\nlet b = a * 3\na + b"), 8)
	wantNum(t, evalSrc(t, "let a = let b = 5; a + b"), 10)
}

func Test_Interpreter_Duplicate_Declaration_Rejected(t *testing.T) {
	re := runtimeErr(t, "let a = 1; let a = 2", ErrDuplicateBinding)
	if re.Msg != "variable already declared: a" {
		t.Fatalf("msg = %q", re.Msg)
	}
	if re.Span != (Span{15, 16}) {
		t.Fatalf("span = %v", re.Span)
	}
}

func Test_Interpreter_Assignment_Declares_Once(t *testing.T) {
	wantNum(t, evalSrc(t, "a = 1; a + 1"), 2)
	wantNum(t, evalSrc(t, "(b = 3) * 2"), 6)
	runtimeErr(t, "a = 1; a = 2", ErrDuplicateBinding)
	runtimeErr(t, "let a = 1; a = 2", ErrDuplicateBinding)
	runtimeErr(t, "a = 1; let a = 2", ErrDuplicateBinding)
}

func Test_Interpreter_Assignment_Target_Checked_First(t *testing.T) {
	re := runtimeErr(t, "a = b = 1", ErrInvalidAssignment)
	if re.Msg != "invalid assignment target: BinaryExpression" {
		t.Fatalf("msg = %q", re.Msg)
	}
	runtimeErr(t, "1 = 2", ErrInvalidAssignment)
	// the right side is never evaluated for a bad target
	runtimeErr(t, "f() = undefinedName", ErrInvalidAssignment)
	// nor for a target already bound here
	runtimeErr(t, "a = 1; a = undefinedName", ErrDuplicateBinding)
}

func Test_Interpreter_Assignment_RHS_Declaring_Same_Name(t *testing.T) {
	runtimeErr(t, "a = (let a = 1)", ErrDuplicateBinding)
}

func Test_Interpreter_Undefined_Identifier(t *testing.T) {
	re := runtimeErr(t, "let a = 1\nb + a", ErrUndefined)
	if re.Msg != "undefined variable: b" {
		t.Fatalf("msg = %q", re.Msg)
	}
	if re.Span != (Span{10, 11}) {
		t.Fatalf("span = %v", re.Span)
	}
	if re.Error() != "RUNTIME ERROR: undefined variable: b" {
		t.Fatalf("Error() = %q", re.Error())
	}
}

// --- functions -------------------------------------------------------------

func Test_Interpreter_Function_Calls(t *testing.T) {
	src := `
let square = (x) => { x ** 2 }
let inc = (x) => x + 1
square(inc(10))
`
	wantNum(t, evalSrc(t, src), 121)
	wantNum(t, evalSrc(t, "let add = (a, b) => a + b; add(2, 3)"), 5)
	wantNum(t, evalSrc(t, "let f = (a) => { let b = a * 2; b + 1 }; f(4)"), 9)
	wantNum(t, evalSrc(t, "let k = () => 42; k()"), 42)
}

func Test_Interpreter_Function_Value_Is_Not_Called(t *testing.T) {
	v := evalSrc(t, "(a) => a")
	fn, ok := v.AsFun()
	if !ok || len(fn.Parameters) != 1 {
		t.Fatalf("want function value, got %#v", v)
	}
	// a body referencing undefined names is fine until called
	evalSrc(t, "let f = () => nope")
}

func Test_Interpreter_Empty_Body_Returns_Null(t *testing.T) {
	wantNull(t, evalSrc(t, "let f = () => {}; f()"))
}

func Test_Interpreter_Parameters_Shadow_Outer(t *testing.T) {
	wantNum(t, evalSrc(t, "let a = 1; let f = (a) => a * 10; f(2) + a"), 21)
	wantNum(t, evalSrc(t, "let x = 1; let f = () => { let x = 2; x }; f() + x"), 3)
}

func Test_Interpreter_Function_Locals_Do_Not_Leak(t *testing.T) {
	runtimeErr(t, "let f = () => { let z = 1; z }; f(); z", ErrUndefined)
}

func Test_Interpreter_CallSite_Scoping(t *testing.T) {
	// free names in a body resolve through the caller's chain
	src := `
let f = () => y
let g = () => { let y = 5; f() }
g()
`
	wantNum(t, evalSrc(t, src), 5)
	runtimeErr(t, "let f = () => y; f()", ErrUndefined)
}

func Test_Interpreter_Function_Arguments(t *testing.T) {
	// a function argument is callable through its parameter name
	src := "let twice = (g, x) => g(g(x)); let inc = (n) => n + 1; twice(inc, 5)"
	wantNum(t, evalSrc(t, src), 7)
}

func Test_Interpreter_Arguments_In_Caller_Scope_Left_To_Right(t *testing.T) {
	wantNum(t, evalSrc(t, "let f = (a, b) => a; f(p = 1, q = p + 1); q"), 2)
	// b's argument sees the caller's scope, not the new parameter a
	runtimeErr(t, "let f = (a, b) => b; f(1, a)", ErrUndefined)
}

func Test_Interpreter_Missing_Argument(t *testing.T) {
	re := runtimeErr(t, "let f = (a, b) => a + b; f(1)", ErrMissingArgument)
	if re.Msg != "missing argument 'b' in call to f" {
		t.Fatalf("msg = %q", re.Msg)
	}
	// arity is checked before any argument is evaluated
	runtimeErr(t, "let f = (a, b) => a; f(nope)", ErrMissingArgument)
}

func Test_Interpreter_Extra_Arguments_Ignored(t *testing.T) {
	wantNum(t, evalSrc(t, "let f = (a) => a; f(1, 2, 3)"), 1)
	// and not evaluated
	wantNum(t, evalSrc(t, "let f = (a) => a; f(1, nope)"), 1)
}

func Test_Interpreter_Undefined_Function(t *testing.T) {
	re := runtimeErr(t, "g(1)", ErrUndefined)
	if re.Msg != "undefined variable: g" {
		t.Fatalf("msg = %q", re.Msg)
	}
}

func Test_Interpreter_Not_Callable(t *testing.T) {
	re := runtimeErr(t, "let n = 1; n(2)", ErrNotCallable)
	if re.Msg != "n is not a function (got number)" {
		t.Fatalf("msg = %q", re.Msg)
	}
}

func Test_Interpreter_Type_Errors(t *testing.T) {
	re := runtimeErr(t, "let f = () => 1; f + 1", ErrType)
	if re.Msg != "operands of '+' must be numbers, got function and number" {
		t.Fatalf("msg = %q", re.Msg)
	}
	re = runtimeErr(t, "let f = () => 1; -f", ErrType)
	if re.Msg != "operand of '-' must be a number, got function" {
		t.Fatalf("msg = %q", re.Msg)
	}
	runtimeErr(t, "let f = () => {}; f() * 2", ErrType)
}

func Test_Interpreter_Depth_Limit(t *testing.T) {
	re := runtimeErr(t, "let f = (n) => f(n + 1); f(0)", ErrDepthExceeded, WithMaxDepth(50))
	if !strings.Contains(re.Msg, "call depth exceeded 50") {
		t.Fatalf("msg = %q", re.Msg)
	}
	// nesting below the limit is fine
	src := "let a = (x) => x + 1; let b = (x) => a(x) * 2; let c = (x) => b(x) + a(x); c(1)"
	wantNum(t, evalSrc(t, src, WithMaxDepth(3)), 6)
	runtimeErr(t, src, ErrDepthExceeded, WithMaxDepth(2))
}

func Test_Interpreter_Depth_Resets_After_Error(t *testing.T) {
	ip := NewInterpreter(WithMaxDepth(10))
	if _, err := ip.EvalSource("let f = (n) => f(n); f(1)"); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected depth error, got %v", err)
	}
	wantNum(t, mustEvalPersistent(t, ip, "let g = (x) => x; g(3)"), 3)
}

// --- entry points ----------------------------------------------------------

func Test_Interpreter_Persistent_Global(t *testing.T) {
	ip := NewInterpreter()
	mustEvalPersistent(t, ip, "let a = 2")
	mustEvalPersistent(t, ip, "let double = (x) => x * 2")
	wantNum(t, mustEvalPersistent(t, ip, "double(a) * 3"), 12)
	if _, err := ip.EvalSource("let a = 3"); !errors.Is(err, ErrDuplicateBinding) {
		t.Fatalf("expected duplicate binding, got %v", err)
	}
	if got := ip.Global.Names(); strings.Join(got, ",") != "a,double" {
		t.Fatalf("global names = %v", got)
	}
}

func Test_Interpreter_Evaluate_Uses_Fresh_Root(t *testing.T) {
	prog := MustParse("let a = 1")
	for i := 0; i < 2; i++ {
		if _, err := Evaluate(prog); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func Test_Interpreter_EvalSource_Returns_Parse_Errors(t *testing.T) {
	ip := NewInterpreter()
	_, err := ip.EvalSource("1 +")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	_, err = ip.EvalSource("1 $")
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LexError, got %v", err)
	}
	if _, err := ip.EvalSource("((1))", WithParseDepth(1)); err == nil {
		t.Fatalf("parse options not forwarded")
	}
}

func Test_Interpreter_Call(t *testing.T) {
	ip := NewInterpreter()
	f := mustEvalPersistent(t, ip, "let scale = 3; (x) => x * scale")
	v, err := ip.Call(f, Num(5))
	if err != nil {
		t.Fatal(err)
	}
	wantNum(t, v, 15)

	if _, err := ip.Call(f); !errors.Is(err, ErrMissingArgument) {
		t.Fatalf("expected missing argument, got %v", err)
	}
	wantErrContains(t, func() error { _, err := ip.Call(f); return err }(), "missing argument 'x'")
	if _, err := ip.Call(Num(1)); !errors.Is(err, ErrNotCallable) {
		t.Fatalf("expected not callable, got %v", err)
	}
	v, err = ip.Call(f, Num(1), Str("ignored"))
	if err != nil {
		t.Fatal(err)
	}
	wantNum(t, v, 3)
}

func Test_Interpreter_Call_Respects_Depth_Limit(t *testing.T) {
	ip := NewInterpreter(WithMaxDepth(1))
	mustEvalPersistent(t, ip, "let g = () => 1; let f = () => g()")
	f, _ := ip.Global.Lookup("f")
	g, _ := ip.Global.Lookup("g")

	// Call counts as one level, so the nested g() is over the limit
	if _, err := ip.Call(f); !errors.Is(err, ErrDepthExceeded) {
		t.Fatalf("expected depth error, got %v", err)
	}
	v, err := ip.Call(g)
	if err != nil {
		t.Fatalf("depth not released after Call: %v", err)
	}
	wantNum(t, v, 1)
	if ip.depth != 0 {
		t.Fatalf("depth = %d after calls", ip.depth)
	}
}

func Test_Interpreter_RuntimeErrorKind_Names(t *testing.T) {
	kinds := []RuntimeErrorKind{
		ErrUndefined, ErrType, ErrMissingArgument, ErrDuplicateBinding,
		ErrNotCallable, ErrInvalidAssignment, ErrDepthExceeded,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		name := k.Error()
		if strings.HasPrefix(name, "runtime error kind") || seen[name] {
			t.Fatalf("bad name %q for kind %d", name, int(k))
		}
		seen[name] = true
	}
	if RuntimeErrorKind(99).Error() != "runtime error kind 99" {
		t.Fatalf("unknown kind name = %q", RuntimeErrorKind(99).Error())
	}
}

// --- tracing ---------------------------------------------------------------

func traceSrc(t *testing.T, src string) (*Recorder, Value, error) {
	t.Helper()
	rec := &Recorder{}
	v, err := Evaluate(MustParse(src), WithTracer(rec))
	return rec, v, err
}

func Test_Interpreter_Trace_PostOrder(t *testing.T) {
	rec, v, err := traceSrc(t, "let a = 1 + 2\na * 2")
	if err != nil {
		t.Fatal(err)
	}
	wantNum(t, v, 6)
	want := []NodeKind{
		KindNumericLiteral, KindNumericLiteral, KindBinaryExpression, KindVariableDeclaration,
		KindIdentifier, KindNumericLiteral, KindBinaryExpression, KindProgram,
	}
	got := rec.Kinds()
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v\nwant    %v", got, want)
		}
		if rec.Events[i].Seq != i+1 {
			t.Fatalf("event %d seq = %d", i, rec.Events[i].Seq)
		}
	}
	if rec.Events[2].Code != "(1 + 2)" || rec.Events[4].Code != "a" || rec.Events[0].Code != "1" {
		t.Fatalf("codes = %q %q %q", rec.Events[0].Code, rec.Events[2].Code, rec.Events[4].Code)
	}
	wantNum(t, rec.Events[3].Value, 3)
	if rec.Events[2].Span != (Span{8, 13}) {
		t.Fatalf("span = %v", rec.Events[2].Span)
	}
}

func Test_Interpreter_Trace_Does_Not_Change_Result(t *testing.T) {
	srcs := []string{
		"1 + 2 * 3",
		"let square = (x) => { x ** 2 }\nlet inc = (x) => x + 1\nsquare(inc(10))",
		"let f = () => { let y = 1; y }; f() + 2",
	}
	for _, src := range srcs {
		plain := evalSrc(t, src)
		_, traced, err := traceSrc(t, src)
		if err != nil {
			t.Fatal(err)
		}
		if !plain.Equal(traced) {
			t.Fatalf("%q: traced %s, plain %s", src, traced, plain)
		}
	}
}

func Test_Interpreter_Trace_Scope_Snapshots(t *testing.T) {
	rec, _, err := traceSrc(t, "let f = (x) => x; f(7)")
	if err != nil {
		t.Fatal(err)
	}
	var sawParam bool
	for _, e := range rec.Events {
		if e.Kind == KindIdentifier && e.Code == "x" {
			sawParam = true
			if len(e.Scopes) != 2 {
				t.Fatalf("inside call want 2 frames, got %d", len(e.Scopes))
			}
			wantNum(t, e.Scopes[0]["x"], 7)
			if _, ok := e.Scopes[1]["f"]; !ok {
				t.Fatalf("outer frame lacks f: %v", e.Scopes[1])
			}
		}
	}
	if !sawParam {
		t.Fatalf("no event for parameter lookup")
	}
	// the first event was recorded before f existed and must stay that way
	first := rec.Events[0]
	if first.Kind != KindFunctionExpression {
		t.Fatalf("first event = %s", first.Kind)
	}
	if _, ok := first.Scopes[0]["f"]; ok {
		t.Fatalf("snapshot changed after the fact: %v", first.Scopes[0])
	}
}

func Test_Interpreter_Trace_Stops_At_Error(t *testing.T) {
	rec, _, err := traceSrc(t, "let a = 1\nb")
	if !errors.Is(err, ErrUndefined) {
		t.Fatalf("err = %v", err)
	}
	if len(rec.Events) != 2 {
		t.Fatalf("events = %v", rec.Kinds())
	}
	rec.Reset()
	if len(rec.Events) != 0 {
		t.Fatalf("Reset kept events")
	}
}

func Test_Interpreter_TracerFunc(t *testing.T) {
	var n int
	_, err := Evaluate(MustParse("1 + 2"), WithTracer(TracerFunc(func(Event) { n++ })))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("events = %d, want 4", n)
	}
}
