package opal

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func runSource(t *testing.T, source string) string {
	t.Helper()
	var out bytes.Buffer
	interp := NewInterpreter(Config{Output: &out})
	if _, err := interp.RunSource(context.Background(), source); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out.String()
}

func runSourceErr(t *testing.T, source string) *RuntimeError {
	t.Helper()
	interp := NewInterpreter(Config{Output: new(bytes.Buffer)})
	_, err := interp.RunSource(context.Background(), source)
	if err == nil {
		t.Fatalf("expected runtime error")
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %T", err)
	}
	return runtimeErr
}

func TestRunArithmetic(t *testing.T) {
	out := runSource(t, "x = 5; print(x * 2);")
	if out != "10\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMixedNumericWidening(t *testing.T) {
	out := runSource(t, "print(1 + 2.5);")
	if out != "3.5\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestIntegerDivisionTruncates(t *testing.T) {
	out := runSource(t, "print(7 / 2);")
	if out != "3\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestIntegerDivisionByZero(t *testing.T) {
	runtimeErr := runSourceErr(t, "print(1 / 0);")
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestStringAdditionFails(t *testing.T) {
	runtimeErr := runSourceErr(t, `print("a" + "b");`)
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestWhileLoop(t *testing.T) {
	out := runSource(t, `i = 0;
while (i < 3) {
	print(i);
	i = i + 1;
}`)
	if out != "0\n1\n2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestIfElseBranches(t *testing.T) {
	out := runSource(t, `x = 10;
if (x > 5) {
	print("big");
} else {
	print("small");
}`)
	if out != "big\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestClassFieldDefaults(t *testing.T) {
	out := runSource(t, `class Counter {
	count = 3;
}
c = new Counter();
print(c.count);`)
	if out != "3\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMethodCallWithArguments(t *testing.T) {
	out := runSource(t, `class Calc {
	function add(a, b) {
		return a + b;
	}
}
c = new Calc();
print(c.add(2, 3));`)
	if out != "5\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSuperDelegation(t *testing.T) {
	out := runSource(t, `class A {
	y = 1;
	function val() {
		return this.y;
	}
}
class B extends A {
	function callParent() {
		return super.val();
	}
}
b = new B();
print(b.callParent());`)
	if out != "1\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInheritedFieldDefaults(t *testing.T) {
	out := runSource(t, `class A {
	y = 1;
}
class B extends A {
	z = 2;
}
b = new B();
print(b.y);
print(b.z);`)
	if out != "1\n2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMethodResolutionStopsAtParent(t *testing.T) {
	runtimeErr := runSourceErr(t, `class A {
	function m() {
		return 1;
	}
}
class B extends A { }
class C extends B { }
c = new C();
print(c.m());`)
	if runtimeErr.Kind != AttributeError {
		t.Fatalf("expected AttributeError, got %s", runtimeErr.Kind)
	}
}

func TestInheritedMethodOneHop(t *testing.T) {
	out := runSource(t, `class A {
	function m() {
		return 1;
	}
}
class B extends A { }
b = new B();
print(b.m());`)
	if out != "1\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConstructorRuns(t *testing.T) {
	out := runSource(t, `class Greeter {
	function init(name) {
		print(name);
	}
}
g = new Greeter("hello");`)
	if out != "hello\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestConstructorArityMismatch(t *testing.T) {
	runtimeErr := runSourceErr(t, `class Greeter {
	function init(name) {
		print(name);
	}
}
g = new Greeter();`)
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestMethodArityMismatch(t *testing.T) {
	runtimeErr := runSourceErr(t, `class Calc {
	function add(a, b) {
		return a + b;
	}
}
c = new Calc();
c.add(1);`)
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestUndefinedVariable(t *testing.T) {
	runtimeErr := runSourceErr(t, "print(missing);")
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestUndefinedClass(t *testing.T) {
	runtimeErr := runSourceErr(t, "p = new Ghost();")
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestThisOutsideMethod(t *testing.T) {
	runtimeErr := runSourceErr(t, "print(this);")
	if runtimeErr.Kind != ScopeError {
		t.Fatalf("expected ScopeError, got %s", runtimeErr.Kind)
	}
}

func TestSuperWithoutParent(t *testing.T) {
	runtimeErr := runSourceErr(t, `class A {
	function m() {
		return super.m();
	}
}
a = new A();
a.m();`)
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestFieldAccessOnNonObject(t *testing.T) {
	runtimeErr := runSourceErr(t, "x = 1; print(x.y);")
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}

func TestMissingField(t *testing.T) {
	runtimeErr := runSourceErr(t, `class Empty { }
e = new Empty();
print(e.ghost);`)
	if runtimeErr.Kind != AttributeError {
		t.Fatalf("expected AttributeError, got %s", runtimeErr.Kind)
	}
}

// A return statement yields its operand but does not unwind the enclosing
// block, so the method's result is its body's final statement value.
func TestMethodResultIsLastStatement(t *testing.T) {
	out := runSource(t, `class Quirk {
	function m() {
		return 1;
		return 2;
	}
}
q = new Quirk();
print(q.m());`)
	if out != "2\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestMethodLocalsDoNotLeak(t *testing.T) {
	runtimeErr := runSourceErr(t, `class Box {
	function set() {
		tmp = 42;
		return tmp;
	}
}
b = new Box();
b.set();
print(tmp);`)
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	interp := NewInterpreter(Config{Output: &out})
	ctx := context.Background()

	if _, err := interp.RunSource(ctx, "x = 41;"); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := interp.RunSource(ctx, "print(x + 1);"); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunReturnsLastValue(t *testing.T) {
	interp := NewInterpreter(Config{Output: new(bytes.Buffer)})
	result, err := interp.RunSource(context.Background(), "x = 2; x * 3;")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Kind() != KindInt || result.Int() != 6 {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestContextCancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	interp := NewInterpreter(Config{Output: new(bytes.Buffer)})
	if _, err := interp.RunSource(ctx, "i = 0; while (1) i = i + 1;"); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRuntimeErrorIncludesCodeFrame(t *testing.T) {
	interp := NewInterpreter(Config{Output: new(bytes.Buffer)})
	_, err := interp.RunSource(context.Background(), "print(missing);")
	if err == nil {
		t.Fatalf("expected runtime error")
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %T", err)
	}
	if runtimeErr.CodeFrame == "" {
		t.Fatalf("expected a code frame")
	}
}
