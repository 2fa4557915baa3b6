package opal

import (
	"errors"
	"strings"
	"testing"
)

func compileModule(t *testing.T, source string) string {
	t.Helper()
	module, err := NewCodegen().CompileSource(source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return module.String()
}

func compileErr(t *testing.T, source string) *RuntimeError {
	t.Helper()
	_, err := NewCodegen().CompileSource(source)
	if err == nil {
		t.Fatalf("expected compile error")
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected RuntimeError, got %T", err)
	}
	return runtimeErr
}

func TestCompileArithmetic(t *testing.T) {
	out := compileModule(t, "x = 2 + 3; print(x);")

	for _, want := range []string{
		"define i32 @main()",
		"add i32 2, 3",
		"@printf",
		"@int_format",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in module:\n%s", want, out)
		}
	}
}

func TestCompileComparisonZeroExtends(t *testing.T) {
	out := compileModule(t, "x = 1 < 2;")

	if !strings.Contains(out, "icmp slt i32 1, 2") {
		t.Fatalf("missing signed comparison in module:\n%s", out)
	}
	if !strings.Contains(out, "zext i1") {
		t.Fatalf("missing zero extension in module:\n%s", out)
	}
}

func TestCompileMixedArithmeticWidens(t *testing.T) {
	out := compileModule(t, "print(1 + 2.5);")

	if !strings.Contains(out, "sitofp") {
		t.Fatalf("missing int to float conversion in module:\n%s", out)
	}
	if !strings.Contains(out, "fadd") {
		t.Fatalf("missing float addition in module:\n%s", out)
	}
	if !strings.Contains(out, "fpext") {
		t.Fatalf("missing float widening before printf in module:\n%s", out)
	}
}

func TestCompileIfLowering(t *testing.T) {
	out := compileModule(t, `if (1 < 2) {
	print(1);
} else {
	print(2);
}`)

	for _, want := range []string{"br i1", "then.", "else.", "ifcont."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in module:\n%s", want, out)
		}
	}
}

func TestCompileIfSingleMergeBlock(t *testing.T) {
	out := compileModule(t, `if (1 < 2) {
	x = 1;
} else {
	x = 2;
}
print(x);`)

	if !strings.Contains(out, "icmp slt i32 1, 2") {
		t.Fatalf("missing signed less-than in module:\n%s", out)
	}
	if got := strings.Count(out, "br label %ifcont."); got != 2 {
		t.Fatalf("expected both branches to terminate into one merge block, got %d branches in:\n%s", got, out)
	}
}

func TestCompileWhileLowering(t *testing.T) {
	out := compileModule(t, `i = 0;
while (i < 3) {
	i = i + 1;
}`)

	for _, want := range []string{"while.cond", "while.body", "while.end"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in module:\n%s", want, out)
		}
	}
}

func TestCompileStringLiteral(t *testing.T) {
	out := compileModule(t, `print("hi");`)

	if !strings.Contains(out, `c"hi\00"`) {
		t.Fatalf("missing null-terminated string constant in module:\n%s", out)
	}
	if !strings.Contains(out, "@string_format") {
		t.Fatalf("missing string format in module:\n%s", out)
	}
}

func TestCompileMethodBecomesFunction(t *testing.T) {
	out := compileModule(t, `class Math {
	function double(n) {
		return n * 2;
	}
}
m = new Math();
print(m.double(21));`)

	if !strings.Contains(out, "define i32 @double(i32 %n)") {
		t.Fatalf("missing method function in module:\n%s", out)
	}
	if !strings.Contains(out, "call i32 @double(i32 21)") {
		t.Fatalf("missing method call in module:\n%s", out)
	}
}

func TestCompileNewYieldsPlaceholder(t *testing.T) {
	out := compileModule(t, `class Empty { }
p = new Empty();`)

	if !strings.Contains(out, "store i32 1,") {
		t.Fatalf("missing placeholder object value in module:\n%s", out)
	}
}

func TestCompileAllBlocksTerminate(t *testing.T) {
	out := compileModule(t, `if (1) {
	print(1);
}`)

	if !strings.Contains(out, "ret i32 0") {
		t.Fatalf("missing default return in module:\n%s", out)
	}
}

func TestCompileUndefinedVariable(t *testing.T) {
	runtimeErr := compileErr(t, "print(missing);")
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestCompileUndefinedMethod(t *testing.T) {
	runtimeErr := compileErr(t, "x = 1; x.ghost();")
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestCompileUndefinedClass(t *testing.T) {
	runtimeErr := compileErr(t, "p = new Ghost();")
	if runtimeErr.Kind != NameError {
		t.Fatalf("expected NameError, got %s", runtimeErr.Kind)
	}
}

func TestCompileThisUnsupported(t *testing.T) {
	runtimeErr := compileErr(t, "print(this);")
	if runtimeErr.Kind != ScopeError {
		t.Fatalf("expected ScopeError, got %s", runtimeErr.Kind)
	}
}

func TestCompileMethodArityMismatch(t *testing.T) {
	runtimeErr := compileErr(t, `class Math {
	function double(n) {
		return n * 2;
	}
}
m = new Math();
m.double(1, 2);`)
	if runtimeErr.Kind != TypeError {
		t.Fatalf("expected TypeError, got %s", runtimeErr.Kind)
	}
}
