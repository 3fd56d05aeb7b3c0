package generate

import (
	"strings"
	"testing"

	"sable/cimport"
	"sable/depm"
	"sable/report"
	"sable/syntax"
	"sable/typing"
	"sable/walk"

	"github.com/llir/llvm/ir"
)

// generateSource analyzes and lowers one source file.
func generateSource(t *testing.T, src string) *ir.Module {
	t.Helper()

	rep := report.NewReporter(report.LogLevelSilent)
	var counter uint32

	p := syntax.NewParser(rep, "test.sbl", "test.sbl", src, &counter)
	root, ok := p.ParseFile()
	if !ok {
		t.Fatalf("parse failed: %v", rep.Messages()[0])
	}

	interner := typing.NewInterner()
	sizes := typing.NewSizes(64)

	file := depm.NewFile("test.sbl", "test.sbl", root)
	a := walk.NewAnalyzer(rep, interner, sizes, cimport.StubAdapter{}, &counter)
	a.AddFile(file)
	a.Analyze()

	if !rep.ShouldProceed() {
		t.Fatalf("analysis failed: %v", rep.Messages()[0])
	}

	return NewGenerator(a, sizes).Generate()
}

func TestGenerateSimpleFunction(t *testing.T) {
	mod := generateSource(t, `
export fn add(a: i32, b: i32) -> i32 {
	return a + b;
}
`)

	if len(mod.Funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(mod.Funcs))
	}

	fn := mod.Funcs[0]
	if fn.Name() != "add" || len(fn.Params) != 2 {
		t.Errorf("declared fn = %s/%d params", fn.Name(), len(fn.Params))
	}

	text := mod.String()
	if !strings.Contains(text, "add") || !strings.Contains(text, "i32") {
		t.Errorf("module text missing function body:\n%s", text)
	}
}

func TestGenerateGlobalConstant(t *testing.T) {
	mod := generateSource(t, `const answer: i32 = 6 * 7;`)

	if len(mod.Globals) != 1 {
		t.Fatalf("got %d globals, want 1", len(mod.Globals))
	}

	text := mod.String()
	if !strings.Contains(text, "42") {
		t.Errorf("folded constant not materialized:\n%s", text)
	}
}

func TestGenerateExternDeclaration(t *testing.T) {
	mod := generateSource(t, `
extern fn putchar(c: i32) -> i32;
export fn main() -> i32 {
	return putchar(65);
}
`)

	if len(mod.Funcs) != 2 {
		t.Fatalf("got %d functions, want 2", len(mod.Funcs))
	}

	// The extern declaration has no body; the definition calls it.
	var extern *ir.Func
	for _, fn := range mod.Funcs {
		if fn.Name() == "putchar" {
			extern = fn
		}
	}

	if extern == nil || len(extern.Blocks) != 0 {
		t.Errorf("extern declaration generated a body")
	}

	if !strings.Contains(mod.String(), "call") {
		t.Errorf("call not generated")
	}
}

func TestGenerateControlFlow(t *testing.T) {
	mod := generateSource(t, `
export fn clamp(n: i32) -> i32 {
	var x: i32 = n;
	if (x > 100) {
		return 100;
	}
	while (x < 0) {
		x = x + 1;
	}
	return x;
}
`)

	text := mod.String()
	if !strings.Contains(text, "br") || !strings.Contains(text, "icmp") {
		t.Errorf("control flow not lowered:\n%s", text)
	}
}

func TestGenerateStringConstant(t *testing.T) {
	mod := generateSource(t, `const greeting = "hi" ++ "!";`)

	text := mod.String()
	// The backing array is interned as an anonymous global.
	if !strings.Contains(text, "__anon") {
		t.Errorf("string data not interned:\n%s", text)
	}
}
