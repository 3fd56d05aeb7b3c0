package walk

import (
	"strings"
	"testing"

	"sable/ast"
	"sable/cimport"
	"sable/depm"
	"sable/report"
	"sable/sem"
	"sable/syntax"
	"sable/typing"
)

// session bundles the pieces of one analyzed test compilation.
type session struct {
	analyzer *Analyzer
	rep      *report.Reporter
	file     *depm.SableFile
	interner *typing.Interner
}

// analyzeSource parses and analyzes one source file.
func analyzeSource(t *testing.T, src string, adapter cimport.Adapter) *session {
	t.Helper()

	rep := report.NewReporter(report.LogLevelSilent)
	var counter uint32

	p := syntax.NewParser(rep, "test.sbl", "test.sbl", src, &counter)
	root, ok := p.ParseFile()
	if !ok {
		t.Fatalf("parse failed: %v", rep.Messages()[0])
	}

	if adapter == nil {
		adapter = cimport.StubAdapter{}
	}

	interner := typing.NewInterner()
	sizes := typing.NewSizes(64)

	file := depm.NewFile("test.sbl", "test.sbl", root)
	a := NewAnalyzer(rep, interner, sizes, adapter, &counter)
	a.AddFile(file)
	a.Analyze()

	return &session{analyzer: a, rep: rep, file: file, interner: interner}
}

// expectNoErrors fails the test if any error was reported.
func (s *session) expectNoErrors(t *testing.T) {
	t.Helper()

	if !s.rep.ShouldProceed() {
		t.Fatalf("unexpected errors: %v", errorTexts(s.rep))
	}
}

// expectError fails the test unless exactly one error containing the given
// text was reported.
func (s *session) expectError(t *testing.T, contains string) {
	t.Helper()

	texts := errorTexts(s.rep)
	if len(texts) != 1 {
		t.Fatalf("got %d errors %v, want 1 containing %q", len(texts), texts, contains)
	}

	if !strings.Contains(texts[0], contains) {
		t.Errorf("error %q does not contain %q", texts[0], contains)
	}
}

func errorTexts(rep *report.Reporter) []string {
	var texts []string
	for _, msg := range rep.Messages() {
		if !msg.IsWarning {
			texts = append(texts, msg.Text)
		}
	}

	return texts
}

// fnBody returns the body of the i-th top-level declaration, which must be a
// function definition.
func (s *session) fnBody(t *testing.T, i int) *ast.Block {
	t.Helper()

	def, ok := s.file.Root.Decls[i].(*ast.FnDef)
	if !ok {
		t.Fatalf("decl %d is %T, want *ast.FnDef", i, s.file.Root.Decls[i])
	}

	return def.Body
}

// -----------------------------------------------------------------------------

func TestRecursiveStructDetection(t *testing.T) {
	s := analyzeSource(t, `struct S { a: S, }`, nil)

	s.expectError(t, "struct has infinite size")

	st, ok := s.file.Scope.FindType("S").(*typing.StructType)
	if !ok {
		t.Fatalf("S not registered as a struct type")
	}

	// Completion still holds so downstream code does not re-report.
	if !st.Complete {
		t.Errorf("S.Complete = false after infinite-size error")
	}
}

func TestRecursiveStructThroughPointerAllowed(t *testing.T) {
	s := analyzeSource(t, `struct Node { next: &Node, value: i32, }`, nil)
	s.expectNoErrors(t)

	st := s.file.Scope.FindType("Node").(*typing.StructType)
	if !st.Complete {
		t.Fatalf("Node incomplete")
	}

	ptrField := st.FieldByName("next")
	ptr, ok := ptrField.Type.(*typing.PointerType)
	if !ok || ptr.Elem != st {
		t.Errorf("self-pointer field type = %s", ptrField.Type.Repr())
	}
}

func TestOptionalWrap(t *testing.T) {
	s := analyzeSource(t, `fn f() -> ?i32 { return 5; }`, nil)
	s.expectNoErrors(t)

	ret := s.fnBody(t, 0).Stmts[0].(*ast.ReturnStmt)
	re := s.analyzer.Resolved().Get(ret.Value)

	if re.ConvType != s.interner.OptionalOf(typing.I32) {
		t.Errorf("converted type = %v, want ?i32", re.ConvType)
	}

	if re.Cast != sem.CastMaybeWrap {
		t.Errorf("cast op = %d, want MaybeWrap", re.Cast)
	}

	if re.Type != typing.PrimType(typing.PrimNumLitInt) {
		t.Errorf("inner type = %s, want integer literal", re.Type.Repr())
	}

	if !re.Const.OK || re.Const.Maybe == nil || re.Const.Maybe.Num.String() != "5" {
		t.Errorf("wrapped constant not folded")
	}
}

func TestPeerIntUnification(t *testing.T) {
	s := analyzeSource(t, `
fn f(cond: bool, a: i32, b: i64) -> i64 {
	var x = if (cond) { a; } else { b; };
	return x;
}
`, nil)
	s.expectNoErrors(t)

	// Between two integers of the same signedness the wider type wins, and
	// the narrower branch widens implicitly.
	decl := s.fnBody(t, 0).Stmts[0].(*ast.VarDecl)
	ifRe := s.analyzer.Resolved().Get(decl.Init)

	if ifRe.FinalType() != typing.I64 {
		t.Errorf("peer type = %s, want i64", ifRe.FinalType().Repr())
	}

	thenBranch := decl.Init.(*ast.IfExpr).Then
	thenRe := s.analyzer.Resolved().Get(ast.Expr(thenBranch))
	if thenRe.ConvType != typing.I64 || thenRe.Cast != sem.CastIntWidenOrShorten {
		t.Errorf("narrow branch not widened (conv %v, cast %d)", thenRe.ConvType, thenRe.Cast)
	}
}

func TestPeerIncompatibleTypes(t *testing.T) {
	s := analyzeSource(t, `
fn f(cond: bool, a: i32, b: u32) {
	var x = if (cond) { a; } else { b; };
	x;
}
`, nil)

	s.expectError(t, "incompatible types: 'i32' and 'u32'")
}

func TestErrorReturnDesugar(t *testing.T) {
	s := analyzeSource(t, `
error Failed;
fn h() -> %i32 { return error.Failed; }
fn g() -> %i32 { %return h(); }
`, nil)
	s.expectNoErrors(t)

	// h: the pure error wraps into the error union.
	hRet := s.fnBody(t, 1).Stmts[0].(*ast.ReturnStmt)
	hRe := s.analyzer.Resolved().Get(hRet.Value)
	if hRe.Cast != sem.CastPureErrorWrap {
		t.Errorf("h cast op = %d, want PureErrorWrap", hRe.Cast)
	}

	// g: on the ok branch the %return expression has the payload type.
	gRet := s.fnBody(t, 2).Stmts[0].(*ast.ReturnStmt)
	gRe := s.analyzer.Resolved().Get(ast.Expr(gRet))
	if gRe.Type != typing.I32 {
		t.Errorf("%%return expression type = %s, want i32", gRe.Type.Repr())
	}

	callRe := s.analyzer.Resolved().Get(gRet.Value)
	if callRe.FinalType() != s.interner.ErrorUnionOf(typing.I32) {
		t.Errorf("operand type = %s, want %%i32", callRe.FinalType().Repr())
	}
}

func TestStringConcatenation(t *testing.T) {
	s := analyzeSource(t, `const s = "foo" ++ "bar";`, nil)
	s.expectNoErrors(t)

	decl := s.file.Root.Decls[0].(*ast.VarDecl)
	re := s.analyzer.Resolved().Get(decl.Init)

	if re.Type != s.interner.SliceOf(typing.U8, true) {
		t.Fatalf("concat type = %s, want []const u8", re.Type.Repr())
	}

	if !re.Const.OK {
		t.Fatalf("concat value not constant")
	}

	if got := re.Const.Fields[1].Num.String(); got != "6" {
		t.Errorf("len = %s, want 6", got)
	}

	want := "foobar"
	vals := re.Const.Fields[0].Ptr.Vals
	if len(vals) != len(want) {
		t.Fatalf("pointee count = %d, want %d", len(vals), len(want))
	}

	for i, ch := range vals {
		if byte(ch.Num.Uint64()) != want[i] {
			t.Errorf("pointee %d = %d, want %q", i, ch.Num.Uint64(), want[i])
		}
	}
}

func TestDemandDrivenResolution(t *testing.T) {
	// B is declared after A but A's type refers to B: resolution is
	// demand-driven, so both succeed.
	s := analyzeSource(t, `
const A: B = 0;
const B = i32;
`, nil)
	s.expectNoErrors(t)

	if got := s.file.Scope.Vars["A"].Type; got != typing.I32 {
		t.Errorf("A type = %s, want i32", got.Repr())
	}
}

func TestDeclarationCycle(t *testing.T) {
	s := analyzeSource(t, `
const A = B;
const B = A;
`, nil)

	texts := errorTexts(s.rep)
	if len(texts) == 0 {
		t.Fatalf("declaration cycle not reported")
	}

	found := false
	for _, text := range texts {
		if strings.Contains(text, "dependency cycle") {
			found = true
		}
	}

	if !found {
		t.Errorf("no cycle diagnostic in %v", texts)
	}
}

// -----------------------------------------------------------------------------

func TestTypeExprIdentity(t *testing.T) {
	// Structurally equal type expressions resolve to the identical handle.
	s := analyzeSource(t, `
extern var a: ?&const u8;
extern var b: ?&const u8;
`, nil)
	s.expectNoErrors(t)

	aType := s.file.Scope.Vars["a"].Type
	bType := s.file.Scope.Vars["b"].Type

	if aType != bType {
		t.Errorf("equal type expressions resolved to distinct handles")
	}

	if aType != s.interner.OptionalOf(s.interner.PointerTo(typing.U8, true)) {
		t.Errorf("resolved type = %s", aType.Repr())
	}
}

func TestSizeofFolds(t *testing.T) {
	s := analyzeSource(t, `
const ptrSize = @sizeof(&u8);
const arrSize = @sizeof([10]i32);
`, nil)
	s.expectNoErrors(t)

	check := func(i int, want string) {
		decl := s.file.Root.Decls[i].(*ast.VarDecl)
		re := s.analyzer.Resolved().Get(decl.Init)

		if re.Type != typing.PrimType(typing.PrimNumLitInt) {
			t.Errorf("decl %d: type = %s, want integer literal", i, re.Type.Repr())
		}

		if !re.Const.OK || re.Const.Num.String() != want {
			t.Errorf("decl %d: value = %s, want %s", i, re.Const.Num.String(), want)
		}
	}

	check(0, "8")
	check(1, "40")
}

func TestErrorValueIndices(t *testing.T) {
	s := analyzeSource(t, `
error First;
error Second;
error Third;
`, nil)
	s.expectNoErrors(t)

	// Error values are assigned monotonically from one; zero is the reserved
	// ok tag.
	for i, name := range []string{"First", "Second", "Third"} {
		entry := s.file.Scope.FindError(name)
		if entry == nil {
			t.Fatalf("error %s not declared", name)
		}

		if entry.Value != uint32(i+1) {
			t.Errorf("%s value = %d, want %d", name, entry.Value, i+1)
		}
	}
}

func TestErrorRedefinition(t *testing.T) {
	s := analyzeSource(t, `
error Dup;
error Dup;
`, nil)

	s.expectError(t, "redefinition of error 'Dup'")
}

func TestUnwrapError(t *testing.T) {
	s := analyzeSource(t, `
error Failed;
fn h() -> %i32 { return error.Failed; }
fn f() -> i32 { return h() %% 0; }
fn g() -> i32 { return h() %% |e| handle(e); }
fn handle(e: error) -> i32 { return 1; }
`, nil)
	s.expectNoErrors(t)

	unwrap := s.fnBody(t, 2).Stmts[0].(*ast.ReturnStmt).Value.(*ast.UnwrapErrorExpr)
	re := s.analyzer.Resolved().Get(ast.Expr(unwrap))
	if re.Type != typing.I32 {
		t.Errorf("unwrap type = %s, want i32", re.Type.Repr())
	}
}

func TestUnwrapErrorOnNonError(t *testing.T) {
	s := analyzeSource(t, `fn f(x: i32) -> i32 { return x %% 0; }`, nil)
	s.expectError(t, "expected error type, got 'i32'")
}

func TestIfVarBindsPayload(t *testing.T) {
	s := analyzeSource(t, `
fn g(x: ?i32) -> i32 {
	return if (var v ?= x) { v; } else { 0; };
}
`, nil)
	s.expectNoErrors(t)
}

func TestIfVarRequiresOptional(t *testing.T) {
	s := analyzeSource(t, `
fn g(x: i32) {
	if (var v ?= x) {
		v;
	}
}
`, nil)

	s.expectError(t, "expected optional type")
}

func TestBreakOutsideLoop(t *testing.T) {
	s := analyzeSource(t, `fn f() { break; }`, nil)
	s.expectError(t, "'break' expression outside loop")
}

func TestShadowingRejected(t *testing.T) {
	s := analyzeSource(t, `
struct Point { x: i32, }
fn f() {
	var Point: i32 = 1;
	Point;
}
`, nil)

	s.expectError(t, "variable shadows type 'Point'")
}

func TestRedeclarationRejected(t *testing.T) {
	s := analyzeSource(t, `
fn f() {
	var x: i32 = 1;
	var x: i32 = 2;
}
`, nil)

	s.expectError(t, "redeclaration of variable 'x'")
}

func TestAssignToConstRejected(t *testing.T) {
	s := analyzeSource(t, `
fn f() {
	const x: i32 = 1;
	x = 2;
}
`, nil)

	s.expectError(t, "cannot assign to constant")
}

func TestUndeclaredIdentifier(t *testing.T) {
	s := analyzeSource(t, `fn f() { missing; }`, nil)
	s.expectError(t, "use of undeclared identifier 'missing'")
}

func TestGlobalInitializerMustBeConst(t *testing.T) {
	s := analyzeSource(t, `
fn g() -> i32 { return 1; }
var x: i32 = g();
`, nil)

	s.expectError(t, "global variable initializer requires constant expression")
}

func TestNumLitDoesNotFit(t *testing.T) {
	s := analyzeSource(t, `const x: u8 = 300;`, nil)
	s.expectError(t, "integer value 300 cannot be implicitly casted to type 'u8'")
}

func TestConstantFoldingOverflowChecked(t *testing.T) {
	s := analyzeSource(t, `const x: u8 = 200 + 100;`, nil)
	s.expectError(t, "integer value 300 cannot be implicitly casted to type 'u8'")
}

func TestConstantArithmeticFolds(t *testing.T) {
	s := analyzeSource(t, `
const a = 6 * 7;
const b = (1 << 10) - 1;
const c = true && false;
const d = 10 < 20;
`, nil)
	s.expectNoErrors(t)

	constOf := func(i int) *sem.ConstValue {
		decl := s.file.Root.Decls[i].(*ast.VarDecl)
		return &s.analyzer.Resolved().Get(decl.Init).Const
	}

	if constOf(0).Num.String() != "42" {
		t.Errorf("a = %s, want 42", constOf(0).Num.String())
	}

	if constOf(1).Num.String() != "1023" {
		t.Errorf("b = %s, want 1023", constOf(1).Num.String())
	}

	if constOf(2).Bool != false {
		t.Errorf("c = %v, want false", constOf(2).Bool)
	}

	if constOf(3).Bool != true {
		t.Errorf("d = %v, want true", constOf(3).Bool)
	}
}

func TestConstIfFoldsTakenBranch(t *testing.T) {
	s := analyzeSource(t, `const x: i32 = if (false) { 1; } else { 2; };`, nil)
	s.expectNoErrors(t)

	decl := s.file.Root.Decls[0].(*ast.VarDecl)
	re := s.analyzer.Resolved().Get(decl.Init)

	if !re.Const.OK || re.Const.Num.String() != "2" {
		t.Errorf("constant conditional did not fold to the taken branch")
	}
}

func TestConstIfAnalyzesBothBranches(t *testing.T) {
	// A constant condition folds to the taken branch's value, but both
	// branches are still type-analyzed.
	s := analyzeSource(t, `
fn f() -> i32 {
	return if (true) { 1; } else { bad; };
}
`, nil)

	s.expectError(t, "use of undeclared identifier 'bad'")
}

// -----------------------------------------------------------------------------

func TestEnumResolution(t *testing.T) {
	s := analyzeSource(t, `
enum Shape {
	Point,
	Circle: f64,
	Rect: [2]f64,
}
`, nil)
	s.expectNoErrors(t)

	et, ok := s.file.Scope.FindType("Shape").(*typing.EnumType)
	if !ok {
		t.Fatalf("Shape not registered as enum")
	}

	if !et.Complete || len(et.Fields) != 3 {
		t.Fatalf("Shape incomplete")
	}

	if et.TagType != typing.U8 {
		t.Errorf("tag type = %s, want u8", et.TagType.Repr())
	}

	if et.GenFieldCount != 2 {
		t.Errorf("gen field count = %d, want 2", et.GenFieldCount)
	}

	// {tag, largest payload}: 8 + 128 bits.
	if et.SizeInBits != 136 {
		t.Errorf("size = %d bits, want 136", et.SizeInBits)
	}
}

func TestAllVoidEnumCollapsesToTag(t *testing.T) {
	s := analyzeSource(t, `
enum Dir { North, South, East, West, }
const c = Dir.South;
`, nil)
	s.expectNoErrors(t)

	et := s.file.Scope.FindType("Dir").(*typing.EnumType)
	if et.GenFieldCount != 0 || et.SizeInBits != 8 {
		t.Errorf("all-void enum size = %d bits, want 8", et.SizeInBits)
	}

	decl := s.file.Root.Decls[1].(*ast.VarDecl)
	re := s.analyzer.Resolved().Get(decl.Init)
	if !re.Const.OK || re.Const.Enum.Tag != 1 {
		t.Errorf("Dir.South tag = %d, want 1", re.Const.Enum.Tag)
	}
}

func TestEnumPayloadVariantRequiresArgument(t *testing.T) {
	s := analyzeSource(t, `
enum Shape { Circle: f64, }
fn f() { const c = Shape.Circle; }
`, nil)

	s.expectError(t, "enum value 'Shape.Circle' requires parameter of type 'f64'")
}

func TestEnumEqualityWithPayloadRejected(t *testing.T) {
	s := analyzeSource(t, `
enum Shape { Point, Circle: f64, }
fn f(a: Shape, b: Shape) -> bool { return a == b; }
`, nil)

	s.expectError(t, "cannot compare enum 'Shape'")
}

func TestSwitchExhaustiveness(t *testing.T) {
	s := analyzeSource(t, `
enum Dir { North, South, }
fn f(d: Dir) -> i32 {
	return switch (d) {
		Dir.North => 0,
	};
}
`, nil)

	s.expectError(t, "switch does not handle 'Dir.South'")
}

func TestSwitchOverEnum(t *testing.T) {
	s := analyzeSource(t, `
enum Dir { North, South, }
fn f(d: Dir) -> i32 {
	return switch (d) {
		Dir.North => 0,
		Dir.South => 1,
	};
}
`, nil)

	s.expectNoErrors(t)
}

func TestSwitchRequiresConstantItems(t *testing.T) {
	s := analyzeSource(t, `
fn f(x: i32, y: i32) -> i32 {
	return switch (x) {
		y => 0,
		else => 1,
	};
}
`, nil)

	s.expectError(t, "unable to resolve constant expression")
}

func TestStructLiteralFieldChecks(t *testing.T) {
	s := analyzeSource(t, `
struct Point { x: i32, y: i32, }
fn f() { const a = Point {.x = 1,}; }
`, nil)

	s.expectError(t, "missing field: 'y'")
}

func TestStructLiteralDuplicateField(t *testing.T) {
	s := analyzeSource(t, `
struct Point { x: i32, y: i32, }
const a = Point {.x = 1, .x = 2, .y = 3,};
`, nil)

	s.expectError(t, "duplicate field")
}

func TestMethodCall(t *testing.T) {
	s := analyzeSource(t, `
struct Point {
	x: i32,
	y: i32,
	fn sum(p: Point) -> i32 { return p.x + p.y; }
}
fn f(p: Point) -> i32 { return p.sum(); }
`, nil)

	s.expectNoErrors(t)
}

// -----------------------------------------------------------------------------

func TestSliceOfArrayHasConstLen(t *testing.T) {
	s := analyzeSource(t, `
const xs = [4]i32 {1, 2, 3, 4};
const part = xs[1...3];
`, nil)
	s.expectNoErrors(t)

	decl := s.file.Root.Decls[1].(*ast.VarDecl)
	re := s.analyzer.Resolved().Get(decl.Init)

	if _, ok := re.Type.(*typing.SliceType); !ok {
		t.Fatalf("slice expr type = %s", re.Type.Repr())
	}

	if !re.Const.OK || re.Const.Fields[1].Num.String() != "2" {
		t.Errorf("slice len not folded to 2")
	}
}

func TestIndexRequiresArrayLike(t *testing.T) {
	s := analyzeSource(t, `fn f(x: i32) -> i32 { return x[0]; }`, nil)
	s.expectError(t, "array access of non-array type 'i32'")
}

func TestArrayLenField(t *testing.T) {
	s := analyzeSource(t, `
const xs = [3]u8 {1, 2, 3};
const n = xs.len;
`, nil)
	s.expectNoErrors(t)

	decl := s.file.Root.Decls[1].(*ast.VarDecl)
	re := s.analyzer.Resolved().Get(decl.Init)

	if re.Type != typing.Isize {
		t.Errorf("len type = %s, want isize", re.Type.Repr())
	}

	if !re.Const.OK || re.Const.Num.String() != "3" {
		t.Errorf("len not folded to 3")
	}
}

func TestDerefRequiresPointer(t *testing.T) {
	s := analyzeSource(t, `fn f(x: i32) -> i32 { return *x; }`, nil)
	s.expectError(t, "indirection requires pointer operand")
}

func TestAddressOfLiteralRejected(t *testing.T) {
	s := analyzeSource(t, `
fn f() {
	const c = 5;
	var p = &c;
}
`, nil)
	s.expectError(t, "unable to get address of type '(integer literal)'")
}

func TestExplicitCastClassification(t *testing.T) {
	s := analyzeSource(t, `
fn f(p: &u8, x: i64) {
	var a = usize(p);
	var b = u8(x);
	var c = (&u16)(usize(p));
	return;
}
`, nil)
	s.expectNoErrors(t)

	castOf := func(i int) sem.CastOp {
		decl := s.fnBody(t, 0).Stmts[i].(*ast.VarDecl)
		return s.analyzer.Resolved().Get(decl.Init).Cast
	}

	if castOf(0) != sem.CastPtrToInt {
		t.Errorf("usize(ptr) cast = %d, want PtrToInt", castOf(0))
	}

	if castOf(1) != sem.CastIntWidenOrShorten {
		t.Errorf("u8(i64) cast = %d, want IntWidenOrShorten", castOf(1))
	}

	if castOf(2) != sem.CastIntToPtr {
		t.Errorf("(&u16)(usize) cast = %d, want IntToPtr", castOf(2))
	}
}

func TestErrToIntCast(t *testing.T) {
	s := analyzeSource(t, `
error Failed;
fn f() -> i32 { return i32(error.Failed); }
`, nil)
	s.expectNoErrors(t)

	ret := s.fnBody(t, 1).Stmts[0].(*ast.ReturnStmt)
	re := s.analyzer.Resolved().Get(ret.Value)

	if re.Cast != sem.CastErrToInt {
		t.Fatalf("cast = %d, want ErrToInt", re.Cast)
	}

	if !re.Const.OK || re.Const.Num.String() != "1" {
		t.Errorf("error tag not folded to 1")
	}
}

func TestLabelUnused(t *testing.T) {
	s := analyzeSource(t, `
fn f() {
	top:
	return;
}
`, nil)

	s.expectError(t, "label 'top' defined but not used")
}

func TestGotoUndeclaredLabel(t *testing.T) {
	s := analyzeSource(t, `fn f() { goto nowhere; }`, nil)
	s.expectError(t, "use of undeclared label 'nowhere'")
}

func TestUnreachableCode(t *testing.T) {
	s := analyzeSource(t, `
fn f() -> i32 {
	return 1;
	2;
}
`, nil)

	s.expectError(t, "unreachable code")
}

func TestInvalidDirective(t *testing.T) {
	s := analyzeSource(t, `
#frobnicate("x")
fn f() { }
`, nil)

	s.expectError(t, "invalid directive: 'frobnicate'")
}

func TestNakedAttribute(t *testing.T) {
	s := analyzeSource(t, `
#attribute("naked")
fn f() { }
`, nil)
	s.expectNoErrors(t)

	var entry *sem.FnEntry
	for _, fn := range s.analyzer.FnDefs {
		if fn.Name == "f" {
			entry = fn
		}
	}

	if entry == nil || !entry.Type.Naked {
		t.Errorf("naked attribute not applied")
	}
}

// -----------------------------------------------------------------------------

func TestAnalyzerDeterminism(t *testing.T) {
	src := `
struct S { a: S, }
const A = B;
const B = A;
fn f() { missing1; missing2; }
`

	first := errorTexts(analyzeSource(t, src, nil).rep)
	for i := 0; i < 4; i++ {
		again := errorTexts(analyzeSource(t, src, nil).rep)

		if len(first) != len(again) {
			t.Fatalf("error count varies between runs")
		}

		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("error order varies: %v vs %v", first, again)
			}
		}
	}
}

func TestInvalidDoesNotCascade(t *testing.T) {
	// One undeclared identifier poisons its whole expression tree without
	// producing follow-on diagnostics.
	s := analyzeSource(t, `fn f() -> i32 { return missing + 1 * 2; }`, nil)
	s.expectError(t, "use of undeclared identifier 'missing'")
}

// -----------------------------------------------------------------------------

// fakeCAdapter is a test double for the header ingestion boundary.
type fakeCAdapter struct {
	gotDirectives string
}

func (f *fakeCAdapter) Ingest(directives string) ([]cimport.Decl, error) {
	f.gotDirectives = directives

	return []cimport.Decl{
		cimport.FnDecl{
			Name:       "putchar",
			ParamTypes: []string{"i32"},
			ParamNames: []string{"c"},
			ReturnType: "i32",
		},
		cimport.ConstDecl{Name: "EOF", Value: -1},
	}, nil
}

func TestCImportMergesDeclarations(t *testing.T) {
	adapter := &fakeCAdapter{}

	s := analyzeSource(t, `
c_import {
	@c_include("stdio.h");
	@c_define("FOO", 1);
	@c_undef("FOO");
}
fn f() -> i32 { return putchar(65); }
const sentinel: i32 = EOF;
`, adapter)
	s.expectNoErrors(t)

	want := "#include <stdio.h>\n#define FOO 1\n#undef FOO\n"
	if adapter.gotDirectives != want {
		t.Errorf("directive buffer = %q, want %q", adapter.gotDirectives, want)
	}

	// The ingested prototype is visible to the importing file.
	if _, ok := s.file.FnTable["putchar"]; !ok {
		t.Errorf("putchar not merged into importing file")
	}

	if v, ok := s.file.Scope.Vars["EOF"]; !ok || !v.Const {
		t.Errorf("EOF constant not merged into importing file")
	}
}

func TestCIncludeOutsideCImport(t *testing.T) {
	s := analyzeSource(t, `fn f() { @c_include("stdio.h"); }`, nil)
	s.expectError(t, "@c_include valid only in c_import blocks")
}
