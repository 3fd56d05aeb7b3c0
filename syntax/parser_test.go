package syntax

import (
	"testing"

	"sable/ast"
	"sable/report"
)

// parseSource parses the given source, failing the test on syntax errors.
func parseSource(t *testing.T, src string) *ast.Root {
	t.Helper()

	rep := report.NewReporter(report.LogLevelSilent)
	var counter uint32

	p := NewParser(rep, "test.sbl", "test.sbl", src, &counter)
	root, ok := p.ParseFile()
	if !ok {
		t.Fatalf("parse failed: %v", rep.Messages()[0])
	}

	return root
}

func TestParseFnDef(t *testing.T) {
	root := parseSource(t, `
fn add(a: i32, b: i32) -> i32 {
	return a + b;
}
`)

	if len(root.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(root.Decls))
	}

	def, ok := root.Decls[0].(*ast.FnDef)
	if !ok {
		t.Fatalf("decl is %T, want *ast.FnDef", root.Decls[0])
	}

	if def.Proto.Name != "add" || len(def.Proto.Params) != 2 {
		t.Errorf("proto = %s/%d", def.Proto.Name, len(def.Proto.Params))
	}

	if def.Proto.ReturnType == nil {
		t.Errorf("missing return type")
	}

	ret, ok := def.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ReturnStmt", def.Body.Stmts[0])
	}

	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || bin.Op != ast.BinOpAdd {
		t.Errorf("return value is not an addition")
	}
}

func TestParseTopLevelDecls(t *testing.T) {
	root := parseSource(t, `
export exe "demo";
import "other";
error OutOfMemory;
const limit: i32 = 100;
extern fn puts(s: &const u8) -> i32;
struct Point {
	x: i32,
	y: i32,
	fn sum(p: Point) -> i32 { return p.x + p.y; }
}
enum Shape {
	Circle: f64,
	Empty,
}
`)

	if len(root.Decls) != 7 {
		t.Fatalf("got %d decls, want 7", len(root.Decls))
	}

	if exp, ok := root.Decls[0].(*ast.RootExport); !ok || exp.OutKind != ast.OutExe || exp.OutName != "demo" {
		t.Errorf("root export misparsed")
	}

	if imp, ok := root.Decls[1].(*ast.Import); !ok || imp.Path != "other" {
		t.Errorf("import misparsed")
	}

	if errDecl, ok := root.Decls[2].(*ast.ErrorDecl); !ok || errDecl.Name != "OutOfMemory" {
		t.Errorf("error decl misparsed")
	}

	if vd, ok := root.Decls[3].(*ast.VarDecl); !ok || !vd.Const || vd.Name != "limit" {
		t.Errorf("const decl misparsed")
	}

	proto, ok := root.Decls[4].(*ast.FnProto)
	if !ok || !proto.Extern || proto.Name != "puts" {
		t.Fatalf("extern fn misparsed")
	}

	st, ok := root.Decls[5].(*ast.ContainerDecl)
	if !ok || st.Kind != ast.ContainerStruct || len(st.Fields) != 2 || len(st.Methods) != 1 {
		t.Errorf("struct decl misparsed")
	}

	en, ok := root.Decls[6].(*ast.ContainerDecl)
	if !ok || en.Kind != ast.ContainerEnum || len(en.Fields) != 2 {
		t.Fatalf("enum decl misparsed")
	}

	if en.Fields[0].Type == nil || en.Fields[1].Type != nil {
		t.Errorf("enum payload types misparsed")
	}
}

func TestParsePrecedence(t *testing.T) {
	root := parseSource(t, `const x = 1 + 2 * 3;`)

	decl := root.Decls[0].(*ast.VarDecl)
	add, ok := decl.Init.(*ast.BinaryExpr)
	if !ok || add.Op != ast.BinOpAdd {
		t.Fatalf("top operator is not +")
	}

	mul, ok := add.Rhs.(*ast.BinaryExpr)
	if !ok || mul.Op != ast.BinOpMul {
		t.Errorf("* does not bind tighter than +")
	}
}

func TestParseTypeExprs(t *testing.T) {
	root := parseSource(t, `
extern var a: &const u8;
extern var b: [4]i32;
extern var c: []const u8;
extern var d: ?i32;
extern var e: %i32;
`)

	declType := func(i int) ast.Expr {
		return root.Decls[i].(*ast.VarDecl).Type
	}

	if pre, ok := declType(0).(*ast.PrefixExpr); !ok || pre.Op != ast.PrefixOpConstAddrOf {
		t.Errorf("&const type misparsed")
	}

	if arr, ok := declType(1).(*ast.ArrayTypeExpr); !ok || arr.Size == nil {
		t.Errorf("sized array type misparsed")
	}

	if sl, ok := declType(2).(*ast.ArrayTypeExpr); !ok || sl.Size != nil || !sl.Const {
		t.Errorf("const slice type misparsed")
	}

	if opt, ok := declType(3).(*ast.PrefixExpr); !ok || opt.Op != ast.PrefixOpOptional {
		t.Errorf("optional type misparsed")
	}

	if errT, ok := declType(4).(*ast.PrefixExpr); !ok || errT.Op != ast.PrefixOpError {
		t.Errorf("error union type misparsed")
	}
}

func TestParseControlFlow(t *testing.T) {
	root := parseSource(t, `
fn f(c: bool, xs: []i32) {
	if (c) {
		return;
	} else {
		return;
	}
	if (var x ?= g()) {
		x;
	}
	while (c) {
		break;
	}
	for (x, i : xs) {
		continue;
	}
	top:
	goto top;
	switch (1) {
		1, 2 => 10,
		3 ... 5 => 20,
		else => 30,
	};
}
`)

	body := root.Decls[0].(*ast.FnDef).Body

	if _, ok := body.Stmts[0].(*ast.IfExpr); !ok {
		t.Errorf("if misparsed: %T", body.Stmts[0])
	}

	ifVar, ok := body.Stmts[1].(*ast.IfVarExpr)
	if !ok || ifVar.Decl.Name != "x" {
		t.Errorf("if-var misparsed")
	}

	if _, ok := body.Stmts[2].(*ast.WhileExpr); !ok {
		t.Errorf("while misparsed")
	}

	forExpr, ok := body.Stmts[3].(*ast.ForExpr)
	if !ok || forExpr.Index == nil {
		t.Errorf("for misparsed")
	}

	if label, ok := body.Stmts[4].(*ast.Label); !ok || label.Name != "top" {
		t.Errorf("label misparsed")
	}

	if gt, ok := body.Stmts[5].(*ast.Goto); !ok || gt.Name != "top" {
		t.Errorf("goto misparsed")
	}

	sw, ok := body.Stmts[6].(*ast.SwitchExpr)
	if !ok || len(sw.Prongs) != 3 {
		t.Fatalf("switch misparsed")
	}

	if len(sw.Prongs[0].Items) != 2 {
		t.Errorf("multi-item prong misparsed")
	}

	if _, ok := sw.Prongs[1].Items[0].(*ast.SwitchRange); !ok {
		t.Errorf("range prong misparsed")
	}

	if len(sw.Prongs[2].Items) != 0 {
		t.Errorf("else prong misparsed")
	}
}

func TestParseUnwrapForms(t *testing.T) {
	root := parseSource(t, `
fn f() {
	var a = x %% |e| y;
	var b = m ?? 0;
}
`)

	body := root.Decls[0].(*ast.FnDef).Body

	unwrap, ok := body.Stmts[0].(*ast.VarDecl).Init.(*ast.UnwrapErrorExpr)
	if !ok || unwrap.ErrVar == nil || unwrap.ErrVar.Name != "e" {
		t.Errorf("%%%% with capture misparsed")
	}

	maybe, ok := body.Stmts[1].(*ast.VarDecl).Init.(*ast.BinaryExpr)
	if !ok || maybe.Op != ast.BinOpUnwrapOptional {
		t.Errorf("?? misparsed")
	}
}

func TestParseContainerInit(t *testing.T) {
	root := parseSource(t, `
const p = Point {.x = 1, .y = 2};
const xs = [3]i32 {1, 2, 3};
const v = void{};
`)

	structInit, ok := root.Decls[0].(*ast.VarDecl).Init.(*ast.ContainerInit)
	if !ok || structInit.Kind != ast.InitKindStruct || len(structInit.FieldInits) != 2 {
		t.Errorf("struct init misparsed")
	}

	arrayInit, ok := root.Decls[1].(*ast.VarDecl).Init.(*ast.ContainerInit)
	if !ok || arrayInit.Kind != ast.InitKindArray || len(arrayInit.Elems) != 3 {
		t.Errorf("array init misparsed")
	}

	voidInit, ok := root.Decls[2].(*ast.VarDecl).Init.(*ast.ContainerInit)
	if !ok || len(voidInit.Elems) != 0 {
		t.Errorf("void value misparsed")
	}
}

func TestParseDirectives(t *testing.T) {
	root := parseSource(t, `
#attribute("naked")
fn f() { }
`)

	def := root.Decls[0].(*ast.FnDef)
	if len(def.Proto.Directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(def.Proto.Directives))
	}

	dir := def.Proto.Directives[0]
	if dir.Name != "attribute" || dir.Param != "naked" {
		t.Errorf("directive = %s(%q)", dir.Name, dir.Param)
	}
}

func TestCreateIndicesMonotonic(t *testing.T) {
	rep := report.NewReporter(report.LogLevelSilent)
	var counter uint32

	p1 := NewParser(rep, "a.sbl", "a.sbl", "const a = 1;", &counter)
	root1, _ := p1.ParseFile()

	p2 := NewParser(rep, "b.sbl", "b.sbl", "const b = 2;", &counter)
	root2, _ := p2.ParseFile()

	// Creation indices are globally unique and monotonic across files of one
	// session.
	if root2.Decls[0].CreateIndex() <= root1.Decls[0].CreateIndex() {
		t.Errorf("creation indices not monotonic across files")
	}
}

func TestParseErrorReported(t *testing.T) {
	rep := report.NewReporter(report.LogLevelSilent)
	var counter uint32

	p := NewParser(rep, "bad.sbl", "bad.sbl", "fn { }", &counter)
	if _, ok := p.ParseFile(); ok {
		t.Fatalf("malformed input parsed successfully")
	}

	if rep.ErrorCount() != 1 {
		t.Errorf("got %d errors, want 1", rep.ErrorCount())
	}
}
