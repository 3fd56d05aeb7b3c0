package depm

import (
	"testing"

	"sable/ast"
	"sable/report"
)

// testNode is a minimal AST node for driving the graph directly.
func testNode(index uint32) ast.Node {
	base := ast.NewASTBaseOn(&report.TextSpan{}, index)
	return &testDeclNode{base}
}

type testDeclNode struct {
	ast.ASTBase
}

func newTestDecl(name string, index uint32, deps ...string) *TopLevelDecl {
	decl := &TopLevelDecl{
		Name: name,
		Node: testNode(index),
		Deps: make(map[string]ast.Node),
	}

	for _, dep := range deps {
		decl.Deps[dep] = decl.Node
	}

	return decl
}

func TestResolveAllDemandOrder(t *testing.T) {
	g := NewDeclGraph()

	// A (index 0) depends on B (index 1): B must resolve first even though A
	// has the smaller creation index.
	a := newTestDecl("A", 0, "B")
	b := newTestDecl("B", 1, "C")
	c := newTestDecl("C", 2)

	g.Add(a)
	g.Add(b)
	g.Add(c)

	var order []string
	g.ResolveAll(func(d *TopLevelDecl) {
		order = append(order, d.Name)
		g.SatisfyDep(d.Name)
	}, nil)

	// C has no dependencies, so Add does not park it: the caller resolves it
	// eagerly and ResolveAll sees only A and B.
	want := []string{"B", "A"}
	if len(order) != len(want) {
		t.Fatalf("resolved %d decls, want %d", len(order), len(want))
	}

	for i, name := range want {
		if order[i] != name {
			t.Errorf("order[%d] = %s, want %s", i, order[i], name)
		}
	}
}

func TestResolveAllDeterministicStart(t *testing.T) {
	// Independent unresolved declarations resolve in creation-index order
	// regardless of registration order.
	for trial := 0; trial < 8; trial++ {
		g := NewDeclGraph()

		g.Add(newTestDecl("Z", 5, "Missing"))
		g.Add(newTestDecl("A", 3, "Missing"))
		g.Add(newTestDecl("M", 4, "Missing"))

		var order []string
		g.ResolveAll(func(d *TopLevelDecl) {
			order = append(order, d.Name)
			g.SatisfyDep(d.Name)
		}, nil)

		want := []string{"A", "M", "Z"}
		for i, name := range want {
			if order[i] != name {
				t.Fatalf("trial %d: order = %v, want %v", trial, order, want)
			}
		}
	}
}

func TestResolveAllCycleDetection(t *testing.T) {
	g := NewDeclGraph()

	a := newTestDecl("A", 0, "B")
	b := newTestDecl("B", 1, "A")

	g.Add(a)
	g.Add(b)

	var cycles []string
	var order []string
	g.ResolveAll(func(d *TopLevelDecl) {
		order = append(order, d.Name)
		g.SatisfyDep(d.Name)
	}, func(decl *TopLevelDecl, name string, ref ast.Node) {
		cycles = append(cycles, decl.Name+"->"+name)
	})

	if len(cycles) != 1 || cycles[0] != "B->A" {
		t.Errorf("cycles = %v, want [B->A]", cycles)
	}

	// Both declarations still resolve so diagnostics can continue.
	if len(order) != 2 {
		t.Errorf("resolved %d decls, want 2", len(order))
	}
}

func TestSatisfyDep(t *testing.T) {
	g := NewDeclGraph()

	g.Add(newTestDecl("A", 0, "B"))

	if _, ok := g.Unresolved("A"); !ok {
		t.Fatalf("A not parked as unresolved")
	}

	g.SatisfyDep("A")

	if _, ok := g.Unresolved("A"); ok {
		t.Errorf("A still unresolved after satisfaction")
	}
}

func TestEagerDeclsNotParked(t *testing.T) {
	g := NewDeclGraph()

	decl := newTestDecl("A", 0)
	g.Add(decl)

	if _, ok := g.Unresolved("A"); ok {
		t.Errorf("dependency-free declaration parked as unresolved")
	}

	if g.DeclOf(decl.Node) != decl {
		t.Errorf("metadata lookup by node failed")
	}
}
