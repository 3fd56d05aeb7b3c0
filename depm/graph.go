package depm

import (
	"sort"

	"sable/ast"
)

// TopLevelDecl is the declaration-graph metadata attached to one top-level
// declaration.
type TopLevelDecl struct {
	// Name is the name the declaration defines.
	Name string

	Node ast.Node
	File *SableFile

	// Deps maps the names of other top-level declarations this declaration
	// textually references to a referencing node (for error positions).
	Deps map[string]ast.Node

	// InCurrentDeps flags the declaration as on the active resolution path;
	// observing it during recursion identifies a dependency cycle.
	InCurrentDeps bool
}

// -----------------------------------------------------------------------------

// ResolveFunc resolves a single declaration: it makes the declaration's type
// (and, for globals, its constant value) known.  The resolver must call
// SatisfyDep for the declaration it resolved.
type ResolveFunc func(*TopLevelDecl)

// CycleFunc reports a dependency cycle observed at its back-edge: decl
// references name, which is already on the active resolution path.
type CycleFunc func(decl *TopLevelDecl, name string, ref ast.Node)

// DeclGraph collects per-declaration dependency sets and drives demand-first
// resolution with cycle detection.  Declarations whose dependency sets are
// empty are resolved eagerly at registration; the rest wait in the unresolved
// map until demanded.
type DeclGraph struct {
	// unresolved maps declaration names to declarations whose dependencies
	// are not yet satisfied.
	unresolved map[string]*TopLevelDecl

	// decls maps declaration nodes to their graph metadata.
	decls map[ast.Node]*TopLevelDecl
}

// NewDeclGraph creates a new, empty declaration graph.
func NewDeclGraph() *DeclGraph {
	return &DeclGraph{
		unresolved: make(map[string]*TopLevelDecl),
		decls:      make(map[ast.Node]*TopLevelDecl),
	}
}

// Add registers a declaration's metadata.  If the declaration has unresolved
// dependencies it is parked in the unresolved map and resolved on demand;
// otherwise the caller should resolve it eagerly.
func (g *DeclGraph) Add(decl *TopLevelDecl) {
	g.decls[decl.Node] = decl

	if len(decl.Deps) > 0 {
		g.unresolved[decl.Name] = decl
	}
}

// DeclOf returns the graph metadata for the given declaration node, or nil.
func (g *DeclGraph) DeclOf(node ast.Node) *TopLevelDecl {
	return g.decls[node]
}

// Unresolved returns the unresolved declaration with the given name.
func (g *DeclGraph) Unresolved(name string) (*TopLevelDecl, bool) {
	d, ok := g.unresolved[name]
	return d, ok
}

// SatisfyDep removes a just-resolved declaration from the unresolved map so
// later demands of the name succeed immediately.
func (g *DeclGraph) SatisfyDep(name string) {
	delete(g.unresolved, name)
}

// -----------------------------------------------------------------------------

// ResolveAll drives resolution of every unresolved declaration.  For the sake
// of determinism it always starts from the declaration with the smallest
// creation index, and visits each declaration's dependencies in name order.
func (g *DeclGraph) ResolveAll(resolve ResolveFunc, onCycle CycleFunc) {
	for len(g.unresolved) > 0 {
		var decl *TopLevelDecl
		for _, d := range g.unresolved {
			if decl == nil || d.Node.CreateIndex() < decl.Node.CreateIndex() {
				decl = d
			}
		}

		decl.InCurrentDeps = true
		g.resolveRecursive(decl, resolve, onCycle)
		decl.InCurrentDeps = false
	}
}

// resolveRecursive resolves the dependencies of decl depth-first, then decl
// itself.
func (g *DeclGraph) resolveRecursive(decl *TopLevelDecl, resolve ResolveFunc, onCycle CycleFunc) {
	depNames := make([]string, 0, len(decl.Deps))
	for name := range decl.Deps {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	for _, name := range depNames {
		child, ok := g.unresolved[name]
		if !ok {
			continue
		}

		if child.InCurrentDeps {
			// Dependency loop: report at the back-edge and let resolution
			// proceed; the unresolved name will poison its uses.
			if onCycle != nil {
				onCycle(decl, name, decl.Deps[name])
			}
			continue
		}

		child.InCurrentDeps = true
		g.resolveRecursive(child, resolve, onCycle)
		child.InCurrentDeps = false
	}

	resolve(decl)
}
