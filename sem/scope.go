package sem

import (
	"sable/ast"
	"sable/cimport"
	"sable/typing"
)

// StructValAlloca records a struct-valued expression for which the backend
// must allocate a temporary.
type StructValAlloca struct {
	Type typing.DataType
	Node ast.Node
}

// Scope is a nested symbol environment.  Scopes form a tree rooted at each
// source file; a scope is created when entering a file, function, or block
// and is never shrunk, so later passes can still inspect its variables.
type Scope struct {
	// Node is the node that opened the scope: a file root, function
	// definition, or block-bearing expression.  Nil only for synthetic
	// scopes.
	Node ast.Node

	// Fn is the enclosing function entry; nil at file scope.
	Fn *FnEntry

	// Parent is the enclosing scope; nil at the root.
	Parent *Scope

	// Vars maps names to visible variables.  VarList additionally holds
	// anonymous variables, which are allocated but not visible to lookup.
	Vars    map[string]*Var
	VarList []*Var

	// Types maps names to user-declared container types.
	Types map[string]typing.DataType

	// Errors maps names to declared error values.
	Errors map[string]*ErrorEntry

	// ParentLoop is the nearest enclosing loop node; nil outside loops.
	ParentLoop ast.Node

	// CastAllocas lists cast expressions requiring a backend temporary.
	CastAllocas []ast.Expr

	// StructExprAllocas lists struct-valued expressions requiring a backend
	// temporary.
	StructExprAllocas []*StructValAlloca

	// CImportBuf accumulates preprocessor directives while analyzing the body
	// of a c_import block; nil everywhere else.
	CImportBuf *cimport.Buffer
}

// NewScope creates a child scope of parent opened by the given node.  The
// enclosing loop, function, and c_import buffer are inherited.
func NewScope(node ast.Node, parent *Scope) *Scope {
	s := &Scope{
		Node:   node,
		Parent: parent,
		Vars:   make(map[string]*Var),
		Types:  make(map[string]typing.DataType),
		Errors: make(map[string]*ErrorEntry),
	}

	if parent != nil {
		s.ParentLoop = parent.ParentLoop
		s.CImportBuf = parent.CImportBuf
		s.Fn = parent.Fn
	}

	if s.Fn != nil {
		s.Fn.AllScopes = append(s.Fn.AllScopes, s)
	}

	return s
}

// NewFnScope creates the root scope of a function definition.
func NewFnScope(node ast.Node, parent *Scope, fn *FnEntry) *Scope {
	s := NewScope(node, parent)
	s.Fn = fn
	fn.AllScopes = append(fn.AllScopes, s)
	return s
}

// -----------------------------------------------------------------------------

// FindVar looks up a variable by name, walking the parent chain.
func (s *Scope) FindVar(name string) *Var {
	for scope := s; scope != nil; scope = scope.Parent {
		if v, ok := scope.Vars[name]; ok {
			return v
		}
	}

	return nil
}

// FindLocalVar looks up a variable by name within the enclosing function's
// scope chain only.
func (s *Scope) FindLocalVar(name string) *Var {
	for scope := s; scope != nil && scope.Fn != nil; scope = scope.Parent {
		if v, ok := scope.Vars[name]; ok {
			return v
		}
	}

	return nil
}

// FindType looks up a user-declared type by name, walking the parent chain.
func (s *Scope) FindType(name string) typing.DataType {
	for scope := s; scope != nil; scope = scope.Parent {
		if t, ok := scope.Types[name]; ok {
			return t
		}
	}

	return nil
}

// FindError looks up an error value by name, walking the parent chain.
func (s *Scope) FindError(name string) *ErrorEntry {
	for scope := s; scope != nil; scope = scope.Parent {
		if e, ok := scope.Errors[name]; ok {
			return e
		}
	}

	return nil
}
