package ast

// Enumeration of visibility modifiers.
const (
	VisibPrivate = iota
	VisibPub
	VisibExport
)

// Directive is a `#name("param")` annotation attached to a declaration.
type Directive struct {
	ASTBase

	Name  string
	Param string
}

// -----------------------------------------------------------------------------

// Root is the root node of one parsed source file: an ordered list of
// top-level declarations.
type Root struct {
	ASTBase

	Decls []Node
}

// RootExport declares the output artifact of the root source file, eg.
// `export exe "hello";`.  It may carry `#version` and `#link` directives.
type RootExport struct {
	ASTBase

	// OutKind must be one of the enumerated output kinds.
	OutKind int

	OutName    string
	Directives []*Directive
}

// Enumeration of root export output kinds.
const (
	OutExe = iota
	OutLib
	OutObj
)

// Import brings another source file's public declarations into scope:
// `import "path";`.
type Import struct {
	ASTBase

	Path       string
	Directives []*Directive
}

// CImport absorbs C header declarations into the module graph:
// `c_import { @c_include("..."); }`.  The block is analyzed with a directive
// buffer in scope; the accumulated buffer is handed to the header ingestion
// adapter.
type CImport struct {
	ASTBase

	Block *Block
}

// -----------------------------------------------------------------------------

// ParamDecl is a single parameter declaration in a function prototype.
type ParamDecl struct {
	ASTBase

	Name    string
	Type    Expr
	NoAlias bool
}

// FnProto is a function prototype: the header of a definition, or a bare
// `extern fn` declaration.
type FnProto struct {
	ASTBase

	Name       string
	Visib      int
	Params     []*ParamDecl
	ReturnType Expr
	VarArgs    bool
	Extern     bool
	Directives []*Directive
}

// FnDef is a function definition: a prototype plus a body.
type FnDef struct {
	ASTBase

	Proto *FnProto
	Body  *Block
}

// -----------------------------------------------------------------------------

// VarDecl declares a variable or constant.  At the top level it is a global
// declaration; inside a block it is a statement.  One or both of Type and
// Init are non-nil.
type VarDecl struct {
	ASTBase

	Name   string
	Const  bool
	Extern bool
	Visib  int
	Type   Expr
	Init   Expr
}

// ErrorDecl declares a new error value: `error Name;`.
type ErrorDecl struct {
	ASTBase

	Name  string
	Visib int
}

// -----------------------------------------------------------------------------

// Enumeration of container kinds.
const (
	ContainerStruct = iota
	ContainerEnum
)

// FieldDecl is a single field of a struct or enum declaration.  For enums a
// nil Type means the variant carries no payload.
type FieldDecl struct {
	ASTBase

	Name string
	Type Expr
}

// ContainerDecl declares a struct or an enum, possibly with method
// definitions.
type ContainerDecl struct {
	ASTBase

	Name       string
	Kind       int
	Fields     []*FieldDecl
	Methods    []*FnDef
	Packed     bool
	Visib      int
	Directives []*Directive
}
