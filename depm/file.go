package depm

import (
	"sable/ast"
	"sable/sem"
)

// ImporterRef records a file importing another file, along with the import
// node for error reporting.
type ImporterRef struct {
	File *SableFile
	Node ast.Node
}

// SableFile is one imported source file: its parsed root, its file-level
// scope, and its function table.  Files synthesized from a c_import block
// record the originating node.
type SableFile struct {
	// AbsPath is the absolute path of the file on disk.  ReprPath is the path
	// as shown to the user.
	AbsPath  string
	ReprPath string

	Root *ast.Root

	// Scope is the file-level scope holding global variables, container
	// types, and error values.
	Scope *sem.Scope

	// FnTable maps names to file-level functions.
	FnTable map[string]*sem.FnEntry

	// Importers lists the files that import this file; public declarations
	// are propagated into each importer as they resolve.
	Importers []ImporterRef

	// CImportNode is the c_import node this file was synthesized from, or
	// nil.
	CImportNode ast.Node
}

// NewFile creates a new file entity with an empty scope.
func NewFile(absPath, reprPath string, root *ast.Root) *SableFile {
	return &SableFile{
		AbsPath:  absPath,
		ReprPath: reprPath,
		Root:     root,
		Scope:    sem.NewScope(root, nil),
		FnTable:  make(map[string]*sem.FnEntry),
	}
}
