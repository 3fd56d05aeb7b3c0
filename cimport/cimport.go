package cimport

import (
	"fmt"
	"strings"
)

// Buffer accumulates C preprocessor directives emitted by the builtin calls
// inside a `c_import` block.  The finished buffer is the exact text handed to
// the header ingestion adapter.
type Buffer struct {
	sb strings.Builder
}

// Include appends an `#include <name>` directive.
func (b *Buffer) Include(name string) {
	fmt.Fprintf(&b.sb, "#include <%s>\n", name)
}

// Define appends a `#define name value` directive.  The value may be empty.
func (b *Buffer) Define(name, value string) {
	if value == "" {
		fmt.Fprintf(&b.sb, "#define %s\n", name)
	} else {
		fmt.Fprintf(&b.sb, "#define %s %s\n", name, value)
	}
}

// Undef appends an `#undef name` directive.
func (b *Buffer) Undef(name string) {
	fmt.Fprintf(&b.sb, "#undef %s\n", name)
}

// String returns the accumulated directive text.
func (b *Buffer) String() string {
	return b.sb.String()
}

// -----------------------------------------------------------------------------

// Decl is a declaration returned by the header ingestion adapter.  The
// analyzer converts these descriptions into top-level AST declarations and
// feeds them back through declaration resolution.
type Decl interface {
	declNode()
}

// FnDecl describes an external C function.
type FnDecl struct {
	Name string

	// ParamTypes and ReturnType are Sable type names (eg. "i32", "&u8").
	// The adapter is responsible for mapping C types onto them.
	ParamTypes []string
	ParamNames []string
	ReturnType string
	VarArgs    bool
}

func (fd FnDecl) declNode() {}

// ConstDecl describes an object-like macro with an integer value.
type ConstDecl struct {
	Name  string
	Value int64
}

func (cd ConstDecl) declNode() {}

// -----------------------------------------------------------------------------

// Adapter parses a buffer of preprocessor directives and returns the
// declarations the referenced headers provide.  Real ingestion requires a C
// front-end and lives in an external tool; tests install fakes.
type Adapter interface {
	Ingest(directives string) ([]Decl, error)
}

// StubAdapter is the adapter installed when no header ingestion tool is
// configured.  It fails on any c_import.
type StubAdapter struct{}

func (StubAdapter) Ingest(directives string) ([]Decl, error) {
	return nil, fmt.Errorf("no C header ingestion tool configured")
}
