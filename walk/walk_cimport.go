package walk

import (
	"fmt"
	"strings"

	"sable/ast"
	"sable/cimport"
	"sable/depm"
	"sable/sem"
	"sable/syntax"
	"sable/typing"
)

// resolveCImport analyzes a c_import block and merges the declarations the
// header ingestion adapter returns into the module graph.
func (a *Analyzer) resolveCImport(file *depm.SableFile, node *ast.CImport) {
	scope := sem.NewScope(node, file.Scope)
	scope.CImportBuf = &cimport.Buffer{}

	resolved := a.analyzeExpression(file, scope, typing.PrimType(typing.PrimVoid), node.Block)
	if typing.IsInvalid(resolved) {
		return
	}

	decls, err := a.adapter.Ingest(scope.CImportBuf.String())
	if err != nil {
		a.errorf(file, node.Span(), "C import failed: %s", err.Error())
		return
	}

	// The ingested declarations are rendered to source text and parsed like
	// any other file, so they flow through the ordinary declaration pipeline.
	src := renderCDecls(decls)

	reprPath := fmt.Sprintf("<c_import:%s>", file.ReprPath)
	parser := syntax.NewParser(a.rep, reprPath, reprPath, src, a.counter)
	root, ok := parser.ParseFile()
	if !ok {
		a.errorf(file, node.Span(), "C import failed: malformed ingested declarations")
		return
	}

	child := depm.NewFile(reprPath, reprPath, root)
	child.CImportNode = node
	child.Importers = []depm.ImporterRef{{File: file, Node: node}}

	a.files = append(a.files, child)
	a.detectFileDecls(child)
}

// renderCDecls renders adapter declarations as Sable source text.
func renderCDecls(decls []cimport.Decl) string {
	var sb strings.Builder

	for _, decl := range decls {
		switch v := decl.(type) {
		case cimport.FnDecl:
			sb.WriteString("pub extern fn ")
			sb.WriteString(v.Name)
			sb.WriteRune('(')

			for i, paramType := range v.ParamTypes {
				if i > 0 {
					sb.WriteString(", ")
				}

				name := fmt.Sprintf("arg%d", i)
				if i < len(v.ParamNames) && v.ParamNames[i] != "" {
					name = v.ParamNames[i]
				}

				fmt.Fprintf(&sb, "%s: %s", name, paramType)
			}

			if v.VarArgs {
				if len(v.ParamTypes) > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString("...")
			}

			sb.WriteRune(')')

			if v.ReturnType != "" && v.ReturnType != "void" {
				sb.WriteString(" -> ")
				sb.WriteString(v.ReturnType)
			}

			sb.WriteString(";\n")
		case cimport.ConstDecl:
			fmt.Fprintf(&sb, "pub const %s = %d;\n", v.Name, v.Value)
		}
	}

	return sb.String()
}
