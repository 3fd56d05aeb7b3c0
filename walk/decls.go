package walk

import (
	"fmt"
	"sort"

	"sable/ast"
	"sable/common"
	"sable/depm"
	"sable/sem"
	"sable/typing"
	"sable/util"
)

// detectFileDecls runs the dependency-collection pass over one file's
// top-level declarations.  Container names are registered (incomplete) before
// their bodies are scanned so self-references through pointers never become
// graph dependencies.
func (a *Analyzer) detectFileDecls(file *depm.SableFile) {
	for _, node := range file.Root.Decls {
		a.detectDecl(file, node)
	}
}

func (a *Analyzer) detectDecl(file *depm.SableFile, node ast.Node) {
	switch v := node.(type) {
	case *ast.ContainerDecl:
		a.detectContainerDecl(file, v)
	case *ast.FnDef:
		a.fnDefNodes[v.Proto] = v
		a.detectDecl(file, v.Proto)
	case *ast.FnProto:
		decl := a.newDecl(file, v.Name, v)
		for _, param := range v.Params {
			depm.CollectExprDeps(file.Scope, param.Type, decl)
		}
		if v.ReturnType != nil {
			depm.CollectExprDeps(file.Scope, v.ReturnType, decl)
		}
		a.addDecl(decl)
	case *ast.VarDecl:
		decl := a.newDecl(file, v.Name, v)
		if v.Type != nil {
			depm.CollectExprDeps(file.Scope, v.Type, decl)
		}
		if v.Init != nil {
			depm.CollectExprDeps(file.Scope, v.Init, decl)
		}
		a.addDecl(decl)
	case *ast.CImport:
		decl := a.newDecl(file, fmt.Sprintf("c_import_%d", v.CreateIndex()), v)
		depm.CollectExprDeps(file.Scope, v.Block, decl)
		a.addDecl(decl)
	case *ast.ErrorDecl, *ast.RootExport:
		a.resolveDecl(a.addDecl(a.newDecl(file, "", node)))
	case *ast.Import:
		// Import loading is handled by the driver before analysis.
	}
}

// newDecl creates the graph metadata for one declaration.
func (a *Analyzer) newDecl(file *depm.SableFile, name string, node ast.Node) *depm.TopLevelDecl {
	return &depm.TopLevelDecl{
		Name: name,
		Node: node,
		File: file,
		Deps: make(map[string]ast.Node),
	}
}

// addDecl registers a declaration with the graph, resolving it eagerly when
// it has no dependencies.  Eagerly resolvable declarations with names still
// pass through resolveDecl so satisfaction is uniform.
func (a *Analyzer) addDecl(decl *depm.TopLevelDecl) *depm.TopLevelDecl {
	a.graph.Add(decl)

	if len(decl.Deps) == 0 && decl.Name != "" {
		a.resolveDecl(decl)
	}

	return decl
}

// detectContainerDecl registers a struct or enum declaration and collects its
// field dependencies.
func (a *Analyzer) detectContainerDecl(file *depm.SableFile, node *ast.ContainerDecl) {
	var entry typing.DataType
	_, isPrim := typing.PrimitiveByName[node.Name]
	if isPrim || file.Scope.FindType(node.Name) != nil {
		a.errorf(file, node.Span(), "redefinition of '%s'", node.Name)
		entry = typing.PrimType(typing.PrimInvalid)
	} else {
		switch node.Kind {
		case ast.ContainerStruct:
			st := &typing.StructType{Name: node.Name, Packed: node.Packed}
			a.structDecls[st] = &containerSrc{node: node, file: file}
			a.methods[st] = make(map[string]*sem.FnEntry)
			entry = st
		case ast.ContainerEnum:
			et := &typing.EnumType{Name: node.Name}
			a.enumDecls[et] = &containerSrc{node: node, file: file}
			entry = et
		}

		file.Scope.Types[node.Name] = entry

		if node.Visib != ast.VisibPrivate {
			for _, importer := range file.Importers {
				if importer.File.Scope.Types[node.Name] != nil {
					a.errorf(importer.File, importer.Node.Span(),
						"import of type '%s' overrides existing definition", node.Name)
				} else {
					importer.File.Scope.Types[node.Name] = entry
				}
			}
		}
	}

	decl := a.newDecl(file, node.Name, node)
	for _, field := range node.Fields {
		if field.Type != nil {
			depm.CollectExprDeps(file.Scope, field.Type, decl)
		}
	}
	a.addDecl(decl)

	// Method definitions are detected independently of the container body.
	if st, ok := entry.(*typing.StructType); ok {
		for _, method := range node.Methods {
			a.methodOwner[method.Proto] = st
			a.detectDecl(file, method)
		}
	} else {
		for _, method := range node.Methods {
			a.errorf(file, method.Span(), "enums do not support methods")
		}
	}
}

// -----------------------------------------------------------------------------

// resolveDecl resolves one top-level declaration: afterwards its type (and,
// for globals, its constant value) is known.
func (a *Analyzer) resolveDecl(decl *depm.TopLevelDecl) {
	file := decl.File

	switch v := decl.Node.(type) {
	case *ast.FnProto:
		a.previewFnProto(file, v)
	case *ast.ContainerDecl:
		switch t := file.Scope.FindType(v.Name).(type) {
		case *typing.StructType:
			a.resolveStructType(t)
		case *typing.EnumType:
			a.resolveEnumType(t)
		}
	case *ast.VarDecl:
		gv := a.analyzeVarDecl(file, file.Scope, v, false)
		if gv != nil {
			a.GlobalVars = append(a.GlobalVars, gv)
		}
	case *ast.ErrorDecl:
		a.resolveErrorDecl(file, v)
	case *ast.CImport:
		a.resolveCImport(file, v)
	case *ast.RootExport:
		a.resolveRootExport(file, v)
	}

	if decl.Name != "" {
		a.graph.SatisfyDep(decl.Name)
	}
}

// resolveRootExport validates and records the root export declaration.
func (a *Analyzer) resolveRootExport(file *depm.SableFile, node *ast.RootExport) {
	if file != a.files[0] {
		a.errorf(file, node.Span(), "export declaration only valid in the root source file")
		return
	}

	if a.RootExport != nil {
		a.errorf(file, node.Span(), "multiple export declarations")
		return
	}

	for _, dir := range node.Directives {
		// `#version` and `#link` are consumed by the driver.
		if !util.Contains([]string{"version", "link"}, dir.Name) {
			a.errorf(file, dir.Span(), "invalid directive: '%s'", dir.Name)
		} else if dir.Name == "version" && dir.Param != common.SableVersion {
			a.warnf(file, dir.Span(),
				"declared version %s does not match compiler version %s",
				dir.Param, common.SableVersion)
		}
	}

	a.RootExport = node
}

// resolveErrorDecl allocates the error value's monotonic index and declares
// it in the file scope.
func (a *Analyzer) resolveErrorDecl(file *depm.SableFile, node *ast.ErrorDecl) {
	entry := &sem.ErrorEntry{
		Name:     node.Name,
		Value:    a.nextErrorIndex,
		DeclNode: node,
	}
	a.nextErrorIndex++

	if file.Scope.Errors[node.Name] != nil {
		a.errorf(file, node.Span(), "redefinition of error '%s'", node.Name)
	} else {
		file.Scope.Errors[node.Name] = entry
	}

	if node.Visib != ast.VisibPrivate {
		for _, importer := range file.Importers {
			if importer.File.Scope.Errors[node.Name] != nil {
				a.errorf(importer.File, importer.Node.Span(),
					"import of error '%s' overrides existing definition", node.Name)
			} else {
				importer.File.Scope.Errors[node.Name] = entry
			}
		}
	}
}

// -----------------------------------------------------------------------------

// previewFnProto resolves a function prototype: its entry, its type, and its
// labels.
func (a *Analyzer) previewFnProto(file *depm.SableFile, proto *ast.FnProto) {
	defNode := a.fnDefNodes[proto]
	structType := a.methodOwner[proto]

	fnTable := file.FnTable
	if structType != nil {
		fnTable = a.methods[structType]
	}

	if _, ok := fnTable[proto.Name]; ok {
		a.errorf(file, proto.Span(), "redefinition of '%s'", proto.Name)
		return
	}

	if !proto.Extern && proto.VarArgs {
		a.errorf(file, proto.Span(), "variadic arguments only allowed in extern functions")
	}

	isInternal := proto.Visib != ast.VisibExport && !proto.Extern

	entry := &sem.FnEntry{
		Name:            proto.Name,
		SymbolName:      proto.Name,
		Proto:           proto,
		DefNode:         defNode,
		Extern:          proto.Extern,
		InternalLinkage: isInternal,
		MemberOf:        structType,
		Labels:          make(map[string]*sem.Label),
	}

	if structType != nil {
		entry.SymbolName = structType.Name + "_" + proto.Name
	}

	a.entries[proto] = entry
	a.FnProtos = append(a.FnProtos, entry)
	if defNode != nil {
		a.FnDefs = append(a.FnDefs, entry)
	}

	fnTable[proto.Name] = entry

	a.resolveFnType(file, proto, entry)

	if defNode != nil {
		a.previewFnLabels(defNode.Body, entry)
	}

	// The root file's `main` is registered with the driver explicitly.
	if structType == nil && file == a.files[0] && proto.Name == "main" {
		a.MainFn = entry
	}

	if proto.Visib != ast.VisibPrivate && structType == nil {
		for _, importer := range file.Importers {
			if _, ok := importer.File.FnTable[proto.Name]; ok {
				a.errorf(importer.File, importer.Node.Span(),
					"import of function '%s' overrides existing definition", proto.Name)
			} else {
				importer.File.FnTable[proto.Name] = entry
			}
		}
	}
}

// resolveFnType analyzes a prototype's parameter and return types and interns
// the function type.
func (a *Analyzer) resolveFnType(file *depm.SableFile, proto *ast.FnProto, entry *sem.FnEntry) {
	naked := false
	for _, dir := range proto.Directives {
		if dir.Name == "attribute" {
			switch {
			case dir.Param == "naked" && entry.DefNode != nil:
				naked = true
			case dir.Param == "inline" && entry.DefNode != nil:
				entry.Inline = true
			default:
				a.errorf(file, dir.Span(), "invalid function attribute: '%s'", dir.Param)
			}
		} else {
			a.errorf(file, dir.Span(), "invalid directive: '%s'", dir.Name)
		}
	}

	params := make([]typing.DataType, len(proto.Params))
	skip := false
	for i, param := range proto.Params {
		paramType := a.analyzeTypeExpr(file, file.Scope, param.Type)

		if typing.IsUnreachable(paramType) {
			a.errorf(file, param.Type.Span(), "parameter of type 'unreachable' not allowed")
			skip = true
		} else if typing.IsInvalid(paramType) {
			skip = true
		}

		if param.NoAlias {
			if _, isPtr := paramType.(*typing.PointerType); !isPtr {
				a.errorf(file, param.Span(), "noalias on non-pointer parameter")
			}
		}

		params[i] = paramType
	}

	returnType := typing.DataType(typing.PrimType(typing.PrimVoid))
	if proto.ReturnType != nil {
		returnType = a.analyzeTypeExpr(file, file.Scope, proto.ReturnType)
		if typing.IsInvalid(returnType) {
			skip = true
		}
	}

	callConv := typing.CallConvC
	if entry.InternalLinkage {
		callConv = typing.CallConvFast
	}

	entry.Type = a.interner.FuncOf(params, returnType, proto.VarArgs, callConv, naked)
	entry.Skip = skip
}

// previewFnLabels collects the labels declared directly in a function body so
// goto statements can reference labels that appear later.
func (a *Analyzer) previewFnLabels(body *ast.Block, entry *sem.FnEntry) {
	for _, stmt := range body.Stmts {
		if label, ok := stmt.(*ast.Label); ok {
			entry.Labels[label.Name] = &sem.Label{Node: label}
		}
	}
}

// -----------------------------------------------------------------------------

// analyzeFnBody analyzes the body of a function definition.
func (a *Analyzer) analyzeFnBody(file *depm.SableFile, def *ast.FnDef) {
	entry := a.entries[def.Proto]
	if entry == nil || entry.Skip {
		return
	}

	scope := sem.NewFnScope(def, file.Scope, entry)

	genIndex := 0
	for i, param := range def.Proto.Params {
		paramType := entry.Type.Params[i]

		v := a.addLocalVar(file, scope, param, param.Name, paramType, true)
		v.SrcArgIndex = i
		if a.sizes.SizeOfBits(paramType) > 0 {
			v.GenArgIndex = genIndex
			genIndex++
		}
	}

	blockType := a.analyzeExpression(file, scope, entry.Type.ReturnType, def.Body)
	a.implicitReturns[def] = blockType

	// Labels are visited in name order so diagnostics stay deterministic.
	labelNames := make([]string, 0, len(entry.Labels))
	for name := range entry.Labels {
		labelNames = append(labelNames, name)
	}
	sort.Strings(labelNames)

	for _, name := range labelNames {
		label := entry.Labels[name]
		if !label.Used {
			a.errorf(file, label.Node.Span(), "label '%s' defined but not used", label.Node.Name)
		}
	}
}
