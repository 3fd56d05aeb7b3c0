package walk

import (
	"sable/ast"
	"sable/cimport"
	"sable/depm"
	"sable/report"
	"sable/sem"
	"sable/typing"
)

// Analyzer performs semantic analysis of a compilation session: it ingests
// parsed files, orders and resolves their top-level declarations, assigns a
// type (and, where possible, a constant value) to every expression, and
// hands the backend a fully resolved typed AST.
//
// The session state is partitioned: the interner, sizes, and reporter are
// owned by the caller and passed in; the analyzer creates its own
// declaration graph and side tables.
type Analyzer struct {
	rep      *report.Reporter
	interner *typing.Interner
	sizes    *typing.Sizes
	graph    *depm.DeclGraph
	adapter  cimport.Adapter

	// counter continues the parsers' node creation counter so synthesized
	// declarations stay deterministically ordered.
	counter *uint32

	// files lists every analyzed file in import order; the first entry is the
	// compilation root.
	files []*depm.SableFile

	// resolved is the side table of per-expression analysis results.
	resolved sem.ExprMap

	// structDecls and enumDecls map resolved container types back to their declaring
	// node and file, for body resolution.
	structDecls map[*typing.StructType]*containerSrc
	enumDecls   map[*typing.EnumType]*containerSrc

	// methods maps each struct type to its method table.
	methods map[*typing.StructType]map[string]*sem.FnEntry

	// fnDefNodes maps prototypes to their definitions; methodOwner maps
	// method prototypes to their receiver declarations.
	fnDefNodes  map[*ast.FnProto]*ast.FnDef
	methodOwner map[*ast.FnProto]*typing.StructType

	// entries maps prototypes to their function entries.
	entries map[*ast.FnProto]*sem.FnEntry

	// implicitReturns records each function body's computed result type.
	implicitReturns map[*ast.FnDef]typing.DataType

	// loopBreaks records which while loops contain a break statement; a loop
	// with a constant-true condition and no break has type `unreachable`.
	loopBreaks map[*ast.WhileExpr]bool

	// errorValueCount is the total number of declared error values across the
	// session; nextErrorIndex allocates monotonic error values starting at 1
	// (zero is the reserved "ok" tag).
	errorValueCount uint32
	nextErrorIndex  uint32

	// FnDefs and FnProtos list every defined and declared function; the
	// backend consumes them in order.  GlobalVars lists global variables.
	FnDefs    []*sem.FnEntry
	FnProtos  []*sem.FnEntry
	GlobalVars []*sem.Var

	// GlobalConsts lists every resolved expression whose constant value the
	// backend must materialize verbatim.
	GlobalConsts []*sem.ResolvedExpr

	// RootExport is the root file's export declaration, if any.  MainFn is
	// the root file's `main`, registered explicitly during resolution.
	RootExport *ast.RootExport
	MainFn     *sem.FnEntry
}

type containerSrc struct {
	node *ast.ContainerDecl
	file *depm.SableFile
}

// NewAnalyzer creates an analyzer for one compilation session.
func NewAnalyzer(rep *report.Reporter, interner *typing.Interner, sizes *typing.Sizes,
	adapter cimport.Adapter, counter *uint32) *Analyzer {

	return &Analyzer{
		rep:             rep,
		interner:        interner,
		sizes:           sizes,
		graph:           depm.NewDeclGraph(),
		adapter:         adapter,
		counter:         counter,
		resolved:        make(sem.ExprMap),
		structDecls:     make(map[*typing.StructType]*containerSrc),
		enumDecls:       make(map[*typing.EnumType]*containerSrc),
		methods:         make(map[*typing.StructType]map[string]*sem.FnEntry),
		fnDefNodes:      make(map[*ast.FnProto]*ast.FnDef),
		methodOwner:     make(map[*ast.FnProto]*typing.StructType),
		entries:         make(map[*ast.FnProto]*sem.FnEntry),
		implicitReturns: make(map[*ast.FnDef]typing.DataType),
		loopBreaks:      make(map[*ast.WhileExpr]bool),
		nextErrorIndex:  1,
	}
}

// AddFile adds a parsed file to the session.  Files must be added in import
// order, root first.
func (a *Analyzer) AddFile(file *depm.SableFile) {
	a.files = append(a.files, file)
}

// Files returns the session's files in import order.
func (a *Analyzer) Files() []*depm.SableFile {
	return a.files
}

// Resolved returns the side table of per-expression analysis results.
func (a *Analyzer) Resolved() sem.ExprMap {
	return a.resolved
}

// ImplicitReturnType returns the computed result type of a function body.
func (a *Analyzer) ImplicitReturnType(def *ast.FnDef) typing.DataType {
	return a.implicitReturns[def]
}

// MethodTable returns the method table of a struct type.
func (a *Analyzer) MethodTable(st *typing.StructType) map[string]*sem.FnEntry {
	return a.methods[st]
}

// -----------------------------------------------------------------------------

// Analyze runs the full analysis pipeline over the session's files.
func (a *Analyzer) Analyze() {
	// Count error values and validate import directives before anything else:
	// the pure error tag width depends on the total error count.
	for _, file := range a.files {
		for _, decl := range file.Root.Decls {
			switch v := decl.(type) {
			case *ast.ErrorDecl:
				a.errorValueCount++
			case *ast.Import:
				for _, dir := range v.Directives {
					a.errorf(file, dir.Span(), "invalid directive: '%s'", dir.Name)
				}
			}
		}
	}

	a.sizes.SetErrorCount(uint64(a.errorValueCount))

	// Collect per-declaration dependency sets; declarations with no
	// dependencies resolve eagerly.
	for _, file := range a.files {
		a.detectFileDecls(file)
	}

	// Demand-driven resolution of everything left.
	a.graph.ResolveAll(a.resolveDecl, func(decl *depm.TopLevelDecl, name string, ref ast.Node) {
		a.errorf(decl.File, ref.Span(), "'%s' is part of a dependency cycle involving '%s'", name, decl.Name)
	})

	// Analyze function bodies.
	for _, file := range a.files {
		for _, decl := range file.Root.Decls {
			switch v := decl.(type) {
			case *ast.FnDef:
				a.analyzeFnBody(file, v)
			case *ast.ContainerDecl:
				for _, method := range v.Methods {
					a.analyzeFnBody(file, method)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// errorf reports a recoverable error against a file.
func (a *Analyzer) errorf(file *depm.SableFile, span *report.TextSpan, msg string, args ...interface{}) {
	a.rep.ReportCompileError(file.AbsPath, file.ReprPath, span, msg, args...)
}

// warnf reports a warning against a file.
func (a *Analyzer) warnf(file *depm.SableFile, span *report.TextSpan, msg string, args ...interface{}) {
	a.rep.ReportCompileWarning(file.AbsPath, file.ReprPath, span, msg, args...)
}

// re returns the resolved record of an expression.
func (a *Analyzer) re(e ast.Expr) *sem.ResolvedExpr {
	return a.resolved.Get(e)
}

// constOf returns the constant value of an expression.
func (a *Analyzer) constOf(e ast.Expr) *sem.ConstValue {
	return &a.re(e).Const
}

// newIndex allocates a creation index for a synthesized node.
func (a *Analyzer) newIndex() uint32 {
	idx := *a.counter
	*a.counter++
	return idx
}

// -----------------------------------------------------------------------------

// addGlobalConst registers an expression's constant value with the backend's
// global constant list.
func (a *Analyzer) addGlobalConst(re *sem.ResolvedExpr) {
	if re.Const.OK && !re.HasGlobalConst &&
		typeHasGenValue(re.Type) && a.sizes.SizeOfBits(re.Type) > 0 {

		a.GlobalConsts = append(a.GlobalConsts, re)
		re.HasGlobalConst = true
	}
}

// typeHasGenValue returns whether values of the type have a generated
// representation.
func typeHasGenValue(dt typing.DataType) bool {
	switch dt {
	case typing.PrimType(typing.PrimInvalid), typing.PrimType(typing.PrimMetaType),
		typing.PrimType(typing.PrimVoid), typing.PrimType(typing.PrimUnreachable),
		typing.PrimType(typing.PrimNumLitInt), typing.PrimType(typing.PrimNumLitFloat),
		typing.PrimType(typing.PrimUndefLit):
		return false
	}

	return true
}

// -----------------------------------------------------------------------------

// addLocalVar declares a variable in the given scope.  A nil name string (the
// empty string) makes the variable anonymous: allocated but invisible to
// lookup.  Redeclaration within the enclosing function and shadowing of
// types are rejected.
func (a *Analyzer) addLocalVar(file *depm.SableFile, scope *sem.Scope, declNode ast.Node,
	name string, dt typing.DataType, isConst bool) *sem.Var {

	v := &sem.Var{
		Name:        name,
		Type:        dt,
		Const:       isConst,
		DeclNode:    declNode,
		SrcArgIndex: -1,
		GenArgIndex: -1,
	}

	if name != "" {
		var existing *sem.Var
		if scope.Fn != nil {
			existing = scope.FindLocalVar(name)
		} else {
			existing = scope.FindVar(name)
		}

		if existing != nil {
			a.errorf(file, declNode.Span(), "redeclaration of variable '%s'", name)
			v.Type = typing.PrimType(typing.PrimInvalid)
		} else {
			var shadowed typing.DataType
			if prim, ok := typing.PrimitiveByName[name]; ok {
				shadowed = prim
			} else {
				shadowed = scope.FindType(name)
			}

			if shadowed != nil {
				a.errorf(file, declNode.Span(), "variable shadows type '%s'", shadowed.Repr())
				v.Type = typing.PrimType(typing.PrimInvalid)
			}
		}

		scope.Vars[name] = v
		scope.VarList = append(scope.VarList, v)
	} else {
		scope.VarList = append(scope.VarList, v)
	}

	return v
}
