package generate

import (
	"fmt"

	"sable/sem"
	"sable/typing"
	"sable/walk"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// genIdent is a generated identifier: a value together with whether it is
// mutable.
type genIdent struct {
	Val     value.Value
	Mutable bool
}

// Generator converts the typed AST produced by the analyzer into an LLVM IR
// module.  Generation is assumed to always succeed: the analyzer guarantees a
// fully resolved input, so any failure here is an internal error.
type Generator struct {
	a     *walk.Analyzer
	sizes *typing.Sizes

	mod *ir.Module

	// fnVals maps function entries to their declared IR functions.
	fnVals map[*sem.FnEntry]*ir.Func

	// globalScope holds global variables; localScopes is the stack of local
	// scopes used during body generation.
	globalScope map[string]genIdent
	localScopes []map[string]genIdent

	// enclosingFn and entry describe the function whose body is being
	// generated; block is the basic block instructions are appended to.
	enclosingFn *ir.Func
	entry       *sem.FnEntry
	block       *ir.Block

	// typeCache memoizes converted types so struct types convert once.
	typeCache map[typing.DataType]types.Type

	// loopStack tracks the branch targets of enclosing loops during body
	// generation.
	loopStack []loopContext

	// globalCounter numbers anonymous globals such as interned strings.
	globalCounter int
}

// NewGenerator creates a generator over the analyzer's output.
func NewGenerator(a *walk.Analyzer, sizes *typing.Sizes) *Generator {
	return &Generator{
		a:           a,
		sizes:       sizes,
		mod:         ir.NewModule(),
		fnVals:      make(map[*sem.FnEntry]*ir.Func),
		globalScope: make(map[string]genIdent),
		typeCache:   make(map[typing.DataType]types.Type),
	}
}

// Generate runs the main generation algorithm and returns the completed
// module.
func (g *Generator) Generate() *ir.Module {
	// Declare every function first so calls can reference them in any order.
	for _, entry := range g.a.FnProtos {
		g.declareFn(entry)
	}

	// Define global variables from their verbatim constant values.
	for _, gv := range g.a.GlobalVars {
		g.defineGlobal(gv)
	}

	// Generate function bodies.
	for _, entry := range g.a.FnDefs {
		if !entry.Skip {
			g.genFnBody(entry)
		}
	}

	return g.mod
}

// -----------------------------------------------------------------------------

// declareFn declares one function in the module.
func (g *Generator) declareFn(entry *sem.FnEntry) {
	var params []*ir.Param
	for i, paramType := range entry.Type.Params {
		if g.sizes.SizeOfBits(paramType) == 0 {
			continue
		}

		name := fmt.Sprintf("arg%d", i)
		if entry.Proto != nil && i < len(entry.Proto.Params) {
			name = entry.Proto.Params[i].Name
		}

		params = append(params, ir.NewParam(name, g.convType(paramType)))
	}

	returnType := types.Type(types.Void)
	if g.sizes.SizeOfBits(entry.Type.ReturnType) > 0 {
		returnType = g.convType(entry.Type.ReturnType)
	}

	fn := g.mod.NewFunc(entry.SymbolName, returnType, params...)
	fn.Sig.Variadic = entry.Type.VarArgs

	if entry.InternalLinkage && entry.DefNode != nil {
		fn.Linkage = enum.LinkageInternal
	}

	if entry.Inline {
		fn.FuncAttrs = append(fn.FuncAttrs, enum.FuncAttrAlwaysInline)
	}
	if entry.Type.Naked {
		fn.FuncAttrs = append(fn.FuncAttrs, enum.FuncAttrNaked)
	}
	if typing.IsUnreachable(entry.Type.ReturnType) {
		fn.FuncAttrs = append(fn.FuncAttrs, enum.FuncAttrNoReturn)
	}

	g.fnVals[entry] = fn
}

// defineGlobal defines one global variable.  The analyzer guarantees global
// initializers are constant; the backend materializes the value verbatim and
// never re-evaluates.
func (g *Generator) defineGlobal(gv *sem.Var) {
	if g.sizes.SizeOfBits(gv.Type) == 0 || typing.IsInvalid(gv.Type) {
		return
	}

	init := g.globalInitFor(gv)
	if init == nil {
		init = constant.NewZeroInitializer(g.convType(gv.Type))
	}

	global := g.mod.NewGlobalDef(gv.Name, init)
	global.Immutable = gv.Const

	g.globalScope[gv.Name] = genIdent{Val: global, Mutable: !gv.Const}
}

// -----------------------------------------------------------------------------

// pushScope pushes a new local scope onto the scope stack.
func (g *Generator) pushScope() {
	g.localScopes = append(g.localScopes, make(map[string]genIdent))
}

// popScope pops a local scope off of the local scope stack.
func (g *Generator) popScope() {
	g.localScopes = g.localScopes[:len(g.localScopes)-1]
}

// defineLocal defines a local identifier.
func (g *Generator) defineLocal(name string, val value.Value, mutable bool) {
	g.localScopes[len(g.localScopes)-1][name] = genIdent{val, mutable}
}

// lookup looks up an identifier, innermost scope first.
func (g *Generator) lookup(name string) (genIdent, bool) {
	for i := len(g.localScopes) - 1; i >= 0; i-- {
		if ident, ok := g.localScopes[i][name]; ok {
			return ident, true
		}
	}

	ident, ok := g.globalScope[name]
	return ident, ok
}

// appendBlock adds a new basic block to the current function without entering
// it.
func (g *Generator) appendBlock() *ir.Block {
	return g.enclosingFn.NewBlock(fmt.Sprintf("bb%d", len(g.enclosingFn.Blocks)))
}

// terminated returns whether the current block already has a terminator.
func (g *Generator) terminated() bool {
	return g.block.Term != nil
}

// ice aborts generation on an internal invariant violation.
func (g *Generator) ice(msg string, args ...interface{}) {
	panic(fmt.Sprintf("code generation: "+msg, args...))
}
