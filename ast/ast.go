package ast

import "sable/report"

// Node is the abstract interface for all AST nodes.
type Node interface {
	// Span returns the text span of the node.
	Span() *report.TextSpan

	// CreateIndex returns the node's creation index.  The parser guarantees
	// creation indices are globally unique and monotonic within one session;
	// they exist to keep demand-driven resolution deterministic.
	CreateIndex() uint32
}

// Expr is the interface for all expression nodes.  Expressions carry no
// analysis results themselves: the analyzer records a ResolvedExpr for each
// expression in a side table keyed by the node, keeping the parser output
// immutable.
type Expr interface {
	Node

	// exprNode is a marker distinguishing expressions from other nodes.
	exprNode()
}

// ASTBase is a utility base struct for all AST nodes.
type ASTBase struct {
	span        *report.TextSpan
	createIndex uint32
}

// NewASTBaseOn creates a new AST base with the given span and creation index.
func NewASTBaseOn(span *report.TextSpan, createIndex uint32) ASTBase {
	return ASTBase{span: span, createIndex: createIndex}
}

func (ab *ASTBase) Span() *report.TextSpan {
	return ab.span
}

func (ab *ASTBase) CreateIndex() uint32 {
	return ab.createIndex
}

// ExprBase is the base struct for all expression nodes.
type ExprBase struct {
	ASTBase
}

func (eb *ExprBase) exprNode() {}
