// Package ast defines the syntax tree pascalc's parser builds and its
// codegen walks. Node shapes follow original_source/src/definitions.rs's
// struct/enum definitions; sum types (Statement, Factor, UnsignedConstant,
// ExpressionOrRange) are expressed as Go interfaces with a private marker
// method, the idiomatic Go equivalent of the original's Rust enums.
package ast

// Span records the half-open byte range [Start, End) of a node in the
// source text it was parsed from, used for diagnostic rendering.
type Span struct {
	Start int
	End   int
}

// Program is the root node: PROGRAM name(args); block .
type Program struct {
	Name string
	Args []string
	Body *Block
}

// Block is a CONST/VAR section pair followed by a statement.
//
// The parser enforces at most one CONST section and at most one VAR
// section (§4.2); Constants/Variables are already flattened here.
type Block struct {
	Constants []ConstDecl
	Variables []VarDecl
	Body      Statement
}

// ConstDecl is a single "name = expression" entry in a CONST section.
type ConstDecl struct {
	Name  string
	Value Expression
	Span  Span
}

// VarDecl is a single "name : type" entry in a VAR section.
type VarDecl struct {
	Name string
	Type SuperType
	Span Span
}
