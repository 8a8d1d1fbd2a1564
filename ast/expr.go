package ast

// Expression is an optional single relational comparison between two
// SimpleExpressions: "a < b", "a = b", ... or just "a" when HasRelation is
// false. The original represents the no-relation case with a sentinel
// "NONE" operator string; Go expresses it as an explicit bool instead.
type Expression struct {
	Operand1    SimpleExpression
	Operand2    SimpleExpression
	Operator    string // one of < <= = <> >= > IN, valid only if HasRelation
	HasRelation bool
	Span        Span
}

// SimpleExpression is a left-associative chain of Terms joined by + - OR,
// with an optional leading unary sign on the first Term.
type SimpleExpression struct {
	Positive  bool // false iff the expression carried a leading "-"
	Operands  []Term
	Operators []string // len(Operators) == len(Operands)-1, each + - or OR
	Span      Span
}

// Term is a left-associative chain of Factors joined by * / DIV MOD AND.
type Term struct {
	Operands  []Factor
	Operators []string // len(Operators) == len(Operands)-1, each * / DIV MOD AND
	Span      Span
}

// Factor is the leaf production of the expression grammar (§4.2). It is a
// closed sum type: Constant, Identifier, ArrayIndex, Parenthetical,
// NegatedFactor, List.
type Factor interface {
	factorNode()
	Span() Span
}

// ConstantFactor is a literal value: an integer, real, char, string, or NIL.
type ConstantFactor struct {
	Value UnsignedConstant
	Spn   Span
}

func (ConstantFactor) factorNode() {}
func (f ConstantFactor) Span() Span { return f.Spn }

// Identifier is a bare name, a builtin call (ORD/CHR/SQRT/SQR/ABS), or a
// user procedure reference used as a value — codegen disambiguates by
// name and by whether Args is non-empty.
type Identifier struct {
	Name string
	Args []Expression
	Spn  Span
}

func (Identifier) factorNode() {}
func (f Identifier) Span() Span { return f.Spn }

// ArrayIndex is "name[index]".
type ArrayIndex struct {
	Name  string
	Index Expression
	Spn   Span
}

func (ArrayIndex) factorNode() {}
func (f ArrayIndex) Span() Span { return f.Spn }

// Parenthetical is "(expression)".
type Parenthetical struct {
	Inner Expression
	Spn   Span
}

func (Parenthetical) factorNode() {}
func (f Parenthetical) Span() Span { return f.Spn }

// NegatedFactor is "NOT factor".
type NegatedFactor struct {
	Operand Factor
	Spn     Span
}

func (NegatedFactor) factorNode() {}
func (f NegatedFactor) Span() Span { return f.Spn }

// List is a "[expr, expr..expr, ...]" set-display literal. Not-goals
// exclude set membership codegen; the parser still accepts the syntax
// (§4.2), and codegen panics on it instead of reporting a diagnostic.
type List struct {
	Items []ExpressionOrRange
	Spn   Span
}

func (List) factorNode() {}
func (f List) Span() Span { return f.Spn }

// ExpressionOrRange is an element of a List: either a single expression
// or a "low..high" range.
type ExpressionOrRange interface {
	expressionOrRangeNode()
}

// SingleExpr is a single-element List entry.
type SingleExpr struct {
	Expr Expression
}

func (SingleExpr) expressionOrRangeNode() {}

// RangeExpr is a "low..high" List entry.
type RangeExpr struct {
	Low  Expression
	High Expression
}

func (RangeExpr) expressionOrRangeNode() {}

// UnsignedConstant is the closed sum type of literal constant forms:
// UnsignedInteger, UnsignedReal, Nil, Quote, CharLit.
type UnsignedConstant interface {
	unsignedConstantNode()
}

// UnsignedInteger is an unsigned integer literal.
type UnsignedInteger struct {
	Value uint64
}

func (UnsignedInteger) unsignedConstantNode() {}

// UnsignedReal is an unsigned real literal (integer part, ".", fraction).
type UnsignedReal struct {
	Value float64
}

func (UnsignedReal) unsignedConstantNode() {}

// Nil is the NIL literal. Expressions may parse it but codegen rejects
// any use of it (§1 Non-goals: pointers aren't supported).
type Nil struct {
	Spn Span
}

func (Nil) unsignedConstantNode() {}

// Quote is a 'quoted string' literal, stored without its delimiting
// quotes.
type Quote struct {
	Value string
}

func (Quote) unsignedConstantNode() {}

// CharLit is a single-character 'c' literal, stored as its byte value.
type CharLit struct {
	Value byte
}

func (CharLit) unsignedConstantNode() {}
