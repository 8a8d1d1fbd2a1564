package ast

// Kind enumerates the scalar and array type constructors pascalc
// understands, mirroring original_source/src/definitions.rs's Type and
// SuperType enums.
type Kind int

const (
	Integer Kind = iota
	Boolean
	Real
	Char
	Stryng // spelled like the original source's enum variant (definitions.rs), kept for texture
	Text
	ArrayKind
	Undefined // poison type: codegen already reported an error for this node, suppress cascades
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "INTEGER"
	case Boolean:
		return "BOOLEAN"
	case Real:
		return "REAL"
	case Char:
		return "CHAR"
	case Stryng:
		return "STRING"
	case Text:
		return "TEXT"
	case ArrayKind:
		return "ARRAY"
	default:
		return "UNDEFINED"
	}
}

// SuperType is a parse-time type expression: array bounds are still
// unevaluated Expressions (they may reference CONST names declared
// earlier in the same block).
type SuperType struct {
	Kind Kind
	Elem *SuperType // non-nil iff Kind == ArrayKind
	Low  Expression // array lower bound, unevaluated
	High Expression // array upper bound, unevaluated
}

// Type is a codegen-time type: array bounds have been resolved to
// concrete integers.
type Type struct {
	Kind Kind
	Elem *Type // non-nil iff Kind == ArrayKind
	Low  int64 // array lower bound
	High int64 // array upper bound
}

// Equal reports whether two Types are the same, comparing Array element
// types and bounds structurally.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != ArrayKind {
		return true
	}
	return t.Low == other.Low && t.High == other.High && t.Elem.Equal(*other.Elem)
}
