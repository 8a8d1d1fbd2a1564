package ast

import "testing"

func TestStatementSumTypeCoversAllForms(t *testing.T) {
	var stmts = []Statement{
		DoNothing{},
		Assignment{Name: "X"},
		ElementAssignment{Name: "A"},
		ProcedureCall{Name: "WRITELN"},
		ReadCall{Names: []string{"X"}},
		IfStatement{},
		WhileLoop{},
		RepeatLoop{},
		ForLoop{Var: "I", Ascending: true},
		StatementList{},
	}
	for _, s := range stmts {
		if s == nil {
			t.Fatal("nil statement in sum type coverage")
		}
	}
}

func TestFactorSumTypeCoversAllForms(t *testing.T) {
	var factors = []Factor{
		ConstantFactor{Value: UnsignedInteger{Value: 1}},
		Identifier{Name: "X"},
		ArrayIndex{Name: "A"},
		Parenthetical{},
		NegatedFactor{},
		List{},
	}
	for _, f := range factors {
		if f == nil {
			t.Fatal("nil factor in sum type coverage")
		}
	}
}

func TestArrayTypeEquality(t *testing.T) {
	elem := Type{Kind: Integer}
	a := Type{Kind: ArrayKind, Elem: &elem, Low: 1, High: 10}
	b := Type{Kind: ArrayKind, Elem: &elem, Low: 1, High: 10}
	c := Type{Kind: ArrayKind, Elem: &elem, Low: 1, High: 5}
	if !a.Equal(b) {
		t.Error("expected equal array types to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected array types with different bounds to differ")
	}
}

func TestKindString(t *testing.T) {
	if Integer.String() != "INTEGER" {
		t.Errorf("Integer.String() = %q", Integer.String())
	}
	if Undefined.String() != "UNDEFINED" {
		t.Errorf("Undefined.String() = %q", Undefined.String())
	}
}
