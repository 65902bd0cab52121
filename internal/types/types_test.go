package types

import "testing"

func TestCapabilityMatrix(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		eq    bool
		ineq  bool
		numer bool
	}{
		{"Int", Int, true, true, true},
		{"Double", Double, true, true, true},
		{"Boolean", Boolean, true, false, false},
		{"String", String, false, false, false},
		{"Void", Void, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsEqComparable(); got != tt.eq {
				t.Errorf("IsEqComparable() = %v, want %v", got, tt.eq)
			}
			if got := tt.typ.IsIneqComparable(); got != tt.ineq {
				t.Errorf("IsIneqComparable() = %v, want %v", got, tt.ineq)
			}
			if got := tt.typ.IsNumeric(); got != tt.numer {
				t.Errorf("IsNumeric() = %v, want %v", got, tt.numer)
			}
		})
	}
}

func TestCastableTo(t *testing.T) {
	tests := []struct {
		from, to Type
		want     bool
	}{
		{Int, Double, true},
		{Int, Boolean, true},
		{Int, Void, true},
		{Double, Int, true},
		{Boolean, Int, true},
		{String, Void, true},
		{String, String, true},
		{String, Int, false},
		{Int, String, false},
		{Void, Int, false},
		{Void, Void, true},
	}
	for _, tt := range tests {
		if got := tt.from.IsCastableTo(tt.to); got != tt.want {
			t.Errorf("%s.IsCastableTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFunctionEquality(t *testing.T) {
	a := &Function{Return: Int, Args: []Type{Int, Double}}
	b := &Function{Return: Int, Args: []Type{Int, Double}}
	c := &Function{Return: Double, Args: []Type{Int, Double}}
	d := &Function{Return: Int, Args: []Type{Int}}

	if !a.Equals(b) {
		t.Error("structurally identical function types should be equal")
	}
	if a.Equals(c) {
		t.Error("different return types should not be equal")
	}
	if a.Equals(d) {
		t.Error("different arities should not be equal")
	}
}

func TestFromKeyword(t *testing.T) {
	if FromKeyword("int") != Int {
		t.Error("int keyword should resolve to Int")
	}
	if FromKeyword("nonsense") != nil {
		t.Error("unknown keyword should resolve to nil")
	}
}
