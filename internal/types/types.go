// Package types implements the Javalette type system: the primitive
// type variants, their capability predicates, and function types.
package types

import "strings"

// Kind identifies which variant of Type a value is.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindDouble
	KindBoolean
	KindString
	KindFunction
)

// Type is implemented by every Javalette type. Each carries the
// capability predicates spec §3 lists in its matrix.
type Type interface {
	Kind() Kind
	String() string
	Equals(other Type) bool

	IsEqComparable() bool
	IsIneqComparable() bool
	IsNumeric() bool
	IsCastableTo(other Type) bool
}

// primitive implements Type for the four non-function, non-void base
// types plus Void itself; behavior is driven entirely by the
// capability matrix in §3.
type primitive struct {
	kind Kind
	name string
}

func (p *primitive) Kind() Kind   { return p.kind }
func (p *primitive) String() string { return p.name }

func (p *primitive) Equals(other Type) bool {
	o, ok := other.(*primitive)
	return ok && o.kind == p.kind
}

func (p *primitive) IsEqComparable() bool {
	switch p.kind {
	case KindInt, KindDouble, KindBoolean:
		return true
	default:
		return false
	}
}

func (p *primitive) IsIneqComparable() bool {
	switch p.kind {
	case KindInt, KindDouble:
		return true
	default:
		return false
	}
}

func (p *primitive) IsNumeric() bool {
	switch p.kind {
	case KindInt, KindDouble:
		return true
	default:
		return false
	}
}

// castMatrix enumerates, per §3, which kinds each primitive kind may
// be cast to.
var castMatrix = map[Kind]map[Kind]bool{
	KindInt:     {KindVoid: true, KindInt: true, KindDouble: true, KindBoolean: true},
	KindDouble:  {KindVoid: true, KindInt: true, KindDouble: true, KindBoolean: true},
	KindBoolean: {KindVoid: true, KindInt: true, KindDouble: true, KindBoolean: true},
	KindString:  {KindVoid: true, KindString: true},
	KindVoid:    {KindVoid: true},
}

func (p *primitive) IsCastableTo(other Type) bool {
	o, ok := other.(*primitive)
	if !ok {
		return false
	}
	return castMatrix[p.kind][o.kind]
}

// Singleton primitive values; compared by identity or by Equals.
var (
	Void    Type = &primitive{kind: KindVoid, name: "void"}
	Int     Type = &primitive{kind: KindInt, name: "int"}
	Double  Type = &primitive{kind: KindDouble, name: "double"}
	Boolean Type = &primitive{kind: KindBoolean, name: "boolean"}
	String  Type = &primitive{kind: KindString, name: "string"}
)

// Function is a function signature: a return type plus ordered
// argument types. Function types compare structurally (§3).
type Function struct {
	Return Type
	Args   []Type
}

func (f *Function) Kind() Kind { return KindFunction }

func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, a := range f.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteString(") -> ")
	sb.WriteString(f.Return.String())
	return sb.String()
}

func (f *Function) Equals(other Type) bool {
	o, ok := other.(*Function)
	if !ok || len(o.Args) != len(f.Args) || !f.Return.Equals(o.Return) {
		return false
	}
	for i, a := range f.Args {
		if !a.Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (f *Function) IsEqComparable() bool   { return false }
func (f *Function) IsIneqComparable() bool { return false }
func (f *Function) IsNumeric() bool        { return false }
func (f *Function) IsCastableTo(Type) bool { return false }

// FromKeyword resolves a type keyword's spelling ("int", "double",
// "boolean", "string", "void") to its Type. Returns nil for anything
// else.
func FromKeyword(name string) Type {
	switch name {
	case "int":
		return Int
	case "double":
		return Double
	case "boolean":
		return Boolean
	case "string":
		return String
	case "void":
		return Void
	default:
		return nil
	}
}
