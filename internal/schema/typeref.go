package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// TypeRef is a possibly wrapped reference to a named type, as written in a
// field, argument or variable definition.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // wrapped type of LIST and NON_NULL
	Named  string   // NAMED only
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func NamedType(name string) *TypeRef { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ListType(of *TypeRef) *TypeRef  { return &TypeRef{Kind: TypeRefKindList, OfType: of} }

// NonNullType wraps of with Non-Null. Wrapping a Non-Null type again panics.
func NonNullType(of *TypeRef) *TypeRef {
	if of.IsNonNull() {
		panic(fmt.Sprintf("schema: cannot wrap non-null type %s with non-null", of))
	}
	return &TypeRef{Kind: TypeRefKindNonNull, OfType: of}
}

// TypeRefFromAST converts a gqlparser type reference.
func TypeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	ref := NamedType(t.NamedType)
	if t.Elem != nil {
		ref = ListType(TypeRefFromAST(t.Elem))
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsNonNull is the nil-safe form of TypeRef.IsNonNull.
func IsNonNull(t *TypeRef) bool { return t.IsNonNull() }

// NullableType strips a single Non-Null wrapper if present.
func NullableType(t *TypeRef) *TypeRef {
	if t.IsNonNull() {
		return t.OfType
	}
	return t
}

// GetNamedType returns the name at the bottom of the wrappers.
func (t *TypeRef) GetNamedType() string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// String renders the reference in SDL notation, e.g. "[Pet!]!".
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	}
	return t.Named
}
