package schema

import (
	"context"

	"github.com/hanpama/gqlexec/internal/future"
	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/vektah/gqlparser/v2/ast"
)

// FieldResolveFunc produces the value of a field. It may return a
// *future.Future of any type parameter when the value is computed
// asynchronously.
type FieldResolveFunc func(p ResolveParams) (any, error)

// IsTypeOfFunc reports whether a value belongs to the object type it is
// attached to. A nil future counts as false.
type IsTypeOfFunc func(p IsTypeOfParams) *future.Future[bool]

// ResolveTypeFunc names the concrete object type of a value returned for an
// abstract type. The future may hold a *Type, a type name string, a
// ConcreteTypeRef, or nil when the hook cannot decide.
type ResolveTypeFunc func(p ResolveTypeParams) *future.Future[any]

// SerializeFunc converts a resolved leaf value into its response form.
type SerializeFunc func(value any) (any, error)

type ResolveParams struct {
	Context context.Context
	Source  any
	Args    map[string]any
	Info    *ResolveInfo
}

type IsTypeOfParams struct {
	Context context.Context
	Value   any
	Info    *ResolveInfo
}

type ResolveTypeParams struct {
	Context      context.Context
	Value        any
	Info         *ResolveInfo
	AbstractType *Type
}

// ResolveInfo describes the field being executed.
type ResolveInfo struct {
	FieldName      string
	FieldNodes     []*ast.Field
	ReturnType     *TypeRef
	ParentType     *Type
	Path           *respath.Path
	Schema         *Schema
	Fragments      ast.FragmentDefinitionList
	RootValue      any
	Operation      *ast.OperationDefinition
	VariableValues map[string]any
}

// ConcreteTypeRef is the answer of a type resolution: either a type name or a
// type itself. The zero value means no answer.
type ConcreteTypeRef struct {
	name string
	typ  *Type
}

func TypeNamed(name string) ConcreteTypeRef { return ConcreteTypeRef{name: name} }

func TypeDirect(t *Type) ConcreteTypeRef {
	if t == nil {
		return ConcreteTypeRef{}
	}
	return ConcreteTypeRef{typ: t}
}

func (r ConcreteTypeRef) IsZero() bool { return r.typ == nil && r.name == "" }

func (r ConcreteTypeRef) Name() string {
	if r.typ != nil {
		return r.typ.Name
	}
	return r.name
}

// Direct returns the referenced type when the reference carries one.
func (r ConcreteTypeRef) Direct() (*Type, bool) { return r.typ, r.typ != nil }

// ToConcreteTypeRef interprets the value produced by a ResolveTypeFunc. ok is
// false for values of any other shape.
func ToConcreteTypeRef(v any) (ref ConcreteTypeRef, ok bool) {
	switch v := v.(type) {
	case nil:
		return ConcreteTypeRef{}, true
	case ConcreteTypeRef:
		return v, true
	case *Type:
		return TypeDirect(v), true
	case string:
		return TypeNamed(v), true
	}
	return ConcreteTypeRef{}, false
}
