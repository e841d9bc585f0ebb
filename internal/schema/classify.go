package schema

// Category is the classification of a type position: one of the named kinds
// or one of the two wrappers.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryScalar
	CategoryEnum
	CategoryObject
	CategoryInterface
	CategoryUnion
	CategoryInputObject
	CategoryList
	CategoryNonNull
)

func (c Category) String() string {
	switch c {
	case CategoryScalar:
		return "Scalar"
	case CategoryEnum:
		return "Enum"
	case CategoryObject:
		return "Object"
	case CategoryInterface:
		return "Interface"
	case CategoryUnion:
		return "Union"
	case CategoryInputObject:
		return "InputObject"
	case CategoryList:
		return "List"
	case CategoryNonNull:
		return "NonNull"
	}
	return "Unknown"
}

// Classify reports the category of the outermost layer of ref. Named
// references are looked up in the schema; an unknown name is
// CategoryUnknown.
func (s *Schema) Classify(ref *TypeRef) Category {
	if ref == nil {
		return CategoryUnknown
	}
	switch ref.Kind {
	case TypeRefKindNonNull:
		return CategoryNonNull
	case TypeRefKindList:
		return CategoryList
	}
	t := s.Type(ref.Named)
	if t == nil {
		return CategoryUnknown
	}
	return t.Category()
}

func (t *Type) Category() Category {
	switch t.Kind {
	case TypeKindScalar:
		return CategoryScalar
	case TypeKindEnum:
		return CategoryEnum
	case TypeKindObject:
		return CategoryObject
	case TypeKindInterface:
		return CategoryInterface
	case TypeKindUnion:
		return CategoryUnion
	case TypeKindInputObject:
		return CategoryInputObject
	}
	return CategoryUnknown
}

// IsAbstract reports whether t is an interface or a union.
func (t *Type) IsAbstract() bool {
	return t != nil && (t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

// IsLeaf reports whether t is a scalar or an enum.
func (t *Type) IsLeaf() bool {
	return t != nil && (t.Kind == TypeKindScalar || t.Kind == TypeKindEnum)
}

// NamedTypeOf removes every wrapper and returns the schema type the reference
// ends in, or nil.
func (s *Schema) NamedTypeOf(ref *TypeRef) *Type {
	return s.Type(ref.GetNamedType())
}
