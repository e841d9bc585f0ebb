package schema

import (
	"fmt"
	"sync"
)

// Schema represents the complete GraphQL schema
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type // All named types keyed by name
	Directives       map[string]*Directive
	Description      string

	typeOrder      []string
	directiveOrder []string

	mu       sync.RWMutex
	possible map[string][]*Type
}

// NewSchema returns a schema holding the built-in scalars and the @include and
// @skip directives. The root operation type defaults to "Query".
func NewSchema(description string) *Schema {
	s := &Schema{
		QueryType:   "Query",
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
	for _, t := range builtinScalars() {
		s.AddType(t)
	}
	s.AddDirective(includeDirective()).
		AddDirective(skipDirective())
	return s
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t. A type with the same name replaces the earlier one but
// keeps its position.
func (s *Schema) AddType(t *Type) *Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Types[t.Name]; !ok {
		s.typeOrder = append(s.typeOrder, t.Name)
	}
	s.Types[t.Name] = t
	s.possible = nil
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	if _, ok := s.Directives[d.Name]; !ok {
		s.directiveOrder = append(s.directiveOrder, d.Name)
	}
	s.Directives[d.Name] = d
	return s
}

// Type returns the named type or nil.
func (s *Schema) Type(name string) *Type {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Types[name]
}

// TypeNames returns every type name in the order the types were added.
func (s *Schema) TypeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.typeOrder...)
}

func (s *Schema) DirectiveNames() []string {
	return append([]string(nil), s.directiveOrder...)
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Type(s.QueryType) }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type {
	if s.MutationType == "" {
		return nil
	}
	return s.Type(s.MutationType)
}

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type {
	if s.SubscriptionType == "" {
		return nil
	}
	return s.Type(s.SubscriptionType)
}

// PossibleTypes returns the object types an abstract type can resolve to.
// For an interface these are the object types declaring it, in declaration
// order. For a union they are its members in the order listed.
func (s *Schema) PossibleTypes(abstract *Type) []*Type {
	if abstract == nil || !abstract.IsAbstract() {
		return nil
	}
	s.mu.RLock()
	cached, ok := s.possible[abstract.Name]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Type
	switch abstract.Kind {
	case TypeKindUnion:
		for _, name := range abstract.PossibleTypes {
			if t := s.Types[name]; t != nil && t.Kind == TypeKindObject {
				out = append(out, t)
			}
		}
	case TypeKindInterface:
		for _, name := range s.typeOrder {
			t := s.Types[name]
			if t.Kind == TypeKindObject && t.Implements(abstract.Name) {
				out = append(out, t)
			}
		}
	}
	if s.possible == nil {
		s.possible = make(map[string][]*Type)
	}
	s.possible[abstract.Name] = out
	return out
}

// IsPossibleType reports whether object is one of the possible types of
// abstract. Membership is decided by identity of the registered type.
func (s *Schema) IsPossibleType(abstract, object *Type) bool {
	for _, t := range s.PossibleTypes(abstract) {
		if t == object {
			return true
		}
	}
	return false
}

// Validate checks references between types: named type references resolve,
// interfaces and union members exist and have the right kind.
func (s *Schema) Validate() error {
	if s.GetQueryType() == nil {
		return fmt.Errorf("query root type %q is not defined", s.QueryType)
	}
	for _, name := range s.TypeNames() {
		t := s.Type(name)
		for _, f := range t.Fields {
			if s.Type(f.Type.GetNamedType()) == nil {
				return fmt.Errorf("field %s.%s refers to unknown type %q", t.Name, f.Name, f.Type.GetNamedType())
			}
			for _, arg := range f.Arguments {
				if s.Type(arg.Type.GetNamedType()) == nil {
					return fmt.Errorf("argument %s.%s(%s) refers to unknown type %q", t.Name, f.Name, arg.Name, arg.Type.GetNamedType())
				}
			}
		}
		for _, iface := range t.Interfaces {
			if it := s.Type(iface); it == nil || it.Kind != TypeKindInterface {
				return fmt.Errorf("type %s implements %q which is not an interface", t.Name, iface)
			}
		}
		if t.Kind == TypeKindUnion {
			for _, member := range t.PossibleTypes {
				if mt := s.Type(member); mt == nil || mt.Kind != TypeKindObject {
					return fmt.Errorf("union %s member %q is not an object type", t.Name, member)
				}
			}
		}
	}
	return nil
}

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name           string
	Kind           TypeKind
	Description    string
	Fields         []*Field      // For OBJECT and INTERFACE
	Interfaces     []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes  []string      // For UNION
	EnumValues     []*EnumValue  // For ENUM
	InputFields    []*InputValue // For INPUT_OBJECT
	SpecifiedByURL *string
	OneOf          bool

	// IsTypeOf is consulted for OBJECT types only.
	IsTypeOf IsTypeOfFunc `json:"-"`
	// ResolveType is consulted for INTERFACE and UNION types only.
	ResolveType ResolveTypeFunc `json:"-"`
	// Serialize is consulted for SCALAR and ENUM types only.
	Serialize SerializeFunc `json:"-"`
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func (t *Type) SetOneOf(oneOf bool) *Type {
	t.OneOf = oneOf
	return t
}

func (t *Type) SetIsTypeOf(fn IsTypeOfFunc) *Type {
	t.IsTypeOf = fn
	return t
}

func (t *Type) SetResolveType(fn ResolveTypeFunc) *Type {
	t.ResolveType = fn
	return t
}

func (t *Type) SetSerialize(fn SerializeFunc) *Type {
	t.Serialize = fn
	return t
}

// Field returns the field definition with the given name or nil.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

func (t *Type) EnumValue(name string) *EnumValue {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	IsDeprecated      bool
	DeprecationReason string

	// Resolve computes the field value. When nil the executor's default
	// resolver reads the value from the parent.
	Resolve FieldResolveFunc `json:"-"`
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) AddArgument(arg *InputValue) *Field {
	f.Arguments = append(f.Arguments, arg)
	return f
}

func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) SetResolve(fn FieldResolveFunc) *Field {
	f.Resolve = fn
	return f
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(repeatable bool) *Directive {
	d.IsRepeatable = repeatable
	return d
}

func (d *Directive) AddArgument(arg *InputValue) *Directive {
	d.Arguments = append(d.Arguments, arg)
	return d
}

func (d *Directive) AddLocation(locations ...string) *Directive {
	d.Locations = append(d.Locations, locations...)
	return d
}
