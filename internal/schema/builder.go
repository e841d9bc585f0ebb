package schema

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// BuildFromSDL parses and validates an SDL document and returns the
// corresponding Schema. Type extensions are merged into their base
// definitions. Types keep the order in which they are declared in the
// document. Capabilities are bound afterwards with SetResolver, SetIsTypeOf,
// SetResolveType and SetSerializer.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	src := &ast.Source{Name: name, Input: sdl}
	loaded, gerr := gqlparser.LoadSchema(src)
	if gerr != nil {
		return nil, fmt.Errorf("load schema %s: %w", name, gerr)
	}
	doc, err := parser.ParseSchema(src)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	var order []string
	seen := make(map[string]bool)
	for _, defs := range []ast.DefinitionList{doc.Definitions, doc.Extensions} {
		for _, def := range defs {
			if !seen[def.Name] {
				seen[def.Name] = true
				order = append(order, def.Name)
			}
		}
	}
	return BuildFromAST(loaded, order), nil
}

// BuildFromAST converts a loaded gqlparser schema. order lists user type names
// in declaration order; types missing from it follow in their map order.
func BuildFromAST(src *ast.Schema, order []string) *Schema {
	s := NewSchema(src.Description)
	if src.Query != nil {
		s.SetQueryType(src.Query.Name)
	}
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
	}

	added := make(map[string]bool)
	add := func(def *ast.Definition) {
		if def == nil || added[def.Name] || def.BuiltIn || IsBuiltinScalar(def.Name) {
			return
		}
		added[def.Name] = true
		s.AddType(buildType(def))
	}
	for _, name := range order {
		add(src.Types[name])
	}
	for _, def := range src.Types {
		add(def)
	}

	for _, d := range src.Directives {
		if isBuiltinDirective(d.Name) || (d.Position != nil && d.Position.Src != nil && d.Position.Src.BuiltIn) {
			continue
		}
		s.AddDirective(buildDirective(d))
	}
	return s
}

func buildType(def *ast.Definition) *Type {
	t := NewType(def.Name, kindFromAST(def.Kind), def.Description)
	for _, iface := range def.Interfaces {
		t.AddInterface(iface)
	}
	for _, fd := range def.Fields {
		if strings.HasPrefix(fd.Name, "__") {
			continue
		}
		if def.Kind == ast.InputObject {
			t.AddInputField(buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives))
			continue
		}
		f := NewField(fd.Name, fd.Description, TypeRefFromAST(fd.Type))
		for _, arg := range fd.Arguments {
			f.AddArgument(buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
		}
		if ok, reason := deprecation(fd.Directives); ok {
			f.Deprecate(reason)
		}
		t.AddField(f)
	}
	for _, member := range def.Types {
		t.AddPossibleType(member)
	}
	for _, ev := range def.EnumValues {
		v := NewEnumValue(ev.Name, ev.Description)
		if ok, reason := deprecation(ev.Directives); ok {
			v.Deprecate(reason)
		}
		t.AddEnumValue(v)
	}
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	t.SetOneOf(def.Directives.ForName("oneOf") != nil)
	if t.Kind == TypeKindEnum {
		t.Serialize = EnumSerializer(t)
	}
	return t
}

func buildInputValue(name, description string, typ *ast.Type, def *ast.Value, directives ast.DirectiveList) *InputValue {
	in := NewInputValue(name, description, TypeRefFromAST(typ))
	if def != nil {
		if v, err := def.Value(nil); err == nil {
			in.SetDefault(v)
		}
	}
	if ok, reason := deprecation(directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildDirective(d *ast.DirectiveDefinition) *Directive {
	out := NewDirective(d.Name, d.Description).SetRepeatable(d.IsRepeatable)
	for _, loc := range d.Locations {
		out.AddLocation(string(loc))
	}
	for _, arg := range d.Arguments {
		out.AddArgument(buildInputValue(arg.Name, arg.Description, arg.Type, arg.DefaultValue, arg.Directives))
	}
	return out
}

func deprecation(directives ast.DirectiveList) (bool, string) {
	d := directives.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return true, arg.Value.Raw
	}
	return true, ""
}

func kindFromAST(kind ast.DefinitionKind) TypeKind {
	switch kind {
	case ast.Object:
		return TypeKindObject
	case ast.Interface:
		return TypeKindInterface
	case ast.Union:
		return TypeKindUnion
	case ast.Enum:
		return TypeKindEnum
	case ast.InputObject:
		return TypeKindInputObject
	}
	return TypeKindScalar
}

// SetResolver binds the resolver of typeName.fieldName.
func (s *Schema) SetResolver(typeName, fieldName string, fn FieldResolveFunc) error {
	t := s.Type(typeName)
	if t == nil || (t.Kind != TypeKindObject && t.Kind != TypeKindInterface) {
		return fmt.Errorf("cannot bind resolver: %q is not an object or interface type", typeName)
	}
	f := t.Field(fieldName)
	if f == nil {
		return fmt.Errorf("cannot bind resolver: type %q has no field %q", typeName, fieldName)
	}
	f.Resolve = fn
	return nil
}

// SetIsTypeOf binds the predicate of an object type.
func (s *Schema) SetIsTypeOf(typeName string, fn IsTypeOfFunc) error {
	t := s.Type(typeName)
	if t == nil || t.Kind != TypeKindObject {
		return fmt.Errorf("cannot bind is_type_of: %q is not an object type", typeName)
	}
	t.IsTypeOf = fn
	return nil
}

// SetResolveType binds the type resolution hook of an interface or union.
func (s *Schema) SetResolveType(typeName string, fn ResolveTypeFunc) error {
	t := s.Type(typeName)
	if !t.IsAbstract() {
		return fmt.Errorf("cannot bind resolve_type: %q is not an interface or union type", typeName)
	}
	t.ResolveType = fn
	return nil
}

// SetSerializer binds the serializer of a scalar or enum type.
func (s *Schema) SetSerializer(typeName string, fn SerializeFunc) error {
	t := s.Type(typeName)
	if !t.IsLeaf() {
		return fmt.Errorf("cannot bind serializer: %q is not a scalar or enum type", typeName)
	}
	t.Serialize = fn
	return nil
}

// ToAST renders s and loads it through gqlparser, so that query documents can
// be validated against it.
func ToAST(s *Schema) (*ast.Schema, error) {
	loaded, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: Render(s)})
	if err != nil {
		return nil, err
	}
	return loaded, nil
}
