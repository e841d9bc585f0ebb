package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema. Types and directives appear in the
// order they were added; built-in scalars and directives are omitted.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	p := &printer{schema: s}
	if s.QueryType != "Query" || (s.MutationType != "" && s.MutationType != "Mutation") ||
		(s.SubscriptionType != "" && s.SubscriptionType != "Subscription") {
		p.schemaDefinition()
	}
	for _, name := range s.TypeNames() {
		if IsBuiltinScalar(name) {
			continue
		}
		p.typeDefinition(s.Type(name))
	}
	for _, name := range s.DirectiveNames() {
		if isBuiltinDirective(name) {
			continue
		}
		p.directiveDefinition(s.Directives[name])
	}
	return strings.TrimRight(p.b.String(), "\n") + "\n"
}

type printer struct {
	schema *Schema
	b      strings.Builder
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.b, format, args...)
}

func (p *printer) schemaDefinition() {
	p.printf("schema {\n  query: %s\n", p.schema.QueryType)
	if p.schema.MutationType != "" {
		p.printf("  mutation: %s\n", p.schema.MutationType)
	}
	if p.schema.SubscriptionType != "" {
		p.printf("  subscription: %s\n", p.schema.SubscriptionType)
	}
	p.printf("}\n\n")
}

func (p *printer) description(desc, indent string) {
	if desc == "" {
		return
	}
	desc = strings.ReplaceAll(desc, `"""`, `\"""`)
	p.printf("%s\"\"\"\n%s%s\n%s\"\"\"\n", indent, indent, strings.ReplaceAll(desc, "\n", "\n"+indent), indent)
}

func (p *printer) deprecated(is bool, reason string) {
	if !is {
		return
	}
	p.printf(" @deprecated")
	if reason != "" {
		p.printf("(reason: %s)", strconv.Quote(reason))
	}
}

func (p *printer) typeDefinition(typ *Type) {
	p.description(typ.Description, "")
	switch typ.Kind {
	case TypeKindScalar:
		p.printf("scalar %s", typ.Name)
		if typ.SpecifiedByURL != nil {
			p.printf(" @specifiedBy(url: %s)", strconv.Quote(*typ.SpecifiedByURL))
		}
		p.printf("\n\n")
	case TypeKindEnum:
		p.printf("enum %s {\n", typ.Name)
		for _, v := range typ.EnumValues {
			p.description(v.Description, "  ")
			p.printf("  %s", v.Name)
			p.deprecated(v.IsDeprecated, v.DeprecationReason)
			p.printf("\n")
		}
		p.printf("}\n\n")
	case TypeKindInputObject:
		p.printf("input %s", typ.Name)
		if typ.OneOf {
			p.printf(" @oneOf")
		}
		p.printf(" {\n")
		for _, f := range typ.InputFields {
			p.description(f.Description, "  ")
			p.printf("  ")
			p.inputValue(f)
			p.printf("\n")
		}
		p.printf("}\n\n")
	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if typ.Kind == TypeKindInterface {
			keyword = "interface"
		}
		p.printf("%s %s", keyword, typ.Name)
		if len(typ.Interfaces) > 0 {
			p.printf(" implements %s", strings.Join(typ.Interfaces, " & "))
		}
		p.printf(" {\n")
		for _, f := range typ.Fields {
			p.field(f)
		}
		p.printf("}\n\n")
	case TypeKindUnion:
		p.printf("union %s = %s\n\n", typ.Name, strings.Join(typ.PossibleTypes, " | "))
	}
}

func (p *printer) field(f *Field) {
	p.description(f.Description, "  ")
	p.printf("  %s", f.Name)
	p.arguments(f.Arguments)
	p.printf(": %s", f.Type)
	p.deprecated(f.IsDeprecated, f.DeprecationReason)
	p.printf("\n")
}

func (p *printer) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	p.printf("(")
	for i, arg := range args {
		if i > 0 {
			p.printf(", ")
		}
		p.inputValue(arg)
	}
	p.printf(")")
}

func (p *printer) inputValue(v *InputValue) {
	p.printf("%s: %s", v.Name, v.Type)
	if v.DefaultValue != nil {
		p.printf(" = %s", p.value(v.DefaultValue, v.Type))
	}
	p.deprecated(v.IsDeprecated, v.DeprecationReason)
}

func (p *printer) directiveDefinition(d *Directive) {
	p.description(d.Description, "")
	p.printf("directive @%s", d.Name)
	p.arguments(d.Arguments)
	if d.IsRepeatable {
		p.printf(" repeatable")
	}
	p.printf(" on %s\n\n", strings.Join(d.Locations, " | "))
}

// value renders a default value as a literal of type ref. Enum members are
// written bare; strings of any other type are quoted.
func (p *printer) value(v any, ref *TypeRef) string {
	if v == nil {
		return "null"
	}
	ref = NullableType(ref)
	switch v := v.(type) {
	case string:
		if named := p.schema.NamedTypeOf(ref); named != nil && named.Kind == TypeKindEnum {
			return v
		}
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		item := ref
		if ref != nil && ref.Kind == TypeRefKindList {
			item = ref.OfType
		}
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = p.value(elem, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		var fields map[string]*InputValue
		if named := p.schema.NamedTypeOf(ref); named != nil {
			fields = make(map[string]*InputValue, len(named.InputFields))
			for _, f := range named.InputFields {
				fields[f.Name] = f
			}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			var fieldType *TypeRef
			if f := fields[k]; f != nil {
				fieldType = f.Type
			}
			parts[i] = k + ": " + p.value(v[k], fieldType)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(v)
}
