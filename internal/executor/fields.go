package executor

import (
	language "github.com/hanpama/gqlexec/internal/language"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

// fieldGroup is one response key together with every field node that
// contributes to it.
type fieldGroup struct {
	responseKey string
	nodes       []*language.Field
}

type fieldCollector struct {
	ec      *executionContext
	object  *schema.Type
	visited map[string]bool // fragment names
	index   map[string]int  // response key -> position in groups
	groups  []fieldGroup
}

// collectFields groups the selections that apply to objectType by response
// key, in order of first appearance. Each named fragment is expanded at most
// once.
func (ec *executionContext) collectFields(objectType *schema.Type, selectionSet language.SelectionSet) []fieldGroup {
	c := &fieldCollector{
		ec:      ec,
		object:  objectType,
		visited: make(map[string]bool),
		index:   make(map[string]int),
	}
	c.collect(selectionSet)
	return c.groups
}

func (c *fieldCollector) collect(selectionSet language.SelectionSet) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if c.ec.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.ec.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.collect(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.ec.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			if fragment := c.ec.fragments.ForName(sel.Name); fragment != nil && c.applies(fragment.TypeCondition) {
				c.collect(fragment.SelectionSet)
			}
		}
	}
}

func (c *fieldCollector) add(field *language.Field) {
	key := field.Alias
	if key == "" {
		key = field.Name
	}
	if i, ok := c.index[key]; ok {
		c.groups[i].nodes = append(c.groups[i].nodes, field)
		return
	}
	c.index[key] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{responseKey: key, nodes: []*language.Field{field}})
}

// applies reports whether a fragment with the given type condition applies
// to the collected object type: the condition is absent, names the type
// itself, or names an abstract type the object belongs to.
func (c *fieldCollector) applies(typeCondition string) bool {
	if typeCondition == "" || typeCondition == c.object.Name {
		return true
	}
	condition := c.ec.schema.Type(typeCondition)
	return condition != nil && condition.IsAbstract() && c.ec.schema.IsPossibleType(condition, c.object)
}

// included evaluates @skip and @include. A condition that is not a boolean
// is ignored.
func (ec *executionContext) included(directives language.DirectiveList) bool {
	if skip, ok := ec.condition(directives.ForName("skip")); ok && skip {
		return false
	}
	if include, ok := ec.condition(directives.ForName("include")); ok && !include {
		return false
	}
	return true
}

func (ec *executionContext) condition(directive *language.Directive) (value, ok bool) {
	if directive == nil {
		return false, false
	}
	arg := directive.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, err := arg.Value.Value(ec.variableValues)
	if err != nil {
		return false, false
	}
	value, ok = v.(bool)
	return value, ok
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	if len(fields) == 1 {
		return fields[0].SelectionSet
	}
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}
