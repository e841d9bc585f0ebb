// Package language adapts gqlparser for parsing and validating executable
// documents.
package language

import (
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses an executable document. Syntax errors are returned as a
// *gqlerror.Error carrying the offending location.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		var ge *gqlerror.Error
		if errors.As(err, &ge) {
			return nil, ge
		}
		return nil, gqlerror.Wrap(err)
	}
	return doc, nil
}

// Validate runs the standard validation rules over an already parsed
// document.
func Validate(schema *ast.Schema, doc *QueryDocument) gqlerror.List {
	return validator.Validate(schema, doc)
}
