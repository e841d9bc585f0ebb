package executor

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hanpama/gqlexec/internal/respath"
	"github.com/hanpama/gqlexec/internal/schema"
)

// InvariantError reports misuse of the engine rather than a data dependent
// failure. It is the only error that aborts an execution.
type InvariantError struct {
	Message string
	Path    *respath.Path
}

func (e *InvariantError) Error() string {
	if e.Path.Len() == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Path)
}

// fieldError is a located error together with the response path it was
// detected at. It travels upward until a nullable position records it.
type fieldError struct {
	err  *gqlerror.Error
	path *respath.Path
}

func (e *fieldError) Error() string { return e.err.Message }
func (e *fieldError) Unwrap() error { return e.err }

// locatedError attaches the locations of fieldNodes and path to err. An error
// that is already located keeps its original path and locations.
func locatedError(err error, fieldNodes []*ast.Field, path *respath.Path) *fieldError {
	var located *fieldError
	if errors.As(err, &located) {
		return located
	}

	var gerr *gqlerror.Error
	if errors.As(err, &gerr) {
		clone := *gerr
		gerr = &clone
	} else {
		gerr = &gqlerror.Error{Err: err, Message: err.Error()}
	}
	if gerr.Path == nil {
		gerr.Path = path.AsAST()
	}
	if len(gerr.Locations) == 0 {
		for _, node := range fieldNodes {
			if node.Position == nil {
				continue
			}
			gerr.Locations = append(gerr.Locations, gqlerror.Location{
				Line:   node.Position.Line,
				Column: node.Position.Column,
			})
		}
	}
	return &fieldError{err: gerr, path: path}
}

func isInvariant(err error) bool {
	var inv *InvariantError
	return errors.As(err, &inv)
}

// handleFieldError decides what happens to err at a position of type
// returnType. Invariant errors pass through untouched. At a Non-Null position
// the located error is returned for the parent to handle; otherwise it is
// recorded and nil is returned, meaning the position is null.
func (ec *executionContext) handleFieldError(err error, returnType *schema.TypeRef, fieldNodes []*ast.Field, path *respath.Path) error {
	if isInvariant(err) {
		return err
	}
	located := locatedError(err, fieldNodes, path)
	if returnType.IsNonNull() {
		return located
	}
	ec.addError(located)
	return nil
}

// firstError returns the first non-nil error in errs and records every other
// located one, so that no failure of a sibling is lost. Invariant errors win
// over everything else.
func (ec *executionContext) firstError(errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if isInvariant(err) {
			return err
		}
		if first == nil {
			first = err
			continue
		}
		var located *fieldError
		if errors.As(err, &located) {
			ec.addError(located)
		}
	}
	return first
}
