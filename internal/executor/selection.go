package executor

import (
	"github.com/dolmen-go/jsonmap"
	"golang.org/x/sync/errgroup"

	language "github.com/hanpama/gqlexec/internal/language"
	"github.com/hanpama/gqlexec/internal/respath"
	schema "github.com/hanpama/gqlexec/internal/schema"
)

// executeSelectionSet executes selectionSet against objectType and returns a
// jsonmap.Ordered keyed by response name in document order.
func (ec *executionContext) executeSelectionSet(objectType *schema.Type, selectionSet language.SelectionSet, source any, path *respath.Path) (any, error) {
	return ec.executeFields(objectType, source, path, ec.collectFields(objectType, selectionSet), false)
}

// executeFieldsSerially is used for the root fields of a mutation: each field
// is resolved and completed before the next one starts.
func (ec *executionContext) executeFieldsSerially(objectType *schema.Type, source any, path *respath.Path, fields []fieldGroup) (any, error) {
	return ec.executeFields(objectType, source, path, fields, true)
}

func (ec *executionContext) executeFields(objectType *schema.Type, source any, path *respath.Path, fields []fieldGroup, serial bool) (any, error) {
	values := make([]any, len(fields))
	present := make([]bool, len(fields))
	errs := make([]error, len(fields))

	ec.forEach(len(fields), serial, func(i int) error {
		field := fields[i]
		fieldPath := path.WithKey(field.responseKey, i)
		values[i], present[i], errs[i] = ec.executeField(objectType, source, field.nodes, fieldPath)
		return errs[i]
	})
	if err := ec.firstError(errs); err != nil {
		return nil, err
	}

	result := jsonmap.Ordered{
		Data:  make(map[string]any, len(fields)),
		Order: make([]string, 0, len(fields)),
	}
	for i, field := range fields {
		if !present[i] {
			continue
		}
		result.Data[field.responseKey] = values[i]
		result.Order = append(result.Order, field.responseKey)
	}
	return result, nil
}

// forEach calls fn for every index below n. In synchronous mode, or when
// serial is set, calls happen in order on the calling goroutine and stop at
// the first invariant error. Otherwise they run on goroutines, at most
// maxConcurrency at a time per call when the limit is set, and forEach
// returns once all of them are done.
func (ec *executionContext) forEach(n int, serial bool, fn func(i int) error) {
	if ec.sync || serial || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil && isInvariant(err) {
				return
			}
		}
		return
	}

	var g errgroup.Group
	if ec.maxConcurrency > 0 {
		g.SetLimit(ec.maxConcurrency)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
