// Package executor runs a parsed GraphQL operation against a schema whose
// types carry their own capabilities: field resolvers, ResolveType hooks on
// interfaces and unions, IsTypeOf predicates on object types, and serializers
// on leaf types.
//
// # Overview
//
// Execution produces a response tree and a list of located errors. A failure
// in one field never aborts the request: the failing position becomes null,
// the error is recorded with the source locations of the field and the
// response path of the position, and sibling fields are still completed.
//
// # Preparation
//
// Before execution, the executor:
//  1. Chooses the operation (by name or by uniqueness when unnamed).
//  2. Coerces variables against the operation's variable definitions.
//     Failures here produce a result with null data and a single error.
//  3. Builds an execution context: schema, document, operation, fragments,
//     coerced variables, root value, execution mode and the error list.
//  4. Picks the root object type for the operation.
//
// # Execution Modes
//
// Resolvers and hooks may answer with a *future.Future. Both entry points go
// through the same completion code and only differ in how a future is awaited:
//
//   - ExecuteRequestSync runs everything on the calling goroutine in document
//     order. A future that is still pending when it is polled aborts the call
//     with an *InvariantError. No result is produced in that case.
//   - Execute (and ExecuteRequest, which waits for it) fans sibling fields and
//     list items out on goroutines bounded by WithMaxConcurrency, and waits for
//     futures until they complete or the context is done.
//
// Root mutation fields always run one after another in document order.
//
// # Value Completion
//
//   - Non-Null: complete the inner type. A null result is a violation that
//     propagates to the nearest nullable ancestor.
//   - List: the value must be a slice, an array or an iter.Seq[any]. Every
//     item is completed at its own index path.
//   - Leaf (Scalar/Enum): the type's Serialize function.
//   - Object: when the object type has IsTypeOf and it answers false, the value
//     is rejected. Otherwise the merged sub-selections are executed.
//   - Abstract (Interface/Union): the concrete type is resolved (see below) and
//     the value is completed as that object type.
//
// # Abstract Type Resolution
//
// The ResolveType hook of the abstract type wins when present. Without a
// hook, a map value carrying a string "__typename" names its own type, and
// otherwise the IsTypeOf predicates of the possible types are asked in
// declaration order; the first to answer true wins. The candidate must exist
// in the schema, be the very type registered under its name, be an object
// type, and be a possible type of the abstract type.
//
// # Errors
//
// Completion functions return (value, error). At every nullable position the
// error is recorded once and the position becomes null; at a Non-Null
// position it is handed to the parent. When several siblings fail at Non-Null
// positions, the first in response order is propagated and the rest are
// recorded. Before the result is returned, errors are stably sorted by their
// response path so that both modes report them in the same order.
package executor
