package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
	Sync          bool
}

// GraphQLFinish is emitted after executing a GraphQL operation. Aborted is
// set when the execution failed as a whole instead of producing a result.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Sync          bool
	Errors        []error
	Aborted       error
	Duration      time.Duration
}
