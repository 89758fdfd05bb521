package actions

import (
	"context"
	"encoding/json"
)

// Reason codes reported on failed results. The planner sees these verbatim
// during synthesis, so they stay short and stable.
const (
	ReasonInvalidArguments = "invalid_arguments"
	ReasonUnknownAction    = "unknown_action"
)

// Request is one action the planner asked for in a turn. Requests are
// ephemeral; they never outlive the turn that produced them.
type Request struct {
	Name string
	Args json.RawMessage
}

// Result is the normalized outcome of one request. Payload carries the
// provider data in the executor's normalized shape so synthesis sees a
// consistent structure regardless of provider quirks.
type Result struct {
	Name    string
	Success bool
	Reason  string
	Payload any
}

func failure(name, reason string) Result {
	return Result{Name: name, Reason: reason}
}

func success(name string, payload any) Result {
	return Result{Name: name, Success: true, Payload: payload}
}

// Invocation carries the per-turn identity an executor may need. Mail,
// calendar and tasks use the delegated access token; the reminder executor
// writes against the user id instead.
type Invocation struct {
	AccessToken string
	UserID      string
}

// Executor is one executable capability offered to the planner.
// Implementations validate arguments before any network call and never
// return an error past their boundary: every failure becomes a Result.
type Executor interface {
	Name() string
	Description() string

	// ParametersSchema returns the declarative argument schema serialized
	// into the planner's action catalog.
	ParametersSchema() json.RawMessage

	Execute(ctx context.Context, inv Invocation, args json.RawMessage) Result
}
