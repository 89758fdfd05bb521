package planner

import (
	"context"

	"github.com/dwizi/friday/internal/actions"
)

// Turn is one role-tagged fragment of the bounded conversation window.
type Turn struct {
	Role string // "user" or "model"
	Text string
}

type Kind string

const (
	KindText     Kind = "text"
	KindActions  Kind = "actions"
	KindGrounded Kind = "grounded"
)

type Citation struct {
	Title string
	URI   string
}

// Outcome is the parsed planner response for one call. For KindActions the
// raw model parts are retained so the synthesis call can echo them back to
// the model in the provider's expected shape.
type Outcome struct {
	Kind      Kind
	Text      string
	Actions   []actions.Request
	Citations []Citation

	modelParts []part
}

type Input struct {
	Directive string
	History   []Turn
	Message   string
	Catalog   []actions.Declaration
}

// Client is the two-call planner protocol: Plan interprets the message,
// Synthesize turns ordered action results into the final reply. The
// synthesis result is a full Outcome because the model may ground its
// summary and attach citations. Neither call is retried here; retry policy
// belongs to the orchestrator boundary.
type Client interface {
	Plan(ctx context.Context, input Input) (Outcome, error)
	Synthesize(ctx context.Context, input Input, prior Outcome, results []actions.Result) (Outcome, error)
}
