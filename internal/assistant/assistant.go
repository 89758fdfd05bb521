// Package assistant orchestrates one conversational turn: resolve the user,
// secure a delegated token, plan, dispatch actions, synthesize, and always
// hand back exactly one reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwizi/friday/internal/actions"
	"github.com/dwizi/friday/internal/assisterr"
	"github.com/dwizi/friday/internal/planner"
	"github.com/dwizi/friday/internal/store"
)

const fallbackReply = "I ran into a system problem handling that. Please try again in a moment."

// Store is the slice of persistence the orchestrator touches per turn.
type Store interface {
	FindOrCreateUser(ctx context.Context, channelAddress string) (store.User, bool, error)
	RecentMessages(ctx context.Context, userID string, limit int) ([]store.Message, error)
	AppendMessage(ctx context.Context, userID, role, body string) error
}

// Authorizer hands out delegated access tokens and consent links.
type Authorizer interface {
	Token(ctx context.Context, userID string) (string, error)
	AuthURL(userID string, firstContact bool) string
}

// Dispatcher executes planner-requested actions in request order.
type Dispatcher interface {
	Catalog() []actions.Declaration
	Dispatch(ctx context.Context, inv actions.Invocation, requests []actions.Request) []actions.Result
}

// Directive supplies the current system directive text.
type Directive interface {
	Text() string
}

type Assistant struct {
	store        Store
	authorizer   Authorizer
	planner      planner.Client
	dispatcher   Dispatcher
	directive    Directive
	historyTurns int
	logger       *slog.Logger
}

func New(st Store, auth Authorizer, plan planner.Client, dispatch Dispatcher, directive Directive, historyTurns int, logger *slog.Logger) *Assistant {
	if historyTurns < 1 {
		historyTurns = 12
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		store:        st,
		authorizer:   auth,
		planner:      plan,
		dispatcher:   dispatch,
		directive:    directive,
		historyTurns: historyTurns,
		logger:       logger,
	}
}

// HandleMessage runs one inbound message to completion and returns the
// single reply for the channel. It never returns an empty reply: every
// failure path degrades to a message the user can act on.
func (a *Assistant) HandleMessage(ctx context.Context, channelAddress, body string) string {
	user, created, err := a.store.FindOrCreateUser(ctx, channelAddress)
	if err != nil {
		a.logger.Error("user resolution failed", "error", err)
		return fallbackReply
	}
	logger := a.logger.With("user_id", user.ID)

	if created {
		reply := fmt.Sprintf(
			"Hi! I'm Man Friday, your personal assistant. Before I can help with your email, calendar and tasks, I need your permission to access your Google account:\n\n%s",
			a.authorizer.AuthURL(user.ID, true),
		)
		a.record(ctx, logger, user.ID, body, reply)
		logger.Info("first contact, sent consent link")
		return reply
	}

	token, err := a.authorizer.Token(ctx, user.ID)
	if err != nil {
		if errors.Is(err, assisterr.ErrAuthorizationRequired) {
			reply := fmt.Sprintf(
				"I need you to reconnect your Google account before I can do that:\n\n%s",
				a.authorizer.AuthURL(user.ID, false),
			)
			a.record(ctx, logger, user.ID, body, reply)
			logger.Info("authorization required, sent consent link")
			return reply
		}
		logger.Error("token acquisition failed", "error", err)
		reply := fallbackReply
		a.record(ctx, logger, user.ID, body, reply)
		return reply
	}

	history, err := a.store.RecentMessages(ctx, user.ID, a.historyTurns)
	if err != nil {
		// A missing window degrades the conversation, not the turn.
		logger.Warn("history load failed, continuing without it", "error", err)
		history = nil
	}

	input := planner.Input{
		Directive: a.directive.Text(),
		History:   plannerHistory(history),
		Message:   body,
		Catalog:   a.dispatcher.Catalog(),
	}

	outcome, err := a.planner.Plan(ctx, input)
	if err != nil {
		logger.Error("planner call failed", "error", err)
		reply := fallbackReply
		a.record(ctx, logger, user.ID, body, reply)
		return reply
	}

	var reply string
	switch outcome.Kind {
	case planner.KindActions:
		results := a.dispatcher.Dispatch(ctx, actions.Invocation{
			AccessToken: token,
			UserID:      user.ID,
		}, outcome.Actions)
		logger.Info("dispatched actions", "count", len(results), "failed", countFailed(results))

		synthesis, err := a.planner.Synthesize(ctx, input, outcome, results)
		if err != nil {
			logger.Error("synthesis failed", "error", err)
			reply = fallbackReply
		} else {
			reply = withSources(synthesis.Text, synthesis.Citations)
		}
	case planner.KindGrounded:
		reply = withSources(outcome.Text, outcome.Citations)
	default:
		reply = outcome.Text
	}

	if strings.TrimSpace(reply) == "" {
		reply = fallbackReply
	}
	a.record(ctx, logger, user.ID, body, reply)
	return reply
}

// record persists both halves of the turn. Persistence failures are logged
// and swallowed; the reply already exists and must still be delivered.
func (a *Assistant) record(ctx context.Context, logger *slog.Logger, userID, body, reply string) {
	if err := a.store.AppendMessage(ctx, userID, store.MessageRoleUser, body); err != nil {
		logger.Warn("failed to persist user message", "error", err)
	}
	if err := a.store.AppendMessage(ctx, userID, store.MessageRoleAssistant, reply); err != nil {
		logger.Warn("failed to persist assistant message", "error", err)
	}
}

func plannerHistory(history []store.Message) []planner.Turn {
	turns := make([]planner.Turn, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == store.MessageRoleAssistant {
			role = "model"
		}
		turns = append(turns, planner.Turn{Role: role, Text: msg.Body})
	}
	return turns
}

func withSources(text string, citations []planner.Citation) string {
	if len(citations) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nSources:")
	for _, citation := range citations {
		b.WriteString("\n- ")
		if strings.TrimSpace(citation.Title) != "" {
			b.WriteString(citation.Title)
			b.WriteString(": ")
		}
		b.WriteString(citation.URI)
	}
	return b.String()
}

func countFailed(results []actions.Result) int {
	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	return failed
}
