package actions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dwizi/friday/internal/googleapi"
)

type MailExecutor struct {
	gmail *googleapi.Gmail
}

func NewMailExecutor(gmail *googleapi.Gmail) *MailExecutor {
	return &MailExecutor{gmail: gmail}
}

func (e *MailExecutor) Name() string { return "gmail_tool" }

func (e *MailExecutor) Description() string {
	return "Read recent emails or send an email on the user's behalf."
}

func (e *MailExecutor) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"action": {"type": "STRING", "enum": ["read", "send"], "description": "Action to perform"},
			"query": {"type": "STRING", "description": "Gmail search query when reading"},
			"recipient": {"type": "STRING"},
			"subject": {"type": "STRING"},
			"body": {"type": "STRING"}
		},
		"required": ["action"]
	}`)
}

type mailArgs struct {
	Action    string `json:"action"`
	Query     string `json:"query"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

func (e *MailExecutor) Execute(ctx context.Context, inv Invocation, args json.RawMessage) Result {
	var parsed mailArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return failure(e.Name(), ReasonInvalidArguments)
	}

	switch strings.TrimSpace(parsed.Action) {
	case "read":
		messages, err := e.gmail.ListMessages(ctx, inv.AccessToken, parsed.Query)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"messages": messages})
	case "send":
		if strings.TrimSpace(parsed.Recipient) == "" || strings.TrimSpace(parsed.Body) == "" {
			return failure(e.Name(), ReasonInvalidArguments)
		}
		sent, err := e.gmail.SendMessage(ctx, inv.AccessToken, parsed.Recipient, parsed.Subject, parsed.Body)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"messageId": sent.ID, "threadId": sent.ThreadID})
	default:
		return failure(e.Name(), ReasonInvalidArguments)
	}
}

func providerReason(err error) string {
	var apiErr *googleapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ReasonCode()
	}
	return "provider_error"
}
