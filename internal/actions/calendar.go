package actions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dwizi/friday/internal/googleapi"
)

type CalendarExecutor struct {
	calendar *googleapi.Calendar
}

func NewCalendarExecutor(calendar *googleapi.Calendar) *CalendarExecutor {
	return &CalendarExecutor{calendar: calendar}
}

func (e *CalendarExecutor) Name() string { return "calendar_tool" }

func (e *CalendarExecutor) Description() string {
	return "List upcoming calendar events or create a new event."
}

func (e *CalendarExecutor) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"action": {"type": "STRING", "enum": ["list", "create"], "description": "Action to perform"},
			"timeMin": {"type": "STRING", "description": "ISO instant lower bound when listing"},
			"title": {"type": "STRING"},
			"startTime": {"type": "STRING", "description": "ISO instant event start"},
			"endTime": {"type": "STRING", "description": "ISO instant event end"}
		},
		"required": ["action"]
	}`)
}

type calendarArgs struct {
	Action    string `json:"action"`
	TimeMin   string `json:"timeMin"`
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (e *CalendarExecutor) Execute(ctx context.Context, inv Invocation, args json.RawMessage) Result {
	var parsed calendarArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return failure(e.Name(), ReasonInvalidArguments)
	}

	switch strings.TrimSpace(parsed.Action) {
	case "list":
		events, err := e.calendar.ListEvents(ctx, inv.AccessToken, parsed.TimeMin)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"events": events})
	case "create":
		if strings.TrimSpace(parsed.Title) == "" || strings.TrimSpace(parsed.StartTime) == "" || strings.TrimSpace(parsed.EndTime) == "" {
			return failure(e.Name(), ReasonInvalidArguments)
		}
		event, err := e.calendar.CreateEvent(ctx, inv.AccessToken, googleapi.EventInput{
			Title: parsed.Title,
			Start: parsed.StartTime,
			End:   parsed.EndTime,
		})
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"event": event})
	default:
		return failure(e.Name(), ReasonInvalidArguments)
	}
}
