package googleapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const defaultCalendarBase = "https://www.googleapis.com/calendar/v3"

type Calendar struct {
	client
}

func NewCalendar(cfg Config) *Calendar {
	return &Calendar{client: newClient(cfg, defaultCalendarBase)}
}

// Event normalizes both timed and all-day provider events into a single
// start/end string pair.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	HTMLLink string `json:"htmlLink,omitempty"`
}

type EventInput struct {
	Title string
	Start string
	End   string
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

func (t eventTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

type providerEvent struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Start    eventTime `json:"start"`
	End      eventTime `json:"end"`
	HTMLLink string    `json:"htmlLink"`
}

type eventList struct {
	Items []providerEvent `json:"items"`
}

func (c *Calendar) ListEvents(ctx context.Context, accessToken, timeMin string) ([]Event, error) {
	if strings.TrimSpace(timeMin) == "" {
		timeMin = time.Now().UTC().Format(time.RFC3339)
	}
	path := fmt.Sprintf(
		"/calendars/primary/events?timeMin=%s&maxResults=10&singleEvents=true&orderBy=startTime",
		url.QueryEscape(timeMin),
	)
	var list eventList
	if err := c.doJSON(ctx, "GET", path, accessToken, nil, &list); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, Event{
			ID:       item.ID,
			Title:    item.Summary,
			Start:    item.Start.value(),
			End:      item.End.value(),
			HTMLLink: item.HTMLLink,
		})
	}
	return events, nil
}

func (c *Calendar) CreateEvent(ctx context.Context, accessToken string, input EventInput) (Event, error) {
	payload := map[string]any{
		"summary": input.Title,
		"start":   map[string]string{"dateTime": input.Start},
		"end":     map[string]string{"dateTime": input.End},
	}
	var created providerEvent
	if err := c.doJSON(ctx, "POST", "/calendars/primary/events", accessToken, payload, &created); err != nil {
		return Event{}, err
	}
	return Event{
		ID:       created.ID,
		Title:    created.Summary,
		Start:    created.Start.value(),
		End:      created.End.value(),
		HTMLLink: created.HTMLLink,
	}, nil
}
