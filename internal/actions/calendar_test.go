package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dwizi/friday/internal/googleapi"
)

func TestCalendarExecutorCreateValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be contacted on invalid arguments")
	}))
	defer server.Close()

	executor := NewCalendarExecutor(googleapi.NewCalendar(googleapi.Config{BaseURL: server.URL}))
	result := executor.Execute(context.Background(), Invocation{AccessToken: "tok"}, json.RawMessage(
		`{"action":"create","title":"Standup"}`,
	))
	if result.Success || result.Reason != ReasonInvalidArguments {
		t.Fatalf("expected invalid_arguments on missing times, got %+v", result)
	}
}

func TestCalendarExecutorCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"evt-1","summary":"Standup","start":{"dateTime":"2026-08-31T09:00:00Z"},"end":{"dateTime":"2026-08-31T09:15:00Z"}}`))
	}))
	defer server.Close()

	executor := NewCalendarExecutor(googleapi.NewCalendar(googleapi.Config{BaseURL: server.URL}))
	result := executor.Execute(context.Background(), Invocation{AccessToken: "tok"}, json.RawMessage(
		`{"action":"create","title":"Standup","startTime":"2026-08-31T09:00:00Z","endTime":"2026-08-31T09:15:00Z"}`,
	))
	if !result.Success {
		t.Fatalf("expected success, got reason %s", result.Reason)
	}
}

func TestTasksExecutorCompleteRequiresID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("provider must not be contacted on invalid arguments")
	}))
	defer server.Close()

	executor := NewTasksExecutor(googleapi.NewTasks(googleapi.Config{BaseURL: server.URL}))
	result := executor.Execute(context.Background(), Invocation{AccessToken: "tok"}, json.RawMessage(`{"action":"complete"}`))
	if result.Success || result.Reason != ReasonInvalidArguments {
		t.Fatalf("expected invalid_arguments, got %+v", result)
	}
}
