package googleapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTasksAddAndComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/lists/@default/tasks":
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if payload["title"] != "Book flights" || payload["due"] != "2026-09-02T00:00:00Z" {
				t.Fatalf("unexpected payload: %v", payload)
			}
			w.Write([]byte(`{"id":"tsk-1","title":"Book flights","due":"2026-09-02T00:00:00Z","status":"needsAction"}`))
		case r.Method == http.MethodPatch && r.URL.Path == "/lists/@default/tasks/tsk-1":
			w.Write([]byte(`{"id":"tsk-1","title":"Book flights","status":"completed"}`))
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	tasks := NewTasks(Config{BaseURL: server.URL})
	created, err := tasks.AddTask(context.Background(), "token-1", "Book flights", "2026-09-02T00:00:00Z")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if created.ID != "tsk-1" {
		t.Fatalf("unexpected task: %+v", created)
	}

	done, err := tasks.CompleteTask(context.Background(), "token-1", "tsk-1")
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if done.Status != "completed" {
		t.Fatalf("expected completed status, got %s", done.Status)
	}
}

func TestTasksListExcludesCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lists/@default/tasks" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("showCompleted") != "false" {
			t.Fatal("expected completed tasks excluded")
		}
		w.Write([]byte(`{"items":[{"id":"tsk-1","title":"Review Q3 financials","status":"needsAction"}]}`))
	}))
	defer server.Close()

	tasks := NewTasks(Config{BaseURL: server.URL})
	items, err := tasks.ListTasks(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Review Q3 financials" {
		t.Fatalf("unexpected tasks: %+v", items)
	}
}
