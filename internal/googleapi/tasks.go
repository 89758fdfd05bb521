package googleapi

import (
	"context"
	"net/url"
)

const defaultTasksBase = "https://tasks.googleapis.com/tasks/v1"

// Tasks operates on the account's default task list.
type Tasks struct {
	client
}

func NewTasks(cfg Config) *Tasks {
	return &Tasks{client: newClient(cfg, defaultTasksBase)}
}

type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Due    string `json:"due,omitempty"`
	Status string `json:"status"`
}

type taskList struct {
	Items []Task `json:"items"`
}

func (t *Tasks) ListTasks(ctx context.Context, accessToken string) ([]Task, error) {
	var list taskList
	if err := t.doJSON(ctx, "GET", "/lists/@default/tasks?showCompleted=false&maxResults=20", accessToken, nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (t *Tasks) AddTask(ctx context.Context, accessToken, title, due string) (Task, error) {
	payload := map[string]string{"title": title}
	if due != "" {
		payload["due"] = due
	}
	var created Task
	if err := t.doJSON(ctx, "POST", "/lists/@default/tasks", accessToken, payload, &created); err != nil {
		return Task{}, err
	}
	return created, nil
}

func (t *Tasks) CompleteTask(ctx context.Context, accessToken, taskID string) (Task, error) {
	payload := map[string]string{"status": "completed"}
	var updated Task
	if err := t.doJSON(ctx, "PATCH", "/lists/@default/tasks/"+url.PathEscape(taskID), accessToken, payload, &updated); err != nil {
		return Task{}, err
	}
	return updated, nil
}
