package actions

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dwizi/friday/internal/googleapi"
)

type TasksExecutor struct {
	tasks *googleapi.Tasks
}

func NewTasksExecutor(tasks *googleapi.Tasks) *TasksExecutor {
	return &TasksExecutor{tasks: tasks}
}

func (e *TasksExecutor) Name() string { return "tasks_tool" }

func (e *TasksExecutor) Description() string {
	return "List open tasks, add a task, or mark a task completed."
}

func (e *TasksExecutor) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "OBJECT",
		"properties": {
			"action": {"type": "STRING", "enum": ["list", "create", "complete"]},
			"title": {"type": "STRING"},
			"due": {"type": "STRING", "description": "ISO instant the task is due"},
			"taskId": {"type": "STRING", "description": "Task id when completing"}
		},
		"required": ["action"]
	}`)
}

type tasksArgs struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Due    string `json:"due"`
	TaskID string `json:"taskId"`
}

func (e *TasksExecutor) Execute(ctx context.Context, inv Invocation, args json.RawMessage) Result {
	var parsed tasksArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return failure(e.Name(), ReasonInvalidArguments)
	}

	switch strings.TrimSpace(parsed.Action) {
	case "list":
		items, err := e.tasks.ListTasks(ctx, inv.AccessToken)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"tasks": items})
	case "create":
		if strings.TrimSpace(parsed.Title) == "" {
			return failure(e.Name(), ReasonInvalidArguments)
		}
		created, err := e.tasks.AddTask(ctx, inv.AccessToken, parsed.Title, parsed.Due)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"task": created})
	case "complete":
		if strings.TrimSpace(parsed.TaskID) == "" {
			return failure(e.Name(), ReasonInvalidArguments)
		}
		updated, err := e.tasks.CompleteTask(ctx, inv.AccessToken, parsed.TaskID)
		if err != nil {
			return failure(e.Name(), providerReason(err))
		}
		return success(e.Name(), map[string]any{"task": updated})
	default:
		return failure(e.Name(), ReasonInvalidArguments)
	}
}
