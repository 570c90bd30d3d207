package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// remoteError is a domain failure reported by the task module.
type remoteError struct {
	message string
	err     error
}

func (e *remoteError) Error() string { return e.message }
func (e *remoteError) Unwrap() error { return e.err }

// Err converts the reported code back into a domain error.
func (e ServiceError) Err() error {
	switch e.ErrorCode {
	case "":
		return nil
	case CodeNotFound:
		return &remoteError{message: e.ErrorMessage, err: domain.ErrNotFound}
	case CodeValidation:
		return &remoteError{message: e.ErrorMessage, err: domain.ErrValidation}
	default:
		return fmt.Errorf("%s: %s", e.ErrorCode, e.ErrorMessage)
	}
}

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// unwrapTask turns a single-task response into a domain task or error.
func unwrapTask(resp *TaskResponse) (domain.Task, error) {
	if err := resp.Err(); err != nil {
		return domain.Task{}, err
	}
	if resp.Task == nil {
		return domain.Task{}, fmt.Errorf("empty task response")
	}
	return resp.Task.ToTask(), nil
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, fields domain.Fields) (domain.Task, error) {
	req := CreateTaskRequest{Fields: NewTaskFields(fields)}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"create-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("create-task service call failed: %w", err)
	}
	return unwrapTask(&resp)
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID int) (domain.Task, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"get-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("get-task service call failed: %w", err)
	}
	return unwrapTask(&resp)
}

// UpdateTask edits a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, taskID int, fields domain.Fields) (domain.Task, error) {
	req := UpdateTaskRequest{TaskID: taskID, Fields: NewTaskFields(fields)}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"update-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("update-task service call failed: %w", err)
	}
	return unwrapTask(&resp)
}

// ToggleTask flips completion via the toggle-task service.
func (a *taskAdapter) ToggleTask(ctx context.Context, taskID int) (domain.Task, error) {
	req := ToggleTaskRequest{TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"toggle-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return domain.Task{}, fmt.Errorf("toggle-task service call failed: %w", err)
	}
	return unwrapTask(&resp)
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID int) error {
	req := DeleteTaskRequest{TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"delete-task",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", taskID)
	}
	return nil
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, filter Filter) (*TaskList, error) {
	req := ListTasksRequest{Filter: filter}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-tasks",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	list := &TaskList{
		Tasks:      make([]domain.Task, 0, len(resp.Tasks)),
		Total:      resp.Total,
		Incomplete: resp.Incomplete,
		Completed:  resp.Completed,
	}
	for _, r := range resp.Tasks {
		list.Tasks = append(list.Tasks, r.ToTask())
	}
	return list, nil
}
