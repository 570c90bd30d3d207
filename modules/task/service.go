package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/example/quicktasks/events"
	"github.com/go-monolith/mono"
)

// toServiceError reports a domain failure in the response. Other errors are
// returned to the caller as service failures.
func toServiceError(err error) (ServiceError, error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ServiceError{ErrorCode: CodeNotFound, ErrorMessage: err.Error()}, nil
	case errors.Is(err, domain.ErrValidation):
		return ServiceError{ErrorCode: CodeValidation, ErrorMessage: err.Error()}, nil
	default:
		return ServiceError{}, err
	}
}

func taskResult(t domain.Task, err error) (TaskResponse, error) {
	if err != nil {
		serr, err := toServiceError(err)
		return TaskResponse{ServiceError: serr}, err
	}
	record := events.NewTaskRecord(t)
	return TaskResponse{Task: &record}, nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := m.LoadPersisted(ctx); err != nil {
		return TaskResponse{}, err
	}
	return taskResult(m.store.Create(req.Fields.ToDomain()))
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := m.LoadPersisted(ctx); err != nil {
		return TaskResponse{}, err
	}
	return taskResult(m.store.ByID(req.TaskID))
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := m.LoadPersisted(ctx); err != nil {
		return TaskResponse{}, err
	}
	return taskResult(m.store.Update(req.TaskID, req.Fields.ToDomain()))
}

// toggleTask handles the toggle-task service request.
func (m *TaskModule) toggleTask(ctx context.Context, req ToggleTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	if err := m.LoadPersisted(ctx); err != nil {
		return TaskResponse{}, err
	}
	return taskResult(m.store.ToggleComplete(req.TaskID))
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.LoadPersisted(ctx); err != nil {
		return DeleteTaskResponse{}, err
	}
	if err := m.store.Delete(req.TaskID); err != nil {
		serr, err := toServiceError(err)
		return DeleteTaskResponse{ServiceError: serr}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

// listTasks handles the list-tasks service request. The filtered view and
// the counts come from the same snapshot.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	var keep func(domain.Task) bool
	switch req.Filter {
	case FilterAll, "":
		keep = func(domain.Task) bool { return true }
	case FilterIncomplete:
		keep = func(t domain.Task) bool { return !t.IsCompleted }
	case FilterCompleted:
		keep = func(t domain.Task) bool { return t.IsCompleted }
	default:
		return ListTasksResponse{ServiceError: ServiceError{
			ErrorCode:    CodeValidation,
			ErrorMessage: fmt.Sprintf("unknown filter %q", req.Filter),
		}}, nil
	}

	if err := m.LoadPersisted(ctx); err != nil {
		return ListTasksResponse{}, err
	}

	all := m.store.List()
	records := make([]events.TaskRecord, 0, len(all))
	completed := 0
	for _, t := range all {
		if t.IsCompleted {
			completed++
		}
		if keep(t) {
			records = append(records, events.NewTaskRecord(t))
		}
	}

	return ListTasksResponse{
		Tasks:      records,
		Total:      len(all),
		Incomplete: len(all) - completed,
		Completed:  completed,
	}, nil
}
