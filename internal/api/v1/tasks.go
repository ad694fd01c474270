package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/domain"
)

type CreateTaskInput struct {
	Body struct {
		Name      string `json:"name,omitempty" maxLength:"500" doc:"Task name"`
		Project   string `json:"project,omitempty" maxLength:"100" doc:"Project name"`
		Nature    string `json:"nature,omitempty" doc:"Nature code"`
		Ref       string `json:"ref,omitempty" doc:"Free-text reference"`
		StartDate string `json:"start_date,omitempty" doc:"Start date (YYYY-MM-DD); defaults to today"`
	}
}

type TaskOutput struct {
	Body *Task
}

type ListTasksOutput struct {
	Body []*Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Record ID"`
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Name    *string `json:"name,omitempty" maxLength:"500" doc:"Task name"`
		Project *string `json:"project,omitempty" maxLength:"100" doc:"Project name"`
		Nature  *string `json:"nature,omitempty" doc:"Nature code"`
		Ref     *string `json:"ref,omitempty" doc:"Free-text reference"`
	}
}

type SetWeightInput struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Weight string `json:"weight" doc:"Duration expression (Nd or Nw); empty unschedules"`
	}
}

type SetDateInput struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Date string `json:"date" doc:"YYYY-MM-DD; empty means unscheduled"`
	}
}

type SetStepInput struct {
	ID    uuid.UUID `path:"id" doc:"Record ID"`
	Index int       `path:"index" minimum:"0" maximum:"10" doc:"Milestone index"`
	Body  struct {
		Done bool `json:"done" doc:"Milestone completion flag"`
	}
}

type SetDependencyInput struct {
	ID   uuid.UUID `path:"id" doc:"Record ID"`
	Body struct {
		Target string `json:"target" doc:"Dependency target case identifier; empty clears"`
	}
}

type DeleteTaskInput struct {
	ID        uuid.UUID `path:"id" doc:"Record ID"`
	Confirmed bool      `query:"confirmed" doc:"Confirm cascading delete of subtasks"`
}

type DeleteTaskOutput struct {
	Body struct {
		Removed int `json:"removed" doc:"Number of tasks deleted"`
	}
}

// RegisterTaskRoutes wires task CRUD and edit operations. Every operation
// is one store mutation or lookup; events may be nil to disable the change
// feed.
func RegisterTaskRoutes(api huma.API, plan Planner, events EventPublisher) {
	publish := func(ctx context.Context, action string, t *domain.Task) {
		if events != nil {
			events.Publish(ctx, ws.ChangeEvent{Action: action, ID: t.ID, CaseID: t.CaseID})
		}
	}

	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a root task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
		start, err := parseDate("start_date", input.Body.StartDate)
		if err != nil {
			return nil, err
		}

		t, err := plan.Create(board.CreateParams{
			Name:    input.Body.Name,
			Project: input.Body.Project,
			Nature:  domain.Nature(input.Body.Nature),
			Ref:     input.Body.Ref,
			Start:   start,
		})
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "created", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List all tasks in row order",
		Tags:        []string{"Tasks"},
	}, func(_ context.Context, _ *struct{}) (*ListTasksOutput, error) {
		return &ListTasksOutput{Body: toTasks(plan.List())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-overdue-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks/overdue",
		Summary:     "List tasks with an end date on or before today",
		Tags:        []string{"Tasks"},
	}, func(_ context.Context, _ *struct{}) (*ListTasksOutput, error) {
		return &ListTasksOutput{Body: toTasks(plan.Overdue())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by record ID",
		Tags:        []string{"Tasks"},
	}, func(_ context.Context, input *GetTaskInput) (*TaskOutput, error) {
		t, err := plan.Get(input.ID)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update descriptive fields",
		Description: "Edits name, project, nature, or ref. While the case identifier is unassigned, each edit re-attempts assignment.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
		params := board.UpdateParams{
			Name:    input.Body.Name,
			Project: input.Body.Project,
			Ref:     input.Body.Ref,
		}
		if input.Body.Nature != nil {
			nature := domain.Nature(*input.Body.Nature)
			params.Nature = &nature
		}

		t, err := plan.Update(input.ID, params)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-weight",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}/weight",
		Summary:     "Edit the weight expression",
		Description: "Re-derives the end date from (start, weight). A malformed expression changes no dates.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetWeightInput) (*TaskOutput, error) {
		t, err := plan.SetWeight(input.ID, input.Body.Weight)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-start",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}/start",
		Summary:     "Edit the start date",
		Description: "Re-derives the end date from the current weight expression.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetDateInput) (*TaskOutput, error) {
		d, err := parseDate("date", input.Body.Date)
		if err != nil {
			return nil, err
		}

		t, err := plan.SetStart(input.ID, d)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-end",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}/end",
		Summary:     "Edit the end date",
		Description: "Re-derives the weight from (start, end). An empty date unschedules the task.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetDateInput) (*TaskOutput, error) {
		d, err := parseDate("date", input.Body.Date)
		if err != nil {
			return nil, err
		}

		t, err := plan.SetEnd(input.ID, d)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-step",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}/steps/{index}",
		Summary:     "Toggle a milestone",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetStepInput) (*TaskOutput, error) {
		t, err := plan.SetStep(input.ID, input.Index, input.Body.Done)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-task-dependency",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}/dependency",
		Summary:     "Select a dependency target",
		Description: "Records the edge and, at selection time only, snaps the start date to the target's end date.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *SetDependencyInput) (*TaskOutput, error) {
		t, err := plan.SetDependency(input.ID, input.Body.Target)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "updated", t)
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Description: "Deleting a task with subtasks requires confirmed=true and removes the whole subtree.",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*DeleteTaskOutput, error) {
		t, err := plan.Get(input.ID)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		removed, err := plan.Delete(input.ID, input.Confirmed)
		if err != nil {
			return nil, mapStoreError(err, "task")
		}

		publish(ctx, "deleted", t)
		out := &DeleteTaskOutput{}
		out.Body.Removed = removed
		return out, nil
	})
}
