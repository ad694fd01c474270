package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/domain"
)

// Task is the wire representation of a task. Dates are YYYY-MM-DD strings,
// with "" for the unscheduled sentinel, matching the snapshot file format.
type Task struct {
	ID           uuid.UUID `json:"id" doc:"Record ID"`
	CaseID       string    `json:"case_id" doc:"Generated case identifier, empty until assigned"`
	Project      string    `json:"project" doc:"Project name"`
	Nature       string    `json:"nature" doc:"Nature code"`
	Name         string    `json:"name" doc:"Task name"`
	ParentCaseID string    `json:"parent_case" doc:"Parent case identifier, empty for root tasks"`
	Ref          string    `json:"ref" doc:"Free-text reference"`
	Dependency   string    `json:"dependency" doc:"Dependency target case identifier"`
	StartDate    string    `json:"start_date" doc:"Start date (YYYY-MM-DD)"`
	EndDate      string    `json:"end_date" doc:"End date (YYYY-MM-DD), empty when unscheduled"`
	Weight       string    `json:"weight" doc:"Normalized duration expression"`
	Progress     int       `json:"progress" doc:"Percent of milestones complete"`
	Steps        []bool    `json:"steps" doc:"Milestone completion flags, serialized order"`
}

func toTask(t *domain.Task) *Task {
	return &Task{
		ID:           t.ID,
		CaseID:       t.CaseID,
		Project:      t.Project,
		Nature:       string(t.Nature),
		Name:         t.Name,
		ParentCaseID: t.ParentCaseID,
		Ref:          t.Ref,
		Dependency:   t.DependencyCaseID,
		StartDate:    t.Start.String(),
		EndDate:      t.End.String(),
		Weight:       t.Weight,
		Progress:     t.Progress,
		Steps:        t.Steps[:],
	}
}

func toTasks(tasks []*domain.Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTask(t))
	}
	return out
}

// parseDate maps a payload date string to a domain date or a 400.
func parseDate(field, value string) (domain.Date, error) {
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, huma.Error400BadRequest(field + " must be YYYY-MM-DD or empty")
	}
	return d, nil
}

// mapStoreError translates domain sentinels into HTTP problem responses.
func mapStoreError(err error, what string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(what + " not found")
	case errors.Is(err, domain.ErrNoParent):
		return huma.Error404NotFound("parent case not found")
	case errors.Is(err, domain.ErrBadNature):
		return huma.Error400BadRequest("unknown nature value")
	case errors.Is(err, domain.ErrDerived):
		return huma.Error409Conflict("field is derived from subtasks")
	case errors.Is(err, domain.ErrConfirmRequired):
		return huma.Error409Conflict("task has subtasks; deletion requires confirmed=true")
	case errors.Is(err, domain.ErrNoCase):
		return huma.Error409Conflict("task has no case identifier")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("conflicting state")
	case errors.Is(err, board.ErrStepIndex):
		return huma.Error400BadRequest("step index out of range")
	default:
		return huma.Error500InternalServerError("unexpected store error", err)
	}
}
