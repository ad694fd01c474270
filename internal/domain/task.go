package domain

import (
	"context"

	"github.com/google/uuid"
)

// Nature classifies what kind of work a case tracks. The first two characters
// feed into the generated case identifier prefix.
type Nature string

const (
	NatureNone        Nature = ""
	NatureAssessment  Nature = "PA_Project-Assessment"
	NatureProcurement Nature = "OA_Procurement"
	NatureDevelopment Nature = "DEV_Development"
)

// IsValid reports whether n is one of the recognized nature values.
// The empty value is valid: it marks a task whose case cannot be generated yet.
func (n Nature) IsValid() bool {
	switch n {
	case NatureNone, NatureAssessment, NatureProcurement, NatureDevelopment:
		return true
	default:
		return false
	}
}

// NumSteps is the number of milestone checkpoints every task carries.
const NumSteps = 11

// StepLabels names the milestones in serialized order.
var StepLabels = [NumSteps]string{
	"1_NI", "2_PI", "3_PR", "4_PO", "5_Shipping",
	"6_DC", "7_BRD", "8_DEV", "9_UAT", "10_Sig_off", "11_Delivered",
}

// Task is one row of the plan. The record ID identifies it from creation;
// the case identifier is assigned later, once project and nature are known,
// and is the key the forest and dependency indices use.
type Task struct {
	ID               uuid.UUID
	CaseID           string
	Project          string
	Nature           Nature
	Name             string
	ParentCaseID     string
	Ref              string
	DependencyCaseID string
	Start            Date
	End              Date // zero = unscheduled
	Weight           string
	Steps            [NumSteps]bool
	Progress         int
}

// ComputeProgress recalculates the percent-complete field from the steps,
// truncating to an integer.
func (t *Task) ComputeProgress() {
	checked := 0
	for _, done := range t.Steps {
		if done {
			checked++
		}
	}
	t.Progress = checked * 100 / NumSteps
}

// Overdue reports whether t has a scheduled end date on or before today.
func (t *Task) Overdue(today Date) bool {
	return !t.End.IsZero() && !t.End.After(today)
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// SnapshotRepository persists the full ordered task list as one unit.
// Load and Save bracket the in-memory state; they are never interleaved
// with recomputation.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]*Task, error)
	Save(ctx context.Context, tasks []*Task) error
}
