package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/domain"
)

// Planner abstracts the task store for handler testing.
// *board.Store satisfies this interface.
type Planner interface {
	Create(p board.CreateParams) (*domain.Task, error)
	CreateSubtask(parentCase string) (*domain.Task, error)
	Get(id uuid.UUID) (*domain.Task, error)
	FindByCase(caseID string) (*domain.Task, error)
	List() []*domain.Task
	Cases() []string
	Overdue() []*domain.Task
	Update(id uuid.UUID, p board.UpdateParams) (*domain.Task, error)
	SetWeight(id uuid.UUID, expr string) (*domain.Task, error)
	SetStart(id uuid.UUID, d domain.Date) (*domain.Task, error)
	SetEnd(id uuid.UUID, d domain.Date) (*domain.Task, error)
	SetStep(id uuid.UUID, index int, done bool) (*domain.Task, error)
	SetDependency(id uuid.UUID, targetCase string) (*domain.Task, error)
	Delete(id uuid.UUID, confirmed bool) (int, error)
	Snapshot() []*domain.Task
}

// EventPublisher broadcasts change events after successful mutations.
// *ws.Hub satisfies this interface; a nil publisher disables broadcasting.
type EventPublisher interface {
	Publish(ctx context.Context, ev ws.ChangeEvent)
}

// Digester sends the overdue digest through the configured messenger.
// *notify.Notifier satisfies this interface.
type Digester interface {
	SendOverdue(ctx context.Context, tasks []*domain.Task) error
}
