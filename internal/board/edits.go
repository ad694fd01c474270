package board

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gosuda/caseplan/internal/domain"
)

// ErrStepIndex is returned when a milestone index is out of range.
var ErrStepIndex = errors.New("board: step index out of range")

// CreateParams are the caller-supplied fields of a new root task.
type CreateParams struct {
	Name    string
	Project string
	Nature  domain.Nature
	Ref     string
	Start   domain.Date // zero means today
}

// Create adds a new root task to the plan. The case identifier is assigned
// immediately when both project and nature are set; otherwise the row waits
// unassigned, outside the forest and the dependency target list.
func (s *Store) Create(p CreateParams) (*domain.Task, error) {
	if !p.Nature.IsValid() {
		return nil, domain.ErrBadNature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &domain.Task{
		ID:      uuid.New(),
		Name:    p.Name,
		Project: p.Project,
		Nature:  p.Nature,
		Ref:     p.Ref,
		Start:   p.Start,
	}
	if t.Start.IsZero() {
		t.Start = s.clock.Today()
	}

	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	s.tryAssign(t)
	return t.Clone(), nil
}

// CreateSubtask adds a child under an existing case. The child copies the
// parent's project and nature, is assigned its own case at once, and is
// inserted into row order directly after the parent. A subtask that cannot
// be linked is an error, never a detached row.
func (s *Store) CreateSubtask(parentCase string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.byCaseLocked(parentCase)
	if parent == nil {
		return nil, domain.ErrNoParent
	}
	if parent.Project == "" || parent.Nature == domain.NatureNone {
		return nil, domain.ErrNoCase
	}

	t := &domain.Task{
		ID:           uuid.New(),
		Project:      parent.Project,
		Nature:       parent.Nature,
		ParentCaseID: parent.CaseID,
		Start:        s.clock.Today(),
	}

	s.byID[t.ID] = t
	s.insertAfter(parent.ID, t.ID)
	s.tryAssign(t)
	if t.CaseID == "" {
		// Cannot happen with a non-empty project and nature; keep the
		// invariant explicit rather than leaving an unlinked row behind.
		delete(s.byID, t.ID)
		s.removeFromOrder(t.ID)
		return nil, domain.ErrNoCase
	}

	s.recomputeUp(parent.CaseID)
	return t.Clone(), nil
}

// UpdateParams carries optional descriptive-field edits; nil means unchanged.
type UpdateParams struct {
	Name    *string
	Project *string
	Nature  *domain.Nature
	Ref     *string
}

// Update edits a task's descriptive fields. Project and nature edits never
// rewrite an already-assigned case identifier, but while the case is still
// empty each edit re-attempts assignment.
func (s *Store) Update(id uuid.UUID, p UpdateParams) (*domain.Task, error) {
	if p.Nature != nil && !p.Nature.IsValid() {
		return nil, domain.ErrBadNature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Project != nil {
		t.Project = *p.Project
	}
	if p.Nature != nil {
		t.Nature = *p.Nature
	}
	if p.Ref != nil {
		t.Ref = *p.Ref
	}
	s.tryAssign(t)
	return t.Clone(), nil
}

// SetWeight applies a weight-expression edit: the end date is re-derived
// from (start, weight), then the cached weight is normalized back from the
// dates. A malformed expression changes no dates. Parents are re-rolled.
func (s *Store) SetWeight(id uuid.UUID, expr string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.editable(id)
	if err != nil {
		return nil, err
	}

	if end, ok := domain.WeightToEnd(t.Start, expr); ok {
		t.End = end
	}
	t.Weight = domain.EndToWeight(t.Start, t.End)
	s.rollupParents(t.CaseID)
	return t.Clone(), nil
}

// SetStart applies a start-date edit: the end date is re-derived from the
// new start and the current weight expression (an empty weight keeps the
// task unscheduled), then the weight is normalized. Parents are re-rolled.
func (s *Store) SetStart(id uuid.UUID, d domain.Date) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.editable(id)
	if err != nil {
		return nil, err
	}

	t.Start = d
	if end, ok := domain.WeightToEnd(t.Start, t.Weight); ok {
		t.End = end
	}
	t.Weight = domain.EndToWeight(t.Start, t.End)
	s.rollupParents(t.CaseID)
	return t.Clone(), nil
}

// SetEnd applies an end-date edit: the weight is re-derived from
// (start, end). Only this direction runs; the end date is taken as given.
// The zero date unschedules the task. Parents are re-rolled.
func (s *Store) SetEnd(id uuid.UUID, d domain.Date) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.editable(id)
	if err != nil {
		return nil, err
	}

	t.End = d
	t.Weight = domain.EndToWeight(t.Start, t.End)
	s.rollupParents(t.CaseID)
	return t.Clone(), nil
}

// SetStep toggles one milestone on a childless task and recomputes its
// progress. Parents are re-rolled.
func (s *Store) SetStep(id uuid.UUID, index int, done bool) (*domain.Task, error) {
	if index < 0 || index >= domain.NumSteps {
		return nil, fmt.Errorf("%w: %d", ErrStepIndex, index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.editable(id)
	if err != nil {
		return nil, err
	}

	t.Steps[index] = done
	t.ComputeProgress()
	s.rollupParents(t.CaseID)
	return t.Clone(), nil
}

// SetDependency records a dependency edge (or clears it with an empty
// target). When the target exists with a scheduled end date and the
// dependent is childless, the dependent's start date snaps to the target's
// end at selection time; the edge is kept either way, dangling targets
// included. A later change to the target never re-triggers the shift.
func (s *Store) SetDependency(id uuid.UUID, targetCase string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	t.DependencyCaseID = targetCase
	if t.CaseID != "" {
		if targetCase == "" {
			delete(s.deps, t.CaseID)
		} else {
			s.deps[t.CaseID] = targetCase
		}
	}

	if !s.hasChildren(t.CaseID) {
		domain.ReanchorStart(t, s.byCaseLocked(targetCase))
		s.rollupParents(t.CaseID)
	}
	return t.Clone(), nil
}

// Delete removes a task. A row with no case identifier is simply dropped.
// A task with children is only deleted when confirmed, and then takes every
// descendant with it; declining leaves the plan untouched. Every forest and
// dependency index entry keyed by a removed case is cleared, but dependency
// references other tasks hold toward the deleted cases are left dangling;
// resolution already treats them as no-ops. Returns the number of tasks
// removed.
func (s *Store) Delete(id uuid.UUID, confirmed bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}

	if t.CaseID == "" {
		delete(s.byID, id)
		s.removeFromOrder(id)
		return 1, nil
	}

	if s.hasChildren(t.CaseID) && !confirmed {
		return 0, domain.ErrConfirmRequired
	}

	parentCase := s.parents[t.CaseID]
	if parentCase != "" {
		s.children[parentCase] = removeString(s.children[parentCase], t.CaseID)
	}
	removed := s.removeCase(t.CaseID)
	if parentCase != "" {
		s.recomputeUp(parentCase)
	}
	return removed, nil
}

// ---------------------------------------------------------------------------
// internals
// ---------------------------------------------------------------------------

// editable fetches a task for a date/weight/step edit. Tasks with children
// have those fields derived from their subtasks and reject direct edits.
func (s *Store) editable(id uuid.UUID) (*domain.Task, error) {
	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.hasChildren(t.CaseID) {
		return nil, domain.ErrDerived
	}
	return t, nil
}

// tryAssign gives t a case identifier once project and nature are known.
// Idempotent: an assigned case is never rewritten. On success the task is
// registered in the case index and, when it names a known parent, in the
// forest.
func (s *Store) tryAssign(t *domain.Task) {
	if t.CaseID != "" {
		return
	}
	caseID, ok := s.seq.Next(t.Project, t.Nature)
	if !ok {
		return
	}
	t.CaseID = caseID
	s.byCase[caseID] = t.ID

	if p := t.ParentCaseID; p != "" {
		if _, known := s.byCase[p]; known {
			s.parents[caseID] = p
			s.children[p] = append(s.children[p], caseID)
		}
	}
}

// removeCase deletes the subtree rooted at caseID, children first, and
// clears every index entry keyed by the removed cases.
func (s *Store) removeCase(caseID string) int {
	removed := 0
	for _, child := range append([]string(nil), s.children[caseID]...) {
		removed += s.removeCase(child)
	}

	if id, ok := s.byCase[caseID]; ok {
		delete(s.byID, id)
		s.removeFromOrder(id)
		removed++
	}
	delete(s.byCase, caseID)
	delete(s.children, caseID)
	delete(s.parents, caseID)
	delete(s.deps, caseID)
	return removed
}

func (s *Store) insertAfter(after, id uuid.UUID) {
	for i, existing := range s.order {
		if existing == after {
			s.order = append(s.order, uuid.Nil)
			copy(s.order[i+2:], s.order[i+1:])
			s.order[i+1] = id
			return
		}
	}
	s.order = append(s.order, id)
}

func (s *Store) removeFromOrder(id uuid.UUID) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
