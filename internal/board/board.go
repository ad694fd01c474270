// Package board owns the in-memory plan: an arena of task records with a
// case index, forest adjacency maps, and a dependency index. Every external
// edit enters through a Store method, runs the calendar and rollup
// arithmetic from internal/domain to completion, and leaves the plan
// consistent before the next edit is accepted.
package board

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/caseplan/internal/domain"
)

// Store is the single mutable plan structure. A mutex serializes mutations
// so concurrent HTTP handlers behave as one logical edit dispatcher.
type Store struct {
	mu    sync.Mutex
	clock domain.Clock
	seq   *domain.CaseSequence

	byID     map[uuid.UUID]*domain.Task
	byCase   map[string]uuid.UUID
	children map[string][]string // parent case -> ordered child cases
	parents  map[string]string   // child case -> parent case
	deps     map[string]string   // dependent case -> target case
	order    []uuid.UUID         // row order
}

// New creates an empty Store.
func New(clock domain.Clock) *Store {
	return &Store{
		clock:    clock,
		seq:      domain.NewCaseSequence(),
		byID:     make(map[uuid.UUID]*domain.Task),
		byCase:   make(map[string]uuid.UUID),
		children: make(map[string][]string),
		parents:  make(map[string]string),
		deps:     make(map[string]string),
	}
}

// Get returns a copy of the task with the given record ID.
func (s *Store) Get(id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t.Clone(), nil
}

// FindByCase returns a copy of the task holding the given case identifier.
// Constant time: the case index is a map, never a scan.
func (s *Store) FindByCase(caseID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.byCaseLocked(caseID)
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t.Clone(), nil
}

// List returns copies of all tasks in row order.
func (s *Store) List() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Cases returns the assigned case identifiers in row order. This is the
// selectable dependency target list and must be re-read after any edit
// that creates, assigns, or deletes an identifier.
func (s *Store) Cases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases := make([]string, 0, len(s.byCase))
	for _, id := range s.order {
		if c := s.byID[id].CaseID; c != "" {
			cases = append(cases, c)
		}
	}
	return cases
}

// Overdue returns copies of the tasks whose end date is on or before today.
func (s *Store) Overdue() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock.Today()
	var out []*domain.Task
	for _, id := range s.order {
		if t := s.byID[id]; t.Overdue(today) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Snapshot returns a deep copy of all records in row order, for the
// persistence adapter.
func (s *Store) Snapshot() []*domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Restore atomically replaces the plan with the given ordered records.
// Everything derived is rebuilt: indices, normalized weights, progress,
// parent rollups, and the case counters are seeded past every loaded
// identifier. A record set with a duplicate case identifier is rejected
// whole and the prior state is kept.
func (s *Store) Restore(records []*domain.Task) error {
	next := New(s.clock)

	for _, rec := range records {
		t := rec.Clone()
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if _, dup := next.byID[t.ID]; dup {
			return fmt.Errorf("board.Store.Restore: record id %s: %w", t.ID, domain.ErrConflict)
		}
		if t.CaseID != "" {
			if _, dup := next.byCase[t.CaseID]; dup {
				return fmt.Errorf("board.Store.Restore: case %q: %w", t.CaseID, domain.ErrConflict)
			}
			next.byCase[t.CaseID] = t.ID
			next.seq.Seed(t.CaseID)
		}
		next.byID[t.ID] = t
		next.order = append(next.order, t.ID)
	}

	// Forest and dependency indices are keyed by case, so unassigned rows
	// and references to unknown parents stay out of the forest.
	for _, id := range next.order {
		t := next.byID[id]
		if t.CaseID == "" {
			continue
		}
		if p := t.ParentCaseID; p != "" {
			if _, ok := next.byCase[p]; ok {
				next.parents[t.CaseID] = p
				next.children[p] = append(next.children[p], t.CaseID)
			}
		}
		if d := t.DependencyCaseID; d != "" {
			next.deps[t.CaseID] = d
		}
	}

	// Derived fields are never trusted from the wire.
	for _, id := range next.order {
		t := next.byID[id]
		t.Weight = domain.EndToWeight(t.Start, t.End)
		t.ComputeProgress()
	}
	for _, parentCase := range next.parentsBottomUp() {
		next.recompute(parentCase)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = next.seq
	s.byID = next.byID
	s.byCase = next.byCase
	s.children = next.children
	s.parents = next.parents
	s.deps = next.deps
	s.order = next.order
	return nil
}

// ---------------------------------------------------------------------------
// internals (callers hold s.mu, except during Restore's rebuild)
// ---------------------------------------------------------------------------

func (s *Store) byCaseLocked(caseID string) *domain.Task {
	if caseID == "" {
		return nil
	}
	id, ok := s.byCase[caseID]
	if !ok {
		return nil
	}
	return s.byID[id]
}

func (s *Store) snapshotLocked() []*domain.Task {
	out := make([]*domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

func (s *Store) hasChildren(caseID string) bool {
	return caseID != "" && len(s.children[caseID]) > 0
}

// recompute re-derives one parent's aggregate state from its children.
func (s *Store) recompute(parentCase string) {
	parent := s.byCaseLocked(parentCase)
	if parent == nil {
		return
	}
	kids := make([]*domain.Task, 0, len(s.children[parentCase]))
	for _, c := range s.children[parentCase] {
		if child := s.byCaseLocked(c); child != nil {
			kids = append(kids, child)
		}
	}
	domain.RollupInto(parent, kids)
}

// recomputeUp re-rolls caseID and every ancestor above it, to the root.
func (s *Store) recomputeUp(caseID string) {
	for cur := caseID; cur != ""; cur = s.parents[cur] {
		s.recompute(cur)
	}
}

// rollupParents re-rolls the ancestor chain of a just-edited task.
func (s *Store) rollupParents(caseID string) {
	if caseID == "" {
		return
	}
	s.recomputeUp(s.parents[caseID])
}

// parentsBottomUp lists every case with children, deepest first, so each
// parent is recomputed only after all of its descendant parents.
func (s *Store) parentsBottomUp() []string {
	depth := func(caseID string) int {
		d := 0
		for cur := s.parents[caseID]; cur != ""; cur = s.parents[cur] {
			d++
		}
		return d
	}

	cases := make([]string, 0, len(s.children))
	for c := range s.children {
		if len(s.children[c]) > 0 {
			cases = append(cases, c)
		}
	}
	sort.SliceStable(cases, func(i, j int) bool {
		return depth(cases[i]) > depth(cases[j])
	})
	return cases
}
