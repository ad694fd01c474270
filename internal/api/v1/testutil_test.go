package v1_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/caseplan/internal/api/v1"
	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/domain"
)

// 2024-03-04 is a Monday.
var monday = domain.NewDate(2024, time.March, 4)

type fixedClock struct{ today domain.Date }

func (c fixedClock) Today() domain.Date { return c.today }

// ---------------------------------------------------------------------------
// Event recorder — stands in for *ws.Hub
// ---------------------------------------------------------------------------

type eventRecorder struct {
	mu     sync.Mutex
	events []ws.ChangeEvent
}

func (r *eventRecorder) Publish(_ context.Context, ev ws.ChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

// ---------------------------------------------------------------------------
// Harness — handlers run against a real in-memory board
// ---------------------------------------------------------------------------

func newAPI(t *testing.T) (humatest.TestAPI, *board.Store, *eventRecorder) {
	t.Helper()

	_, api := humatest.New(t)
	store := board.New(fixedClock{today: monday})
	events := &eventRecorder{}
	v1.RegisterTaskRoutes(api, store, events)
	v1.RegisterCaseRoutes(api, store, events)
	return api, store, events
}

func decodeTask(t *testing.T, resp *httptest.ResponseRecorder) v1.Task {
	t.Helper()

	var task v1.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	return task
}
