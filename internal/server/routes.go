package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/caseplan/internal/api/v1"
	"github.com/gosuda/caseplan/internal/api/ws"
	"github.com/gosuda/caseplan/internal/board"
	"github.com/gosuda/caseplan/internal/domain"
	"github.com/gosuda/caseplan/internal/notify"
)

func registerAPIRoutes(api huma.API, plan *board.Store, repo domain.SnapshotRepository, events v1.EventPublisher) {
	v1.RegisterTaskRoutes(api, plan, events)
	v1.RegisterCaseRoutes(api, plan, events)
	v1.RegisterSnapshotRoutes(api, plan, repo)
}

func registerNotifyRoutes(api huma.API, plan *board.Store, notifier *notify.Notifier) {
	v1.RegisterNotifyRoutes(api, plan, notifier)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/changes", hub.ServeChanges)
}
