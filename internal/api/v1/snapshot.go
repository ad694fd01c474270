package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/caseplan/internal/domain"
)

type SaveSnapshotOutput struct {
	Body struct {
		Saved int `json:"saved" doc:"Number of task records written"`
	}
}

type NotifyOverdueOutput struct {
	Body struct {
		Notified int `json:"notified" doc:"Number of overdue tasks in the digest"`
	}
}

// RegisterSnapshotRoutes wires explicit persistence. Saving writes the full
// ordered plan through the adapter in one call.
func RegisterSnapshotRoutes(api huma.API, plan Planner, repo domain.SnapshotRepository) {
	huma.Register(api, huma.Operation{
		OperationID: "save-snapshot",
		Method:      http.MethodPost,
		Path:        "/snapshot/save",
		Summary:     "Persist the current plan",
		Tags:        []string{"Snapshot"},
	}, func(ctx context.Context, _ *struct{}) (*SaveSnapshotOutput, error) {
		tasks := plan.Snapshot()
		if err := repo.Save(ctx, tasks); err != nil {
			log.Error().Err(err).Msg("snapshot save")
			return nil, huma.Error500InternalServerError("failed to save snapshot", err)
		}

		out := &SaveSnapshotOutput{}
		out.Body.Saved = len(tasks)
		return out, nil
	})
}

// RegisterNotifyRoutes wires the on-demand overdue digest.
func RegisterNotifyRoutes(api huma.API, plan Planner, digest Digester) {
	huma.Register(api, huma.Operation{
		OperationID: "notify-overdue",
		Method:      http.MethodPost,
		Path:        "/notify/overdue",
		Summary:     "Send the overdue digest",
		Tags:        []string{"Notify"},
	}, func(ctx context.Context, _ *struct{}) (*NotifyOverdueOutput, error) {
		overdue := plan.Overdue()
		if err := digest.SendOverdue(ctx, overdue); err != nil {
			log.Error().Err(err).Msg("overdue digest")
			return nil, huma.Error500InternalServerError("failed to send digest", err)
		}

		out := &NotifyOverdueOutput{}
		out.Body.Notified = len(overdue)
		return out, nil
	})
}
