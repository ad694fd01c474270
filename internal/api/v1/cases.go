package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/caseplan/internal/api/ws"
)

type ListCasesOutput struct {
	Body []string
}

type GetCaseInput struct {
	CaseID string `path:"caseID" doc:"Case identifier"`
}

type CreateSubtaskInput struct {
	CaseID string `path:"caseID" doc:"Parent case identifier"`
}

// RegisterCaseRoutes wires case-identifier lookups and subtask creation.
// The case list doubles as the selectable dependency target list and must
// be re-fetched after any edit that changes the set of identifiers.
func RegisterCaseRoutes(api huma.API, plan Planner, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "list-cases",
		Method:      http.MethodGet,
		Path:        "/cases",
		Summary:     "List assigned case identifiers in row order",
		Tags:        []string{"Cases"},
	}, func(_ context.Context, _ *struct{}) (*ListCasesOutput, error) {
		return &ListCasesOutput{Body: plan.Cases()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-case",
		Method:      http.MethodGet,
		Path:        "/cases/{caseID}",
		Summary:     "Look up a task by case identifier",
		Tags:        []string{"Cases"},
	}, func(_ context.Context, input *GetCaseInput) (*TaskOutput, error) {
		t, err := plan.FindByCase(input.CaseID)
		if err != nil {
			return nil, mapStoreError(err, "case")
		}
		return &TaskOutput{Body: toTask(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-subtask",
		Method:      http.MethodPost,
		Path:        "/cases/{caseID}/subtasks",
		Summary:     "Add a subtask under a case",
		Description: "The subtask copies the parent's project and nature and is assigned its own case identifier at once.",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CreateSubtaskInput) (*TaskOutput, error) {
		t, err := plan.CreateSubtask(input.CaseID)
		if err != nil {
			return nil, mapStoreError(err, "case")
		}

		if events != nil {
			events.Publish(ctx, ws.ChangeEvent{Action: "created", ID: t.ID, CaseID: t.CaseID})
		}
		return &TaskOutput{Body: toTask(t)}, nil
	})
}
