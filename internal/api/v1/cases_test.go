package v1_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseRoutes(t *testing.T) {
	t.Parallel()

	t.Run("case_list_tracks_assignments_and_deletions", func(t *testing.T) {
		t.Parallel()

		api, _, _ := newAPI(t)

		// Unassigned rows never appear in the target list.
		pending := decodeTask(t, api.Post("/tasks", map[string]any{"name": "pending"}))

		resp := api.Get("/cases")
		require.Equal(t, http.StatusOK, resp.Code)
		var cases []string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&cases))
		assert.Empty(t, cases)

		assigned := decodeTask(t, api.Post("/tasks", map[string]any{
			"project": "P", "nature": "DEV_Development",
		}))

		resp = api.Get("/cases")
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&cases))
		assert.Equal(t, []string{assigned.CaseID}, cases)

		require.Equal(t, http.StatusOK, api.Delete("/tasks/"+assigned.ID.String()).Code)
		require.Equal(t, http.StatusOK, api.Delete("/tasks/"+pending.ID.String()).Code)

		resp = api.Get("/cases")
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&cases))
		assert.Empty(t, cases)
	})

	t.Run("get_case", func(t *testing.T) {
		t.Parallel()

		api, _, _ := newAPI(t)
		created := decodeTask(t, api.Post("/tasks", map[string]any{
			"project": "P", "nature": "PA_Project-Assessment",
		}))

		resp := api.Get("/cases/" + created.CaseID)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, created.ID, decodeTask(t, resp).ID)

		resp = api.Get("/cases/P_PA_404")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("create_subtask", func(t *testing.T) {
		t.Parallel()

		api, _, events := newAPI(t)
		parent := decodeTask(t, api.Post("/tasks", map[string]any{
			"project": "P", "nature": "DEV_Development",
		}))

		resp := api.Post("/cases/" + parent.CaseID + "/subtasks")
		require.Equal(t, http.StatusOK, resp.Code)
		child := decodeTask(t, resp)
		assert.Equal(t, parent.CaseID, child.ParentCaseID)
		assert.Equal(t, "P", child.Project)
		assert.Equal(t, "P_DE_002", child.CaseID)
		assert.Equal(t, []string{"created", "created"}, events.actions())
	})

	t.Run("subtask_under_unknown_case_404", func(t *testing.T) {
		t.Parallel()

		api, _, _ := newAPI(t)
		resp := api.Post("/cases/P_DE_404/subtasks")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
