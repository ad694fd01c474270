package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/caseplan/internal/domain"
	"github.com/gosuda/caseplan/internal/store/csvfile"
)

func TestRepository(t *testing.T) {
	t.Parallel()

	sample := func() []*domain.Task {
		parent := &domain.Task{
			CaseID:  "Alpha_DE_001",
			Project: "Alpha",
			Nature:  domain.NatureDevelopment,
			Name:    "rollout",
			Start:   domain.NewDate(2024, time.March, 4),
			End:     domain.NewDate(2024, time.March, 8),
			Weight:  "5d",
		}
		child := &domain.Task{
			CaseID:           "Alpha_DE_002",
			Project:          "Alpha",
			Nature:           domain.NatureDevelopment,
			Name:             "site survey, phase 1", // comma exercises quoting
			ParentCaseID:     "Alpha_DE_001",
			Ref:              "PO-1234",
			DependencyCaseID: "Alpha_DE_001",
			Start:            domain.NewDate(2024, time.March, 4),
			Progress:         9,
		}
		child.Steps[0] = true
		return []*domain.Task{parent, child}
	}

	t.Run("save_load_round_trip", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tasks.csv")
		repo := csvfile.New(path)
		ctx := context.Background()

		require.NoError(t, repo.Save(ctx, sample()))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sample(), loaded)
	})

	t.Run("missing_file_loads_empty", func(t *testing.T) {
		t.Parallel()

		repo := csvfile.New(filepath.Join(t.TempDir(), "absent.csv"))
		loaded, err := repo.Load(context.Background())
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("wire_format_matches_reference_layout", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tasks.csv")
		repo := csvfile.New(path)
		require.NoError(t, repo.Save(context.Background(), sample()))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		require.Len(t, lines, 3)

		assert.Equal(t,
			"Case #,Project,Nature,Task Name,Parent Case,Ref#,Dependency,Start Date,End Date,Weight,Progress,"+
				"1_NI,2_PI,3_PR,4_PO,5_Shipping,6_DC,7_BRD,8_DEV,9_UAT,10_Sig_off,11_Delivered",
			lines[0])
		assert.Contains(t, lines[1], "2024-03-04,2024-03-08,5d,0,No")
		assert.Contains(t, lines[2], ",Yes,No", "checked step serializes as Yes")
		assert.Contains(t, lines[2], "2024-03-04,,", "sentinel end date serializes empty")
	})

	t.Run("unscheduled_dates_round_trip_as_sentinel", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tasks.csv")
		repo := csvfile.New(path)
		ctx := context.Background()
		require.NoError(t, repo.Save(ctx, []*domain.Task{{CaseID: "X_PA_001"}}))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.True(t, loaded[0].Start.IsZero())
		assert.True(t, loaded[0].End.IsZero())
	})

	t.Run("malformed_date_is_an_error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "tasks.csv")
		row := "X_PA_001,X,PA_Project-Assessment,bad,,,,03/04/2024,,,0" + strings.Repeat(",No", 11)
		content := "Case #,Project,Nature,Task Name,Parent Case,Ref#,Dependency,Start Date,End Date,Weight,Progress," +
			"1_NI,2_PI,3_PR,4_PO,5_Shipping,6_DC,7_BRD,8_DEV,9_UAT,10_Sig_off,11_Delivered\n" + row + "\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := csvfile.New(path).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("save_overwrites_atomically", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "tasks.csv")
		repo := csvfile.New(path)
		ctx := context.Background()

		require.NoError(t, repo.Save(ctx, sample()))
		require.NoError(t, repo.Save(ctx, nil))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, loaded)

		// No temp files left behind.
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "tasks.csv", entries[0].Name())
	})
}
