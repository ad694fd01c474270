// Package csvfile persists plan snapshots in the tasks.csv layout:
// ten descriptive columns, a progress column, then one Yes/No column per
// milestone. Dates are YYYY-MM-DD with the empty string for "unscheduled".
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gosuda/caseplan/internal/domain"
)

var header = buildHeader()

func buildHeader() []string {
	h := []string{
		"Case #", "Project", "Nature", "Task Name", "Parent Case", "Ref#",
		"Dependency", "Start Date", "End Date", "Weight", "Progress",
	}
	return append(h, domain.StepLabels[:]...)
}

// Repository reads and writes one snapshot file.
type Repository struct {
	path string
}

var _ domain.SnapshotRepository = (*Repository)(nil)

func New(path string) *Repository {
	return &Repository{path: path}
}

// Load reads the full ordered record list. A missing file is an empty plan,
// not an error.
func (r *Repository) Load(_ context.Context) ([]*domain.Task, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvfile.Repository.Load: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("csvfile.Repository.Load: header: %w", err)
	}

	var tasks []*domain.Task
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvfile.Repository.Load: line %d: %w", line, err)
		}
		t, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("csvfile.Repository.Load: line %d: %w", line, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Save writes the full ordered record list atomically: a temp file in the
// same directory, then a rename over the target.
func (r *Repository) Save(_ context.Context, tasks []*domain.Task) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("csvfile.Repository.Save: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("csvfile.Repository.Save: header: %w", err)
	}
	for _, t := range tasks {
		if err := writer.Write(encodeRow(t)); err != nil {
			tmp.Close()
			return fmt.Errorf("csvfile.Repository.Save: case %q: %w", t.CaseID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("csvfile.Repository.Save: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvfile.Repository.Save: close: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("csvfile.Repository.Save: rename: %w", err)
	}
	return nil
}

func encodeRow(t *domain.Task) []string {
	row := []string{
		t.CaseID, t.Project, string(t.Nature), t.Name, t.ParentCaseID,
		t.Ref, t.DependencyCaseID, t.Start.String(), t.End.String(),
		t.Weight, strconv.Itoa(t.Progress),
	}
	for _, done := range t.Steps {
		if done {
			row = append(row, "Yes")
		} else {
			row = append(row, "No")
		}
	}
	return row
}

func decodeRow(row []string) (*domain.Task, error) {
	if len(row) != len(header) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(header), len(row))
	}

	start, err := domain.ParseDate(row[7])
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := domain.ParseDate(row[8])
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	progress := 0
	if row[10] != "" {
		progress, err = strconv.Atoi(row[10])
		if err != nil {
			return nil, fmt.Errorf("progress: %w", err)
		}
	}

	t := &domain.Task{
		CaseID:           row[0],
		Project:          row[1],
		Nature:           domain.Nature(row[2]),
		Name:             row[3],
		ParentCaseID:     row[4],
		Ref:              row[5],
		DependencyCaseID: row[6],
		Start:            start,
		End:              end,
		Weight:           row[9],
		Progress:         progress,
	}
	for i := range t.Steps {
		t.Steps[i] = row[11+i] == "Yes"
	}
	return t, nil
}
