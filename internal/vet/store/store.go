// SPDX-License-Identifier: Apache-2.0

// Package store persists accepted plans and finished run records as plain
// YAML files under the data directory. Records are only ever committed
// whole; there is no partial write of a plan and no rollback of a run.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/core/models"
)

// ErrNotFound is returned when a plan or run does not exist in the store.
var ErrNotFound = errors.New("record not found")

const (
	plansDir = "plans"
	runsDir  = "runs"
)

// RunRecord is the persisted unit for one run: its summary, the full
// ordered result list and the failure records extracted from it.
type RunRecord struct {
	Summary  models.RunSummary        `yaml:"summary" json:"summary"`
	Results  []models.ExecutionResult `yaml:"results" json:"results"`
	Failures []models.FailureRecord   `yaml:"failures" json:"failures"`
}

// Store reads and writes plan and run records under a data directory.
type Store struct {
	dataDir string
}

// New creates a store rooted at dataDir, creating the layout if needed.
func New(dataDir string) (*Store, error) {
	for _, sub := range []string{plansDir, runsDir} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("error creating store directory: %w", err)
		}
	}
	return &Store{dataDir: dataDir}, nil
}

// SavePlan persists an accepted plan keyed by its content hash.
func (s *Store) SavePlan(plan *models.Plan) error {
	if plan.Hash == "" {
		return fmt.Errorf("refusing to save plan without content hash")
	}
	path := s.planPath(plan.Hash)
	if err := format.WriteFile(path, plan); err != nil {
		return fmt.Errorf("error writing plan %s: %w", plan.Hash, err)
	}
	return nil
}

// GetPlan loads a plan by content hash.
func (s *Store) GetPlan(hash string) (*models.Plan, error) {
	var plan models.Plan
	if err := format.ParseFile(s.planPath(hash), &plan); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading plan %s: %w", hash, err)
	}
	return &plan, nil
}

// HasPlan reports whether a plan with this content hash is already stored.
func (s *Store) HasPlan(hash string) bool {
	_, err := os.Stat(s.planPath(hash))
	return err == nil
}

// ListPlans returns all stored plans, newest first.
func (s *Store) ListPlans() ([]models.Plan, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, plansDir))
	if err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}

	var plans []models.Plan
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		var plan models.Plan
		if err := format.ParseFile(filepath.Join(s.dataDir, plansDir, entry.Name()), &plan); err != nil {
			return nil, fmt.Errorf("error reading plan file %s: %w", entry.Name(), err)
		}
		plans = append(plans, plan)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// SaveRun persists a complete run record keyed by run ID.
func (s *Store) SaveRun(record *RunRecord) error {
	if record.Summary.RunID == "" {
		return fmt.Errorf("refusing to save run without run ID")
	}
	if err := format.WriteFile(s.runPath(record.Summary.RunID), record); err != nil {
		return fmt.Errorf("error writing run %s: %w", record.Summary.RunID, err)
	}
	return nil
}

// GetRun loads a run record by run ID.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	var record RunRecord
	if err := format.ParseFile(s.runPath(runID), &record); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading run %s: %w", runID, err)
	}
	return &record, nil
}

// ListRunsForPlan returns all run records for a plan, newest first.
func (s *Store) ListRunsForPlan(planHash string) ([]RunRecord, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, runsDir))
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}

	var records []RunRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		var record RunRecord
		if err := format.ParseFile(filepath.Join(s.dataDir, runsDir, entry.Name()), &record); err != nil {
			return nil, fmt.Errorf("error reading run file %s: %w", entry.Name(), err)
		}
		if record.Summary.PlanHash == planHash {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Summary.StartedAt.After(records[j].Summary.StartedAt)
	})
	return records, nil
}

func (s *Store) planPath(hash string) string {
	return filepath.Join(s.dataDir, plansDir, hash+".yaml")
}

func (s *Store) runPath(runID string) string {
	return filepath.Join(s.dataDir, runsDir, runID+".yaml")
}
