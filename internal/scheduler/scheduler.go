/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/TraceApi/roastery-core/internal/core/ports"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const snapshotTimeout = 2 * time.Minute

// Snapshot is the archived state of the reports at TakenAt.
type Snapshot struct {
	TakenAt     time.Time           `json:"takenAt"`
	Dashboard   *domain.Dashboard   `json:"dashboard"`
	MassBalance *domain.MassBalance `json:"massBalance"`
}

// Scheduler archives report snapshots to blob storage on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	reports ports.ReportService
	blobs   ports.BlobStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewScheduler(reports ports.ReportService, blobs ports.BlobStore, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		reports: reports,
		blobs:   blobs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the snapshot with a five-field cron expression.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("schedule", spec))
	s.cron.Start()
	return nil
}

// Stop waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	if _, err := s.TakeSnapshot(ctx); err != nil {
		s.logger.Error("failed to archive report snapshot", zap.Error(err))
	}
}

// TakeSnapshot builds the dashboard and mass balance and uploads them as one
// JSON document. It returns the object location.
func (s *Scheduler) TakeSnapshot(ctx context.Context) (string, error) {
	takenAt := s.now()

	dashboard, err := s.reports.Dashboard(ctx)
	if err != nil {
		return "", fmt.Errorf("dashboard: %w", err)
	}
	balance, err := s.reports.MassBalance(ctx)
	if err != nil {
		return "", fmt.Errorf("mass balance: %w", err)
	}
	if !balance.Balanced {
		s.logger.Warn("snapshot taken with unbalanced inventory",
			zap.String("discrepancy_kg", balance.Discrepancy.StringFixed(2)))
	}

	payload, err := json.Marshal(Snapshot{TakenAt: takenAt, Dashboard: dashboard, MassBalance: balance})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	location, err := s.blobs.PutJSON(ctx, SnapshotKey(takenAt), payload)
	if err != nil {
		return "", err
	}
	s.logger.Info("report snapshot archived", zap.String("location", location))
	return location, nil
}

// SnapshotKey is the object key of a snapshot taken at t.
func SnapshotKey(t time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.json", t.UTC().Format("2006/01"), t.UTC().Format("20060102T150405Z"))
}
