package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/metrics"
	"peerprep/avatar/internal/session"
)

// CleanupJob expires idle sessions and drops finished video jobs on a
// cron schedule, keeping the in-memory state bounded.
type CleanupJob struct {
	registry *session.Registry
	tracker  *avatar.Tracker
	config   *CleanupConfig
	logger   *zap.Logger
	cron     *cron.Cron
}

// CleanupConfig contains configuration for the cleanup job
type CleanupConfig struct {
	Schedule          string        // Cron schedule (e.g. "@every 5m")
	SessionTimeout    time.Duration // Idle time before a session expires
	VideoJobRetention time.Duration // How long finished video jobs stay pollable
}

func NewCleanupJob(registry *session.Registry, tracker *avatar.Tracker, config *CleanupConfig, logger *zap.Logger) *CleanupJob {
	return &CleanupJob{
		registry: registry,
		tracker:  tracker,
		config:   config,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start begins the scheduled cleanup job
func (cj *CleanupJob) Start() error {
	_, err := cj.cron.AddFunc(cj.config.Schedule, func() {
		cj.RunCleanup()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}

	cj.cron.Start()
	cj.logger.Info("cleanup job started", zap.String("schedule", cj.config.Schedule))
	return nil
}

// Stop stops the scheduled cleanup job
func (cj *CleanupJob) Stop() {
	if cj.cron != nil {
		cj.cron.Stop()
		cj.logger.Info("cleanup job stopped")
	}
}

// RunCleanup performs a single cleanup pass
func (cj *CleanupJob) RunCleanup() {
	expired := cj.registry.PruneExpired(cj.config.SessionTimeout)
	pruned := cj.tracker.PruneFinished(cj.config.VideoJobRetention)
	metrics.SetActiveSessions(cj.registry.ActiveCount())

	if len(expired) > 0 || len(pruned) > 0 {
		cj.logger.Info("cleanup pass finished",
			zap.Int("sessions_expired", len(expired)),
			zap.Int("video_jobs_pruned", len(pruned)))
	}
}
