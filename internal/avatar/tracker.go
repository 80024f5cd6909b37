package avatar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peerprep/avatar/internal/metrics"
	"peerprep/avatar/internal/models"
)

// VideoGenerator is the blocking generation call the tracker runs in the
// background. Satisfied by *Client.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, text string) (string, error)
}

// Tracker owns the lifecycle of background video jobs. Question delivery
// never waits on video generation; clients poll a job by its generation
// token instead.
type Tracker struct {
	generator VideoGenerator
	timeout   time.Duration
	logger    *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*models.VideoJob
}

func NewTracker(generator VideoGenerator, timeout time.Duration, logger *zap.Logger) *Tracker {
	return &Tracker{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		jobs:      make(map[string]*models.VideoJob),
	}
}

// StartJob registers a pending job and kicks off generation in the
// background. The returned token is immediately pollable.
func (t *Tracker) StartJob(sessionID string, questionID int, text string) string {
	token := fmt.Sprintf("gen_%x", uuid.New())[:16]

	job := &models.VideoJob{
		GenerationID: token,
		SessionID:    sessionID,
		QuestionID:   questionID,
		Status:       models.VideoPending,
		StartedAt:    time.Now(),
	}

	t.mu.Lock()
	t.jobs[token] = job
	t.mu.Unlock()

	metrics.RecordVideoJob("started")
	go t.run(token, text)
	return token
}

func (t *Tracker) run(token, text string) {
	t.setStatus(token, models.VideoProcessing, "", "")

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	url, err := t.generator.GenerateVideo(ctx, text)
	if err != nil {
		t.logger.Warn("video generation failed",
			zap.String("generation_id", token),
			zap.Error(err))
		metrics.RecordVideoJob("failed")
		t.setStatus(token, models.VideoFailed, "", err.Error())
		return
	}

	t.logger.Info("video generation completed",
		zap.String("generation_id", token),
		zap.String("video_url", url))
	metrics.RecordVideoJob("completed")
	t.setStatus(token, models.VideoCompleted, url, "")
}

// setStatus transitions a job. Finished jobs never transition again, so a
// late timeout cannot clobber a completed result.
func (t *Tracker) setStatus(token string, status models.VideoJobStatus, url, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[token]
	if !ok || job.Status == models.VideoCompleted || job.Status == models.VideoFailed {
		return
	}

	job.Status = status
	job.VideoURL = url
	job.Error = errMsg
	if status == models.VideoCompleted || status == models.VideoFailed {
		now := time.Now()
		job.CompletedAt = &now
	}
}

// Status returns a snapshot of one job.
func (t *Tracker) Status(generationID string) (*models.VideoJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[generationID]
	if !ok {
		return nil, false
	}
	snapshot := *job
	if job.CompletedAt != nil {
		completed := *job.CompletedAt
		snapshot.CompletedAt = &completed
	}
	return &snapshot, true
}

// Latest returns the most recently started job for a session/question
// pair, so an idempotent question re-delivery can reuse the in-flight
// generation instead of paying for a new one.
func (t *Tracker) Latest(sessionID string, questionID int) (*models.VideoJob, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var latest *models.VideoJob
	for _, job := range t.jobs {
		if job.SessionID != sessionID || job.QuestionID != questionID {
			continue
		}
		if latest == nil || job.StartedAt.After(latest.StartedAt) {
			latest = job
		}
	}
	if latest == nil {
		return nil, false
	}
	snapshot := *latest
	if latest.CompletedAt != nil {
		completed := *latest.CompletedAt
		snapshot.CompletedAt = &completed
	}
	return &snapshot, true
}

// PruneFinished drops completed and failed jobs older than the retention
// window and returns the dropped tokens. In-flight jobs are never pruned.
func (t *Tracker) PruneFinished(olderThan time.Duration) []string {
	cutoff := time.Now().Add(-olderThan)

	t.mu.Lock()
	defer t.mu.Unlock()

	var pruned []string
	for token, job := range t.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(t.jobs, token)
			pruned = append(pruned, token)
		}
	}
	return pruned
}
