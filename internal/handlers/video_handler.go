package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/utils"
)

// typicalGenerationSeconds is how long a clip usually takes end to end,
// used for the client's progress estimate while a job is in flight.
const typicalGenerationSeconds = 75.0

type VideoHandler struct {
	tracker *avatar.Tracker
	logger  *zap.Logger
}

func NewVideoHandler(tracker *avatar.Tracker, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		tracker: tracker,
		logger:  logger,
	}
}

// StatusHandler reports the state of one background video generation.
func (h *VideoHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	generationID := chi.URLParam(r, "generationID")

	job, ok := h.tracker.Status(generationID)
	if !ok {
		utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
			Code:    "generation_not_found",
			Message: "Unknown generation id " + generationID,
		})
		return
	}

	resp := models.VideoStatusResponse{
		GenerationID: job.GenerationID,
		Status:       job.Status,
	}

	switch job.Status {
	case models.VideoCompleted:
		resp.ElapsedSeconds = job.CompletedAt.Sub(job.StartedAt).Seconds()
		url := job.VideoURL
		resp.VideoURL = &url
	case models.VideoFailed:
		resp.ElapsedSeconds = job.CompletedAt.Sub(job.StartedAt).Seconds()
		errMsg := job.Error
		resp.Error = &errMsg
	default:
		elapsed := time.Since(job.StartedAt).Seconds()
		resp.ElapsedSeconds = elapsed
		remaining := typicalGenerationSeconds - elapsed
		if remaining < 0 {
			remaining = 0
		}
		resp.EstimatedRemainingSeconds = &remaining
	}

	utils.JSON(w, http.StatusOK, resp)
}
