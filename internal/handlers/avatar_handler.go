package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"peerprep/avatar/internal/avatar"
	"peerprep/avatar/internal/models"
	"peerprep/avatar/internal/utils"
)

type AvatarHandler struct {
	client *avatar.Client
	logger *zap.Logger
}

func NewAvatarHandler(client *avatar.Client, logger *zap.Logger) *AvatarHandler {
	return &AvatarHandler{
		client: client,
		logger: logger,
	}
}

// StatusHandler reports whether video generation is available and how much
// provider quota remains.
func (h *AvatarHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.client.IsConfigured() {
		utils.JSON(w, http.StatusOK, models.AvatarStatusResponse{
			Configured: false,
			Mode:       models.AvatarAudioOnly,
			Message:    "Video provider not configured, interviews run audio-only",
		})
		return
	}

	resp := models.AvatarStatusResponse{
		Configured: true,
		Mode:       models.AvatarVideo,
	}

	remaining, total, err := h.client.Credits(r.Context())
	if err != nil {
		h.logger.Warn("credits lookup failed", zap.Error(err))
		resp.Message = "Credit balance unavailable"
	} else {
		resp.Credits = map[string]int{
			"remaining": remaining,
			"total":     total,
		}
	}

	utils.JSON(w, http.StatusOK, resp)
}
