package handlers

import (
	"net/http"

	"peerprep/avatar/internal/config"
	"peerprep/avatar/internal/question"
	"peerprep/avatar/internal/speech"
	"peerprep/avatar/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	questions question.Provider
	speech    *speech.Engine
	config    *config.Config
}

func NewHealthHandler(questions question.Provider, speechEngine *speech.Engine, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		questions: questions,
		speech:    speechEngine,
		config:    cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "avatar",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	// verify question provider is initialized
	if handler.questions == nil {
		checks["question_provider"] = ReadinessCheck{
			Status:  "failed",
			Message: "Question provider not initialized",
		}
		allChecksPass = false
	} else {
		checks["question_provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify speech engine is initialized
	if handler.speech == nil {
		checks["speech_engine"] = ReadinessCheck{
			Status:  "failed",
			Message: "Speech engine not initialized",
		}
		allChecksPass = false
	} else {
		checks["speech_engine"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "avatar",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
