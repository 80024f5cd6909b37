package routers

import (
	"peerprep/avatar/internal/handlers"
	"peerprep/avatar/internal/middleware"
	"peerprep/avatar/internal/models"

	"github.com/go-chi/chi/v5"
)

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, videoHandler *handlers.VideoHandler, avatarHandler *handlers.AvatarHandler, wsHandler *handlers.WSHandler) {
	router.Route("/api/v1/interview", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)

		r.Get("/info", interviewHandler.InfoHandler)
		r.Get("/avatar/status", avatarHandler.StatusHandler)
		r.Get("/video/status/{generationID}", videoHandler.StatusHandler)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/question", interviewHandler.QuestionHandler)
			r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/answer", interviewHandler.AnswerHandler)
			r.With(middleware.ValidateRequest[*models.EndInterviewRequest]()).Post("/end", interviewHandler.EndHandler)
			r.Get("/status", interviewHandler.StatusHandler)
		})

		// websocket variant of the whole flow
		r.Get("/ws", wsHandler.InterviewWS)
	})
}
