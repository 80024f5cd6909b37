package remote

import (
	"os"

	"peerprep/avatar/internal/question"
)

// registers the remote provider on package import
func init() {
	question.RegisterProvider("remote", func() (question.Provider, error) {
		baseURL := os.Getenv("QUESTION_SERVICE_URL")
		if baseURL == "" {
			return nil, &question.ProviderError{
				Provider: "remote",
				Code:     question.ErrCodeInvalidInput,
				Message:  "QUESTION_SERVICE_URL environment variable not set",
			}
		}
		return NewClient(baseURL), nil
	})
}
