package gemini

import "peerprep/avatar/internal/question"

// Register Gemini provider on package import
func init() {
	question.RegisterProvider("gemini", func() (question.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
