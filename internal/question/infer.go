package question

import (
	"strings"

	"peerprep/avatar/internal/models"
)

// InferQuestionType classifies a question by keyword. Question sources do
// not label their output, so this heuristic drives the client's type tag.
func InferQuestionType(text string, isFirst bool) models.QuestionType {
	if isFirst {
		return models.QuestionIntroduction
	}

	lower := strings.ToLower(text)

	for _, kw := range []string{"tell me about", "describe", "example", "time when"} {
		if strings.Contains(lower, kw) {
			return models.QuestionBehavioral
		}
	}
	for _, kw := range []string{"imagine", "if you", "what would you", "how would you"} {
		if strings.Contains(lower, kw) {
			return models.QuestionSituational
		}
	}
	for _, kw := range []string{"explain", "what is", "how does", "define", "algorithm", "code"} {
		if strings.Contains(lower, kw) {
			return models.QuestionTechnical
		}
	}
	return models.QuestionGeneral
}
