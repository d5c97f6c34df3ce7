// Package quiz owns the generation, grading and review lifecycle: prompt
// assembly, the orchestrator service, answer grading and the spaced review
// scheduler.
package quiz

import (
	"sort"
	"strings"

	"github.com/hrygo/studysense/store"
)

// Grade determines whether an answer is correct. It is a pure function.
//
// Grading is deliberately strict: exact match for multiple choice, exact set
// match for select-all, and case-insensitive whitespace-trimmed equality for
// fill-in and short answers. No partial credit, no fuzzy matching.
func Grade(question *store.Question, answer store.Answer) bool {
	switch question.Type {
	case store.QuestionTypeMultipleChoice:
		return len(question.Correct) == 1 && answer.Text == question.Correct[0]
	case store.QuestionTypeSelectAll:
		return canonicalSet(answer.Choices) == canonicalSet(question.Correct)
	case store.QuestionTypeFillBlank, store.QuestionTypeShortAnswer:
		if len(question.Correct) != 1 {
			return false
		}
		return strings.EqualFold(
			strings.TrimSpace(answer.Text),
			strings.TrimSpace(question.Correct[0]),
		)
	default:
		return false
	}
}

// canonicalSet produces an order-independent comparison form: the values
// sorted and comma-joined.
func canonicalSet(values []string) string {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// ScoreAttempt counts correct answers over all questions in the quiz. An
// unanswered question simply grades false.
func ScoreAttempt(quiz *store.Quiz, answers map[string]store.Answer) (score, total int) {
	total = len(quiz.Questions)
	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		if Grade(question, answers[question.ID]) {
			score++
		}
	}
	return score, total
}
