package store

import (
	"context"
	"fmt"
)

const attemptKeyPrefix = "attempt/"

// Attempt records one scored submission of a quiz. Created exactly once per
// submission and never mutated.
type Attempt struct {
	ID             string            `json:"id"`
	QuizID         string            `json:"quizId"`
	Answers        map[string]Answer `json:"answers"` // keyed by question id
	Score          int               `json:"score"`
	Total          int               `json:"total"`
	ElapsedSeconds int               `json:"elapsedSeconds"`
	SubmittedTs    int64             `json:"submittedTs"`
}

func attemptKey(quizID, attemptID string) string {
	return fmt.Sprintf("%s%s/%s", attemptKeyPrefix, quizID, attemptID)
}

func (s *Store) CreateAttempt(ctx context.Context, create *Attempt) (*Attempt, error) {
	if err := s.setJSON(ctx, attemptKey(create.QuizID, create.ID), create); err != nil {
		return nil, err
	}
	return create, nil
}

// ListAttempts returns the attempts for one quiz, or for every quiz when
// quizID is empty.
func (s *Store) ListAttempts(ctx context.Context, quizID string) ([]*Attempt, error) {
	prefix := attemptKeyPrefix
	if quizID != "" {
		prefix = attemptKeyPrefix + quizID + "/"
	}
	keys, err := s.driver.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	attempts := make([]*Attempt, 0, len(keys))
	for _, key := range keys {
		attempt := &Attempt{}
		ok, err := s.getJSON(ctx, key, attempt)
		if err != nil {
			return nil, err
		}
		if ok {
			attempts = append(attempts, attempt)
		}
	}
	return attempts, nil
}
