package store

import (
	"context"
)

const progressKeyPrefix = "progress/"

// SavedProgress is an in-progress quiz snapshot. At most one exists per quiz
// (the quiz id is the key); it is superseded on resave and deleted on
// resume, discard or submission.
type SavedProgress struct {
	QuizID         string            `json:"quizId"`
	Answers        map[string]Answer `json:"answers"`
	CurrentIndex   int               `json:"currentIndex"`
	ElapsedSeconds int               `json:"elapsedSeconds"`
	TimerEnabled   bool              `json:"timerEnabled"`
	SavedTs        int64             `json:"savedTs"`
}

// UpsertProgress stores the snapshot, replacing any previous one for the
// same quiz.
func (s *Store) UpsertProgress(ctx context.Context, upsert *SavedProgress) (*SavedProgress, error) {
	if err := s.setJSON(ctx, progressKeyPrefix+upsert.QuizID, upsert); err != nil {
		return nil, err
	}
	return upsert, nil
}

// GetProgress returns the snapshot for a quiz, or nil when there is none.
func (s *Store) GetProgress(ctx context.Context, quizID string) (*SavedProgress, error) {
	progress := &SavedProgress{}
	ok, err := s.getJSON(ctx, progressKeyPrefix+quizID, progress)
	if err != nil || !ok {
		return nil, err
	}
	return progress, nil
}

func (s *Store) DeleteProgress(ctx context.Context, quizID string) error {
	return s.driver.Delete(ctx, progressKeyPrefix+quizID)
}
