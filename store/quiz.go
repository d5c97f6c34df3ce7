package store

import (
	"context"
)

const quizKeyPrefix = "quiz/"

// QuestionType is the closed set of question variants the generator may
// produce. Anything outside this set is dropped at the ingestion boundary.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeSelectAll      QuestionType = "select_all"
	QuestionTypeFillBlank      QuestionType = "fill_blank"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// Citation links a generated question back to its supporting evidence. The
// excerpt is embedded so the question stays meaningful after the source
// document is deleted.
type Citation struct {
	SourceName string `json:"sourceName"`
	Excerpt    string `json:"excerpt"`
}

// Question is a single generated question. ID is assigned at quiz creation
// and is the answer-map key; prompt text is display-only.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Topic       string       `json:"topic"`
	Prompt      string       `json:"prompt"`
	Options     []string     `json:"options,omitempty"`
	// Correct holds the answer key: a single element for multiple_choice,
	// fill_blank and short_answer, the full expected set for select_all.
	Correct     []string `json:"correct"`
	Explanation string   `json:"explanation"`
	Citation    Citation `json:"citation"`
}

// Flashcard is a single generated flashcard for mode "flashcards".
type Flashcard struct {
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Citation Citation `json:"citation"`
}

// Quiz is immutable once created; a retake produces a new Quiz. The
// generation settings are retained so a retake can reproduce them.
type Quiz struct {
	ID            string      `json:"id"`
	Mode          string      `json:"mode"`
	Difficulty    string      `json:"difficulty"`
	QuestionCount int         `json:"questionCount"`
	FocusTopics   []string    `json:"focusTopics,omitempty"`
	DrillTopic    string      `json:"drillTopic,omitempty"`
	Objectives    string      `json:"objectives,omitempty"`
	Questions     []Question  `json:"questions,omitempty"`
	Flashcards    []Flashcard `json:"flashcards,omitempty"`
	CreatedTs     int64       `json:"createdTs"`
}

// Answer is a learner's recorded response to one question: Text for
// multiple_choice, fill_blank and short_answer, Choices for select_all.
type Answer struct {
	Text    string   `json:"text,omitempty"`
	Choices []string `json:"choices,omitempty"`
}

func (s *Store) CreateQuiz(ctx context.Context, create *Quiz) (*Quiz, error) {
	if err := s.setJSON(ctx, quizKeyPrefix+create.ID, create); err != nil {
		return nil, err
	}
	return create, nil
}

// GetQuiz returns the quiz with the given id, or nil when absent.
func (s *Store) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	quiz := &Quiz{}
	ok, err := s.getJSON(ctx, quizKeyPrefix+id, quiz)
	if err != nil || !ok {
		return nil, err
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]*Quiz, error) {
	keys, err := s.driver.List(ctx, quizKeyPrefix)
	if err != nil {
		return nil, err
	}
	quizzes := make([]*Quiz, 0, len(keys))
	for _, key := range keys {
		quiz := &Quiz{}
		ok, err := s.getJSON(ctx, key, quiz)
		if err != nil {
			return nil, err
		}
		if ok {
			quizzes = append(quizzes, quiz)
		}
	}
	return quizzes, nil
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	return s.driver.Delete(ctx, quizKeyPrefix+id)
}
