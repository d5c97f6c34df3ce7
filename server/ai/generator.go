package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"log/slog"

	"github.com/hrygo/studysense/store"
)

// ErrEmptyGeneration is returned when the collaborator produced no usable
// items: zero questions, explicit insufficient-evidence signal, or every
// record dropped by validation. Callers treat it as recoverable.
var ErrEmptyGeneration = errors.New("generation returned no usable questions")

// Generator turns an assembled instruction prompt into a validated payload.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Payload, error)
}

// Payload is the validated result of one generation call.
type Payload struct {
	Questions  []store.Question
	Flashcards []store.Flashcard
}

// LLMGenerator implements Generator on top of the chat completion provider.
type LLMGenerator struct {
	provider *Provider
}

func NewLLMGenerator(provider *Provider) *LLMGenerator {
	return &LLMGenerator{provider: provider}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (*Payload, error) {
	raw, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errors.Wrap(err, "generation request failed")
	}
	return ParsePayload(raw)
}

// wire structures tolerate the loosely-typed JSON the model returns; the
// "correct" field may be a string or an array of strings.
type wirePayload struct {
	Questions            []wireQuestion  `json:"questions"`
	Flashcards           []wireFlashcard `json:"flashcards"`
	InsufficientEvidence bool            `json:"insufficient_evidence"`
}

type wireQuestion struct {
	Type        string          `json:"type"`
	Topic       string          `json:"topic"`
	Question    string          `json:"question"`
	Options     []string        `json:"options"`
	Correct     json.RawMessage `json:"correct"`
	Explanation string          `json:"explanation"`
	Citation    wireCitation    `json:"citation"`
}

type wireFlashcard struct {
	Front    string       `json:"front"`
	Back     string       `json:"back"`
	Citation wireCitation `json:"citation"`
}

type wireCitation struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

// ParsePayload decodes and validates the model output. Malformed records are
// dropped, duplicate prompts within one payload are dropped after the first,
// and a payload left with nothing usable returns ErrEmptyGeneration.
func ParsePayload(raw string) (*Payload, error) {
	var wire wirePayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &wire); err != nil {
		return nil, errors.Wrap(err, "generation response is not valid JSON")
	}

	if wire.InsufficientEvidence {
		return nil, ErrEmptyGeneration
	}

	payload := &Payload{}
	seenPrompts := make(map[string]bool)
	for _, wq := range wire.Questions {
		question, ok := validateQuestion(wq)
		if !ok {
			slog.Warn("dropping malformed question record", "type", wq.Type, "prompt", wq.Question)
			continue
		}
		if seenPrompts[question.Prompt] {
			slog.Warn("dropping duplicate question prompt", "prompt", question.Prompt)
			continue
		}
		seenPrompts[question.Prompt] = true
		payload.Questions = append(payload.Questions, question)
	}

	for _, wf := range wire.Flashcards {
		if strings.TrimSpace(wf.Front) == "" || strings.TrimSpace(wf.Back) == "" {
			continue
		}
		payload.Flashcards = append(payload.Flashcards, store.Flashcard{
			Front: wf.Front,
			Back:  wf.Back,
			Citation: store.Citation{
				SourceName: wf.Citation.Source,
				Excerpt:    wf.Citation.Excerpt,
			},
		})
	}

	if len(payload.Questions) == 0 && len(payload.Flashcards) == 0 {
		return nil, ErrEmptyGeneration
	}
	return payload, nil
}

// validateQuestion enforces the closed question variant and its per-variant
// required fields.
func validateQuestion(wq wireQuestion) (store.Question, bool) {
	question := store.Question{
		Type:        store.QuestionType(wq.Type),
		Topic:       wq.Topic,
		Prompt:      strings.TrimSpace(wq.Question),
		Options:     wq.Options,
		Explanation: wq.Explanation,
		Citation: store.Citation{
			SourceName: wq.Citation.Source,
			Excerpt:    wq.Citation.Excerpt,
		},
	}
	if question.Prompt == "" {
		return store.Question{}, false
	}

	correct, err := decodeCorrect(wq.Correct)
	if err != nil || len(correct) == 0 {
		return store.Question{}, false
	}
	question.Correct = correct

	switch question.Type {
	case store.QuestionTypeMultipleChoice:
		if len(question.Options) != 4 || len(correct) != 1 || !containsAll(question.Options, correct) {
			return store.Question{}, false
		}
	case store.QuestionTypeSelectAll:
		if len(question.Options) < 2 || !containsAll(question.Options, correct) {
			return store.Question{}, false
		}
	case store.QuestionTypeFillBlank, store.QuestionTypeShortAnswer:
		if len(correct) != 1 {
			return store.Question{}, false
		}
		question.Options = nil
	default:
		return store.Question{}, false
	}

	return question, true
}

// decodeCorrect accepts either a JSON string or an array of strings.
func decodeCorrect(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			return nil, nil
		}
		return []string{single}, nil
	}
	var multiple []string
	if err := json.Unmarshal(raw, &multiple); err != nil {
		return nil, err
	}
	var out []string
	for _, value := range multiple {
		if strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out, nil
}

func containsAll(options, values []string) bool {
	set := make(map[string]bool, len(options))
	for _, option := range options {
		set[option] = true
	}
	for _, value := range values {
		if !set[value] {
			return false
		}
	}
	return true
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
