package quiz

import (
	"fmt"
	"strings"

	"github.com/hrygo/studysense/server/content"
)

// Quiz modes.
const (
	ModeStandard   = "standard"
	ModeDrill      = "drill"
	ModeFlashcards = "flashcards"
)

// Difficulty levels.
const (
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
)

// GenerateRequest carries the learner's generation settings.
type GenerateRequest struct {
	Mode          string   `json:"mode"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"questionCount"`
	FocusTopics   []string `json:"focusTopics,omitempty"`
	DrillTopic    string   `json:"drillTopic,omitempty"`
	Objectives    string   `json:"objectives,omitempty"`
}

// BuildPrompt renders the full instruction prompt for one generation call:
// the question count and type mix, the evidence set, the grounding clause,
// previously asked prompts to avoid, optional learner objectives, the
// difficulty clause and the topic coverage clause.
func BuildPrompt(req GenerateRequest, evidence []content.Chunk, topics []string, askedPrompts []string) string {
	var sb strings.Builder

	if req.Mode == ModeFlashcards {
		fmt.Fprintf(&sb, "You are a study assistant. Create exactly %d flashcards from the study material below.\n\n", req.QuestionCount)
		sb.WriteString("Respond with a JSON object: {\"flashcards\": [{\"front\": string, \"back\": string, \"citation\": {\"source\": string, \"excerpt\": string}}]}.\n")
	} else {
		fmt.Fprintf(&sb, "You are a study assistant. Create exactly %d quiz questions from the study material below.\n\n", req.QuestionCount)
		sb.WriteString("Question type mix: about 50% multiple_choice, 20% select_all, 15% fill_blank, 15% short_answer.\n")
		sb.WriteString("Respond with a JSON object: {\"questions\": [{\"type\": \"multiple_choice\"|\"select_all\"|\"fill_blank\"|\"short_answer\", \"topic\": string, \"question\": string, \"options\": [4 strings, multiple_choice and select_all only], \"correct\": string or array of strings, \"explanation\": string, \"citation\": {\"source\": string, \"excerpt\": string}}]}.\n")
	}

	sb.WriteString("Base every item strictly on the study material provided; do not introduce facts that are not in it. ")
	sb.WriteString("If the material cannot support the request, respond with {\"questions\": [], \"insufficient_evidence\": true}.\n\n")

	if req.Difficulty == DifficultyHard {
		sb.WriteString("Difficulty: hard. Prefer multi-step reasoning and application questions over simple recall.\n\n")
	}

	if req.Mode == ModeDrill && req.DrillTopic != "" {
		fmt.Fprintf(&sb, "Every item must target this single topic: %s.\n\n", req.DrillTopic)
	} else if len(req.FocusTopics) > 0 {
		fmt.Fprintf(&sb, "Prioritize coverage of these topics: %s.\n\n", strings.Join(req.FocusTopics, ", "))
	} else if len(topics) > 0 {
		fmt.Fprintf(&sb, "Attempt to cover all of these detected topics: %s.\n\n", strings.Join(topics, ", "))
	}

	if req.Objectives != "" {
		fmt.Fprintf(&sb, "Learner objectives to emphasize: %s\n\n", req.Objectives)
	}

	if len(askedPrompts) > 0 {
		sb.WriteString("Do not repeat or closely paraphrase any of these previously asked questions:\n")
		for _, prompt := range askedPrompts {
			fmt.Fprintf(&sb, "- %s\n", prompt)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Study material:\n\n")
	for _, chunk := range evidence {
		fmt.Fprintf(&sb, "[source: %s]\n%s\n\n", chunk.SourceName, chunk.Text)
	}

	return sb.String()
}
