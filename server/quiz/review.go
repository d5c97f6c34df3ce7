package quiz

import (
	"time"
)

// ReviewOffsets are the spaced-repetition windows, in days since the attempt
// that missed the question.
var ReviewOffsets = []int{1, 3, 7, 14}

// reviewTolerance is the half-width of each window. Consecutive offsets are
// at least two days apart, so windows never overlap.
const reviewTolerance = 0.5

// MissedQuestion is one question graded wrong in a submitted attempt,
// carrying the submission time of that attempt.
type MissedQuestion struct {
	QuizID     string `json:"quizId"`
	QuestionID string `json:"questionId"`
	Prompt     string `json:"prompt"`
	Topic      string `json:"topic"`
	MissedTs   int64  `json:"missedTs"`
}

// ReviewBuckets reclassifies missed questions into the review offset whose
// target date falls within half a day of now. A question lands in at most
// one bucket; questions outside every window are omitted. The result is
// recomputed on every call, nothing is persisted.
func ReviewBuckets(missed []MissedQuestion, now time.Time) map[int][]MissedQuestion {
	buckets := make(map[int][]MissedQuestion)
	for _, question := range missed {
		age := now.Sub(time.Unix(question.MissedTs, 0))
		days := age.Hours() / 24
		for _, offset := range ReviewOffsets {
			delta := days - float64(offset)
			if delta >= -reviewTolerance && delta <= reviewTolerance {
				buckets[offset] = append(buckets[offset], question)
				break
			}
		}
	}
	return buckets
}
