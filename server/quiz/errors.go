package quiz

import (
	"github.com/pkg/errors"
)

var (
	// ErrInsufficientEvidence means the requested scope retrieved zero
	// chunks; generation is never attempted.
	ErrInsufficientEvidence = errors.New("no study material matches the requested scope")
	// ErrDrillTopicRequired means drill mode was requested without exactly
	// one topic.
	ErrDrillTopicRequired = errors.New("drill mode requires exactly one topic")
	// ErrQuizNotFound means the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAlreadySubmitted means the quiz already has an attempt; further
	// attempts require a retake.
	ErrAlreadySubmitted = errors.New("quiz has already been submitted")
)
