// Package content implements the document-to-evidence pipeline: chunking,
// topic extraction, lexical retrieval and evidence sampling. Everything in
// this package is pure computation over in-memory data; no I/O, no stores.
package content

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// DefaultChunkSize is the soft character cap per chunk.
const DefaultChunkSize = 500

// Chunk is a bounded, sentence-aligned segment of a source document.
// Index is the chunk's ordinal position within its source, starting at 0.
type Chunk struct {
	ID         string `json:"id"`
	SourceName string `json:"sourceName"`
	Text       string `json:"text"`
	Index      int    `json:"index"`
}

// Split breaks extracted document text into sentence-aligned chunks of at
// most targetSize characters. The cap is soft: a single sentence longer than
// targetSize is kept whole, never cut mid-sentence. Whitespace-only input
// yields no chunks.
func Split(text, sourceName string, targetSize int) []Chunk {
	if targetSize <= 0 {
		targetSize = DefaultChunkSize
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var buffer strings.Builder
	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			ID:         uuid.NewString(),
			SourceName: sourceName,
			Text:       strings.TrimSpace(buffer.String()),
			Index:      len(chunks),
		})
		buffer.Reset()
	}

	for _, sentence := range sentences {
		if buffer.Len() > 0 && buffer.Len()+1+len(sentence) > targetSize {
			flush()
		}
		if buffer.Len() > 0 {
			buffer.WriteString(" ")
		}
		buffer.WriteString(sentence)
	}
	flush()

	return chunks
}

// splitSentences splits text on terminal punctuation (. ! ?) followed by
// whitespace. The trailing fragment is kept even without a terminator.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
