package content

import (
	"sort"
	"strings"
)

// DefaultTopK is the default number of chunks returned by Search.
const DefaultTopK = 5

// Search ranks chunks against a free-text query by the number of distinct
// query tokens (length > 2) contained anywhere in the chunk's lowercased
// text. Substring containment is deliberate: partial matches like "cardio"
// hitting "cardiovascular" are wanted here. Chunks that match nothing are
// excluded; ties keep their original relative order.
func Search(chunks []Chunk, query string, topK int) []Chunk {
	if topK <= 0 {
		topK = DefaultTopK
	}

	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	type scored struct {
		chunk Chunk
		score int
	}
	var matches []scored
	for _, chunk := range chunks {
		text := strings.ToLower(chunk.Text)
		score := 0
		for _, token := range tokens {
			if strings.Contains(text, token) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{chunk: chunk, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	result := make([]Chunk, len(matches))
	for i, m := range matches {
		result[i] = m.chunk
	}
	return result
}

// queryTokens lowercases and splits the query, dropping short tokens and
// duplicates.
func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	var tokens []string
	for _, f := range fields {
		if len(f) <= 2 || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}
