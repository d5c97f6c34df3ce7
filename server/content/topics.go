package content

import (
	"sort"
	"strings"
	"unicode"
)

// maxTopics caps the number of topics returned by ExtractTopics.
const maxTopics = 20

// minTokenLen is the exclusive minimum length for a token to qualify.
const minTokenLen = 3

// stopWords are tokens excluded from topic candidates.
var stopWords = map[string]bool{
	"about": true, "above": true, "after": true, "again": true, "also": true,
	"back": true, "because": true, "been": true, "before": true, "being": true,
	"below": true, "between": true, "both": true, "cannot": true, "could": true,
	"does": true, "doing": true, "down": true, "during": true, "each": true,
	"even": true, "every": true, "from": true, "further": true, "have": true,
	"having": true, "here": true, "into": true, "itself": true, "just": true,
	"like": true, "made": true, "make": true, "many": true, "more": true,
	"most": true, "much": true, "must": true, "only": true, "other": true,
	"over": true, "same": true, "should": true, "some": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "until": true, "very": true, "well": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "within": true, "without": true,
	"would": true, "your": true,
}

// ExtractTopics derives up to 20 display topics from the chunk set, ordered
// by descending recurrence. Only two-token phrases whose words both qualify
// (longer than three characters, not stop words) are emitted, and a phrase
// must recur in at least two chunks. Each chunk contributes a given phrase
// at most once, so one dense chunk cannot dominate the ranking.
func ExtractTopics(chunks []Chunk) []string {
	counts := make(map[string]int)

	for _, chunk := range chunks {
		tokens := normalizeTokens(chunk.Text)
		seen := make(map[string]bool)
		for i, token := range tokens {
			if !qualifies(token) {
				continue
			}
			if i+1 < len(tokens) && qualifies(tokens[i+1]) {
				phrase := token + " " + tokens[i+1]
				if !seen[phrase] {
					seen[phrase] = true
					counts[phrase]++
				}
			}
		}
	}

	phrases := make([]string, 0, len(counts))
	for phrase, count := range counts {
		if count >= 2 {
			phrases = append(phrases, phrase)
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		if counts[phrases[i]] != counts[phrases[j]] {
			return counts[phrases[i]] > counts[phrases[j]]
		}
		return phrases[i] < phrases[j]
	})
	if len(phrases) > maxTopics {
		phrases = phrases[:maxTopics]
	}

	topics := make([]string, len(phrases))
	for i, phrase := range phrases {
		topics[i] = titleCase(phrase)
	}
	return topics
}

func qualifies(token string) bool {
	return len(token) > minTokenLen && !stopWords[token]
}

// normalizeTokens lowercases text, strips everything but letters, digits and
// hyphens, and splits on whitespace.
func normalizeTokens(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}

func titleCase(phrase string) string {
	words := strings.Fields(phrase)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
