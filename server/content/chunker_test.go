package content

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, Split("", "doc.txt", 500))
	assert.Empty(t, Split("   \n\t  ", "doc.txt", 500))
}

func TestSplit_SingleSentence(t *testing.T) {
	chunks := Split("The mitochondria is the powerhouse of the cell.", "bio.txt", 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "The mitochondria is the powerhouse of the cell.", chunks[0].Text)
	assert.Equal(t, "bio.txt", chunks[0].SourceName)
	assert.Equal(t, 0, chunks[0].Index)
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplit_SoftCap(t *testing.T) {
	// Three sentences of ~40 chars with a 90-char target: the third sentence
	// must start a second chunk rather than be squeezed in.
	s1 := "The heart pumps blood through arteries."
	s2 := "Veins return the blood to the heart."
	s3 := "Capillaries connect arteries and veins."
	chunks := Split(s1+" "+s2+" "+s3, "circ.txt", 90)

	require.Len(t, chunks, 2)
	assert.Equal(t, s1+" "+s2, chunks[0].Text)
	assert.Equal(t, s3, chunks[1].Text)
	assert.Equal(t, []int{0, 1}, []int{chunks[0].Index, chunks[1].Index})
}

func TestSplit_LongSentencePreservedWhole(t *testing.T) {
	long := "This is an extraordinarily long sentence that keeps going well past any reasonable chunk size because the author never learned about periods and just kept adding clauses one after another until the very end."
	require.Greater(t, len(long), 100)

	chunks := Split(long, "run-on.txt", 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0].Text)
}

func TestSplit_Roundtrip(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Sentence number %d talks about cardiac output and stroke volume. ", i)
	}
	source := strings.TrimSpace(sb.String())

	chunks := Split(source, "cardio.txt", 500)
	require.NotEmpty(t, chunks)

	// Chunks come back in index order and rejoin to the original token
	// sequence with only whitespace normalization loss.
	var parts []string
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		parts = append(parts, chunk.Text)
	}
	rejoined := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	normalized := strings.Join(strings.Fields(source), " ")
	assert.Equal(t, normalized, rejoined)
}

func TestSplit_NoMidSentenceBreaks(t *testing.T) {
	text := "Alpha waves dominate rest. Beta waves dominate focus! Do gamma waves exist? Delta waves dominate sleep."
	chunks := Split(text, "eeg.txt", 30)

	for _, chunk := range chunks {
		// Every chunk must end at a sentence boundary except possibly the
		// final unterminated fragment.
		last := chunk.Text[len(chunk.Text)-1]
		if chunk.Index < len(chunks)-1 {
			assert.Contains(t, ".!?", string(last), "chunk %d ends mid-sentence: %q", chunk.Index, chunk.Text)
		}
	}
}

func TestSplit_AbbreviationNotABoundary(t *testing.T) {
	// A period not followed by whitespace does not terminate a sentence.
	chunks := Split("Visit example.com for details. Second sentence here.", "web.txt", 500)
	require.Len(t, chunks, 1)
}
