package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/studysense/server/content"
	"github.com/hrygo/studysense/store"
	storetest "github.com/hrygo/studysense/store/test"
)

func TestDocumentRoundtrip(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(t)
	defer ts.Close()

	chunks := content.Split("First sentence here. Second sentence here.", "notes.txt", 500)
	created, err := ts.CreateDocument(ctx, &store.Document{
		ID:          "doc-1",
		Name:        "notes.txt",
		ContentType: "text/plain",
		CharCount:   42,
		Chunks:      chunks,
		CreatedTs:   time.Now().Unix(),
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	got, err := ts.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "notes.txt", got.Name)
	assert.Equal(t, chunks, got.Chunks)

	missing, err := ts.GetDocument(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestChunkPoolAcrossDocuments(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(t)
	defer ts.Close()

	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := ts.CreateDocument(ctx, &store.Document{
			ID:     name,
			Name:   name,
			Chunks: content.Split("One sentence. Two sentences.", name, 500),
		})
		require.NoError(t, err)
	}

	pool, err := ts.ChunkPool(ctx)
	require.NoError(t, err)
	assert.Len(t, pool, 2)

	// Cache must not serve stale pools after a delete.
	require.NoError(t, ts.DeleteDocument(ctx, "a.txt"))
	pool, err = ts.ChunkPool(ctx)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "b.txt", pool[0].SourceName)
}

func TestQuizAndAttempts(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(t)
	defer ts.Close()

	quiz := &store.Quiz{
		ID:   "quiz-1",
		Mode: "standard",
		Questions: []store.Question{
			{ID: "q1", Type: store.QuestionTypeMultipleChoice, Prompt: "Pick one", Correct: []string{"A"}},
		},
		CreatedTs: time.Now().Unix(),
	}
	_, err := ts.CreateQuiz(ctx, quiz)
	require.NoError(t, err)

	_, err = ts.CreateAttempt(ctx, &store.Attempt{
		ID:     "att-1",
		QuizID: "quiz-1",
		Answers: map[string]store.Answer{
			"q1": {Text: "A"},
		},
		Score: 1,
		Total: 1,
	})
	require.NoError(t, err)

	attempts, err := ts.ListAttempts(ctx, "quiz-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, 1, attempts[0].Score)

	other, err := ts.ListAttempts(ctx, "quiz-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	all, err := ts.ListAttempts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProgressSuperseded(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(t)
	defer ts.Close()

	_, err := ts.UpsertProgress(ctx, &store.SavedProgress{QuizID: "quiz-1", CurrentIndex: 2})
	require.NoError(t, err)
	_, err = ts.UpsertProgress(ctx, &store.SavedProgress{QuizID: "quiz-1", CurrentIndex: 5})
	require.NoError(t, err)

	progress, err := ts.GetProgress(ctx, "quiz-1")
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 5, progress.CurrentIndex)

	require.NoError(t, ts.DeleteProgress(ctx, "quiz-1"))
	progress, err = ts.GetProgress(ctx, "quiz-1")
	require.NoError(t, err)
	assert.Nil(t, progress)
}
