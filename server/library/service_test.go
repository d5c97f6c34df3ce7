package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/studysense/plugin/textextract"
	storetest "github.com/hrygo/studysense/store/test"
)

// MockExtractor is a mock for Extractor.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

func TestIngest_SingleDocument(t *testing.T) {
	ts := storetest.NewTestingStore(t)
	extractor := &MockExtractor{}
	service := NewService(ts, extractor)

	text := "The heart has four chambers. Blood flows from atria to ventricles."
	extractor.On("Extract", mock.Anything, mock.Anything, "text/plain").Return(text, nil)

	results, err := service.Ingest(context.Background(), []Upload{
		{Name: "anatomy.txt", ContentType: "text/plain", Data: []byte(text)},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[0].DocumentID)
	assert.Equal(t, 1, results[0].ChunkCount)

	documents, err := service.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "anatomy.txt", documents[0].Name)
	assert.Equal(t, len(text), documents[0].CharCount)
}

func TestIngest_PartialFailure(t *testing.T) {
	ts := storetest.NewTestingStore(t)
	extractor := &MockExtractor{}
	service := NewService(ts, extractor)

	extractor.On("Extract", mock.Anything, mock.Anything, "text/plain").
		Return("Valid study notes about cellular respiration and ATP production.", nil)
	extractor.On("Extract", mock.Anything, mock.Anything, "image/png").
		Return("", textextract.ErrUnsupportedFormat)

	results, err := service.Ingest(context.Background(), []Upload{
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("x")},
		{Name: "photo.png", ContentType: "image/png", Data: []byte("x")},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[0].DocumentID)
	assert.Equal(t, "unsupported file format", results[1].Error)
	assert.Empty(t, results[1].DocumentID)

	// The failed file must not block the good one.
	documents, err := service.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, documents, 1)
}

func TestTopics_FromChunkPool(t *testing.T) {
	ts := storetest.NewTestingStore(t)
	extractor := &MockExtractor{}
	service := NewService(ts, extractor)

	extractor.On("Extract", mock.Anything, mock.Anything, "text/plain").
		Return("Cardiac output rises with exercise. Cardiac output depends on stroke volume.", nil).Once()
	extractor.On("Extract", mock.Anything, mock.Anything, "text/markdown").
		Return("Stroke volume and cardiac output are linked. Stroke volume varies.", nil).Once()

	_, err := service.Ingest(context.Background(), []Upload{
		{Name: "a.txt", ContentType: "text/plain", Data: []byte("x")},
		{Name: "b.md", ContentType: "text/markdown", Data: []byte("x")},
	})
	require.NoError(t, err)

	topics, err := service.Topics(context.Background())
	require.NoError(t, err)
	assert.Contains(t, topics, "Cardiac Output")
}

func TestDeleteDocument(t *testing.T) {
	ts := storetest.NewTestingStore(t)
	extractor := &MockExtractor{}
	service := NewService(ts, extractor)

	extractor.On("Extract", mock.Anything, mock.Anything, "text/plain").
		Return("Some valid study material about enzymes and substrates.", nil)

	results, err := service.Ingest(context.Background(), []Upload{
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("x")},
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteDocument(context.Background(), results[0].DocumentID))
	documents, err := service.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, documents)
}
