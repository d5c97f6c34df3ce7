// Package textextract turns uploaded study documents into plain text.
// Plain text and markdown are handled locally; PDF and Office formats go
// through an Apache Tika server.
package textextract

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"log/slog"
)

var (
	// ErrUnsupportedFormat is returned for content types no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported content type")
	// ErrEmptyExtraction is returned when extraction produces fewer than
	// MinTextLength characters. Scanned images and corrupt files end up here.
	ErrEmptyExtraction = errors.New("extraction produced no usable text")
)

// MinTextLength is the minimum extracted length considered usable.
const MinTextLength = 10

// tikaMimeTypes are the content types delegated to the Tika server.
var tikaMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/rtf",
	"text/rtf",
}

// Config holds the text extraction configuration.
type Config struct {
	// TikaServerURL is the URL of the Tika server (e.g. http://localhost:9998)
	TikaServerURL string
	// Timeout is the HTTP timeout for Tika server requests
	Timeout time.Duration
}

// DefaultConfig returns the default text extraction configuration.
func DefaultConfig() *Config {
	return &Config{
		TikaServerURL: "http://localhost:9998",
		Timeout:       30 * time.Second,
	}
}

// Client provides text extraction functionality.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a new text extraction client.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// IsSupported reports whether the content type has an extractor.
func (c *Client) IsSupported(contentType string) bool {
	contentType = baseContentType(contentType)
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	for _, mime := range tikaMimeTypes {
		if contentType == mime {
			return true
		}
	}
	return false
}

// Extract turns raw document bytes into a plain text string. It returns
// ErrUnsupportedFormat for unknown content types and ErrEmptyExtraction when
// the result carries fewer than MinTextLength characters.
func (c *Client) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	contentType = baseContentType(contentType)

	var text string
	var err error
	switch {
	case contentType == "text/markdown":
		text, err = markdownToText(data)
	case strings.HasPrefix(contentType, "text/") && contentType != "text/rtf":
		text = string(data)
	case c.IsSupported(contentType):
		text, err = c.extractFromServer(ctx, data, contentType)
	default:
		return "", errors.Wrap(ErrUnsupportedFormat, contentType)
	}
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(text)) < MinTextLength {
		return "", ErrEmptyExtraction
	}
	return text, nil
}

// extractFromServer extracts text using the Tika server.
func (c *Client) extractFromServer(ctx context.Context, data []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.config.TikaServerURL+"/tika",
		bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "tika server request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		// Tika parsed the container but could not decode the content.
		slog.Warn("tika could not decode document", "contentType", contentType)
		return "", ErrEmptyExtraction
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("tika server returned status %d: %s", resp.StatusCode, string(body))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}
	return string(text), nil
}

// baseContentType strips any parameters ("text/plain; charset=utf-8").
func baseContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
