package v1

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"log/slog"

	"github.com/hrygo/studysense/server/library"
)

// maxUploadBytes bounds a single uploaded file.
const maxUploadBytes = 32 << 20

// UploadDocuments accepts one or more files in a multipart form under the
// "files" field, extracts and chunks each, and reports per-file outcomes.
func (s *APIV1Service) UploadDocuments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected multipart form upload")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files provided")
	}

	var uploads []library.Upload
	for _, header := range files {
		if header.Size > maxUploadBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large: "+header.Filename)
		}
		file, err := header.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to open upload: "+header.Filename)
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload: "+header.Filename)
		}
		uploads = append(uploads, library.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	results, err := s.LibraryService.Ingest(c.Request().Context(), uploads)
	if err != nil {
		slog.Error("document ingest failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to ingest documents")
	}
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

func (s *APIV1Service) ListDocuments(c echo.Context) error {
	documents, err := s.LibraryService.ListDocuments(c.Request().Context())
	if err != nil {
		slog.Error("failed to list documents", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list documents")
	}

	type documentView struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		ContentType string `json:"contentType"`
		CharCount   int    `json:"charCount"`
		ChunkCount  int    `json:"chunkCount"`
		CreatedTs   int64  `json:"createdTs"`
	}
	views := make([]documentView, 0, len(documents))
	for _, document := range documents {
		views = append(views, documentView{
			ID:          document.ID,
			Name:        document.Name,
			ContentType: document.ContentType,
			CharCount:   document.CharCount,
			ChunkCount:  len(document.Chunks),
			CreatedTs:   document.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": views})
}

func (s *APIV1Service) DeleteDocument(c echo.Context) error {
	if err := s.LibraryService.DeleteDocument(c.Request().Context(), c.Param("id")); err != nil {
		slog.Error("failed to delete document", "document", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete document")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) ListTopics(c echo.Context) error {
	topics, err := s.LibraryService.Topics(c.Request().Context())
	if err != nil {
		slog.Error("failed to compute topics", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute topics")
	}
	if topics == nil {
		topics = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"topics": topics})
}
