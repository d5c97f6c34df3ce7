package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"log/slog"

	"github.com/hrygo/studysense/server/ai"
	"github.com/hrygo/studysense/server/quiz"
	"github.com/hrygo/studysense/store"
)

// GenerateQuiz runs one generation request. Recoverable outcomes map to
// structured responses: insufficient evidence is 422, an empty generation is
// 200 with status "empty", and a client-cancelled request is 204 with no
// error surfaced.
func (s *APIV1Service) GenerateQuiz(c echo.Context) error {
	if !s.generateLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many generation requests")
	}

	var req quiz.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	generated, err := s.QuizService.GenerateQuiz(c.Request().Context(), req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{"status": "ready", "quiz": generated})
	case errors.Is(err, context.Canceled):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, quiz.ErrDrillTopicRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, quiz.ErrInsufficientEvidence):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ai.ErrEmptyGeneration):
		return c.JSON(http.StatusOK, map[string]any{"status": "empty"})
	default:
		slog.Error("quiz generation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed, please retry")
	}
}

func (s *APIV1Service) GetQuiz(c echo.Context) error {
	found, err := s.Store.GetQuiz(c.Request().Context(), c.Param("id"))
	if err != nil {
		slog.Error("failed to load quiz", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load quiz")
	}
	if found == nil {
		return echo.NewHTTPError(http.StatusNotFound, "quiz not found")
	}
	return c.JSON(http.StatusOK, found)
}

func (s *APIV1Service) DiscardQuiz(c echo.Context) error {
	if err := s.QuizService.Discard(c.Request().Context(), c.Param("id")); err != nil {
		slog.Error("failed to discard quiz", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to discard quiz")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) RetakeQuiz(c echo.Context) error {
	if !s.generateLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many generation requests")
	}

	generated, err := s.QuizService.Retake(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{"status": "ready", "quiz": generated})
	case errors.Is(err, context.Canceled):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, quiz.ErrQuizNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "quiz not found")
	case errors.Is(err, quiz.ErrInsufficientEvidence):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ai.ErrEmptyGeneration):
		return c.JSON(http.StatusOK, map[string]any{"status": "empty"})
	default:
		slog.Error("quiz retake failed", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed, please retry")
	}
}

type submitRequest struct {
	Answers        map[string]store.Answer `json:"answers"`
	ElapsedSeconds int                     `json:"elapsedSeconds"`
}

func (s *APIV1Service) SubmitQuiz(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	attempt, err := s.QuizService.Submit(c.Request().Context(), c.Param("id"), req.Answers, req.ElapsedSeconds)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, attempt)
	case errors.Is(err, quiz.ErrQuizNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "quiz not found")
	case errors.Is(err, quiz.ErrAlreadySubmitted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		slog.Error("quiz submission failed", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to submit quiz")
	}
}

type saveProgressRequest struct {
	Answers        map[string]store.Answer `json:"answers"`
	CurrentIndex   int                     `json:"currentIndex"`
	ElapsedSeconds int                     `json:"elapsedSeconds"`
	TimerEnabled   bool                    `json:"timerEnabled"`
}

func (s *APIV1Service) SaveProgress(c echo.Context) error {
	var req saveProgressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	progress, err := s.QuizService.SaveProgress(c.Request().Context(), &store.SavedProgress{
		QuizID:         c.Param("id"),
		Answers:        req.Answers,
		CurrentIndex:   req.CurrentIndex,
		ElapsedSeconds: req.ElapsedSeconds,
		TimerEnabled:   req.TimerEnabled,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, progress)
	case errors.Is(err, quiz.ErrQuizNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "quiz not found")
	default:
		slog.Error("failed to save progress", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save progress")
	}
}

func (s *APIV1Service) ResumeProgress(c echo.Context) error {
	progress, err := s.QuizService.ResumeProgress(c.Request().Context(), c.Param("id"))
	if err != nil {
		slog.Error("failed to resume progress", "quiz", c.Param("id"), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resume progress")
	}
	if progress == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no saved progress")
	}
	return c.JSON(http.StatusOK, progress)
}

func (s *APIV1Service) ReviewQueue(c echo.Context) error {
	buckets, err := s.QuizService.ReviewQueue(c.Request().Context(), time.Now())
	if err != nil {
		slog.Error("failed to compute review queue", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute review queue")
	}

	type bucketView struct {
		OffsetDays int                   `json:"offsetDays"`
		Questions  []quiz.MissedQuestion `json:"questions"`
	}
	views := make([]bucketView, 0, len(quiz.ReviewOffsets))
	for _, offset := range quiz.ReviewOffsets {
		questions := buckets[offset]
		if questions == nil {
			questions = []quiz.MissedQuestion{}
		}
		views = append(views, bucketView{OffsetDays: offset, Questions: questions})
	}
	return c.JSON(http.StatusOK, map[string]any{"buckets": views})
}
