// Package v1 exposes the REST API: document ingestion, quiz generation and
// lifecycle, and the spaced review queue.
package v1

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/studysense/internal/profile"
	"github.com/hrygo/studysense/server/library"
	"github.com/hrygo/studysense/server/middleware"
	"github.com/hrygo/studysense/server/quiz"
	"github.com/hrygo/studysense/store"
)

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	LibraryService *library.Service
	QuizService    *quiz.Service

	// generateLimiter throttles generation calls per client; they fan out to
	// the paid upstream collaborator.
	generateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, st *store.Store, libraryService *library.Service, quizService *quiz.Service) *APIV1Service {
	return &APIV1Service{
		Profile:         profile,
		Store:           st,
		LibraryService:  libraryService,
		QuizService:     quizService,
		generateLimiter: middleware.NewRateLimiter(2*time.Second, 3),
	}
}

// RegisterRoutes attaches all v1 endpoints to the echo server.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	group := e.Group("/api/v1")

	group.POST("/documents", s.UploadDocuments)
	group.GET("/documents", s.ListDocuments)
	group.DELETE("/documents/:id", s.DeleteDocument)
	group.GET("/topics", s.ListTopics)

	group.POST("/quizzes", s.GenerateQuiz)
	group.GET("/quizzes/:id", s.GetQuiz)
	group.DELETE("/quizzes/:id", s.DiscardQuiz)
	group.POST("/quizzes/:id/retake", s.RetakeQuiz)
	group.POST("/quizzes/:id/attempts", s.SubmitQuiz)
	group.POST("/quizzes/:id/progress", s.SaveProgress)
	group.GET("/quizzes/:id/progress", s.ResumeProgress)

	group.GET("/reviews", s.ReviewQueue)
}
