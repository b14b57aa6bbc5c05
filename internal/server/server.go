package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/agenthands/carecircle/internal/core/model"
)

const dateLayout = "2006-01-02"

// Assistant is the set of AI features exposed over HTTP.
type Assistant interface {
	Enabled() bool
	InferMood(ctx context.Context, subjectID string) model.MoodAnalysis
	AssessHealthRisk(ctx context.Context, subjectID string) model.HealthRiskAssessment
	FollowUpQuestion(ctx context.Context, memory model.Memory) string
	DailySummary(ctx context.Context, subjectID string, d time.Time) string
	WeeklyRecap(ctx context.Context, subjectID string, weekEnding time.Time) string
	Ask(ctx context.Context, subjectID, question string) model.Answer
}

type Server struct {
	Assistant Assistant
	Logger    *log.Logger
	Clock     clockwork.Clock
}

func NewServer(a Assistant, logger *log.Logger, clock clockwork.Clock) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Server{Assistant: a, Logger: logger, Clock: clock}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)

	subjects := r.Group("/subjects/:id")
	subjects.GET("/mood", s.Mood)
	subjects.GET("/health-risk", s.HealthRisk)
	subjects.GET("/summary/daily", s.DailySummary)
	subjects.GET("/summary/weekly", s.WeeklyRecap)
	subjects.POST("/ask", s.Ask)

	r.POST("/follow-up", s.FollowUp)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.Clock.Now()
		c.Next()
		s.Logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", s.Clock.Since(start),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ai_enabled": s.Assistant.Enabled()})
}

func (s *Server) Mood(c *gin.Context) {
	c.JSON(http.StatusOK, s.Assistant.InferMood(c.Request.Context(), c.Param("id")))
}

func (s *Server) HealthRisk(c *gin.Context) {
	c.JSON(http.StatusOK, s.Assistant.AssessHealthRisk(c.Request.Context(), c.Param("id")))
}

func (s *Server) DailySummary(c *gin.Context) {
	d, err := s.dateQuery(c, "date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary := s.Assistant.DailySummary(c.Request.Context(), c.Param("id"), d)
	c.JSON(http.StatusOK, gin.H{"date": d.Format(dateLayout), "summary": summary})
}

func (s *Server) WeeklyRecap(c *gin.Context) {
	d, err := s.dateQuery(c, "ending")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	recap := s.Assistant.WeeklyRecap(c.Request.Context(), c.Param("id"), d)
	c.JSON(http.StatusOK, gin.H{"week_ending": d.Format(dateLayout), "recap": recap})
}

// dateQuery parses a YYYY-MM-DD query parameter, defaulting to today (UTC).
func (s *Server) dateQuery(c *gin.Context, name string) (time.Time, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return s.Clock.Now().UTC(), nil
	}
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, errors.New(name + " must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

type AskRequest struct {
	Question string `json:"question"`
}

func (s *Server) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	c.JSON(http.StatusOK, s.Assistant.Ask(c.Request.Context(), c.Param("id"), req.Question))
}

type FollowUpRequest struct {
	Memory model.Memory `json:"memory"`
}

func (s *Server) FollowUp(c *gin.Context) {
	var req FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Memory.Type = req.Memory.Type.Normalize()
	q := s.Assistant.FollowUpQuestion(c.Request.Context(), req.Memory)
	c.JSON(http.StatusOK, gin.H{"question": q})
}
