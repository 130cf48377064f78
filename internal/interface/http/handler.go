package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	"github.com/yanqian/label-insight/internal/domain/auth"
	"github.com/yanqian/label-insight/internal/domain/history"
	"github.com/yanqian/label-insight/internal/domain/profile"
	"github.com/yanqian/label-insight/internal/infra/uploads"
)

// Uploader persists an uploaded label photo and returns where it is served.
type Uploader interface {
	Save(ctx context.Context, original string, r io.Reader, baseURL string) (uploads.Stored, error)
}

// HealthInfo is reported by the health endpoint.
type HealthInfo struct {
	OCRLanguage   string
	LLMProvider   string
	LLMConfigured bool
}

// Services groups the domain services the transport depends on.
type Services struct {
	Auth     auth.Service
	Analysis analysis.Service
	Profiles profile.Service
	History  history.Service
	Uploads  Uploader
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc     auth.Service
	analysisSvc analysis.Service
	profileSvc  profile.Service
	historySvc  history.Service
	uploads     Uploader
	health      HealthInfo
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svcs Services, health HealthInfo, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:     svcs.Auth,
		analysisSvc: svcs.Analysis,
		profileSvc:  svcs.Profiles,
		historySvc:  svcs.History,
		uploads:     svcs.Uploads,
		health:      health,
		logger:      logger.With("component", "http.handler"),
	}
}

// Health reports liveness and which backends are wired.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"ocr":           h.health.OCRLanguage,
		"llm":           h.health.LLMProvider,
		"llmConfigured": h.health.LLMConfigured,
	})
}

func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
