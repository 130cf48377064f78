package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/label-insight/internal/infra/config"
	"github.com/yanqian/label-insight/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, recorder *metrics.Recorder) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		metricsMiddleware(recorder),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))
	router.Static(cfg.Uploads.PublicPath, cfg.Uploads.Dir)

	api := router.Group("/api/v1")
	api.Use(
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		bodyLimitMiddleware(cfg.HTTP.MaxUploadBytes),
	)
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
	}

	secured := api.Group("")
	secured.Use(authMiddleware(handler.authSvc))
	{
		secured.GET("/auth/me", handler.Me)
		secured.GET("/profile", handler.GetProfile)
		secured.PUT("/profile", handler.SaveProfile)
		secured.POST("/upload_image", handler.UploadImage)
		secured.POST("/quick_analysis", handler.QuickAnalysis)
		secured.GET("/history", handler.History)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
