package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-portfolio/api/handlers"
	"github.com/feichai0017/resume-portfolio/api/middleware"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

type Options struct {
	AllowOrigins []string
	// JobsEnabled registers the async extraction endpoints.
	JobsEnabled bool
	Logger      logger.Logger
}

// SetupRoutes registers every endpoint on r.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, opts Options) {
	r.Use(middleware.RequestID())
	if opts.Logger != nil {
		r.Use(middleware.AccessLog(opts.Logger))
	}
	r.Use(middleware.CORS(opts.AllowOrigins))

	r.GET("/health", h.Portfolio.Health)

	api := r.Group("/api")

	resume := api.Group("/resume")
	{
		resume.POST("/upload", h.Portfolio.UploadResume)
		if opts.JobsEnabled {
			resume.POST("/jobs", h.Portfolio.SubmitResume)
			resume.GET("/jobs/:taskId", h.Portfolio.GetJobStatus)
		}
	}

	portfolios := api.Group("/portfolio")
	{
		portfolios.GET("/:id", h.Portfolio.GetPortfolio)
		portfolios.PUT("/:id", h.Portfolio.UpdatePortfolio)
		portfolios.GET("/:id/download", h.Portfolio.DownloadPortfolio)
	}
}
