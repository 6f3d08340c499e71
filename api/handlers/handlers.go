package handlers

import (
	"github.com/feichai0017/resume-portfolio/internal/service/portfolio"
	"github.com/feichai0017/resume-portfolio/internal/utils/validator"
	"github.com/feichai0017/resume-portfolio/pkg/converters"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

type Handlers struct {
	Portfolio *PortfolioHandler
}

func NewHandlers(
	portfolioService portfolio.Service,
	uploadValidator *validator.UploadValidator,
	defaultUserID int64,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Portfolio: NewPortfolioHandler(portfolioService, uploadValidator, converters.NewPortfolioExporter(), defaultUserID, logger),
	}
}
