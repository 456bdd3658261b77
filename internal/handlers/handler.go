package handlers

import (
	"github.com/spcgrid/spcgrid/internal/cache"
	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/queue"
	"github.com/spcgrid/spcgrid/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger       *logging.Logger
	chartService *services.ChartService
}

// New creates a new handler instance. The cache and notifier may be nil
// when those subsystems are disabled.
func New(logger *logging.Logger, resultCache cache.ResultCache,
	notifier *queue.Notifier, engine config.EngineConfig,
) *Handler {
	return &Handler{
		logger:       logger,
		chartService: services.NewChartService(logger, resultCache, notifier, engine),
	}
}
