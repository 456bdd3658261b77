package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spcgrid/spcgrid/internal/cache"
	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/logging"
	"github.com/spcgrid/spcgrid/internal/models"
	"github.com/spcgrid/spcgrid/internal/queue"
	"github.com/spcgrid/spcgrid/internal/spc"
)

// Service error codes not produced by the chart engine itself
const (
	CodeInvalidChartType = "INVALID_CHART_TYPE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ChartService handles chart computation business logic
type ChartService struct {
	logger   *logging.Logger
	cache    cache.ResultCache
	notifier *queue.Notifier
	engine   config.EngineConfig
}

// NewChartService creates a new ChartService. The cache and notifier may be
// nil when the corresponding subsystems are disabled.
func NewChartService(
	logger *logging.Logger,
	resultCache cache.ResultCache,
	notifier *queue.Notifier,
	engine config.EngineConfig,
) *ChartService {
	return &ChartService{
		logger:   logger,
		cache:    resultCache,
		notifier: notifier,
		engine:   engine,
	}
}

// Compute runs one chart computation. Requests that omit tunables pick up
// the configured engine defaults before hitting the cache, so equivalent
// requests share cache entries.
func (s *ChartService) Compute(ctx context.Context, chartType string, req *models.ChartRequest) (*models.ChartResponse, error) {
	startExec := time.Now()

	if !spc.IsValidChartType(chartType) {
		return nil, NewServiceErrorWithDetails(CodeInvalidChartType, "unknown chart type: "+chartType,
			map[string]interface{}{"chart_type": chartType})
	}

	s.applyDefaults(req)
	engineReq := req.ToEngine(spc.ChartType(chartType))
	requestID := uuid.New().String()

	key, cached := s.lookup(ctx, engineReq)
	if cached != nil {
		s.logger.Debug("chart cache hit",
			"chart_type", chartType,
			"request_id", requestID)
		return &models.ChartResponse{RequestID: requestID, Cached: true, Result: cached}, nil
	}

	result, err := spc.Compute(engineReq)
	if err != nil {
		return nil, translateEngineError(err)
	}

	s.store(ctx, key, result)
	s.publishViolations(ctx, requestID, result)

	s.logger.Info("chart computed",
		"chart_type", chartType,
		"request_id", requestID,
		"subgroups", result.Summary.Subgroups,
		"in_control", result.Summary.InControl,
		"duration_ms", time.Since(startExec).Milliseconds())

	return &models.ChartResponse{RequestID: requestID, Cached: false, Result: result}, nil
}

// ChartTypes lists the supported chart types
func (s *ChartService) ChartTypes() *models.ChartTypesResponse {
	descriptions := map[spc.ChartType]string{
		spc.ChartXbarR: "Mean and range chart for subgrouped measurements",
		spc.ChartXbarS: "Mean and standard deviation chart for subgrouped measurements",
		spc.ChartCUSUM: "Tabular cumulative sum chart for small sustained shifts",
		spc.ChartP:     "Proportion nonconforming chart for attribute lots",
	}

	resp := &models.ChartTypesResponse{}
	for _, ct := range spc.ValidChartTypes() {
		resp.ChartTypes = append(resp.ChartTypes, models.ChartTypeView{
			Type:        string(ct),
			Description: descriptions[ct],
		})
	}
	return resp
}

// Rules lists the registered control rules
func (s *ChartService) Rules() *models.RulesResponse {
	defaults := make(map[spc.RuleID]bool)
	for _, id := range spc.DefaultXbarRules() {
		defaults[id] = true
	}

	resp := &models.RulesResponse{}
	for _, id := range spc.ListRules() {
		rule, err := spc.GetRule(id)
		if err != nil {
			continue
		}
		resp.Rules = append(resp.Rules, models.RuleView{
			ID:        string(id),
			ZoneBased: rule.ZoneBased(),
			Default:   defaults[id],
		})
	}
	return resp
}

func (s *ChartService) applyDefaults(req *models.ChartRequest) {
	if req.SubgroupSize == 0 {
		req.SubgroupSize = s.engine.SubgroupSize
	}
	if req.PartialPolicy == "" {
		req.PartialPolicy = s.engine.PartialPolicy
	}
	if req.K == 0 {
		req.K = s.engine.CUSUMK
	}
	if req.H == 0 {
		req.H = s.engine.CUSUMH
	}
}

// lookup returns the cache key and any cached result. Key derivation and
// cache failures degrade to a miss.
func (s *ChartService) lookup(ctx context.Context, engineReq spc.Request) (string, *spc.Result) {
	if s.cache == nil {
		return "", nil
	}

	key, err := cache.Key(engineReq)
	if err != nil {
		s.logger.Warn("failed to derive cache key", "error", err)
		return "", nil
	}

	result, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "error", err)
		return key, nil
	}
	if !ok {
		return key, nil
	}
	return key, result
}

func (s *ChartService) store(ctx context.Context, key string, result *spc.Result) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		s.logger.Warn("cache store failed", "error", err)
	}
}

func (s *ChartService) publishViolations(ctx context.Context, requestID string, result *spc.Result) {
	if s.notifier == nil {
		return
	}
	published, err := s.notifier.NotifyResult(ctx, requestID, result)
	if err != nil {
		s.logger.Warn("failed to publish violation events",
			"request_id", requestID,
			"error", err)
		return
	}
	if published > 0 {
		s.logger.Info("published violation events",
			"request_id", requestID,
			"events", published)
	}
}

// translateEngineError maps chart engine errors onto service errors,
// preserving the engine's error code and details for the transport layer.
func translateEngineError(err error) error {
	var engineErr *spc.Error
	if errors.As(err, &engineErr) {
		return &ServiceError{
			Code:    engineErr.Code,
			Message: engineErr.Message,
			Details: engineErr.Details,
		}
	}
	return NewServiceError(CodeInternalError, err.Error())
}
