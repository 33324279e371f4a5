package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/miradorstack/sentiment-dashboard/internal/dashboard"
	"github.com/miradorstack/sentiment-dashboard/internal/metrics"
	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/repo"
	"github.com/miradorstack/sentiment-dashboard/internal/utils"
)

// PageQuery carries the filter form as submitted by the browser. Submitted is
// false on the first visit, which triggers the bootstrap flow.
type PageQuery struct {
	Keyword   string
	StartDate string
	EndDate   string
	Submitted bool
}

// DashboardService is the facade the HTTP handlers call.
type DashboardService struct {
	logger     *slog.Logger
	controller *dashboard.Controller
	fetcher    dashboard.Fetcher
	latencies  *utils.LatencyTracker
}

// NewDashboardService constructs the dashboard service facade.
func NewDashboardService(logger *slog.Logger, controller *dashboard.Controller, fetcher dashboard.Fetcher) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		logger:     logger,
		controller: controller,
		fetcher:    fetcher,
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// Page runs bootstrap or an analysis for session and returns the populated page.
// Missing form values take the same defaults as the JSON endpoint.
// The page is returned even when err is non-nil; its banner already carries the
// user-facing message. ErrSuperseded pages must not be shown.
func (s *DashboardService) Page(ctx context.Context, session string, q PageQuery) (*dashboard.Page, error) {
	if s.controller == nil {
		return nil, fmt.Errorf("dashboard controller not configured")
	}
	page := &dashboard.Page{}

	start := time.Now()
	var err error
	if !q.Submitted {
		s.logger.Debug("bootstrap", slog.String("session", session))
		err = s.controller.Bootstrap(ctx, session, page)
	} else {
		filter := s.controller.WithDefaults(models.Filter{Keyword: q.Keyword, StartDate: q.StartDate, EndDate: q.EndDate})
		page.Keyword = filter.Keyword
		page.SetDateRange(filter.StartDate, filter.EndDate)
		s.controller.RestoreKeywords(ctx, page)
		err = s.controller.Analyze(ctx, session, page)
	}
	s.observe(time.Since(start), err, page.Keyword)
	return page, err
}

// Keywords returns the suggested keywords.
func (s *DashboardService) Keywords(ctx context.Context) ([]string, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("sentiment fetcher not configured")
	}
	return s.fetcher.FetchKeywords(ctx)
}

// Sentiment runs an analysis for the JSON endpoint, filling missing parameters
// with the page defaults.
func (s *DashboardService) Sentiment(ctx context.Context, filter models.Filter) (*models.SentimentResponse, error) {
	if s.fetcher == nil || s.controller == nil {
		return nil, fmt.Errorf("sentiment fetcher not configured")
	}
	filter = s.controller.WithDefaults(filter)

	start := time.Now()
	resp, err := s.fetcher.FetchSentiment(ctx, filter)
	s.observe(time.Since(start), err, filter.Keyword)
	return resp, err
}

// LatencyP95 returns the current p95 analysis latency.
func (s *DashboardService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func (s *DashboardService) observe(duration time.Duration, err error, keyword string) {
	switch {
	case err == nil:
		metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	case errors.Is(err, repo.ErrInvalidRange):
		metrics.ObserveAnalysis(duration, metrics.OutcomeInvalid)
		return
	case errors.Is(err, dashboard.ErrSuperseded):
		metrics.ObserveAnalysis(duration, metrics.OutcomeSuperseded)
		return
	default:
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		s.logger.Error("analysis failed", slog.String("keyword", keyword), slog.Any("error", err))
		return
	}

	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("analysis latency", slog.Duration("p95", p95), slog.Int("samples", count))
	}
}
