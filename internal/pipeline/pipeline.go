package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/Ankursingh018as/public-pulse-ai/config"
	"github.com/Ankursingh018as/public-pulse-ai/internal/areas"
	"github.com/Ankursingh018as/public-pulse-ai/internal/classifier"
	"github.com/Ankursingh018as/public-pulse-ai/internal/fusion"
	"github.com/Ankursingh018as/public-pulse-ai/internal/logger"
	"github.com/Ankursingh018as/public-pulse-ai/internal/metrics"
	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
	"github.com/Ankursingh018as/public-pulse-ai/internal/preprocess"
	"github.com/Ankursingh018as/public-pulse-ai/internal/sentiment"
	"github.com/Ankursingh018as/public-pulse-ai/pkg/utils"
)

// Source defines a pluggable report source implementation
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Report, error)
	Interval() time.Duration
}

// Classifier interface for report classification
type Classifier interface {
	Classify(text string) classifier.Result
}

// Analyzer interface for sentiment analysis
type Analyzer interface {
	Analyze(text string) sentiment.Profile
}

// Store interface for issue and prediction storage
type Store interface {
	UpsertIssues(ctx context.Context, issues []models.Issue) error
	UpsertPredictions(ctx context.Context, predictions []models.Prediction) error
	QueryIssues(ctx context.Context, q models.IssueQuery) ([]models.Issue, error)
}

// Invalidator drops cached entries made stale by new issues
type Invalidator interface {
	InvalidateArea(ctx context.Context, area string) error
}

// SignalProvider gathers external per-area signals for risk fusion. The
// pipeline merges its own nlp signal on top of whatever is returned.
type SignalProvider interface {
	Gather(ctx context.Context, area string) (fusion.SignalSet, error)
}

// Pipeline coordinates concurrent ingestion, classification, analysis,
// and risk fusion of citizen reports
type Pipeline struct {
	store      Store
	classifier Classifier
	analyzer   Analyzer
	engine     *fusion.Engine
	signals    SignalProvider
	cache      Invalidator
	limiter    *rate.Limiter
	sources    []Source
	cfg        config.PipelineConfig
	sem        *semaphore.Weighted
	mu         sync.RWMutex
	running    bool
}

// New creates a new pipeline instance
func New(store Store, cls Classifier, analyzer Analyzer, engine *fusion.Engine, cache Invalidator, cfg config.PipelineConfig, sources ...Source) *Pipeline {
	p := &Pipeline{
		store:      store,
		classifier: cls,
		analyzer:   analyzer,
		engine:     engine,
		signals:    &storeSignalProvider{store: store},
		cache:      cache,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)),
		sem:        semaphore.NewWeighted(int64(cfg.WorkerCount)),
		sources:    sources,
	}

	logger.Info("Pipeline initialized",
		"sources", len(p.sources),
		"rate_limit", cfg.RateLimit,
		"workers", cfg.WorkerCount,
	)

	return p
}

// SetSignalProvider overrides the default store-backed signal provider.
func (p *Pipeline) SetSignalProvider(sp SignalProvider) {
	p.signals = sp
}

// Run starts the pipeline and runs until context is cancelled
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	logger.Info("Starting pipeline")

	// Fan-out per-source pollers
	var wg sync.WaitGroup
	errChan := make(chan error, len(p.sources))

	for _, src := range p.sources {
		src := src
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := p.runSourcePoller(ctx, src); err != nil {
				select {
				case errChan <- fmt.Errorf("source %s: %w", src.Name(), err):
				case <-ctx.Done():
				}
			}
		}()
	}

	// Wait for all pollers to finish
	go func() {
		wg.Wait()
		close(errChan)
	}()

	// Collect any errors
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
		logger.Error("Pipeline source error", "error", err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("pipeline completed with %d errors", len(errs))
	}

	logger.Info("Pipeline stopped")
	return nil
}

// runSourcePoller runs a single source poller
func (p *Pipeline) runSourcePoller(ctx context.Context, src Source) error {
	logger.Info("Starting source poller", "source", src.Name())

	ticker := time.NewTicker(src.Interval())
	defer ticker.Stop()

	// Initial immediate run
	if err := p.runOnce(ctx, src); err != nil {
		logger.Error("Initial source run failed", "source", src.Name(), "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Source poller stopping", "source", src.Name())
			return ctx.Err()
		case <-ticker.C:
			if err := p.runOnce(ctx, src); err != nil {
				logger.Error("Source run failed", "source", src.Name(), "error", err)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(p.cfg.RetryDelay):
					// Continue after delay
				}
			}
		}
	}
}

// runOnce executes a single pipeline run for a source
func (p *Pipeline) runOnce(ctx context.Context, src Source) error {
	// Acquire semaphore to limit concurrent processing
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire semaphore: %w", err)
	}
	defer p.sem.Release(1)

	// Rate limiting
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	// Fetch reports with retry logic
	var reports []models.Report
	var err error

	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * p.cfg.RetryDelay
			logger.Debug("Retrying fetch", "source", src.Name(), "attempt", attempt, "delay", delay)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		reports, err = src.Fetch(ctx)
		if err == nil {
			break
		}

		logger.Warn("Fetch attempt failed",
			"source", src.Name(),
			"attempt", attempt+1,
			"error", err,
		)
	}

	if err != nil {
		metrics.RecordReportProcessed(src.Name(), "fetch_error")
		return fmt.Errorf("%s fetch failed after %d attempts: %w", src.Name(), p.cfg.RetryAttempts+1, err)
	}

	if len(reports) == 0 {
		return nil
	}

	logger.Debug("Processing reports", "source", src.Name(), "count", len(reports))

	// Process reports in batches
	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(reports)
	}

	for i := 0; i < len(reports); i += batchSize {
		end := i + batchSize
		if end > len(reports) {
			end = len(reports)
		}

		batch := reports[i:end]
		if err := p.processBatch(ctx, src.Name(), batch); err != nil {
			logger.Error("Batch processing failed",
				"source", src.Name(),
				"batch_start", i,
				"batch_size", len(batch),
				"error", err,
			)
			metrics.RecordReportProcessed(src.Name(), "process_error")
			return err
		}
	}

	metrics.RecordReportProcessed(src.Name(), "success")
	logger.Info("Successfully processed reports",
		"source", src.Name(),
		"count", len(reports),
	)

	return nil
}

// processBatch turns a batch of raw reports into stored issues and then
// refreshes the risk prediction for every affected area.
func (p *Pipeline) processBatch(ctx context.Context, sourceName string, reports []models.Report) error {
	issues := make([]models.Issue, 0, len(reports))
	for _, report := range reports {
		issue, ok := p.buildIssue(sourceName, report)
		if !ok {
			continue
		}
		issues = append(issues, issue)
	}

	if len(issues) == 0 {
		return nil
	}

	if err := p.store.UpsertIssues(ctx, issues); err != nil {
		return fmt.Errorf("store issues: %w", err)
	}

	p.refreshPredictions(ctx, issues)
	return nil
}

// buildIssue runs one report through cleaning, classification, sentiment
// analysis, and area resolution.
func (p *Pipeline) buildIssue(sourceName string, report models.Report) (models.Issue, bool) {
	clean := preprocess.CleanText(report.Text)
	if clean == "" {
		return models.Issue{}, false
	}

	result := p.classifier.Classify(clean)
	profile := p.analyzer.Analyze(clean)
	area := areas.Resolve(clean)

	source := report.Source
	if source == "" {
		source = sourceName
	}

	now := time.Now().UTC()
	return models.Issue{
		// Hash on source plus cleaned text so duplicate submissions land
		// on the same row.
		ID:         utils.HashString(source + "|" + clean),
		Type:       result.Category,
		AreaName:   area,
		Source:     source,
		RawText:    report.Text,
		Severity:   profile.SeverityScore,
		Confidence: result.Confidence,
		Urgency:    profile.Urgency,
		Language:   profile.Language,
		Status:     "pending",
		Metadata:   report.Metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, true
}

// refreshPredictions recomputes risk for every area touched by the batch.
// A failure in one area never blocks the others.
func (p *Pipeline) refreshPredictions(ctx context.Context, issues []models.Issue) {
	type areaState struct {
		maxSeverity float64
		types       map[string]int
	}
	touched := map[string]*areaState{}
	for _, issue := range issues {
		st, ok := touched[issue.AreaName]
		if !ok {
			st = &areaState{types: map[string]int{}}
			touched[issue.AreaName] = st
		}
		if issue.Severity > st.maxSeverity {
			st.maxSeverity = issue.Severity
		}
		st.types[issue.Type]++
	}

	for area, st := range touched {
		if err := p.predictArea(ctx, area, st.maxSeverity, dominantType(st.types)); err != nil {
			logger.Error("Risk computation failed", "area", area, "error", err)
		}
	}
}

func (p *Pipeline) predictArea(ctx context.Context, area string, nlpScore float64, eventType string) error {
	start := time.Now()
	defer func() {
		metrics.RecordRiskComputation(area, time.Since(start))
	}()

	signals, err := p.signals.Gather(ctx, area)
	if err != nil {
		logger.Warn("Signal gathering failed; fusing report signal only", "area", area, "error", err)
		signals = fusion.SignalSet{}
	}
	signals[fusion.SignalNLP] = nlpScore

	assessment := p.engine.CalculateRisk(signals)

	prediction := models.Prediction{
		ID:          uuid.NewString(),
		EventType:   eventType,
		AreaName:    area,
		Probability: assessment.FinalRisk,
		ETAHours:    etaHours(assessment.ETA),
		Confidence:  assessment.CorrelationBoost + 0.7,
		Reasons:     assessment.Reasons,
		Breakdown:   assessment.Breakdown,
		CreatedAt:   time.Now().UTC(),
	}

	if err := p.store.UpsertPredictions(ctx, []models.Prediction{prediction}); err != nil {
		return fmt.Errorf("store prediction: %w", err)
	}

	if p.cache != nil {
		if err := p.cache.InvalidateArea(ctx, area); err != nil {
			logger.Warn("Cache invalidation failed", "area", area, "error", err)
		}
	}

	logger.Debug("Prediction refreshed",
		"area", area,
		"risk", assessment.FinalRisk,
		"level", assessment.Level,
	)
	return nil
}

// IsRunning returns whether the pipeline is currently running
func (p *Pipeline) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func dominantType(counts map[string]int) string {
	best := ""
	bestCount := -1
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best
}

func etaHours(eta string) float64 {
	switch eta {
	case "1 hour":
		return 1
	case "3 hours":
		return 3
	default:
		return 0
	}
}

// storeSignalProvider derives a history signal from stored issue volume.
// The remaining external signals stay absent so fusion imputes or zeroes
// them.
type storeSignalProvider struct {
	store Store
}
func (s *storeSignalProvider) Gather(ctx context.Context, area string) (fusion.SignalSet, error) {
	since := time.Now().UTC().Add(-7 * 24 * time.Hour)
	issues, err := s.store.QueryIssues(ctx, models.IssueQuery{
		Areas: []string{area},
		Since: since,
	})
	if err != nil {
		return nil, err
	}

	// Twenty issues in a week saturates the history signal.
	history := utils.Clamp01(float64(len(issues)) / 20)
	return fusion.SignalSet{fusion.SignalHistory: history}, nil
}
