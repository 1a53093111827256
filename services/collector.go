package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"basket-prices/catalog"
	"basket-prices/config"
	"basket-prices/metrics"
	"basket-prices/models"
	"basket-prices/storage"
	"basket-prices/utils"
)

const defaultPersistGrace = 30 * time.Second

// Fetcher runs one paginated search for a (term, market) pair. Failures are
// absorbed and reported as an empty result.
type Fetcher interface {
	Fetch(ctx context.Context, req models.SearchRequest) []models.PriceRecord
}

// CollectorOptions tunes a Collector.
type CollectorOptions struct {
	Token          string
	MarketTimeout  time.Duration
	MaxConcurrency int
	// PersistGrace bounds the upsert of a partial batch after a market timed out.
	PersistGrace time.Duration
}

// CollectorOptionsFromConfig maps application config onto CollectorOptions.
func CollectorOptionsFromConfig(cfg *config.Config) CollectorOptions {
	return CollectorOptions{
		Token:          cfg.EconomizaToken,
		MarketTimeout:  cfg.MarketTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
	}
}

// CollectRequest selects what a collection run covers. An empty market list
// means every known market.
type CollectRequest struct {
	MarketTaxIDs []string `json:"selected_markets"`
	LookbackDays int      `json:"lookback_days"`
}

// Collector orchestrates collection runs: markets one after another, all
// catalog terms of a market concurrently.
type Collector struct {
	fetcher Fetcher
	markets storage.MarketStore
	prices  storage.PriceStore
	jobs    storage.JobStore
	tracker *ProgressTracker
	mirror  storage.ProgressPublisher
	logger  *utils.Logger
	metrics *metrics.Metrics
	opts    CollectorOptions
	terms   []string
	now     func() time.Time
}

// NewCollector wires a Collector. It queries the full product catalog unless
// WithTerms overrides it.
func NewCollector(
	fetcher Fetcher,
	markets storage.MarketStore,
	prices storage.PriceStore,
	jobs storage.JobStore,
	tracker *ProgressTracker,
	opts CollectorOptions,
	logger *utils.Logger,
	m *metrics.Metrics,
) *Collector {
	if opts.PersistGrace <= 0 {
		opts.PersistGrace = defaultPersistGrace
	}
	return &Collector{
		fetcher: fetcher,
		markets: markets,
		prices:  prices,
		jobs:    jobs,
		tracker: tracker,
		logger:  logger,
		metrics: m,
		opts:    opts,
		terms:   catalog.Terms(),
		now:     time.Now,
	}
}

// WithMirror publishes every progress change to p.
func (c *Collector) WithMirror(p storage.ProgressPublisher) *Collector {
	c.mirror = p
	return c
}

// WithTerms replaces the product catalog queried for each market.
func (c *Collector) WithTerms(terms []string) *Collector {
	c.terms = catalog.Prepare(terms)
	return c
}

func (c *Collector) Tracker() *ProgressTracker {
	return c.tracker
}

// Progress returns a snapshot of the current or last run.
func (c *Collector) Progress() models.ProgressSnapshot {
	return c.tracker.Snapshot()
}

// Start launches a run in the background and returns its job id. Only the
// single-flight guard can make it fail; everything after that is reported
// through the job record and the tracker.
func (c *Collector) Start(ctx context.Context, req CollectRequest) (string, error) {
	job, err := c.begin(req)
	if err != nil {
		return "", err
	}

	go c.execute(context.WithoutCancel(ctx), job)
	return job.ID, nil
}

// Run executes a whole collection synchronously and returns the final job.
func (c *Collector) Run(ctx context.Context, req CollectRequest) (*models.CollectionJob, error) {
	job, err := c.begin(req)
	if err != nil {
		return nil, err
	}

	c.execute(ctx, job)
	return job, nil
}

func (c *Collector) begin(req CollectRequest) (*models.CollectionJob, error) {
	days := req.LookbackDays
	if !models.ValidLookback(days) {
		c.logger.Warn("[collector] Invalid lookback of %d days, using %d", days, models.DefaultLookbackDays)
		days = models.DefaultLookbackDays
	}

	id := uuid.NewString()
	if err := c.tracker.Begin(id, days, len(c.terms)); err != nil {
		return nil, err
	}

	requested := append([]string{}, req.MarketTaxIDs...)
	return &models.CollectionJob{
		ID:               id,
		RequestedMarkets: requested,
		LookbackDays:     days,
		Status:           models.JobRunning,
		Breakdown:        []models.MarketBreakdown{},
		StartedAt:        c.now(),
	}, nil
}

func (c *Collector) execute(ctx context.Context, job *models.CollectionJob) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(ctx, job, fmt.Errorf("panic: %v", r))
		}
	}()

	c.logger.Info("[collector] Job %s started - lookback %d days - %d terms",
		job.ID, job.LookbackDays, len(c.terms))

	if err := c.jobs.CreateJob(ctx, job); err != nil {
		c.fail(ctx, job, fmt.Errorf("create job record: %w", err))
		return
	}
	c.publish(ctx)

	markets, err := c.markets.ListMarkets(ctx, job.RequestedMarkets)
	if err != nil {
		c.fail(ctx, job, fmt.Errorf("resolve markets: %w", err))
		return
	}
	if len(markets) == 0 {
		c.fail(ctx, job, fmt.Errorf("no markets found for the request: %w", models.ErrNotFound))
		return
	}

	c.tracker.SetMarkets(len(markets))
	c.publish(ctx)

	for _, m := range markets {
		if err := ctx.Err(); err != nil {
			c.fail(ctx, job, fmt.Errorf("collection cancelled: %w", err))
			return
		}

		b := c.collectMarket(ctx, job, m)
		job.Breakdown = append(job.Breakdown, b)
		job.TotalItemsSaved += b.ItemsFound
		c.tracker.FinishMarket(b)

		if err := c.jobs.UpdateJob(ctx, job); err != nil {
			c.logger.Warn("[collector] Could not persist progress of job %s: %v", job.ID, err)
		}
		c.publish(ctx)
	}

	finished := c.now()
	job.Status = models.JobCompleted
	job.FinishedAt = &finished
	if err := c.jobs.UpdateJob(ctx, job); err != nil {
		c.logger.Error("[collector] Could not finalize job %s: %v", job.ID, err)
	}

	c.tracker.Complete(job.TotalItemsSaved)
	c.metrics.JobFinished(string(models.JobCompleted))
	c.publish(ctx)

	c.logger.Info("[collector] Job %s completed - %d markets - %d items saved in %v",
		job.ID, len(markets), job.TotalItemsSaved, finished.Sub(job.StartedAt).Round(time.Second))
}

// collectMarket fans every term out for one market, then upserts the
// deduplicated batch. On timeout whatever was already aggregated is saved.
func (c *Collector) collectMarket(ctx context.Context, job *models.CollectionJob, m models.Market) models.MarketBreakdown {
	start := c.now()
	c.tracker.EnterMarket(m)
	c.publish(ctx)

	mctx, cancel := c.marketContext(ctx)
	defer cancel()

	batch := utils.NewKeyedSet[models.PriceRecord]()
	pool := utils.NewWorkerPool(c.opts.MaxConcurrency, 0)

	for _, term := range c.terms {
		pool.Submit(mctx, func(ctx context.Context) {
			records := c.fetch(ctx, models.SearchRequest{
				Term:         term,
				Market:       m,
				LookbackDays: job.LookbackDays,
				Token:        c.opts.Token,
				JobID:        job.ID,
			})
			if ctx.Err() != nil {
				return
			}
			for _, r := range records {
				batch.Put(r.Fingerprint, r)
			}
			c.tracker.ProductDone(m.TaxID, term, len(records))
		})
	}

	timedOut := false
	select {
	case <-pool.Done():
	case <-mctx.Done():
		timedOut = errors.Is(mctx.Err(), context.DeadlineExceeded)
	}

	records := batch.Values()
	if timedOut {
		c.logger.Error("[collector] %v: %s exceeded %v, keeping %d records",
			models.ErrUpstreamTimeout, m.Name, c.opts.MarketTimeout, len(records))
	}

	persistCtx := mctx
	if mctx.Err() != nil {
		var cancelPersist context.CancelFunc
		persistCtx, cancelPersist = context.WithTimeout(context.WithoutCancel(ctx), c.opts.PersistGrace)
		defer cancelPersist()
	}

	saved := 0
	var persistErr error
	if len(records) > 0 {
		saved, persistErr = c.prices.UpsertRecords(persistCtx, records)
	}

	elapsed := c.now().Sub(start)
	b := models.MarketBreakdown{
		MarketTaxID:     m.TaxID,
		MarketName:      m.Name,
		ItemsFound:      saved,
		DurationSeconds: round2(elapsed.Seconds()),
		LookbackDays:    job.LookbackDays,
		TimedOut:        timedOut,
	}

	switch {
	case persistErr != nil:
		b.Error = persistErr.Error()
		c.logger.Error("[collector] Saving %s failed after %d records: %v", m.Name, saved, persistErr)
	case timedOut:
		b.Error = models.ErrUpstreamTimeout.Error()
	default:
		c.logger.Info("[collector] %s: %d unique records saved in %v (days: %d)",
			m.Name, saved, elapsed.Round(time.Millisecond), job.LookbackDays)
	}

	c.metrics.MarketFinished(m.Name, saved, elapsed, timedOut, persistErr != nil)
	return b
}

// fetch calls the Fetcher, turning a panic into an empty result so the term
// still counts as searched.
func (c *Collector) fetch(ctx context.Context, req models.SearchRequest) (records []models.PriceRecord) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("[collector] Search %q at %s panicked: %v", req.Term, req.Market.Name, r)
			records = nil
		}
	}()
	return c.fetcher.Fetch(ctx, req)
}

func (c *Collector) marketContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.MarketTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.MarketTimeout)
}

func (c *Collector) fail(ctx context.Context, job *models.CollectionJob, err error) {
	msg := err.Error()
	finished := c.now()
	job.Status = models.JobFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &finished

	c.logger.Error("[collector] Job %s failed: %v", job.ID, err)

	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.PersistGrace)
	defer cancel()
	if uerr := c.jobs.UpdateJob(uctx, job); uerr != nil {
		c.logger.Error("[collector] Could not record failure of job %s: %v", job.ID, uerr)
	}

	c.tracker.Fail(err)
	c.metrics.JobFinished(string(models.JobFailed))
	c.publish(uctx)
}

func (c *Collector) publish(ctx context.Context) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Publish(ctx, c.tracker.Snapshot()); err != nil {
		c.logger.Warn("[collector] Progress mirror unavailable: %v", err)
	}
}
