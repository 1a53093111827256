package services

import (
	"fmt"
	"math"
	"sync"
	"time"

	"basket-prices/models"
)

// runningPercentCap keeps percent_complete below 100 until the job is terminal.
const runningPercentCap = 99.0

// ProgressTracker owns the progress of the single collection run allowed at a
// time. Writers are the running Collector; readers take copies via Snapshot.
type ProgressTracker struct {
	mu           sync.RWMutex
	snap         models.ProgressSnapshot
	currentTaxID string
	startedAt    time.Time
	now          func() time.Time
}

// NewProgressTracker returns an IDLE tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		snap: models.ProgressSnapshot{Status: models.JobIdle, Message: "No collection has run yet"},
		now:  time.Now,
	}
}

// Begin moves the tracker from IDLE or a terminal state to RUNNING. It fails
// with ErrCollectionRunning when a run is already in progress.
func (t *ProgressTracker) Begin(jobID string, lookbackDays, totalProducts int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Status == models.JobRunning {
		return fmt.Errorf("job %s: %w", t.snap.JobID, models.ErrCollectionRunning)
	}

	t.startedAt = t.now()
	started := t.startedAt
	t.currentTaxID = ""
	t.snap = models.ProgressSnapshot{
		Status:        models.JobRunning,
		JobID:         jobID,
		Message:       "Starting collection",
		TotalProducts: totalProducts,
		LookbackDays:  lookbackDays,
		StartedAt:     &started,
	}
	return nil
}

// SetMarkets records how many markets the run will visit.
func (t *ProgressTracker) SetMarkets(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.TotalMarkets = total
	t.snap.Message = fmt.Sprintf("Collecting %d markets - %d days", total, t.snap.LookbackDays)
}

// EnterMarket marks m as the market currently being collected.
func (t *ProgressTracker) EnterMarket(m models.Market) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentTaxID = m.TaxID
	t.snap.CurrentMarket = m.Name
	t.snap.CurrentProduct = ""
	t.snap.ProductsProcessedInMarket = 0
	t.snap.Message = fmt.Sprintf("Collecting %s (%d/%d)", m.Name, t.snap.MarketsProcessed+1, t.snap.TotalMarkets)
}

// ProductDone records a finished term fetch. Late results from a market the
// run already left are ignored.
func (t *ProgressTracker) ProductDone(marketTaxID, term string, found int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if marketTaxID != t.currentTaxID {
		return
	}
	t.snap.CurrentProduct = term
	t.snap.ProductsProcessedInMarket++
	t.snap.ItemsFound += found
}

// FinishMarket appends the market's breakdown and recomputes ETA and percent.
func (t *ProgressTracker) FinishMarket(b models.MarketBreakdown) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.currentTaxID = ""
	t.snap.Breakdown = append(t.snap.Breakdown, b)
	t.snap.TotalItemsSaved += b.ItemsFound
	t.snap.MarketsProcessed++

	processed := t.snap.MarketsProcessed
	total := t.snap.TotalMarkets
	if total < processed {
		total = processed
	}

	elapsed := t.now().Sub(t.startedAt).Seconds()
	perMarket := elapsed / float64(processed)
	t.snap.ETASeconds = int64(math.Round(perMarket * float64(total-processed)))

	pct := float64(processed) / float64(total) * 100
	if pct > runningPercentCap {
		pct = runningPercentCap
	}
	if pct > t.snap.PercentComplete {
		t.snap.PercentComplete = math.Round(pct*10) / 10
	}
	t.snap.Message = fmt.Sprintf("Processed %s (%d/%d) - %d days", b.MarketName, processed, total, b.LookbackDays)
}

// Complete moves the run to COMPLETED.
func (t *ProgressTracker) Complete(totalSaved int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finish(models.JobCompleted, fmt.Sprintf("Collection finished: %d items saved", totalSaved))
	t.snap.TotalItemsSaved = totalSaved
}

// Fail moves the run to FAILED.
func (t *ProgressTracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.finish(models.JobFailed, fmt.Sprintf("Collection failed: %v", err))
}

func (t *ProgressTracker) finish(status models.JobStatus, msg string) {
	finished := t.now()
	t.currentTaxID = ""
	t.snap.Status = status
	t.snap.Message = msg
	t.snap.CurrentMarket = ""
	t.snap.CurrentProduct = ""
	t.snap.ETASeconds = 0
	t.snap.PercentComplete = 100
	t.snap.FinishedAt = &finished
}

// Snapshot returns a copy that is safe to hand to other goroutines.
func (t *ProgressTracker) Snapshot() models.ProgressSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.snap
	if t.snap.Breakdown != nil {
		s.Breakdown = append([]models.MarketBreakdown(nil), t.snap.Breakdown...)
	}
	return s
}
