package download

import (
	"context"
	"time"

	"github.com/ytget/downbad/internal/model"
)

// MaxEstimatedProgress caps elapsed-time estimates below completion
const MaxEstimatedProgress = 95.0

// Estimate refreshes the estimated progress of downloading records that have
// not reported a parsed percentage. Parsed progress is never touched.
func (t *Tracker) Estimate(now time.Time) {
	t.mu.Lock()
	if t.estimate <= 0 {
		t.mu.Unlock()
		return
	}

	var changed []model.Record
	for _, id := range t.order {
		e := t.records[id]
		if e.rec.Status != model.StatusDownloading || e.rec.ProgressMode == model.ProgressParsed || e.rec.StartedAt.IsZero() {
			continue
		}

		pct := float64(now.Sub(e.rec.StartedAt)) / float64(t.estimate) * 100
		pct = max(0, min(pct, MaxEstimatedProgress))
		if e.rec.ProgressMode == model.ProgressEstimated && pct == e.rec.EstimatedProgress {
			continue
		}

		e.rec.EstimatedProgress = pct
		e.rec.ProgressMode = model.ProgressEstimated
		e.rec.UpdatedAt = now
		changed = append(changed, e.rec)
	}
	callback := t.onUpdate
	t.mu.Unlock()

	if callback == nil {
		return
	}
	for _, rec := range changed {
		callback(rec)
	}
}

// RunEstimator calls Estimate every interval until ctx is done
func (t *Tracker) RunEstimator(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Estimate(now)
		}
	}
}
