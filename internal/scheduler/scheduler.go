package scheduler

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/metrics"
	"github.com/glucodeck/glucodeck/internal/models"
	"github.com/glucodeck/glucodeck/internal/render"
)

const (
	// defaultFetchInterval caps how long the loop ever waits between polls.
	defaultFetchInterval = 30 * time.Second
	// retryInterval applies after any primary fetch failure.
	retryInterval = 60 * time.Second
	// renderInterval keeps the elapsed-time label moving without new data.
	renderInterval = 60 * time.Second
	// arrivalBuffer pads the bucket-based estimate of the next reading.
	arrivalBuffer = 15 * time.Second
	// maxEstimateAhead discards estimates too far out to be plausible.
	maxEstimateAhead = 5 * time.Minute

	longPressThreshold = 500 * time.Millisecond

	// The remote emits one sample per five minutes nominally.
	sampleMinutes = 5
)

// HistoryCount is how many samples cover the configured window.
func HistoryCount(hours int) int {
	return int(math.Ceil(float64(hours) * 60 / sampleMinutes))
}

// NextFetchDelay computes the wait until the next poll. The default is 30s;
// when the snapshot's most recent bucket suggests a reading will land sooner,
// the delay shrinks to meet it. Estimates in the past or more than five
// minutes out are ignored. The loop never waits longer than the default.
func NextFetchDelay(snap *models.Snapshot, now time.Time) time.Duration {
	if snap == nil || len(snap.Buckets) == 0 {
		return defaultFetchInterval
	}
	b := snap.Buckets[0]
	estimate := b.End().Add(b.Duration()).Add(arrivalBuffer)
	until := estimate.Sub(now)
	if until <= 0 || until > maxEstimateAhead {
		return defaultFetchInterval
	}
	if until < defaultFetchInterval {
		return until
	}
	return defaultFetchInterval
}

// FetchAndRender is the per-instance poll cycle: fetch the snapshot and
// history, store them, render, and schedule the next cycle. Pending timers
// are cancelled on entry so overlapping scheduled calls never stack up.
// force records caller intent only; network and scheduling behavior are
// identical either way.
func (r *Registry) FetchAndRender(id string, s config.Settings, force bool) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	stopTimer(&inst.fetchTimer)
	stopTimer(&inst.renderTimer)
	r.mu.Unlock()

	log := r.logger.WithFields(logrus.Fields{"context": id, "force": force})

	if s.URL == "" {
		log.Info("No base URL configured, instance idle until settings change")
		return
	}

	client := r.clients(s)
	ctx := context.Background()

	start := time.Now()
	snap, err := client.FetchSnapshot(ctx)
	metrics.FetchDuration.WithLabelValues("properties").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Fetches.WithLabelValues("properties", "error").Inc()
		log.WithError(err).Error("Snapshot fetch failed")
		if alertErr := r.host.ShowAlert(id); alertErr != nil {
			log.WithError(alertErr).Warn("Failed to show alert")
		}
		r.scheduleFetch(id, s, retryInterval)
		return
	}
	metrics.Fetches.WithLabelValues("properties", "ok").Inc()

	start = time.Now()
	entries, histErr := client.FetchEntries(ctx, HistoryCount(s.GraphHours))
	metrics.FetchDuration.WithLabelValues("entries").Observe(time.Since(start).Seconds())
	if histErr != nil {
		metrics.Fetches.WithLabelValues("entries", "error").Inc()
	} else {
		metrics.Fetches.WithLabelValues("entries", "ok").Inc()
	}

	r.mu.Lock()
	inst, ok = r.instances[id]
	if !ok {
		// Destroyed while the requests were in flight.
		r.mu.Unlock()
		return
	}
	inst.snapshot = snap
	if histErr != nil {
		// Stale-but-available: graph mode keeps showing the previous series.
		log.WithError(histErr).Warn("History fetch failed, keeping previous history")
	} else {
		inst.history = entries
	}
	r.mu.Unlock()

	r.Render(id, s)
	r.scheduleFetch(id, s, NextFetchDelay(snap, time.Now()))
}

// Render draws the instance's current face from stored data and reschedules
// itself so the elapsed-time label stays current. Safe to call with or
// without fresh data; a missing instance or empty snapshot is a no-op.
func (r *Registry) Render(id string, s config.Settings) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	if !ok || inst.snapshot == nil {
		r.mu.Unlock()
		return
	}
	mode := inst.mode
	snap := inst.snapshot
	history := inst.history
	r.mu.Unlock()

	var markup string
	switch mode {
	case ModeGraph:
		markup = render.Graph(snap, history, s, time.Now())
	default:
		markup = render.Number(snap, s, time.Now())
	}
	metrics.Renders.WithLabelValues(mode.String()).Inc()

	if err := r.host.SetImage(id, r.encoder.DataURI(markup)); err != nil {
		// Render problems never feed back into fetch scheduling.
		r.logger.WithError(err).WithField("context", id).Error("Failed to set image")
	}

	r.scheduleRender(id, s, renderInterval)
}

func (r *Registry) scheduleFetch(id string, s config.Settings, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return
	}
	stopTimer(&inst.fetchTimer)
	inst.fetchDelay = d
	inst.fetchTimer = time.AfterFunc(d, func() {
		r.FetchAndRender(id, s, false)
	})
}

func (r *Registry) scheduleRender(id string, s config.Settings, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return
	}
	stopTimer(&inst.renderTimer)
	inst.renderTimer = time.AfterFunc(d, func() {
		r.Render(id, s)
	})
}
