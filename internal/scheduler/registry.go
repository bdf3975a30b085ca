// Package scheduler owns the per-instance state and the fetch/render timing
// loops. Each live button instance has exactly one record here, created on
// appearance and destroyed on disappearance, holding its display mode, the
// last fetched data and the two pending timers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glucodeck/glucodeck/internal/config"
	"github.com/glucodeck/glucodeck/internal/models"
	"github.com/glucodeck/glucodeck/internal/render"
)

// Mode selects which face an instance renders.
type Mode int

const (
	ModeNumber Mode = iota
	ModeGraph
)

func (m Mode) String() string {
	if m == ModeGraph {
		return "graph"
	}
	return "number"
}

// Host is the outbound surface of the host connection the registry needs.
type Host interface {
	SetImage(context, image string) error
	ShowAlert(context string) error
}

// Fetcher retrieves remote data for one instance's settings.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)
	FetchEntries(ctx context.Context, count int) ([]models.Entry, error)
}

// ClientFactory builds a Fetcher for the given settings. Settings carry the
// base URL and secret, so the client is per-instance, not process-wide.
type ClientFactory func(s config.Settings) Fetcher

type instance struct {
	mode     Mode
	snapshot *models.Snapshot
	history  []models.Entry

	// Zero when no press is recorded; set on key-down, cleared on key-up.
	pressedAt time.Time

	fetchTimer  *time.Timer
	renderTimer *time.Timer

	// Delay the fetch timer was last armed with, kept so the schedule is
	// observable without poking at the opaque timer.
	fetchDelay time.Duration
}

// Registry maps button instance identities to their state. All mutation goes
// through create/lookup/destroy here; no caller reaches into another
// instance's state directly.
type Registry struct {
	mu        sync.Mutex
	instances map[string]*instance

	clients ClientFactory
	host    Host
	encoder *render.Encoder
	logger  *logrus.Logger
}

// NewRegistry wires the registry to its collaborators.
func NewRegistry(clients ClientFactory, host Host, encoder *render.Encoder, logger *logrus.Logger) *Registry {
	return &Registry{
		instances: make(map[string]*instance),
		clients:   clients,
		host:      host,
		encoder:   encoder,
		logger:    logger,
	}
}

// Create registers a fresh instance in number mode and kicks off its first
// fetch. A lingering record under the same identity is torn down first, so
// re-appearance always starts clean.
func (r *Registry) Create(id string, s config.Settings) {
	r.Destroy(id)

	r.mu.Lock()
	r.instances[id] = &instance{mode: ModeNumber}
	r.mu.Unlock()

	r.logger.WithField("context", id).Info("Instance created")
	go r.FetchAndRender(id, s, false)
}

// Destroy cancels both timers and removes the record. Timer callbacks that
// already fired observe the missing record and no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	if ok {
		stopTimer(&inst.fetchTimer)
		stopTimer(&inst.renderTimer)
		delete(r.instances, id)
	}
	r.mu.Unlock()

	if ok {
		r.logger.WithField("context", id).Info("Instance destroyed")
	}
}

// Shutdown tears down every registered instance.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Destroy(id)
	}
}

// Mode reports the current display mode of an instance.
func (r *Registry) Mode(id string) (Mode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[id]
	if !ok {
		return ModeNumber, false
	}
	return inst.mode, true
}

// HandleKeyDown records the press time for later classification.
func (r *Registry) HandleKeyDown(id string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[id]; ok {
		inst.pressedAt = now
	}
}

// HandleKeyUp classifies the press. Holds of at least 500ms force a refresh;
// shorter presses toggle the display mode and re-render from stored data.
// A release without a recorded press is dropped (out-of-order host events).
func (r *Registry) HandleKeyUp(id string, s config.Settings, now time.Time) {
	r.mu.Lock()
	inst, ok := r.instances[id]
	if !ok || inst.pressedAt.IsZero() {
		r.mu.Unlock()
		return
	}
	held := now.Sub(inst.pressedAt)
	inst.pressedAt = time.Time{}

	if held >= longPressThreshold {
		r.mu.Unlock()
		go r.FetchAndRender(id, s, true)
		return
	}

	if inst.mode == ModeNumber {
		inst.mode = ModeGraph
	} else {
		inst.mode = ModeNumber
	}
	r.mu.Unlock()
	r.Render(id, s)
}

// UpdateSettings re-enters the fetch loop with the new configuration.
func (r *Registry) UpdateSettings(id string, s config.Settings) {
	go r.FetchAndRender(id, s, false)
}

// stopTimer stops and clears a pending timer handle in place. Keeping at
// most one pending timer of each kind per instance is the scheduler's only
// concurrency-correctness requirement.
func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
