package resource

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/streamlift/panel_core/internal/logging"
)

// Revalidator periodically marks refresh-on-focus families stale, the
// scheduled counterpart of a browser tab regaining focus. List screens
// pick up backend changes within one period without any user action.
type Revalidator struct {
	cron *cron.Cron
	log  *logging.Logger
}

// NewRevalidator schedules NotifyFocus on the cache with the given cron
// spec (e.g. "@every 1m").
func NewRevalidator(cache *Cache, spec string, log *logging.Logger) (*Revalidator, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		cache.NotifyFocus()
		log.Debug().Str("schedule", spec).Msg("marked focus-refresh families stale")
	})
	if err != nil {
		return nil, fmt.Errorf("schedule revalidation %q: %w", spec, err)
	}
	return &Revalidator{cron: c, log: log}, nil
}

// Start begins the schedule.
func (r *Revalidator) Start() {
	r.cron.Start()
}

// Stop halts the schedule, waiting for a running tick to finish.
func (r *Revalidator) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
