package trigger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pawfeeds/companion/internal/dispatch"
	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/registry"
)

type Config struct {
	Store    registry.Provider
	Local    dispatch.Transport
	Cloud    dispatch.Transport
	Interval time.Duration
	Logger   *zap.Logger
	Now      func() time.Time // defaults to time.Now
}

// Engine drives the recurring feed check. On every tick it loads a registry
// snapshot, finds the schedule entries that are due, dispatches them
// concurrently, and saves the snapshot back in one piece.
//
// A schedule fires at most once per calendar day: the day gate is stamped as
// soon as an entry goes due, whether or not the dispatch succeeds. A failed
// feed waits for tomorrow instead of retrying every tick.
type Engine struct {
	store    registry.Provider
	local    dispatch.Transport
	cloud    dispatch.Transport
	interval time.Duration
	log      *zap.Logger
	now      func() time.Time

	mu sync.Mutex // serializes ticks
}

func New(cfg Config) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		store:    cfg.Store,
		local:    cfg.Local,
		cloud:    cfg.Cloud,
		interval: cfg.Interval,
		log:      cfg.Logger,
		now:      cfg.Now,
	}
}

// Run blocks until ctx is cancelled, ticking immediately and then on every
// interval. Ticks run inline in this loop, so a slow tick delays the next
// one instead of overlapping it.
func (e *Engine) Run(ctx context.Context) {
	e.log.Info("trigger engine started", zap.Duration("interval", e.interval))

	e.Tick(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("trigger engine stopped")
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

type job struct {
	slotIdx   int
	slotID    int
	schedule  string
	grams     int
	transport dispatch.Transport
	target    dispatch.Target
}

// Tick runs one scheduling pass. Safe to call directly; concurrent calls are
// serialized.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slots, err := e.store.Load()
	if err != nil {
		e.log.Error("failed to load registry", zap.Error(err))
		return
	}

	now := e.now()
	today := now.Format("2006-01-02")
	day := now.Weekday()
	minutes := now.Hour()*60 + now.Minute()

	var jobs []job
	changed := false

	for si := range slots {
		slot := &slots[si]
		for pi := range slot.Profiles {
			profile := &slot.Profiles[pi]
			for ci := range profile.Schedules {
				sched := &profile.Schedules[ci]
				if !sched.Enabled || !sched.RunsOn(day) {
					continue
				}
				due, ok := clockMinutes(sched.TimeOfDay)
				if !ok {
					e.log.Warn("schedule has unparseable time",
						zap.String("schedule", sched.Name),
						zap.String("time", sched.TimeOfDay))
					continue
				}
				// Threshold, not equality: ticks land between minutes.
				if minutes < due || sched.LastTriggered == today {
					continue
				}

				// Due. The day gate is stamped now, for every terminal
				// state, so this entry cannot fire again until tomorrow.
				sched.LastTriggered = today
				changed = true

				grams := profile.PortionPerFeed(*sched)
				if grams <= 0 {
					e.log.Info("schedule due but portion is zero, skipping",
						zap.String("schedule", sched.Name),
						zap.String("profile", profile.Name),
						zap.Int("slot", slot.ID))
					continue
				}

				transport := dispatch.Select(*slot, e.local, e.cloud)
				if transport == nil {
					e.log.Warn("schedule due but slot is unreachable",
						zap.String("schedule", sched.Name),
						zap.Int("slot", slot.ID))
					continue
				}

				jobs = append(jobs, job{
					slotIdx:   si,
					slotID:    slot.ID,
					schedule:  sched.Name,
					grams:     grams,
					transport: transport,
					target:    dispatch.TargetFor(*slot),
				})
			}
		}
	}

	if len(jobs) > 0 {
		e.dispatchAll(ctx, slots, jobs)
	}

	if changed {
		if err := e.store.Save(slots); err != nil {
			e.log.Error("failed to save registry after tick", zap.Error(err))
		}
	}
}

// dispatchAll fans the due jobs out concurrently and folds the outcomes back
// into the snapshot. Ordering between jobs is unspecified; nothing is shared
// between them until the collect loop.
func (e *Engine) dispatchAll(ctx context.Context, slots []models.FeederSlot, jobs []job) {
	type outcome struct {
		job job
		res dispatch.Result
	}

	results := make(chan outcome, len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			results <- outcome{job: j, res: j.transport.Dispatch(ctx, j.target, j.grams)}
		}(j)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for out := range results {
		// A LAN dispatch doubles as a liveness probe for the slot.
		if out.job.transport == e.local {
			slots[out.job.slotIdx].Online = out.res.OK
		}
		if out.res.OK {
			e.log.Info("feed dispatched",
				zap.String("schedule", out.job.schedule),
				zap.Int("slot", out.job.slotID),
				zap.Int("grams", out.job.grams),
				zap.String("result", out.res.Message))
		} else {
			e.log.Warn("feed dispatch failed",
				zap.String("schedule", out.job.schedule),
				zap.Int("slot", out.job.slotID),
				zap.String("reason", out.res.Message))
		}
	}
}

func clockMinutes(timeStr string) (int, bool) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
