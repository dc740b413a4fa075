package trigger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pawfeeds/companion/internal/dispatch"
	"github.com/pawfeeds/companion/internal/models"
	"github.com/pawfeeds/companion/internal/registry"
)

type fakeCall struct {
	target dispatch.Target
	grams  int
}

type fakeTransport struct {
	mu    sync.Mutex
	calls []fakeCall
	fail  bool
}

func (f *fakeTransport) Dispatch(_ context.Context, target dispatch.Target, grams int) dispatch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{target, grams})
	if f.fail {
		return dispatch.Result{Message: "boom"}
	}
	return dispatch.Result{OK: true, Message: "ok"}
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var everyDay = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// testEngine builds an engine over a temp JSON registry whose first slot has
// one schedule at 08:00 and a LAN address.
func testEngine(t *testing.T, mutate func([]models.FeederSlot)) (*Engine, registry.Provider, *fakeTransport, *time.Time) {
	t.Helper()

	store := registry.NewJSONStore(filepath.Join(t.TempDir(), "registry.json"))
	slots, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	slots[0].FeederAddress = "192.168.1.42"
	slots[0].Profiles[0].Schedules = []models.FeedingSchedule{
		{
			ID:           "s1",
			Name:         "Breakfast",
			TimeOfDay:    "08:00",
			Enabled:      true,
			Days:         everyDay,
			PortionGrams: 90,
		},
	}
	if mutate != nil {
		mutate(slots)
	}
	if err := store.Save(slots); err != nil {
		t.Fatal(err)
	}

	clock := time.Date(2026, 3, 4, 7, 59, 0, 0, time.Local) // a Wednesday
	transport := &fakeTransport{}
	engine := New(Config{
		Store: store,
		Local: transport,
		Now:   func() time.Time { return clock },
	})
	return engine, store, transport, &clock
}

func TestTick_FiresExactlyOncePerDay(t *testing.T) {
	engine, _, transport, clock := testEngine(t, nil)
	ctx := context.Background()

	// Ticks every 10s from 07:59 to 09:00, like the real loop but with a
	// simulated clock.
	var firedAt time.Time
	end := clock.Add(61 * time.Minute)
	for clock.Before(end) {
		before := transport.callCount()
		engine.Tick(ctx)
		if transport.callCount() > before && firedAt.IsZero() {
			firedAt = *clock
		}
		*clock = clock.Add(10 * time.Second)
	}

	if got := transport.callCount(); got != 1 {
		t.Fatalf("dispatched %d times over the hour, want exactly 1", got)
	}
	eight := time.Date(2026, 3, 4, 8, 0, 0, 0, time.Local)
	if firedAt.Before(eight) {
		t.Errorf("fired at %v, before the scheduled 08:00", firedAt)
	}
	if transport.calls[0].grams != 90 {
		t.Errorf("dispatched %dg, want 90", transport.calls[0].grams)
	}
	if transport.calls[0].target.FeederAddress != "192.168.1.42" {
		t.Errorf("target = %+v", transport.calls[0].target)
	}
}

func TestTick_FiresAgainNextDay(t *testing.T) {
	engine, _, transport, clock := testEngine(t, nil)
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 0, 5, 0, time.Local)
	engine.Tick(ctx)
	*clock = time.Date(2026, 3, 4, 20, 0, 0, 0, time.Local)
	engine.Tick(ctx)
	if got := transport.callCount(); got != 1 {
		t.Fatalf("same-day re-fire: %d calls, want 1", got)
	}

	*clock = time.Date(2026, 3, 5, 8, 0, 5, 0, time.Local)
	engine.Tick(ctx)
	if got := transport.callCount(); got != 2 {
		t.Errorf("next-day fire: %d calls, want 2", got)
	}
}

func TestTick_FailedDispatchDoesNotRetry(t *testing.T) {
	engine, store, transport, clock := testEngine(t, nil)
	transport.fail = true
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 0, 5, 0, time.Local)
	engine.Tick(ctx)
	*clock = clock.Add(30 * time.Second)
	engine.Tick(ctx)

	if got := transport.callCount(); got != 1 {
		t.Errorf("failed dispatch retried: %d calls, want 1", got)
	}

	slots, _ := store.Load()
	if got := slots[0].Profiles[0].Schedules[0].LastTriggered; got != "2026-03-04" {
		t.Errorf("day gate = %q, want 2026-03-04", got)
	}
	if slots[0].Online {
		t.Error("failed LAN dispatch should mark the slot offline")
	}
}

func TestTick_UnreachableSlotIsSkippedOncePerDay(t *testing.T) {
	engine, store, transport, clock := testEngine(t, func(slots []models.FeederSlot) {
		slots[0].FeederAddress = "" // no LAN address, no device id
	})
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 1, 0, 0, time.Local)
	engine.Tick(ctx)
	engine.Tick(ctx)

	if got := transport.callCount(); got != 0 {
		t.Errorf("unreachable slot dispatched %d times, want 0", got)
	}
	slots, _ := store.Load()
	if got := slots[0].Profiles[0].Schedules[0].LastTriggered; got != "2026-03-04" {
		t.Errorf("skipped entry must still be day-gated, got %q", got)
	}
}

func TestTick_ZeroPortionSkipsDispatch(t *testing.T) {
	engine, _, transport, clock := testEngine(t, func(slots []models.FeederSlot) {
		slots[0].Profiles[0].Schedules[0].PortionGrams = 0
	})
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 1, 0, 0, time.Local)
	engine.Tick(ctx)
	if got := transport.callCount(); got != 0 {
		t.Errorf("zero-portion schedule dispatched %d times, want 0", got)
	}
}

func TestTick_PortionOverrideWins(t *testing.T) {
	engine, _, transport, clock := testEngine(t, func(slots []models.FeederSlot) {
		slots[0].Profiles[0].PortionOverrideGrams = 120
	})
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 1, 0, 0, time.Local)
	engine.Tick(ctx)
	if transport.callCount() != 1 || transport.calls[0].grams != 120 {
		t.Errorf("calls = %+v, want one call of 120g", transport.calls)
	}
}

func TestTick_RespectsWeekdays(t *testing.T) {
	engine, _, transport, clock := testEngine(t, func(slots []models.FeederSlot) {
		slots[0].Profiles[0].Schedules[0].Days = []time.Weekday{time.Saturday}
	})
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 1, 0, 0, time.Local) // Wednesday
	engine.Tick(ctx)
	if got := transport.callCount(); got != 0 {
		t.Errorf("Saturday schedule fired on a Wednesday (%d calls)", got)
	}

	*clock = time.Date(2026, 3, 7, 8, 1, 0, 0, time.Local) // Saturday
	engine.Tick(ctx)
	if got := transport.callCount(); got != 1 {
		t.Errorf("Saturday schedule on Saturday: %d calls, want 1", got)
	}
}

func TestTick_DisabledScheduleNeverFires(t *testing.T) {
	engine, _, transport, clock := testEngine(t, func(slots []models.FeederSlot) {
		slots[0].Profiles[0].Schedules[0].Enabled = false
	})
	ctx := context.Background()

	*clock = time.Date(2026, 3, 4, 8, 1, 0, 0, time.Local)
	engine.Tick(ctx)
	if got := transport.callCount(); got != 0 {
		t.Errorf("disabled schedule fired (%d calls)", got)
	}
}

func TestClockMinutes(t *testing.T) {
	if m, ok := clockMinutes("08:30"); !ok || m != 510 {
		t.Errorf("clockMinutes(08:30) = %d, %v", m, ok)
	}
	if _, ok := clockMinutes("25:99"); ok {
		t.Error("clockMinutes accepted an invalid time")
	}
	if _, ok := clockMinutes(""); ok {
		t.Error("clockMinutes accepted an empty time")
	}
}
