package registry

import "github.com/pawfeeds/companion/internal/models"

// Settings are the process-wide knobs persisted alongside the slot list.
type Settings struct {
	TickIntervalSec int    `json:"tick_interval_sec"`
	ProbeTimeoutSec int    `json:"probe_timeout_sec"`
	ScanConcurrency int    `json:"scan_concurrency"`
	RelayURL        string `json:"relay_url"`
}

// Provider is the durable feeder registry. Load and Save work on the whole
// slot list; there is no partial update at the storage layer — merge logic
// belongs to callers.
//
// Concurrency note: callers must serialize their own load -> merge -> save
// sequence. The registry guarantees each call is atomic, not that interleaved
// logical operations compose. Running multiple processes against the same
// store is not supported.
type Provider interface {
	// Init creates a fresh store with the built-in defaults. It fails if
	// the store already exists.
	Init() error

	// Load returns the persisted slots. A missing or corrupt store falls
	// back to the built-in defaults instead of failing, and legacy records
	// without ids are repaired and re-persisted once.
	Load() ([]models.FeederSlot, error)

	// Save overwrites the persisted slot list.
	Save([]models.FeederSlot) error

	Settings() Settings
	SaveSettings(Settings) error

	Path() string
	Close() error
}
