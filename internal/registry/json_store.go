package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pawfeeds/companion/internal/models"
)

type document struct {
	Version  int                 `json:"version"`
	Settings Settings            `json:"settings"`
	Slots    []models.FeederSlot `json:"slots"`
}

func defaultDocument() *document {
	return &document{
		Version:  1,
		Settings: DefaultSettings(),
		Slots:    DefaultSlots(),
	}
}

// JSONStore persists the registry as a single JSON document.
type JSONStore struct {
	path string
	doc  *document
	log  *zap.Logger
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path, log: zap.NewNop()}
}

// WithLogger attaches a logger for auto-repair events.
func (s *JSONStore) WithLogger(log *zap.Logger) *JSONStore {
	if log != nil {
		s.log = log
	}
	return s
}

func (s *JSONStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("registry already initialized at %s", s.path)
	}

	s.doc = defaultDocument()
	return s.persist()
}

// load reads the document from disk into memory, falling back to the
// defaults on a missing or corrupt file. Every accessor goes through here,
// so a fresh store sees persisted state no matter which call comes first.
func (s *JSONStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// Missing (or unreadable) store: fall back to the defaults and
		// try to persist them so the next load finds a real file.
		s.doc = defaultDocument()
		_ = s.persist()
		return
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		// Corrupt store: auto-repair by rewriting the defaults.
		s.log.Warn("registry document is corrupt, rewriting defaults",
			zap.String("path", s.path),
			zap.Error(err))
		s.doc = defaultDocument()
		_ = s.persist()
		return
	}
	if doc.Settings == (Settings{}) {
		doc.Settings = DefaultSettings()
	}
	s.doc = doc

	if repairSlots(s.doc.Slots) {
		_ = s.persist()
	}
}

func (s *JSONStore) Load() ([]models.FeederSlot, error) {
	s.load()
	return s.doc.Slots, nil
}

func (s *JSONStore) Save(slots []models.FeederSlot) error {
	if s.doc == nil {
		s.load()
	}
	s.doc.Slots = slots
	return s.persist()
}

func (s *JSONStore) Settings() Settings {
	if s.doc == nil {
		s.load()
	}
	return s.doc.Settings
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	if s.doc == nil {
		s.load()
	}
	s.doc.Settings = settings
	return s.persist()
}

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) persist() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize registry: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}
