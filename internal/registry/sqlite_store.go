package registry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pawfeeds/companion/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	device_id TEXT NOT NULL DEFAULT '',
	camera_address TEXT NOT NULL DEFAULT '',
	feeder_address TEXT NOT NULL DEFAULT '',
	online INTEGER NOT NULL DEFAULT 0,
	container_weight_grams REAL NOT NULL DEFAULT 0,
	profiles TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLiteStore persists the registry in a single-table SQLite database. The
// nested profile/schedule tree is stored as a JSON column; the registry
// contract is whole-list load/save, so there is nothing to join on.
type SQLiteStore struct {
	path string
	db   *sql.DB
	log  *zap.Logger
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path, log: zap.NewNop()}
}

// WithLogger attaches a logger for auto-repair events.
func (s *SQLiteStore) WithLogger(log *zap.Logger) *SQLiteStore {
	if log != nil {
		s.log = log
	}
	return s
}

func (s *SQLiteStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("registry already initialized at %s", s.path)
	}
	if err := s.open(); err != nil {
		return err
	}
	if err := s.Save(DefaultSlots()); err != nil {
		return err
	}
	return s.SaveSettings(DefaultSettings())
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open registry database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create registry schema: %w", err)
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Load() ([]models.FeederSlot, error) {
	if err := s.open(); err != nil {
		s.log.Warn("registry database unusable, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		return DefaultSlots(), nil
	}

	rows, err := s.db.Query(`SELECT id, name, device_id, camera_address, feeder_address,
		online, container_weight_grams, profiles FROM slots ORDER BY id`)
	if err != nil {
		s.log.Warn("registry query failed, using defaults",
			zap.String("path", s.path),
			zap.Error(err))
		return DefaultSlots(), nil
	}
	defer rows.Close()

	var slots []models.FeederSlot
	for rows.Next() {
		var slot models.FeederSlot
		var online int
		var profiles string
		if err := rows.Scan(&slot.ID, &slot.Name, &slot.DeviceID, &slot.CameraAddress,
			&slot.FeederAddress, &online, &slot.ContainerWeightGrams, &profiles); err != nil {
			s.log.Warn("dropping unscannable registry row",
				zap.String("path", s.path),
				zap.Error(err))
			continue
		}
		slot.Online = online != 0
		if err := json.Unmarshal([]byte(profiles), &slot.Profiles); err != nil {
			s.log.Warn("slot has corrupt profile data, resetting",
				zap.Int("slot", slot.ID),
				zap.Error(err))
			slot.Profiles = nil
		}
		slots = append(slots, slot)
	}

	if len(slots) == 0 {
		slots = DefaultSlots()
		_ = s.Save(slots)
		return slots, nil
	}

	if repairSlots(slots) {
		_ = s.Save(slots)
	}
	return slots, nil
}

func (s *SQLiteStore) Save(slots []models.FeederSlot) error {
	if err := s.open(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin registry save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM slots`); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}
	for _, slot := range slots {
		profiles, err := json.Marshal(slot.Profiles)
		if err != nil {
			return fmt.Errorf("failed to serialize profiles for slot %d: %w", slot.ID, err)
		}
		online := 0
		if slot.Online {
			online = 1
		}
		if _, err := tx.Exec(`INSERT INTO slots (id, name, device_id, camera_address,
			feeder_address, online, container_weight_grams, profiles)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			slot.ID, slot.Name, slot.DeviceID, slot.CameraAddress,
			slot.FeederAddress, online, slot.ContainerWeightGrams, string(profiles)); err != nil {
			return fmt.Errorf("failed to save slot %d: %w", slot.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Settings() Settings {
	if err := s.open(); err != nil {
		return DefaultSettings()
	}

	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'settings'`).Scan(&raw)
	if err != nil {
		return DefaultSettings()
	}
	var settings Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultSettings()
	}
	return settings
}

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	if err := s.open(); err != nil {
		return err
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO settings (key, value) VALUES ('settings', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, string(raw))
	return err
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
