// Package state persists the engine snapshot and calibration record so the
// fixture resumes its last color after a restart.
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/engine"
)

// Store provides single-row JSON storage for the engine snapshot and the
// active calibration.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new store on an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveSnapshot upserts the engine snapshot.
func (s *Store) SaveSnapshot(snap engine.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	now := time.Now().UTC().Unix()
	_, err = s.db.Exec(`
		INSERT INTO engine_state (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, string(payload), now)
	return err
}

// LoadSnapshot returns the persisted snapshot, or nil when none is stored.
func (s *Store) LoadSnapshot() (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM engine_state WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// SaveCalibration upserts the calibration record, bumping its version.
func (s *Store) SaveCalibration(cal calib.Calibration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(cal)
	if err != nil {
		return fmt.Errorf("failed to marshal calibration: %w", err)
	}

	now := time.Now().UTC().Unix()
	_, err = s.db.Exec(`
		INSERT INTO calibration (id, payload, version, updated_at)
		VALUES (1, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			version = version + 1,
			updated_at = excluded.updated_at
	`, string(payload), now)
	return err
}

// LoadCalibration returns the persisted calibration, or nil when none is
// stored.
func (s *Store) LoadCalibration() (*calib.Calibration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM calibration WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cal calib.Calibration
	if err := json.Unmarshal([]byte(payload), &cal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calibration: %w", err)
	}
	return &cal, nil
}

// Clear removes the persisted snapshot and calibration.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM engine_state`); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM calibration`)
	return err
}
