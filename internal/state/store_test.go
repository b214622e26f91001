package state

import (
	"testing"

	"github.com/dokzlo13/ledd/internal/calib"
	"github.com/dokzlo13/ledd/internal/color"
	"github.com/dokzlo13/ledd/internal/db"
	"github.com/dokzlo13/ledd/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open() error: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database.DB)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected no snapshot in fresh store, got %+v", loaded)
	}

	snap := engine.Snapshot{
		Source:    "temperature",
		Power:     true,
		Raw:       color.RGB{R: 0.5, G: 0.25, B: 0.125},
		Lightness: 60,
		Chroma:    color.UV{U: 0.3, V: 0.5},
		Kelvin:    2700,
	}
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}

	loaded, err = store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if loaded == nil || *loaded != snap {
		t.Errorf("LoadSnapshot() = %+v, want %+v", loaded, snap)
	}

	// Overwrite keeps a single row.
	snap.Kelvin = 4000
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	loaded, _ = store.LoadSnapshot()
	if loaded == nil || loaded.Kelvin != 4000 {
		t.Errorf("snapshot not overwritten: %+v", loaded)
	}
}

func TestCalibrationRoundTrip(t *testing.T) {
	store := newTestStore(t)

	cal := calib.Default()
	cal.Red.Flux = 0.42
	if err := store.SaveCalibration(cal); err != nil {
		t.Fatalf("SaveCalibration() error: %v", err)
	}

	loaded, err := store.LoadCalibration()
	if err != nil {
		t.Fatalf("LoadCalibration() error: %v", err)
	}
	if loaded == nil || *loaded != cal {
		t.Errorf("LoadCalibration() = %+v, want %+v", loaded, cal)
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveSnapshot(engine.Snapshot{Source: "raw"}); err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if err := store.SaveCalibration(calib.Default()); err != nil {
		t.Fatalf("SaveCalibration() error: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	if snap, _ := store.LoadSnapshot(); snap != nil {
		t.Errorf("snapshot survived Clear(): %+v", snap)
	}
	if cal, _ := store.LoadCalibration(); cal != nil {
		t.Errorf("calibration survived Clear(): %+v", cal)
	}
}
