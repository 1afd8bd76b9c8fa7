package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	err = s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{
		"languages", "waypoints", "waypoint_details", "locations", "waypoint_tags",
		"tags", "tag_details", "media", "media_details", "media_files",
		"pages", "page_details",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestFormatTimeOrdersLexicographically(t *testing.T) {
	// A timestamp on an exact second boundary must still sort before a
	// fractional one in the same second as text, which is how ORDER BY
	// compares the column.
	onSecond := time.Date(2024, 6, 1, 12, 0, 5, 0, time.UTC)
	fractional := onSecond.Add(250 * time.Millisecond)

	a, b := formatTime(onSecond), formatTime(fractional)
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}

	back, err := parseTime(a)
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !back.Equal(onSecond) {
		t.Errorf("round trip: got %v, want %v", back, onSecond)
	}
}

// Shared fixtures for the table tests.

func seedLanguage(t *testing.T, s *Store, id, code string, priority int) *domain.Language {
	t.Helper()
	now := time.Now()
	l := &domain.Language{
		ID:        id,
		Code:      code,
		Name:      code,
		Priority:  &priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateLanguage(context.Background(), l); err != nil {
		t.Fatalf("seed language %s: %v", code, err)
	}
	return l
}

func seedWaypoint(t *testing.T, s *Store, id string) *domain.Waypoint {
	t.Helper()
	now := time.Now()
	w := &domain.Waypoint{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateWaypoint(context.Background(), w); err != nil {
		t.Fatalf("seed waypoint %s: %v", id, err)
	}
	return w
}

func seedTag(t *testing.T, s *Store, id string) *domain.Tag {
	t.Helper()
	now := time.Now()
	tag := &domain.Tag{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("seed tag %s: %v", id, err)
	}
	return tag
}

func strp(s string) *string { return &s }

func timep(t time.Time) *time.Time { return &t }
