package sqlite

import (
	"context"
	"testing"
	"time"
)

func TestClearWaypointDetailOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedLanguage(t, s, "lng_en", "en", 0)
	seedWaypoint(t, s, "way_1")
	seedWaypoint(t, s, "way_2")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedWaypointDetail(t, s, "det_1", "way_1", "lng_en", "One", timep(base), base)
	seedWaypointDetail(t, s, "det_2", "way_1", "lng_en", "Two", timep(base), base.Add(time.Hour))
	seedWaypointDetail(t, s, "det_3", "way_2", "lng_en", "Three", timep(base), base)

	affected, err := s.ClearWaypointDetailOwners(ctx, "user1")
	if err != nil {
		t.Fatalf("ClearWaypointDetailOwners: %v", err)
	}
	// Two details on way_1, one on way_2: distinct parents only.
	if len(affected) != 2 {
		t.Fatalf("affected: got %v, want 2 waypoints", affected)
	}

	got, err := s.GetWaypointDetailByID(ctx, "det_1")
	if err != nil {
		t.Fatalf("GetWaypointDetailByID: %v", err)
	}
	if got.UserID != nil {
		t.Errorf("expected nil UserID, got %v", *got.UserID)
	}
	// Anonymization must not disturb the canonical ordering clock.
	if !got.UpdatedAt.Equal(base) {
		t.Errorf("UpdatedAt changed: got %v, want %v", got.UpdatedAt, base)
	}

	// Clearing again affects nothing.
	affected, err = s.ClearWaypointDetailOwners(ctx, "user1")
	if err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if len(affected) != 0 {
		t.Errorf("expected no affected waypoints, got %v", affected)
	}
}

func TestClearLocationOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedWaypoint(t, s, "way_1")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedLocation(t, s, "loc_1", "way_1", 52.5, 13.4, timep(base), base)

	affected, err := s.ClearLocationOwners(ctx, "user1")
	if err != nil {
		t.Fatalf("ClearLocationOwners: %v", err)
	}
	if len(affected) != 1 || affected[0] != "way_1" {
		t.Errorf("affected: got %v, want [way_1]", affected)
	}

	loc, err := s.CanonicalLocation(ctx, "way_1")
	if err != nil {
		t.Fatalf("CanonicalLocation: %v", err)
	}
	if loc.UserID != nil {
		t.Errorf("expected nil UserID, got %v", *loc.UserID)
	}
}
