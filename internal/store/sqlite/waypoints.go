package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

const waypointColumns = `id, created_at, updated_at, deleted_at`

func scanWaypoint(scanner interface{ Scan(dest ...any) error }) (*domain.Waypoint, error) {
	var w domain.Waypoint

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(&w.ID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	w.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	w.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// CreateWaypoint inserts a new waypoint.
func (s *Store) CreateWaypoint(ctx context.Context, w *domain.Waypoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waypoints (id, created_at, updated_at)
		VALUES (?, ?, ?)`,
		w.ID,
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	return err
}

// GetWaypointByID retrieves a waypoint. Soft-deleted waypoints are
// treated as gone.
func (s *Store) GetWaypointByID(ctx context.Context, id string) (*domain.Waypoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+waypointColumns+` FROM waypoints
		WHERE id = ? AND deleted_at IS NULL`, id)

	w, err := scanWaypoint(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWaypoint soft-deletes a waypoint.
func (s *Store) DeleteWaypoint(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE waypoints SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListWaypointIDs returns the ids of all live waypoints.
func (s *Store) ListWaypointIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, `SELECT id FROM waypoints WHERE deleted_at IS NULL ORDER BY id`)
}

func (s *Store) collectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const waypointDetailColumns = `id, waypoint_id, language_id, title, text, source, slug,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanWaypointDetail(scanner interface{ Scan(dest ...any) error }) (*domain.WaypointDetail, error) {
	var d domain.WaypointDetail

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&d.ID,
		&d.WaypointID,
		&d.LanguageID,
		&d.Title,
		&d.Text,
		&d.Source,
		&d.Slug,
		&userID,
		&verifiedAt,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.UserID = stringPtr(userID)
	d.VerifiedAt, err = parseNullableTime(verifiedAt)
	if err != nil {
		return nil, err
	}
	d.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	d.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	d.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// CreateWaypointDetail inserts a new detail revision.
func (s *Store) CreateWaypointDetail(ctx context.Context, d *domain.WaypointDetail) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waypoint_details (id, waypoint_id, language_id, title, text, source, slug,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.WaypointID,
		d.LanguageID,
		d.Title,
		d.Text,
		d.Source,
		d.Slug,
		nullableString(d.UserID),
		formatNullableTime(d.VerifiedAt),
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	return err
}

// GetWaypointDetailByID retrieves a detail revision.
func (s *Store) GetWaypointDetailByID(ctx context.Context, id string) (*domain.WaypointDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+waypointDetailColumns+` FROM waypoint_details
		WHERE id = ? AND deleted_at IS NULL`, id)

	d, err := scanWaypointDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyWaypointDetail stamps a detail revision as moderated.
func (s *Store) VerifyWaypointDetail(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE waypoint_details SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalWaypointDetail returns the most recently updated verified
// detail for a (waypoint, language) pair. With includeUnverified it
// falls back to the most recent revision of any moderation state when
// no verified one exists.
func (s *Store) CanonicalWaypointDetail(ctx context.Context, waypointID, languageID string, includeUnverified bool) (*domain.WaypointDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+waypointDetailColumns+` FROM waypoint_details
		WHERE waypoint_id = ? AND language_id = ?
		  AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		waypointID, languageID)

	d, err := scanWaypointDetail(row)
	if err == nil {
		return d, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	if !includeUnverified {
		return nil, store.ErrNotFound
	}

	row = s.db.QueryRowContext(ctx, `
		SELECT `+waypointDetailColumns+` FROM waypoint_details
		WHERE waypoint_id = ? AND language_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC LIMIT 1`,
		waypointID, languageID)

	d, err = scanWaypointDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

const locationColumns = `id, waypoint_id, latitude, longitude,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanLocation(scanner interface{ Scan(dest ...any) error }) (*domain.Location, error) {
	var l domain.Location

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&l.ID,
		&l.WaypointID,
		&l.Latitude,
		&l.Longitude,
		&userID,
		&verifiedAt,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.UserID = stringPtr(userID)
	l.VerifiedAt, err = parseNullableTime(verifiedAt)
	if err != nil {
		return nil, err
	}
	l.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// CreateLocation inserts a new location revision.
func (s *Store) CreateLocation(ctx context.Context, l *domain.Location) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (id, waypoint_id, latitude, longitude,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.WaypointID,
		l.Latitude,
		l.Longitude,
		nullableString(l.UserID),
		formatNullableTime(l.VerifiedAt),
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	return err
}

// VerifyLocation stamps a location revision as moderated.
func (s *Store) VerifyLocation(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE locations SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalLocation returns the newest verified location of a waypoint,
// or (nil, nil) when none is verified yet. Locations have their own
// moderation clock, so absence is an ordinary state, not an error.
func (s *Store) CanonicalLocation(ctx context.Context, waypointID string) (*domain.Location, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+locationColumns+` FROM locations
		WHERE waypoint_id = ? AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		waypointID)

	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// LocationsInBoundingBox returns each waypoint's canonical verified
// location where it falls inside the box. The box is given as
// top-left/bottom-right corners.
func (s *Store) LocationsInBoundingBox(ctx context.Context, topLeft, bottomRight domain.Coordinate) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixColumns("l", locationColumns)+` FROM locations l
		JOIN waypoints w ON w.id = l.waypoint_id AND w.deleted_at IS NULL
		WHERE l.deleted_at IS NULL AND l.verified_at IS NOT NULL
		  AND l.updated_at = (
			SELECT MAX(l2.updated_at) FROM locations l2
			WHERE l2.waypoint_id = l.waypoint_id
			  AND l2.deleted_at IS NULL AND l2.verified_at IS NOT NULL)
		  AND l.latitude BETWEEN ? AND ?
		  AND l.longitude BETWEEN ? AND ?
		ORDER BY l.waypoint_id`,
		bottomRight.Latitude, topLeft.Latitude,
		topLeft.Longitude, bottomRight.Longitude,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []*domain.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// SetWaypointTag attaches a tag to a waypoint or updates the
// association's moderation status.
func (s *Store) SetWaypointTag(ctx context.Context, waypointID, tagID string, status domain.TagStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waypoint_tags (waypoint_id, tag_id, status, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(waypoint_id, tag_id) DO UPDATE SET status = excluded.status`,
		waypointID, tagID, string(status), formatTime(time.Now()))
	return err
}

// RemoveWaypointTag detaches a tag from a waypoint. Removing a missing
// association is a no-op.
func (s *Store) RemoveWaypointTag(ctx context.Context, waypointID, tagID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM waypoint_tags WHERE waypoint_id = ? AND tag_id = ?`,
		waypointID, tagID)
	return err
}

// VerifiedTagIDs returns the ids of live tags attached to the waypoint
// with verified status.
func (s *Store) VerifiedTagIDs(ctx context.Context, waypointID string) ([]string, error) {
	return s.collectIDs(ctx, `
		SELECT wt.tag_id FROM waypoint_tags wt
		JOIN tags t ON t.id = wt.tag_id AND t.deleted_at IS NULL
		WHERE wt.waypoint_id = ? AND wt.status = ?
		ORDER BY wt.tag_id`,
		waypointID, string(domain.TagStatusVerified))
}

// WaypointIDsWithTag returns live waypoints whose association with the
// tag carries the given status.
func (s *Store) WaypointIDsWithTag(ctx context.Context, tagID string, status domain.TagStatus) ([]string, error) {
	return s.collectIDs(ctx, `
		SELECT wt.waypoint_id FROM waypoint_tags wt
		JOIN waypoints w ON w.id = wt.waypoint_id AND w.deleted_at IS NULL
		WHERE wt.tag_id = ? AND wt.status = ?
		ORDER BY wt.waypoint_id`,
		tagID, string(status))
}

// prefixColumns qualifies each column of a comma-separated list with a
// table alias for use in joins.
func prefixColumns(alias, columns string) string {
	parts := make([]string, 0, 16)
	for _, col := range splitColumns(columns) {
		parts = append(parts, alias+"."+col)
	}
	return joinColumns(parts)
}
