package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

const mediaColumns = `id, created_at, updated_at, deleted_at`

func scanMedia(scanner interface{ Scan(dest ...any) error }) (*domain.Media, error) {
	var m domain.Media

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(&m.ID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	m.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateMedia inserts a new media item.
func (s *Store) CreateMedia(ctx context.Context, m *domain.Media) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media (id, created_at, updated_at)
		VALUES (?, ?, ?)`,
		m.ID,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	return err
}

// GetMediaByID retrieves a media item. Soft-deleted items are treated
// as gone.
func (s *Store) GetMediaByID(ctx context.Context, id string) (*domain.Media, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaColumns+` FROM media
		WHERE id = ? AND deleted_at IS NULL`, id)

	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMedia soft-deletes a media item.
func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE media SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListMediaIDs returns the ids of all live media items.
func (s *Store) ListMediaIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, `SELECT id FROM media WHERE deleted_at IS NULL ORDER BY id`)
}

const mediaDetailColumns = `id, media_id, language_id, title, text, source, slug,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanMediaDetail(scanner interface{ Scan(dest ...any) error }) (*domain.MediaDetail, error) {
	var d domain.MediaDetail

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&d.ID,
		&d.MediaID,
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

// CreateMediaDetail inserts a new media detail revision.
func (s *Store) CreateMediaDetail(ctx context.Context, d *domain.MediaDetail) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_details (id, media_id, language_id, title, text, source, slug,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.MediaID,
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

// GetMediaDetailByID retrieves a media detail revision.
func (s *Store) GetMediaDetailByID(ctx context.Context, id string) (*domain.MediaDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaDetailColumns+` FROM media_details
		WHERE id = ? AND deleted_at IS NULL`, id)

	d, err := scanMediaDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyMediaDetail stamps a media detail revision as moderated.
func (s *Store) VerifyMediaDetail(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE media_details SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalMediaDetail returns the most recently updated verified
// detail for a (media, language) pair, falling back to the most recent
// of any state with includeUnverified.
func (s *Store) CanonicalMediaDetail(ctx context.Context, mediaID, languageID string, includeUnverified bool) (*domain.MediaDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaDetailColumns+` FROM media_details
		WHERE media_id = ? AND language_id = ?
		  AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		mediaID, languageID)

	d, err := scanMediaDetail(row)
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
		SELECT `+mediaDetailColumns+` FROM media_details
		WHERE media_id = ? AND language_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC LIMIT 1`,
		mediaID, languageID)

	d, err = scanMediaDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

const mediaFileColumns = `id, media_id, file_path, file_type,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanMediaFile(scanner interface{ Scan(dest ...any) error }) (*domain.MediaFile, error) {
	var f domain.MediaFile

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&f.ID,
		&f.MediaID,
		&f.FilePath,
		&f.FileType,
		&userID,
		&verifiedAt,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.UserID = stringPtr(userID)
	f.VerifiedAt, err = parseNullableTime(verifiedAt)
	if err != nil {
		return nil, err
	}
	f.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}
	f.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	f.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// CreateMediaFile inserts a new file revision.
func (s *Store) CreateMediaFile(ctx context.Context, f *domain.MediaFile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_files (id, media_id, file_path, file_type,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.MediaID,
		f.FilePath,
		f.FileType,
		nullableString(f.UserID),
		formatNullableTime(f.VerifiedAt),
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)
	return err
}

// VerifyMediaFile stamps a file revision as moderated.
func (s *Store) VerifyMediaFile(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE media_files SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalMediaFile returns the newest verified file revision of a
// media item, or (nil, nil) when none is verified yet. Files have their
// own moderation clock, so absence is an ordinary state.
func (s *Store) CanonicalMediaFile(ctx context.Context, mediaID string) (*domain.MediaFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mediaFileColumns+` FROM media_files
		WHERE media_id = ? AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		mediaID)

	f, err := scanMediaFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
