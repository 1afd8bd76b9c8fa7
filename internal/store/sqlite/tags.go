package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

const tagColumns = `id, created_at, updated_at, deleted_at`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(&t.ID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	t.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, created_at, updated_at)
		VALUES (?, ?, ?)`,
		t.ID,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	return err
}

// GetTagByID retrieves a tag. Soft-deleted tags are treated as gone.
func (s *Store) GetTagByID(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE id = ? AND deleted_at IS NULL`, id)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTag soft-deletes a tag.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListTagIDs returns the ids of all live tags.
func (s *Store) ListTagIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, `SELECT id FROM tags WHERE deleted_at IS NULL ORDER BY id`)
}

const tagDetailColumns = `id, tag_id, language_id, title, slug,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanTagDetail(scanner interface{ Scan(dest ...any) error }) (*domain.TagDetail, error) {
	var d domain.TagDetail

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&d.ID,
		&d.TagID,
		&d.LanguageID,
		&d.Title,
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

// CreateTagDetail inserts a new tag name revision.
func (s *Store) CreateTagDetail(ctx context.Context, d *domain.TagDetail) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_details (id, tag_id, language_id, title, slug,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.TagID,
		d.LanguageID,
		d.Title,
		d.Slug,
		nullableString(d.UserID),
		formatNullableTime(d.VerifiedAt),
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	return err
}

// GetTagDetailByID retrieves a tag detail revision.
func (s *Store) GetTagDetailByID(ctx context.Context, id string) (*domain.TagDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tagDetailColumns+` FROM tag_details
		WHERE id = ? AND deleted_at IS NULL`, id)

	d, err := scanTagDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyTagDetail stamps a tag detail revision as moderated.
func (s *Store) VerifyTagDetail(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tag_details SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalTagDetail returns the most recently updated verified detail
// for a (tag, language) pair, falling back to the most recent of any
// state with includeUnverified.
func (s *Store) CanonicalTagDetail(ctx context.Context, tagID, languageID string, includeUnverified bool) (*domain.TagDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tagDetailColumns+` FROM tag_details
		WHERE tag_id = ? AND language_id = ?
		  AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		tagID, languageID)

	d, err := scanTagDetail(row)
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
		SELECT `+tagDetailColumns+` FROM tag_details
		WHERE tag_id = ? AND language_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC LIMIT 1`,
		tagID, languageID)

	d, err = scanTagDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
