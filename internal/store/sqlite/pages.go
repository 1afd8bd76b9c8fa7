package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

const pageColumns = `id, created_at, updated_at, deleted_at`

func scanPage(scanner interface{ Scan(dest ...any) error }) (*domain.Page, error) {
	var p domain.Page

	var (
		createdAt string
		updatedAt string
		deletedAt sql.NullString
	)

	err := scanner.Scan(&p.ID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	p.DeletedAt, err = parseNullableTime(deletedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePage inserts a new static page.
func (s *Store) CreatePage(ctx context.Context, p *domain.Page) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, created_at, updated_at)
		VALUES (?, ?, ?)`,
		p.ID,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	return err
}

// GetPageByID retrieves a page. Soft-deleted pages are treated as gone.
func (s *Store) GetPageByID(ctx context.Context, id string) (*domain.Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageColumns+` FROM pages
		WHERE id = ? AND deleted_at IS NULL`, id)

	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePage soft-deletes a page.
func (s *Store) DeletePage(ctx context.Context, id string) error {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListPageIDs returns the ids of all live pages.
func (s *Store) ListPageIDs(ctx context.Context) ([]string, error) {
	return s.collectIDs(ctx, `SELECT id FROM pages WHERE deleted_at IS NULL ORDER BY id`)
}

const pageDetailColumns = `id, page_id, language_id, title, text, slug,
	user_id, verified_at, deleted_at, created_at, updated_at`

func scanPageDetail(scanner interface{ Scan(dest ...any) error }) (*domain.PageDetail, error) {
	var d domain.PageDetail

	var (
		userID     sql.NullString
		verifiedAt sql.NullString
		deletedAt  sql.NullString
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&d.ID,
		&d.PageID,
		&d.LanguageID,
		&d.Title,
		&d.Text,
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

// CreatePageDetail inserts a new page content revision.
func (s *Store) CreatePageDetail(ctx context.Context, d *domain.PageDetail) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_details (id, page_id, language_id, title, text, slug,
			user_id, verified_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.PageID,
		d.LanguageID,
		d.Title,
		d.Text,
		d.Slug,
		nullableString(d.UserID),
		formatNullableTime(d.VerifiedAt),
		formatTime(d.CreatedAt),
		formatTime(d.UpdatedAt),
	)
	return err
}

// GetPageDetailByID retrieves a page detail revision.
func (s *Store) GetPageDetailByID(ctx context.Context, id string) (*domain.PageDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageDetailColumns+` FROM page_details
		WHERE id = ? AND deleted_at IS NULL`, id)

	d, err := scanPageDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// VerifyPageDetail stamps a page detail revision as moderated.
func (s *Store) VerifyPageDetail(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE page_details SET verified_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// CanonicalPageDetail returns the most recently updated verified detail
// for a (page, language) pair, falling back to the most recent of any
// state with includeUnverified.
func (s *Store) CanonicalPageDetail(ctx context.Context, pageID, languageID string, includeUnverified bool) (*domain.PageDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageDetailColumns+` FROM page_details
		WHERE page_id = ? AND language_id = ?
		  AND deleted_at IS NULL AND verified_at IS NOT NULL
		ORDER BY updated_at DESC LIMIT 1`,
		pageID, languageID)

	d, err := scanPageDetail(row)
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
		SELECT `+pageDetailColumns+` FROM page_details
		WHERE page_id = ? AND language_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC LIMIT 1`,
		pageID, languageID)

	d, err = scanPageDetail(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}
