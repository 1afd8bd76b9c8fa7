package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// languageColumns is the ordered list of columns selected in language
// queries. Must match the scan order in scanLanguage.
const languageColumns = `id, code, name, is_rtl, priority, created_at, updated_at`

func scanLanguage(scanner interface{ Scan(dest ...any) error }) (*domain.Language, error) {
	var l domain.Language

	var (
		isRTL     int
		priority  sql.NullInt64
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&l.ID,
		&l.Code,
		&l.Name,
		&isRTL,
		&priority,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.IsRTL = isRTL != 0
	if priority.Valid {
		p := int(priority.Int64)
		l.Priority = &p
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

func nullablePriority(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// CreateLanguage inserts a new language. Returns store.ErrAlreadyExists
// on duplicate code.
func (s *Store) CreateLanguage(ctx context.Context, l *domain.Language) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO languages (id, code, name, is_rtl, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.Code,
		l.Name,
		boolToInt(l.IsRTL),
		nullablePriority(l.Priority),
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetLanguageByID retrieves a language by its ID.
func (s *Store) GetLanguageByID(ctx context.Context, id string) (*domain.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE id = ?`, id)

	l, err := scanLanguage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetLanguageByCode retrieves a language by its ISO code.
func (s *Store) GetLanguageByCode(ctx context.Context, code string) (*domain.Language, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)

	l, err := scanLanguage(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListLanguages returns every language, active first by priority, then
// inactive by code.
func (s *Store) ListLanguages(ctx context.Context) ([]*domain.Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+languageColumns+` FROM languages
		ORDER BY priority IS NULL, priority ASC, code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLanguages(rows)
}

// ListActiveLanguages returns the languages participating in search,
// ordered by ascending priority.
func (s *Store) ListActiveLanguages(ctx context.Context) ([]*domain.Language, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+languageColumns+` FROM languages
		WHERE priority IS NOT NULL
		ORDER BY priority ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLanguages(rows)
}

func collectLanguages(rows *sql.Rows) ([]*domain.Language, error) {
	var languages []*domain.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		languages = append(languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if languages == nil {
		languages = []*domain.Language{}
	}
	return languages, nil
}

// UpdateLanguage updates a language's code, name and RTL flag. The
// priority is managed through the activation methods.
func (s *Store) UpdateLanguage(ctx context.Context, l *domain.Language) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE languages SET code = ?, name = ?, is_rtl = ?, updated_at = ?
		WHERE id = ?`,
		l.Code,
		l.Name,
		boolToInt(l.IsRTL),
		formatTime(time.Now()),
		l.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return requireRow(res)
}

// ActivateLanguage inserts a language into the active priority order at
// the given position and re-densifies the others to 0..n-1 in one
// transaction. A position past the end of the active list is clamped.
// Returns the ids of other active languages whose priority moved.
func (s *Store) ActivateLanguage(ctx context.Context, id string, priority int) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	active, err := activePriorities(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	pos := priority
	if pos > len(active) {
		pos = len(active)
	}

	now := formatTime(time.Now())
	res, err := tx.ExecContext(ctx, `
		UPDATE languages SET priority = ?, updated_at = ? WHERE id = ?`,
		pos, now, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	var shifted []string
	for i, e := range active {
		p := i
		if i >= pos {
			p = i + 1
		}
		if p == e.priority {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE languages SET priority = ?, updated_at = ? WHERE id = ?`,
			p, now, e.id); err != nil {
			return nil, err
		}
		shifted = append(shifted, e.id)
	}
	return shifted, tx.Commit()
}

// DeactivateLanguage clears a language's priority, retracting its
// content from search, and closes the hole it leaves by re-densifying
// the remaining active priorities. Returns the ids of active languages
// whose priority moved.
func (s *Store) DeactivateLanguage(ctx context.Context, id string) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	res, err := tx.ExecContext(ctx, `
		UPDATE languages SET priority = NULL, updated_at = ? WHERE id = ?`,
		now, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	active, err := activePriorities(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	var shifted []string
	for i, e := range active {
		if i == e.priority {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE languages SET priority = ?, updated_at = ? WHERE id = ?`,
			i, now, e.id); err != nil {
			return nil, err
		}
		shifted = append(shifted, e.id)
	}
	return shifted, tx.Commit()
}

type priorityEntry struct {
	id       string
	priority int
}

// activePriorities reads the active languages except excludeID in
// priority order, inside the caller's transaction.
func activePriorities(ctx context.Context, tx *sql.Tx, excludeID string) ([]priorityEntry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, priority FROM languages
		WHERE priority IS NOT NULL AND id != ?
		ORDER BY priority ASC`, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var active []priorityEntry
	for rows.Next() {
		var e priorityEntry
		if err := rows.Scan(&e.id, &e.priority); err != nil {
			return nil, err
		}
		active = append(active, e)
	}
	return active, rows.Err()
}

// SetLanguagePriorities reassigns dense priorities 0..n-1 in the order
// given, in one transaction.
func (s *Store) SetLanguagePriorities(ctx context.Context, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	for i, id := range orderedIDs {
		res, err := tx.ExecContext(ctx, `
			UPDATE languages SET priority = ?, updated_at = ? WHERE id = ?`,
			i, now, id)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return fmt.Errorf("language %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// requireRow converts a zero-row update into store.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
