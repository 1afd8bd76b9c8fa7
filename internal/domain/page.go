package domain

import "time"

// Page is the identity anchor for a static content page (about, imprint,
// project descriptions). Pages carry per-language PageDetail revisions
// but no location or tags.
type Page struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the page has been soft-deleted.
func (p *Page) IsDeleted() bool {
	return p.DeletedAt != nil
}

// PageDetail is one revision of a page's content in one language.
type PageDetail struct {
	ID         string     `json:"id"`
	PageID     string     `json:"page_id"`
	LanguageID string     `json:"language_id"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Slug       string     `json:"slug"`
	UserID     *string    `json:"user_id"`
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the detail passed moderation.
func (d *PageDetail) IsVerified() bool {
	return d.VerifiedAt != nil
}
