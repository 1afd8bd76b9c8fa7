package domain

import "time"

// Tag is the identity anchor for a categorization label. Its display
// name lives in per-language TagDetail revisions, moderated like
// waypoint details.
type Tag struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the tag has been soft-deleted.
func (t *Tag) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TagDetail is one revision of a tag's name in one language.
type TagDetail struct {
	ID         string     `json:"id"`
	TagID      string     `json:"tag_id"`
	LanguageID string     `json:"language_id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	UserID     *string    `json:"user_id"`
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the detail passed moderation.
func (d *TagDetail) IsVerified() bool {
	return d.VerifiedAt != nil
}
