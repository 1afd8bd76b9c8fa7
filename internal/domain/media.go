package domain

import "time"

// Media is the identity anchor for a user-submitted media item (photo,
// audio, document). Like waypoints it splits into two independently
// moderated parts: textual MediaDetail revisions and MediaFile revisions.
type Media struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the media item has been soft-deleted.
func (m *Media) IsDeleted() bool {
	return m.DeletedAt != nil
}

// MediaDetail is one revision of a media item's textual content in one
// language.
type MediaDetail struct {
	ID         string     `json:"id"`
	MediaID    string     `json:"media_id"`
	LanguageID string     `json:"language_id"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Source     string     `json:"source"`
	Slug       string     `json:"slug"`
	UserID     *string    `json:"user_id"`
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the detail passed moderation.
func (d *MediaDetail) IsVerified() bool {
	return d.VerifiedAt != nil
}

// MediaFile is a moderated file revision for a media item. The binary
// itself lives in external file storage; only the reference is kept here.
type MediaFile struct {
	ID         string     `json:"id"`
	MediaID    string     `json:"media_id"`
	FilePath   string     `json:"file_path"`
	FileType   string     `json:"file_type"` // MIME type
	UserID     *string    `json:"user_id"`
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the file passed moderation.
func (f *MediaFile) IsVerified() bool {
	return f.VerifiedAt != nil
}
