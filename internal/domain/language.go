// Package domain defines the core entities of the Footprints platform:
// user-submitted waypoints, media, tags and static pages, each carrying
// per-language detail revisions that pass moderation before becoming visible.
package domain

import "time"

// Language represents a content language supported by the platform.
//
// Priority is the dense sort rank over active languages: lower value means
// the language is shown first. A nil Priority means the language is
// deactivated and none of its content is projected into the search index.
type Language struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"` // ISO 639-1 style, e.g. "en", "de"
	Name      string    `json:"name"`
	IsRTL     bool      `json:"is_rtl"`
	Priority  *int      `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the language participates in search.
func (l *Language) IsActive() bool {
	return l.Priority != nil
}
