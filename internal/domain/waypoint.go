package domain

import "time"

// Waypoint is the identity anchor for a geographic point of interest.
// All user-visible content lives in per-language WaypointDetail revisions
// and moderated Location revisions; the waypoint row itself only carries
// identity and lifecycle timestamps.
type Waypoint struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the waypoint has been soft-deleted.
func (w *Waypoint) IsDeleted() bool {
	return w.DeletedAt != nil
}

// WaypointDetail is one user-submitted revision of a waypoint's textual
// content in one language. A detail becomes visible once a moderator sets
// VerifiedAt; until then it is pending.
//
// For a given (waypoint, language) the canonical detail is the most
// recently updated verified revision, or the most recent revision at all
// where an unverified view is permitted.
type WaypointDetail struct {
	ID         string     `json:"id"`
	WaypointID string     `json:"waypoint_id"`
	LanguageID string     `json:"language_id"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Source     string     `json:"source"`
	Slug       string     `json:"slug"`
	UserID     *string    `json:"user_id"` // nil once the submitting user is deleted
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the detail passed moderation.
func (d *WaypointDetail) IsVerified() bool {
	return d.VerifiedAt != nil
}

// Location is a moderated coordinate revision for a waypoint. Locations
// have their own moderation clock, independent of the textual details.
type Location struct {
	ID         string     `json:"id"`
	WaypointID string     `json:"waypoint_id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	UserID     *string    `json:"user_id"`
	VerifiedAt *time.Time `json:"verified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsVerified reports whether the location passed moderation.
func (l *Location) IsVerified() bool {
	return l.VerifiedAt != nil
}

// Coordinate is a plain latitude/longitude pair, used for bounding-box
// queries.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TagStatus is the moderation state of a waypoint-tag association.
// Only verified associations are projected into search documents.
type TagStatus string

// Tag association states.
const (
	TagStatusPending         TagStatus = "pending"
	TagStatusVerified        TagStatus = "verified"
	TagStatusDeleteRequested TagStatus = "deleteRequested"
)

// WaypointTag is the many-to-many pivot between waypoints and tags.
type WaypointTag struct {
	WaypointID string    `json:"waypoint_id"`
	TagID      string    `json:"tag_id"`
	Status     TagStatus `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
