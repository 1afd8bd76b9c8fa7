package search

import (
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/util"
)

// DocType identifies an index family. Each entity kind owns one family.
type DocType string

const (
	DocTypeWaypoint DocType = "waypoint"
	DocTypeTag      DocType = "tag"
	DocTypeMedia    DocType = "media"
	DocTypePage     DocType = "page"
)

// KeyStrategy controls how documents are keyed and how indexes are laid
// out for a family.
type KeyStrategy int

const (
	// PerLanguageIndex keeps one index per language; documents are
	// keyed by entity id alone.
	PerLanguageIndex KeyStrategy = iota
	// SharedIndex keeps a single index for all languages; documents
	// are keyed by "{entityId}_{languageId}".
	SharedIndex
)

// StrategyFor returns the keying strategy of a family. Waypoints share
// one index because bounding-box queries span all languages; the other
// families split per language for analyzer quality.
func StrategyFor(dt DocType) KeyStrategy {
	if dt == DocTypeWaypoint {
		return SharedIndex
	}
	return PerLanguageIndex
}

// Key computes the document key for an entity/language pair under the
// given strategy.
func Key(strategy KeyStrategy, entityID, languageID string) string {
	if strategy == SharedIndex {
		return entityID + "_" + languageID
	}
	return entityID
}

// LanguageMeta is the language block denormalized into every document.
type LanguageMeta struct {
	ID       string
	Code     string
	Name     string
	IsRTL    bool
	Priority int
}

// MetaFor flattens a language row for indexing. The language must be
// active, i.e. carry a priority.
func MetaFor(l *domain.Language) (LanguageMeta, error) {
	if l == nil {
		return LanguageMeta{}, errors.Internal("project document: language is nil")
	}
	if l.Priority == nil {
		return LanguageMeta{}, errors.Internalf("project document: language %s is inactive", l.ID)
	}
	return LanguageMeta{
		ID:       l.ID,
		Code:     l.Code,
		Name:     l.Name,
		IsRTL:    l.IsRTL,
		Priority: *l.Priority,
	}, nil
}

// Document is a projected entity/language pair ready for indexing.
type Document interface {
	EntityID() string
	LanguageMeta() LanguageMeta
	ToMap() map[string]any
}

// detailFields is the per-language revision block shared by all
// document kinds.
type detailFields struct {
	DetailID   string
	Title      string
	Text       string
	Source     string
	Slug       string
	UserID     *string
	VerifiedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func projectDetail(id, title, text, source, slug string, userID *string, verifiedAt *time.Time, createdAt, updatedAt time.Time) detailFields {
	if slug == "" {
		slug = util.Slugify(title)
	}
	return detailFields{
		DetailID:   id,
		Title:      title,
		Text:       text,
		Source:     source,
		Slug:       slug,
		UserID:     userID,
		VerifiedAt: verifiedAt,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

func (d detailFields) fill(m map[string]any) {
	m[FieldDetailID] = d.DetailID
	m[FieldTitle] = d.Title
	if d.Text != "" {
		m[FieldText] = d.Text
	}
	if d.Source != "" {
		m[FieldSource] = d.Source
	}
	m[FieldSlug] = d.Slug
	if d.UserID != nil {
		m[FieldDetailUserID] = *d.UserID
	}
	if d.VerifiedAt != nil {
		m[FieldDetailVerifiedAt] = FormatTime(*d.VerifiedAt)
	}
	m[FieldDetailCreatedAt] = FormatTime(d.CreatedAt)
	m[FieldDetailUpdatedAt] = FormatTime(d.UpdatedAt)
}

func fillLanguage(m map[string]any, lang LanguageMeta) {
	m[FieldLanguageID] = lang.ID
	m[FieldLanguageCode] = lang.Code
	m[FieldLanguageName] = lang.Name
	m[FieldLanguageIsRTL] = lang.IsRTL
	m[FieldLanguagePriority] = lang.Priority
}

// WaypointDocument is a waypoint projected for one language.
type WaypointDocument struct {
	WaypointID string
	Lang       LanguageMeta
	Detail     detailFields

	HasLocation        bool
	LocationID         string
	Latitude           float64
	Longitude          float64
	LocationUserID     *string
	LocationVerifiedAt *time.Time

	TagIDs []string
}

// ProjectWaypoint builds the index document for a waypoint's canonical
// detail in one language. The location is optional; tagIDs must already
// be filtered to verified tags.
func ProjectWaypoint(wp *domain.Waypoint, detail *domain.WaypointDetail, loc *domain.Location, lang *domain.Language, tagIDs []string) (*WaypointDocument, error) {
	if wp == nil || detail == nil {
		return nil, errors.Internal("project waypoint: missing waypoint or detail")
	}
	meta, err := MetaFor(lang)
	if err != nil {
		return nil, err
	}
	doc := &WaypointDocument{
		WaypointID: wp.ID,
		Lang:       meta,
		Detail: projectDetail(detail.ID, detail.Title, detail.Text, detail.Source,
			detail.Slug, detail.UserID, detail.VerifiedAt, detail.CreatedAt, detail.UpdatedAt),
		TagIDs: tagIDs,
	}
	if loc != nil {
		doc.HasLocation = true
		doc.LocationID = loc.ID
		doc.Latitude = loc.Latitude
		doc.Longitude = loc.Longitude
		doc.LocationUserID = loc.UserID
		doc.LocationVerifiedAt = loc.VerifiedAt
	}
	return doc, nil
}

func (d *WaypointDocument) EntityID() string           { return d.WaypointID }
func (d *WaypointDocument) LanguageMeta() LanguageMeta { return d.Lang }

func (d *WaypointDocument) ToMap() map[string]any {
	m := map[string]any{
		FieldType:     string(DocTypeWaypoint),
		FieldEntityID: d.WaypointID,
	}
	fillLanguage(m, d.Lang)
	d.Detail.fill(m)
	if d.HasLocation {
		m[FieldLocation] = map[string]any{"lat": d.Latitude, "lon": d.Longitude}
		m[FieldLocationLat] = d.Latitude
		m[FieldLocationLon] = d.Longitude
		m[FieldLocationID] = d.LocationID
		if d.LocationUserID != nil {
			m[FieldLocationUserID] = *d.LocationUserID
		}
		if d.LocationVerifiedAt != nil {
			m[FieldLocationVerifiedAt] = FormatTime(*d.LocationVerifiedAt)
		}
	}
	if len(d.TagIDs) > 0 {
		m[FieldTags] = d.TagIDs
	}
	return m
}

// TagDocument is a tag projected for one language.
type TagDocument struct {
	TagID  string
	Lang   LanguageMeta
	Detail detailFields
}

func ProjectTag(tag *domain.Tag, detail *domain.TagDetail, lang *domain.Language) (*TagDocument, error) {
	if tag == nil || detail == nil {
		return nil, errors.Internal("project tag: missing tag or detail")
	}
	meta, err := MetaFor(lang)
	if err != nil {
		return nil, err
	}
	return &TagDocument{
		TagID: tag.ID,
		Lang:  meta,
		Detail: projectDetail(detail.ID, detail.Title, "", "",
			detail.Slug, detail.UserID, detail.VerifiedAt, detail.CreatedAt, detail.UpdatedAt),
	}, nil
}

func (d *TagDocument) EntityID() string           { return d.TagID }
func (d *TagDocument) LanguageMeta() LanguageMeta { return d.Lang }

func (d *TagDocument) ToMap() map[string]any {
	m := map[string]any{
		FieldType:     string(DocTypeTag),
		FieldEntityID: d.TagID,
	}
	fillLanguage(m, d.Lang)
	d.Detail.fill(m)
	return m
}

// MediaDocument is a media item projected for one language, including
// the canonical verified file when one exists.
type MediaDocument struct {
	MediaID string
	Lang    LanguageMeta
	Detail  detailFields

	HasFile        bool
	FileID         string
	FilePath       string
	FileType       string
	FileUserID     *string
	FileVerifiedAt *time.Time
}

func ProjectMedia(media *domain.Media, detail *domain.MediaDetail, file *domain.MediaFile, lang *domain.Language) (*MediaDocument, error) {
	if media == nil || detail == nil {
		return nil, errors.Internal("project media: missing media or detail")
	}
	meta, err := MetaFor(lang)
	if err != nil {
		return nil, err
	}
	doc := &MediaDocument{
		MediaID: media.ID,
		Lang:    meta,
		Detail: projectDetail(detail.ID, detail.Title, detail.Text, detail.Source,
			detail.Slug, detail.UserID, detail.VerifiedAt, detail.CreatedAt, detail.UpdatedAt),
	}
	if file != nil {
		doc.HasFile = true
		doc.FileID = file.ID
		doc.FilePath = file.FilePath
		doc.FileType = file.FileType
		doc.FileUserID = file.UserID
		doc.FileVerifiedAt = file.VerifiedAt
	}
	return doc, nil
}

func (d *MediaDocument) EntityID() string           { return d.MediaID }
func (d *MediaDocument) LanguageMeta() LanguageMeta { return d.Lang }

func (d *MediaDocument) ToMap() map[string]any {
	m := map[string]any{
		FieldType:     string(DocTypeMedia),
		FieldEntityID: d.MediaID,
	}
	fillLanguage(m, d.Lang)
	d.Detail.fill(m)
	if d.HasFile {
		m[FieldFileID] = d.FileID
		m[FieldFilePath] = d.FilePath
		m[FieldFileType] = d.FileType
		if d.FileUserID != nil {
			m[FieldFileUserID] = *d.FileUserID
		}
		if d.FileVerifiedAt != nil {
			m[FieldFileVerifiedAt] = FormatTime(*d.FileVerifiedAt)
		}
	}
	return m
}

// PageDocument is a static page projected for one language.
type PageDocument struct {
	PageID string
	Lang   LanguageMeta
	Detail detailFields
}

func ProjectPage(page *domain.Page, detail *domain.PageDetail, lang *domain.Language) (*PageDocument, error) {
	if page == nil || detail == nil {
		return nil, errors.Internal("project page: missing page or detail")
	}
	meta, err := MetaFor(lang)
	if err != nil {
		return nil, err
	}
	return &PageDocument{
		PageID: page.ID,
		Lang:   meta,
		Detail: projectDetail(detail.ID, detail.Title, detail.Text, "",
			detail.Slug, detail.UserID, detail.VerifiedAt, detail.CreatedAt, detail.UpdatedAt),
	}, nil
}

func (d *PageDocument) EntityID() string           { return d.PageID }
func (d *PageDocument) LanguageMeta() LanguageMeta { return d.Lang }

func (d *PageDocument) ToMap() map[string]any {
	m := map[string]any{
		FieldType:     string(DocTypePage),
		FieldEntityID: d.PageID,
	}
	fillLanguage(m, d.Lang)
	d.Detail.fill(m)
	return m
}
