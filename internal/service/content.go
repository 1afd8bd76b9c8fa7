package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/id"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
	"github.com/footprintsforfreedom/footprints-server/internal/util"
)

// ContentService accepts user submissions. Everything created here
// starts unverified and therefore invisible: nothing touches the search
// index until a moderator verifies the revision.
type ContentService struct {
	store store.Store
	log   *slog.Logger
}

// NewContentService creates the submission service.
func NewContentService(st store.Store, log *slog.Logger) *ContentService {
	return &ContentService{
		store: st,
		log:   log.With(slog.String("component", "content-service")),
	}
}

// DetailInput is a user-submitted per-language text revision.
type DetailInput struct {
	LanguageID string
	Title      string
	Text       string
	Source     string
	UserID     string
}

func (in *DetailInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.Validation("title is required")
	}
	if in.LanguageID == "" {
		return errors.Validation("language id is required")
	}
	return nil
}

// requireActiveLanguage rejects submissions for unknown or deactivated
// languages.
func (s *ContentService) requireActiveLanguage(ctx context.Context, languageID string) error {
	lang, err := s.store.GetLanguageByID(ctx, languageID)
	if errors.Is(err, store.ErrNotFound) {
		return errors.Validationf("unknown language %s", languageID)
	}
	if err != nil {
		return err
	}
	if !lang.IsActive() {
		return errors.Validationf("language %s is deactivated", lang.Code)
	}
	return nil
}

func userPtr(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

// CreateWaypoint creates a waypoint together with its first detail
// revision. The revision is pending until verified.
func (s *ContentService) CreateWaypoint(ctx context.Context, in DetailInput) (*domain.Waypoint, *domain.WaypointDetail, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	w := &domain.Waypoint{
		ID:        id.MustGenerate(id.PrefixWaypoint),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateWaypoint(ctx, w); err != nil {
		return nil, nil, err
	}
	detail, err := s.CreateWaypointDetail(ctx, w.ID, in)
	if err != nil {
		return nil, nil, err
	}
	return w, detail, nil
}

// CreateWaypointDetail adds a pending detail revision to an existing
// waypoint.
func (s *ContentService) CreateWaypointDetail(ctx context.Context, waypointID string, in DetailInput) (*domain.WaypointDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetWaypointByID(ctx, waypointID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.WaypointDetail{
		ID:         id.MustGenerate(id.PrefixDetail),
		WaypointID: waypointID,
		LanguageID: in.LanguageID,
		Title:      in.Title,
		Text:       in.Text,
		Source:     in.Source,
		Slug:       util.Slugify(in.Title),
		UserID:     userPtr(in.UserID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateWaypointDetail(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info("waypoint detail submitted",
		slog.String("waypoint_id", waypointID),
		slog.String("detail_id", d.ID),
		slog.String("language_id", in.LanguageID))
	return d, nil
}

// LocationInput is a user-submitted coordinate revision.
type LocationInput struct {
	Latitude  float64
	Longitude float64
	UserID    string
}

func (in *LocationInput) validate() error {
	if in.Latitude < -90 || in.Latitude > 90 {
		return errors.Validationf("latitude %g out of range", in.Latitude)
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return errors.Validationf("longitude %g out of range", in.Longitude)
	}
	return nil
}

// CreateLocation adds a pending coordinate revision to a waypoint.
func (s *ContentService) CreateLocation(ctx context.Context, waypointID string, in LocationInput) (*domain.Location, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetWaypointByID(ctx, waypointID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &domain.Location{
		ID:         id.MustGenerate(id.PrefixLocation),
		WaypointID: waypointID,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
		UserID:     userPtr(in.UserID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// SuggestWaypointTag attaches a tag to a waypoint in pending state.
func (s *ContentService) SuggestWaypointTag(ctx context.Context, waypointID, tagID string) error {
	if _, err := s.store.GetWaypointByID(ctx, waypointID); err != nil {
		return err
	}
	if _, err := s.store.GetTagByID(ctx, tagID); err != nil {
		return err
	}
	return s.store.SetWaypointTag(ctx, waypointID, tagID, domain.TagStatusPending)
}

// RequestWaypointTagRemoval flags a verified association for removal;
// the association stays visible until a moderator confirms.
func (s *ContentService) RequestWaypointTagRemoval(ctx context.Context, waypointID, tagID string) error {
	return s.store.SetWaypointTag(ctx, waypointID, tagID, domain.TagStatusDeleteRequested)
}

// CreateTag creates a tag together with its first name revision.
func (s *ContentService) CreateTag(ctx context.Context, in DetailInput) (*domain.Tag, *domain.TagDetail, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        id.MustGenerate(id.PrefixTag),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, nil, err
	}
	detail, err := s.CreateTagDetail(ctx, t.ID, in)
	if err != nil {
		return nil, nil, err
	}
	return t, detail, nil
}

// CreateTagDetail adds a pending name revision to an existing tag.
func (s *ContentService) CreateTagDetail(ctx context.Context, tagID string, in DetailInput) (*domain.TagDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetTagByID(ctx, tagID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.TagDetail{
		ID:         id.MustGenerate(id.PrefixDetail),
		TagID:      tagID,
		LanguageID: in.LanguageID,
		Title:      in.Title,
		Slug:       util.Slugify(in.Title),
		UserID:     userPtr(in.UserID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateTagDetail(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateMedia creates a media item together with its first detail
// revision.
func (s *ContentService) CreateMedia(ctx context.Context, in DetailInput) (*domain.Media, *domain.MediaDetail, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	m := &domain.Media{
		ID:        id.MustGenerate(id.PrefixMedia),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMedia(ctx, m); err != nil {
		return nil, nil, err
	}
	detail, err := s.CreateMediaDetail(ctx, m.ID, in)
	if err != nil {
		return nil, nil, err
	}
	return m, detail, nil
}

// CreateMediaDetail adds a pending detail revision to a media item.
func (s *ContentService) CreateMediaDetail(ctx context.Context, mediaID string, in DetailInput) (*domain.MediaDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMediaByID(ctx, mediaID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.MediaDetail{
		ID:         id.MustGenerate(id.PrefixDetail),
		MediaID:    mediaID,
		LanguageID: in.LanguageID,
		Title:      in.Title,
		Text:       in.Text,
		Source:     in.Source,
		Slug:       util.Slugify(in.Title),
		UserID:     userPtr(in.UserID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateMediaDetail(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// FileInput is a user-submitted file revision; the binary lives in
// external storage, only the reference is recorded.
type FileInput struct {
	FilePath string
	FileType string
	UserID   string
}

func (in *FileInput) validate() error {
	if strings.TrimSpace(in.FilePath) == "" {
		return errors.Validation("file path is required")
	}
	if strings.TrimSpace(in.FileType) == "" {
		return errors.Validation("file type is required")
	}
	return nil
}

// CreateMediaFile adds a pending file revision to a media item.
func (s *ContentService) CreateMediaFile(ctx context.Context, mediaID string, in FileInput) (*domain.MediaFile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetMediaByID(ctx, mediaID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &domain.MediaFile{
		ID:        id.MustGenerate(id.PrefixFile),
		MediaID:   mediaID,
		FilePath:  in.FilePath,
		FileType:  in.FileType,
		UserID:    userPtr(in.UserID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateMediaFile(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// CreatePage creates a static page together with its first detail
// revision.
func (s *ContentService) CreatePage(ctx context.Context, in DetailInput) (*domain.Page, *domain.PageDetail, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	p := &domain.Page{
		ID:        id.MustGenerate(id.PrefixPage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreatePage(ctx, p); err != nil {
		return nil, nil, err
	}
	detail, err := s.CreatePageDetail(ctx, p.ID, in)
	if err != nil {
		return nil, nil, err
	}
	return p, detail, nil
}

// CreatePageDetail adds a pending detail revision to a page.
func (s *ContentService) CreatePageDetail(ctx context.Context, pageID string, in DetailInput) (*domain.PageDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.requireActiveLanguage(ctx, in.LanguageID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPageByID(ctx, pageID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &domain.PageDetail{
		ID:         id.MustGenerate(id.PrefixDetail),
		PageID:     pageID,
		LanguageID: in.LanguageID,
		Title:      in.Title,
		Text:       in.Text,
		Slug:       util.Slugify(in.Title),
		UserID:     userPtr(in.UserID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreatePageDetail(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
