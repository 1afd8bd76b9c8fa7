package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/errors"
	"github.com/footprintsforfreedom/footprints-server/internal/id"
	"github.com/footprintsforfreedom/footprints-server/internal/normalize"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// LanguageService administers content languages. Activation state and
// priorities drive which physical indexes exist and how cross-language
// fallback ranks, so every mutation here flows through the syncer.
type LanguageService struct {
	store  store.Store
	syncer *Syncer
	log    *slog.Logger
}

// NewLanguageService creates the language admin service.
func NewLanguageService(st store.Store, syncer *Syncer, log *slog.Logger) *LanguageService {
	return &LanguageService{
		store:  st,
		syncer: syncer,
		log:    log.With(slog.String("component", "language-service")),
	}
}

// LanguageInput describes a language to create or update.
type LanguageInput struct {
	Code  string
	Name  string
	IsRTL bool
}

// normalizedCode resolves the input code to canonical ISO 639-1 form.
// "eng", "en-US" and "English" all become "en"; a 2-3 character code the
// tables don't know is kept verbatim so regional or constructed codes
// still work.
func (in *LanguageInput) normalizedCode() (string, error) {
	if code := normalize.LanguageCode(in.Code); code != "" {
		return code, nil
	}
	code := strings.ToLower(strings.TrimSpace(in.Code))
	if len(code) < 2 || len(code) > 3 {
		return "", errors.Validationf("language code %q must be 2-3 characters", in.Code)
	}
	return code, nil
}

func (in *LanguageInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.Validation("language name is required")
	}
	return nil
}

// Create registers a new language. It starts deactivated: no index is
// created and no content is accepted until Activate assigns a priority.
func (s *LanguageService) Create(ctx context.Context, in LanguageInput) (*domain.Language, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	code, err := in.normalizedCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	l := &domain.Language{
		ID:        id.MustGenerate(id.PrefixLanguage),
		Code:      code,
		Name:      strings.TrimSpace(in.Name),
		IsRTL:     in.IsRTL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLanguage(ctx, l); err != nil {
		return nil, err
	}
	s.log.Info("language created", slog.String("id", l.ID), slog.String("code", l.Code))
	return l, nil
}

// Get returns a language by id.
func (s *LanguageService) Get(ctx context.Context, languageID string) (*domain.Language, error) {
	return s.store.GetLanguageByID(ctx, languageID)
}

// List returns every language, active first in priority order.
func (s *LanguageService) List(ctx context.Context) ([]*domain.Language, error) {
	return s.store.ListLanguages(ctx)
}

// Update changes a language's code, name or direction, then refreshes
// every document of the language so the embedded metadata matches.
func (s *LanguageService) Update(ctx context.Context, languageID string, in LanguageInput) (*domain.Language, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	code, err := in.normalizedCode()
	if err != nil {
		return nil, err
	}
	l, err := s.store.GetLanguageByID(ctx, languageID)
	if err != nil {
		return nil, err
	}
	oldCode := l.Code
	l.Code = code
	l.Name = strings.TrimSpace(in.Name)
	l.IsRTL = in.IsRTL
	if err := s.store.UpdateLanguage(ctx, l); err != nil {
		return nil, err
	}
	if l.IsActive() && l.Code != oldCode {
		// A code change moves the per-language families to a new
		// physical index; tear the old one down and rebuild.
		old := &domain.Language{ID: l.ID, Code: oldCode, Priority: l.Priority}
		if err := s.syncer.DeactivateLanguage(ctx, old); err != nil {
			s.log.Error("drop old-code indexes failed", slog.Any("error", err))
		}
		if err := s.syncer.RebuildLanguage(ctx, l); err != nil {
			s.log.Error("rebuild after code change failed", slog.Any("error", err))
		}
	} else if l.IsActive() {
		if err := s.syncer.UpdateLanguages(ctx, []string{l.ID}); err != nil {
			s.log.Error("refresh language metadata failed", slog.Any("error", err))
		}
	}
	return l, nil
}

// Activate inserts a deactivated language into the active priority
// order, creates its indexes and projects its canonical content. The
// other active priorities stay dense; languages pushed down get their
// documents refreshed. Store state commits first; a failed rebuild
// leaves the language active with the index catching up later.
func (s *LanguageService) Activate(ctx context.Context, languageID string, priority int) error {
	if priority < 0 {
		return errors.Validation("priority must not be negative")
	}
	shifted, err := s.store.ActivateLanguage(ctx, languageID, priority)
	if err != nil {
		return err
	}
	l, err := s.store.GetLanguageByID(ctx, languageID)
	if err != nil {
		return err
	}
	if err := s.syncer.ActivateLanguage(ctx, l); err != nil {
		s.log.Error("index build after activation failed",
			slog.String("code", l.Code), slog.Any("error", err))
	}
	if len(shifted) > 0 {
		if err := s.syncer.UpdateLanguages(ctx, shifted); err != nil {
			s.log.Error("refresh of displaced languages failed", slog.Any("error", err))
		}
	}
	s.log.Info("language activated", slog.String("code", l.Code), slog.Int("priority", priority))
	return nil
}

// Deactivate clears the priority and retracts every document of the
// language. The remaining active priorities close up densely, and the
// languages that moved get their documents refreshed. The content
// itself stays in the store and returns on re-activation.
func (s *LanguageService) Deactivate(ctx context.Context, languageID string) error {
	l, err := s.store.GetLanguageByID(ctx, languageID)
	if err != nil {
		return err
	}
	if !l.IsActive() {
		return errors.Conflict("language is already deactivated")
	}
	shifted, err := s.store.DeactivateLanguage(ctx, languageID)
	if err != nil {
		return err
	}
	if err := s.syncer.DeactivateLanguage(ctx, l); err != nil {
		s.log.Error("index retraction after deactivation failed",
			slog.String("code", l.Code), slog.Any("error", err))
	}
	if len(shifted) > 0 {
		if err := s.syncer.UpdateLanguages(ctx, shifted); err != nil {
			s.log.Error("refresh of displaced languages failed", slog.Any("error", err))
		}
	}
	s.log.Info("language deactivated", slog.String("code", l.Code))
	return nil
}

// Reprioritize reassigns dense priorities 0..n-1 over the active
// languages in the order given, then refreshes the priority field baked
// into every document.
func (s *LanguageService) Reprioritize(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return errors.Validation("ordered language ids are required")
	}
	if err := s.store.SetLanguagePriorities(ctx, orderedIDs); err != nil {
		return err
	}
	if err := s.syncer.UpdateLanguages(ctx, orderedIDs); err != nil {
		s.log.Error("refresh after reprioritization failed", slog.Any("error", err))
	}
	return nil
}
