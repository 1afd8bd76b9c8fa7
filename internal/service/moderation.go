package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/store"
)

// ModerationService executes moderator decisions. Every operation
// commits to the store first and then refreshes the affected search
// projections; a sync failure is logged but never rolls back or fails
// the decision, the index catches up on the next write or rebuild.
type ModerationService struct {
	store  store.Store
	syncer *Syncer
	log    *slog.Logger
}

// NewModerationService creates the moderation service.
func NewModerationService(st store.Store, syncer *Syncer, log *slog.Logger) *ModerationService {
	return &ModerationService{
		store:  st,
		syncer: syncer,
		log:    log.With(slog.String("component", "moderation-service")),
	}
}

// logSyncFailure records a post-commit sync error. The store is already
// committed at this point, so the error is observability, not control
// flow.
func (s *ModerationService) logSyncFailure(op string, err error) {
	if err != nil {
		s.log.Error("search sync failed after commit",
			slog.String("operation", op),
			slog.Any("error", err))
	}
}

// VerifyWaypointDetail marks a detail revision as moderated and
// refreshes the waypoint's document in that language.
func (s *ModerationService) VerifyWaypointDetail(ctx context.Context, detailID string) error {
	if err := s.store.VerifyWaypointDetail(ctx, detailID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify waypoint detail",
		s.syncer.UpsertDetail(ctx, search.DocTypeWaypoint, detailID))
	return nil
}

// VerifyLocation marks a coordinate revision as moderated. The new
// canonical coordinates reach every language's document, so the whole
// entity is refreshed.
func (s *ModerationService) VerifyLocation(ctx context.Context, locationID, waypointID string) error {
	if err := s.store.VerifyLocation(ctx, locationID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify location",
		s.syncer.UpsertEntity(ctx, search.DocTypeWaypoint, waypointID))
	return nil
}

// VerifyWaypointTag confirms a pending tag association.
func (s *ModerationService) VerifyWaypointTag(ctx context.Context, waypointID, tagID string) error {
	if err := s.store.SetWaypointTag(ctx, waypointID, tagID, domain.TagStatusVerified); err != nil {
		return err
	}
	s.logSyncFailure("verify waypoint tag",
		s.syncer.UpsertEntity(ctx, search.DocTypeWaypoint, waypointID))
	return nil
}

// ConfirmWaypointTagRemoval approves a removal request and detaches the
// tag.
func (s *ModerationService) ConfirmWaypointTagRemoval(ctx context.Context, waypointID, tagID string) error {
	if err := s.store.RemoveWaypointTag(ctx, waypointID, tagID); err != nil {
		return err
	}
	s.logSyncFailure("confirm tag removal",
		s.syncer.UpsertEntity(ctx, search.DocTypeWaypoint, waypointID))
	return nil
}

// VerifyTagDetail marks a tag name revision as moderated.
func (s *ModerationService) VerifyTagDetail(ctx context.Context, detailID string) error {
	if err := s.store.VerifyTagDetail(ctx, detailID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify tag detail",
		s.syncer.UpsertDetail(ctx, search.DocTypeTag, detailID))
	return nil
}

// VerifyMediaDetail marks a media detail revision as moderated.
func (s *ModerationService) VerifyMediaDetail(ctx context.Context, detailID string) error {
	if err := s.store.VerifyMediaDetail(ctx, detailID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify media detail",
		s.syncer.UpsertDetail(ctx, search.DocTypeMedia, detailID))
	return nil
}

// VerifyMediaFile marks a file revision as moderated. The canonical
// file reference appears in every language's document.
func (s *ModerationService) VerifyMediaFile(ctx context.Context, fileID, mediaID string) error {
	if err := s.store.VerifyMediaFile(ctx, fileID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify media file",
		s.syncer.UpsertEntity(ctx, search.DocTypeMedia, mediaID))
	return nil
}

// VerifyPageDetail marks a page revision as moderated.
func (s *ModerationService) VerifyPageDetail(ctx context.Context, detailID string) error {
	if err := s.store.VerifyPageDetail(ctx, detailID, time.Now().UTC()); err != nil {
		return err
	}
	s.logSyncFailure("verify page detail",
		s.syncer.UpsertDetail(ctx, search.DocTypePage, detailID))
	return nil
}

// DeleteWaypoint soft-deletes a waypoint and retracts its documents.
func (s *ModerationService) DeleteWaypoint(ctx context.Context, waypointID string) error {
	if err := s.store.DeleteWaypoint(ctx, waypointID); err != nil {
		return err
	}
	s.logSyncFailure("delete waypoint",
		s.syncer.DeleteEntity(ctx, search.DocTypeWaypoint, waypointID))
	return nil
}

// DeleteTag soft-deletes a tag, retracts its documents and refreshes
// every waypoint that carried it: verified tag lists in waypoint
// documents must stop naming the dead tag.
func (s *ModerationService) DeleteTag(ctx context.Context, tagID string) error {
	tagged, err := s.store.WaypointIDsWithTag(ctx, tagID, domain.TagStatusVerified)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, tagID); err != nil {
		return err
	}
	s.logSyncFailure("delete tag",
		s.syncer.DeleteEntity(ctx, search.DocTypeTag, tagID))
	s.logSyncFailure("delete tag: refresh waypoints",
		s.syncer.UpsertEntities(ctx, search.DocTypeWaypoint, tagged))
	return nil
}

// DeleteMedia soft-deletes a media item and retracts its documents.
func (s *ModerationService) DeleteMedia(ctx context.Context, mediaID string) error {
	if err := s.store.DeleteMedia(ctx, mediaID); err != nil {
		return err
	}
	s.logSyncFailure("delete media",
		s.syncer.DeleteEntity(ctx, search.DocTypeMedia, mediaID))
	return nil
}

// DeletePage soft-deletes a page and retracts its documents.
func (s *ModerationService) DeletePage(ctx context.Context, pageID string) error {
	if err := s.store.DeletePage(ctx, pageID); err != nil {
		return err
	}
	s.logSyncFailure("delete page",
		s.syncer.DeleteEntity(ctx, search.DocTypePage, pageID))
	return nil
}

// DeleteUser anonymizes every revision the user submitted: ownership is
// nulled in place, the revisions themselves and their moderation state
// survive. Affected entities are re-projected so indexed documents drop
// the user reference too.
func (s *ModerationService) DeleteUser(ctx context.Context, userID string) error {
	refresh := []struct {
		dt    search.DocType
		clear func(context.Context, string) ([]string, error)
	}{
		{search.DocTypeWaypoint, s.store.ClearWaypointDetailOwners},
		{search.DocTypeWaypoint, s.store.ClearLocationOwners},
		{search.DocTypeTag, s.store.ClearTagDetailOwners},
		{search.DocTypeMedia, s.store.ClearMediaDetailOwners},
		{search.DocTypeMedia, s.store.ClearMediaFileOwners},
		{search.DocTypePage, s.store.ClearPageDetailOwners},
	}
	for _, r := range refresh {
		ids, err := r.clear(ctx, userID)
		if err != nil {
			return err
		}
		s.logSyncFailure("delete user",
			s.syncer.UpsertEntities(ctx, r.dt, ids))
	}
	s.log.Info("user content anonymized", slog.String("user_id", userID))
	return nil
}
