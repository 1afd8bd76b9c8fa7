package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerModerationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "verify-waypoint-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoint-details/{id}/verify",
		Summary:     "Verify waypoint revision",
		Description: "Marks the revision verified and republishes the waypoint in its language",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyWaypointDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-location",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/locations/{locationId}/verify",
		Summary:     "Verify waypoint location",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-waypoint-tag",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/tags/{tagId}/verify",
		Summary:     "Verify suggested tag",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyWaypointTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirm-waypoint-tag-removal",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/tags/{tagId}/confirm-removal",
		Summary:     "Confirm tag removal",
		Description: "Removes an association flagged for removal and refreshes the waypoint's documents",
		Tags:        []string{"Moderation"},
	}, s.handleConfirmTagRemoval)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-tag-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/tag-details/{id}/verify",
		Summary:     "Verify tag name revision",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyTagDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-media-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/media-details/{id}/verify",
		Summary:     "Verify media revision",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyMediaDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-media-file",
		Method:      http.MethodPost,
		Path:        "/api/v1/media/{id}/files/{fileId}/verify",
		Summary:     "Verify media file revision",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyMediaFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "verify-page-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/page-details/{id}/verify",
		Summary:     "Verify page revision",
		Tags:        []string{"Moderation"},
	}, s.handleVerifyPageDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-waypoint",
		Method:      http.MethodDelete,
		Path:        "/api/v1/waypoints/{id}",
		Summary:     "Delete waypoint",
		Description: "Soft-deletes the waypoint and retracts it from search in every language",
		Tags:        []string{"Moderation"},
	}, s.handleDeleteWaypoint)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-tag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Soft-deletes the tag and refreshes every waypoint that carried it",
		Tags:        []string{"Moderation"},
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-media",
		Method:      http.MethodDelete,
		Path:        "/api/v1/media/{id}",
		Summary:     "Delete media item",
		Tags:        []string{"Moderation"},
	}, s.handleDeleteMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-page",
		Method:      http.MethodDelete,
		Path:        "/api/v1/pages/{id}",
		Summary:     "Delete page",
		Tags:        []string{"Moderation"},
	}, s.handleDeletePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}",
		Summary:     "Delete user",
		Description: "Anonymizes the user's contributions; content stays published without attribution",
		Tags:        []string{"Moderation"},
	}, s.handleDeleteUser)
}

// === DTOs ===

// IDInput identifies one record by path parameter.
type IDInput struct {
	ID string `path:"id" doc:"Record ID"`
}

// LocationVerifyInput identifies a location within its waypoint.
type LocationVerifyInput struct {
	ID         string `path:"id" doc:"Waypoint ID"`
	LocationID string `path:"locationId" doc:"Location ID"`
}

// FileVerifyInput identifies a file within its media item.
type FileVerifyInput struct {
	ID     string `path:"id" doc:"Media ID"`
	FileID string `path:"fileId" doc:"File ID"`
}

// === Handlers ===

func (s *Server) handleVerifyWaypointDetail(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyWaypointDetail(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyLocation(ctx context.Context, input *LocationVerifyInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyLocation(ctx, input.LocationID, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyWaypointTag(ctx context.Context, input *WaypointTagInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyWaypointTag(ctx, input.ID, input.TagID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleConfirmTagRemoval(ctx context.Context, input *WaypointTagInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.ConfirmWaypointTagRemoval(ctx, input.ID, input.TagID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyTagDetail(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyTagDetail(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyMediaDetail(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyMediaDetail(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyMediaFile(ctx context.Context, input *FileVerifyInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyMediaFile(ctx, input.FileID, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleVerifyPageDetail(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.VerifyPageDetail(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeleteWaypoint(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.DeleteWaypoint(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.DeleteTag(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeleteMedia(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.DeleteMedia(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeletePage(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.DeletePage(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeleteUser(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Moderation.DeleteUser(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}
