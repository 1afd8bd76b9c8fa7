package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "create-waypoint",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints",
		Summary:     "Create waypoint",
		Description: "Creates a waypoint together with its first pending detail revision",
		Tags:        []string{"Waypoints"},
	}, s.handleCreateWaypoint)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-waypoint-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/details",
		Summary:     "Submit waypoint revision",
		Tags:        []string{"Waypoints"},
	}, s.handleCreateWaypointDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-waypoint-location",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/locations",
		Summary:     "Submit waypoint location",
		Tags:        []string{"Waypoints"},
	}, s.handleCreateLocation)

	huma.Register(s.api, huma.Operation{
		OperationID: "suggest-waypoint-tag",
		Method:      http.MethodPost,
		Path:        "/api/v1/waypoints/{id}/tags/{tagId}",
		Summary:     "Suggest tag for waypoint",
		Description: "Attaches a tag in pending state; a moderator must verify it before it becomes visible",
		Tags:        []string{"Waypoints"},
	}, s.handleSuggestTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "request-waypoint-tag-removal",
		Method:      http.MethodDelete,
		Path:        "/api/v1/waypoints/{id}/tags/{tagId}",
		Summary:     "Request tag removal",
		Description: "Flags a verified tag association for removal; the tag stays visible until a moderator confirms",
		Tags:        []string{"Waypoints"},
	}, s.handleRequestTagRemoval)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-tag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Tags:        []string{"Tags"},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-tag-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags/{id}/details",
		Summary:     "Submit tag name revision",
		Tags:        []string{"Tags"},
	}, s.handleCreateTagDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-media",
		Method:      http.MethodPost,
		Path:        "/api/v1/media",
		Summary:     "Create media item",
		Tags:        []string{"Media"},
	}, s.handleCreateMedia)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-media-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/media/{id}/details",
		Summary:     "Submit media revision",
		Tags:        []string{"Media"},
	}, s.handleCreateMediaDetail)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-media-file",
		Method:      http.MethodPost,
		Path:        "/api/v1/media/{id}/files",
		Summary:     "Submit media file revision",
		Tags:        []string{"Media"},
	}, s.handleCreateMediaFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-page",
		Method:      http.MethodPost,
		Path:        "/api/v1/pages",
		Summary:     "Create page",
		Tags:        []string{"Pages"},
	}, s.handleCreatePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-page-detail",
		Method:      http.MethodPost,
		Path:        "/api/v1/pages/{id}/details",
		Summary:     "Submit page revision",
		Tags:        []string{"Pages"},
	}, s.handleCreatePageDetail)
}

// === DTOs ===

// DetailRequest is the body for creating an entity or submitting a
// detail revision.
type DetailRequest struct {
	LanguageID string `json:"language_id" validate:"required" doc:"Language of the revision"`
	Title      string `json:"title" validate:"required,min=1,max=200" doc:"Title"`
	Text       string `json:"text,omitempty" validate:"omitempty,max=50000" doc:"Body text"`
	Source     string `json:"source,omitempty" validate:"omitempty,max=500" doc:"Source attribution"`
	UserID     string `json:"user_id,omitempty" doc:"Submitting user, empty for anonymous"`
}

func (r DetailRequest) toInput() service.DetailInput {
	return service.DetailInput{
		LanguageID: r.LanguageID,
		Title:      r.Title,
		Text:       r.Text,
		Source:     r.Source,
		UserID:     r.UserID,
	}
}

// CreateEntityInput wraps a DetailRequest for entity creation.
type CreateEntityInput struct {
	Body DetailRequest
}

// CreateDetailInput wraps a DetailRequest for an existing entity.
type CreateDetailInput struct {
	ID   string `path:"id" doc:"Entity ID"`
	Body DetailRequest
}

// LocationRequest is the body for submitting a waypoint location.
type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90" doc:"Latitude"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180" doc:"Longitude"`
	UserID    string  `json:"user_id,omitempty" doc:"Submitting user, empty for anonymous"`
}

// CreateLocationInput wraps a LocationRequest.
type CreateLocationInput struct {
	ID   string `path:"id" doc:"Waypoint ID"`
	Body LocationRequest
}

// FileRequest is the body for submitting a media file revision.
type FileRequest struct {
	FilePath string `json:"file_path" validate:"required,min=1,max=1000" doc:"Storage path"`
	FileType string `json:"file_type,omitempty" validate:"omitempty,max=100" doc:"MIME type"`
	UserID   string `json:"user_id,omitempty" doc:"Submitting user, empty for anonymous"`
}

// CreateFileInput wraps a FileRequest.
type CreateFileInput struct {
	ID   string `path:"id" doc:"Media ID"`
	Body FileRequest
}

// WaypointTagInput identifies one waypoint/tag association.
type WaypointTagInput struct {
	ID    string `path:"id" doc:"Waypoint ID"`
	TagID string `path:"tagId" doc:"Tag ID"`
}

// EmptyOutput is the response for operations with no payload.
type EmptyOutput struct {
	Status int
}

// WaypointOutput wraps a newly created waypoint and its first revision.
type WaypointOutput struct {
	Body struct {
		Waypoint *domain.Waypoint       `json:"waypoint"`
		Detail   *domain.WaypointDetail `json:"detail"`
	}
}

// WaypointDetailOutput wraps a single waypoint revision.
type WaypointDetailOutput struct {
	Body *domain.WaypointDetail
}

// LocationOutput wraps a single location revision.
type LocationOutput struct {
	Body *domain.Location
}

// TagOutput wraps a newly created tag and its first name revision.
type TagOutput struct {
	Body struct {
		Tag    *domain.Tag       `json:"tag"`
		Detail *domain.TagDetail `json:"detail"`
	}
}

// TagDetailOutput wraps a single tag name revision.
type TagDetailOutput struct {
	Body *domain.TagDetail
}

// MediaOutput wraps a newly created media item and its first revision.
type MediaOutput struct {
	Body struct {
		Media  *domain.Media       `json:"media"`
		Detail *domain.MediaDetail `json:"detail"`
	}
}

// MediaDetailOutput wraps a single media revision.
type MediaDetailOutput struct {
	Body *domain.MediaDetail
}

// MediaFileOutput wraps a single media file revision.
type MediaFileOutput struct {
	Body *domain.MediaFile
}

// PageCreatedOutput wraps a newly created page and its first revision.
type PageCreatedOutput struct {
	Body struct {
		Page   *domain.Page       `json:"page"`
		Detail *domain.PageDetail `json:"detail"`
	}
}

// PageDetailOutput wraps a single page revision.
type PageDetailOutput struct {
	Body *domain.PageDetail
}

// === Handlers ===

func (s *Server) handleCreateWaypoint(ctx context.Context, input *CreateEntityInput) (*WaypointOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	waypoint, detail, err := s.services.Content.CreateWaypoint(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	out := &WaypointOutput{}
	out.Body.Waypoint = waypoint
	out.Body.Detail = detail
	return out, nil
}

func (s *Server) handleCreateWaypointDetail(ctx context.Context, input *CreateDetailInput) (*WaypointDetailOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	detail, err := s.services.Content.CreateWaypointDetail(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &WaypointDetailOutput{Body: detail}, nil
}

func (s *Server) handleCreateLocation(ctx context.Context, input *CreateLocationInput) (*LocationOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	location, err := s.services.Content.CreateLocation(ctx, input.ID, service.LocationInput{
		Latitude:  input.Body.Latitude,
		Longitude: input.Body.Longitude,
		UserID:    input.Body.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &LocationOutput{Body: location}, nil
}

func (s *Server) handleSuggestTag(ctx context.Context, input *WaypointTagInput) (*EmptyOutput, error) {
	if err := s.services.Content.SuggestWaypointTag(ctx, input.ID, input.TagID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleRequestTagRemoval(ctx context.Context, input *WaypointTagInput) (*EmptyOutput, error) {
	if err := s.services.Content.RequestWaypointTagRemoval(ctx, input.ID, input.TagID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateEntityInput) (*TagOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	tag, detail, err := s.services.Content.CreateTag(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	out := &TagOutput{}
	out.Body.Tag = tag
	out.Body.Detail = detail
	return out, nil
}

func (s *Server) handleCreateTagDetail(ctx context.Context, input *CreateDetailInput) (*TagDetailOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	detail, err := s.services.Content.CreateTagDetail(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &TagDetailOutput{Body: detail}, nil
}

func (s *Server) handleCreateMedia(ctx context.Context, input *CreateEntityInput) (*MediaOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	media, detail, err := s.services.Content.CreateMedia(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	out := &MediaOutput{}
	out.Body.Media = media
	out.Body.Detail = detail
	return out, nil
}

func (s *Server) handleCreateMediaDetail(ctx context.Context, input *CreateDetailInput) (*MediaDetailOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	detail, err := s.services.Content.CreateMediaDetail(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &MediaDetailOutput{Body: detail}, nil
}

func (s *Server) handleCreateMediaFile(ctx context.Context, input *CreateFileInput) (*MediaFileOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	file, err := s.services.Content.CreateMediaFile(ctx, input.ID, service.FileInput{
		FilePath: input.Body.FilePath,
		FileType: input.Body.FileType,
		UserID:   input.Body.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &MediaFileOutput{Body: file}, nil
}

func (s *Server) handleCreatePage(ctx context.Context, input *CreateEntityInput) (*PageCreatedOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	page, detail, err := s.services.Content.CreatePage(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	out := &PageCreatedOutput{}
	out.Body.Page = page
	out.Body.Detail = detail
	return out, nil
}

func (s *Server) handleCreatePageDetail(ctx context.Context, input *CreateDetailInput) (*PageDetailOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	detail, err := s.services.Content.CreatePageDetail(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &PageDetailOutput{Body: detail}, nil
}
