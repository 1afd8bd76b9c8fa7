package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/search"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	for _, f := range []struct {
		dt     search.DocType
		plural string
		tag    string
	}{
		{search.DocTypeWaypoint, "waypoints", "Waypoints"},
		{search.DocTypeTag, "tags", "Tags"},
		{search.DocTypeMedia, "media", "Media"},
		{search.DocTypePage, "pages", "Pages"},
	} {
		dt := f.dt

		huma.Register(s.api, huma.Operation{
			OperationID: "list-" + f.plural,
			Method:      http.MethodGet,
			Path:        "/api/v1/" + f.plural,
			Summary:     "List " + f.plural,
			Description: "Returns a title-ordered page, one entry per entity in the best available language",
			Tags:        []string{f.tag},
		}, func(ctx context.Context, input *ListInput) (*PageOutput, error) {
			return s.handleList(ctx, dt, input)
		})

		huma.Register(s.api, huma.Operation{
			OperationID: "search-" + f.plural,
			Method:      http.MethodGet,
			Path:        "/api/v1/" + f.plural + "/search",
			Summary:     "Search " + f.plural,
			Description: "Full-text search with language-aware analysis, collapsed to one result per entity",
			Tags:        []string{f.tag},
		}, func(ctx context.Context, input *SearchInput) (*PageOutput, error) {
			return s.handleSearch(ctx, dt, input)
		})

		huma.Register(s.api, huma.Operation{
			OperationID: "get-" + f.plural + "-by-id",
			Method:      http.MethodGet,
			Path:        "/api/v1/" + f.plural + "/{id}",
			Summary:     "Get by ID",
			Tags:        []string{f.tag},
		}, func(ctx context.Context, input *GetByIDInput) (*DocumentOutput, error) {
			return s.handleGetByID(ctx, dt, input)
		})

		huma.Register(s.api, huma.Operation{
			OperationID: "get-" + f.plural + "-by-slug",
			Method:      http.MethodGet,
			Path:        "/api/v1/" + f.plural + "/slug/{slug}",
			Summary:     "Get by slug",
			Tags:        []string{f.tag},
		}, func(ctx context.Context, input *GetBySlugInput) (*DocumentOutput, error) {
			return s.handleGetBySlug(ctx, dt, input)
		})
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "find-waypoints-in-bounding-box",
		Method:      http.MethodGet,
		Path:        "/api/v1/waypoints/map",
		Summary:     "Waypoints in bounding box",
		Description: "Returns located waypoints inside the box, read from the primary store for map accuracy",
		Tags:        []string{"Waypoints"},
	}, s.handleBoundingBox)
}

// === DTOs ===

// ListInput contains parameters for listing an entity family.
type ListInput struct {
	Language string `query:"lang" validate:"omitempty,max=3" doc:"Preferred language code"`
	TagID    string `query:"tag" validate:"omitempty,max=40" doc:"Restrict to entities carrying this tag"`
	Page     int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 20)"`
}

// SearchInput contains parameters for full-text search.
type SearchInput struct {
	Query    string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search text"`
	Language string `query:"lang" validate:"omitempty,max=3" doc:"Preferred language code"`
	Page     int    `query:"page" validate:"omitempty,gte=1" doc:"Page number (default 1)"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100" doc:"Page size (default 20)"`
}

// GetByIDInput contains parameters for an ID lookup.
type GetByIDInput struct {
	ID       string `path:"id" doc:"Entity ID"`
	Language string `query:"lang" validate:"omitempty,max=3" doc:"Preferred language code"`
}

// GetBySlugInput contains parameters for a slug lookup.
type GetBySlugInput struct {
	Slug     string `path:"slug" doc:"URL slug"`
	Language string `query:"lang" validate:"omitempty,max=3" doc:"Preferred language code"`
}

// LocationResponse contains coordinate data in API responses.
type LocationResponse struct {
	Latitude  float64 `json:"latitude" doc:"Latitude"`
	Longitude float64 `json:"longitude" doc:"Longitude"`
}

// FileResponse contains media file data in API responses.
type FileResponse struct {
	ID       string `json:"id" doc:"File revision ID"`
	Path     string `json:"path" doc:"Storage path"`
	MimeType string `json:"mime_type" doc:"MIME type"`
}

// DocumentResponse contains one search document in API responses.
type DocumentResponse struct {
	ID                 string            `json:"id" doc:"Entity ID"`
	Language           string            `json:"language" doc:"Language code of this rendition"`
	LanguageName       string            `json:"language_name" doc:"Language display name"`
	IsRTL              bool              `json:"is_rtl" doc:"Right-to-left script"`
	Title              string            `json:"title" doc:"Title"`
	Text               string            `json:"text,omitempty" doc:"Body text"`
	Source             string            `json:"source,omitempty" doc:"Source attribution"`
	Slug               string            `json:"slug" doc:"URL slug"`
	VerifiedAt         *time.Time        `json:"verified_at,omitempty" doc:"Moderation time of the shown revision"`
	UpdatedAt          time.Time         `json:"updated_at" doc:"Last update of the shown revision"`
	Location           *LocationResponse `json:"location,omitempty" doc:"Canonical coordinates (waypoints)"`
	TagIDs             []string          `json:"tag_ids,omitempty" doc:"Verified tag IDs (waypoints)"`
	File               *FileResponse     `json:"file,omitempty" doc:"Canonical file revision (media)"`
	AvailableLanguages []string          `json:"available_languages" doc:"Languages this entity is published in"`
	Score              float64           `json:"score,omitempty" doc:"Search relevance score"`
}

// DocumentOutput wraps a single document for Huma.
type DocumentOutput struct {
	Body DocumentResponse
}

// PageResponse contains one page of collapsed results.
type PageResponse struct {
	Items    []DocumentResponse `json:"items" doc:"Results, one per entity"`
	Total    int                `json:"total" doc:"Total distinct entities"`
	Page     int                `json:"page" doc:"Page number"`
	PageSize int                `json:"page_size" doc:"Page size"`
}

// PageOutput wraps a result page for Huma.
type PageOutput struct {
	Body PageResponse
}

// BoundingBoxInput contains the corners of a map viewport.
type BoundingBoxInput struct {
	TopLeftLat     float64 `query:"tl_lat" required:"true" minimum:"-90" maximum:"90" doc:"Top-left latitude"`
	TopLeftLon     float64 `query:"tl_lon" required:"true" minimum:"-180" maximum:"180" doc:"Top-left longitude"`
	BottomRightLat float64 `query:"br_lat" required:"true" minimum:"-90" maximum:"90" doc:"Bottom-right latitude"`
	BottomRightLon float64 `query:"br_lon" required:"true" minimum:"-180" maximum:"180" doc:"Bottom-right longitude"`
	Language       string  `query:"lang" validate:"omitempty,max=3" doc:"Preferred language code"`
}

// WaypointPinResponse is one map pin.
type WaypointPinResponse struct {
	ID        string  `json:"id" doc:"Waypoint ID"`
	Title     string  `json:"title" doc:"Best-language title"`
	Slug      string  `json:"slug" doc:"URL slug"`
	Language  string  `json:"language" doc:"Language code of the title"`
	Latitude  float64 `json:"latitude" doc:"Latitude"`
	Longitude float64 `json:"longitude" doc:"Longitude"`
}

// BoundingBoxOutput wraps map pins for Huma.
type BoundingBoxOutput struct {
	Body struct {
		Waypoints []WaypointPinResponse `json:"waypoints" doc:"Pins inside the box"`
	}
}

// === Handlers ===

func toDocumentResponse(hit *search.Hit) DocumentResponse {
	resp := DocumentResponse{
		ID:                 hit.EntityID,
		Language:           hit.LanguageCode,
		LanguageName:       hit.LanguageName,
		IsRTL:              hit.LanguageIsRTL,
		Title:              hit.Title,
		Text:               hit.Text,
		Source:             hit.Source,
		Slug:               hit.Slug,
		VerifiedAt:         hit.DetailVerifiedAt,
		UpdatedAt:          hit.DetailUpdatedAt,
		TagIDs:             hit.TagIDs,
		AvailableLanguages: hit.AvailableLanguages,
		Score:              hit.Score,
	}
	if hit.HasLocation {
		resp.Location = &LocationResponse{
			Latitude:  hit.Latitude,
			Longitude: hit.Longitude,
		}
	}
	if hit.FileID != "" {
		resp.File = &FileResponse{
			ID:       hit.FileID,
			Path:     hit.FilePath,
			MimeType: hit.FileType,
		}
	}
	return resp
}

func toPageResponse(page *search.ResultPage) PageResponse {
	resp := PageResponse{
		Items:    make([]DocumentResponse, 0, len(page.Items)),
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	for _, hit := range page.Items {
		resp.Items = append(resp.Items, toDocumentResponse(hit))
	}
	return resp
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func (s *Server) handleList(ctx context.Context, dt search.DocType, input *ListInput) (*PageOutput, error) {
	page, pageSize := normalizePaging(input.Page, input.PageSize)
	result, err := s.services.Search.List(ctx, dt, input.Language, input.TagID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: toPageResponse(result)}, nil
}

func (s *Server) handleSearch(ctx context.Context, dt search.DocType, input *SearchInput) (*PageOutput, error) {
	page, pageSize := normalizePaging(input.Page, input.PageSize)
	result, err := s.services.Search.Search(ctx, dt, input.Query, input.Language, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &PageOutput{Body: toPageResponse(result)}, nil
}

func (s *Server) handleGetByID(ctx context.Context, dt search.DocType, input *GetByIDInput) (*DocumentOutput, error) {
	hit, err := s.services.Search.FindByID(ctx, dt, input.ID, input.Language)
	if err != nil {
		return nil, err
	}
	return &DocumentOutput{Body: toDocumentResponse(hit)}, nil
}

func (s *Server) handleGetBySlug(ctx context.Context, dt search.DocType, input *GetBySlugInput) (*DocumentOutput, error) {
	hit, err := s.services.Search.FindBySlug(ctx, dt, input.Slug, input.Language)
	if err != nil {
		return nil, err
	}
	return &DocumentOutput{Body: toDocumentResponse(hit)}, nil
}

func (s *Server) handleBoundingBox(ctx context.Context, input *BoundingBoxInput) (*BoundingBoxOutput, error) {
	summaries, err := s.services.Search.FindInBoundingBox(ctx,
		domain.Coordinate{Latitude: input.TopLeftLat, Longitude: input.TopLeftLon},
		domain.Coordinate{Latitude: input.BottomRightLat, Longitude: input.BottomRightLon},
		input.Language)
	if err != nil {
		return nil, err
	}

	out := &BoundingBoxOutput{}
	out.Body.Waypoints = make([]WaypointPinResponse, 0, len(summaries))
	for _, summary := range summaries {
		out.Body.Waypoints = append(out.Body.Waypoints, toPinResponse(summary))
	}
	return out, nil
}

func toPinResponse(summary *service.WaypointSummary) WaypointPinResponse {
	return WaypointPinResponse{
		ID:        summary.WaypointID,
		Title:     summary.Title,
		Slug:      summary.Slug,
		Language:  summary.LanguageCode,
		Latitude:  summary.Coordinate.Latitude,
		Longitude: summary.Coordinate.Longitude,
	}
}
