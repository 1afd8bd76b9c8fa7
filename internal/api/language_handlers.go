package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/footprintsforfreedom/footprints-server/internal/domain"
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

func (s *Server) registerLanguageRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-languages",
		Method:      http.MethodGet,
		Path:        "/api/v1/languages",
		Summary:     "List languages",
		Description: "Returns every language, active first in priority order",
		Tags:        []string{"Languages"},
	}, s.handleListLanguages)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-language",
		Method:      http.MethodPost,
		Path:        "/api/v1/languages",
		Summary:     "Create language",
		Description: "New languages start deactivated and must be activated before content is indexed",
		Tags:        []string{"Languages"},
	}, s.handleCreateLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-language",
		Method:      http.MethodGet,
		Path:        "/api/v1/languages/{id}",
		Summary:     "Get language",
		Tags:        []string{"Languages"},
	}, s.handleGetLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-language",
		Method:      http.MethodPatch,
		Path:        "/api/v1/languages/{id}",
		Summary:     "Update language",
		Description: "Changes code, name or direction; active languages get their documents refreshed",
		Tags:        []string{"Languages"},
	}, s.handleUpdateLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "activate-language",
		Method:      http.MethodPost,
		Path:        "/api/v1/languages/{id}/activate",
		Summary:     "Activate language",
		Description: "Creates the language's indexes and backfills them from the store",
		Tags:        []string{"Languages"},
	}, s.handleActivateLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "deactivate-language",
		Method:      http.MethodPost,
		Path:        "/api/v1/languages/{id}/deactivate",
		Summary:     "Deactivate language",
		Description: "Retracts the language from search; store content is kept",
		Tags:        []string{"Languages"},
	}, s.handleDeactivateLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "reprioritize-languages",
		Method:      http.MethodPut,
		Path:        "/api/v1/languages/priorities",
		Summary:     "Reorder language priorities",
		Tags:        []string{"Languages"},
	}, s.handleReprioritizeLanguages)
}

// === DTOs ===

// LanguageRequest is the body for creating or updating a language.
type LanguageRequest struct {
	Code  string `json:"code" validate:"required,min=2,max=32" doc:"Language code or name, normalized to ISO 639-1"`
	Name  string `json:"name" validate:"required,min=1,max=100" doc:"Display name"`
	IsRTL bool   `json:"is_rtl,omitempty" doc:"Right-to-left script"`
}

// CreateLanguageInput wraps a LanguageRequest.
type CreateLanguageInput struct {
	Body LanguageRequest
}

// UpdateLanguageInput wraps a LanguageRequest for an existing language.
type UpdateLanguageInput struct {
	ID   string `path:"id" doc:"Language ID"`
	Body LanguageRequest
}

// ActivateLanguageInput carries the priority slot for activation.
type ActivateLanguageInput struct {
	ID   string `path:"id" doc:"Language ID"`
	Body struct {
		Priority int `json:"priority" validate:"gte=0" doc:"Priority slot, 0 is highest"`
	}
}

// PrioritiesInput carries a full priority ordering.
type PrioritiesInput struct {
	Body struct {
		OrderedIDs []string `json:"ordered_ids" validate:"required,min=1" doc:"Active language IDs, highest priority first"`
	}
}

// LanguageOutput wraps a single language.
type LanguageOutput struct {
	Body *domain.Language
}

// LanguageListOutput wraps the full language list.
type LanguageListOutput struct {
	Body struct {
		Languages []*domain.Language `json:"languages"`
	}
}

// === Handlers ===

func (s *Server) handleListLanguages(ctx context.Context, _ *struct{}) (*LanguageListOutput, error) {
	languages, err := s.services.Language.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &LanguageListOutput{}
	out.Body.Languages = languages
	return out, nil
}

func (s *Server) handleCreateLanguage(ctx context.Context, input *CreateLanguageInput) (*LanguageOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	language, err := s.services.Language.Create(ctx, service.LanguageInput{
		Code:  input.Body.Code,
		Name:  input.Body.Name,
		IsRTL: input.Body.IsRTL,
	})
	if err != nil {
		return nil, err
	}
	return &LanguageOutput{Body: language}, nil
}

func (s *Server) handleGetLanguage(ctx context.Context, input *IDInput) (*LanguageOutput, error) {
	language, err := s.services.Language.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &LanguageOutput{Body: language}, nil
}

func (s *Server) handleUpdateLanguage(ctx context.Context, input *UpdateLanguageInput) (*LanguageOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	language, err := s.services.Language.Update(ctx, input.ID, service.LanguageInput{
		Code:  input.Body.Code,
		Name:  input.Body.Name,
		IsRTL: input.Body.IsRTL,
	})
	if err != nil {
		return nil, err
	}
	return &LanguageOutput{Body: language}, nil
}

func (s *Server) handleActivateLanguage(ctx context.Context, input *ActivateLanguageInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	if err := s.services.Language.Activate(ctx, input.ID, input.Body.Priority); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleDeactivateLanguage(ctx context.Context, input *IDInput) (*EmptyOutput, error) {
	if err := s.services.Language.Deactivate(ctx, input.ID); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleReprioritizeLanguages(ctx context.Context, input *PrioritiesInput) (*EmptyOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}
	if err := s.services.Language.Reprioritize(ctx, input.Body.OrderedIDs); err != nil {
		return nil, err
	}
	return &EmptyOutput{Status: http.StatusNoContent}, nil
}
