package api

import (
	"github.com/footprintsforfreedom/footprints-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Search     *service.SearchService
	Content    *service.ContentService
	Moderation *service.ModerationService
	Language   *service.LanguageService
}
