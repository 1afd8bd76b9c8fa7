package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is bumped when the envelope structure changes in a way
// clients must distinguish.
const EnvelopeVersion = 1

// APIEnvelope is the uniform wrapper around every typed API response.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload on success"`
	Error   string `json:"error,omitempty" doc:"Error message on failure"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// EnvelopeTransformer wraps every response body in an APIEnvelope.
// Registered as a huma transformer so handlers return plain payloads.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	isError := len(status) > 0 && status[0] >= '4'

	if apiErr, ok := v.(*APIError); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}
	if err, ok := v.(error); ok {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}
	if isError {
		return APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
