package api

import (
	"encoding/json/v2"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/footprintsforfreedom/footprints-server/internal/errors"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"id": "wp_123", "title": "Harbor"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
	assert.Empty(t, envelope.Code)
}

func TestEnvelopeTransformer_APIError(t *testing.T) {
	apiErr := &APIError{
		status:  404,
		Code:    "NOT_FOUND",
		Message: "waypoint not found",
	}

	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "waypoint not found", envelope.Error)
	assert.Nil(t, envelope.Data)
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "500", domainerrors.Internal("boom"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok)
	assert.False(t, envelope.Success)
	assert.Equal(t, "boom", envelope.Error)
}

func TestEnvelopeTransformer_WireFormat(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"k": "v"})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Contains(t, fields, "v")
	assert.Contains(t, fields, "success")
	assert.Contains(t, fields, "data")
	assert.NotContains(t, fields, "error")
	assert.NotContains(t, fields, "code")
}

func TestRegisterErrorHandler_DomainErrorMapping(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domainerrors.NotFoundf("waypoint %s", "wp_1"), 404, "NOT_FOUND"},
		{"conflict", domainerrors.Conflict("already deactivated"), 409, "CONFLICT"},
		{"validation", domainerrors.Validation("title is required"), 400, "VALIDATION"},
		{"internal", domainerrors.Internal("broken"), 500, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusErr := huma.NewError(500, "wrapped", tt.err)

			apiErr, ok := statusErr.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestStatusToCode(t *testing.T) {
	assert.Equal(t, "VALIDATION", statusToCode(400))
	assert.Equal(t, "VALIDATION", statusToCode(422))
	assert.Equal(t, "NOT_FOUND", statusToCode(404))
	assert.Equal(t, "CONFLICT", statusToCode(409))
	assert.Equal(t, "ENGINE_UNAVAILABLE", statusToCode(503))
	assert.Equal(t, "INTERNAL", statusToCode(500))
	assert.Equal(t, "INTERNAL", statusToCode(418))
}
