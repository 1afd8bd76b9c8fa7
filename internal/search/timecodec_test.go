package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimeDropsFractionAndConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 3, 15, 13, 30, 45, 123456789, loc)

	assert.Equal(t, "2024-03-15T12:30:45Z", FormatTime(in))
}

func TestParseTimeAcceptsBothForms(t *testing.T) {
	for _, s := range []string{
		"2024-03-15T12:30:45Z",
		"2024-03-15T12:30:45.123Z",
		"2024-03-15T13:30:45+01:00",
	} {
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, got.Year())
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	_, err := ParseTime("15.03.2024")
	assert.Error(t, err)
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2023, 11, 2, 8, 0, 1, 0, time.UTC)
	out, err := ParseTime(FormatTime(in))
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}
