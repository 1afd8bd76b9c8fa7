package normalize

import "testing"

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"deu", "de"},
		{"ger", "de"}, // bibliographic variant
		{"en-US", "en"},
		{"pt_BR", "pt"},
		{"German", "de"},
		{"FARSI", "fa"},
		{"  fr  ", "fr"},
		{"", ""},
		{"klingon", ""},
		{"zz", ""},
		{"-us", ""},
	}
	for _, tt := range tests {
		if got := LanguageCode(tt.input); got != tt.want {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLanguageName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"en", "English"},
		{"deu", "German"},
		{"ar", "Arabic"},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LanguageName(tt.input); got != tt.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
