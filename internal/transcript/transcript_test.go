package transcript

import (
	"errors"
	"testing"

	"github.com/adsp-prep/backend/internal/models"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL without www", "https://youtube.com/watch?v=abc123", "abc123"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"short URL", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/abc123", "abc123"},
		{"mobile URL", "https://m.youtube.com/watch?v=abc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.url)
			if err != nil {
				t.Fatalf("ExtractVideoID(%q): %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDRejects(t *testing.T) {
	for _, u := range []string{
		"https://example.com/watch?v=abc123",
		"https://www.youtube.com/watch",
		"https://youtu.be/",
		"not a url at all ://",
	} {
		_, err := ExtractVideoID(u)
		if err == nil {
			t.Errorf("ExtractVideoID(%q) succeeded, want error", u)
			continue
		}
		var ir *models.InvalidRequestError
		if !errors.As(err, &ir) {
			t.Errorf("ExtractVideoID(%q) error = %v, want InvalidRequestError", u, err)
		}
	}
}
