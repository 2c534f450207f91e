// Package transcript resolves video URLs to caption text used as generation
// source material.
package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adsp-prep/backend/internal/models"
)

// ExtractVideoID pulls the video identifier out of the common YouTube URL
// shapes (watch?v=, youtu.be/, embed/).
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &models.InvalidRequestError{Reason: "invalid video URL"}
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, nil
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok && rest != "" {
			return rest, nil
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}
	return "", &models.InvalidRequestError{Reason: "unsupported video URL: " + rawURL}
}

// Fetcher downloads caption tracks over the public timedtext endpoint.
type Fetcher struct {
	client *http.Client
	lang   string
}

func NewFetcher(lang string) *Fetcher {
	if lang == "" {
		lang = "ko"
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		lang:   lang,
	}
}

type timedText struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns the concatenated caption text for a video URL.
func (f *Fetcher) Fetch(ctx context.Context, videoURL string) (string, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://www.youtube.com/api/timedtext?v=%s&lang=%s",
		url.QueryEscape(videoID), url.QueryEscape(f.lang))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build transcript request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch transcript: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	var parts []string
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Body))
		if line != "" {
			parts = append(parts, line)
		}
	}
	if len(parts) == 0 {
		return "", &models.InvalidRequestError{Reason: "no transcript available for video " + videoID}
	}
	return strings.Join(parts, " "), nil
}
