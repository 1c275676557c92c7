package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lumi/internal/core/domain"
)

const defaultBaseURL = "https://www.youtube.com"

// Fetcher downloads video transcripts via the timedtext endpoint and returns
// them as timed segments so chunks can cite a start offset in seconds.
type Fetcher struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

func New(baseURL, language string) *Fetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if language == "" {
		language = "en"
	}
	return &Fetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *Fetcher) Fetch(ctx context.Context, videoID string) ([]domain.Segment, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", f.language)

	endpoint := fmt.Sprintf("%s/api/timedtext?%s", f.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create timedtext request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("timedtext status: %s", resp.Status)
	}

	var tt struct {
		Texts []struct {
			Start float64 `xml:"start,attr"`
			Body  string  `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&tt); err != nil {
		return nil, fmt.Errorf("decode timedtext response: %w", err)
	}
	if len(tt.Texts) == 0 {
		return nil, fmt.Errorf("no transcript available for video %s", videoID)
	}

	segments := make([]domain.Segment, 0, len(tt.Texts))
	for _, entry := range tt.Texts {
		text := strings.TrimSpace(html.UnescapeString(entry.Body))
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:    text,
			Locator: domain.Locator{StartSec: int(entry.Start)},
		})
	}
	return segments, nil
}
