package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Shortener wraps the configured ad-shortlink provider. Provider selection
// follows SHORTLINK_TYPE; on any provider failure the long URL is returned
// unshortened so verification never hard-fails on the shortener.
type Shortener struct {
	client       *http.Client
	apiKey       string
	baseURL      string
	providerType string
	log          *zap.Logger
}

func NewShortener(client *http.Client, apiKey, baseURL, providerType string, log *zap.Logger) *Shortener {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Shortener{
		client:       client,
		apiKey:       apiKey,
		baseURL:      baseURL,
		providerType: strings.ToLower(providerType),
		log:          log,
	}
}

// Shorten returns a shortlink for longURL, or longURL itself when no
// provider is configured or the provider fails.
func (s *Shortener) Shorten(ctx context.Context, longURL string) string {
	if s.apiKey == "" {
		return longURL
	}

	var short string
	var err error
	switch s.providerType {
	case "shorte.st":
		short, err = s.shorteSt(ctx, longURL)
	case "droplink":
		short, err = s.droplink(ctx, longURL)
	case "clk.sh":
		short, err = s.clkSh(ctx, longURL)
	default:
		short, err = s.generic(ctx, longURL)
	}
	if err != nil || short == "" {
		s.log.Warn("shortlink provider failed, using long url",
			zap.String("provider", s.providerType), zap.Error(err))
		return longURL
	}
	return short
}

func (s *Shortener) shorteSt(ctx context.Context, longURL string) (string, error) {
	form := url.Values{"urlToShorten": {longURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.shorte.st/v1/data/url", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("public-api-token", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload struct {
		ShortenedURL string `json:"shortenedUrl"`
	}
	if err := s.do(req, &payload); err != nil {
		return "", err
	}
	return payload.ShortenedURL, nil
}

func (s *Shortener) droplink(ctx context.Context, longURL string) (string, error) {
	reqURL := fmt.Sprintf("https://droplink.co/api?api=%s&url=%s&format=json",
		url.QueryEscape(s.apiKey), url.QueryEscape(longURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	var payload struct {
		ShortenedURL string `json:"shortenedUrl"`
	}
	if err := s.do(req, &payload); err != nil {
		return "", err
	}
	return payload.ShortenedURL, nil
}

func (s *Shortener) clkSh(ctx context.Context, longURL string) (string, error) {
	form := url.Values{"api": {s.apiKey}, "url": {longURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://clk.sh/api", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload struct {
		ShortenedURL string `json:"shortenedUrl"`
	}
	if err := s.do(req, &payload); err != nil {
		return "", err
	}
	return payload.ShortenedURL, nil
}

// generic POSTs {"api","url"} to SHORTLINK_URL/api and scans the common
// response fields.
func (s *Shortener) generic(ctx context.Context, longURL string) (string, error) {
	if s.baseURL == "" {
		return "", fmt.Errorf("SHORTLINK_URL is not set")
	}

	body, err := json.Marshal(map[string]string{"api": s.apiKey, "url": longURL})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(s.baseURL, "/")+"/api", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var payload map[string]any
	if err := s.do(req, &payload); err != nil {
		return "", err
	}
	for _, field := range []string{"short_url", "shortenedUrl", "url", "link"} {
		if v, ok := payload[field].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("no shortlink in response")
}

func (s *Shortener) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
