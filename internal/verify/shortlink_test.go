package verify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type mockRoundTripper struct {
	status int
	body   string
	gotURL string
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.gotURL = req.URL.String()
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestShortenDroplink(t *testing.T) {
	rt := &mockRoundTripper{status: http.StatusOK, body: `{"shortenedUrl": "https://droplink.co/abc"}`}
	s := NewShortener(&http.Client{Transport: rt}, "key", "", "droplink", zap.NewNop())

	got := s.Shorten(context.Background(), "https://bot.example.com/verify/tok")
	if got != "https://droplink.co/abc" {
		t.Fatalf("Shorten = %q", got)
	}
	if !strings.Contains(rt.gotURL, "droplink.co/api") {
		t.Fatalf("unexpected provider URL: %q", rt.gotURL)
	}
}

func TestShortenFallsBackToLongURL(t *testing.T) {
	rt := &mockRoundTripper{status: http.StatusInternalServerError, body: ""}
	s := NewShortener(&http.Client{Transport: rt}, "key", "", "droplink", zap.NewNop())

	long := "https://bot.example.com/verify/tok"
	if got := s.Shorten(context.Background(), long); got != long {
		t.Fatalf("expected fallback to long URL, got %q", got)
	}
}

func TestShortenNoAPIKey(t *testing.T) {
	s := NewShortener(nil, "", "", "droplink", zap.NewNop())

	long := "https://bot.example.com/verify/tok"
	if got := s.Shorten(context.Background(), long); got != long {
		t.Fatalf("expected passthrough without api key, got %q", got)
	}
}

func TestShortenGeneric(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"short_url": "https://sho.rt/xyz"}`))
	}))
	defer ts.Close()

	s := NewShortener(ts.Client(), "key", ts.URL, "custom", zap.NewNop())

	got := s.Shorten(context.Background(), "https://bot.example.com/verify/tok")
	if got != "https://sho.rt/xyz" {
		t.Fatalf("Shorten = %q", got)
	}
}
