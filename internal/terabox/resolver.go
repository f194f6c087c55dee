package terabox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tgleech/teraboxbot/internal/cache"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultEndpoints is the resolver fallback chain, tried in order.
var DefaultEndpoints = []string{
	"https://wdzone-terabox-api.vercel.app/api",
	"https://teradownloader.com/api/download",
	"https://qtcloud.workers.dev/api",
}

const cacheTTL = 30 * time.Minute

// FileInfo describes a resolved share link.
type FileInfo struct {
	Name      string `json:"name"`
	SizeText  string `json:"size_text"`
	Size      int64  `json:"size"`
	DirectURL string `json:"direct_url"`
	Provider  string `json:"provider"`
}

// Resolver turns share links into direct download URLs by walking a chain
// of third-party resolver endpoints, falling back to scraping the share
// page itself. Successful resolutions are cached.
type Resolver struct {
	client    *http.Client
	endpoints []string
	cache     cache.Cache
	log       *zap.Logger
}

func NewResolver(client *http.Client, endpoints []string, c cache.Cache, log *zap.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Resolver{client: client, endpoints: endpoints, cache: c, log: log}
}

// Resolve returns file info for the given share URL.
func (r *Resolver) Resolve(ctx context.Context, shareURL string) (*FileInfo, error) {
	if !IsShareLink(shareURL) {
		return nil, fmt.Errorf("not a terabox share link: %s", shareURL)
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, shareURL); err == nil {
			info := &FileInfo{}
			if err := json.Unmarshal([]byte(cached), info); err == nil {
				r.log.Debug("resolver cache hit", zap.String("url", shareURL))
				return info, nil
			}
		}
	}

	var lastErr error
	for _, endpoint := range r.endpoints {
		info, err := r.resolveWith(ctx, endpoint, shareURL)
		if err != nil {
			r.log.Warn("resolver endpoint failed",
				zap.String("endpoint", endpoint), zap.Error(err))
			lastErr = err
			continue
		}
		r.store(ctx, shareURL, info)
		return info, nil
	}

	// Last resort: scrape the share page directly.
	info, err := r.extractDirect(ctx, shareURL)
	if err != nil {
		if lastErr != nil {
			return nil, fmt.Errorf("all resolver endpoints failed (last: %w)", lastErr)
		}
		return nil, err
	}
	r.store(ctx, shareURL, info)
	return info, nil
}

func (r *Resolver) store(ctx context.Context, shareURL string, info *FileInfo) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, shareURL, string(raw), cacheTTL); err != nil {
		r.log.Warn("resolver cache store failed", zap.Error(err))
	}
}

// resolveWith dispatches on the endpoint's provider family. Each provider
// exposes a slightly different request/response shape.
func (r *Resolver) resolveWith(ctx context.Context, endpoint, shareURL string) (*FileInfo, error) {
	switch {
	case strings.Contains(endpoint, "wdzone"):
		return r.resolveWDZone(ctx, endpoint, shareURL)
	case strings.Contains(endpoint, "teradownloader"):
		return r.resolveTeraDownloader(ctx, endpoint, shareURL)
	case strings.Contains(endpoint, "qtcloud"):
		return r.resolveQTCloud(ctx, endpoint, shareURL)
	default:
		return r.resolveGeneric(ctx, endpoint, shareURL)
	}
}

// resolveWDZone calls the WDZone API. Its JSON keys are decorated with
// emoji ("✅ Status", "📜 Extracted Info"), so keys are matched by
// substring rather than exact name.
func (r *Resolver) resolveWDZone(ctx context.Context, endpoint, shareURL string) (*FileInfo, error) {
	reqURL := endpoint + "?url=" + url.QueryEscape(shareURL)

	raw, err := r.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("wdzone: decode: %w", err)
	}

	var status string
	var extracted json.RawMessage
	for key, val := range payload {
		if strings.Contains(key, "Status") || strings.Contains(key, "status") {
			_ = json.Unmarshal(val, &status)
		}
		if strings.Contains(key, "Extracted") || strings.Contains(key, "extracted") {
			extracted = val
		}
	}
	if status != "Success" || extracted == nil {
		return nil, fmt.Errorf("wdzone: unexpected response format")
	}

	// Extracted info may be a single object or a one-element list.
	var fileMap map[string]any
	var list []map[string]any
	if err := json.Unmarshal(extracted, &list); err == nil && len(list) > 0 {
		fileMap = list[0]
	} else if err := json.Unmarshal(extracted, &fileMap); err != nil {
		return nil, fmt.Errorf("wdzone: decode extracted info: %w", err)
	}

	info := &FileInfo{Provider: "wdzone"}
	for key, val := range fileMap {
		s, ok := val.(string)
		if !ok {
			continue
		}
		switch {
		case strings.Contains(key, "Title") || strings.Contains(key, "title") || strings.Contains(key, "name"):
			info.Name = s
		case strings.Contains(key, "Size") || strings.Contains(key, "size"):
			info.SizeText = s
		case strings.Contains(key, "Direct") || strings.Contains(key, "download") || strings.Contains(key, "link"):
			info.DirectURL = s
		}
	}
	if info.DirectURL == "" || info.Name == "" {
		return nil, fmt.Errorf("wdzone: no download link in response")
	}
	info.Size = ParseSize(info.SizeText)
	return info, nil
}

func (r *Resolver) resolveTeraDownloader(ctx context.Context, endpoint, shareURL string) (*FileInfo, error) {
	reqURL := endpoint + "?url=" + url.QueryEscape(shareURL)

	raw, err := r.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		DownloadLink string `json:"download_link"`
		DirectLink   string `json:"direct_link"`
		FileName     string `json:"file_name"`
		Size         string `json:"size"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("teradownloader: decode: %w", err)
	}

	direct := payload.DownloadLink
	if direct == "" {
		direct = payload.DirectLink
	}
	if direct == "" {
		return nil, fmt.Errorf("teradownloader: no download link in response")
	}
	return &FileInfo{
		Name:      orDefault(payload.FileName, "download"),
		SizeText:  payload.Size,
		Size:      ParseSize(payload.Size),
		DirectURL: direct,
		Provider:  "teradownloader",
	}, nil
}

func (r *Resolver) resolveQTCloud(ctx context.Context, endpoint, shareURL string) (*FileInfo, error) {
	reqURL := endpoint + "?url=" + shareURL

	raw, err := r.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Download string `json:"download"`
		URL      string `json:"url"`
		FileName string `json:"filename"`
		Size     string `json:"size"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("qtcloud: decode: %w", err)
	}

	direct := payload.Download
	if direct == "" {
		direct = payload.URL
	}
	if direct == "" {
		return nil, fmt.Errorf("qtcloud: no download link in response")
	}
	return &FileInfo{
		Name:      orDefault(payload.FileName, "download"),
		SizeText:  payload.Size,
		Size:      ParseSize(payload.Size),
		DirectURL: direct,
		Provider:  "qtcloud",
	}, nil
}

// resolveGeneric POSTs {"link","url"} and scans the common response fields.
func (r *Resolver) resolveGeneric(ctx context.Context, endpoint, shareURL string) (*FileInfo, error) {
	body, err := json.Marshal(map[string]string{"link": shareURL, "url": shareURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generic: HTTP %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("generic: decode: %w", err)
	}

	info := &FileInfo{Provider: "generic"}
	for _, field := range []string{"download_url", "downloadUrl", "direct_link", "url", "link"} {
		if s, ok := payload[field].(string); ok && s != "" {
			info.DirectURL = s
			break
		}
	}
	if info.DirectURL == "" {
		return nil, fmt.Errorf("generic: no download link in response")
	}
	for _, field := range []string{"file_name", "filename", "name", "title"} {
		if s, ok := payload[field].(string); ok && s != "" {
			info.Name = s
			break
		}
	}
	if s, ok := payload["size"].(string); ok {
		info.SizeText = s
		info.Size = ParseSize(s)
	}
	info.Name = orDefault(info.Name, "download")
	return info, nil
}

func (r *Resolver) getJSON(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
