package terabox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

var (
	directLinkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"dlink":"([^"]+)"`),
		regexp.MustCompile(`"download_url":"([^"]+)"`),
		regexp.MustCompile(`downloadUrl":"([^"]+)"`),
	}
	filenameRe = regexp.MustCompile(`"filename":"([^"]+)"`)
	titleRe    = regexp.MustCompile(`<title>([^<]+)</title>`)
	fileSizeRe = regexp.MustCompile(`"size":(\d+)`)
)

// extractDirect fetches the share page and scrapes the embedded download
// link. Terabox inlines the share metadata as JSON in the page source.
func (r *Resolver) extractDirect(ctx context.Context, shareURL string) (*FileInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shareURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://www.terabox.com/")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("share page fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("share page fetch: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	html := string(body)

	var direct string
	for _, re := range directLinkPatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			direct = strings.ReplaceAll(m[1], `\/`, "/")
			break
		}
	}
	if direct == "" {
		return nil, fmt.Errorf("no direct link in share page")
	}

	name := "download"
	if m := filenameRe.FindStringSubmatch(html); m != nil {
		name = m[1]
	} else if m := titleRe.FindStringSubmatch(html); m != nil {
		name = strings.TrimSpace(m[1])
	}

	var size int64
	if m := fileSizeRe.FindStringSubmatch(html); m != nil {
		size, _ = strconv.ParseInt(m[1], 10, 64)
	}

	return &FileInfo{
		Name:      name,
		Size:      size,
		SizeText:  FormatSize(size),
		DirectURL: direct,
		Provider:  "direct",
	}, nil
}
