// Package terabox resolves Terabox-family share links to direct download
// URLs through third-party resolver APIs, with direct HTML extraction as a
// last resort.
package terabox

import (
	"regexp"
	"strconv"
	"strings"
)

var sharePatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(?:www\.)?terabox\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?1024tera\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?1024terabox\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?teraboxurl\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?4funbox\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?mirrobox\.com/s/[A-Za-z0-9_-]+`),
	regexp.MustCompile(`https?://(?:www\.)?nephobox\.com/s/[A-Za-z0-9_-]+`),
}

var shareIDRe = regexp.MustCompile(`/s/([A-Za-z0-9_-]+)`)

// IsShareLink reports whether url points at a known Terabox mirror share.
func IsShareLink(url string) bool {
	for _, re := range sharePatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// ExtractShareLink pulls the first Terabox share URL out of free-form
// message text, or returns "" when none is present.
func ExtractShareLink(text string) string {
	for _, word := range strings.Fields(text) {
		if IsShareLink(word) {
			return word
		}
	}
	return ""
}

// ShareID extracts the share identifier from a share URL.
func ShareID(url string) string {
	m := shareIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

var unsafeFilenameRe = regexp.MustCompile(`[<>:"/\\|?*]`)
var whitespaceRe = regexp.MustCompile(`\s+`)

const maxFilenameLen = 200

// SanitizeFilename makes a resolver-reported name safe for local storage.
func SanitizeFilename(name string) string {
	name = unsafeFilenameRe.ReplaceAllString(name, "_")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	if name == "" {
		return "download"
	}
	if len(name) > maxFilenameLen {
		if dot := strings.LastIndex(name, "."); dot > 0 && len(name)-dot <= 10 {
			ext := name[dot:]
			name = name[:maxFilenameLen-len(ext)] + ext
		} else {
			name = name[:maxFilenameLen]
		}
	}
	return name
}

var sizeRe = regexp.MustCompile(`([\d.]+)`)

// ParseSize converts a resolver size string like "30.56 MB" to bytes.
// Plain numeric strings are taken as bytes; unparseable input yields 0.
func ParseSize(s string) int64 {
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	upper := strings.ToUpper(s)
	switch {
	case strings.Contains(upper, "GB"):
		return int64(num * 1024 * 1024 * 1024)
	case strings.Contains(upper, "MB"):
		return int64(num * 1024 * 1024)
	case strings.Contains(upper, "KB"):
		return int64(num * 1024)
	default:
		return int64(num)
	}
}

// FormatSize renders a byte count for user-facing messages.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + []string{"KB", "MB", "GB", "TB"}[exp]
}
