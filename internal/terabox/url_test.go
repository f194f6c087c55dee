package terabox

import (
	"strings"
	"testing"
)

func TestIsShareLink(t *testing.T) {
	valid := []string{
		"https://terabox.com/s/1abcDEF_-xyz",
		"http://www.terabox.com/s/1abc",
		"https://1024tera.com/s/1abc",
		"https://1024terabox.com/s/1abc",
		"https://4funbox.com/s/1abc",
		"https://mirrobox.com/s/1abc",
		"https://nephobox.com/s/1abc",
	}
	for _, u := range valid {
		if !IsShareLink(u) {
			t.Fatalf("expected %s to be a share link", u)
		}
	}

	invalid := []string{
		"https://example.com/s/1abc",
		"https://terabox.com/other/1abc",
		"terabox.com/s/1abc",
		"just some text",
	}
	for _, u := range invalid {
		if IsShareLink(u) {
			t.Fatalf("expected %s not to be a share link", u)
		}
	}
}

func TestExtractShareLink(t *testing.T) {
	text := "check this out https://terabox.com/s/1abcDEF please"
	if got := ExtractShareLink(text); got != "https://terabox.com/s/1abcDEF" {
		t.Fatalf("ExtractShareLink = %q", got)
	}
	if got := ExtractShareLink("no links here"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestShareID(t *testing.T) {
	if got := ShareID("https://terabox.com/s/1abcDEF_-xyz"); got != "1abcDEF_-xyz" {
		t.Fatalf("ShareID = %q", got)
	}
	if got := ShareID("https://terabox.com/"); got != "" {
		t.Fatalf("expected empty share id, got %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(`my<file>:na/me?.mp4`); got != "my_file__na_me_.mp4" {
		t.Fatalf("SanitizeFilename = %q", got)
	}
	if got := SanitizeFilename("  spaced   out  .txt"); got != "spaced out .txt" {
		t.Fatalf("SanitizeFilename = %q", got)
	}
	if got := SanitizeFilename(""); got != "download" {
		t.Fatalf("SanitizeFilename empty = %q", got)
	}

	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFilename(long)
	if len(got) > maxFilenameLen {
		t.Fatalf("sanitized name too long: %d", len(got))
	}
	if !strings.HasSuffix(got, ".mp4") {
		t.Fatalf("expected extension preserved, got %q", got)
	}
}

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"30.56 MB", int64(30.56 * 1024 * 1024)},
		{"1.5 GB", int64(1.5 * 1024 * 1024 * 1024)},
		{"512 KB", 512 * 1024},
		{"1000", 1000},
		{"garbage", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := ParseSize(c.in); got != c.want {
			t.Fatalf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{500, "500 B"},
		{2048, "2.0 KB"},
		{32 * 1024 * 1024, "32.0 MB"},
	}
	for _, c := range cases {
		if got := FormatSize(c.in); got != c.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
