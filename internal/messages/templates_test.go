package messages

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestProgressEscapesFilename(t *testing.T) {
	got := Progress("report<b>.mp4 & more", 512, 1024, 100, time.Minute)

	if strings.Contains(got, "<b>.mp4") {
		t.Fatalf("filename markup not escaped:\n%s", got)
	}
	if !strings.Contains(got, "report&lt;b&gt;.mp4 &amp; more") {
		t.Fatalf("expected escaped filename in:\n%s", got)
	}
}

func TestSuccessEscapesFilename(t *testing.T) {
	got := Success(`video "part<1>".mkv`, "1.0 MB", "Bot")

	if strings.Contains(got, "<1>") {
		t.Fatalf("filename markup not escaped:\n%s", got)
	}
	if !strings.Contains(got, "video &#34;part&lt;1&gt;&#34;.mkv") {
		t.Fatalf("expected escaped filename in:\n%s", got)
	}
}

func TestWelcomeEscapesUserName(t *testing.T) {
	got := Welcome("<script>alert(1)</script>", "Bot", false, 0)
	if strings.Contains(got, "<script>") {
		t.Fatalf("user name not escaped:\n%s", got)
	}
}

func TestTooLargeEscapesDirectURL(t *testing.T) {
	got := TooLarge(100, 50, "https://cdn.example.com/f?a=1&b=<2>")
	if strings.Contains(got, "&b=<2>") {
		t.Fatalf("direct url not escaped:\n%s", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	// Multibyte names must be cut on rune boundaries.
	name := strings.Repeat("电影", 30) + ".mp4"
	got := truncate(name, 40)

	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if utf8.RuneCountInString(got) != 43 { // 40 runes + "..."
		t.Fatalf("rune count = %d", utf8.RuneCountInString(got))
	}

	if short := truncate("file.bin", 40); short != "file.bin" {
		t.Fatalf("short name changed: %q", short)
	}
}
