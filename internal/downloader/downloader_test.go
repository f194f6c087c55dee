package downloader

import (
	"bytes"
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func randomData(t *testing.T, n int) []byte {
	t.Helper()
	data := make([]byte, n)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return data
}

func TestDownloadParallel(t *testing.T) {
	// 6MB with range support triggers the parallel strategy.
	data := randomData(t, 6*1024*1024)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "file.bin", time.Unix(0, 0), bytes.NewReader(data))
	}))
	defer ts.Close()

	d := New(ts.Client(), t.TempDir(), zap.NewNop())

	path, size, err := d.Download(context.Background(), ts.URL, "file.bin", nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len(data)) {
		t.Fatalf("size = %d, want %d", size, len(data))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("downloaded content does not match")
	}
}

func TestDownloadStream(t *testing.T) {
	// No Accept-Ranges header: the single-stream path is used.
	data := randomData(t, 128*1024)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer ts.Close()

	d := New(ts.Client(), t.TempDir(), zap.NewNop())

	path, size, err := d.Download(context.Background(), ts.URL, "file.bin", nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if size != int64(len(data)) {
		t.Fatalf("size = %d, want %d", size, len(data))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("downloaded content does not match")
	}
}

func TestDownloadCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for i := 0; i < 100; i++ {
			w.Write(make([]byte, 1024))
			flusher.Flush()
			time.Sleep(50 * time.Millisecond)
		}
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := New(ts.Client(), dir, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	if _, _, err := d.Download(ctx, ts.URL, "file.bin", nil); err == nil {
		t.Fatal("expected cancellation error")
	}

	// Partial files are removed.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover files, found %d", len(entries))
	}
}

func TestDownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	d := New(ts.Client(), t.TempDir(), zap.NewNop())

	if _, _, err := d.Download(context.Background(), ts.URL, "file.bin", nil); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	d := New(nil, dir, zap.NewNop())

	first := d.uniquePath("file.bin")
	if first != filepath.Join(dir, "file.bin") {
		t.Fatalf("first path = %q", first)
	}
	if err := os.WriteFile(first, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	second := d.uniquePath("file.bin")
	if second != filepath.Join(dir, "file_1.bin") {
		t.Fatalf("second path = %q", second)
	}
}

func TestChunkCount(t *testing.T) {
	cases := []struct {
		size int64
		want int
	}{
		{6 * 1024 * 1024, 2},
		{20 * 1024 * 1024, 3},
		{100 * 1024 * 1024, 4},
	}
	for _, c := range cases {
		if got := chunkCount(c.size); got != c.want {
			t.Fatalf("chunkCount(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}
