// Package downloader fetches files from resolved direct URLs, preferring
// parallel range downloads and degrading to progressively more conservative
// single-stream strategies.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tgleech/teraboxbot/internal/terabox"
)

const (
	parallelMinSize  = 5 * 1024 * 1024
	chunkRetries     = 3
	progressInterval = 3 * time.Second
)

// Progress receives throttled download progress updates.
type Progress func(downloaded, total int64, speed float64, eta time.Duration)

// Downloader writes remote files into a local directory.
type Downloader struct {
	client *http.Client
	dir    string
	log    *zap.Logger
}

func New(client *http.Client, dir string, log *zap.Logger) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Downloader{client: client, dir: dir, log: log}
}

// Download fetches directURL into the download directory and returns the
// local path and byte count. The context cancels the transfer; partial
// files are removed on any failure.
func (d *Downloader) Download(ctx context.Context, directURL, filename string, progress Progress) (string, int64, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create download dir: %w", err)
	}

	path := d.uniquePath(terabox.SanitizeFilename(filename))

	// Probe for range support; servers that accept ranges get the
	// parallel strategy for anything worth splitting.
	if size, ok := d.probeRanges(ctx, directURL); ok && size > parallelMinSize {
		d.log.Info("parallel download",
			zap.String("file", filepath.Base(path)), zap.Int64("size", size))
		if err := d.downloadParallel(ctx, directURL, path, size, progress); err == nil {
			return path, size, nil
		} else if ctx.Err() != nil {
			os.Remove(path)
			return "", 0, ctx.Err()
		} else {
			d.log.Warn("parallel download failed, falling back", zap.Error(err))
		}
	}

	// Single-stream ladder: large copy buffers first, shrinking on failure.
	var lastErr error
	for _, bufSize := range []int{4 << 20, 2 << 20, 512 << 10, 64 << 10} {
		n, err := d.downloadStream(ctx, directURL, path, bufSize, progress)
		if err == nil {
			return path, n, nil
		}
		lastErr = err
		os.Remove(path)
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		d.log.Warn("stream download attempt failed",
			zap.Int("buffer", bufSize), zap.Error(err))
		select {
		case <-time.After(2 * time.Second):
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}

	return "", 0, fmt.Errorf("all download strategies failed: %w", lastErr)
}

// uniquePath suffixes the filename until it does not collide on disk.
func (d *Downloader) uniquePath(filename string) string {
	path := filepath.Join(d.dir, filename)
	ext := filepath.Ext(filename)
	base := filename[:len(filename)-len(ext)]
	for i := 1; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(d.dir, fmt.Sprintf("%s_%d%s", base, i, ext))
	}
}

func (d *Downloader) probeRanges(ctx context.Context, url string) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}
	if resp.Header.Get("Accept-Ranges") != "bytes" {
		return 0, false
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size <= 0 {
		return 0, false
	}
	return size, true
}

// chunkCount picks the split factor by file size.
func chunkCount(size int64) int {
	switch {
	case size < 10*1024*1024:
		return 2
	case size < 30*1024*1024:
		return 3
	default:
		return 4
	}
}

func (d *Downloader) downloadParallel(ctx context.Context, url, path string, total int64, progress Progress) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.Truncate(total); err != nil {
		return err
	}

	count := chunkCount(total)
	chunkSize := total / int64(count)

	tracker := newTracker(total, progress)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < count; i++ {
		start := int64(i) * chunkSize
		end := start + chunkSize - 1
		if i == count-1 {
			end = total - 1
		}
		g.Go(func() error {
			return d.downloadChunk(gctx, url, file, start, end, tracker)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

func (d *Downloader) downloadChunk(ctx context.Context, url string, file *os.File, start, end int64, tracker *tracker) error {
	var lastErr error
	for attempt := 0; attempt < chunkRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := d.fetchRange(ctx, url, file, start, end, tracker); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("chunk %d-%d: %w", start, end, lastErr)
}

func (d *Downloader) fetchRange(ctx context.Context, url string, file *os.File, start, end int64, tracker *tracker) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	buf := make([]byte, 256<<10)
	offset := start
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.WriteAt(buf[:n], offset); werr != nil {
				return werr
			}
			offset += int64(n)
			tracker.add(int64(n))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *Downloader) downloadStream(ctx context.Context, url, path string, bufSize int, progress Progress) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	total, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	tracker := newTracker(total, progress)

	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	buf := make([]byte, bufSize)
	var written int64
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := file.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			tracker.add(int64(n))
		}
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}
