package services

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/tgleech/teraboxbot/internal/downloader"
	"github.com/tgleech/teraboxbot/internal/messages"
	"github.com/tgleech/teraboxbot/internal/metrics"
	"github.com/tgleech/teraboxbot/internal/terabox"
)

// LeechService runs the resolve → download → upload → forward pipeline and
// tracks the single active job allowed per user.
type LeechService struct {
	bot        *tele.Bot
	resolver   *terabox.Resolver
	downloader *downloader.Downloader
	users      *UserService
	metrics    *metrics.Collector
	log        *zap.Logger

	botName     string
	maxFileSize int64
	leechLog    int64
	dumpChannel int64

	mu     sync.Mutex
	active map[int64]*job
}

type job struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

func NewLeechService(bot *tele.Bot, resolver *terabox.Resolver, dl *downloader.Downloader, users *UserService, collector *metrics.Collector, botName string, maxFileSize, leechLog, dumpChannel int64, log *zap.Logger) *LeechService {
	return &LeechService{
		bot:         bot,
		resolver:    resolver,
		downloader:  dl,
		users:       users,
		metrics:     collector,
		log:         log,
		botName:     botName,
		maxFileSize: maxFileSize,
		leechLog:    leechLog,
		dumpChannel: dumpChannel,
		active:      make(map[int64]*job),
	}
}

// HasActive reports whether the user has a download in flight.
func (s *LeechService) HasActive(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[userID]
	return ok
}

// Cancel aborts the user's active download, if any.
func (s *LeechService) Cancel(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.active[userID]
	if !ok {
		return false
	}
	j.cancel()
	delete(s.active, userID)
	return true
}

// ActiveCount returns the number of downloads in flight.
func (s *LeechService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *LeechService) begin(userID int64) (*job, context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[userID]; ok {
		return nil, nil, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{id: uuid.New(), cancel: cancel}
	s.active[userID] = j
	return j, ctx, true
}

func (s *LeechService) finish(userID int64, j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.active[userID]; ok && cur.id == j.id {
		cur.cancel()
		delete(s.active, userID)
	}
}

// Leech runs the full pipeline for one share link, editing a status message
// as it goes. It blocks until the job finishes, fails, or is cancelled.
func (s *LeechService) Leech(c tele.Context, shareURL string) error {
	userID := c.Sender().ID

	j, ctx, ok := s.begin(userID)
	if !ok {
		return c.Send(messages.DownloadInProgress(), tele.ModeHTML)
	}
	defer s.finish(userID, j)

	s.metrics.LinkReceived()
	s.metrics.DownloadStarted()
	defer s.metrics.DownloadFinished()

	log := s.log.With(
		zap.String("job_id", j.id.String()),
		zap.Int64("user_id", userID),
		zap.String("url", shareURL),
	)
	log.Info("leech started")

	status, err := s.bot.Send(c.Chat(), "⏳ Resolving link...", tele.ModeHTML)
	if err != nil {
		return err
	}

	info, err := s.resolver.Resolve(ctx, shareURL)
	if err != nil {
		s.metrics.ResolveFailed()
		log.Error("resolve failed", zap.Error(err))
		_, err := s.bot.Edit(status, messages.Error("could not resolve the link"), tele.ModeHTML)
		return err
	}
	s.metrics.ResolveOK(info.Provider)
	log.Info("link resolved",
		zap.String("provider", info.Provider),
		zap.String("file", info.Name),
		zap.Int64("size", info.Size))

	if s.maxFileSize > 0 && info.Size > s.maxFileSize {
		_, err := s.bot.Edit(status, messages.TooLarge(info.Size, s.maxFileSize, info.DirectURL), tele.ModeHTML)
		return err
	}

	progress := func(downloaded, total int64, speed float64, eta time.Duration) {
		// Edit failures (rate limits, deleted message) are not fatal.
		_, _ = s.bot.Edit(status, messages.Progress(info.Name, downloaded, total, speed, eta), tele.ModeHTML)
	}

	started := time.Now()
	path, size, err := s.downloader.Download(ctx, info.DirectURL, info.Name, progress)
	if err != nil {
		if ctx.Err() == context.Canceled {
			s.metrics.DownloadCancelled()
			log.Info("leech cancelled")
			_, err := s.bot.Edit(status, messages.Cancelled(), tele.ModeHTML)
			return err
		}
		s.metrics.DownloadFailed()
		log.Error("download failed", zap.Error(err))
		_, err := s.bot.Edit(status, messages.Error("download failed, try again later"), tele.ModeHTML)
		return err
	}
	defer os.Remove(path)
	s.metrics.DownloadOK(size, time.Since(started))

	if ctx.Err() != nil {
		s.metrics.DownloadCancelled()
		_, err := s.bot.Edit(status, messages.Cancelled(), tele.ModeHTML)
		return err
	}

	_, _ = s.bot.Edit(status, messages.Uploading(info.Name), tele.ModeHTML)

	sent, mediaType, err := s.upload(c.Chat(), path, info.Name)
	if err != nil {
		log.Error("upload failed", zap.Error(err))
		_, err := s.bot.Edit(status, messages.Error("upload to Telegram failed"), tele.ModeHTML)
		return err
	}
	s.metrics.Uploaded(mediaType)
	s.forward(sent, log)

	if err := s.users.RecordDownload(ctx, userID, size); err != nil {
		log.Warn("failed to record download", zap.Error(err))
	}

	log.Info("leech finished",
		zap.String("media_type", mediaType),
		zap.Int64("size", size),
		zap.Duration("took", time.Since(started)))

	sizeText := info.SizeText
	if sizeText == "" {
		sizeText = terabox.FormatSize(size)
	}
	_, err = s.bot.Edit(status, messages.Success(info.Name, sizeText, s.botName), tele.ModeHTML)
	return err
}

// forward copies the uploaded file to the leech-log and dump channels.
func (s *LeechService) forward(sent *tele.Message, log *zap.Logger) {
	for _, channel := range []int64{s.leechLog, s.dumpChannel} {
		if channel == 0 {
			continue
		}
		if _, err := s.bot.Forward(tele.ChatID(channel), sent); err != nil {
			log.Warn("forward to channel failed",
				zap.Int64("channel", channel), zap.Error(err))
		}
	}
}
