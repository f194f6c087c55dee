package services

import (
	"path/filepath"
	"strings"

	tele "gopkg.in/telebot.v3"
)

var (
	videoExts = extSet("mp4", "avi", "mkv", "mov", "wmv", "flv", "3gp", "webm", "m4v", "mpg", "mpeg")
	audioExts = extSet("mp3", "wav", "flac", "aac", "ogg", "wma", "m4a", "opus")
	photoExts = extSet("jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "tif")
)

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// MediaType classifies a filename for upload as a proper Telegram media
// type, so videos arrive playable and photos viewable.
func MediaType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch {
	case contains(videoExts, ext):
		return "video"
	case contains(audioExts, ext):
		return "audio"
	case contains(photoExts, ext):
		return "photo"
	default:
		return "document"
	}
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// upload sends the local file to the chat as its detected media type.
func (s *LeechService) upload(to tele.Recipient, path, filename string) (*tele.Message, string, error) {
	file := tele.FromDisk(path)
	mediaType := MediaType(filename)

	var payload interface{}
	switch mediaType {
	case "video":
		payload = &tele.Video{File: file, FileName: filename, Streaming: true}
	case "audio":
		payload = &tele.Audio{File: file, FileName: filename}
	case "photo":
		payload = &tele.Photo{File: file}
	default:
		payload = &tele.Document{File: file, FileName: filename}
	}

	msg, err := s.bot.Send(to, payload)
	if err != nil && mediaType != "document" {
		// Some files carry a media extension Telegram refuses; retry as
		// a plain document before giving up.
		msg, err = s.bot.Send(to, &tele.Document{File: file, FileName: filename})
		mediaType = "document"
	}
	return msg, mediaType, err
}
