package services

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// MembershipChecker is the slice of the bot API the force-sub gate needs.
type MembershipChecker interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Channel is a required channel the user must join before using the bot.
type Channel struct {
	Ref     tele.Recipient
	Name    string
	JoinURL string // empty for private channels without a public link
}

type channelRef string

func (c channelRef) Recipient() string { return string(c) }

// ForceSubService gates bot usage behind membership in the configured
// channels. The owner always bypasses the gate.
type ForceSubService struct {
	checker  MembershipChecker
	ownerID  int64
	channels []Channel
	log      *zap.Logger
}

func NewForceSubService(checker MembershipChecker, ownerID int64, enabled bool, channelList string, log *zap.Logger) *ForceSubService {
	s := &ForceSubService{checker: checker, ownerID: ownerID, log: log}
	if !enabled {
		return s
	}
	for _, entry := range strings.Fields(channelList) {
		s.channels = append(s.channels, parseChannel(entry))
	}
	return s
}

// parseChannel accepts "@username", a bare username, or a numeric chat ID
// for private channels.
func parseChannel(entry string) Channel {
	if id, err := strconv.ParseInt(entry, 10, 64); err == nil {
		return Channel{Ref: tele.ChatID(id), Name: entry}
	}
	username := strings.TrimPrefix(entry, "@")
	return Channel{
		Ref:     channelRef("@" + username),
		Name:    "@" + username,
		JoinURL: "https://t.me/" + username,
	}
}

// Enabled reports whether any channels are configured.
func (s *ForceSubService) Enabled() bool { return len(s.channels) > 0 }

// Missing returns the channels the user has not joined. A channel the bot
// cannot check counts as not joined.
func (s *ForceSubService) Missing(userID int64) []Channel {
	if len(s.channels) == 0 || userID == s.ownerID {
		return nil
	}

	var missing []Channel
	for _, ch := range s.channels {
		member, err := s.checker.ChatMemberOf(ch.Ref, tele.ChatID(userID))
		if err != nil {
			s.log.Warn("membership check failed",
				zap.String("channel", ch.Name), zap.Error(err))
			missing = append(missing, ch)
			continue
		}
		if member.Role == tele.Left || member.Role == tele.Kicked {
			missing = append(missing, ch)
		}
	}
	return missing
}
