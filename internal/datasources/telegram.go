package datasources

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"
)

// NewTelegramBot creates a long-polling telebot instance.
func NewTelegramBot(token string) (*tele.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}

	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	return b, nil
}
