package controllers

import (
	"context"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/tgleech/teraboxbot/internal/config"
	"github.com/tgleech/teraboxbot/internal/messages"
	"github.com/tgleech/teraboxbot/internal/services"
	"github.com/tgleech/teraboxbot/internal/terabox"
	"github.com/tgleech/teraboxbot/internal/verify"
)

type TelegramController struct {
	Bot      *tele.Bot
	Users    *services.UserService
	Leech    *services.LeechService
	Verifier *verify.Manager
	ForceSub *services.ForceSubService
	cfg      *config.Config
	log      *zap.Logger
}

// checkSubBtn re-runs the subscription check from the force-sub prompt.
var checkSubBtn = tele.Btn{Unique: "check_sub", Text: "✅ Check Subscription"}

func NewTelegramController(bot *tele.Bot, users *services.UserService, leech *services.LeechService, verifier *verify.Manager, forceSub *services.ForceSubService, cfg *config.Config, log *zap.Logger) *TelegramController {
	return &TelegramController{
		Bot:      bot,
		Users:    users,
		Leech:    leech,
		Verifier: verifier,
		ForceSub: forceSub,
		cfg:      cfg,
		log:      log,
	}
}

func (c *TelegramController) SetupHandlers() {
	c.Bot.Handle("/start", c.StartHandler)
	c.Bot.Handle("/help", c.HelpHandler)
	c.Bot.Handle("/stats", c.StatsHandler)
	c.Bot.Handle("/cancel", c.CancelHandler)
	c.Bot.Handle("/verify", c.VerifyHandler)
	c.Bot.Handle(&checkSubBtn, c.CheckSubHandler)
	c.Bot.Handle(tele.OnText, c.TextHandler)
}

func (c *TelegramController) StartHandler(ctx tele.Context) error {
	if _, err := c.Users.Register(context.Background(), ctx.Sender().ID); err != nil {
		c.log.Error("failed to register user", zap.Error(err))
	}

	return ctx.Send(
		messages.Welcome(ctx.Sender().FirstName, c.cfg.BotName, c.cfg.QuotaEnabled(), c.cfg.FreeLeechCount),
		tele.ModeHTML,
	)
}

func (c *TelegramController) HelpHandler(ctx tele.Context) error {
	return ctx.Send(
		messages.Help(c.cfg.BotName, c.cfg.QuotaEnabled(), c.cfg.FreeLeechCount, c.cfg.VerifyValidity),
		tele.ModeHTML,
	)
}

// StatsHandler is owner-only; everyone else is silently ignored.
func (c *TelegramController) StatsHandler(ctx tele.Context) error {
	if !c.Users.IsOwner(ctx.Sender().ID) {
		return nil
	}

	stats, err := c.Users.Totals(context.Background())
	if err != nil {
		c.log.Error("failed to load stats", zap.Error(err))
		return ctx.Send(messages.Error("could not load statistics"), tele.ModeHTML)
	}

	return ctx.Send(
		messages.Stats(c.cfg.BotName, stats.TotalUsers, stats.TotalDownloads, stats.TotalSize, c.Leech.ActiveCount()),
		tele.ModeHTML,
	)
}

func (c *TelegramController) CancelHandler(ctx tele.Context) error {
	if !c.Leech.Cancel(ctx.Sender().ID) {
		return ctx.Send(messages.NoActiveDownload(), tele.ModeHTML)
	}
	c.log.Info("download cancelled by user", zap.Int64("user_id", ctx.Sender().ID))
	return ctx.Send(messages.Cancelled(), tele.ModeHTML)
}

// VerifyHandler redeems a verification token pasted back into the chat,
// the manual alternative to the HTTP verify endpoint.
func (c *TelegramController) VerifyHandler(ctx tele.Context) error {
	token := ctx.Message().Payload
	if token == "" {
		return ctx.Send("Usage: /verify &lt;token&gt;", tele.ModeHTML)
	}

	if err := c.Verifier.RedeemFor(context.Background(), token, ctx.Sender().ID); err != nil {
		return ctx.Send(messages.Error("invalid or expired verification token"), tele.ModeHTML)
	}
	return ctx.Send(messages.VerificationDone(), tele.ModeHTML)
}

func (c *TelegramController) TextHandler(ctx tele.Context) error {
	sender := ctx.Sender()

	shareURL := terabox.ExtractShareLink(ctx.Text())
	if shareURL == "" {
		return ctx.Send(messages.UsageHint(), tele.ModeHTML)
	}

	if !c.Users.IsAuthorized(sender.ID) {
		return ctx.Send(messages.NotAuthorized(), tele.ModeHTML)
	}

	if missing := c.ForceSub.Missing(sender.ID); len(missing) > 0 {
		return c.sendForceSub(ctx, missing)
	}

	bg := context.Background()
	if _, err := c.Users.Register(bg, sender.ID); err != nil {
		c.log.Error("failed to register user", zap.Error(err))
		return ctx.Send(messages.Error("internal error, try again"), tele.ModeHTML)
	}

	if banned, err := c.Users.IsBanned(bg, sender.ID); err != nil {
		c.log.Error("ban check failed", zap.Error(err))
	} else if banned {
		return ctx.Send(messages.NotAuthorized(), tele.ModeHTML)
	}

	if c.Leech.HasActive(sender.ID) {
		return ctx.Send(messages.DownloadInProgress(), tele.ModeHTML)
	}

	needed, used, err := c.Verifier.Needed(bg, sender.ID)
	if err != nil {
		c.log.Error("verification check failed", zap.Error(err))
	} else if needed {
		return c.sendVerification(ctx, used)
	}

	return c.Leech.Leech(ctx, shareURL)
}

// CheckSubHandler answers the "Check Subscription" button on the force-sub
// prompt.
func (c *TelegramController) CheckSubHandler(ctx tele.Context) error {
	if missing := c.ForceSub.Missing(ctx.Sender().ID); len(missing) > 0 {
		return ctx.Respond(&tele.CallbackResponse{
			Text:      "You haven't joined all required channels yet.",
			ShowAlert: true,
		})
	}
	if err := ctx.Respond(&tele.CallbackResponse{}); err != nil {
		c.log.Warn("callback answer failed", zap.Error(err))
	}
	return ctx.Edit(messages.ForceSubVerified(), tele.ModeHTML)
}

func (c *TelegramController) sendForceSub(ctx tele.Context, missing []services.Channel) error {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row
	names := make([]string, 0, len(missing))
	for _, ch := range missing {
		names = append(names, ch.Name)
		if ch.JoinURL != "" {
			rows = append(rows, menu.Row(menu.URL("📢 Join "+ch.Name, ch.JoinURL)))
		}
	}
	rows = append(rows, menu.Row(menu.Data(checkSubBtn.Text, checkSubBtn.Unique)))
	menu.Inline(rows...)

	return ctx.Send(messages.ForceSubRequired(names), menu, tele.ModeHTML)
}

func (c *TelegramController) sendVerification(ctx tele.Context, used int) error {
	v, err := c.Verifier.New(context.Background(), ctx.Sender().ID)
	if err != nil {
		c.log.Error("failed to mint verification", zap.Error(err))
		return ctx.Send(messages.Error("could not create verification link"), tele.ModeHTML)
	}

	menu := &tele.ReplyMarkup{}
	btn := menu.URL("🔐 Complete Verification", v.ShortURL)
	menu.Inline(menu.Row(btn))

	return ctx.Send(
		messages.VerificationRequired(used, c.cfg.FreeLeechCount, c.cfg.VerifyValidity),
		menu, tele.ModeHTML,
	)
}
