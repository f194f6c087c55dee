package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/tgleech/teraboxbot/internal/messages"
	"github.com/tgleech/teraboxbot/internal/metrics"
	"github.com/tgleech/teraboxbot/internal/verify"
)

// HTTPController serves the operational endpoints: health probes, metrics,
// and the verification redeem route that shortlinks point back at.
type HTTPController struct {
	bot      *tele.Bot
	verifier *verify.Manager
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewHTTPController(bot *tele.Bot, verifier *verify.Manager, collector *metrics.Collector, log *zap.Logger) *HTTPController {
	return &HTTPController{bot: bot, verifier: verifier, metrics: collector, log: log}
}

// Router builds the gin engine with all routes registered.
func (c *HTTPController) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", c.HealthCheck)
	r.GET("/health", c.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/verify/:token", c.VerifyToken)

	return r
}

func (c *HTTPController) HealthCheck(ctx *gin.Context) {
	ctx.String(http.StatusOK, "OK")
}

// VerifyToken completes a shortlink verification and notifies the user in
// their chat.
func (c *HTTPController) VerifyToken(ctx *gin.Context) {
	token := ctx.Param("token")

	userID, err := c.verifier.Redeem(ctx.Request.Context(), token)
	if err != nil {
		c.metrics.VerificationFailed()
		c.log.Warn("verification redeem failed", zap.Error(err))
		ctx.String(http.StatusBadRequest, "Invalid or expired verification link.")
		return
	}
	c.metrics.VerificationOK()

	if _, err := c.bot.Send(tele.ChatID(userID), messages.VerificationDone(), tele.ModeHTML); err != nil {
		c.log.Warn("failed to notify verified user",
			zap.Int64("user_id", userID), zap.Error(err))
	}

	ctx.String(http.StatusOK, "Verification complete! Return to Telegram and send your link again.")
}
