// Package messages holds the user-facing message templates. All templates
// render Telegram HTML.
package messages

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tgleech/teraboxbot/internal/terabox"
)

var supportedDomains = []string{
	"terabox.com",
	"1024tera.com",
	"4funbox.com",
	"mirrobox.com",
	"nephobox.com",
}

func Welcome(userName, botName string, verificationEnabled bool, freeCount int) string {
	gate := "Unlimited downloads!"
	if verificationEnabled {
		gate = fmt.Sprintf("Complete verification after %d free downloads", freeCount)
	}
	return fmt.Sprintf(`🎉 <b>Welcome %s!</b>

I'm <b>%s</b> - your Terabox file downloader!

<b>📥 How to use:</b>
1. Send me any Terabox link
2. I'll download and send it to you
3. %s

<b>🔗 Supported links:</b>
• %s

Send me a link to get started! 🚀`,
		html.EscapeString(userName), botName, gate, strings.Join(supportedDomains, "\n• "))
}

func Help(botName string, verificationEnabled bool, freeCount int, validity time.Duration) string {
	verification := "❌ Disabled"
	if verificationEnabled {
		verification = fmt.Sprintf("✅ Enabled\n• %d free downloads per user\n• Verification valid for %d hours",
			freeCount, int(validity.Hours()))
	}
	return fmt.Sprintf(`<b>📋 %s Commands:</b>

/start - Start the bot
/help - Show this help message
/cancel - Cancel your active download
/stats - Bot statistics (owner only)

<b>📥 How to download:</b>
1. Copy any Terabox share link
2. Send it to me
3. Wait for download to complete

<b>🔐 Verification System:</b>
%s`, botName, verification)
}

func Stats(botName string, totalUsers, totalDownloads, totalSize int64, activeDownloads int) string {
	return fmt.Sprintf(`<b>📊 %s Statistics</b>

<b>👥 Users:</b> %d
<b>📥 Total downloads:</b> %d
<b>💾 Total size:</b> %s
<b>⏳ Active downloads:</b> %d`,
		botName, totalUsers, totalDownloads, terabox.FormatSize(totalSize), activeDownloads)
}

func VerificationRequired(used, free int, validity time.Duration) string {
	return fmt.Sprintf(`🔐 <b>Verification Required</b>

You've used <b>%d/%d</b> free downloads.

To continue downloading, please complete verification by clicking the button below.

⏰ <i>Verification is valid for %d hours</i>`,
		used, free, int(validity.Hours()))
}

func VerificationDone() string {
	return `✅ <b>Verification Complete!</b>

Your downloads are unlocked. Send me a Terabox link!`
}

func Progress(filename string, downloaded, total int64, speed float64, eta time.Duration) string {
	pct := 0.0
	if total > 0 {
		pct = float64(downloaded) / float64(total) * 100
	}
	const barLen = 10
	filled := int(pct / 100 * barLen)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barLen-filled)

	return fmt.Sprintf(`📥 <b>Downloading...</b>

<b>📄 File:</b> <code>%s</code>
<b>📊 Progress:</b> %.1f%%
<code>[%s]</code>
<b>⚡ Speed:</b> %s/s
<b>⏱️ ETA:</b> %s`,
		escTruncate(filename, 40), pct, bar, terabox.FormatSize(int64(speed)), formatETA(eta))
}

func Uploading(filename string) string {
	return fmt.Sprintf(`📤 <b>Uploading to Telegram...</b>

<b>📄 File:</b> <code>%s</code>

<i>Please wait, this may take a moment...</i>`, escTruncate(filename, 40))
}

func Success(filename, size, botName string) string {
	return fmt.Sprintf(`✅ <b>Done!</b>

<b>📄 File:</b> <code>%s</code>
<b>💾 Size:</b> %s

<i>Downloaded by %s</i>`, escTruncate(filename, 60), size, botName)
}

func Error(reason string) string {
	return fmt.Sprintf(`❌ <b>Download Failed</b>

<b>Reason:</b> %s

<i>Please try again or contact support if the problem persists.</i>`, reason)
}

func TooLarge(size, limit int64, directURL string) string {
	return fmt.Sprintf(`⚠️ <b>File Too Large</b>

The file is %s, over the %s upload limit.

You can download it directly:
%s`, terabox.FormatSize(size), terabox.FormatSize(limit), html.EscapeString(directURL))
}

func InvalidLink() string {
	return `❌ <b>Invalid Terabox link!</b>

Please send a valid link like:
<code>https://terabox.com/s/xxxxx</code>`
}

func UsageHint() string {
	return `ℹ️ Send me a Terabox link!

Examples:
• https://terabox.com/s/xxxxx
• https://1024tera.com/s/xxxxx

💡 Use /cancel to stop an ongoing download`
}

func DownloadInProgress() string {
	return `⚠️ <b>Download In Progress</b>

You already have an active download.
Use /cancel to stop it and start a new one.`
}

func NoActiveDownload() string {
	return `ℹ️ <b>No Active Download</b>

You don't have any ongoing downloads to cancel.

📥 Send a Terabox link to start downloading!`
}

func Cancelled() string {
	return `✅ <b>Download Cancelled</b>

Your download has been successfully cancelled.
You can start a new download anytime!`
}

func NotAuthorized() string {
	return `🚫 You are not authorized to use this bot.`
}

func ForceSubRequired(channels []string) string {
	var list strings.Builder
	for _, ch := range channels {
		list.WriteString("• " + html.EscapeString(ch) + "\n")
	}
	return fmt.Sprintf(`🔒 <b>Subscription Required</b>

To use this bot, you must join our channel(s):

%s
<b>Steps:</b>
1. Click the button(s) below to join
2. Tap "✅ Check Subscription" when done
3. Send your link again!`, list.String())
}

func ForceSubVerified() string {
	return `✅ <b>Subscription Verified!</b>

Thank you for joining our channel(s)!
You can now use the bot freely.

Send me a Terabox link to begin!`
}

// escTruncate caps the string at n runes and escapes it for HTML rendering.
// Filenames come from resolver responses and must never break the markup.
func escTruncate(s string, n int) string {
	return html.EscapeString(truncate(s, n))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return "Unknown"
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
