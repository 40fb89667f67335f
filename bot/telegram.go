package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/quantbird/spreadscan/internal/engine"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TELEGRAM BOT - Spread alerts
// ═══════════════════════════════════════════════════════════════════════════════

// Notifier pushes found-spread alerts to a Telegram chat. A nil Notifier is
// valid and does nothing, so callers never branch on configuration.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates a notifier, or (nil, nil) when no token is configured.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}

	log.Info().Str("bot", api.Self.UserName).Msg("🤖 Telegram alerts enabled")
	return &Notifier{api: api, chatID: chatID}, nil
}

// SpreadFound sends an alert for a selected spread.
func (n *Notifier) SpreadFound(res *engine.ScanResult) {
	if n == nil || !res.Found {
		return
	}

	text := fmt.Sprintf(`🎯 *%s %s*

Expiration: %s (%dd)
Sell %s / Buy %s
Credit: $%s  Risk: $%s
ROI: %s%%  Breakeven: %s
Safety margin: %s%% %s`,
		res.Symbol, res.SpreadType,
		res.Expiration, res.DTE,
		res.ShortStrike.StringFixed(2), res.BuyStrike.StringFixed(2),
		res.NetCredit.StringFixed(2), res.MaxRisk.StringFixed(2),
		res.ROIPercent.StringFixed(1), res.Breakeven.StringFixed(2),
		res.SafetyMarginPct.StringFixed(1), res.SafetyNote,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		log.Error().Err(err).Msg("Failed to send Telegram alert")
	}
}
