package notifierimpl

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/synthetix-ai/drafter/internal/notifier"
	"github.com/synthetix-ai/drafter/pkg/config"
	"github.com/synthetix-ai/drafter/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// TelegramImpl pushes alerts to the configured operator chat. With no token
// configured the notifier is disabled and every call is a debug-logged no-op.
type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

func New(opts Opts) (*TelegramImpl, error) {
	impl := &TelegramImpl{
		Logger: opts.Logger,
		Config: opts.Config,
	}

	if opts.Config.Telegram.Token == "" {
		opts.Logger.Info("Telegram token not configured, operator notifications disabled")
		return impl, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}
	impl.TgBot = tgBot

	return impl, nil
}

var _ notifier.Client = (*TelegramImpl)(nil)

func (tg *TelegramImpl) NotifyFailure(message string) {
	tg.send("Generation failure: " + message)
}

func (tg *TelegramImpl) NotifyBatchCreated(idea, provider string, draftCount int) {
	tg.send(fmt.Sprintf("Batch created via %s: %d drafts for idea %q", provider, draftCount, idea))
}

func (tg *TelegramImpl) send(text string) {
	if tg.TgBot == nil {
		tg.Logger.Debug("Notifier disabled, dropping message", "text", text)
		return
	}

	msg := tgbotapi.NewMessage(tg.Config.Telegram.ChatID, text)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message to operator chat",
			"chatID", tg.Config.Telegram.ChatID,
			"error", err)
		return
	}

	tg.Logger.Info("Notified operator chat", "chatID", tg.Config.Telegram.ChatID)
}
