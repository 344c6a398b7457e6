package emission

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned when the bot is not attached yet.
var ErrNotBound = errors.New("emission: notifier has no bot bound")

// Notifier is the Telegram-backed Messenger. The bot instance appears only
// after RunTelegram builds it, so it is bound late through an atomic pointer.
type Notifier struct {
	bot     atomic.Pointer[tele.Bot]
	adminID int64
}

// NewNotifier creates a Notifier that targets the given admin chat.
func NewNotifier(adminID int64) *Notifier {
	return &Notifier{adminID: adminID}
}

// Bind attaches the live bot. Safe to call from the OnStart hook.
func (n *Notifier) Bind(bot *tele.Bot) {
	n.bot.Store(bot)
}

// SendUser sends a Markdown message to the user and returns the message ID.
func (n *Notifier) SendUser(_ context.Context, userID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	bot := n.bot.Load()
	if bot == nil {
		return 0, ErrNotBound
	}
	msg, err := bot.Send(&tele.User{ID: userID}, text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: markup,
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// SendAdmin sends a Markdown message to the configured admin chat.
func (n *Notifier) SendAdmin(ctx context.Context, text string, markup *tele.ReplyMarkup) (int, error) {
	return n.SendUser(ctx, n.adminID, text, markup)
}

// DeleteForUser removes a previously sent message from the user's chat.
func (n *Notifier) DeleteForUser(_ context.Context, userID int64, messageID int) error {
	bot := n.bot.Load()
	if bot == nil {
		return ErrNotBound
	}
	return bot.Delete(&tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    userID,
	})
}
