// Package notify pushes advisor alerts to a Telegram channel: new client
// messages and questionnaire submissions. A nil notifier is valid and
// drops everything, so the token can stay unset in development.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier sends outbound alerts through the Telegram Bot API.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    zerolog.Logger
}

// New authenticates the bot. An empty token returns (nil, nil): alerts
// disabled.
func New(token string, chatID int64, log zerolog.Logger) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("telegram notifier authorized")
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

// ClientMessage alerts advisors that a traveler wrote into a conversation.
func (n *Notifier) ClientMessage(senderName, conversationID, preview string) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("New message from %s\nConversation: %s\n%s", senderName, conversationID, truncate(preview, 120)))
}

// QuestionnaireSubmitted alerts advisors that a traveler completed a
// questionnaire.
func (n *Notifier) QuestionnaireSubmitted(userName, title string) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("%s completed the questionnaire %q", userName, title))
}

// RegistrationPending alerts ops that a new account awaits confirmation,
// carrying the token so it can be relayed while no mailer is wired up.
func (n *Notifier) RegistrationPending(email, token string) {
	if n == nil {
		return
	}
	n.send(fmt.Sprintf("New registration: %s\nConfirmation token: %s", email, token))
}

// truncate caps a preview at n runes, never splitting a multi-byte
// character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Msg("telegram alert failed")
	}
}
