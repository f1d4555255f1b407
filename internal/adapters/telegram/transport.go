// Package telegram adapts Telegram updates to dialog events and dialog
// replies to Telegram messages. It owns no dialog logic: everything it
// receives is translated and handed to the engine.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/unitpass/passbot/pkg/domain"
)

// Engine is the transport's view of the dialog state machine.
type Engine interface {
	Handle(ctx context.Context, ev domain.Event) domain.Reply
}

// Transport runs the long-polling loop and the update-to-event mapping.
type Transport struct {
	bot    *bot.Bot
	engine Engine
	logger *slog.Logger
}

// New creates the transport and registers its handlers.
func New(token string, engine Engine, logger *slog.Logger) (*Transport, error) {
	t := &Transport{engine: engine, logger: logger}

	b, err := bot.New(token, bot.WithDefaultHandler(t.onUpdate))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.RegisterHandler(bot.HandlerTypeMessageText, "start", bot.MatchTypeCommand, t.onStart)

	t.bot = b
	return t, nil
}

// Run starts long polling and blocks until ctx is canceled.
func (t *Transport) Run(ctx context.Context) {
	t.bot.Start(ctx)
}

func (t *Transport) onStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	ev := domain.Event{
		Kind: domain.EventDialogStart,
		User: userFromMessage(update.Message),
	}
	t.send(ctx, update.Message.Chat.ID, t.engine.Handle(ctx, ev))
}

func (t *Transport) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		t.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		ev := domain.Event{
			Kind: domain.EventText,
			User: userFromMessage(update.Message),
			Text: update.Message.Text,
		}
		t.send(ctx, update.Message.Chat.ID, t.engine.Handle(ctx, ev))
	}
}

func (t *Transport) onCallback(ctx context.Context, q *models.CallbackQuery) {
	// Acknowledge first so the client stops its spinner whatever happens
	// next.
	if _, err := t.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
	}); err != nil {
		t.logger.Warn("failed to answer callback query", "err", err)
	}

	user := domain.User{
		ID:        q.From.ID,
		FirstName: q.From.FirstName,
		LastName:  q.From.LastName,
		Username:  q.From.Username,
	}

	var ev domain.Event
	switch {
	case strings.HasPrefix(q.Data, domain.CallbackLangPrefix):
		ev = domain.Event{
			Kind:         domain.EventLanguageChosen,
			User:         user,
			LanguageCode: strings.TrimPrefix(q.Data, domain.CallbackLangPrefix),
		}
	case q.Data == domain.CallbackDateToday:
		ev = domain.Event{Kind: domain.EventDateChoice, User: user, DateChoice: domain.DateToday}
	case q.Data == domain.CallbackDateManual:
		ev = domain.Event{Kind: domain.EventDateChoice, User: user, DateChoice: domain.DateManual}
	default:
		t.logger.Warn("unknown callback payload", "data", q.Data, "user_id", user.ID)
		return
	}

	// For a private dialog the chat id equals the user id; prefer the
	// originating message's chat when it is still accessible.
	chatID := user.ID
	if q.Message.Message != nil {
		chatID = q.Message.Message.Chat.ID
	}
	t.send(ctx, chatID, t.engine.Handle(ctx, ev))
}

func (t *Transport) send(ctx context.Context, chatID int64, reply domain.Reply) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply.Text,
	}
	if len(reply.Keyboard) > 0 {
		params.ReplyMarkup = keyboardMarkup(reply.Keyboard)
	}

	if _, err := t.bot.SendMessage(ctx, params); err != nil {
		t.logger.Error("failed to send message", "chat_id", chatID, "err", err)
	}
}

func keyboardMarkup(rows [][]domain.Button) *models.InlineKeyboardMarkup {
	markup := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Data,
			})
		}
		markup = append(markup, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: markup}
}

func userFromMessage(msg *models.Message) domain.User {
	u := domain.User{ID: msg.Chat.ID}
	if msg.From != nil {
		u.ID = msg.From.ID
		u.FirstName = msg.From.FirstName
		u.LastName = msg.From.LastName
		u.Username = msg.From.Username
	}
	return u
}
