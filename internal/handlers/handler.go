package handlers

import (
	"context"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/progress"
	"daily-bible-bot/internal/reading"
	"daily-bible-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Handler struct {
	Bot     Sender
	DB      *storage.DB
	Tracker *progress.Tracker
	Reading *reading.Service
}

func NewHandler(bot Sender, db *storage.DB, tracker *progress.Tracker, svc *reading.Service) *Handler {
	return &Handler{Bot: bot, DB: db, Tracker: tracker, Reading: svc}
}

// Listen consumes updates one at a time until the channel closes or ctx is done.
func (h *Handler) Listen(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, upd)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	h.HandleMessage(ctx, upd.Message)
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		h.HandleCommand(ctx, msg)
	} else {
		h.HandleText(ctx, msg)
	}
}

func (h *Handler) send(chatID int64, text string) {
	h.sendWithMarkup(chatID, text, nil)
}

func (h *Handler) sendWithMarkup(chatID int64, text string, markup interface{}) {
	reply := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		reply.ReplyMarkup = markup
	}
	if _, err := h.Bot.Send(reply); err != nil {
		logger.Error("send failed", "chat", chatID, "error", err)
	}
}
