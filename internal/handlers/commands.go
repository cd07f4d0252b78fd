package handlers

import (
	"context"
	"errors"
	"strings"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/progress"
	"daily-bible-bot/internal/reading"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID
	cmd := msg.Command()

	switch {
	case cmd == "start":
		h.HandleStart(ctx, msg)
	case cmd == "today":
		h.HandleToday(ctx, chatID, userID)
	case cmd == "progress":
		h.HandleProgress(chatID, userID)
	case cmd == "settings":
		h.HandleSettings(chatID, userID)
	case cmd == "cancel":
		h.HandleCancel(chatID, userID)
	case cmd == "history":
		h.HandleHistory(chatID, userID)
	case cmd == "help":
		h.send(chatID, txtHelp)
	case cmd == "share" || strings.HasPrefix(cmd, "share_"):
		h.HandleShare(chatID, cmd)
	default:
		h.send(chatID, txtHelp)
	}
}

// ---------------- /start --------------------
func (h *Handler) HandleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID

	phase, err := h.Tracker.Phase(userID)
	if err != nil {
		logger.Error("get user failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}
	if phase != progress.PhaseUnregistered {
		h.HandleToday(ctx, chatID, userID)
		return
	}

	h.askPlan(chatID, userID, welcomeText(msg.From.FirstName))
}

func (h *Handler) askPlan(chatID, userID int64, text string) {
	if err := h.DB.SetConversation(&models.Conversation{
		UserID: userID,
		State:  models.StateChoosingPlan,
	}); err != nil {
		logger.Error("set conversation failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}
	h.sendWithMarkup(chatID, text, planKB())
}

// ---------------- /settings -----------------
func (h *Handler) HandleSettings(chatID, userID int64) {
	h.askPlan(chatID, userID, "⚙️ Choose a new reading plan.\nYour progress will restart from day 1.")
}

// ---------------- /cancel -------------------
func (h *Handler) HandleCancel(chatID, userID int64) {
	if err := h.DB.ClearConversation(userID); err != nil {
		logger.Error("clear conversation failed", "user", userID, "error", err)
	}
	h.sendWithMarkup(chatID, txtCancelled, tgbotapi.NewRemoveKeyboard(true))
}

// ---------------- /today --------------------
func (h *Handler) HandleToday(ctx context.Context, chatID, userID int64) {
	d, err := h.Reading.Today(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, reading.ErrUnregistered):
		h.send(chatID, txtRegisterFirst)
		return
	case errors.Is(err, reading.ErrAlreadyReadToday):
		h.send(chatID, txtAlreadyRead)
		return
	case errors.Is(err, reading.ErrPlanComplete):
		h.send(chatID, txtPlanComplete)
		return
	case errors.Is(err, reading.ErrContentUnavailable):
		h.send(chatID, txtFetchFailed)
		return
	default:
		logger.Error("today failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}

	for _, ch := range d.Chapters {
		h.send(chatID, ch.Format()+"\n\n📤 Share this passage: "+shareCommand(ch.Book, ch.Number))
	}
	h.send(chatID, dayLine(d.DaysRead(), d.Reading.TotalDays))
	logger.Info("reading delivered", "user", userID, "day", d.Reading.Day, "reading", d.Reading.Reference())
}

// ---------------- /progress -----------------
func (h *Handler) HandleProgress(chatID, userID int64) {
	st, err := h.Tracker.Status(userID)
	if errors.Is(err, progress.ErrNotFound) {
		h.send(chatID, txtRegisterFirst)
		return
	}
	if err != nil {
		logger.Error("status failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}
	h.send(chatID, progressText(st))
}

// ---------------- /history ------------------
func (h *Handler) HandleHistory(chatID, userID int64) {
	recs, err := h.DB.ListProgress(userID, historySize)
	if err != nil {
		logger.Error("list progress failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}
	if len(recs) == 0 {
		h.send(chatID, txtNoHistory)
		return
	}
	h.send(chatID, historyText(recs))
}

// ---------------- /share --------------------
func (h *Handler) HandleShare(chatID int64, cmd string) {
	book, chapter, ok := parseShare(cmd)
	if !ok {
		h.send(chatID, txtShareHint)
		return
	}
	h.send(chatID, shareText(book, chapter))
}

// SendReminder nudges a user whose reading for today is still waiting.
func (h *Handler) SendReminder(u *models.User) error {
	_, err := h.Bot.Send(tgbotapi.NewMessage(u.ChatID, txtReminder))
	return err
}
