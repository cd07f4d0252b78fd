package handlers

import (
	"context"

	"daily-bible-bot/internal/logger"
	"daily-bible-bot/internal/models"
	"daily-bible-bot/internal/plans"
	"daily-bible-bot/internal/progress"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleText drives the onboarding conversation.
func (h *Handler) HandleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID, userID := msg.Chat.ID, msg.From.ID

	conv, err := h.DB.GetConversation(userID)
	if err != nil {
		logger.Error("get conversation failed", "user", userID, "error", err)
		h.send(chatID, txtSomethingBroken)
		return
	}

	switch conv.State {
	case models.StateChoosingPlan:
		key := planFromButton(msg.Text)
		if err := h.DB.SetConversation(&models.Conversation{
			UserID:  userID,
			State:   models.StateChoosingTranslation,
			PlanKey: string(key),
		}); err != nil {
			logger.Error("set conversation failed", "user", userID, "error", err)
			h.send(chatID, txtSomethingBroken)
			return
		}
		h.sendWithMarkup(chatID, txtChooseTr, translationKB())

	case models.StateChoosingTranslation:
		tr := models.ParseTranslation(msg.Text)
		key := plans.Key(conv.PlanKey)
		if _, err := h.Tracker.RegisterUser(progress.Registration{
			UserID:      userID,
			ChatID:      chatID,
			Username:    msg.From.UserName,
			FirstName:   msg.From.FirstName,
			PlanKey:     key,
			Translation: tr,
		}); err != nil {
			logger.Error("register failed", "user", userID, "error", err)
			h.send(chatID, txtSomethingBroken)
			return
		}
		if err := h.DB.ClearConversation(userID); err != nil {
			logger.Warn("clear conversation failed", "user", userID, "error", err)
		}
		h.sendWithMarkup(chatID, registeredText(plans.Lookup(key), tr), tgbotapi.NewRemoveKeyboard(true))
		h.HandleToday(ctx, chatID, userID)

	default:
		h.send(chatID, txtHelp)
	}
}
