package main

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const callbackRefreshProfile = "refresh_profile"

func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// Check if the message is a command
	for _, entity := range message.Entities {
		if entity.Type != "bot_command" {
			continue
		}
		command := strings.TrimSpace(message.Text[entity.Offset : entity.Offset+entity.Length])

		if !b.checkRateLimits(userID) {
			b.sendRateLimitExceededMessage(ctx, chatID)
			return
		}

		switch command {
		case "/start":
			tier := b.sendWelcome(ctx, chatID, message.From)
			InfoLogger.Printf("Handled /start for user %d (tier: %s)", userID, tier)
		case "/getpic":
			b.sendOwnPhoto(ctx, chatID, message.From)
		}
		return
	}

	// Plain text outside a command: nothing to do, the mini app is the
	// conversation surface.
}

// sendOwnPhoto is a diagnostic command: replies with the user's resolved
// profile photo, or a notice when none exists.
func (b *Bot) sendOwnPhoto(ctx context.Context, chatID int64, user *models.User) {
	photoURL, err := b.lookupPhotoURL(ctx, user.ID)
	if err != nil {
		ErrorLogger.Printf("Error resolving photo for /getpic from user %d: %v", user.ID, err)
		if err := b.sendText(ctx, chatID, "Sorry, I couldn't fetch your profile photo right now."); err != nil {
			ErrorLogger.Printf("Error replying to /getpic in chat %d: %v", chatID, err)
		}
		return
	}
	if photoURL == "" {
		if err := b.sendText(ctx, chatID, "You don't have a profile photo set."); err != nil {
			ErrorLogger.Printf("Error replying to /getpic in chat %d: %v", chatID, err)
		}
		return
	}
	if err := b.sendPhotoMessage(ctx, chatID, photoURL, "Your current profile photo.", nil); err != nil {
		ErrorLogger.Printf("Error sending /getpic photo to chat %d: %v", chatID, err)
	}
}

// handleCallbackQuery acknowledges inline-button presses. The refresh button
// removes the stale profile card and asks the user to /start again.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *models.CallbackQuery) {
	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	if _, err := b.tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cq.ID,
	}); err != nil {
		ErrorLogger.Printf("Error answering callback query %s: %v", cq.ID, err)
	}

	if cq.Data != callbackRefreshProfile {
		return
	}
	message := cq.Message.Message
	if message == nil {
		return
	}

	if _, err := b.tgBot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    message.Chat.ID,
		MessageID: message.ID,
	}); err != nil {
		ErrorLogger.Printf("Error deleting profile card in chat %d: %v", message.Chat.ID, err)
	}

	if err := b.sendText(ctx, message.Chat.ID, "Please send /start again to refresh your profile."); err != nil {
		ErrorLogger.Printf("Error sending refresh prompt to chat %d: %v", message.Chat.ID, err)
	}
}

func (b *Bot) sendRateLimitExceededMessage(ctx context.Context, chatID int64) {
	if err := b.sendText(ctx, chatID, "Rate limit exceeded. Please try again later."); err != nil {
		ErrorLogger.Printf("Error sending rate limit notice to chat %d: %v", chatID, err)
	}
}
