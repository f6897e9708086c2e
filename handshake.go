package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
)

// startTier records how far the /start reply degraded. The progression is
// strictly forward: richAttempt, then textFallback, then minimalFallback.
// Each tier is terminal on success; there are no retries within one /start.
type startTier int

const (
	tierRich startTier = iota
	tierText
	tierMinimal
)

func (t startTier) String() string {
	switch t {
	case tierRich:
		return "rich"
	case tierText:
		return "text"
	default:
		return "minimal"
	}
}

const minimalWelcomeText = "Welcome! Tap the button below to open the mini app."

// sendWelcome replies to /start with the user's profile details and a deep
// link into the mini app. Preferred form attaches the profile photo; if the
// photo can't be resolved or attached it falls back to text-only, and if even
// that send fails it falls back to a minimal welcome with a bare deep link.
func (b *Bot) sendWelcome(ctx context.Context, chatID int64, user *models.User) startTier {
	deepLink := b.buildDeepLink(user)
	keyboard := welcomeKeyboard(deepLink)
	caption := welcomeCaption(user)

	photoURL, err := b.lookupPhotoURL(ctx, user.ID)
	if err != nil {
		ErrorLogger.Printf("Error looking up profile photo for user %d: %v", user.ID, err)
	}
	if photoURL != "" {
		err := b.sendPhotoMessage(ctx, chatID, photoURL, caption, keyboard)
		if err == nil {
			return tierRich
		}
		ErrorLogger.Printf("Error sending rich welcome to chat %d: %v", chatID, err)
	}

	err = b.sendTextWithKeyboard(ctx, chatID, caption, keyboard)
	if err == nil {
		return tierText
	}
	ErrorLogger.Printf("Error sending text welcome to chat %d: %v", chatID, err)

	// Last resort: no metadata interpolation at all.
	bareLink := b.buildBareDeepLink(user.ID)
	if err := b.sendTextWithKeyboard(ctx, chatID, minimalWelcomeText, bareKeyboard(bareLink)); err != nil {
		ErrorLogger.Printf("Error sending minimal welcome to chat %d: %v", chatID, err)
	}
	return tierMinimal
}

// buildDeepLink parameterizes the mini-app URL with the user's identity plus
// a pointer back at this service's avatar endpoint, so the website fetches
// the photo itself instead of us pushing bytes into the chat payload.
func (b *Bot) buildDeepLink(user *models.User) string {
	u, err := url.Parse(b.config.WebsiteURL)
	if err != nil {
		return b.config.WebsiteURL
	}

	q := u.Query()
	q.Set("user_id", strconv.FormatInt(user.ID, 10))
	if user.FirstName != "" {
		q.Set("first_name", user.FirstName)
	}
	if user.LastName != "" {
		q.Set("last_name", user.LastName)
	}
	if user.Username != "" {
		q.Set("username", user.Username)
	}
	if b.config.PublicBaseURL != "" {
		q.Set("photo_url", b.avatarURL(user.ID))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// buildBareDeepLink carries only the user id, for the minimal fallback path.
func (b *Bot) buildBareDeepLink(telegramID int64) string {
	u, err := url.Parse(b.config.WebsiteURL)
	if err != nil {
		return b.config.WebsiteURL
	}
	q := u.Query()
	q.Set("user_id", strconv.FormatInt(telegramID, 10))
	u.RawQuery = q.Encode()
	return u.String()
}

func (b *Bot) avatarURL(telegramID int64) string {
	base := strings.TrimRight(b.config.PublicBaseURL, "/")
	return base + "/v1/avatar?userId=" + strconv.FormatInt(telegramID, 10)
}

func welcomeCaption(user *models.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	handle := "not set"
	if user.Username != "" {
		handle = "@" + user.Username
	}

	return fmt.Sprintf(
		"👤 User Details\n\n"+
			"🆔 ID: %d\n"+
			"📛 Name: %s\n"+
			"🔗 Username: %s\n\n"+
			"Tap the button below to open the mini app.",
		user.ID, name, handle,
	)
}

func welcomeKeyboard(deepLink string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📱 Open Mini App", WebApp: &models.WebAppInfo{URL: deepLink}},
			},
			{
				{Text: "🔄 Refresh", CallbackData: callbackRefreshProfile},
			},
		},
	}
}

func bareKeyboard(deepLink string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📱 Open Mini App", WebApp: &models.WebAppInfo{URL: deepLink}},
			},
		},
	}
}
