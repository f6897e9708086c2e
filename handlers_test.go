package main

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startUpdate(userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: userID},
			From: &models.User{
				ID:        userID,
				FirstName: "Alice",
				Username:  "alice_s",
			},
			Text: "/start",
			Entities: []models.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: 6},
			},
		},
	}
}

func TestHandleUpdate_StartCommand(t *testing.T) {
	var sent *bot.SendMessageParams
	mockTgClient := &MockTelegramClient{
		GetUserProfilePhotosFunc: func(ctx context.Context, params *bot.GetUserProfilePhotosParams) (*models.UserProfilePhotos, error) {
			return &models.UserProfilePhotos{TotalCount: 0}, nil
		},
		SendMessageFunc: func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
			sent = params
			return &models.Message{}, nil
		},
	}
	b := newTestBot(nil, testConfig(), mockTgClient)

	b.handleUpdate(context.Background(), nil, startUpdate(42))

	require.NotNil(t, sent, "/start must produce a welcome")
	assert.Equal(t, int64(42), sent.ChatID)
	assert.Contains(t, sent.Text, "User Details")
}

func TestHandleUpdate_IgnoresPlainText(t *testing.T) {
	sends := 0
	mockTgClient := &MockTelegramClient{
		SendMessageFunc: func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
			sends++
			return &models.Message{}, nil
		},
	}
	b := newTestBot(nil, testConfig(), mockTgClient)

	b.handleUpdate(context.Background(), nil, &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: 42},
			From: &models.User{ID: 42},
			Text: "just chatting",
		},
	})

	assert.Equal(t, 0, sends)
}

func TestHandleUpdate_RateLimitedCommand(t *testing.T) {
	config := testConfig()
	config.MessagesPerHour = 1
	config.MessagesPerDay = 1

	var texts []string
	mockTgClient := &MockTelegramClient{
		GetUserProfilePhotosFunc: func(ctx context.Context, params *bot.GetUserProfilePhotosParams) (*models.UserProfilePhotos, error) {
			return &models.UserProfilePhotos{TotalCount: 0}, nil
		},
		SendMessageFunc: func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
			texts = append(texts, params.Text)
			return &models.Message{}, nil
		},
	}
	b := newTestBot(nil, config, mockTgClient)

	b.handleUpdate(context.Background(), nil, startUpdate(42))
	b.handleUpdate(context.Background(), nil, startUpdate(42))

	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "Rate limit exceeded")
}

func TestHandleCallbackQuery_RefreshProfile(t *testing.T) {
	answered := false
	deleted := false
	var prompt string
	mockTgClient := &MockTelegramClient{
		AnswerCallbackQueryFunc: func(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
			answered = true
			assert.Equal(t, "cq-1", params.CallbackQueryID)
			return true, nil
		},
		DeleteMessageFunc: func(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
			deleted = true
			assert.Equal(t, 7, params.MessageID)
			return true, nil
		},
		SendMessageFunc: func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
			prompt = params.Text
			return &models.Message{}, nil
		},
	}
	b := newTestBot(nil, testConfig(), mockTgClient)

	b.handleUpdate(context.Background(), nil, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cq-1",
			Data: callbackRefreshProfile,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{
					ID:   7,
					Chat: models.Chat{ID: 42},
				},
			},
		},
	})

	assert.True(t, answered)
	assert.True(t, deleted)
	assert.Contains(t, prompt, "/start")
}

func TestHandleCallbackQuery_UnknownDataOnlyAnswers(t *testing.T) {
	deletes := 0
	mockTgClient := &MockTelegramClient{
		AnswerCallbackQueryFunc: func(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
			return true, nil
		},
		DeleteMessageFunc: func(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
			deletes++
			return true, nil
		},
	}
	b := newTestBot(nil, testConfig(), mockTgClient)

	b.handleUpdate(context.Background(), nil, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cq-2",
			Data: "something_else",
		},
	})

	assert.Equal(t, 0, deletes)
}
