package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gorm.io/gorm"
)

type Bot struct {
	tgBot          TelegramClient
	db             *gorm.DB
	config         Config
	httpClient     *http.Client
	clock          Clock
	userLimiters   map[int64]*userLimiter
	userLimitersMu sync.RWMutex
}

func NewBot(db *gorm.DB, config Config, clock Clock, tgClient TelegramClient) *Bot {
	return &Bot{
		db:           db,
		config:       config,
		clock:        clock,
		tgBot:        tgClient,
		userLimiters: make(map[int64]*userLimiter),
		httpClient: &http.Client{
			Timeout: config.upstreamTimeout(),
		},
	}
}

func (b *Bot) Start(ctx context.Context) {
	b.tgBot.Start(ctx)
}

func initTelegramBot(token string, handleUpdate func(ctx context.Context, tgBot *bot.Bot, update *models.Update)) (TelegramClient, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handleUpdate),
	}

	tgBot, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}

	return tgBot, nil
}

// sendText delivers a plain text message with the configured upstream timeout.
func (b *Bot) sendText(ctx context.Context, chatID any, text string) error {
	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	_, err := b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

func (b *Bot) sendTextWithKeyboard(ctx context.Context, chatID any, text string, keyboard *models.InlineKeyboardMarkup) error {
	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	_, err := b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	return err
}

// sendPhotoMessage attaches a photo by URL; Telegram fetches it server-side.
func (b *Bot) sendPhotoMessage(ctx context.Context, chatID any, photoURL, caption string, keyboard *models.InlineKeyboardMarkup) error {
	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: photoURL},
		Caption: caption,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.tgBot.SendPhoto(ctx, params)
	return err
}
