package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Photo delivery modes for the avatar endpoint.
const (
	DeliveryRedirect = "redirect"        // 302 to the Telegram file URL
	DeliveryStream   = "stream"          // fetch and serve the bytes ourselves
	DeliveryInline   = "inline-fallback" // always serve the generated placeholder
)

type Config struct {
	TelegramToken      string `json:"telegram_token"`
	AdminChatID        int64  `json:"admin_chat_id"`
	WebsiteURL         string `json:"website_url"`
	PublicBaseURL      string `json:"public_base_url"`
	ListenPort         int    `json:"listen_port"`
	DatabasePath       string `json:"database_path"`
	RelayAPIToken      string `json:"relay_api_token"`
	PhotoDeliveryMode  string `json:"photo_delivery_mode"`
	CacheEnabled       bool   `json:"cache_enabled"`
	CacheDir           string `json:"cache_dir"`
	MessageHistorySize int    `json:"message_history_size"`
	MessagesPerHour    int    `json:"messages_per_hour"`
	MessagesPerDay     int    `json:"messages_per_day"`
	TempBanDuration    string `json:"temp_ban_duration"`
	UpstreamTimeout    string `json:"upstream_timeout"`
}

func defaultConfig() Config {
	return Config{
		ListenPort:         3000,
		DatabasePath:       "relay.db",
		PhotoDeliveryMode:  DeliveryStream,
		CacheDir:           "photo_cache",
		MessageHistorySize: 50,
		MessagesPerHour:    60,
		MessagesPerDay:     500,
		TempBanDuration:    "10m",
		UpstreamTimeout:    "8s",
	}
}

// loadConfig reads the JSON config file if it exists. A missing file is not an
// error; environment variables alone can configure the service.
func loadConfig(filename string) (Config, error) {
	config := defaultConfig()

	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", filename, err)
	}
	return config, nil
}

// applyEnvOverrides lets deployment environments (Railway etc.) override the
// file-based configuration. Env always wins.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		config.TelegramToken = v
	}
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.AdminChatID = id
		}
	}
	if v := os.Getenv("WEBSITE_URL"); v != "" {
		config.WebsiteURL = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		config.PublicBaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.ListenPort = port
		}
	}
	if v := os.Getenv("RELAY_API_TOKEN"); v != "" {
		config.RelayAPIToken = v
	}
	if v := os.Getenv("PHOTO_DELIVERY_MODE"); v != "" {
		config.PhotoDeliveryMode = v
	}
	if v := os.Getenv("PHOTO_CACHE_DIR"); v != "" {
		config.CacheDir = v
		config.CacheEnabled = true
	}
}

// validate reports startup-fatal configuration problems.
func (c Config) validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram_token (BOT_TOKEN) is required")
	}
	if c.AdminChatID == 0 {
		return fmt.Errorf("admin_chat_id (ADMIN_CHAT_ID) is required")
	}
	if c.WebsiteURL == "" {
		return fmt.Errorf("website_url (WEBSITE_URL) is required")
	}
	switch c.PhotoDeliveryMode {
	case DeliveryRedirect, DeliveryStream, DeliveryInline:
	default:
		return fmt.Errorf("unknown photo_delivery_mode %q", c.PhotoDeliveryMode)
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d out of range", c.ListenPort)
	}
	if _, err := time.ParseDuration(c.UpstreamTimeout); err != nil {
		return fmt.Errorf("invalid upstream_timeout: %w", err)
	}
	if c.TempBanDuration != "" {
		if _, err := time.ParseDuration(c.TempBanDuration); err != nil {
			return fmt.Errorf("invalid temp_ban_duration: %w", err)
		}
	}
	return nil
}

// upstreamTimeout is the bound applied to every outbound Telegram call and
// photo download. validate() guarantees the value parses.
func (c Config) upstreamTimeout() time.Duration {
	d, err := time.ParseDuration(c.UpstreamTimeout)
	if err != nil {
		return 8 * time.Second
	}
	return d
}
