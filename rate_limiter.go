package main

import (
	"time"

	"golang.org/x/time/rate"
)

type userLimiter struct {
	hourlyLimiter *rate.Limiter
	dailyLimiter  *rate.Limiter
	lastReset     time.Time
	banUntil      time.Time
}

// checkRateLimits throttles a single user across both the bot commands and
// the relay endpoint. Exceeding either window earns a temporary ban.
func (b *Bot) checkRateLimits(userID int64) bool {
	if b.config.MessagesPerHour <= 0 || b.config.MessagesPerDay <= 0 {
		return true
	}

	b.userLimitersMu.Lock()
	defer b.userLimitersMu.Unlock()

	limiter, exists := b.userLimiters[userID]
	if !exists {
		limiter = &userLimiter{
			hourlyLimiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(b.config.MessagesPerHour)), b.config.MessagesPerHour),
			dailyLimiter:  rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(b.config.MessagesPerDay)), b.config.MessagesPerDay),
			lastReset:     b.clock.Now(),
		}
		b.userLimiters[userID] = limiter
	}

	now := b.clock.Now()

	if now.Before(limiter.banUntil) {
		return false
	}

	if now.Sub(limiter.lastReset) >= 24*time.Hour {
		limiter.dailyLimiter = rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(b.config.MessagesPerDay)), b.config.MessagesPerDay)
		limiter.lastReset = now
	}

	if !limiter.hourlyLimiter.Allow() || !limiter.dailyLimiter.Allow() {
		banDuration, _ := time.ParseDuration(b.config.TempBanDuration)
		limiter.banUntil = now.Add(banDuration)
		return false
	}

	return true
}
