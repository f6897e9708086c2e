package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-telegram/bot"
)

// Photos larger than this are not streamed through the resolver.
const maxPhotoBytes = 10 << 20

type photoKind int

const (
	photoFallback photoKind = iota
	photoRedirect
	photoBytes
)

type photoResult struct {
	kind        photoKind
	url         string
	data        []byte
	contentType string
}

func fallbackResult(seed string) photoResult {
	return photoResult{
		kind:        photoFallback,
		data:        generateFallbackAvatar(seed),
		contentType: "image/svg+xml",
	}
}

// resolveUserPhoto turns a user identifier into a servable image. It never
// returns an error: every failure along the way degrades to a generated
// placeholder so the avatar endpoint always has something to show.
func (b *Bot) resolveUserPhoto(ctx context.Context, userID string) photoResult {
	if userID == "" {
		return fallbackResult("U")
	}
	seed := string(firstRune(userID))

	telegramID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fallbackResult(seed)
	}

	if b.config.PhotoDeliveryMode == DeliveryInline {
		return fallbackResult(seed)
	}

	photoURL, err := b.lookupPhotoURL(ctx, telegramID)
	if err != nil {
		ErrorLogger.Printf("Error resolving profile photo for user %d: %v", telegramID, err)
		return fallbackResult(seed)
	}
	if photoURL == "" {
		// User has no profile photos; not an error.
		return fallbackResult(seed)
	}

	if b.config.PhotoDeliveryMode == DeliveryRedirect {
		return photoResult{kind: photoRedirect, url: photoURL}
	}

	data, contentType, err := b.fetchPhoto(ctx, telegramID, photoURL)
	if err != nil {
		ErrorLogger.Printf("Error fetching profile photo for user %d: %v", telegramID, err)
		return fallbackResult(seed)
	}
	return photoResult{kind: photoBytes, data: data, contentType: contentType}
}

// lookupPhotoURL asks Telegram for the newest profile-photo set, picks the
// largest size, and resolves its file handle to a downloadable URL. Returns
// an empty URL when the user has no photos.
func (b *Bot) lookupPhotoURL(ctx context.Context, telegramID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	photos, err := b.tgBot.GetUserProfilePhotos(ctx, &bot.GetUserProfilePhotosParams{
		UserID: telegramID,
		Limit:  1,
	})
	if err != nil {
		return "", fmt.Errorf("get profile photos: %w", err)
	}
	if photos == nil || photos.TotalCount == 0 || len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", nil
	}

	// Telegram returns several sizes per photo; take the best quality one.
	sizes := photos.Photos[0]
	best := sizes[0]
	for _, size := range sizes[1:] {
		if size.Width*size.Height > best.Width*best.Height {
			best = size
		}
	}

	file, err := b.tgBot.GetFile(ctx, &bot.GetFileParams{FileID: best.FileID})
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", best.FileID, err)
	}

	return b.tgBot.FileDownloadLink(file), nil
}

// fetchPhoto downloads the photo bytes, consulting the local cache first when
// enabled. A cache write failure never blocks returning bytes to the caller.
func (b *Bot) fetchPhoto(ctx context.Context, telegramID int64, photoURL string) ([]byte, string, error) {
	if b.config.CacheEnabled {
		if data, contentType, ok := b.cachedPhoto(telegramID); ok {
			return data, contentType, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.upstreamTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build photo request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download photo: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read photo body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	if b.config.CacheEnabled {
		if err := b.storeCachedPhoto(telegramID, data, contentType); err != nil {
			ErrorLogger.Printf("Error caching photo for user %d: %v", telegramID, err)
		}
	}

	return data, contentType, nil
}

// cachedPhoto returns the cache entry for a user, if both the index row and
// the file still exist.
func (b *Bot) cachedPhoto(telegramID int64) ([]byte, string, bool) {
	if b.db == nil {
		return nil, "", false
	}

	var entry CachedPhoto
	if err := b.db.Where("telegram_id = ?", telegramID).First(&entry).Error; err != nil {
		return nil, "", false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		return nil, "", false
	}
	return data, entry.ContentType, true
}

// storeCachedPhoto writes the side copy. Concurrent misses for the same user
// may race here; last-writer-wins is fine since the content is identical.
func (b *Bot) storeCachedPhoto(telegramID int64, data []byte, contentType string) error {
	if b.db == nil {
		return nil
	}

	if err := os.MkdirAll(b.config.CacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := filepath.Join(b.config.CacheDir, fmt.Sprintf("photo_%d", telegramID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	entry := CachedPhoto{TelegramID: telegramID}
	err := b.db.Where(CachedPhoto{TelegramID: telegramID}).
		Assign(CachedPhoto{FilePath: path, ContentType: contentType, FetchedAt: b.clock.Now()}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return fmt.Errorf("index cache entry: %w", err)
	}
	return nil
}
