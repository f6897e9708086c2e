package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"
)

func main() {
	initLoggers()

	InfoLogger.Println("Starting mini app relay service")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	config, err := loadConfig(configPath)
	if err != nil {
		ErrorLogger.Fatalf("Error loading configuration: %v", err)
	}
	applyEnvOverrides(&config)
	if err := config.validate(); err != nil {
		ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	db, err := initDB(config.DatabasePath)
	if err != nil {
		ErrorLogger.Fatalf("Error initializing database: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	relayBot := NewBot(db, config, RealClock{}, nil)

	tgClient, err := initTelegramBot(config.TelegramToken, relayBot.handleUpdate)
	if err != nil {
		ErrorLogger.Fatalf("Error initializing Telegram client: %v", err)
	}
	relayBot.tgBot = tgClient

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		InfoLogger.Println("Telegram polling started")
		relayBot.Start(ctx)
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.ListenPort),
		Handler: relayBot.newRouter(),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		InfoLogger.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ErrorLogger.Printf("HTTP server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		ErrorLogger.Printf("Error shutting down HTTP server: %v", err)
	}

	wg.Wait()

	InfoLogger.Println("Relay service stopped. Exiting application.")
}
