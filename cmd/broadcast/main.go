package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"github.com/islatechai-lang/cryptoomind/config"
	"github.com/islatechai-lang/cryptoomind/internal/entitlement"
	"github.com/islatechai-lang/cryptoomind/internal/notify"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: broadcast <message...>")
	}
	message := strings.Join(os.Args[1:], " ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DBHost == "" {
		log.Fatal("DB_HOST not set, broadcast needs the credit ledger")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN not set in environment")
	}

	ledger, err := entitlement.NewPostgres(entitlement.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, cfg.FreeCredits)
	if err != nil {
		log.Fatalf("Failed to initialize credit ledger: %v", err)
	}
	defer ledger.Close()

	tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID,
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	ctx := context.Background()

	users, err := ledger.Users(ctx)
	if err != nil {
		log.Fatalf("Failed to get users from ledger: %v", err)
	}
	log.Printf("Found %d users in ledger", len(users))

	// Only users registered with a numeric Telegram chat ID are reachable
	var chatIDs []int64
	skipped := 0
	for _, id := range users {
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		chatIDs = append(chatIDs, chatID)
	}
	if skipped > 0 {
		log.Printf("Skipped %d users without a numeric Telegram chat ID", skipped)
	}

	sent, failed := tg.Broadcast(ctx, chatIDs, message)

	log.Printf("=== BROADCAST COMPLETED ===")
	log.Printf("Total users: %d", len(users))
	log.Printf("Successfully sent: %d", sent)
	log.Printf("Failed to send: %d", failed)
}
