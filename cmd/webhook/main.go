package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/islatechai-lang/cryptoomind/config"
	"github.com/islatechai-lang/cryptoomind/internal/entitlement"
	"github.com/islatechai-lang/cryptoomind/internal/payment"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DBHost == "" {
		log.Fatal("DB_HOST not set, the webhook server needs the credit ledger")
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

	stripeService := payment.NewService(payment.Options{
		APIKey:        cfg.StripeSecretKey,
		PriceID:       cfg.StripePriceID,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.StripeSuccessURL,
		CancelURL:     cfg.StripeCancelURL,
		CreditsPerBuy: cfg.CreditsPerPurchase,
	})
	log.Printf("Stripe initialized. Webhook secret: %s (length: %d)",
		maskSecret(cfg.StripeWebhookSecret), len(cfg.StripeWebhookSecret))

	// Checkout endpoint for the buy flow: returns the hosted payment URL
	http.HandleFunc("/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID := r.URL.Query().Get("user")
		if userID == "" {
			http.Error(w, "user query parameter required", http.StatusBadRequest)
			return
		}

		id, url, err := stripeService.CreateCheckoutSession(userID)
		if err != nil {
			log.Printf("Failed to create checkout session for user %s: %v", userID, err)
			http.Error(w, "Error creating checkout session", http.StatusInternalServerError)
			return
		}

		log.Printf("Checkout session %s created for user %s", id, userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": id, "url": url})
	})

	// Stripe webhook: verified events turn into credit grants
	http.HandleFunc("/webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("Error reading request body: %v", err)
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			log.Printf("Stripe-Signature header not found")
			http.Error(w, "Stripe-Signature header required", http.StatusBadRequest)
			return
		}

		event, err := stripeService.VerifyWebhookSignature(body, signature)
		if err != nil {
			log.Printf("Failed to verify webhook signature: %v", err)
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}

		log.Printf("Webhook event verified. Event type: %s, Event ID: %s", event.Type, event.ID)

		grant, err := stripeService.ProcessEvent(event)
		if err != nil {
			log.Printf("Failed to process payment event: %v", err)
			http.Error(w, "Error processing event", http.StatusInternalServerError)
			return
		}

		if grant != nil {
			if err := ledger.Grant(r.Context(), grant.UserID, grant.Credits); err != nil {
				log.Printf("Failed to grant %d credits to user %s: %v", grant.Credits, grant.UserID, err)
				http.Error(w, "Error granting credits", http.StatusInternalServerError)
				return
			}
			log.Printf("Granted %d credits to user %s (event %s)", grant.Credits, grant.UserID, event.ID)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	})

	// Simple health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Webhook server is running"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	log.Printf("Starting webhook server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// maskSecret masks a secret string for logging (shows first 3 and last 3 characters)
func maskSecret(secret string) string {
	if len(secret) < 7 {
		return "***"
	}
	return secret[:3] + "..." + secret[len(secret)-3:]
}
