package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labelmart/internal/client"
	"labelmart/internal/config"
	"labelmart/internal/handler"
	"labelmart/internal/money"
	"labelmart/internal/repository"
	"labelmart/internal/server"
	"labelmart/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitSqliteClient(cfg.DatabaseURL)
	commerceClient := client.NewCommerceClient(&cfg.Commerce)

	ledgerRepo := repository.NewLedgerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	settlementService := service.NewSettlementService(
		db,
		commerceClient,
		cfg.BaseURL,
		cfg.Commerce.RedirectURL,
		cfg.Commerce.WebhookSecret,
		money.FromCents(cfg.LabelPriceCents),
		ledgerRepo,
		orderRepo,
		webhookEventRepo,
	)

	adminHandler := handler.NewAdminHandler(orderRepo, ledgerRepo, webhookEventRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(settlementService, adminHandler, cfg.Auth.JWTSecret, cfg.Auth.AdminToken)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
