package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ivistaz-ecom/Aarna-law-2026/internal/db"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/handlers"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/logger"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/repository/postgres"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/formtoken"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/lead"
	"github.com/ivistaz-ecom/Aarna-law-2026/internal/service/zoho"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize the token broker and the CRM client
	// Zoho credentials are validated lazily, on the first token request
	broker := zoho.NewTokenBroker(zoho.Config{
		RefreshToken: c.ZohoRefreshToken,
		ClientID:     c.ZohoClientID,
		ClientSecret: c.ZohoClientSecret,
		AccountsURL:  c.ZohoAccountsURL,
	}, log)
	crm := zoho.NewClient(c.ZohoCRMURL, c.ZohoModule, broker, log)

	leadService := lead.NewService(storage, crm, log)

	leadHandler := handlers.NewLead(leadService, nil, log)
	if c.SecretKey != "" {
		tokens, err := formtoken.New(formtoken.Config{SecretKey: c.SecretKey})
		if err != nil {
			return nil, fmt.Errorf("error while creating form token manager. Err: %w", err)
		}
		leadHandler = handlers.NewLead(leadService, tokens, log)
	}

	mux := handlers.NewRouter(leadHandler, log)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
