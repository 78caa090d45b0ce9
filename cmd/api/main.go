package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metrodocs.org/internal/auth"
	"metrodocs.org/internal/config"
	"metrodocs.org/internal/httpapi"
	"metrodocs.org/internal/obs"
	"metrodocs.org/internal/store/memory"
	"metrodocs.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		accounts auth.AccountStore
		probe    httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		store, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		accounts = store
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		log.Println("METRODOCS_PG_DSN not set; using in-memory account store (dev mode)")
		accounts = memory.New()
	}

	tokens, err := auth.NewTokenService(cfg.TokenSecret,
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithTokenIssuer(cfg.TokenIssuer),
	)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	svc, err := auth.NewService(accounts, tokens,
		auth.WithMinPasswordLength(cfg.MinPasswordLength),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(svc, tokens, probe, version)

	handler := api.Handler()
	handler = httpapi.LoggingJSON(handler)
	handler = httpapi.RateLimit(handler, cfg.RateLimitBurst, cfg.RateLimitPerSecond)
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.CORS(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting metrodocs-auth %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
