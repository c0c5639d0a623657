package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/sandbox"
)

const tokenExpiry = 24 * time.Hour

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("[Sandbox] JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[Sandbox] JWT_SECRET must be at least 32 characters long")
	}

	fixtures := sandbox.DefaultFixtures()
	if cfg.SandboxFixtures != "" {
		loaded, err := sandbox.LoadFixtures(cfg.SandboxFixtures)
		if err != nil {
			log.Fatalf("[Sandbox] Failed to load fixtures: %v", err)
		}
		fixtures = loaded
		log.Printf("[Sandbox] Fixtures: %s", cfg.SandboxFixtures)
	}

	srv, err := sandbox.New(fixtures, auth.NewJWTService(cfg.JWTSecret, tokenExpiry))
	if err != nil {
		log.Fatalf("[Sandbox] Failed to start: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.SandboxAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Println("[Sandbox] ========================================")
		log.Printf("[Sandbox] Storefront API listening on %s", cfg.SandboxAddr)
		log.Println("[Sandbox] ========================================")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Sandbox] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Sandbox] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Sandbox] Shutdown error: %v", err)
	}
}
