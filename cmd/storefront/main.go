package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/storefront/internal/app"
	"github.com/example/storefront/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if os.Getenv("STOREFRONT_DEBUG") == "" {
		log.SetOutput(io.Discard)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	err = run(ctx, a, os.Args[1:], os.Stdout)
	if cerr := a.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}
