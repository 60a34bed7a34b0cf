package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog-search/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-search: %v\n", err)
		os.Exit(1)
	}
}
