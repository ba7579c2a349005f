package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/overflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := overflow.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
