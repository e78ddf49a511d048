package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	depthscmd "github.com/louisbranch/whispering.depths/internal/cmd/depths"
)

func main() {
	cfg, err := depthscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[DEPTHS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := depthscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
