// Package main starts the stub chat backend and handles termination.
//
// The process exists for local development and integration testing of the
// widget; nothing it stores survives a restart.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	stubcmd "github.com/educatedpolarbear/green-buddy-chat/internal/cmd/stubserver"
)

func main() {
	cfg, err := stubcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STUB] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stubcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
