// Package main starts the Green Buddy chat widget and handles termination.
//
// The process is a terminal front-end over the chat session coordinator; all
// chat state lives behind the backend's REST and socket surfaces.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	widgetcmd "github.com/educatedpolarbear/green-buddy-chat/internal/cmd/widget"
)

func main() {
	cfg, err := widgetcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[WIDGET] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := widgetcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
