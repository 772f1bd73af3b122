// Package stubserver parses stub server command flags and composes its
// entrypoint.
package stubserver

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/educatedpolarbear/green-buddy-chat/internal/platform/cmd"
	server "github.com/educatedpolarbear/green-buddy-chat/internal/stubserver"
)

// Config holds stub server command configuration.
type Config struct {
	HTTPAddr string `env:"GREEN_BUDDY_STUB_HTTP_ADDR" envDefault:":8090"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "stub HTTP listen address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the stub backend until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStubServer, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{HTTPAddr: cfg.HTTPAddr}); err != nil {
			return fmt.Errorf("serve stub: %w", err)
		}
		return nil
	})
}
