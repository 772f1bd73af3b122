// Package widget parses widget command flags and composes the chat TUI
// entrypoint.
package widget

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/educatedpolarbear/green-buddy-chat/internal/auth"
	"github.com/educatedpolarbear/green-buddy-chat/internal/chat"
	entrypoint "github.com/educatedpolarbear/green-buddy-chat/internal/platform/cmd"
	"github.com/educatedpolarbear/green-buddy-chat/internal/socket"
	"github.com/educatedpolarbear/green-buddy-chat/internal/tui"
)

// Config holds widget command configuration.
type Config struct {
	APIBaseURL string `env:"GREEN_BUDDY_API_URL" envDefault:"http://localhost:8090"`
	Token      string `env:"GREEN_BUDDY_TOKEN"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "chat backend base URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token, overrides stored credentials")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the chat session coordinator and serves the TUI until the
// context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWidget, func(ctx context.Context) error {
		token := auth.Normalize(cfg.Token)
		if token == "" {
			loaded, err := auth.LoadToken()
			if err != nil {
				return fmt.Errorf("no chat token: set GREEN_BUDDY_TOKEN or pass -token: %w", err)
			}
			token = loaded
		}

		username := ""
		if identity, err := auth.PeekIdentity(token); err == nil {
			username = identity.Username
			if identity.Expired(time.Now()) {
				log.Printf("widget: token for %s is expired, the backend will reject it", username)
			}
		}

		sock, err := socket.Dial(ctx, cfg.APIBaseURL, token)
		if err != nil {
			return fmt.Errorf("dial chat socket: %w", err)
		}
		defer sock.Close()

		coord := chat.NewCoordinator(chat.NewClient(cfg.APIBaseURL, token), sock, chat.Config{Token: token})
		coord.Bind()
		coord.StartUnreadPolling(ctx)

		program := tea.NewProgram(tui.NewApp(coord, username), tea.WithContext(ctx), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run widget: %w", err)
		}
		return nil
	})
}
