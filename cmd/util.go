package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/hienao/openlist-strm/internal/config"
	"github.com/hienao/openlist-strm/internal/guard"
	"github.com/hienao/openlist-strm/internal/refresh"
	"github.com/hienao/openlist-strm/internal/session"
	"github.com/hienao/openlist-strm/pkg/client"
)

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if appConfig != "" {
		loaded, err := config.Load(appConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if env := viper.GetString(EnvironmentKey); env != "" {
		cfg.Environment = config.Environment(env)
	}
	if server := viper.GetString(ServerKey); server != "" {
		// an explicit server address wins in every environment
		cfg.API.DevelopmentBase = server
		cfg.API.ProductionBase = server
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getStore() (*session.FileStore, error) {
	path := viper.GetString(SessionPathKey)
	if path == "" {
		defaultPath, err := session.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return session.NewFileStore(path), nil
}

// getClient wires the API client to the local session store. The
// unauthorized handler clears the session and prints the appropriate
// next step before the failing command reports its own error.
func getClient() (*client.Client, *session.FileStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := getStore()
	if err != nil {
		return nil, nil, err
	}

	var cli *client.Client
	cli = client.New(cfg.APIBase(),
		client.WithStore(st),
		client.WithUnauthorizedHandler(func(ctx context.Context) {
			dest := guard.New(st, cli, nil).Recover(ctx)
			printEntryPointHint(dest)
		}),
	)
	return cli, st, nil
}

// guardCommand runs the protected navigation gate before a command that
// needs a session. Redirect verdicts become actionable errors; a
// renewal-due token lets the command proceed while a background
// refresh runs.
func guardCommand(ctx context.Context, cli *client.Client, st session.Store) error {
	g := guard.New(st, cli, refresh.New(cli, st))
	switch g.EvalProtected(ctx) {
	case guard.RedirectSignIn:
		return fmt.Errorf("not signed in, run '%s login' first", rootCmd.Use)
	case guard.RedirectRegister:
		return fmt.Errorf("no account exists yet, run '%s register' first", rootCmd.Use)
	default:
		return nil
	}
}

func printEntryPointHint(dest guard.Destination) {
	if dest == guard.DestRegister {
		log.Warn().Msgf("session rejected and cleared; no account exists yet, run '%s register'", rootCmd.Use)
	} else {
		log.Warn().Msgf("session rejected and cleared; run '%s login' to sign in again", rootCmd.Use)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
