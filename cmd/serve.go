package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/webgate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authentication gate in front of the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Gate.Listen
		}

		gate, err := webgate.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("building gate: %w", err)
		}

		server := &http.Server{
			Addr:    addr,
			Handler: gate.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting gate on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Gate crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down gate...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("gate forced to shutdown: %w", err)
		}

		log.Info().Msg("Gate exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (defaults to gate.listen from config)")
}
