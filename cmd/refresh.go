package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/refresh"
	"github.com/hienao/openlist-strm/internal/session"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored token for a fresh one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, st, err := getClient()
		if err != nil {
			return err
		}

		if err := refresh.New(cli, st).Refresh(cmd.Context()); err != nil {
			if errors.Is(err, session.ErrNoSession) {
				return logError(err, "no session stored, sign in first")
			}
			return logError(err, "token refresh failed")
		}

		logSuccess("token refreshed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
