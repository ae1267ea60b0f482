package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/pkg/client"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, st, err := getClient()
		if err != nil {
			return err
		}

		// best effort: the local session is dropped even when the
		// server cannot be reached or already rejected the token
		if err := cli.SignOut(cmd.Context()); err != nil {
			if errors.Is(err, client.ErrNoCredential) {
				log.Info().Msg("no session stored")
				return nil
			}
			log.Warn().Err(err).Msg("server-side sign-out failed, clearing local session anyway")
		}

		if err := st.Clear(); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}

		logSuccess("signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
