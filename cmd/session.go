package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/session"
	"github.com/hienao/openlist-strm/internal/token"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or clear the locally stored session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored credential without contacting the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := getStore()
		if err != nil {
			return err
		}

		tok, ok := st.Token()
		if !ok {
			return logError(session.ErrNoSession, "no session stored")
		}

		printKV("Token", faint(truncate(tok, 48)))
		if info, hasInfo := st.UserInfo(); hasInfo {
			printKV("Username", info.Username)
		}
		if claims, err := token.Decode(tok); err == nil {
			if exp, hasExp := claims.ExpiryTime(); hasExp {
				printKV("Expires", exp.String())
			}
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the stored credential without contacting the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := getStore()
		if err != nil {
			return err
		}
		if err := st.Clear(); err != nil {
			return logError(err, "clearing session failed")
		}
		logSuccess("session cleared")
		return nil
	},
}

func init() {
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}
