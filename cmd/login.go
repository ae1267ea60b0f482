package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/guard"
	"github.com/hienao/openlist-strm/internal/session"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the openlist-strm backend",
	Long: `Exchanges a username and password for a session token.
The token is saved locally so further commands run authenticated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, st, err := getClient()
		if err != nil {
			return err
		}

		// guest gate: a held valid session keeps the user off the
		// sign-in flow, and a fresh install belongs on register.
		switch guard.New(st, cli, nil).EvalGuest(cmd.Context(), guard.DestSignIn) {
		case guard.RedirectHome:
			return fmt.Errorf("already signed in, run '%s logout' first", rootCmd.Use)
		case guard.RedirectRegister:
			return fmt.Errorf("no account exists yet, run '%s register' first", rootCmd.Use)
		}

		result, err := cli.SignIn(cmd.Context(), loginUsername, loginPassword)
		if err != nil {
			return logError(err, "sign-in failed")
		}

		if err := st.SetToken(result.Token); err != nil {
			return fmt.Errorf("saving session token: %w", err)
		}
		if err := st.SetUserInfo(session.UserInfo{Username: result.Username}); err != nil {
			return fmt.Errorf("saving user info: %w", err)
		}

		logSuccess("signed in as %s", bold(result.Username))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")

	_ = loginCmd.MarkFlagRequired("username")
	_ = loginCmd.MarkFlagRequired("password")
}
