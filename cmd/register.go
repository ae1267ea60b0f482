package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/guard"
	"github.com/hienao/openlist-strm/internal/session"
)

var (
	registerUsername string
	registerPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create the first account on a fresh installation",
	Long: `Registers the single operator account. The backend allows exactly
one account; once it exists, use login instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, st, err := getClient()
		if err != nil {
			return err
		}

		switch guard.New(st, cli, nil).EvalGuest(cmd.Context(), guard.DestRegister) {
		case guard.RedirectHome:
			return fmt.Errorf("already signed in, run '%s logout' first", rootCmd.Use)
		case guard.RedirectSignIn:
			return fmt.Errorf("an account already exists, run '%s login' instead", rootCmd.Use)
		}

		if err := cli.SignUp(cmd.Context(), registerUsername, registerPassword); err != nil {
			return logError(err, "registration failed")
		}
		logSuccess("account %s created", bold(registerUsername))

		// sign in right away so the new session is usable
		result, err := cli.SignIn(cmd.Context(), registerUsername, registerPassword)
		if err != nil {
			return logError(err, "registration succeeded but sign-in failed")
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
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "Account username")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Account password")

	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")
}
