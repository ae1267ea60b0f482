package cmd

import (
	"github.com/spf13/cobra"
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPassword, _ := cmd.Flags().GetString("old-password")
		newPassword, _ := cmd.Flags().GetString("new-password")

		cli, st, err := getClient()
		if err != nil {
			return err
		}
		if err := guardCommand(cmd.Context(), cli, st); err != nil {
			return err
		}

		if err := cli.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
			return logError(err, "password change failed")
		}

		logSuccess("password changed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)

	passwdCmd.Flags().String("old-password", "", "current password")
	passwdCmd.Flags().String("new-password", "", "new password")
	_ = passwdCmd.MarkFlagRequired("old-password")
	_ = passwdCmd.MarkFlagRequired("new-password")
}
