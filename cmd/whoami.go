package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hienao/openlist-strm/internal/token"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, st, err := getClient()
		if err != nil {
			return err
		}
		if err := guardCommand(cmd.Context(), cli, st); err != nil {
			return err
		}

		tok, _ := st.Token()
		claims, decodeErr := token.Decode(tok)

		fmt.Println(bold("\n── Session ──"))
		if info, ok := st.UserInfo(); ok {
			printKV("Username", bold(info.Username))
		}
		printKV("Token", faint(truncate(tok, 32)))

		if decodeErr != nil {
			printKV("Claims", faint("(undecodable, validity deferred to server)"))
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"Claim", "Value"})
		if claims.Subject != "" {
			tw.AppendRow(table.Row{"sub", claims.Subject})
		}
		if claims.IssuedAt != nil {
			tw.AppendRow(table.Row{"iat", time.Unix(*claims.IssuedAt, 0).Format(time.RFC3339)})
		}
		if exp, ok := claims.ExpiryTime(); ok {
			tw.AppendRow(table.Row{"exp", exp.Format(time.RFC3339)})
			tw.AppendRow(table.Row{"remaining", time.Until(exp).Round(time.Minute).String()})
		}
		tw.Render()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
