package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/pkg/storage"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openSessionDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sess, err := db.LoadSession(cmd.Context())
		if err != nil {
			if errors.Is(err, storage.ErrMissingSession) {
				fmt.Println(missingSessionMessage)
				return nil
			}
			return err
		}

		t := currentTheme(cmd)
		if name := sess.DisplayName(); name != "" {
			fmt.Println(t.Title.Render(name))
		}
		fmt.Printf("%s %s\n", t.Muted.Render("email:  "), sess.Email)
		fmt.Printf("%s %s\n", t.Muted.Render("user id:"), sess.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
