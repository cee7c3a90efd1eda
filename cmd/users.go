package cmd

import (
	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/pkg/views"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Users with access to the back office",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users and their access",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := loadView(cmd, views.Users{})
		if err != nil {
			return err
		}
		return showView(cmd, sc, "Users")
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	addListFlags(usersListCmd)
}
