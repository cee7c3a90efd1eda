package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/pkg/views"
)

var donorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "Donor balances",
}

var donorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List donor balances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := loadView(cmd, views.DonorBalances{})
		if err != nil {
			return err
		}
		return showView(cmd, sc, "Donor Balances")
	},
}

var donorsDetailsCmd = &cobra.Command{
	Use:   "details <donor number>",
	Short: "Show the balance details of one donor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadView(cmd, views.DonorBalanceDetails{ParticipantNumber: args[0]})
		if err != nil {
			return err
		}
		return showView(cmd, sc, fmt.Sprintf("Donor %s", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(donorsCmd)
	donorsCmd.AddCommand(donorsListCmd, donorsDetailsCmd)
	addListFlags(donorsListCmd)
	addListFlags(donorsDetailsCmd)
}
