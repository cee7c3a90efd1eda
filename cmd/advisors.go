package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/fundscope/pkg/views"
)

var advisorsCmd = &cobra.Command{
	Use:   "advisors",
	Short: "Advisor balances",
}

var advisorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List advisor balances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc, err := loadView(cmd, views.AdvisorBalances{})
		if err != nil {
			return err
		}
		return showView(cmd, sc, "Advisor Balances")
	},
}

var advisorsDetailsCmd = &cobra.Command{
	Use:   "details <advisor number>",
	Short: "Show the donors of one advisor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadView(cmd, views.AdvisorBalanceDetails{AgentNumber: args[0]})
		if err != nil {
			return err
		}
		return showView(cmd, sc, fmt.Sprintf("Advisor %s", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(advisorsCmd)
	advisorsCmd.AddCommand(advisorsListCmd, advisorsDetailsCmd)
	addListFlags(advisorsListCmd)
	addListFlags(advisorsDetailsCmd)
}
