package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billbatista/expensebook/client"
	"github.com/billbatista/expensebook/money"
)

func newBudgetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Change the budget",
	}

	cmd.AddCommand(
		newBudgetChangeCommand(opts, "set <amount>", "Replace the budget", (*client.App).SetBudget),
		newBudgetChangeCommand(opts, "add <amount>", "Add money to the budget", (*client.App).AddMoney),
	)

	return cmd
}

func newBudgetChangeCommand(opts *options, use, short string, change func(*client.App, context.Context, money.Cents) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[0])
			if err != nil {
				return err
			}

			app, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := change(app, cmd.Context(), amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "budget is now %s\n", formatMoney(app.State().Budget))
			return nil
		},
	}
}
