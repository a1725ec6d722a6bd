package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/billbatista/expensebook/client"
	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/money"
)

var printer = message.NewPrinter(language.English)

func formatMoney(c money.Cents) string {
	return printer.Sprintf("%.2f", c.Float64())
}

func newShowCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the ledger with a running balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), app.State())
		},
	}
}

func writeTable(out io.Writer, s client.State) error {
	t := client.Render(s)

	fmt.Fprintf(out, "%s  budget %s  spent %s  remaining %s\n\n",
		s.User.Name, formatMoney(t.Budget), formatMoney(t.Spent), formatMoney(t.Remaining))

	if len(t.Rows) == 0 {
		fmt.Fprintln(out, "no expenses yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tITEM\tQTY\tMODE\tAMOUNT\tBALANCE\t")
	for _, row := range t.Rows {
		e := row.Expense
		marker := ""
		if row.Overdrawn {
			marker = "!"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Item, e.Quantity, e.Mode, formatMoney(e.Amount), formatMoney(row.Balance), marker)
	}
	return w.Flush()
}

func newAddCommand(opts *options) *cobra.Command {
	var (
		in     client.NewExpense
		amount string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := money.Parse(amount)
			if err != nil {
				return err
			}
			in.Amount = cents

			app, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			created, err := app.AddExpense(cmd.Context(), in)
			if err != nil {
				return err
			}

			t := client.Render(app.State())
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%s), remaining %s\n",
				created.ID, created.Item, formatMoney(created.Amount), formatMoney(t.Remaining))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Date, "date", time.Now().Format(ledger.DateLayout), "expense date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Item, "item", "", "what was bought (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount spent (required)")
	cmd.Flags().StringVar(&in.Quantity, "quantity", "1", "quantity")
	cmd.Flags().StringVar(&in.Mode, "mode", "cash", "payment mode")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid expense id %q", args[0])
			}

			app, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.DeleteExpense(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "expense deleted")
			return nil
		},
	}
}

func newClearCommand(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense and reset the budget to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("clear removes all data, pass --yes to confirm")
			}

			app, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := app.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")

	return cmd
}
