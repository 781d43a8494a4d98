package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/services"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print payment reports from the seeded registry",
	}

	var month string
	team := &cobra.Command{
		Use:   "team <name>",
		Short: "Payments of a team active in a month, largest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *services.ExpenseService) error {
				m := svc.Registry().CurrentMonth()
				if month != "" {
					var err error
					if m, err = core.ParseMonth(month); err != nil {
						return err
					}
				}
				payments, err := svc.TeamPaymentsForMonth(ctx, args[0], m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Team %s, %s\n", args[0], m)
				return writePayments(cmd.OutOrStdout(), payments)
			})
		},
	}
	team.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")

	member := &cobra.Command{
		Use:   "member <identifier>",
		Short: "Profile and current payments of a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *services.ExpenseService) error {
				m, err := svc.Registry().Member(args[0])
				if err != nil {
					return err
				}
				profile, err := svc.Profile(ctx, m)
				if err != nil {
					return err
				}
				payments, err := svc.CurrentPaymentsOf(ctx, m)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", m.FullName(), m.Identifier())
				fmt.Fprintf(out, "Team: %s\nRole: %s\n", m.Team.Name, m.Role)
				fmt.Fprintf(out, "Spend this month: %s\n", core.FormatAmount(profile.MonthlySpend))
				return writePayments(out, payments)
			})
		},
	}

	current := &cobra.Command{
		Use:   "current",
		Short: "Every payment active this month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd, func(ctx context.Context, svc *services.ExpenseService) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Payments active in %s\n", svc.Registry().CurrentMonth())
				return writePayments(cmd.OutOrStdout(), svc.CurrentPayments(ctx))
			})
		},
	}

	cmd.AddCommand(team, member, current)
	return cmd
}

// withService builds a read-only service over the seeded registry. Logs go to
// stderr so the report stays clean on stdout.
func withService(cmd *cobra.Command, run func(context.Context, *services.ExpenseService) error) error {
	cfg, err := LoadConfig(func(c *config.Config) { c.SeedData = true })
	if err != nil {
		return err
	}
	logger, err := SetupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logger.WithComponent(log.ComponentCLI)

	reg, err := BuildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	svc := services.NewExpenseService(reg, nil, nil, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return run(log.NewContext(ctx, logger), svc)
}

func writePayments(w io.Writer, payments []*core.Payment) error {
	if len(payments) == 0 {
		_, err := fmt.Fprintln(w, "No payments.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMEMBER\tCATEGORY\tKIND\tSTATUS\tAMOUNT\tTOTAL\tDESCRIPTION")
	for _, p := range payments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			p.Member.Identifier(),
			p.Category.Name,
			p.Kind,
			p.Status(),
			core.FormatAmount(p.Amount),
			core.FormatAmount(p.Total()),
			p.Description)
	}
	return tw.Flush()
}
