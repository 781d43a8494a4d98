package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gastos/internal/registry"
)

func newSeedCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-check [file]",
		Short: "Validate a seed file by loading it into an empty registry",
		Long: "Decodes the TOML seed file (or the built-in data when no file is given), " +
			"preloads it into a fresh registry and prints what was loaded.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, source, err := loadSeed(path)
			if err != nil {
				return err
			}
			reg := registry.New()
			if err := reg.Preload(data); err != nil {
				return fmt.Errorf("seed %s: %w", source, err)
			}

			managers := 0
			for _, m := range reg.Members() {
				if m.IsManager() {
					managers++
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Seed %s is valid\n", source)
			fmt.Fprintf(out, "  teams:      %d\n", len(reg.Teams()))
			fmt.Fprintf(out, "  categories: %d\n", len(reg.Categories()))
			fmt.Fprintf(out, "  members:    %d (%d managers)\n", len(reg.Members()), managers)
			fmt.Fprintf(out, "  payments:   %d\n", len(reg.Payments()))
			return nil
		},
	}
}
