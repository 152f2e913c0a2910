package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/julien-sobczak/rootpkg/internal/database"
	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var namesOnly bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "list [QUERY]",
		Short: "List installed packages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := database.Load(opts.cfg.Root)
			if err != nil {
				return err
			}

			pkgs := d.Packages
			if len(args) == 1 {
				pkgs = d.Search(args[0], strict)
			}
			for _, pkg := range pkgs {
				if namesOnly {
					fmt.Fprintln(cmd.OutOrStdout(), pkg.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", color.GreenString(pkg.Name), pkg.Version, pkg.Architecture)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&namesOnly, "name", false, "Print package names only")
	cmd.Flags().BoolVar(&strict, "strict", false, "Match QUERY exactly instead of as a substring")

	return cmd
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Detect package directories without pkg-info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orphans, err := database.Orphans(opts.cfg.Root)
			if err != nil {
				return err
			}
			for _, dir := range orphans {
				fmt.Fprintln(cmd.OutOrStdout(), color.RedString("Not installed: %s", dir))
			}
			if len(orphans) > 0 {
				return fmt.Errorf("found %d incomplete installation(s)", len(orphans))
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("All package directories are installed"))
			return nil
		},
	}
}
