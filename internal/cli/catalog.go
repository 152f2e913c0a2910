package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/julien-sobczak/rootpkg/internal/apt"
	"github.com/julien-sobczak/rootpkg/internal/control"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Rebuild the package catalog from sources.list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			toolkit, err := opts.toolkit()
			if err != nil {
				return err
			}
			arch, err := opts.architecture(ctx, toolkit)
			if err != nil {
				return err
			}
			sources, err := apt.ReadSourcesList(opts.cfg.Root)
			if err != nil {
				return err
			}

			supported := 0
			for _, source := range sources {
				if source.Supported() {
					supported++
				} else {
					fmt.Fprintln(out, color.YellowString("Ign %s", source))
				}
			}

			bar := progressbar.NewOptions(supported,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Fetching package lists"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
			)
			builder := &apt.Builder{
				Toolkit:      toolkit,
				Architecture: arch,
				OnSource: func(entry models.IndexEntry) {
					bar.Add(1)
				},
			}
			entries, err := builder.Update(ctx, opts.cfg.Root, sources)
			bar.Finish()
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				fmt.Fprintln(out, color.RedString("Catalog update failed, previous catalog restored"))
				return err
			}

			for _, entry := range entries {
				fmt.Fprintln(out, color.GreenString("Get:%d %s %s/%s %s Packages", entry.ID+1, entry.URL, entry.Distribution, entry.Component, arch))
			}
			fmt.Fprintln(out, color.GreenString("Catalog updated (%d source(s))", len(entries)))
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search TEXT",
		Short: "Search the catalog by name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := apt.Load(opts.cfg.Root)
			if err != nil {
				return err
			}
			for _, pkg := range apt.Search(catalog.Packages, args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s %s %s\n  %s\n",
					color.GreenString(pkg.Name), pkg.Origin.Distribution, pkg.Version, pkg.Architecture, summary(pkg.Description))
			}
			return nil
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Display the catalog records of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := apt.Load(opts.cfg.Root)
			if err != nil {
				return err
			}
			pkgs := apt.Find(catalog.Packages, args[0])
			if len(pkgs) == 0 {
				return models.NewError(models.ErrPackageNotFound, args[0], fmt.Errorf("no package in catalog"))
			}
			fmt.Fprint(cmd.OutOrStdout(), control.Format(pkgs...))
			return nil
		},
	}
}

// summary returns the first line of a description.
func summary(description string) string {
	line, _, _ := strings.Cut(description, "\n")
	return line
}
