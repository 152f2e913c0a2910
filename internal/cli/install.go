package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/julien-sobczak/rootpkg/internal/apt"
	"github.com/julien-sobczak/rootpkg/internal/dpkg"
	"github.com/julien-sobczak/rootpkg/internal/models"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newInstallCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "install ARCHIVE.deb|NAME...",
		Short: "Install local archives or catalog packages",
		Long: `Install unpacks each archive under ROOT/System/Packages/{name}---{version}
and writes its pkg-info file. Arguments that are not existing files are
looked up in the catalog and downloaded first. Dependencies are not resolved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			toolkit, err := opts.toolkit()
			if err != nil {
				return err
			}
			resolver := &archiveResolver{opts: opts, toolkit: toolkit}

			failures := 0
			for _, arg := range args {
				archive, err := resolver.resolve(ctx, arg)
				if err == nil {
					var pkg models.Record
					pkg, err = dpkg.Install(ctx, toolkit, archive, opts.cfg.Root)
					if err == nil {
						fmt.Fprintln(out, color.GreenString("Installed %s (%s)", pkg.Name, pkg.Version))
						if deps := pkg.Relation(models.Depends); !deps.Empty() {
							fmt.Fprintln(out, color.YellowString("  Depends on %s (not resolved)", strings.Join(deps.Names(), ", ")))
						}
						continue
					}
				}
				failures++
				fmt.Fprintln(out, color.RedString("Failed to install %s: %v", arg, err))
			}

			if failures > 0 {
				return fmt.Errorf("%d package(s) could not be installed", failures)
			}
			return nil
		},
	}
}

// archiveResolver turns install arguments into local archive paths.
type archiveResolver struct {
	opts    *options
	toolkit system.Toolkit
	catalog *apt.Catalog // Loaded on first package name
}

func (r *archiveResolver) resolve(ctx context.Context, arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil || strings.HasSuffix(arg, ".deb") {
		return arg, nil
	}

	if r.catalog == nil {
		catalog, err := apt.Load(r.opts.cfg.Root)
		if err != nil {
			return "", err
		}
		r.catalog = catalog
	}
	arch, err := r.opts.architecture(ctx, r.toolkit)
	if err != nil {
		return "", err
	}
	pkg, err := apt.Candidate(r.catalog.Packages, arg, arch)
	if err != nil {
		return "", err
	}
	logrus.WithField("package", pkg.Name).Debugf("Selected version %s from %s", pkg.Version, pkg.Origin)
	return apt.Fetch(ctx, r.toolkit, r.opts.cfg.Root, pkg)
}
