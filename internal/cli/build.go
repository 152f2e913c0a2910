package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/julien-sobczak/rootpkg/internal/config"
	"github.com/julien-sobczak/rootpkg/internal/dpkg"
	"github.com/spf13/cobra"
)

func newBuildCmd(opts *options) *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "build DIR DEST",
		Short: "Build a Debian archive from a directory",
		Long: `Build packs DIR/DEBIAN as the control member and the rest of DIR as
the payload of the Debian archive DEST.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dpkg.ParseCompression(compression)
			if err != nil {
				return err
			}
			if err := dpkg.Build(args[0], args[1], c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Built %s", args[1]))
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", string(dpkg.CompressionXz), "Member compression (gz, xz, zst or none)")

	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.Dump(opts.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
