package cli

import (
	"context"

	"github.com/julien-sobczak/rootpkg/internal/config"
	"github.com/julien-sobczak/rootpkg/internal/system"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// options are shared by every subcommand.
type options struct {
	configPath string
	root       string
	arch       string
	backend    string
	verbose    bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pkg",
		Short: "Install Debian packages under an alternate root",
		Long: `pkg maintains a catalog of Debian packages fetched from the repositories
listed in ROOT/etc/apt/sources.list and installs .deb archives under
ROOT/System/Packages/{name}---{version}, independently of the host package manager.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			// Flags override the configuration
			flags := cmd.Flags()
			if flags.Changed("root") {
				cfg.Root = opts.root
			}
			if flags.Changed("arch") {
				cfg.Architecture = opts.arch
			}
			if flags.Changed("backend") {
				cfg.Backend = opts.backend
			}
			if flags.Changed("verbose") {
				cfg.Verbose = opts.verbose
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			opts.cfg = cfg

			// Setup logging
			if cfg.Verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			logrus.Debugf("Configuration: %+v", *cfg)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $PKG_CONFIG or ~/.config/rootpkg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "/", "Target root filesystem")
	rootCmd.PersistentFlags().StringVar(&opts.arch, "arch", "", "Debian architecture (default from the host)")
	rootCmd.PersistentFlags().StringVar(&opts.backend, "backend", system.BackendNative, "Capabilities backend (native or shell)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(
		newUpdateCmd(opts),
		newSearchCmd(opts),
		newShowCmd(opts),
		newInstallCmd(opts),
		newListCmd(opts),
		newVerifyCmd(opts),
		newBuildCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

func (o *options) toolkit() (system.Toolkit, error) {
	return system.NewToolkit(o.cfg.Backend)
}

// architecture returns the configured architecture or the host one.
func (o *options) architecture(ctx context.Context, toolkit system.Toolkit) (string, error) {
	if o.cfg.Architecture != "" {
		return o.cfg.Architecture, nil
	}
	return system.HostArchitecture(ctx, toolkit.Host)
}
