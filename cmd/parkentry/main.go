package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-parkentry/internal/config"
	"github.com/goliatone/go-parkentry/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	addr       string
	endpoint   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "parkentry",
		Short: "Park entry registration server and terminal client",
		Long: `parkentry records visitor registrations at a park gate.

The server hosts the registration page, stores entries in SQLite and answers
every submission with a printable PDF receipt. The register and submit
commands fill the same form from a terminal or a YAML file and post it to a
running server.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	flags.StringVar(&opts.addr, "addr", "", "Listen address, overrides server.addr")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Submission URL, overrides submission.endpoint")

	rootCmd.AddCommand(
		serveCmd(opts),
		registerCmd(opts),
		submitCmd(opts),
	)
	return rootCmd
}

// setup loads the configuration, applies flag overrides and installs the
// process logger.
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	if o.endpoint != "" {
		cfg.Submission.Endpoint = o.endpoint
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}
