package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-parkentry/internal/config"
	"github.com/goliatone/go-parkentry/pkg/catalog"
	"github.com/goliatone/go-parkentry/pkg/form"
	"github.com/goliatone/go-parkentry/pkg/renderers/tui"
	"github.com/goliatone/go-parkentry/pkg/submission"
)

func registerCmd(opts *rootOptions) *cobra.Command {
	var noPrint bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Fill in a registration interactively",
		Long: `Prompt for the registration type, visitor details, clients and
vehicles, then post the form to the submission endpoint and open the
receipt it returns.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if noPrint {
				cfg.Submission.Print = false
			}

			f, err := newForm(ctx, cfg, logger)
			if err != nil {
				return err
			}

			runner, err := tui.New(tui.WithOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if err := runner.Fill(ctx, f); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				return err
			}

			controller, err := newController(cfg, logger, runner.Notifier(ctx))
			if err != nil {
				return err
			}
			_, err = controller.Submit(ctx, f)
			return err
		},
	}

	cmd.Flags().BoolVar(&noPrint, "no-print", false, "Open the receipt without printing it")

	return cmd
}

// newForm builds a form whose nationality selects come from the configured
// catalog. A catalog outage leaves them empty rather than failing.
func newForm(ctx context.Context, cfg config.Config, logger *slog.Logger) (*form.Form, error) {
	countries := catalog.New(
		catalog.NewHTTPFetcher(cfg.Catalog.URL, cfg.Catalog.Timeout),
		catalog.WithLogger(logger),
	)
	return form.New(ctx,
		form.WithLogger(logger),
		form.WithCatalog(countries),
	)
}

func newController(cfg config.Config, logger *slog.Logger, notifier submission.Notifier) (*submission.Controller, error) {
	return submission.New(cfg.Submission.Endpoint,
		submission.WithHTTPClient(&http.Client{Timeout: cfg.Submission.Timeout}),
		submission.WithPresenter(&submission.FilePresenter{PrintCommand: cfg.Submission.PrintCommand}),
		submission.WithNotifier(notifier),
		submission.WithPrint(cfg.Submission.Print),
		submission.WithPrintDelay(cfg.Submission.PrintDelay),
		submission.WithLogger(logger),
	)
}
