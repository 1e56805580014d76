package main

import (
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-parkentry/pkg/submission"
)

func submitCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		noPrint bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a registration described in a YAML file",
		Long: `Load a visit description, validate it and post it to the
submission endpoint without prompting.

Example:
  parkentry submit --file visit.yaml --endpoint http://gate:5000/submit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if noPrint {
				cfg.Submission.Print = false
			}

			visit, err := LoadVisit(file)
			if err != nil {
				return err
			}
			f, err := newForm(ctx, cfg, logger)
			if err != nil {
				return err
			}
			if err := visit.Apply(ctx, f); err != nil {
				return err
			}

			controller, err := newController(cfg, logger, submission.WriterNotifier{W: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			_, err = controller.Submit(ctx, f)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Visit description (YAML)")
	cmd.Flags().BoolVar(&noPrint, "no-print", false, "Open the receipt without printing it")

	return cmd
}
