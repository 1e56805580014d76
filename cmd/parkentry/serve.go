package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-parkentry/internal/config"
	"github.com/goliatone/go-parkentry/internal/metrics"
	"github.com/goliatone/go-parkentry/internal/receipt"
	"github.com/goliatone/go-parkentry/internal/server"
	"github.com/goliatone/go-parkentry/internal/store"
	"github.com/goliatone/go-parkentry/internal/uploads"
	"github.com/goliatone/go-parkentry/pkg/catalog"
	"github.com/goliatone/go-parkentry/pkg/renderers/html"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registration server",
		Long: `Start the HTTP server hosting the registration page, the /submit
endpoint, the entries listing and the helper APIs.

The server stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			repo, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer repo.Close()

			files, err := openUploads(cfg.Uploads)
			if err != nil {
				return err
			}

			m := metrics.New()
			countries := catalog.New(
				catalog.NewHTTPFetcher(cfg.Catalog.URL, cfg.Catalog.Timeout),
				catalog.WithLogger(logger),
				catalog.WithLoadObserver(m.ObserveCatalogLoad),
			)

			pages, err := html.New(html.WithTemplatesDir(cfg.Server.TemplatesDir))
			if err != nil {
				return err
			}

			srv, err := server.New(ctx,
				server.WithLogger(logger),
				server.WithPages(pages),
				server.WithCatalog(countries),
				server.WithRepository(repo),
				server.WithUploads(files),
				server.WithMetrics(m),
				server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
				server.WithReceiptHeader(receipt.Header{
					Authority: cfg.Receipt.Authority,
					Park:      cfg.Receipt.Park,
				}),
			)
			if err != nil {
				return err
			}

			logger.Info("starting server",
				"addr", cfg.Server.Addr,
				"store", cfg.Store.Path,
				"uploads", cfg.Uploads.Driver,
			)
			return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		},
	}
	return cmd
}

func openUploads(cfg config.UploadsConfig) (uploads.Store, error) {
	switch cfg.Driver {
	case config.DriverDisk:
		return uploads.NewDisk(cfg.Dir)
	case config.DriverS3:
		return uploads.NewS3(uploads.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}
