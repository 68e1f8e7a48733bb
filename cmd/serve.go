package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/fortify-index/mfi/internal/server"
	"github.com/fortify-index/mfi/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd starts the HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rankings and band classification over HTTP.",
	Long: `Start an HTTP JSON service for dashboards that need ranked MFI data.

Routes:
  GET  /healthz                   liveness probe
  POST /v1/rank                   rank a JSON array of raw records (?format=csv)
  POST /v1/bands                  classify {"compliance": [...], "strategy": "any|min"}
  GET  /v1/cycles/{cycle}/ranking rank a cycle from the configured source
                                  (?sector=&tier=&q=&limit=&sort=&asc=&format=)

Examples:
  # Serve on the default port
  mfi serve

  # Serve a local file for one dashboard origin
  mfi serve --input data/{cycle}.json --listen :9000 --cors-origins https://dashboard.example`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		var store contract.CacheStore
		var history contract.HistoryStore
		if cacheManager != nil {
			store = cacheManager.GetResponseStore()
			history = cacheManager.GetHistoryStore()
		}
		src := source.New(cfg, store)
		return server.New(cfg, src, history, zap.L()).Run(ctx)
	},
}
