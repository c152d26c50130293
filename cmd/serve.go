package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Bitlatte/folio/internal/site"
	"github.com/Bitlatte/folio/internal/web"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server for the output directory and its JSON API. It also watches your
content, layouts and static directories and rebuilds the site on change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger.Info("performing initial build")
		s, err := runBuild(ctx)
		if err != nil {
			return fmt.Errorf("initial build failed, fix the issues and try again: %w", err)
		}
		srv := web.NewServer(s, logger)
		defer func() { _ = srv.Close() }()

		var mu sync.Mutex
		rebuild := func() {
			mu.Lock()
			defer mu.Unlock()
			logger.Info("rebuilding site due to changes")
			next, err := runBuild(ctx)
			if err != nil {
				logger.Error("rebuild failed", zap.Error(err))
				return
			}
			srv.SetSite(next)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			dirs := []string{appConfig.ContentDir, appConfig.LayoutsDir, appConfig.StaticDir}
			return site.Watch(gctx, dirs, logger, rebuild)
		})
		g.Go(func() error {
			logger.Info("serving site",
				zap.String("dir", appConfig.OutputDir),
				zap.String("url", fmt.Sprintf("http://localhost:%d", serverPort)))
			return srv.ListenAndServe(gctx, fmt.Sprintf(":%d", serverPort))
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
