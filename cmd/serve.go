/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tgwatch/tgwatch/internal/config"
	"github.com/tgwatch/tgwatch/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tgwatch API server and session receivers",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogger()
		ll := logrus.WithField("at", "serve")
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.Config()

		repos, err := buildRepoContainer(ctx)
		if err != nil {
			ll.WithError(err).Fatal("can not build repo container")
		}
		ll.Info("repo container built")

		artifactStore := buildArtifactStore()
		tokens := buildTokenIssuer()
		botAPI := buildBotAPI()
		engine := buildForwardEngine(repos, botAPI)
		p := buildPipeline(repos, engine)
		botRouter := buildBotRouter(repos, p, botAPI)
		statsAggregator := buildAnalytics(repos)
		ll.Info("collaborators built")

		manager := buildRuntimeManager(repos, p)
		if err := manager.StartAll(ctx); err != nil {
			ll.WithError(err).Fatal("can not start tenant runtimes")
		}
		ll.Info("tenant runtimes started")

		g := web.NewServer(web.Deps{
			Repos:         repos,
			Tokens:        tokens,
			Artifacts:     artifactStore,
			Analytics:     statsAggregator,
			Bot:           botAPI,
			BotRouter:     botRouter,
			Runtime:       manager,
			BotToken:      cfg.TelegramConfig.BotToken,
			WebhookSecret: cfg.AuthConfig.WebhookSecret,
			CorsOrigins:   cfg.HttpConfig.CoresAllowed,
			Swagger:       cfg.HttpConfig.Swagger,
		})
		srv := &http.Server{Addr: cfg.HttpConfig.ListenAddr, Handler: g}

		go func() {
			ll.WithField("addr", cfg.HttpConfig.ListenAddr).Info("starting server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				ll.WithError(err).Fatal("server error")
			}
		}()

		<-ctx.Done()
		ll.Warn("shutting down")
		manager.StopAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			ll.WithError(err).Error("graceful shutdown failed")
		}
		os.Exit(0)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
