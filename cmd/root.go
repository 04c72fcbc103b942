/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	realMinio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/tgwatch/tgwatch/internal/analytics"
	"github.com/tgwatch/tgwatch/internal/artifact"
	"github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/bot"
	"github.com/tgwatch/tgwatch/internal/config"
	"github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/forward"
	"github.com/tgwatch/tgwatch/internal/log"
	"github.com/tgwatch/tgwatch/internal/pipeline"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/runtime"
)

var rootCmd = &cobra.Command{
	Use:   "tgwatch",
	Short: "Multi-tenant Telegram monitoring service",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// rootCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")
}

func buildRepoContainer(ctx context.Context) (*repo.Container, error) {
	cfg := config.Config()
	mongoContainer, err := mongo.NewMongoContainer(ctx, mongo.MongoContainerConfig{
		Endpoint: cfg.MongoDBConfig.Uri,
		DbName:   cfg.MongoDBConfig.DBName,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("can not create mongo container: %w", err)
	}
	return repo.NewContainer(mongoContainer), nil
}

func buildArtifactStore() *artifact.Store {
	cfg := config.Config()
	var mirror artifact.Mirror
	if cfg.MinioConfig.Endpoint != "" {
		cl, err := realMinio.New(cfg.MinioConfig.Endpoint, &realMinio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioConfig.AccessKey, cfg.MinioConfig.SecretKey, ""),
			Secure: cfg.MinioConfig.Secure,
		})
		if err != nil {
			log.GetLogger(log.ArtifactModule).WithError(err).Warn("can not build minio client, artifact mirroring disabled")
		} else {
			mirror = artifact.NewMinioMirror(cl, cfg.MinioConfig.Bucket)
		}
	}
	return artifact.NewStore(cfg.RuntimeConfig.ArtifactRoot, mirror)
}

func buildTokenIssuer() *auth.TokenIssuer {
	cfg := config.Config()
	return auth.NewTokenIssuer(cfg.AuthConfig.TokenSigningKey, time.Duration(cfg.AuthConfig.TokenLifetimeMin)*time.Minute)
}

func buildBotAPI() *forward.BotAPI {
	cfg := config.Config()
	return forward.NewBotAPI(cfg.TelegramConfig.BotToken)
}

func buildForwardEngine(repos *repo.Container, botAPI *forward.BotAPI) *forward.Engine {
	destinations, ledger := runtime.ForwardCollaborators(repos)
	return forward.NewEngine(destinations, ledger, botAPI)
}

func buildPipeline(repos *repo.Container, engine *forward.Engine) *pipeline.Pipeline {
	return runtime.NewPipeline(repos, engine)
}

func buildBotRouter(repos *repo.Container, p *pipeline.Pipeline, botAPI *forward.BotAPI) *bot.Router {
	return runtime.NewBotRouter(repos, p, botAPI)
}

func buildAnalytics(repos *repo.Container) *analytics.Aggregator {
	return analytics.NewAggregator(repos)
}

func buildRuntimeManager(repos *repo.Container, p *pipeline.Pipeline) *runtime.Manager {
	cfg := config.Config()
	return runtime.NewManager(
		repos, p,
		cfg.TelegramConfig.AppID, cfg.TelegramConfig.AppHash, cfg.TelegramConfig.TGSocksProxy,
		time.Duration(cfg.RuntimeConfig.HealthPollInterval)*time.Second,
	)
}

func setupLogger() {
	cfg := config.Config()
	log.Setup(cfg.RuntimeConfig.LogLevel)
}
