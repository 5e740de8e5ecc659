package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/riferrei/srclient"
	"github.com/urfave/cli/v3"

	"github.com/lsst-sqre/templatebot-aide/pkg/cli/config"
	controller "github.com/lsst-sqre/templatebot-aide/pkg/controller/http"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/authordb"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/github"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/gitops"
	infrakafka "github.com/lsst-sqre/templatebot-aide/pkg/infra/kafka"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/ltd"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/registry"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/slack"
	"github.com/lsst-sqre/templatebot-aide/pkg/infra/travis"
	"github.com/lsst-sqre/templatebot-aide/pkg/usecase"
)

func cmdRun() *cli.Command {
	var (
		serverCfg config.Server
		kafkaCfg  config.Kafka
		githubCfg config.GitHub
		slackCfg  config.Slack
		ltdCfg    config.LTD
		travisCfg config.Travis
		sentryCfg config.Sentry
	)

	flags := serverCfg.Flags()
	flags = append(flags, kafkaCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, ltdCfg.Flags()...)
	flags = append(flags, travisCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Run the service",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Sentry")
			}
			if sentryEnabled {
				defer sentry.Flush(5 * time.Second)
			}

			// Transport security must be complete before anything consumes
			tlsConfig, err := kafkaCfg.TLSConfig()
			if err != nil {
				return err
			}

			topics := kafkaCfg.Topics()
			logger.Info("Starting templatebot-aide",
				slog.String("broker", kafkaCfg.Broker),
				slog.String("group_id", kafkaCfg.ConsumerGroup()),
				slog.String("prerender_topic", topics.Prerender),
				slog.String("postrender_topic", topics.Postrender),
				slog.String("render_ready_topic", topics.RenderReady),
			)

			// The render_ready schema is fetched once; a missing schema
			// must stop the process before it consumes.
			registryClient := srclient.NewSchemaRegistryClient(kafkaCfg.RegistryURL)
			serializer, err := registry.NewSerializer(registryClient, topics.RenderReadySubject())
			if err != nil {
				return err
			}
			deserializer := registry.NewDeserializer(registryClient)

			source := infrakafka.NewSource(infrakafka.SourceConfig{
				Brokers: []string{kafkaCfg.Broker},
				GroupID: kafkaCfg.ConsumerGroup(),
				Topics:  []string{topics.Prerender, topics.Postrender},
				TLS:     tlsConfig,
			})
			defer func() {
				if err := source.Close(); err != nil {
					logger.Warn("Failed to close consumer", slog.Any("error", err))
				}
			}()

			publisher := infrakafka.NewPublisher(infrakafka.PublisherConfig{
				Brokers: []string{kafkaCfg.Broker},
				Topic:   topics.RenderReady,
				TLS:     tlsConfig,
			}, serializer)
			defer func() {
				if err := publisher.Close(); err != nil {
					logger.Warn("Failed to close producer", slog.Any("error", err))
				}
			}()

			workflows := usecase.NewWorkflows(&usecase.WorkflowsConfig{
				GitHub:         github.NewClient(githubCfg.Token),
				Slack:          slack.NewClient(slackCfg.Token),
				LTD:            ltd.NewClient(ltdCfg.Username, ltdCfg.Password),
				CI:             travis.NewClient(travisCfg.TokenCom, travisCfg.TokenOrg),
				Authors:        authordb.NewStore(),
				RepoConfig:     gitops.NewConfigurer(githubCfg.Username, githubCfg.Token),
				Publisher:      publisher,
				GitHubUsername: githubCfg.Username,
				EmbedCreds: usecase.EmbeddedDocsCredentials{
					AWSAccessKeyID:     ltdCfg.EmbedAWSID,
					AWSSecretAccessKey: ltdCfg.EmbedAWSSecret,
					LTDUsername:        ltdCfg.EmbedUsername,
					LTDPassword:        ltdCfg.EmbedPassword,
				},
			})

			router := usecase.NewRouter(topics, workflows)
			consumer := usecase.NewConsumer(source, deserializer, router)

			server := controller.NewServer(ctx, controller.WithAddr(serverCfg.Addr()))
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr()))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			consumeCtx, cancelConsume := context.WithCancel(ctx)
			defer cancelConsume()

			errCh := make(chan error, 1)
			go func() {
				errCh <- consumer.Run(consumeCtx)
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			var runErr error
			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
				cancelConsume()
				<-errCh
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
				cancelConsume()
				<-errCh
			case runErr = <-errCh:
				if runErr != nil {
					logger.Error("Event consumption failed", slog.Any("error", runErr))
					if sentryEnabled {
						sentry.CaptureException(runErr)
					}
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Shutdown complete")
			return runErr
		},
	}
}
