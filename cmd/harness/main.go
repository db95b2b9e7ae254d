// The harness drives the deployed CDC pipeline end to end: it mutates the
// source database, reads the captured events off the Kinesis stream and
// checks the counts against what the fixed script must produce.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	dms "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/30Piraten/dms-cdc/config"
	"github.com/30Piraten/dms-cdc/internal/cfnout"
	"github.com/30Piraten/dms-cdc/internal/dbsecret"
	"github.com/30Piraten/dms-cdc/internal/replication"
	"github.com/30Piraten/dms-cdc/internal/sink"
	"github.com/30Piraten/dms-cdc/internal/source"
	"github.com/30Piraten/dms-cdc/internal/verify"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, logger); err != nil {
		logger.Error("harness failed", "error", err)
		os.Exit(1)
	}
	logger.Info("verification succeeded")
}

func run(ctx context.Context, logger *slog.Logger) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	harnessCfg, err := config.LoadHarness(os.Getenv("HARNESS_CONFIG"), env.Local())
	if err != nil {
		return err
	}
	logger.Info("starting harness",
		"stack", env.StackName,
		"sinkMode", string(env.SinkMode),
		"local", env.Local(),
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	// Against the local emulator every service client talks to the same
	// endpoint; on AWS the SDK resolves endpoints itself.
	endpoint := func(url string) *string {
		if url == "" {
			return nil
		}
		return aws.String(url)
	}(env.EndpointURL)

	cfnClient := cloudformation.NewFromConfig(awsCfg, func(o *cloudformation.Options) {
		o.BaseEndpoint = endpoint
	})
	smClient := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		o.BaseEndpoint = endpoint
	})
	dmsClient := dms.NewFromConfig(awsCfg, func(o *dms.Options) {
		o.BaseEndpoint = endpoint
	})
	kinesisClient := kinesis.NewFromConfig(awsCfg, func(o *kinesis.Options) {
		o.BaseEndpoint = endpoint
	})

	outputs, err := cfnout.Lookup(ctx, cfnClient, env.StackName)
	if err != nil {
		return err
	}
	logger.Info("resolved stack outputs",
		"task", outputs.TaskARN,
		"stream", outputs.StreamARN,
		"secret", outputs.SecretARN,
	)

	creds, err := dbsecret.Fetch(ctx, smClient, outputs.SecretARN)
	if err != nil {
		return err
	}
	logger.Info("source database", "host", creds.Host, "port", creds.Port, "dbname", creds.DBName)

	mutator, err := source.Connect(ctx, creds, logger)
	if err != nil {
		return err
	}
	defer mutator.Close(context.Background())

	controller := replication.New(dmsClient, outputs.TaskARN, harnessCfg.Retry, logger)

	reader, err := sink.NewReader(ctx, kinesisClient, outputs.StreamARN, harnessCfg.Retry, logger)
	if err != nil {
		return err
	}

	runner := verify.NewRunner(mutator, controller, reader, env.SinkMode, harnessCfg.PhasePause, logger)
	return runner.Run(ctx)
}
