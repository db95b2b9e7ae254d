// Package replication controls the DMS replication task that moves change
// events from the source database onto the stream.
package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	dms "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice"
	dmstypes "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice/types"
	"github.com/cenkalti/backoff/v4"

	"github.com/30Piraten/dms-cdc/config"
)

// Task lifecycle states we wait on.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// API is the slice of the DMS client we depend on.
type API interface {
	StartReplicationTask(ctx context.Context, params *dms.StartReplicationTaskInput, optFns ...func(*dms.Options)) (*dms.StartReplicationTaskOutput, error)
	StopReplicationTask(ctx context.Context, params *dms.StopReplicationTaskInput, optFns ...func(*dms.Options)) (*dms.StopReplicationTaskOutput, error)
	DescribeReplicationTasks(ctx context.Context, params *dms.DescribeReplicationTasksInput, optFns ...func(*dms.Options)) (*dms.DescribeReplicationTasksOutput, error)
	DescribeTableStatistics(ctx context.Context, params *dms.DescribeTableStatisticsInput, optFns ...func(*dms.Options)) (*dms.DescribeTableStatisticsOutput, error)
}

// Controller starts, stops and observes one replication task by ARN. The
// task itself is owned by DMS; we only drive its lifecycle.
type Controller struct {
	client  API
	taskARN string
	retry   config.Retry
	log     *slog.Logger
}

func New(client API, taskARN string, retry config.Retry, log *slog.Logger) *Controller {
	return &Controller{client: client, taskARN: taskARN, retry: retry, log: log}
}

// Start kicks off the CDC task.
func (c *Controller) Start(ctx context.Context) error {
	res, err := c.client.StartReplicationTask(ctx, &dms.StartReplicationTaskInput{
		ReplicationTaskArn:       aws.String(c.taskARN),
		StartReplicationTaskType: dmstypes.StartReplicationTaskTypeValueStartReplication,
	})
	if err != nil {
		return fmt.Errorf("start replication task %s: %w", c.taskARN, err)
	}
	c.log.Info("replication task starting", "task", c.taskARN, "status", aws.ToString(res.ReplicationTask.Status))
	return nil
}

// Stop halts the task. Callers usually follow up with WaitForStatus(stopped).
func (c *Controller) Stop(ctx context.Context) error {
	res, err := c.client.StopReplicationTask(ctx, &dms.StopReplicationTaskInput{
		ReplicationTaskArn: aws.String(c.taskARN),
	})
	if err != nil {
		return fmt.Errorf("stop replication task %s: %w", c.taskARN, err)
	}
	c.log.Info("replication task stopping", "task", c.taskARN, "status", aws.ToString(res.ReplicationTask.Status))
	return nil
}

// WaitForStatus polls the task until it reports want, within the retry
// budget. On timeout the error carries the last status observed.
func (c *Controller) WaitForStatus(ctx context.Context, want string) error {
	c.log.Info("waiting for task status", "task", c.taskARN, "want", want)

	lastStatus := "unknown"
	poll := func() error {
		status, err := c.status(ctx)
		if err != nil {
			return err
		}
		lastStatus = status
		c.log.Info("task status", "task", c.taskARN, "status", status)
		if status != want {
			return fmt.Errorf("status %q", status)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retry.Interval), c.retry.MaxAttempts),
		ctx,
	)
	if err := backoff.Retry(poll, policy); err != nil {
		return fmt.Errorf("task %s did not reach %q within retry budget, last status %q: %w",
			c.taskARN, want, lastStatus, err)
	}
	return nil
}

func (c *Controller) status(ctx context.Context) (string, error) {
	res, err := c.client.DescribeReplicationTasks(ctx, &dms.DescribeReplicationTasksInput{
		Filters: []dmstypes.Filter{{
			Name:   aws.String("replication-task-arn"),
			Values: []string{c.taskARN},
		}},
		WithoutSettings: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("describe replication task %s: %w", c.taskARN, err)
	}
	if len(res.ReplicationTasks) == 0 {
		return "", fmt.Errorf("replication task %s not found", c.taskARN)
	}
	return aws.ToString(res.ReplicationTasks[0].Status), nil
}

// TableStatistics fetches per-table replication counters, sorted by schema
// and table name for stable log output.
func (c *Controller) TableStatistics(ctx context.Context) ([]dmstypes.TableStatistics, error) {
	res, err := c.client.DescribeTableStatistics(ctx, &dms.DescribeTableStatisticsInput{
		ReplicationTaskArn: aws.String(c.taskARN),
	})
	if err != nil {
		return nil, fmt.Errorf("describe table statistics %s: %w", c.taskARN, err)
	}

	stats := res.TableStatistics
	sort.Slice(stats, func(i, j int) bool {
		si, sj := aws.ToString(stats[i].SchemaName), aws.ToString(stats[j].SchemaName)
		if si != sj {
			return si < sj
		}
		return aws.ToString(stats[i].TableName) < aws.ToString(stats[j].TableName)
	})
	return stats, nil
}
