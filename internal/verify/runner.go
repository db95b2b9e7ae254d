package verify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	dmstypes "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice/types"

	"github.com/30Piraten/dms-cdc/config"
	"github.com/30Piraten/dms-cdc/internal/replication"
	"github.com/30Piraten/dms-cdc/internal/sink"
)

// Mutator drives the fixed script against the source database.
type Mutator interface {
	Reset(ctx context.Context) error
	CreateTables(ctx context.Context) error
	SeedRows(ctx context.Context) error
	AlterTables(ctx context.Context) error
}

// TaskController drives the replication task lifecycle.
type TaskController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	WaitForStatus(ctx context.Context, want string) error
	TableStatistics(ctx context.Context) ([]dmstypes.TableStatistics, error)
}

// EventReader reads the records appended to the sink since its last call.
type EventReader interface {
	ReadPhase(ctx context.Context, want int) ([]sink.Record, error)
}

// Runner wires the mutator, task controller and sink reader into one
// sequential verification run. There is no client-side parallelism: every
// step blocks on an external service.
type Runner struct {
	mutator    Mutator
	controller TaskController
	reader     EventReader
	harness    *Harness
	pause      time.Duration
	log        *slog.Logger
}

func NewRunner(mutator Mutator, controller TaskController, reader EventReader,
	mode config.Mode, pause time.Duration, log *slog.Logger) *Runner {
	return &Runner{
		mutator:    mutator,
		controller: controller,
		reader:     reader,
		harness:    NewHarness(mode, log),
		pause:      pause,
		log:        log,
	}
}

// Run executes the full workflow. Setup failures (schema, task start) are
// fatal; count mismatches are collected and surfaced at the end so every
// phase still runs.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("starting CDC verification flow")

	if err := r.mutator.Reset(ctx); err != nil {
		return fmt.Errorf("reset source schema: %w", err)
	}
	if err := r.mutator.CreateTables(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	if err := r.controller.Start(ctx); err != nil {
		return err
	}
	if err := r.controller.WaitForStatus(ctx, replication.StatusRunning); err != nil {
		return err
	}
	r.harness.Advance(nil) // provisioned

	// Table creation events: the task replays the DDL it found on startup.
	if err := r.capturePhase(ctx); err != nil {
		return err
	}

	if err := r.mutatePhase(ctx, r.mutator.SeedRows); err != nil {
		return fmt.Errorf("seed rows: %w", err)
	}
	if err := r.mutatePhase(ctx, r.mutator.AlterTables); err != nil {
		return fmt.Errorf("alter tables: %w", err)
	}

	r.harness.Advance(nil) // done
	r.logStatistics(ctx)

	if err := r.controller.Stop(ctx); err != nil {
		return err
	}
	if err := r.controller.WaitForStatus(ctx, replication.StatusStopped); err != nil {
		return err
	}
	if err := r.mutator.Reset(ctx); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	return r.harness.Err()
}

// mutatePhase runs one mutation step, gives the events time to propagate to
// the sink, then captures and verifies them.
func (r *Runner) mutatePhase(ctx context.Context, mutate func(context.Context) error) error {
	if err := mutate(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.pause):
	}
	return r.capturePhase(ctx)
}

func (r *Runner) capturePhase(ctx context.Context) error {
	records, err := r.reader.ReadPhase(ctx, r.harness.Expected())
	if err != nil {
		return fmt.Errorf("read sink records: %w", err)
	}
	r.harness.Advance(records)
	return nil
}

func (r *Runner) logStatistics(ctx context.Context) {
	stats, err := r.controller.TableStatistics(ctx)
	if err != nil {
		// Statistics are informational only.
		r.log.Error("fetch table statistics", "error", err)
		return
	}
	for _, s := range stats {
		r.log.Info("table statistics",
			"schema", aws.ToString(s.SchemaName),
			"table", aws.ToString(s.TableName),
			"inserts", s.Inserts,
			"updates", s.Updates,
			"deletes", s.Deletes,
			"ddls", s.Ddls)
	}
}

// Results exposes the per-phase outcomes for reporting.
func (r *Runner) Results() []Result {
	return r.harness.Results()
}
