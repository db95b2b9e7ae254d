package verify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	dmstypes "github.com/aws/aws-sdk-go-v2/service/databasemigrationservice/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Piraten/dms-cdc/config"
	"github.com/30Piraten/dms-cdc/internal/sink"
)

type fakeMutator struct {
	steps     []string
	createErr error
}

func (f *fakeMutator) Reset(context.Context) error { f.steps = append(f.steps, "reset"); return nil }
func (f *fakeMutator) CreateTables(context.Context) error {
	f.steps = append(f.steps, "create")
	return f.createErr
}
func (f *fakeMutator) SeedRows(context.Context) error { f.steps = append(f.steps, "seed"); return nil }
func (f *fakeMutator) AlterTables(context.Context) error {
	f.steps = append(f.steps, "alter")
	return nil
}

type fakeController struct {
	steps   []string
	waitErr error
}

func (f *fakeController) Start(context.Context) error { f.steps = append(f.steps, "start"); return nil }
func (f *fakeController) Stop(context.Context) error  { f.steps = append(f.steps, "stop"); return nil }
func (f *fakeController) WaitForStatus(_ context.Context, want string) error {
	f.steps = append(f.steps, "wait:"+want)
	if f.waitErr != nil && want == "running" {
		return f.waitErr
	}
	return nil
}
func (f *fakeController) TableStatistics(context.Context) ([]dmstypes.TableStatistics, error) {
	f.steps = append(f.steps, "stats")
	return []dmstypes.TableStatistics{{
		SchemaName: aws.String("public"),
		TableName:  aws.String("authors"),
		Inserts:    1,
	}}, nil
}

// fakeReader hands out one canned batch per capture phase.
type fakeReader struct {
	batches [][]sink.Record
	calls   int
}

func (f *fakeReader) ReadPhase(_ context.Context, _ int) ([]sink.Record, error) {
	if f.calls >= len(f.batches) {
		return nil, nil
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch, nil
}

func newRunner(mode config.Mode, mutator *fakeMutator, controller *fakeController, reader *fakeReader) *Runner {
	return NewRunner(mutator, controller, reader, mode, 0, slog.Default())
}

func TestRunExtendedModeHappyPath(t *testing.T) {
	mutator := &fakeMutator{}
	controller := &fakeController{}
	reader := &fakeReader{batches: [][]sink.Record{records(4), records(3), records(3)}}

	runner := newRunner(config.ModeExtended, mutator, controller, reader)
	require.NoError(t, runner.Run(context.Background()))

	assert.Equal(t, []string{"reset", "create", "seed", "alter", "reset"}, mutator.steps)
	assert.Equal(t, []string{"start", "wait:running", "stats", "stop", "wait:stopped"}, controller.steps)
	assert.Equal(t, 3, reader.calls)

	results := runner.Results()
	require.Len(t, results, 3)
	for _, result := range results {
		assert.True(t, result.OK(), "phase %s", result.Phase)
	}
}

func TestRunDefaultModeExpectsNoAlterRecords(t *testing.T) {
	mutator := &fakeMutator{}
	controller := &fakeController{}
	reader := &fakeReader{batches: [][]sink.Record{records(4), records(3), nil}}

	runner := newRunner(config.ModeDefault, mutator, controller, reader)
	require.NoError(t, runner.Run(context.Background()))
}

func TestRunMismatchRunsAllPhasesAndFails(t *testing.T) {
	mutator := &fakeMutator{}
	controller := &fakeController{}
	// Create phase short by one record; later phases are fine.
	reader := &fakeReader{batches: [][]sink.Record{records(3), records(3), records(3)}}

	runner := newRunner(config.ModeExtended, mutator, controller, reader)
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification failed")

	// Every phase still ran, and the task was still stopped cleanly.
	assert.Equal(t, 3, reader.calls)
	assert.Contains(t, controller.steps, "stop")
	assert.Contains(t, mutator.steps, "alter")
}

func TestRunTaskStartTimeoutIsFatal(t *testing.T) {
	mutator := &fakeMutator{}
	controller := &fakeController{waitErr: errors.New("last status \"starting\"")}
	reader := &fakeReader{}

	runner := newRunner(config.ModeExtended, mutator, controller, reader)
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "starting")

	// No capture phase ran.
	assert.Zero(t, reader.calls)
}

func TestRunMutationFailureAbortsRun(t *testing.T) {
	mutator := &fakeMutator{createErr: errors.New("relation already exists")}
	controller := &fakeController{}
	reader := &fakeReader{}

	runner := newRunner(config.ModeExtended, mutator, controller, reader)
	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create tables")
	assert.Empty(t, controller.steps)
}
