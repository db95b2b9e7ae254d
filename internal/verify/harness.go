// Package verify checks that the sink observes the change events the fixed
// source script must produce.
package verify

import (
	"fmt"
	"log/slog"

	"github.com/30Piraten/dms-cdc/config"
	"github.com/30Piraten/dms-cdc/internal/sink"
)

// Phase names the steps of a verification run, in order.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseProvisioned  Phase = "provisioned"
	PhaseTableEvents  Phase = "table-events-captured"
	PhaseInsertEvents Phase = "insert-events-captured"
	PhaseAlterEvents  Phase = "alter-events-captured"
	PhaseDone         Phase = "done"
)

var order = []Phase{
	PhaseIdle,
	PhaseProvisioned,
	PhaseTableEvents,
	PhaseInsertEvents,
	PhaseAlterEvents,
	PhaseDone,
}

// Counts is the test oracle: how many sink records each capture phase must
// yield under a given sink mode.
type Counts struct {
	Create int
	Insert int
	Alter  int
}

// ExpectedCounts returns the oracle for mode.
//
// The create phase always yields four records: one control record for the
// exception table DMS creates on task start, plus one per created table.
// Alter events only reach the sink when the extended mode switches DDL
// capture on.
func ExpectedCounts(mode config.Mode) Counts {
	counts := Counts{Create: 4, Insert: 3, Alter: 0}
	if mode == config.ModeExtended {
		counts.Alter = 3
	}
	return counts
}

// Result records one capture phase's outcome.
type Result struct {
	Phase    Phase
	Expected int
	Observed int
	Records  []sink.Record
}

func (r Result) OK() bool {
	return r.Expected == r.Observed
}

// Harness is the phase state machine. A count mismatch marks the run failed
// but never blocks later transitions, so every phase can still be inspected
// after an earlier one went wrong.
type Harness struct {
	counts  Counts
	phase   Phase
	results []Result
	log     *slog.Logger
}

func NewHarness(mode config.Mode, log *slog.Logger) *Harness {
	return &Harness{counts: ExpectedCounts(mode), phase: PhaseIdle, log: log}
}

func (h *Harness) Phase() Phase {
	return h.phase
}

// Expected returns the oracle count for the next capture phase.
func (h *Harness) Expected() int {
	switch h.next() {
	case PhaseTableEvents:
		return h.counts.Create
	case PhaseInsertEvents:
		return h.counts.Insert
	case PhaseAlterEvents:
		return h.counts.Alter
	}
	return 0
}

// Advance moves to the next phase, comparing the captured records against
// the oracle when the phase is a capture phase.
func (h *Harness) Advance(records []sink.Record) Result {
	result := Result{
		Phase:    h.next(),
		Expected: h.Expected(),
		Observed: len(records),
		Records:  records,
	}
	h.phase = result.Phase

	switch h.phase {
	case PhaseTableEvents, PhaseInsertEvents, PhaseAlterEvents:
		h.results = append(h.results, result)
		if result.OK() {
			h.log.Info("phase verified", "phase", h.phase, "records", result.Observed)
		} else {
			h.log.Error("phase count mismatch",
				"phase", h.phase, "expected", result.Expected, "observed", result.Observed)
		}
		for _, rec := range records {
			h.log.Info("sink record",
				"phase", h.phase,
				"operation", rec.Metadata.Operation,
				"recordType", rec.Metadata.RecordType,
				"table", rec.Metadata.TableName,
				"partitionKey", rec.PartitionKey)
		}
	default:
		h.log.Info("phase reached", "phase", h.phase)
	}

	return result
}

func (h *Harness) next() Phase {
	for i, p := range order {
		if p == h.phase && i+1 < len(order) {
			return order[i+1]
		}
	}
	return PhaseDone
}

// Results returns the per-phase outcomes recorded so far.
func (h *Harness) Results() []Result {
	return h.results
}

// Err summarizes the run: nil when every capture phase matched the oracle.
func (h *Harness) Err() error {
	var mismatches int
	for _, r := range h.results {
		if !r.OK() {
			mismatches++
		}
	}
	if mismatches > 0 {
		return fmt.Errorf("verification failed: %d of %d phases mismatched", mismatches, len(h.results))
	}
	return nil
}
