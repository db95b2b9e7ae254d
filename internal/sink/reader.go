// Package sink reads captured change events off the Kinesis target stream.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"

	"github.com/30Piraten/dms-cdc/config"
)

const getRecordsLimit = 50

// API is the slice of the Kinesis client we depend on.
type API interface {
	DescribeStream(ctx context.Context, params *kinesis.DescribeStreamInput, optFns ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, params *kinesis.GetShardIteratorInput, optFns ...func(*kinesis.Options)) (*kinesis.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, params *kinesis.GetRecordsInput, optFns ...func(*kinesis.Options)) (*kinesis.GetRecordsOutput, error)
}

// Reader consumes the single-shard target stream one phase at a time.
//
// The checkpoint is the sequence number of the last consumed record. It
// advances monotonically as records are read, so each ReadPhase call only
// ever sees records appended after the previous call — no double-counting,
// no skipping. Checkpoint state lives for one harness run only.
type Reader struct {
	client     API
	streamARN  string
	shardID    string
	checkpoint string
	retry      config.Retry
	log        *slog.Logger
}

// NewReader resolves the stream's shard and positions the checkpoint before
// the oldest record.
func NewReader(ctx context.Context, client API, streamARN string, retry config.Retry, log *slog.Logger) (*Reader, error) {
	res, err := client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
		StreamARN: aws.String(streamARN),
	})
	if err != nil {
		return nil, fmt.Errorf("describe stream %s: %w", streamARN, err)
	}
	if len(res.StreamDescription.Shards) == 0 {
		return nil, fmt.Errorf("stream %s has no shards", streamARN)
	}

	return &Reader{
		client:    client,
		streamARN: streamARN,
		shardID:   aws.ToString(res.StreamDescription.Shards[0].ShardId),
		retry:     retry,
		log:       log,
	}, nil
}

// ReadPhase collects records appended since the last call, in arrival order,
// polling until want records arrived or the retry budget lapsed. Collecting
// fewer than want records is not an error here; the caller judges counts.
//
// A record that fails to decode is logged and skipped, but still advances
// the checkpoint so the remaining records of the batch are preserved.
func (r *Reader) ReadPhase(ctx context.Context, want int) ([]Record, error) {
	iter, err := r.shardIterator(ctx)
	if err != nil {
		return nil, err
	}

	var records []Record
	for attempt := uint64(0); ; attempt++ {
		res, err := r.client.GetRecords(ctx, &kinesis.GetRecordsInput{
			StreamARN:     aws.String(r.streamARN),
			ShardIterator: iter,
			Limit:         aws.Int32(getRecordsLimit),
		})
		if err != nil {
			return records, fmt.Errorf("get records: %w", err)
		}

		records = append(records, r.consume(res.Records)...)
		iter = res.NextShardIterator

		if len(records) >= want || iter == nil || attempt+1 >= r.retry.MaxAttempts {
			break
		}

		r.log.Info("waiting for sink records", "have", len(records), "want", want)
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		case <-time.After(r.retry.Interval):
		}
	}

	r.log.Info("sink read complete", "records", len(records), "want", want)
	return records, nil
}

// shardIterator starts from the oldest record on the first phase and right
// after the checkpoint on every later one.
func (r *Reader) shardIterator(ctx context.Context) (*string, error) {
	input := &kinesis.GetShardIteratorInput{
		StreamARN:         aws.String(r.streamARN),
		ShardId:           aws.String(r.shardID),
		ShardIteratorType: types.ShardIteratorTypeTrimHorizon,
	}
	if r.checkpoint != "" {
		input.ShardIteratorType = types.ShardIteratorTypeAfterSequenceNumber
		input.StartingSequenceNumber = aws.String(r.checkpoint)
	}

	res, err := r.client.GetShardIterator(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("get shard iterator: %w", err)
	}
	return res.ShardIterator, nil
}

func (r *Reader) consume(raw []types.Record) []Record {
	var decoded []Record
	for _, rec := range raw {
		seq := aws.ToString(rec.SequenceNumber)
		r.checkpoint = seq

		data, meta, err := decode(rec.Data)
		if err != nil {
			// Malformed records are skipped, never fatal.
			r.log.Error("skipping undecodable record", "sequence", seq, "error", err)
			continue
		}
		decoded = append(decoded, Record{
			PartitionKey:   aws.ToString(rec.PartitionKey),
			SequenceNumber: seq,
			Data:           data,
			Metadata:       meta,
		})
	}
	return decoded
}
