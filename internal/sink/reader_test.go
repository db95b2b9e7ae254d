package sink

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Piraten/dms-cdc/config"
)

// fakeKinesis models a single shard as an append-only record log. Iterators
// are encoded as offsets into the log.
type fakeKinesis struct {
	records []types.Record
}

func (f *fakeKinesis) push(payload string) {
	seq := strconv.Itoa(len(f.records) + 1)
	f.records = append(f.records, types.Record{
		SequenceNumber: aws.String(seq),
		PartitionKey:   aws.String("public.sample"),
		Data:           []byte(payload),
	})
}

func (f *fakeKinesis) DescribeStream(context.Context, *kinesis.DescribeStreamInput, ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error) {
	return &kinesis.DescribeStreamOutput{
		StreamDescription: &types.StreamDescription{
			Shards: []types.Shard{{ShardId: aws.String("shardId-000000000000")}},
		},
	}, nil
}

func (f *fakeKinesis) GetShardIterator(_ context.Context, params *kinesis.GetShardIteratorInput, _ ...func(*kinesis.Options)) (*kinesis.GetShardIteratorOutput, error) {
	offset := 0
	if params.ShardIteratorType == types.ShardIteratorTypeAfterSequenceNumber {
		seq, err := strconv.Atoi(aws.ToString(params.StartingSequenceNumber))
		if err != nil {
			return nil, err
		}
		offset = seq
	}
	return &kinesis.GetShardIteratorOutput{ShardIterator: aws.String("iter:" + strconv.Itoa(offset))}, nil
}

func (f *fakeKinesis) GetRecords(_ context.Context, params *kinesis.GetRecordsInput, _ ...func(*kinesis.Options)) (*kinesis.GetRecordsOutput, error) {
	offset, err := strconv.Atoi(strings.TrimPrefix(aws.ToString(params.ShardIterator), "iter:"))
	if err != nil {
		return nil, err
	}
	end := min(offset+int(aws.ToInt32(params.Limit)), len(f.records))
	return &kinesis.GetRecordsOutput{
		Records:           f.records[offset:end],
		NextShardIterator: aws.String("iter:" + strconv.Itoa(end)),
	}, nil
}

func payload(recordType, operation, table string) string {
	return fmt.Sprintf(
		`{"data": {"id": 1}, "metadata": {"record-type": %q, "operation": %q, "schema-name": "public", "table-name": %q}}`,
		recordType, operation, table,
	)
}

func newTestReader(t *testing.T, client API) *Reader {
	t.Helper()
	retry := config.Retry{MaxAttempts: 3, Interval: time.Millisecond}
	reader, err := NewReader(context.Background(), client, "arn:stream", retry, slog.Default())
	require.NoError(t, err)
	return reader
}

func TestReadPhaseReturnsRecordsInOrder(t *testing.T) {
	client := &fakeKinesis{}
	client.push(payload(RecordTypeControl, OpCreateTable, "awsdms_apply_exceptions"))
	client.push(payload(RecordTypeControl, OpCreateTable, "authors"))
	client.push(payload(RecordTypeControl, OpCreateTable, "accounts"))
	client.push(payload(RecordTypeControl, OpCreateTable, "books"))

	reader := newTestReader(t, client)
	records, err := reader.ReadPhase(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, records, 4)

	tables := make([]string, 0, len(records))
	for _, rec := range records {
		tables = append(tables, rec.Metadata.TableName)
	}
	assert.Equal(t, []string{"awsdms_apply_exceptions", "authors", "accounts", "books"}, tables)
}

func TestReadPhaseCheckpointIsMonotonic(t *testing.T) {
	client := &fakeKinesis{}
	client.push(payload(RecordTypeData, OpInsert, "authors"))
	client.push(payload(RecordTypeData, OpInsert, "accounts"))

	reader := newTestReader(t, client)
	first, err := reader.ReadPhase(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// A second read over the consumed range yields nothing.
	again, err := reader.ReadPhase(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, again)

	// Records appended after the checkpoint are picked up, and nothing
	// before them is re-delivered.
	client.push(payload(RecordTypeData, OpInsert, "books"))
	next, err := reader.ReadPhase(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "books", next[0].Metadata.TableName)
}

func TestReadPhaseSkipsUndecodableRecords(t *testing.T) {
	client := &fakeKinesis{}
	client.push(payload(RecordTypeData, OpInsert, "authors"))
	client.push(`{not json`)
	client.push(payload(RecordTypeData, OpInsert, "books"))

	reader := newTestReader(t, client)
	records, err := reader.ReadPhase(context.Background(), 3)
	require.NoError(t, err)

	// The bad record is dropped, the ones after it survive.
	require.Len(t, records, 2)
	assert.Equal(t, "authors", records[0].Metadata.TableName)
	assert.Equal(t, "books", records[1].Metadata.TableName)

	// The checkpoint still moved past the bad record.
	again, err := reader.ReadPhase(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestReadPhaseStopsAtRetryBudget(t *testing.T) {
	client := &fakeKinesis{}
	client.push(payload(RecordTypeData, OpInsert, "authors"))

	reader := newTestReader(t, client)
	records, err := reader.ReadPhase(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNewReaderRequiresShard(t *testing.T) {
	client := &emptyStream{}
	retry := config.Retry{MaxAttempts: 1, Interval: time.Millisecond}
	_, err := NewReader(context.Background(), client, "arn:stream", retry, slog.Default())
	assert.ErrorContains(t, err, "no shards")
}

type emptyStream struct{ fakeKinesis }

func (e *emptyStream) DescribeStream(context.Context, *kinesis.DescribeStreamInput, ...func(*kinesis.Options)) (*kinesis.DescribeStreamOutput, error) {
	return &kinesis.DescribeStreamOutput{StreamDescription: &types.StreamDescription{}}, nil
}
