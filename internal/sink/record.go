package sink

import (
	"encoding/json"
	"fmt"
)

// Operations DMS tags change events with.
const (
	OpInsert      = "insert"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpCreateTable = "create-table"
	OpAlterTable  = "alter-table"
	OpDropTable   = "drop-table"
)

// Record types in the DMS envelope: data for row changes, control for DDL
// and task-management events.
const (
	RecordTypeData    = "data"
	RecordTypeControl = "control"
)

// Metadata is the envelope metadata DMS attaches to every Kinesis message.
type Metadata struct {
	Timestamp  string `json:"timestamp"`
	RecordType string `json:"record-type"`
	Operation  string `json:"operation"`
	SchemaName string `json:"schema-name"`
	TableName  string `json:"table-name"`
}

// Record is one decoded change event in stream order.
type Record struct {
	PartitionKey   string
	SequenceNumber string
	Data           map[string]any
	Metadata       Metadata
}

type envelope struct {
	Data     map[string]any `json:"data"`
	Metadata Metadata       `json:"metadata"`
}

func decode(payload []byte) (map[string]any, Metadata, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, Metadata{}, fmt.Errorf("decode record payload: %w", err)
	}
	return env.Data, env.Metadata, nil
}
