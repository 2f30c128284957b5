// Package events publishes a "record migrated" event for every committed
// record.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const TypeRecordMigrated = "record.migrated"

type RecordMigrated struct {
	Type            string    `json:"type"`
	Pipeline        string    `json:"pipeline"`
	SourceID        int64     `json:"source_id"`
	TargetID        string    `json:"target_id,omitempty"`
	GrowerAccountID string    `json:"grower_account_id,omitempty"`
	Action          string    `json:"action"`
	RunID           string    `json:"run_id"`
	MigratedAt      time.Time `json:"migrated_at"`
	TraceID         string    `json:"trace_id,omitempty"`
}

// Key keeps every event of a source record on one partition.
func (e RecordMigrated) Key() string {
	return fmt.Sprintf("%s:%d", e.Pipeline, e.SourceID)
}

func (e RecordMigrated) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
