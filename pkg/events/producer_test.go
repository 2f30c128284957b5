package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Greenstand/domain-migration-scripts/internal/testdb"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "migration-events", testdb.Logger())

	migratedAt := time.Date(2022, 1, 28, 12, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), RecordMigrated{
		Pipeline:        "legacy-captures",
		SourceID:        42,
		TargetID:        "cap-1",
		GrowerAccountID: "ga-1",
		Action:          "inserted",
		RunID:           "run-1",
		MigratedAt:      migratedAt,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "legacy-captures:42", string(msg.Key))
	assert.Equal(t, migratedAt, msg.Time)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypeRecordMigrated, decoded["type"])
	assert.Equal(t, float64(42), decoded["source_id"])
	assert.Equal(t, "ga-1", decoded["grower_account_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublish_Error(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("broker down")}, "migration-events", testdb.Logger())

	err := p.Publish(context.Background(), RecordMigrated{Pipeline: "planters", SourceID: 1})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(ProducerConfig{Topic: "t"}, testdb.Logger())
	assert.Error(t, err)

	_, err = NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}}, testdb.Logger())
	assert.Error(t, err)

	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}, Topic: "t", Compression: "snappy"}, testdb.Logger())
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestMessageHeaders(t *testing.T) {
	msg, err := message(RecordMigrated{Pipeline: "planters", SourceID: 7})
	require.NoError(t, err)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{"event-type": TypeRecordMigrated, "pipeline": "planters"}, headers)
}
