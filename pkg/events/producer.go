package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Greenstand/domain-migration-scripts/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

// Publisher announces migrated records. Publish failures never fail the
// record; the runner only logs them.
type Publisher interface {
	Publish(ctx context.Context, event RecordMigrated) error
	Close() error
}

type ProducerConfig struct {
	Brokers      []string
	Topic        string
	Compression  string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
}

var compressions = map[string]kafka.Compression{
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes RecordMigrated events to one topic, keyed by
// pipeline:source_id so every event for a legacy row lands on one partition.
type Producer struct {
	writer messageWriter
	topic  string
	logger ectologger.Logger
}

func NewProducer(config ProducerConfig, logger ectologger.Logger) (*Producer, error) {
	switch {
	case len(config.Brokers) == 0:
		return nil, errors.New("kafka: no brokers configured")
	case config.Topic == "":
		return nil, errors.New("kafka: no topic configured")
	}

	// "none" and unknown names leave compression off
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		Compression:            compressions[config.Compression],
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		AllowAutoTopicCreation: true,
	}

	return newProducer(writer, config.Topic, logger), nil
}

func newProducer(writer messageWriter, topic string, logger ectologger.Logger) *Producer {
	return &Producer{writer: writer, topic: topic, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, event RecordMigrated) error {
	msg, err := message(event)
	if err != nil {
		return err
	}

	outcome := "ok"
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		outcome = "error"
		err = fmt.Errorf("publish %s to %s: %w", event.Key(), p.topic, err)
	}
	metrics.RecordEventPublish(p.topic, outcome)
	return err
}

func message(event RecordMigrated) (kafka.Message, error) {
	if event.Type == "" {
		event.Type = TypeRecordMigrated
	}

	value, err := event.ToJSON()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	headers := []kafka.Header{
		{Key: "event-type", Value: []byte(event.Type)},
		{Key: "pipeline", Value: []byte(event.Pipeline)},
	}
	if event.RunID != "" {
		headers = append(headers, kafka.Header{Key: "run-id", Value: []byte(event.RunID)})
	}

	return kafka.Message{Key: []byte(event.Key()), Value: value, Headers: headers, Time: event.MigratedAt}, nil
}

func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer for %s: %w", p.topic, err)
	}
	p.logger.WithField("topic", p.topic).Info("Kafka producer closed")
	return nil
}

// Nop drops every event. It stands in when Kafka is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, RecordMigrated) error { return nil }
func (Nop) Close() error                                  { return nil }
