// Package redpanda publishes domain events to Redpanda/Kafka.
//
// Evaluation results are emitted as JSON records keyed by user or session
// so downstream consumers see each key's events in order.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// DefaultTopic receives every evaluation event unless configured otherwise.
const DefaultTopic = "prepio-events"

// recordProducer is the part of *kgo.Client the publisher uses.
type recordProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Producer publishes domain events and implements domain.EventPublisher.
type Producer struct {
	client recordProducer
	topic  string
}

// NewProducer connects to brokers, makes sure topic exists and returns a
// Producer writing to it.
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("topic", topic))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	kotelService := kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider()))),
	)
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.DialTimeout(10*time.Second),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := ensureTopic(ctx, client, eventsTopic(topic)); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic),
			slog.Any("error", err))
	}
	return newProducer(client, topic), nil
}

func newProducer(client recordProducer, topic string) *Producer {
	return &Producer{client: client, topic: topic}
}

// Publish writes evt synchronously.
func (p *Producer) Publish(ctx domain.Context, evt domain.Event) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("op=redpanda.Publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(evt.Key),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if evt.UserID != "" {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: "user_id", Value: []byte(evt.UserID)})
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=redpanda.Publish: %w", err)
	}
	slog.Debug("event published", slog.String("type", evt.Type), slog.String("topic", p.topic))
	return nil
}

// Ping checks that at least one broker answers.
func (p *Producer) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("op=redpanda.Ping: %w", err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
