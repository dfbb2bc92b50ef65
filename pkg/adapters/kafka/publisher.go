package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/taxwizard/pkg/ports"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic receives routing outcomes.
const DefaultTopic = "taxwizard.routing"

// producer is the subset of *kgo.Client the publisher needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Publisher implements ports.ResultPublisher on Kafka.
// Records are keyed by session ID so outcomes of one session stay ordered.
type Publisher struct {
	client producer
	topic  string
}

// New connects to brokers and produces to topic (DefaultTopic when empty).
func New(brokers []string, topic string, opts ...kgo.Opt) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no seed brokers")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ClientID("taxwizard"),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka: new client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish produces one record per event and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event ports.RoutingEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "status", Value: []byte(event.Status)},
		},
	}
	if event.Result != nil {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: "track", Value: []byte(event.Result.Track)})
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", event.SessionID, err)
	}
	return nil
}

// Close flushes and closes the client.
func (p *Publisher) Close() {
	p.client.Close()
}
