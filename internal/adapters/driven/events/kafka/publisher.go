// Package kafka publishes completed searches to a Kafka-compatible broker
// (Kafka, Redpanda) using franz-go.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
	"github.com/custodia-labs/artifact-search/internal/core/ports/driven"
)

// Ensure Publisher implements the interface.
var _ driven.EventPublisher = (*Publisher)(nil)

// publishTimeout bounds a single produce, including metadata loads and retries.
const publishTimeout = 5 * time.Second

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("kafka: publisher is closed")

// producer is the subset of *kgo.Client used for publishing.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// searchEvent is the wire format of a search record.
type searchEvent struct {
	Type string `json:"type"`
	domain.SearchRecord
}

// Publisher sends one record per completed search, keyed by record id.
type Publisher struct {
	client  producer
	topic   string
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewPublisher creates a publisher for the given seed brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one broker address is required")
	}
	if topic == "" {
		topic = domain.DefaultKafkaTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.DefaultProduceTopic(topic),
		kgo.RecordDeliveryTimeout(publishTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &Publisher{client: client, topic: topic, timeout: publishTimeout}, nil
}

// PublishSearch produces the record synchronously. It gives up after the
// publisher timeout even when ctx has no deadline.
func (p *Publisher) PublishSearch(ctx context.Context, record domain.SearchRecord) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	value, err := json.Marshal(searchEvent{Type: "search.completed", SearchRecord: record})
	if err != nil {
		return fmt.Errorf("marshal search event: %w", err)
	}

	timeout := p.timeout
	if timeout <= 0 {
		timeout = publishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := p.client.ProduceSync(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.ID),
		Value: value,
	})
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("failed to produce search event: %w", err)
	}
	return nil
}

// Topic returns the destination topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Close flushes and closes the client. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.client.Close()
	return nil
}
