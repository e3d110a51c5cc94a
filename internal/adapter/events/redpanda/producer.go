// Package redpanda publishes interview lifecycle events to a Redpanda/Kafka
// topic for downstream analytics.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
	"github.com/twmb/franz-go/plugin/kotel"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

const errTopicAlreadyExists = 36

// Producer wraps a Kafka producer and implements domain.EventPublisher.
type Producer struct {
	client *kgo.Client
	topic  string
}

var _ domain.EventPublisher = (*Producer)(nil)

// NewProducer connects to the brokers and ensures the event topic exists.
func NewProducer(ctx context.Context, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic name cannot be empty")
	}

	tracing := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer()))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.WithHooks(tracing.Hooks()...),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1_000_000),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		// Topic creation may race with another instance or be disallowed by
		// broker policy. Publishing still works once the topic exists.
		slog.Warn("ensure event topic failed", slog.String("topic", topic), slog.Any("error", err))
	}
	return &Producer{client: client, topic: topic}, nil
}

// PublishInterviewEvent produces one lifecycle event keyed by interview id.
func (p *Producer) PublishInterviewEvent(ctx domain.Context, ev domain.InterviewEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("op=events.publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(ev.InterviewID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=events.publish: %w", err)
	}
	return nil
}

// Close flushes and shuts down the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000

	topicReq := kmsg.NewCreateTopicsRequestTopic()
	topicReq.Topic = topic
	topicReq.NumPartitions = 1
	topicReq.ReplicationFactor = 1
	req.Topics = append(req.Topics, topicReq)

	resp, err := client.Request(ctx, &req)
	if err != nil {
		return fmt.Errorf("create topics request: %w", err)
	}
	createResp, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("unexpected response type: %T", resp)
	}
	for _, t := range createResp.Topics {
		if t.ErrorCode != 0 && t.ErrorCode != errTopicAlreadyExists {
			msg := ""
			if t.ErrorMessage != nil {
				msg = *t.ErrorMessage
			}
			return fmt.Errorf("create topic %s: %s (code %d)", t.Topic, msg, t.ErrorCode)
		}
	}
	return nil
}
