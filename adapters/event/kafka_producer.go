package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/codejourney/internal/config"
	"github.com/khoahotran/codejourney/internal/domain/lookup"
	"github.com/khoahotran/codejourney/pkg/logger"
)

const (
	TopicLookupEvents = "lookup.events"
	// LookupProcessorGroup is the consumer group of the worker.
	LookupProcessorGroup = "lookup-processor-group"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	LookupEventsWriter messageWriter
	logger             logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	lookupWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicLookupEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))
	return &KafkaProducerClient{LookupEventsWriter: lookupWriter, logger: log}, nil
}

// PublishLookupEvent keys messages by handle so lookups of one handle keep their order.
func (c *KafkaProducerClient) PublishLookupEvent(ctx context.Context, e lookup.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal lookup event failed: %w", err)
	}

	err = c.LookupEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Handle),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("write lookup event failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.LookupEventsWriter != nil {
		if err := c.LookupEventsWriter.Close(); err != nil {
			c.logger.Warn("Close Kafka writer failed", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// DecodeLookupEvent parses a message of TopicLookupEvents.
func DecodeLookupEvent(msg kafka.Message) (lookup.Event, error) {
	var e lookup.Event
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return lookup.Event{}, fmt.Errorf("unmarshal lookup event failed: %w", err)
	}
	return e, nil
}
