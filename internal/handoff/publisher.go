package handoff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"aurabags-storefront/internal/domain"
	"github.com/IBM/sarama"
)

// Notifier receives placed orders. Delivery is best effort.
type Notifier interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

// OrderPlacedEvent is the payload published for every placed order.
type OrderPlacedEvent struct {
	Type       string       `json:"type"`
	OrderID    string       `json:"orderId"`
	CustomerID string       `json:"customerId,omitempty"`
	Order      domain.Order `json:"order"`
	HandoffURL string       `json:"handoffUrl,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// KafkaPublisher publishes OrderPlacedEvent messages keyed by order id.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	linker   *Linker
	logger   *log.Logger
	now      func() time.Time
}

// NewKafkaProducer dials brokers with acks from all in-sync replicas.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka: new producer: %w", err)
	}
	return producer, nil
}

// NewKafkaPublisher wraps producer. linker may be nil.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string, linker *Linker, logger *log.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		linker:   linker,
		logger:   logger,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) OrderPlaced(_ context.Context, o domain.Order) error {
	event := OrderPlacedEvent{
		Type:       "order.placed",
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Order:      o,
		OccurredAt: p.now().UTC(),
	}
	if p.linker != nil {
		event.HandoffURL = p.linker.URL(Support(o.ID))
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", p.topic, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(o.ID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send %s event: %w", p.topic, err)
	}
	if p.logger != nil {
		p.logger.Printf("handoff: published %s for order %s (partition %d, offset %d)", p.topic, o.ID, partition, offset)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
