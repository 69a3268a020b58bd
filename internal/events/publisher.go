package events

import (
	"encoding/json"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Publisher emits order lifecycle events. Emission is best-effort: failures
// are logged, never surfaced to the request that triggered them.
type Publisher interface {
	Publish(event string, payload map[string]interface{})
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logrus.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) (Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger,
	}, nil
}

func (p *kafkaPublisher) Publish(event string, payload map[string]interface{}) {
	payload["event"] = event
	payload["event_id"] = uuid.NewString()
	payload["timestamp"] = time.Now().Unix()

	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Errorf("Events: failed to marshal '%s' event: %v", event, err)
		return
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.StringEncoder(data),
	})
	if err != nil {
		p.log.Errorf("Events: failed to publish '%s' event: %v", event, err)
		return
	}

	p.log.Debugf("Events: published '%s'", event)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// noopPublisher stands in when no brokers are configured.
type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(string, map[string]interface{}) {}

func (noopPublisher) Close() error { return nil }
