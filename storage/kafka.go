package storage

import (
	"github.com/RENCI/ninjato/ninjato"

	"github.com/Shopify/sarama"
)

// KafkaConfig describes the kafka servers and topic used for background
// reconciliation jobs.
type KafkaConfig struct {
	Servers []string
	Topic   string
}

// KafkaQueue publishes job messages to a kafka topic through an async
// producer.  Worker processes consume the topic and run the jobs with their
// own retry policy.
type KafkaQueue struct {
	producer sarama.AsyncProducer
	topic    string
}

// NewKafkaQueue connects to the kafka cluster described by the config.
func NewKafkaQueue(kc KafkaConfig) (*KafkaQueue, error) {
	topic := kc.Topic
	if topic == "" {
		topic = "ninjato-jobs"
	}
	config := sarama.NewConfig()
	producer, err := sarama.NewAsyncProducer(kc.Servers, config)
	if err != nil {
		return nil, err
	}
	q := &KafkaQueue{producer: producer, topic: topic}
	go func() {
		for err := range producer.Errors() {
			ninjato.Errorf("error on kafka job send: %v\n", err)
		}
	}()
	ninjato.Infof("Kafka topic for ninjato jobs: %s\n", topic)
	return q, nil
}

// Enqueue publishes the message asynchronously.  Send failures are logged by
// the error-drain goroutine and left to the queue's retry policy.
func (q *KafkaQueue) Enqueue(msg JobMessage) error {
	value, err := msg.Encode()
	if err != nil {
		return err
	}
	q.producer.Input() <- &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(msg.SubvolumeID),
		Value: sarama.ByteEncoder(value),
	}
	return nil
}

// Shutdown makes sure the queue is flushed before stopping.
func (q *KafkaQueue) Shutdown() {
	if err := q.producer.Close(); err != nil {
		ninjato.Errorf("Kafka producer had error on close: %v\n", err)
	} else {
		ninjato.Infof("Successfully shut down kafka producer.\n")
	}
}
