package kafka_client

import (
	"encoding/json"
	"os"

	"loanbackend/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

var KafkaProducer *kafka.Producer

// Enabled reports whether a broker was configured and the producer came up.
func Enabled() bool {
	return KafkaProducer != nil
}

// SendMessage publishes an evaluation summary to the configured topic.
func SendMessage(event types.EvaluationEvent) {
	topic := os.Getenv("KAFKA_TOPIC")
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Error marshalling evaluation event", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending evaluation event to kafka: %s", message)
	err = KafkaProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
	}, nil)
	if err != nil {
		zap.L().Error("Error sending message to kafka: ", zap.Any("error", err.Error()))
	}
}

func init() {
	servers := os.Getenv("KAFKA_BOOTSTRAPSERVERS")
	if servers == "" {
		return
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": servers,
		"client.id":         "loanbackend",
		"acks":              "all",
	})
	if err != nil {
		zap.L().Error("Kafka Producer initialization failed: ", zap.Any("error", err.Error()))
		return
	}
	KafkaProducer = producer

	// Delivery report handler for produced messages
	go func() {
		for e := range KafkaProducer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					zap.L().Error("Kafka Delivery failed: ", zap.Any("error", ev.TopicPartition.Error.Error()))
				} else {
					zap.L().Sugar().Infof("Delivered message to %s", *ev.TopicPartition.Topic)
				}
			}
		}
	}()

	zap.L().Info("Connected to Kafka", zap.String("servers", servers))
}
