package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/chroniclehq/feedgen/internal/models"
)

// DefaultResultsExchangeName is the fanout exchange cycle results are published to
const DefaultResultsExchangeName = "feed_cycle_results"

// ResultPublisher publishes completed cycle results for downstream consumers
// (feed assembly, analytics). Publishing is best effort from the worker's
// point of view; a failed publish never fails the cycle that produced it.
type ResultPublisher interface {
	PublishCycleResult(ctx context.Context, result *models.CycleResult) error
}

// RabbitMQResultPublisher implements ResultPublisher on a dedicated channel
// of an existing RabbitMQ connection
type RabbitMQResultPublisher struct {
	channel      *amqp.Channel
	exchangeName string
}

var _ ResultPublisher = (*RabbitMQResultPublisher)(nil)

// NewRabbitMQResultPublisher opens a publish channel on the queue's connection
// and declares the results exchange
func NewRabbitMQResultPublisher(q *RabbitMQQueue) (*RabbitMQResultPublisher, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open result publisher channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		DefaultResultsExchangeName,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		if closeErr := ch.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to declare results exchange: %w", err)
	}

	return &RabbitMQResultPublisher{
		channel:      ch,
		exchangeName: DefaultResultsExchangeName,
	}, nil
}

// PublishCycleResult publishes a cycle result as JSON
func (p *RabbitMQResultPublisher) PublishCycleResult(ctx context.Context, result *models.CycleResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal cycle result: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    result.CycleID.String(),
		Timestamp:    result.CompletedAt,
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		"", // fanout ignores the routing key
		false,
		false,
		publishing,
	)
	if err != nil {
		return fmt.Errorf("failed to publish cycle result: %w", err)
	}

	return nil
}

// Close closes the publisher's channel; the shared connection stays open
func (p *RabbitMQResultPublisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
