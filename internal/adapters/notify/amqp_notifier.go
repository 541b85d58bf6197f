package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/mail-insight/internal/core"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventCompleted is the routing key suffix and event name of a finished run
const EventCompleted = "analysis.completed"

// CompletedEvent is published after every run
type CompletedEvent struct {
	Event            string       `json:"event"`
	RunID            string       `json:"run_id"`
	EmailsFetched    int          `json:"emails_fetched"`
	BatchesTotal     int          `json:"batches_total"`
	BatchesSucceeded int          `json:"batches_succeeded"`
	BatchesFailed    int          `json:"batches_failed"`
	Partial          bool         `json:"partial"`
	Summary          core.Summary `json:"summary"`
	FinishedAt       time.Time    `json:"finished_at"`
}

// NewCompletedEvent summarizes result for publication
func NewCompletedEvent(result *core.Result) CompletedEvent {
	return CompletedEvent{
		Event:            EventCompleted,
		RunID:            result.RunID,
		EmailsFetched:    result.EmailsFetched,
		BatchesTotal:     result.BatchesTotal,
		BatchesSucceeded: result.BatchesSucceeded,
		BatchesFailed:    result.BatchesFailed,
		Partial:          result.Partial,
		Summary:          result.Summary,
		FinishedAt:       result.FinishedAt,
	}
}

// AMQPNotifier publishes a completion event to a topic exchange
type AMQPNotifier struct {
	url        string
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewAMQPNotifier creates a new AMQP event notifier
func NewAMQPNotifier(url, exchange, routingKey string, logger *zap.Logger) *AMQPNotifier {
	if routingKey == "" {
		routingKey = EventCompleted
	}
	return &AMQPNotifier{
		url:        url,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// Name implements core.Notifier
func (n *AMQPNotifier) Name() string { return "amqp" }

// Notify implements core.Notifier. A connection is opened per run since runs are infrequent.
func (n *AMQPNotifier) Notify(ctx context.Context, result *core.Result) error {
	body, err := json.Marshal(NewCompletedEvent(result))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(n.exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	err = ch.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    result.RunID,
		Timestamp:    result.FinishedAt,
		Type:         EventCompleted,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	n.logger.Debug("Published completion event",
		zap.String("exchange", n.exchange),
		zap.String("routing_key", n.routingKey),
		zap.String("run_id", result.RunID))
	return nil
}
