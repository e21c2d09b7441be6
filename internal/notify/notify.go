// Package notify hands mail messages to the mail worker through RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rotadesk/rota/backend/internal/domain"
)

// Publisher is the part of *amqp.Channel the notifier uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type AMQP struct {
	ch      Publisher
	queue   string
	timeout time.Duration
}

func NewAMQP(ch Publisher, queue string, timeout time.Duration) *AMQP {
	return &AMQP{
		ch:      ch,
		queue:   queue,
		timeout: timeout,
	}
}

// Notify publishes msg as a persistent JSON message on the default exchange.
func (n *AMQP) Notify(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	return n.ch.PublishWithContext(
		ctx,
		"",
		n.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}
