// Package rabbitmq publishes mail tasks for the external email sender
// service. Publishing is best-effort from the caller's point of view: a
// failed welcome email never fails a registration.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devconnect/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func New(urlForConn string, queueName string) (*Publisher, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

// PublishWelcome queues the welcome email sent after registration.
func (p *Publisher) PublishWelcome(ctx context.Context, email, name string) error {
	return p.publish(ctx, models.Message{
		Email:   email,
		Name:    name,
		Purpose: "welcome",
	})
}

func (p *Publisher) publish(ctx context.Context, msg models.Message) error {
	const op = "rabbitmq.publish"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return p.channel.PublishWithContext(
		ctx,
		"",
		p.queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

func (p *Publisher) Close() {
	_ = p.channel.Close()
	_ = p.conn.Close()
}
