// Package queue_publisher publishes domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures
// without interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/meeting-room-reservation/internal/mail"
	q "github.com/iliyamo/meeting-room-reservation/internal/queue"
)

// Publisher turns mail.Mailer sends into mail.requested events on
// the broker so that HTTP handlers never wait on an SMTP session.
// It satisfies the mail.Mailer interface.
type Publisher struct{}

func NewPublisher() *Publisher { return &Publisher{} }

// Send publishes a MailRequestedEvent to the mail.requested queue.
// The function attempts to be robust and to never panic; any error
// is logged and returned so the caller can choose to ignore it.
// Messages are marked as persistent.
func (p *Publisher) Send(ctx context.Context, msg mail.Message) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.MailQueueName, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	ev := q.MailRequestedEvent{
		To:          msg.To,
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",              // default exchange
		q.MailQueueName, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
