package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends UserAuditEvents to RabbitMQ.  Each publish dials with a
// short timeout, declares the queue and closes again.  Errors are logged and
// returned; the auditor ignores them.
type Publisher struct {
	url    string
	logger *zap.Logger
}

func NewPublisher(url string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, logger: logger.Named("AuditPublisher")}
}

// PublishUserAudit publishes ev as a persistent JSON message on
// AuditQueueName through the default exchange.
func (p *Publisher) PublishUserAudit(ctx context.Context, ev UserAuditEvent) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		p.logger.Warn("dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(AuditQueueName, true, false, false, false, nil); err != nil {
		p.logger.Warn("queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", AuditQueueName, false, false, pub); err != nil {
		p.logger.Warn("publish failed", zap.String("event_id", ev.EventID), zap.Error(err))
		return err
	}
	return nil
}
