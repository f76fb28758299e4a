package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the part of *amqp.Channel the publisher uses.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	Channel() (publishChannel, error)
	IsClosed() bool
	Close() error
}

type amqpConn struct{ *amqp.Connection }

func (c amqpConn) Channel() (publishChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConn{conn}, nil
}

// Publisher sends events to RabbitMQ.  The connection is opened lazily and
// reopened after a failure; a fresh channel is used per message.
type Publisher struct {
	url  string
	dial func(url string) (connection, error)

	mu   sync.Mutex
	conn connection
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url, dial: dialAMQP}
}

func (p *Publisher) BookingConfirmed(ctx context.Context, ev BookingEvent) error {
	return p.Publish(ctx, BookingConfirmedQueue, ev)
}

func (p *Publisher) BookingCancelled(ctx context.Context, ev BookingEvent) error {
	return p.Publish(ctx, BookingCancelledQueue, ev)
}

func (p *Publisher) UserRegistered(ctx context.Context, ev UserRegisteredEvent) error {
	return p.Publish(ctx, UserRegisteredQueue, ev)
}

// Publish marshals v and sends it as a persistent message to queue.
func (p *Publisher) Publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal %s: %w", queue, err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: declare %s: %w", queue, err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish %s: %w", queue, err)
	}
	return nil
}

func (p *Publisher) channel() (publishChannel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := p.dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		_ = p.conn.Close()
		p.conn = nil
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}
	return ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}
