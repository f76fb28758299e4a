package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/notify"
)

// Consumer drains the event queues.  Booking events are appended to
// BookingLog one line per event; registration events trigger the welcome
// mail through Mailer.
type Consumer struct {
	URL        string
	BookingLog string
	Mailer     notify.Sender
}

// Run connects, consumes and reconnects with exponential backoff (1s up to
// 30s) until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logger.Warn("event-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("event-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("event-consumer: set QoS failed", zap.Error(err))
	}

	deliveries := make(map[string]<-chan amqp.Delivery, len(Queues))
	for _, q := range Queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		deliveries[q] = msgs
	}
	logger.Info("event-consumer: listening", zap.Strings("queues", Queues))

	for {
		var (
			d  amqp.Delivery
			ok bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-deliveries[BookingConfirmedQueue]:
		case d, ok = <-deliveries[BookingCancelledQueue]:
		case d, ok = <-deliveries[UserRegisteredQueue]:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(ctx, d.RoutingKey, d.Body); err != nil {
			logger.Error("event-consumer: handle message failed",
				zap.String("queue", d.RoutingKey), zap.Error(err))
			_ = d.Nack(false, false) // drop; requeueing a poison message loops forever
			continue
		}
		_ = d.Ack(false)
	}
}

// Handle processes one message body received from queue.
func (c *Consumer) Handle(ctx context.Context, queue string, body []byte) error {
	switch queue {
	case BookingConfirmedQueue, BookingCancelledQueue:
		var ev BookingEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		return c.appendBookingLine(FormatBookingLine(queue, ev))
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		if c.Mailer == nil {
			return errors.New("no mailer configured")
		}
		return c.Mailer.Send(ctx, notify.Welcome(ev.Name, ev.Email))
	}
	return fmt.Errorf("unknown queue %q", queue)
}

// FormatBookingLine renders the single-line log entry for a booking event.
func FormatBookingLine(queue string, ev BookingEvent) string {
	verb := "Booking confirmed"
	if queue == BookingCancelledQueue {
		verb = "Booking cancelled"
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | room_id=%d | hotel=%q | room=%q | check_in=%s | check_out=%s | total=%s | status=%s\n",
		ev.OccurredAt, verb, ev.BookingID, ev.UserID, ev.RoomID, ev.HotelName, ev.RoomNumber,
		ev.CheckIn, ev.CheckOut, ev.TotalPrice, ev.Status)
}

func (c *Consumer) appendBookingLine(line string) error {
	path := c.BookingLog
	if path == "" {
		path = filepath.Join("logs", "booking.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
