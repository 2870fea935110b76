package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

const (
    initialBackoff = time.Second
    maxBackoff     = 30 * time.Second
)

// Consumer reads reservation.created messages and records each
// confirmation as a structured log entry.  Run keeps reconnecting with
// capped exponential backoff until its context is cancelled.
type Consumer struct {
    url   string
    queue string
    log   *zap.Logger
}

// NewConsumer returns a Consumer for the broker at url.
func NewConsumer(url string, log *zap.Logger) *Consumer {
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{url: url, queue: ReservationCreatedQueue, log: log.Named("consumer")}
}

// Run consumes until ctx is cancelled and then returns ctx.Err().
// Broker failures never end the loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := initialBackoff
    for {
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("dial failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = nextBackoff(backoff)
            continue
        }
        backoff = initialBackoff

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handle(d.MessageId, d.Body); err != nil {
                c.log.Warn("rejecting message", zap.String("message_id", d.MessageId), zap.Error(err))
                _ = d.Nack(false, false) // do not requeue a message that cannot be decoded
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// handle decodes one message and logs the confirmation.
func (c *Consumer) handle(messageID string, body []byte) error {
    var ev ReservationCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ReservationID == 0 {
        return errors.New("event without reservation id")
    }
    c.log.Info("reservation confirmed",
        zap.String("message_id", messageID),
        zap.Uint64("reservation_id", ev.ReservationID),
        zap.Uint64("user_id", ev.UserID),
        zap.String("username", ev.Username),
        zap.Uint64("showtime_id", ev.ShowtimeID),
        zap.String("movie", ev.MovieTitle),
        zap.String("show_date", ev.ShowDate),
        zap.String("show_time", ev.ShowTime),
        zap.Uint32("tickets", ev.TicketCount),
        zap.Int64("total_cents", ev.TotalPriceCents),
        zap.String("created_at", ev.CreatedAt),
    )
    return nil
}

func nextBackoff(d time.Duration) time.Duration {
    return min(2*d, maxBackoff)
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
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
