package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/movie-ticketing/internal/model"
)

// Publisher sends reservation confirmations to RabbitMQ.  It dials per
// publish, so a broker outage only affects the confirmations sent while
// it lasts.  Errors are logged and returned; the reservation engine drops
// them.
type Publisher struct {
    url   string
    queue string
    log   *zap.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, queue: ReservationCreatedQueue, log: log.Named("publisher")}
}

// ReservationCreated publishes c to the reservation.created queue as a
// persistent JSON message.
func (p *Publisher) ReservationCreated(ctx context.Context, c model.ReservationConfirmation) error {
    msg, err := newPublishing(NewReservationCreatedEvent(c), time.Now())
    if err != nil {
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("dial failed", zap.Error(err))
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("channel open failed", zap.Error(err))
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        p.log.Warn("queue declare failed", zap.String("queue", p.queue), zap.Error(err))
        return fmt.Errorf("rabbitmq queue declare: %w", err)
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
        p.log.Warn("publish failed", zap.String("queue", p.queue), zap.Error(err))
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    p.log.Debug("confirmation published",
        zap.String("message_id", msg.MessageId),
        zap.Uint64("reservation_id", c.ReservationID),
    )
    return nil
}

func newPublishing(ev ReservationCreatedEvent, now time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    uuid.NewString(),
        Type:         ReservationCreatedQueue,
        Timestamp:    now.UTC(),
        Body:         body,
    }, nil
}
