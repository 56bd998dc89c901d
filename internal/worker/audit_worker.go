package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/St1cky1/haccp-service/internal/metrics"
	"github.com/St1cky1/haccp-service/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const consumerTag = "audit_worker"

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRequeue
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// AuditWorker забирает сообщения аудита из очереди и пишет их в журнал компании
type AuditWorker struct {
	url       string
	queue     string
	auditRepo repository.ITaskAuditRepository
	log       *zap.SugaredLogger
}

func NewAuditWorker(url, queue string, auditRepo repository.ITaskAuditRepository, log *zap.SugaredLogger) *AuditWorker {
	return &AuditWorker{
		url:       url,
		queue:     queue,
		auditRepo: auditRepo,
		log:       log,
	}
}

// Start блокируется до отмены ctx; при разрыве соединения переподключается с экспоненциальной паузой
func (w *AuditWorker) Start(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0

	operation := func() error {
		err := w.consume(ctx, b)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		w.log.Warnw("audit worker disconnected, reconnecting", "error", err, "retryIn", next)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil && !errors.Is(err, context.Canceled) {
		w.log.Errorw("audit worker stopped", "error", err)
		return
	}
	w.log.Info("audit worker stopped")
}

func (w *AuditWorker) consume(ctx context.Context, b backoff.BackOff) error {
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	if _, err := channel.QueueDeclare(
		w.queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", w.queue, err)
	}

	msgs, err := channel.Consume(
		w.queue,     // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", w.queue, err)
	}

	// соединение установлено, следующая пауза снова короткая
	b.Reset()
	w.log.Infow("audit worker started", "queue", w.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			w.process(ctx, msg)
		}
	}
}

func (w *AuditWorker) process(ctx context.Context, msg amqp.Delivery) {
	result, err := w.handle(ctx, msg.Body)

	var ackErr error
	switch result {
	case outcomeAck:
		metrics.AuditMessages.WithLabelValues("stored").Inc()
		ackErr = msg.Ack(false)
	case outcomeDrop:
		metrics.AuditMessages.WithLabelValues("dropped").Inc()
		w.log.Errorw("dropping audit message", "error", err, "body", string(msg.Body))
		ackErr = msg.Nack(false, false)
	case outcomeRequeue:
		metrics.AuditMessages.WithLabelValues("requeued").Inc()
		w.log.Warnw("failed to store audit message, requeue", "error", err)
		ackErr = msg.Nack(false, true)
	}
	if ackErr != nil {
		w.log.Warnw("failed to acknowledge audit message", "error", ackErr)
	}
}

// handle разбирает сообщение и сохраняет запись журнала.
// Битые сообщения не возвращаются в очередь, ошибки хранилища - возвращаются.
func (w *AuditWorker) handle(ctx context.Context, body []byte) (outcome, error) {
	var msg entity.AuditMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return outcomeDrop, fmt.Errorf("decode audit message: %w", err)
	}
	if msg.CompanyCode == "" || msg.EntityID == "" {
		return outcomeDrop, fmt.Errorf("audit message without company or entity")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	audit := msg.ToAudit()
	if err := w.auditRepo.Create(ctx, msg.CompanyCode, &audit); err != nil {
		return outcomeRequeue, fmt.Errorf("store audit: %w", err)
	}

	w.log.Debugw("audit stored", "action", audit.Action, "entityId", audit.EntityID, "company", msg.CompanyCode)
	return outcomeAck, nil
}
