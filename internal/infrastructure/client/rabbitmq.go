package client

import (
	"context"
	"fmt"

	"github.com/St1cky1/haccp-service/internal/entity"
	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	log     *zap.SugaredLogger
}

func NewRabbitMQClient(url, queueName string, log *zap.SugaredLogger) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Объявляем очередь для аудита
	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
		queue:   queue,
		log:     log,
	}, nil
}

// GetChannel возвращает AMQP channel для использования в consumer'ах
func (c *RabbitMQClient) GetChannel() *amqp.Channel {
	return c.channel
}

// GetQueueName возвращает имя очереди
func (c *RabbitMQClient) GetQueueName() string {
	return c.queue.Name
}

// NotifyClose сообщает о разрыве соединения
func (c *RabbitMQClient) NotifyClose() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(
		ctx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Сообщения сохраняются на диск
		},
	)
	if err != nil {
		return fmt.Errorf("publish audit message: %w", err)
	}

	c.log.Debugw("audit message published", "action", message.Action, "entityId", message.EntityID, "company", message.CompanyCode)
	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
