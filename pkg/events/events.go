// Package events provides the AMQP client used to publish and consume
// checkout events.
package events

import (
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

// QueueName is the durable queue carrying checkout events.
const QueueName = "checkout_queue"

// Config holds broker connection details.
type Config struct {
	URL string
}

// Client holds the AMQP connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewClient connects to the broker and declares the checkout queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", QueueName, err)
	}

	log.Printf("AMQP client connected, %s declared", QueueName)
	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing AMQP client: %v", errs)
	}
	return nil
}

// Publish sends one persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("AMQP channel is not available")
	}
	return c.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
}

// ConsumeCheckoutEvents delivers checkout messages to handler, acking on
// nil and nacking with requeue on error. It blocks until the channel
// closes.
func (c *Client) ConsumeCheckoutEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("AMQP channel is not available")
	}

	msgs, err := c.channel.Consume(
		QueueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for msg := range msgs {
		if err := handler(msg); err != nil {
			log.Printf("checkout event %d failed: %v", msg.DeliveryTag, err)
			if nackErr := msg.Nack(false, true); nackErr != nil {
				log.Printf("failed to nack message %d: %v", msg.DeliveryTag, nackErr)
			}
			continue
		}
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Printf("failed to ack message %d: %v", msg.DeliveryTag, ackErr)
		}
	}
	return nil
}
