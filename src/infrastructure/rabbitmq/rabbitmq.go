package rabbitmq

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"go-clothing-store/src/services/events"
)

// RabbitMQServiceImpl publishes to and consumes from a topic exchange. A
// dropped connection or channel is re-dialled on the next Publish or Consume.
type RabbitMQServiceImpl struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	closed   chan *amqp.Error
	host     string
	exchange string
	queue    string
	topics   []string
	dial     func(host string) (*amqp.Connection, error)
}

// NewRabbitMQService connects to host and declares the topology: the topic
// exchange, a fanout dead-letter exchange feeding queueName.dlq, and for each
// topic a queue bound by its own name plus a <topic>.dlq parking queue.
func NewRabbitMQService(host, exchange, queueName string, topics []string) (*RabbitMQServiceImpl, error) {
	s := &RabbitMQServiceImpl{
		host:     host,
		exchange: exchange,
		queue:    queueName,
		topics:   topics,
		dial:     amqp.Dial,
	}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// connect dials, opens a channel and redeclares the topology. Callers hold mu
// or own s exclusively.
func (s *RabbitMQServiceImpl) connect() error {
	conn, err := s.dial(s.host)
	if err != nil {
		return errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to open a channel")
	}

	if err := declareTopology(ch, s.exchange, s.queue, s.topics); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	s.conn = conn
	s.channel = ch
	s.closed = ch.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

// ensureConnected returns a usable channel, re-dialling when the connection
// or channel has gone away.
func (s *RabbitMQServiceImpl) ensureConnected() (*amqp.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive() {
		return s.channel, nil
	}
	if s.channel != nil {
		_ = s.channel.Close()
	}
	if s.conn != nil && !s.conn.IsClosed() {
		_ = s.conn.Close()
	}
	s.conn, s.channel, s.closed = nil, nil, nil

	if err := s.connect(); err != nil {
		return nil, errors.Wrap(err, "reconnect to RabbitMQ")
	}
	return s.channel, nil
}

// alive reports whether both the connection and the channel are open.
func (s *RabbitMQServiceImpl) alive() bool {
	if s.conn == nil || s.conn.IsClosed() || s.channel == nil {
		return false
	}
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func declareTopology(ch *amqp.Channel, exchange, queueName string, topics []string) error {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare an exchange")
	}

	// dead-letter exchange
	dlxName := exchange + ".dlx"
	err = ch.ExchangeDeclare(
		dlxName,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to declare a dead-letter exchange")
	}

	dlqName := queueName + ".dlq"
	if _, err = ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "failed to declare a dead-letter queue")
	}
	if err = ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return errors.Wrap(err, "failed to bind dead-letter queue")
	}

	// Declare the main queue with dead-lettering enabled
	args := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}
	if _, err = ch.QueueDeclare(queueName, true, false, false, false, args); err != nil {
		return errors.Wrap(err, "failed to declare a queue")
	}

	for _, topic := range topics {
		if _, err = ch.QueueDeclare(topic, true, false, false, false, args); err != nil {
			return errors.Wrapf(err, "failed to declare event queue %s", topic)
		}
		// Bind queue to exchange with routing key (same as queue name)
		if err = ch.QueueBind(topic, topic, exchange, false, nil); err != nil {
			return errors.Wrapf(err, "failed to bind event queue %s", topic)
		}

		topicDLQ := events.DLQTopic(topic)
		if _, err = ch.QueueDeclare(topicDLQ, true, false, false, false, nil); err != nil {
			return errors.Wrapf(err, "failed to declare DLQ %s", topicDLQ)
		}
		if err = ch.QueueBind(topicDLQ, topicDLQ, exchange, false, nil); err != nil {
			return errors.Wrapf(err, "failed to bind DLQ %s", topicDLQ)
		}
	}
	return nil
}

// Publish sends a persistent JSON message to the exchange under topic.
func (s *RabbitMQServiceImpl) Publish(topic string, body []byte) error {
	if topic == "" {
		return errors.New("topic cannot be empty")
	}
	if body == nil {
		return errors.New("message body cannot be nil")
	}
	ch, err := s.ensureConnected()
	if err != nil {
		return err
	}

	err = ch.Publish(
		s.exchange, // exchange
		topic,      // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
		},
	)
	if err != nil {
		return errors.Wrapf(err, "failed to publish message to topic '%s'", topic)
	}
	return nil
}

// Close closes the connection to RabbitMQ.
func (s *RabbitMQServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// Consume starts consuming messages from a queue with manual acks.
func (s *RabbitMQServiceImpl) Consume(queueName string) (<-chan amqp.Delivery, error) {
	ch, err := s.ensureConnected()
	if err != nil {
		return nil, err
	}

	msgs, err := ch.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start consuming queue")
	}
	return msgs, nil
}

// IsHealthy checks if the RabbitMQ connection is healthy
func (s *RabbitMQServiceImpl) IsHealthy() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive()
}
