package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DispatchFunc runs the external ingestion call for one job.  It is supplied
// by the service layer so this package stays broker-only.
type DispatchFunc func(ctx context.Context, jobID string) error

// StartDispatchConsumer connects to RabbitMQ, declares the durable
// ingestion.dispatch queue and consumes dispatch orders, invoking handle for
// each one.  The function runs a reconnect loop with exponential backoff and
// never returns under normal operation; processing errors are logged and the
// offending message is dropped (the job record already carries the failure),
// so the server keeps operating.
func StartDispatchConsumer(handle DispatchFunc) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(BrokerURL())
		if err != nil {
			log.Printf("dispatch-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, handle); err != nil {
			log.Printf("dispatch-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, handle DispatchFunc) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// One unacked dispatch at a time; the external worker call is slow and
	// there is no point racing jobs against each other.
	if err := ch.Qos(1, 0, false); err != nil {
		log.Printf("dispatch-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(DispatchQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(DispatchQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		var ev DispatchEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			log.Printf("dispatch-consumer: bad message: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		if err := handle(context.Background(), ev.JobID); err != nil {
			// The dispatcher already recorded the failure on the job; do not
			// requeue, a second delivery would just repeat it.
			log.Printf("dispatch-consumer: dispatch job %s failed: %v", ev.JobID, err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}
