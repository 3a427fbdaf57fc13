package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LogDir is where the consumer appends schedule.log.
var LogDir = "logs"

// StartScheduleConsumer connects to RabbitMQ, declares the
// schedule.generated queue (durable) and appends every event to
// logs/schedule.log as a single line. It reconnects with exponential
// backoff and never returns while the process runs.
func StartScheduleConsumer() error {
	url := brokerURL()
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("schedule-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("schedule-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("schedule-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(ScheduleQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ScheduleQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(LogDir, d.Body); err != nil {
			log.Printf("schedule-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // do not requeue poison messages
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(dir string, body []byte) error {
	var ev ScheduleGeneratedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "schedule.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatScheduleLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatScheduleLine renders an event as one log line.
func FormatScheduleLine(ev ScheduleGeneratedEvent) string {
	parts := make([]string, 0, len(ev.Sections))
	for _, s := range ev.Sections {
		parts = append(parts, fmt.Sprintf("%s(%s)", s.CourseCode, s.CRN))
	}
	return fmt.Sprintf("[%s] Schedule generated | event_id=%s | user_id=%d | student_id=%d | degree_id=%d | semester=%s | sections=[%s] | discarded=%d\n",
		ev.GeneratedAt, ev.EventID, ev.UserID, ev.StudentID, ev.DegreeID, ev.Semester,
		strings.Join(parts, ","), len(ev.DiscardedSectionIDs))
}
