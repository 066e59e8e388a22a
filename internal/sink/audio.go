package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rikuzen/chatferry/internal/common"
	"github.com/rikuzen/chatferry/internal/dialog"
)

const (
	retryDelayMS = 15000
	publishWait  = 5 * time.Second
)

// AudioJob is the payload handed to the playback worker.
type AudioJob struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// AudioQueue enqueues speech jobs for NPC lines the first time they are seen.
// The queue topology gives failed jobs one delayed retry lane and a terminal
// dead-letter queue.
type AudioQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAudioQueue(url, queue string) (*AudioQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("sink: amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sink: amqp channel: %w", err)
	}

	dlq := queue + ".dlq"
	retry := queue + ".retry"

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("sink: declare %s: %w", dlq, err)
	}
	if _, err := ch.QueueDeclare(retry, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
		"x-message-ttl":             int32(retryDelayMS),
	}); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("sink: declare %s: %w", retry, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlq,
	}); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("sink: declare %s: %w", queue, err)
	}

	return &AudioQueue{conn: conn, ch: ch, queue: queue}, nil
}

// Publish enqueues one job with persistent delivery.
func (q *AudioQueue) Publish(ctx context.Context, job AudioJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("sink: marshal audio job: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, publishWait)
	defer cancel()
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         body,
	})
}

// speechText decides whether a record gets queued for playback and with what
// text: NPC lines only, first sighting only, preferring the capture client's
// audio text over the display text.
func speechText(rec dialog.LogRecord, firstSeen bool) (string, bool) {
	if !firstSeen || !dialog.IsNPCChannel(rec.Code) {
		return "", false
	}
	text := rec.AudioText
	if text == "" {
		text = rec.Text
	}
	if text == "" {
		return "", false
	}
	return text, true
}

// OnRecordFinalized queues audio for NPC lines, first sighting only.
func (q *AudioQueue) OnRecordFinalized(rec dialog.LogRecord, firstSeen bool) {
	text, ok := speechText(rec, firstSeen)
	if !ok {
		return
	}

	id, err := common.NewULID()
	if err != nil {
		log.Printf("sink: audio job id: %v", err)
		return
	}
	job := AudioJob{ID: id, Text: text, Lang: rec.Translation.From}
	if err := q.Publish(context.Background(), job); err != nil {
		log.Printf("sink: publish audio job %s: %v", id, err)
	}
}

func (q *AudioQueue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
