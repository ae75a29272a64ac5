// Package consumer reads the audit topic and archives events into the store.
// It runs as a background goroutine next to the HTTP server; a nil store
// disables archival while the topic remains the durable record.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "roost/pkg/platform/audit"
)

type wirePayload struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Subject   string `json:"subject"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
	ClientIP  string `json:"client_ip"`
}

// Consumer archives the audit topic.
type Consumer struct {
	client *kgo.Client
	store  audit.Store
	logger *slog.Logger
}

// New joins the archiver consumer group on the audit topic.
func New(brokers []string, topic string, store audit.Store, logger *slog.Logger) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup("roost-audit-archiver"),
		kgo.AutoCommitInterval(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &Consumer{client: client, store: store, logger: logger}, nil
}

// Run polls until the context is cancelled. Malformed records are logged and
// skipped; store failures are logged and retried on the next poll only
// implicitly, since the topic remains the source of truth.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("audit fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			c.archive(ctx, record)
		})
	}
}

func (c *Consumer) archive(ctx context.Context, record *kgo.Record) {
	var body wirePayload
	if err := json.Unmarshal(record.Value, &body); err != nil {
		c.logger.Warn("skipping malformed audit record", "offset", record.Offset, "error", err)
		return
	}

	ts, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	if err != nil {
		ts = record.Timestamp
	}
	event := audit.Event{
		Timestamp: ts,
		UserID:    body.UserID,
		Subject:   body.Subject,
		Action:    audit.Action(body.Action),
		Reason:    body.Reason,
		RequestID: body.RequestID,
		ClientIP:  body.ClientIP,
	}
	if err := c.store.Append(ctx, event); err != nil {
		c.logger.Error("failed to archive audit event", "action", body.Action, "error", err)
	}
}
