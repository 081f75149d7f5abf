// Postpulse - In-process content interaction analytics engine
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package receiver decodes inbound interaction events from NATS and hands
// them to the ingest core. It is a concrete adapter over the core's single
// ingest interface; the core itself has no knowledge of NATS, Watermill, or
// wire formats.
package receiver

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	natsgo "github.com/nats-io/nats.go"

	"github.com/hotlist/postpulse/internal/ingest"
	"github.com/hotlist/postpulse/internal/logging"
)

// Ingester is the subset of ingest.Manager the receiver depends on.
type Ingester interface {
	IngestEvent(ctx context.Context, evt ingest.Event)
}

// Config configures the NATS receiver.
type Config struct {
	URL     string
	Subject string
}

// wireEvent is the JSON shape of one inbound message payload.
type wireEvent struct {
	PostID    string `json:"post_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Action    string `json:"action"`
	CreatedAt *int64 `json:"created_at"`
}

var validate = validator.New()

var knownActions = map[string]ingest.Action{
	string(ingest.ActionView):          ingest.ActionView,
	string(ingest.ActionPlay):          ingest.ActionPlay,
	string(ingest.ActionPause):         ingest.ActionPause,
	string(ingest.ActionUnmute):        ingest.ActionUnmute,
	string(ingest.ActionCarouselLeft):  ingest.ActionCarouselLeft,
	string(ingest.ActionCarouselRight): ingest.ActionCarouselRight,
}

// Receiver subscribes to a NATS subject through Watermill and forwards
// decoded events to an Ingester.
type Receiver struct {
	cfg        Config
	subscriber message.Subscriber
	ingester   Ingester
}

// New constructs a Receiver and its underlying Watermill/NATS subscriber.
func New(cfg Config, ingester Ingester) (*Receiver, error) {
	logger := watermill.NewStdLogger(false, false)

	wmConfig := wmnats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: "postpulse",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions: []natsgo.Option{
			natsgo.RetryOnFailedConnect(true),
			natsgo.MaxReconnects(-1),
			natsgo.ReconnectWait(2 * time.Second),
		},
		Unmarshaler: &wmnats.NATSMarshaler{},
		JetStream: wmnats.JetStreamConfig{
			Disabled: true,
		},
	}

	sub, err := wmnats.NewSubscriber(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Receiver{cfg: cfg, subscriber: sub, ingester: ingester}, nil
}

// Run subscribes to the configured subject and processes messages until ctx
// is canceled. Every message is acked regardless of decode outcome: a
// malformed message must never be redelivered, and no error is ever visible
// to the core.
func (r *Receiver) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.cfg.Subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.cfg.Subject, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *Receiver) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()
	ctx = logging.ContextWithNewCorrelationID(ctx)

	var wire wireEvent
	if err := json.Unmarshal(msg.Payload, &wire); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("dropping unparseable message")
		return
	}
	if err := validate.Struct(wire); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("dropping message failing validation")
		return
	}

	action, ok := knownActions[wire.Action]
	if !ok {
		action = ingest.ActionView
	}

	createdAt := time.Now()
	if wire.CreatedAt != nil {
		createdAt = time.UnixMilli(*wire.CreatedAt)
	}

	r.ingester.IngestEvent(ctx, ingest.NewEvent(wire.PostID, wire.UserID, action, createdAt))
}

// Close releases the underlying subscriber's resources.
func (r *Receiver) Close() error {
	return r.subscriber.Close()
}
