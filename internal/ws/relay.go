package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Vasu1712/hushgroup-backend/internal/models"
	"github.com/rs/zerolog"
	"github.com/valkey-io/valkey-go"
)

// InboxChannel is the pub/sub channel inbox events travel on between instances.
const InboxChannel = "hush:inbox"

// envelope is what goes over the wire. It carries the receiver so the
// subscribing instance knows which connections to deliver to, and nothing else
// about the people involved.
type envelope struct {
	ReceiverID string            `json:"receiverId"`
	Event      models.InboxEvent `json:"event"`
}

// Relay publishes inbox events to Valkey and delivers the ones it receives to
// the local hub, so a receiver connected to any instance gets them.
type Relay struct {
	client valkey.Client
	hub    *Hub
	log    zerolog.Logger
}

func NewRelay(client valkey.Client, hub *Hub, log zerolog.Logger) *Relay {
	return &Relay{client: client, hub: hub, log: log}
}

// Notify publishes event for receiverID.
func (r *Relay) Notify(ctx context.Context, receiverID string, event models.InboxEvent) error {
	payload, err := json.Marshal(envelope{ReceiverID: receiverID, Event: event})
	if err != nil {
		return err
	}
	cmd := r.client.B().Publish().Channel(InboxChannel).Message(string(payload)).Build()
	return r.client.Do(ctx, cmd).Error()
}

// Run subscribes to the inbox channel until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	err := r.client.Receive(ctx, r.client.B().Subscribe().Channel(InboxChannel).Build(), func(msg valkey.PubSubMessage) {
		r.handle([]byte(msg.Message))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (r *Relay) handle(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		r.log.Warn().Err(err).Msg("discarding malformed inbox event")
		return
	}
	data, err := json.Marshal(env.Event)
	if err != nil {
		return
	}
	if err := r.hub.Deliver(env.ReceiverID, data); err != nil {
		r.log.Warn().Err(err).Msg("inbox event dropped")
	}
}
