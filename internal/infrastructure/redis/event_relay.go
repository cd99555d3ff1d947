package redis

import (
	"context"
	"encoding/json"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const eventChannel = "marketplace_events"

// relayMessage is the cross-instance wire form of a room publish.
type relayMessage struct {
	Instance string          `json:"instance"`
	Room     string          `json:"room"`
	Except   string          `json:"except,omitempty"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data"`
}

// EventRelay fans room publishes out across server instances. Every publish
// is delivered to the local hub and mirrored onto a redis channel; the
// subscribe loop replays messages from other instances into the local hub,
// dropping its own by instance id. Delivery stays best-effort end to end.
type EventRelay struct {
	client     *redis.Client
	local      domain.EventBus
	instanceID string
	log        logger.Logger
}

func NewEventRelay(client *redis.Client, local domain.EventBus, instanceID string, log logger.Logger) *EventRelay {
	return &EventRelay{
		client:     client,
		local:      local,
		instanceID: instanceID,
		log:        log,
	}
}

func (r *EventRelay) Publish(room, event string, payload interface{}) error {
	if err := r.local.Publish(room, event, payload); err != nil {
		return err
	}
	return r.relay(room, "", event, payload)
}

func (r *EventRelay) PublishExcept(room, exceptRoom, event string, payload interface{}) error {
	if err := r.local.PublishExcept(room, exceptRoom, event, payload); err != nil {
		return err
	}
	return r.relay(room, exceptRoom, event, payload)
}

func (r *EventRelay) relay(room, exceptRoom, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg, err := json.Marshal(relayMessage{
		Instance: r.instanceID,
		Room:     room,
		Except:   exceptRoom,
		Event:    event,
		Data:     data,
	})
	if err != nil {
		return err
	}

	return r.client.Publish(context.Background(), eventChannel, msg).Err()
}

// Start blocks consuming relayed publishes until ctx is cancelled.
func (r *EventRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to relayed events", "channel", eventChannel)

	for {
		select {
		case msg := <-ch:
			var relayed relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &relayed); err != nil {
				r.log.Error("Failed to parse relayed event", "payload", msg.Payload, "error", err)
				continue
			}

			if relayed.Instance == r.instanceID {
				continue
			}

			var err error
			if relayed.Except != "" {
				err = r.local.PublishExcept(relayed.Room, relayed.Except, relayed.Event, relayed.Data)
			} else {
				err = r.local.Publish(relayed.Room, relayed.Event, relayed.Data)
			}
			if err != nil {
				r.log.Error("Failed to deliver relayed event", "room", relayed.Room,
					"event", relayed.Event, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Event relay stopped")
			return ctx.Err()
		}
	}
}
