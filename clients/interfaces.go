package clients

import (
	"context"

	"github.com/u1f408/accord/models"
)

// TargetClient delivers normalized payloads to the downstream HTTP target.
type TargetClient interface {
	Send(ctx context.Context, payload models.Payload) error
}

// GatewayEvent is one event read from the chat gateway, tagged with the shard it arrived on.
type GatewayEvent struct {
	ShardID int
	Payload any
}

// Gateway is the source of platform events. Events are delivered in the order the
// gateway received them and the channel is closed once the gateway is closed.
type Gateway interface {
	Open() error
	Events() <-chan GatewayEvent
	Close() error
}
