package clients

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/u1f408/accord/models"
)

// MockTargetClient is a mock implementation of TargetClient
type MockTargetClient struct {
	mock.Mock
}

func (m *MockTargetClient) Send(ctx context.Context, payload models.Payload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// FakeGateway is an in-memory Gateway that replays queued events.
type FakeGateway struct {
	events    chan GatewayEvent
	openErr   error
	closeOnce sync.Once
}

func NewFakeGateway(buffer int) *FakeGateway {
	return &FakeGateway{events: make(chan GatewayEvent, buffer)}
}

// FailOpen makes the next Open call return err.
func (g *FakeGateway) FailOpen(err error) {
	g.openErr = err
}

// Push queues an event as if it arrived on the given shard.
func (g *FakeGateway) Push(shardID int, payload any) {
	g.events <- GatewayEvent{ShardID: shardID, Payload: payload}
}

func (g *FakeGateway) Open() error {
	return g.openErr
}

func (g *FakeGateway) Events() <-chan GatewayEvent {
	return g.events
}

func (g *FakeGateway) Close() error {
	g.closeOnce.Do(func() { close(g.events) })
	return nil
}
