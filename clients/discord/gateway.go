package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/u1f408/accord/clients"
	"github.com/u1f408/accord/core/log"
)

// Intents requests guild and direct message events, including message content.
const Intents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// DiscordGateway implements the clients.Gateway interface on top of a discordgo session.
type DiscordGateway struct {
	session *discordgo.Session
	events  chan clients.GatewayEvent
	done    chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewDiscordGateway creates a session for the given bot token. Nothing connects until Open.
func NewDiscordGateway(botToken string, buffer int) (*DiscordGateway, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	return newDiscordGateway(session, buffer), nil
}

func newDiscordGateway(session *discordgo.Session, buffer int) *DiscordGateway {
	g := &DiscordGateway{
		session: session,
		events:  make(chan clients.GatewayEvent, buffer),
		done:    make(chan struct{}),
	}

	// Handlers run inline on the websocket reader so events keep gateway order.
	session.SyncEvents = true
	// The message cache owns caching; discordgo's state would duplicate it.
	session.StateEnabled = false
	session.Identify.Intents = Intents

	session.AddHandler(g.forward)
	return g
}

var _ clients.Gateway = (*DiscordGateway)(nil)

// Open opens the websocket connection to Discord and begins forwarding events.
func (g *DiscordGateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	log.Info("🤖 Discord gateway is now running and listening for events")
	return nil
}

func (g *DiscordGateway) Events() <-chan clients.GatewayEvent {
	return g.events
}

// Close closes the Discord session and then the event stream.
func (g *DiscordGateway) Close() error {
	var err error
	g.closeOnce.Do(func() {
		// unblock any handler waiting on a full buffer before taking the write lock
		close(g.done)
		err = g.session.Close()

		g.mu.Lock()
		g.closed = true
		close(g.events)
		g.mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

// forward receives every typed event discordgo dispatches.
func (g *DiscordGateway) forward(s *discordgo.Session, event interface{}) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return
	}

	select {
	case g.events <- clients.GatewayEvent{ShardID: s.ShardID, Payload: event}:
	case <-g.done:
	}
}
