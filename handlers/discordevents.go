package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gammazero/workerpool"

	"github.com/u1f408/accord/clients"
	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/middleware"
	"github.com/u1f408/accord/services"
	"github.com/u1f408/accord/usecases/relay"
)

// DiscordEventsHandler drives the event loop: every gateway event updates the message
// cache in arrival order, then message events are relayed on the worker pool.
type DiscordEventsHandler struct {
	messageCache    services.MessageCache
	relayUseCase    *relay.RelayUseCase
	alertMiddleware *middleware.ErrorAlertMiddleware
	workers         int
}

func NewDiscordEventsHandler(
	messageCache services.MessageCache,
	relayUseCase *relay.RelayUseCase,
	alertMiddleware *middleware.ErrorAlertMiddleware,
	workers int,
) *DiscordEventsHandler {
	return &DiscordEventsHandler{
		messageCache:    messageCache,
		relayUseCase:    relayUseCase,
		alertMiddleware: alertMiddleware,
		workers:         workers,
	}
}

// Run consumes events until the stream is closed or ctx is cancelled, then waits for
// in-flight relays to finish. ctx is also handed to every relay, so cancelling it aborts
// pending requests; close the gateway instead for a graceful stop.
//
// A cache update failure stops the loop and is returned wrapping core.ErrCacheUpdate.
func (h *DiscordEventsHandler) Run(ctx context.Context, events <-chan clients.GatewayEvent) error {
	pool := workerpool.New(h.workers)
	defer func() {
		if waiting := pool.WaitingQueueSize(); waiting > 0 {
			log.Info("⏳ Waiting for %d queued relays to finish", waiting)
		}
		pool.StopWait()
	}()

	log.Info("📋 Starting event loop with %d relay workers", h.workers)
	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Event loop cancelled")
			return nil
		case event, ok := <-events:
			if !ok {
				log.Info("📋 Event stream closed - event loop stopping")
				return nil
			}
			if err := h.handleEvent(ctx, pool, event); err != nil {
				return err
			}
		}
	}
}

func (h *DiscordEventsHandler) handleEvent(ctx context.Context, pool *workerpool.WorkerPool, event clients.GatewayEvent) error {
	// The cache must observe events in gateway order, so it is updated before any task is spawned
	if err := h.messageCache.Update(event.Payload); err != nil {
		if errors.Is(err, core.ErrCacheUpdate) {
			return fmt.Errorf("failed to update message cache on shard %d: %w", event.ShardID, err)
		}
		return fmt.Errorf("%w on shard %d: %w", core.ErrCacheUpdate, event.ShardID, err)
	}

	switch e := event.Payload.(type) {
	case *discordgo.MessageCreate:
		if e.Message == nil {
			log.Warn("⚠️ Message create event without message on shard %d", event.ShardID)
			return nil
		}
		m := e.Message
		if m.GuildID != "" {
			log.Debug("📨 Server message %s in guild %s, channel %s", m.ID, m.GuildID, m.ChannelID)
			h.submit(pool, "RelayServerMessage", func() error {
				return h.relayUseCase.RelayServerMessage(ctx, m)
			})
		} else {
			log.Debug("📨 Direct message %s in channel %s", m.ID, m.ChannelID)
			h.submit(pool, "RelayDirectMessage", func() error {
				return h.relayUseCase.RelayDirectMessage(ctx, m)
			})
		}
	case *discordgo.Connect:
		log.Info("🔌 Connected on shard %d", event.ShardID)
	case *discordgo.Ready:
		log.Info("✅ Ready on shard %d (session %s)", event.ShardID, e.SessionID)
	case *discordgo.Resumed:
		log.Info("🔄 Session resumed on shard %d", event.ShardID)
	case *discordgo.Disconnect:
		log.Info("🔌 Disconnected on shard %d", event.ShardID)
	default:
		log.Debug("🔍 Ignoring %T on shard %d", event.Payload, event.ShardID)
	}
	return nil
}

func (h *DiscordEventsHandler) submit(pool *workerpool.WorkerPool, taskName string, task func() error) {
	wrapped := h.alertMiddleware.WrapBackgroundTask(taskName, task)
	pool.Submit(func() {
		if err := wrapped(); err != nil {
			log.Error("❌ Failed to relay message, dropping it: %v", err)
		}
	})
}
