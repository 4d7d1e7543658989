package messagecache

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/services"
)

const DefaultMaxMessagesPerChannel = 100

// MessageCacheService keeps the most recent messages of every channel it has seen.
// Only message create, update, delete and bulk delete events touch it.
type MessageCacheService struct {
	maxPerChannel int

	mu       sync.RWMutex
	channels map[string]*channelMessages
}

type channelMessages struct {
	// order holds message ids oldest first
	order []string
	byID  map[string]*discordgo.Message
}

// NewMessageCacheService creates a cache holding up to maxPerChannel messages per channel.
// Zero disables message caching; events are still validated.
func NewMessageCacheService(maxPerChannel int) *MessageCacheService {
	return &MessageCacheService{
		maxPerChannel: maxPerChannel,
		channels:      make(map[string]*channelMessages),
	}
}

var _ services.MessageCache = (*MessageCacheService)(nil)

// Update applies a gateway event. Malformed message events return an error wrapping
// core.ErrCacheUpdate; every other event kind is ignored.
func (c *MessageCacheService) Update(event any) error {
	switch e := event.(type) {
	case *discordgo.MessageCreate:
		if err := validate("create", e.Message); err != nil {
			return err
		}
		c.add(e.Message)
	case *discordgo.MessageUpdate:
		if err := validate("update", e.Message); err != nil {
			return err
		}
		c.update(e.Message)
	case *discordgo.MessageDelete:
		if err := validate("delete", e.Message); err != nil {
			return err
		}
		c.remove(e.ChannelID, e.ID)
	case *discordgo.MessageDeleteBulk:
		if e.ChannelID == "" {
			return fmt.Errorf("bulk delete without channel id: %w", core.ErrCacheUpdate)
		}
		for _, id := range e.Messages {
			c.remove(e.ChannelID, id)
		}
	}
	return nil
}

// Message looks up a cached message.
func (c *MessageCacheService) Message(channelID, messageID string) mo.Option[*discordgo.Message] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ch, ok := c.channels[channelID]
	if !ok {
		return mo.None[*discordgo.Message]()
	}
	msg, ok := ch.byID[messageID]
	if !ok {
		return mo.None[*discordgo.Message]()
	}
	return mo.Some(msg)
}

// Len returns the number of cached messages across all channels.
func (c *MessageCacheService) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, ch := range c.channels {
		total += len(ch.order)
	}
	return total
}

func validate(op string, m *discordgo.Message) error {
	if m == nil {
		return fmt.Errorf("message %s event without message: %w", op, core.ErrCacheUpdate)
	}
	if m.ID == "" || m.ChannelID == "" {
		return fmt.Errorf("message %s event missing id or channel id: %w", op, core.ErrCacheUpdate)
	}
	return nil
}

func (c *MessageCacheService) add(m *discordgo.Message) {
	if c.maxPerChannel == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.channels[m.ChannelID]
	if !ok {
		ch = &channelMessages{byID: make(map[string]*discordgo.Message)}
		c.channels[m.ChannelID] = ch
	}

	cp := *m
	if _, exists := ch.byID[m.ID]; !exists {
		ch.order = append(ch.order, m.ID)
	}
	ch.byID[m.ID] = &cp

	for len(ch.order) > c.maxPerChannel {
		evicted := ch.order[0]
		ch.order = ch.order[1:]
		delete(ch.byID, evicted)
		log.Debug("🗑️ Evicted message %s from cache of channel %s", evicted, m.ChannelID)
	}
}

// update merges an edit into a cached message. Edits of uncached messages are dropped
// since update payloads may be partial.
func (c *MessageCacheService) update(m *discordgo.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.channels[m.ChannelID]
	if !ok {
		return
	}
	existing, ok := ch.byID[m.ID]
	if !ok {
		return
	}

	merged := *existing
	if m.Content != "" {
		merged.Content = m.Content
	}
	if m.EditedTimestamp != nil {
		merged.EditedTimestamp = m.EditedTimestamp
	}
	if m.Attachments != nil {
		merged.Attachments = m.Attachments
	}
	if m.Embeds != nil {
		merged.Embeds = m.Embeds
	}
	if m.Mentions != nil {
		merged.Mentions = m.Mentions
	}
	if m.Flags != 0 {
		merged.Flags = m.Flags
	}
	ch.byID[m.ID] = &merged
}

func (c *MessageCacheService) remove(channelID, messageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.channels[channelID]
	if !ok {
		return
	}
	if _, ok := ch.byID[messageID]; !ok {
		return
	}

	delete(ch.byID, messageID)
	for i, id := range ch.order {
		if id == messageID {
			ch.order = append(ch.order[:i], ch.order[i+1:]...)
			break
		}
	}
	if len(ch.order) == 0 {
		delete(c.channels, channelID)
	}
}
