package services

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// MessageCache is updated with every gateway event before the event is dispatched.
type MessageCache interface {
	Update(event any) error
	Message(channelID, messageID string) mo.Option[*discordgo.Message]
}
