package models

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

func newDiscordMessage(guildID string) *discordgo.Message {
	edited := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	return &discordgo.Message{
		ID:              "1001",
		ChannelID:       "3",
		GuildID:         guildID,
		Content:         "hello world",
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 123000000, time.UTC),
		EditedTimestamp: &edited,
		Type:            discordgo.MessageTypeDefault,
		Author:          &discordgo.User{ID: "42", Username: "ferris", Bot: false},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "501", Filename: "cat.png", ContentType: "image/png", Size: 2048, URL: "https://cdn/cat.png", ProxyURL: "https://proxy/cat.png", Width: 64, Height: 32},
		},
		Embeds: []*discordgo.MessageEmbed{
			{
				Type:        discordgo.EmbedTypeRich,
				Title:       "Release",
				Description: "v1 is out",
				Color:       0xff0000,
				Footer:      &discordgo.MessageEmbedFooter{Text: "footer"},
				Fields:      []*discordgo.MessageEmbedField{{Name: "a", Value: "b", Inline: true}},
			},
		},
		Reactions: []*discordgo.MessageReactions{
			{Count: 2, Me: true, Emoji: &discordgo.Emoji{Name: "👍"}},
			{Count: 1, Emoji: &discordgo.Emoji{ID: "777", Name: "party", Animated: true}},
		},
		Application: &discordgo.MessageApplication{ID: "9000", Name: "app", Description: "an app"},
		Flags:       discordgo.MessageFlags(1<<0 | 1<<4),
	}
}
