package services

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"
)

// MockMessageCache is a mock implementation of MessageCache
type MockMessageCache struct {
	mock.Mock
}

func (m *MockMessageCache) Update(event any) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockMessageCache) Message(channelID, messageID string) mo.Option[*discordgo.Message] {
	args := m.Called(channelID, messageID)
	return args.Get(0).(mo.Option[*discordgo.Message])
}
