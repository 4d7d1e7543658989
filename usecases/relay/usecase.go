package relay

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/u1f408/accord/clients"
	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/core/log"
	"github.com/u1f408/accord/models"
	"github.com/u1f408/accord/utils"
)

// RelayUseCase normalizes platform messages and forwards them to the target,
// routing messages that match the command pattern to the command endpoints.
type RelayUseCase struct {
	targetClient   clients.TargetClient
	commandPattern *regexp.Regexp
}

// NewRelayUseCase creates a new instance of RelayUseCase. A nil commandPattern
// disables command recognition.
func NewRelayUseCase(targetClient clients.TargetClient, commandPattern *regexp.Regexp) *RelayUseCase {
	return &RelayUseCase{
		targetClient:   targetClient,
		commandPattern: commandPattern,
	}
}

func (u *RelayUseCase) RelayServerMessage(ctx context.Context, m *discordgo.Message) error {
	msg, err := models.NewServerMessage(m)
	if err != nil {
		return u.conversionFailed("server", m, err)
	}

	if tokens, ok := utils.ParseCommand(m.Content, u.commandPattern).Get(); ok {
		log.Debug("🔍 Message %s matched command pattern with %d tokens", m.ID, len(tokens))
		return u.send(ctx, models.NewServerCommand(tokens, msg))
	}
	return u.send(ctx, msg)
}

func (u *RelayUseCase) RelayDirectMessage(ctx context.Context, m *discordgo.Message) error {
	msg, err := models.NewDirectMessage(m)
	if err != nil {
		return u.conversionFailed("direct", m, err)
	}

	if tokens, ok := utils.ParseCommand(m.Content, u.commandPattern).Get(); ok {
		log.Debug("🔍 Message %s matched command pattern with %d tokens", m.ID, len(tokens))
		return u.send(ctx, models.NewDirectCommand(tokens, msg))
	}
	return u.send(ctx, msg)
}

func (u *RelayUseCase) send(ctx context.Context, payload models.Payload) error {
	if err := u.targetClient.Send(ctx, payload); err != nil {
		return fmt.Errorf("failed to relay %s: %w", payload.PayloadType(), err)
	}
	return nil
}

func (u *RelayUseCase) conversionFailed(class string, m *discordgo.Message, err error) error {
	if core.IsInvariantViolation(err) {
		log.Error("❌ Invariant violated while converting %s message %s, dropping it: %v", class, m.ID, err)
	}
	return fmt.Errorf("failed to convert %s message %s: %w", class, m.ID, err)
}
