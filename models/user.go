package models

import (
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"
)

// User is the author of a normalized message. Roles stay absent until a guild
// membership record has been merged in.
type User struct {
	ID    uint64              `json:"id"`
	Name  string              `json:"name"`
	Bot   bool                `json:"bot"`
	Roles mo.Option[[]uint64] `json:"roles"`
}

func NewUserFromDiscord(u *discordgo.User) (User, error) {
	id, err := ParseSnowflake(u.ID)
	if err != nil {
		return User{}, fmt.Errorf("failed to parse user id: %w", err)
	}

	return User{
		ID:    id,
		Name:  u.Username,
		Bot:   u.Bot,
		Roles: mo.None[[]uint64](),
	}, nil
}

// MergePartialMember fills in the user's roles from a guild membership record,
// keeping the record's role order.
func (u *User) MergePartialMember(member *discordgo.Member) error {
	roles := make([]uint64, 0, len(member.Roles))
	for _, role := range member.Roles {
		id, err := ParseSnowflake(role)
		if err != nil {
			return fmt.Errorf("failed to parse role id: %w", err)
		}
		roles = append(roles, id)
	}

	u.Roles = mo.Some(roles)
	return nil
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		Roles json.RawMessage `json:"roles"`
	}{alias: (*alias)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	roles, err := decodeOption[[]uint64](aux.Roles)
	if err != nil {
		return fmt.Errorf("failed to decode roles: %w", err)
	}
	u.Roles = roles
	return nil
}
