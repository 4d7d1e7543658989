package models

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type MessageFlag uint8

const (
	MessageFlagCrossposted MessageFlag = iota
	MessageFlagIsCrosspost
	MessageFlagSuppressEmbeds
	MessageFlagSourceMessageDeleted
	MessageFlagUrgent
)

var messageFlagNames = [...]string{
	MessageFlagCrossposted:          "Crossposted",
	MessageFlagIsCrosspost:          "IsCrosspost",
	MessageFlagSuppressEmbeds:       "SuppressEmbeds",
	MessageFlagSourceMessageDeleted: "SourceMessageDeleted",
	MessageFlagUrgent:               "Urgent",
}

// Discord bit for each flag, indexed by MessageFlag.
var messageFlagBits = [...]discordgo.MessageFlags{
	MessageFlagCrossposted:          1 << 0,
	MessageFlagIsCrosspost:          1 << 1,
	MessageFlagSuppressEmbeds:       1 << 2,
	MessageFlagSourceMessageDeleted: 1 << 3,
	MessageFlagUrgent:               1 << 4,
}

// MessageFlagsFromDiscord returns the flags whose bits are set, in declaration order.
// Bits outside the known set are ignored.
func MessageFlagsFromDiscord(bits discordgo.MessageFlags) []MessageFlag {
	flags := make([]MessageFlag, 0, len(messageFlagBits))
	for flag, bit := range messageFlagBits {
		if bits&bit != 0 {
			flags = append(flags, MessageFlag(flag))
		}
	}
	return flags
}

func (f MessageFlag) String() string {
	if int(f) < len(messageFlagNames) {
		return messageFlagNames[f]
	}
	return fmt.Sprintf("MessageFlag(%d)", uint8(f))
}

func (f MessageFlag) MarshalText() ([]byte, error) {
	if int(f) >= len(messageFlagNames) {
		return nil, fmt.Errorf("unknown message flag %d", uint8(f))
	}
	return []byte(messageFlagNames[f]), nil
}

func (f *MessageFlag) UnmarshalText(text []byte) error {
	for i, name := range messageFlagNames {
		if name == string(text) {
			*f = MessageFlag(i)
			return nil
		}
	}
	return fmt.Errorf("unknown message flag %q", string(text))
}
