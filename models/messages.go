package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/mo"

	"github.com/u1f408/accord/core"
)

// ServerMessage is a message posted in a guild channel.
type ServerMessage struct {
	ID        uint64 `json:"id"`
	ServerID  uint64 `json:"server_id"`
	ChannelID uint64 `json:"channel_id"`
	Author    User   `json:"author"`

	TimestampCreated string            `json:"timestamp_created"`
	TimestampEdited  mo.Option[string] `json:"timestamp_edited"`

	Kind    discordgo.MessageType `json:"kind"`
	Content string                `json:"content"`

	Attachments []Attachment `json:"attachments"`
	Embeds      []Embed      `json:"embeds"`
	Reactions   []Reaction   `json:"reactions"`

	Application mo.Option[Application] `json:"application"`
	Flags       []MessageFlag          `json:"flags"`
}

// DirectMessage is a message posted outside of any guild.
type DirectMessage struct {
	ID        uint64 `json:"id"`
	ChannelID uint64 `json:"channel_id"`
	Author    User   `json:"author"`

	TimestampCreated string            `json:"timestamp_created"`
	TimestampEdited  mo.Option[string] `json:"timestamp_edited"`

	Kind    discordgo.MessageType `json:"kind"`
	Content string                `json:"content"`

	Attachments []Attachment `json:"attachments"`
	Embeds      []Embed      `json:"embeds"`
	Reactions   []Reaction   `json:"reactions"`

	Application mo.Option[Application] `json:"application"`
	Flags       []MessageFlag          `json:"flags"`
}

// NewServerMessage converts a guild message. Callers must classify the message first:
// a message without a guild id yields core.ErrMissingServerID.
func NewServerMessage(m *discordgo.Message) (ServerMessage, error) {
	if m.GuildID == "" {
		return ServerMessage{}, fmt.Errorf("message %s: %w", m.ID, core.ErrMissingServerID)
	}
	serverID, err := ParseSnowflake(m.GuildID)
	if err != nil {
		return ServerMessage{}, fmt.Errorf("failed to parse guild id of message %s: %w", m.ID, err)
	}

	c, err := convertCommon(m)
	if err != nil {
		return ServerMessage{}, err
	}

	return ServerMessage{
		ID:               c.id,
		ServerID:         serverID,
		ChannelID:        c.channelID,
		Author:           c.author,
		TimestampCreated: c.created,
		TimestampEdited:  c.edited,
		Kind:             m.Type,
		Content:          m.Content,
		Attachments:      c.attachments,
		Embeds:           c.embeds,
		Reactions:        c.reactions,
		Application:      c.application,
		Flags:            c.flags,
	}, nil
}

func NewDirectMessage(m *discordgo.Message) (DirectMessage, error) {
	c, err := convertCommon(m)
	if err != nil {
		return DirectMessage{}, err
	}

	return DirectMessage{
		ID:               c.id,
		ChannelID:        c.channelID,
		Author:           c.author,
		TimestampCreated: c.created,
		TimestampEdited:  c.edited,
		Kind:             m.Type,
		Content:          m.Content,
		Attachments:      c.attachments,
		Embeds:           c.embeds,
		Reactions:        c.reactions,
		Application:      c.application,
		Flags:            c.flags,
	}, nil
}

func (m ServerMessage) URL() string {
	return fmt.Sprintf("/server/%d/channel/%d/message", m.ServerID, m.ChannelID)
}

func (m ServerMessage) Headers() []Header { return nil }

func (m ServerMessage) PayloadType() string { return "server_message" }

func (m DirectMessage) URL() string {
	return fmt.Sprintf("/direct/%d/message", m.ChannelID)
}

func (m DirectMessage) Headers() []Header { return nil }

func (m DirectMessage) PayloadType() string { return "direct_message" }

// decodeOptionalFields decodes the optional message fields held back as raw JSON, so
// that null maps to None.
func decodeOptionalFields(edited, application json.RawMessage) (mo.Option[string], mo.Option[Application], error) {
	editedOpt, err := decodeOption[string](edited)
	if err != nil {
		return editedOpt, mo.None[Application](), fmt.Errorf("failed to decode timestamp_edited: %w", err)
	}
	applicationOpt, err := decodeOption[Application](application)
	if err != nil {
		return editedOpt, applicationOpt, fmt.Errorf("failed to decode application: %w", err)
	}
	return editedOpt, applicationOpt, nil
}

func (m *ServerMessage) UnmarshalJSON(data []byte) error {
	type alias ServerMessage
	aux := struct {
		*alias
		TimestampEdited json.RawMessage `json:"timestamp_edited"`
		Application     json.RawMessage `json:"application"`
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	m.TimestampEdited, m.Application, err = decodeOptionalFields(aux.TimestampEdited, aux.Application)
	return err
}

func (m *DirectMessage) UnmarshalJSON(data []byte) error {
	type alias DirectMessage
	aux := struct {
		*alias
		TimestampEdited json.RawMessage `json:"timestamp_edited"`
		Application     json.RawMessage `json:"application"`
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	m.TimestampEdited, m.Application, err = decodeOptionalFields(aux.TimestampEdited, aux.Application)
	return err
}

// Fields shared by both message shapes.
type commonFields struct {
	id, channelID uint64
	author        User
	created       string
	edited        mo.Option[string]
	attachments   []Attachment
	embeds        []Embed
	reactions     []Reaction
	application   mo.Option[Application]
	flags         []MessageFlag
}

func convertCommon(m *discordgo.Message) (commonFields, error) {
	var c commonFields
	var err error

	if c.id, err = ParseSnowflake(m.ID); err != nil {
		return c, fmt.Errorf("failed to parse message id: %w", err)
	}
	if c.channelID, err = ParseSnowflake(m.ChannelID); err != nil {
		return c, fmt.Errorf("failed to parse channel id of message %s: %w", m.ID, err)
	}

	if m.Author == nil {
		return c, fmt.Errorf("message %s has no author: %w", m.ID, core.ErrInvalidPayload)
	}
	if c.author, err = NewUserFromDiscord(m.Author); err != nil {
		return c, fmt.Errorf("failed to convert author of message %s: %w", m.ID, err)
	}
	if m.Member != nil {
		if err = c.author.MergePartialMember(m.Member); err != nil {
			return c, fmt.Errorf("failed to merge member of message %s: %w", m.ID, err)
		}
	}

	c.created = FormatTimestamp(m.Timestamp)
	c.edited = mo.None[string]()
	if m.EditedTimestamp != nil {
		c.edited = mo.Some(FormatTimestamp(*m.EditedTimestamp))
	}

	if c.attachments, err = convertAttachments(m.Attachments); err != nil {
		return c, fmt.Errorf("message %s: %w", m.ID, err)
	}
	c.embeds = convertEmbeds(m.Embeds)
	if c.reactions, err = convertReactions(m.Reactions); err != nil {
		return c, fmt.Errorf("message %s: %w", m.ID, err)
	}

	c.application = mo.None[Application]()
	if m.Application != nil {
		app, err := convertApplication(m.Application)
		if err != nil {
			return c, fmt.Errorf("message %s: %w", m.ID, err)
		}
		c.application = mo.Some(app)
	}

	c.flags = MessageFlagsFromDiscord(m.Flags)
	return c, nil
}

// FormatTimestamp renders a Discord timestamp as RFC 3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
