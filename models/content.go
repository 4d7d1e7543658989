package models

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// The types in this file are value copies of the Discord objects a message carries.
// Nothing here aliases memory owned by the gateway event.

type Attachment struct {
	ID          uint64 `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
	ProxyURL    string `json:"proxy_url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

type EmbedFooter struct {
	Text         string `json:"text"`
	IconURL      string `json:"icon_url,omitempty"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty"`
}

type EmbedMedia struct {
	URL      string `json:"url"`
	ProxyURL string `json:"proxy_url,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

type EmbedProvider struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

type EmbedAuthor struct {
	Name         string `json:"name"`
	URL          string `json:"url,omitempty"`
	IconURL      string `json:"icon_url,omitempty"`
	ProxyIconURL string `json:"proxy_icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Embed struct {
	Kind        string         `json:"kind"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Color       int            `json:"color,omitempty"`
	Footer      *EmbedFooter   `json:"footer,omitempty"`
	Image       *EmbedMedia    `json:"image,omitempty"`
	Thumbnail   *EmbedMedia    `json:"thumbnail,omitempty"`
	Video       *EmbedMedia    `json:"video,omitempty"`
	Provider    *EmbedProvider `json:"provider,omitempty"`
	Author      *EmbedAuthor   `json:"author,omitempty"`
	Fields      []EmbedField   `json:"fields"`
}

type Emoji struct {
	ID       uint64 `json:"id,omitempty"`
	Name     string `json:"name"`
	Animated bool   `json:"animated"`
}

type Reaction struct {
	Count int   `json:"count"`
	Me    bool  `json:"me"`
	Emoji Emoji `json:"emoji"`
}

type Application struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

func convertAttachments(in []*discordgo.MessageAttachment) ([]Attachment, error) {
	out := make([]Attachment, 0, len(in))
	for _, a := range in {
		if a == nil {
			continue
		}
		id, err := ParseSnowflake(a.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse attachment id: %w", err)
		}
		out = append(out, Attachment{
			ID:          id,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			URL:         a.URL,
			ProxyURL:    a.ProxyURL,
			Width:       a.Width,
			Height:      a.Height,
		})
	}
	return out, nil
}

func convertEmbeds(in []*discordgo.MessageEmbed) []Embed {
	out := make([]Embed, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		embed := Embed{
			Kind:        string(e.Type),
			Title:       e.Title,
			Description: e.Description,
			URL:         e.URL,
			Timestamp:   e.Timestamp,
			Color:       e.Color,
			Fields:      make([]EmbedField, 0, len(e.Fields)),
		}
		if e.Footer != nil {
			embed.Footer = &EmbedFooter{Text: e.Footer.Text, IconURL: e.Footer.IconURL, ProxyIconURL: e.Footer.ProxyIconURL}
		}
		if e.Image != nil {
			embed.Image = &EmbedMedia{URL: e.Image.URL, ProxyURL: e.Image.ProxyURL, Width: e.Image.Width, Height: e.Image.Height}
		}
		if e.Thumbnail != nil {
			embed.Thumbnail = &EmbedMedia{URL: e.Thumbnail.URL, ProxyURL: e.Thumbnail.ProxyURL, Width: e.Thumbnail.Width, Height: e.Thumbnail.Height}
		}
		if e.Video != nil {
			embed.Video = &EmbedMedia{URL: e.Video.URL, Width: e.Video.Width, Height: e.Video.Height}
		}
		if e.Provider != nil {
			embed.Provider = &EmbedProvider{Name: e.Provider.Name, URL: e.Provider.URL}
		}
		if e.Author != nil {
			embed.Author = &EmbedAuthor{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.IconURL, ProxyIconURL: e.Author.ProxyIconURL}
		}
		for _, f := range e.Fields {
			if f == nil {
				continue
			}
			embed.Fields = append(embed.Fields, EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		out = append(out, embed)
	}
	return out
}

func convertReactions(in []*discordgo.MessageReactions) ([]Reaction, error) {
	out := make([]Reaction, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		reaction := Reaction{Count: r.Count, Me: r.Me}
		if r.Emoji != nil {
			// unicode emoji have no id
			id, err := parseOptionalSnowflake(r.Emoji.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to parse emoji id: %w", err)
			}
			reaction.Emoji = Emoji{ID: id, Name: r.Emoji.Name, Animated: r.Emoji.Animated}
		}
		out = append(out, reaction)
	}
	return out, nil
}

func convertApplication(a *discordgo.MessageApplication) (Application, error) {
	id, err := ParseSnowflake(a.ID)
	if err != nil {
		return Application{}, fmt.Errorf("failed to parse application id: %w", err)
	}
	return Application{
		ID:          id,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		CoverImage:  a.CoverImage,
	}, nil
}
