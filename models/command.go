package models

import (
	"net/url"
	"strings"
)

type CommandContext string

const (
	CommandContextServer CommandContext = "server"
	CommandContextDirect CommandContext = "direct"
)

// ContextHeader carries the command context alongside the query parameter.
const ContextHeader = "X-Accord-Context"

// Command wraps a message whose content matched the command pattern.
type Command[M Payload] struct {
	Command []string       `json:"command"`
	Context CommandContext `json:"context"`
	Message M              `json:"message"`
}

func NewServerCommand(tokens []string, msg ServerMessage) Command[ServerMessage] {
	return Command[ServerMessage]{Command: tokens, Context: CommandContextServer, Message: msg}
}

func NewDirectCommand(tokens []string, msg DirectMessage) Command[DirectMessage] {
	return Command[DirectMessage]{Command: tokens, Context: CommandContextDirect, Message: msg}
}

// URL routes on the command tokens only; the wrapped message's own URL is ignored.
// Each token is path-escaped into exactly one segment, so a capture containing "/"
// stays a single segment ("c/d" becomes "c%2Fd").
func (c Command[M]) URL() string {
	escaped := make([]string, len(c.Command))
	for i, token := range c.Command {
		escaped[i] = url.PathEscape(token)
	}
	return "/command/" + strings.Join(escaped, "/") + "?context=" + url.QueryEscape(string(c.Context))
}

// Headers repeats the context as X-Accord-Context so targets can route on a header
// without parsing the query string.
func (c Command[M]) Headers() []Header {
	return []Header{{Name: ContextHeader, Values: []string{string(c.Context)}}}
}

func (c Command[M]) PayloadType() string {
	return "command(" + c.Message.PayloadType() + ")"
}
