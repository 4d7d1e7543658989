package models

// Header is an HTTP header a payload asks to be sent with it.
type Header struct {
	Name   string
	Values []string
}

// Payload is anything the target client can POST: its JSON encoding is the body and
// URL is the path relative to the target base address.
type Payload interface {
	URL() string
	Headers() []Header
	// PayloadType names the payload in logs.
	PayloadType() string
}
