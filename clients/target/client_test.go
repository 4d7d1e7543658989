package target

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/u1f408/accord/core"
	"github.com/u1f408/accord/models"
)

type receivedRequest struct {
	Route  string
	Vars   map[string]string
	Query  string
	Header http.Header
	Body   map[string]any
}

// fakeTarget records every request routed through a mux router shaped like a real target.
type fakeTarget struct {
	mu       sync.Mutex
	requests []receivedRequest
	status   int
}

func newFakeTarget(t *testing.T) (*fakeTarget, *httptest.Server) {
	ft := &fakeTarget{status: http.StatusOK}

	router := mux.NewRouter()
	record := func(route string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))

			ft.mu.Lock()
			ft.requests = append(ft.requests, receivedRequest{
				Route:  route,
				Vars:   mux.Vars(r),
				Query:  r.URL.RawQuery,
				Header: r.Header.Clone(),
				Body:   body,
			})
			status := ft.status
			ft.mu.Unlock()

			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"status":"received"}`))
		}
	}
	router.HandleFunc("/server/{server}/channel/{channel}/message", record("server")).Methods("POST")
	router.HandleFunc("/direct/{channel}/message", record("direct")).Methods("POST")
	router.PathPrefix("/command/").HandlerFunc(record("command")).Methods("POST")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return ft, server
}

func (ft *fakeTarget) setStatus(status int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.status = status
}

func (ft *fakeTarget) Requests() []receivedRequest {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	out := make([]receivedRequest, len(ft.requests))
	copy(out, ft.requests)
	return out
}

func testServerMessage() models.ServerMessage {
	return models.ServerMessage{
		ID:               1,
		ServerID:         7,
		ChannelID:        3,
		Author:           models.User{ID: 42, Name: "ferris", Roles: mo.Some([]uint64{5})},
		TimestampCreated: "2024-05-01T12:00:00Z",
		Content:          "!echo hello",
		Attachments:      []models.Attachment{},
		Embeds:           []models.Embed{},
		Reactions:        []models.Reaction{},
		Flags:            []models.MessageFlag{},
	}
}

func TestTargetClient_SendServerMessage(t *testing.T) {
	ft, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL)

	err := client.Send(context.Background(), testServerMessage())
	require.NoError(t, err)

	reqs := ft.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "server", reqs[0].Route)
	assert.Equal(t, map[string]string{"server": "7", "channel": "3"}, reqs[0].Vars)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "accord", reqs[0].Header.Get("User-Agent"))
	assert.True(t, core.IsValidID(reqs[0].Header.Get(DeliveryHeader)))
	assert.Equal(t, "!echo hello", reqs[0].Body["content"])
	assert.Equal(t, float64(7), reqs[0].Body["server_id"])
}

func TestTargetClient_SendDirectMessage(t *testing.T) {
	ft, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL+"/")

	msg := models.DirectMessage{ID: 2, ChannelID: 12, Content: "hi"}
	require.NoError(t, client.Send(context.Background(), msg))

	reqs := ft.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "direct", reqs[0].Route)
	assert.Equal(t, "12", reqs[0].Vars["channel"])
	assert.Equal(t, "hi", reqs[0].Body["content"])
	assert.NotContains(t, reqs[0].Body, "server_id")
}

func TestTargetClient_SendCommand(t *testing.T) {
	ft, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL)

	cmd := models.NewServerCommand([]string{"hello"}, testServerMessage())
	require.NoError(t, client.Send(context.Background(), cmd))

	reqs := ft.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "command", reqs[0].Route)
	assert.Equal(t, "context=server", reqs[0].Query)
	assert.Equal(t, []string{"server"}, reqs[0].Header.Values(models.ContextHeader))
	assert.Equal(t, []any{"hello"}, reqs[0].Body["command"])
	assert.Equal(t, "server", reqs[0].Body["context"])

	message, ok := reqs[0].Body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), message["server_id"])
}

func TestTargetClient_NonSuccessStatus(t *testing.T) {
	ft, server := newFakeTarget(t)
	ft.setStatus(http.StatusInternalServerError)
	client := NewTargetClient(server.Client(), server.URL)

	err := client.Send(context.Background(), models.DirectMessage{ChannelID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDispatchFailed)
	assert.False(t, core.IsInvariantViolation(err))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "received")
}

func TestTargetClient_UnknownRoute(t *testing.T) {
	_, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL+"/nowhere")

	err := client.Send(context.Background(), models.DirectMessage{ChannelID: 1})
	assert.ErrorIs(t, err, core.ErrDispatchFailed)
	assert.Contains(t, err.Error(), "status 404")
}

func TestTargetClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewTargetClient(&http.Client{Timeout: time.Second}, url)
	err := client.Send(context.Background(), models.DirectMessage{ChannelID: 1})
	assert.ErrorIs(t, err, core.ErrDispatchFailed)
}

func TestTargetClient_ContextCancelled(t *testing.T) {
	_, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Send(ctx, models.DirectMessage{ChannelID: 1})
	assert.ErrorIs(t, err, core.ErrDispatchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

type headerPayload struct {
	Value   string `json:"value"`
	headers []models.Header
}

func (p headerPayload) URL() string              { return "/direct/1/message" }
func (p headerPayload) Headers() []models.Header { return p.headers }
func (p headerPayload) PayloadType() string      { return "header_payload" }

type unencodablePayload struct {
	Ch chan int `json:"ch"`
}

func (p unencodablePayload) URL() string              { return "/direct/1/message" }
func (p unencodablePayload) Headers() []models.Header { return nil }
func (p unencodablePayload) PayloadType() string      { return "unencodable" }

func TestTargetClient_PayloadHeaders(t *testing.T) {
	ft, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL)

	payload := headerPayload{headers: []models.Header{
		{Name: "X-Trace", Values: []string{"a", "b"}},
		{Name: "User-Agent", Values: []string{"custom"}},
	}}
	require.NoError(t, client.Send(context.Background(), payload))

	reqs := ft.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, []string{"a", "b"}, reqs[0].Header.Values("X-Trace"))
	assert.Equal(t, "custom", reqs[0].Header.Get("User-Agent"))
}

func TestTargetClient_InvalidPayloads(t *testing.T) {
	ft, server := newFakeTarget(t)
	client := NewTargetClient(server.Client(), server.URL)

	tests := []struct {
		name    string
		payload models.Payload
	}{
		{name: "invalid header value", payload: headerPayload{headers: []models.Header{{Name: "X-Bad", Values: []string{"line\nbreak"}}}}},
		{name: "invalid header name", payload: headerPayload{headers: []models.Header{{Name: "Bad Name", Values: []string{"v"}}}}},
		{name: "unencodable body", payload: unencodablePayload{Ch: make(chan int)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Send(context.Background(), tt.payload)
			assert.ErrorIs(t, err, core.ErrInvalidPayload)
			assert.True(t, core.IsInvariantViolation(err))
		})
	}

	assert.Empty(t, ft.Requests(), "no request is issued for invalid payloads")
}
