package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct{}

func (mockConn) ReadMessage() (int, []byte, error)         { return 0, nil, io.EOF }
func (mockConn) WriteMessage(messageType int, data []byte) error { return nil }
func (mockConn) SetReadLimit(limit int64)                  {}
func (mockConn) SetReadDeadline(t time.Time) error         { return nil }
func (mockConn) SetWriteDeadline(t time.Time) error        { return nil }
func (mockConn) SetPongHandler(h func(string) error)       {}
func (mockConn) RemoteAddr() string                        { return "127.0.0.1:9999" }
func (mockConn) Close() error                              { return nil }

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClientWithConnection(hub, mockConn{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() > 0
	}, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubRegisterSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	msg := receive(t, client)
	assert.Equal(t, TypeConnection, msg["type"])
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubBroadcastJobProgress(t *testing.T) {
	hub := newTestHub(t)
	a := newTestClient(t, hub)
	b := newTestClient(t, hub)
	receive(t, a) // connection messages
	receive(t, b)

	hub.BroadcastJobProgress("job-1", "001", 1, 2)

	for _, client := range []*Client{a, b} {
		msg := receive(t, client)
		assert.Equal(t, TypeJobProgress, msg["type"])
		data := msg["data"].(map[string]interface{})
		assert.Equal(t, "job-1", data["job_id"])
		assert.Equal(t, "001", data["store_id"])
		assert.Equal(t, 50.0, data["percentage"])
	}
}

func TestHubBroadcastJobLifecycle(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)
	receive(t, client)

	hub.BroadcastJobStatus("job-1", "running")
	msg := receive(t, client)
	assert.Equal(t, TypeJobStatus, msg["type"])

	hub.BroadcastJobComplete("job-1", 3)
	msg = receive(t, client)
	assert.Equal(t, TypeJobComplete, msg["type"])
	assert.Equal(t, 3.0, msg["data"].(map[string]interface{})["stores"])

	hub.BroadcastJobError("job-2", "calculation failed")
	msg = receive(t, client)
	assert.Equal(t, TypeJobError, msg["type"])
}

func TestHubUnregister(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The send channel is closed on unregister
	_, open := <-client.send
	for open {
		_, open = <-client.send
	}
}

func TestHubStopIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	hub.Start()
	hub.Stop()
	hub.Stop()
	assert.Zero(t, hub.ClientCount())
}
