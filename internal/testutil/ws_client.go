package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/smikis/how-well-you-know/internal/websocket"
)

// WSClient is a test WebSocket client that collects server messages
type WSClient struct {
	t        *testing.T
	conn     *gorillaws.Conn
	messages chan *websocket.Message
	closed   chan struct{}
	once     sync.Once
}

// NewWSClient connects to the given ws:// URL and starts reading
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}

	c := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 64),
		closed:   make(chan struct{}),
	}
	go c.readPump()

	t.Cleanup(c.Close)
	return c
}

func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.t.Logf("ws client: unparseable message: %v", err)
			continue
		}
		select {
		case c.messages <- &msg:
		case <-c.closed:
			return
		}
	}
}

// Close shuts the connection down
func (c *WSClient) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

func (c *WSClient) send(msgType websocket.MessageType, payload interface{}) {
	c.t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("failed to marshal ws payload: %v", err)
	}
	msg := websocket.Message{
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("failed to write ws message: %v", err)
	}
}

// JoinGame subscribes the client to a game's event stream
func (c *WSClient) JoinGame(gameID string) {
	c.t.Helper()
	c.send(websocket.MessageTypeJoinGame, websocket.JoinGamePayload{GameID: gameID})
}

// LeaveGame unsubscribes the client from a game's event stream
func (c *WSClient) LeaveGame(gameID string) {
	c.t.Helper()
	c.send(websocket.MessageTypeLeaveGame, websocket.JoinGamePayload{GameID: gameID})
}

// ExpectMessage waits for a message of the given type, failing on timeout.
// Messages of other types received in the meantime are discarded.
func (c *WSClient) ExpectMessage(msgType websocket.MessageType, timeout time.Duration) *websocket.Message {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				c.t.Fatalf("connection closed while waiting for %s", msgType)
				return nil
			}
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			c.t.Fatalf("timed out waiting for message type %s", msgType)
			return nil
		}
	}
}

// ExpectEvent waits for a message of the given type and decodes its payload
func (c *WSClient) ExpectEvent(msgType websocket.MessageType, timeout time.Duration) *websocket.GameEventPayload {
	c.t.Helper()

	msg := c.ExpectMessage(msgType, timeout)
	var payload websocket.GameEventPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		c.t.Fatalf("failed to decode %s payload: %v", msgType, err)
	}
	return &payload
}

// ExpectNoMessage asserts that nothing arrives within the window
func (c *WSClient) ExpectNoMessage(timeout time.Duration) {
	c.t.Helper()

	select {
	case msg, ok := <-c.messages:
		if ok {
			c.t.Fatalf("expected no message, got %s", msg.Type)
		}
	case <-time.After(timeout):
	}
}

// Drain discards any buffered messages
func (c *WSClient) Drain() {
	for {
		select {
		case <-c.messages:
		default:
			return
		}
	}
}
