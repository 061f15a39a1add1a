package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/domain"
	"github.com/smikis/how-well-you-know/internal/repository"
)

// Hub fans game events out to WebSocket subscribers. It owns no game
// state: the aggregate is the single source of truth and the hub only
// relays occurrences the service hands it after a save.
type Hub struct {
	clients       map[*Client]bool
	subscriptions map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	joinGame   chan *joinGameRequest
	stop       chan struct{}
	done       chan struct{}
	stopped    bool

	gameRepo repository.GameRepository
	mu       sync.RWMutex
}

type joinGameRequest struct {
	client *Client
	gameID uuid.UUID
}

func NewHub(gameRepo repository.GameRepository) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[uuid.UUID]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		joinGame:      make(chan *joinGameRequest),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
		gameRepo:      gameRepo,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					h.dropSubscriptionLocked(client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case req := <-h.joinGame:
			h.handleJoinGame(req)
		}
	}
}

// Stop gracefully shuts down the hub and disconnects all clients.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Notify implements service.Notifier: one wire message per domain event,
// delivered to every subscriber of the event's game.
func (h *Hub) Notify(events []domain.Event) {
	for _, event := range events {
		msg := NewEventMessage(event)
		if msg == nil {
			continue
		}
		h.broadcast(event.GameID, msg)
	}
}

func (h *Hub) broadcast(gameID uuid.UUID, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscriptions[gameID] {
		client.Send(msg)
	}
}

// handleJoinGame validates the game exists before subscribing the
// client. Spectators are allowed: event payloads never carry answers.
func (h *Hub) handleJoinGame(req *joinGameRequest) {
	if _, err := h.gameRepo.GetByID(context.Background(), req.gameID); err != nil {
		log.Printf("ERROR [websocket.Hub] join rejected for game %s: %v", req.gameID, err)
		req.client.sendError("GAME_NOT_FOUND", "Game not found")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}

	h.dropSubscriptionLocked(req.client)
	if h.subscriptions[req.gameID] == nil {
		h.subscriptions[req.gameID] = make(map[*Client]bool)
	}
	h.subscriptions[req.gameID][req.client] = true
	req.client.gameID = req.gameID

	msg, err := NewMessage(MessageTypeJoinedGame, JoinedGamePayload{GameID: req.gameID.String()})
	if err == nil {
		req.client.Send(msg)
	}
}

// dropSubscriptionLocked removes the client from its current game
// channel, if any. Caller holds h.mu.
func (h *Hub) dropSubscriptionLocked(client *Client) {
	if client.gameID == uuid.Nil {
		return
	}
	if subs, ok := h.subscriptions[client.gameID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.gameID)
		}
	}
	client.gameID = uuid.Nil
}
