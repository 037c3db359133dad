package services

import (
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub fans poll events out to clients watching a join code: ready tallies as
// participants join, and lifecycle events when the facilitator initiates or
// reopens a poll.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	pollService *PollService
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	pollCode string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(pollService *PollService) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		pollService: pollService,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %s registered for poll %s - total clients: %d", client.id, client.pollCode, h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Printf("Client %s unregistered from poll %s - total clients: %d", client.id, client.pollCode, h.clientCount())
		}
	}
}

// BroadcastToPoll sends a typed message to every client watching code.
func (h *Hub) BroadcastToPoll(code string, messageType string, payload interface{}) {
	message := Message{
		Type:    messageType,
		Payload: payload,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if strings.EqualFold(client.pollCode, code) {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(h.clients, client)
			}
		}
	}
	h.mutex.Unlock()
}

// BroadcastReadyUpdate pushes the current ready tally for a poll.
func (h *Hub) BroadcastReadyUpdate(state *PollState) {
	h.BroadcastToPoll(state.Code, "ready_update", map[string]interface{}{
		"code":        state.Code,
		"slot":        state.Slot,
		"ready_count": state.ReadyCount,
		"initiated":   state.Initiated,
	})
}

// WatcherCount reports how many clients are watching a code.
func (h *Hub) WatcherCount(code string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for client := range h.clients {
		if strings.EqualFold(client.pollCode, code) {
			count++
		}
	}
	return count
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) RegisterClient(conn *websocket.Conn, pollCode string) *Client {
	client := &Client{
		hub:      h,
		id:       uuid.NewString(),
		socket:   conn,
		send:     make(chan []byte, 256),
		pollCode: pollCode,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (h *Hub) sendPollState(client *Client) {
	if h.pollService == nil {
		return
	}

	state, err := h.pollService.GetPollState(client.pollCode)
	if err != nil {
		log.Printf("Error getting poll state for client %s: %v", client.id, err)
		return
	}

	message := Message{
		Type:    "poll_state",
		Payload: state,
	}
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling poll state message: %v", err)
		return
	}

	select {
	case client.send <- data:
	default:
		close(client.send)
		h.mutex.Lock()
		delete(h.clients, client)
		h.mutex.Unlock()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		response := Message{
			Type:    "pong",
			Payload: "pong",
		}
		data, _ := json.Marshal(response)
		c.send <- data

	case "request_poll_state":
		c.hub.sendPollState(c)

	default:
		log.Printf("Unknown message type: %s from client %s watching poll %s", msg.Type, c.id, c.pollCode)
	}
}
