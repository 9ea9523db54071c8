package server

import (
	"encoding/json"
	"net/http"

	"confluence-engine/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *FastAPIServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.clientCount.Store(int64(len(s.clients)))
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				client.send <- s.latestState
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.clientCount.Store(int64(len(s.clients)))
				close(client.send)
			}

		case message := <-s.broadcast:
			// Update state and broadcast
			s.stateMutex.Lock()
			s.latestState = message
			s.stateMutex.Unlock()

			for client := range s.clients {
				// Honor each client's symbol subscription.
				if message.Scan != nil && !client.wants(message.Scan.Symbol) {
					continue
				}
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					// This ensures reliable 24/7 operation by pruning dead/slow consumers
					delete(s.clients, client)
					s.clientCount.Store(int64(len(s.clients)))
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Broadcast queues a payload for all subscribed clients.
func (s *FastAPIServer) Broadcast(message *models.MLatestData) {
	// Non-blocking: with a 256 slot buffer a full queue means the hub is
	// wedged, and dropping one scan beats blocking the API handler.
	select {
	case s.broadcast <- message:
	default:
		s.Logger.Warning("Broadcast queue full, dropping scan payload")
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *FastAPIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	client.setSymbols(cmd.Symbols)

	// Replay the latest state so a new subscriber is not blank until the
	// next scan.
	s.stateMutex.RLock()
	state := s.latestState
	s.stateMutex.RUnlock()

	if state.Scan != nil && !client.wants(state.Scan.Symbol) {
		return
	}
	select {
	case client.send <- state:
	default:
		// Client buffer full; the hub loop prunes slow consumers.
	}
}
