// Package feed streams newly issued tickets to registration desk screens
// over websockets.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/urcet/yourfest-api/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

type TicketIssued struct {
	Type            string    `json:"type"`
	TicketID        string    `json:"ticketId"`
	ParticipantName string    `json:"participantName"`
	Institution     string    `json:"college"`
	EventIDs        []string  `json:"eventIds"`
	FinalAmount     int       `json:"finalAmount"`
	IssuedAt        time.Time `json:"issuedAt"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	clients      map[*client]struct{}
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *client
	unregister   chan *client
	done         chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMutex.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.clientsMutex.Unlock()
			return
		case c := <-h.register:
			h.clientsMutex.Lock()
			h.clients[c] = struct{}{}
			h.clientsMutex.Unlock()
			zap.L().Debug("desk screen connected", zap.Int("clients", h.clientCount()))
		case c := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.clientsMutex.Unlock()
			zap.L().Debug("desk screen disconnected", zap.Int("clients", h.clientCount()))
		case message := <-h.broadcast:
			h.clientsMutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.clientsMutex.Unlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	return len(h.clients)
}

// PublishTicket announces a new registration. It drops the event rather
// than block when the hub is backed up.
func (h *Hub) PublishTicket(reg domain.Registration) {
	message, err := json.Marshal(TicketIssued{
		Type:            "ticket.issued",
		TicketID:        reg.TicketID,
		ParticipantName: reg.Name,
		Institution:     reg.Institution,
		EventIDs:        reg.EventIDs,
		FinalAmount:     reg.Pricing.FinalAmount,
		IssuedAt:        reg.CreatedAt,
	})
	if err != nil {
		zap.L().Error("json.Marshal", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- message:
	default:
		zap.L().Warn("desk feed is backed up, dropping event", zap.String("ticket_id", reg.TicketID))
	}
}

// Serve attaches an upgraded connection to the hub. The hub must be running.
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the peer going away; desk screens never send.
func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Warn("desk feed connection closed", zap.Error(err))
			}
			return
		}
	}
}
