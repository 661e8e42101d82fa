package sink

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"audarb/internal/metrics"
	"audarb/internal/scanner"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536

	// clientSendBuffer bounds how many unread messages a slow dashboard
	// client may accumulate before it is dropped. Kept much smaller than a
	// trading hub's client buffer: opportunities are a broadcast feed, not
	// an execution channel, so a client that can't keep up is better cut
	// loose than allowed to back-pressure the dispatcher.
	clientSendBuffer = 100
)

// messageType labels the two kinds of broadcast frames the dashboard
// receives; dashboard code switches on this field.
type messageType string

const (
	typeDirectOpportunity messageType = "directOpportunity"
	typeTriOpportunity    messageType = "triOpportunity"
)

type directOpportunityMessage struct {
	Type      messageType         `json:"type"`
	Timestamp time.Time           `json:"timestamp"`
	Data      scanner.Opportunity `json:"data"`
}

type triOpportunityMessage struct {
	Type      messageType           `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Data      scanner.TriOpportunity `json:"data"`
}

// wsClient is one subscriber's connection and its bounded outbound queue.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Broadcaster fans every emitted opportunity out to every connected
// dashboard WebSocket client. A client whose send buffer is full is
// dropped rather than allowed to stall the broadcast for everyone else.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*wsClient]bool

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte

	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewBroadcaster builds a Broadcaster and starts its run loop in a new
// goroutine; call Close to stop it.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Broadcaster{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, clientSendBuffer),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
	go b.run()
	return b
}

func (b *Broadcaster) run() {
	for {
		select {
		case c, ok := <-b.register:
			if !ok {
				return
			}
			b.mu.Lock()
			b.clients[c] = true
			n := len(b.clients)
			b.mu.Unlock()
			metrics.SetDashboardClients(n)

		case c := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[c]; ok {
				delete(b.clients, c)
				close(c.send)
			}
			n := len(b.clients)
			b.mu.Unlock()
			metrics.SetDashboardClients(n)

		case msg := <-b.broadcast:
			b.mu.RLock()
			clients := make([]*wsClient, 0, len(b.clients))
			for c := range b.clients {
				clients = append(clients, c)
			}
			b.mu.RUnlock()

			var slow []*wsClient
			for _, c := range clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			if len(slow) > 0 {
				b.mu.Lock()
				for _, c := range slow {
					if _, ok := b.clients[c]; ok {
						delete(b.clients, c)
						close(c.send)
					}
				}
				n := len(b.clients)
				b.mu.Unlock()
				metrics.SetDashboardClients(n)
				b.log.Warn("dropped slow dashboard clients", zap.Int("count", len(slow)))
			}
		}
	}
}

// BroadcastDirect fans out a direct-arbitrage opportunity to every
// connected dashboard client.
func (b *Broadcaster) BroadcastDirect(o scanner.Opportunity) {
	b.send(directOpportunityMessage{Type: typeDirectOpportunity, Timestamp: o.Ts, Data: o})
}

// BroadcastTri fans out a triangular-arbitrage opportunity to every
// connected dashboard client.
func (b *Broadcaster) BroadcastTri(o scanner.TriOpportunity) {
	b.send(triOpportunityMessage{Type: typeTriOpportunity, Timestamp: o.Ts, Data: o})
}

func (b *Broadcaster) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		b.log.Error("marshaling broadcast message", zap.Error(err))
		return
	}
	b.broadcast <- data
}

// ClientCount reports the number of currently connected dashboard clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeWS upgrades an HTTP request to a WebSocket connection and
// registers it as a broadcast subscriber.
func (b *Broadcaster) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	b.register <- c
	go b.writePump(c)
	go b.readPump(c)
}

func (b *Broadcaster) readPump(c *wsClient) {
	defer func() {
		b.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and stops the run loop.
func (b *Broadcaster) Close() {
	close(b.register)
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		close(c.send)
		c.conn.Close()
		delete(b.clients, c)
	}
}
