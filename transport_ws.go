package main

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSTransport is the concrete WebSocket transport. It accepts connections
// on /ws, pushes each inbound text frame's raw payload onto the
// Tick Loop's queue, and implements EndpointSink so the Signal Dispatcher
// can write back to a live connection.
type WSTransport struct {
	upgrader websocket.Upgrader
	loop     *TickLoop
	persist  *PersistenceWriter

	mu      sync.RWMutex
	conns   map[string]*websocket.Conn
	nextID  int64
	clients int64
}

// NewWSTransport constructs a transport that feeds loop and reports
// connection-count changes through persist.
func NewWSTransport(loop *TickLoop, persist *PersistenceWriter) *WSTransport {
	return &WSTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		loop:    loop,
		persist: persist,
		conns:   make(map[string]*websocket.Conn),
	}
}

// ServeHTTP upgrades the connection and hands off to a per-connection read
// loop.
func (t *WSTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade: %v", err)
		return
	}

	endpoint := t.register(conn)
	defer t.unregister(endpoint)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		t.loop.Push(InboundMessage{Endpoint: endpoint, Payload: string(raw)})
	}
}

func (t *WSTransport) register(conn *websocket.Conn) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	endpoint := wsEndpointName(t.nextID)
	t.conns[endpoint] = conn
	t.clients++
	t.persist.EnqueueServerStatus(t.clients)
	return endpoint
}

func (t *WSTransport) unregister(endpoint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conn, ok := t.conns[endpoint]; ok {
		conn.Close()
		delete(t.conns, endpoint)
		t.clients--
		t.persist.EnqueueServerStatus(t.clients)
	}
}

// Write implements EndpointSink: it silently drops writes to an absent or
// already-closed endpoint.
func (t *WSTransport) Write(endpoint, payload string) {
	t.mu.RLock()
	conn, ok := t.conns[endpoint]
	t.mu.RUnlock()
	if !ok {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		log.Printf("[ws] write to %s: %v", endpoint, err)
	}
}

// ClientCount reports the number of currently connected endpoints, for
// metrics and the admin API.
func (t *WSTransport) ClientCount() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.clients
}

func wsEndpointName(id int64) string {
	return "ws-" + strconv.FormatInt(id, 10)
}
