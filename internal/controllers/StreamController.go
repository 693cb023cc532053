package controllers

import (
	"net/http"
	"reployer/internal/models"
	"reployer/internal/providers"
	"reployer/internal/services"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 8
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

type streamClient struct {
	id   string
	send chan []byte
}

// StreamController pushes every snapshot to connected websocket clients.
// It is a snapshot sink; Publish never blocks the monitor goroutine.
type StreamController struct {
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	snapshots *services.SnapshotStore
	upgrader  websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*streamClient
	closed  bool
}

func NewStreamController(logger providers.Logger, metrics providers.MetricsProviderInterface, snapshots *services.SnapshotStore) *StreamController {
	return &StreamController{
		logger:    logger,
		metrics:   metrics,
		snapshots: snapshots,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*streamClient),
	}
}

func (sc *StreamController) Publish(snapshot models.Snapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		sc.logger.Errorf(providers.TypeApp, "Encode snapshot %d: %s", snapshot.Sequence, err)
		return
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, c := range sc.clients {
		enqueue(c, data)
	}
}

// enqueue drops the oldest pending frame for a slow client.
func enqueue(c *streamClient, data []byte) {
	select {
	case c.send <- data:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- data:
	default:
	}
}

// sendTo enqueues a frame for one client unless it was already
// unregistered, whose send channel is closed.
func (sc *StreamController) sendTo(c *streamClient, data []byte) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.clients[c.id] != c {
		return false
	}
	enqueue(c, data)
	return true
}

func (sc *StreamController) Clients() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.clients)
}

func (sc *StreamController) register() (*streamClient, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return nil, false
	}
	c := &streamClient{id: uuid.NewString(), send: make(chan []byte, clientBuffer)}
	sc.clients[c.id] = c
	sc.metrics.SetStreamClients(len(sc.clients))
	return c, true
}

func (sc *StreamController) unregister(c *streamClient) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if _, ok := sc.clients[c.id]; !ok {
		return
	}
	delete(sc.clients, c.id)
	close(c.send)
	sc.metrics.SetStreamClients(len(sc.clients))
}

// Close disconnects every client and refuses new ones.
func (sc *StreamController) Close() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.closed = true
	for id, c := range sc.clients {
		delete(sc.clients, id)
		close(c.send)
	}
	sc.metrics.SetStreamClients(0)
}

// Stream upgrades the request and sends the latest snapshot followed by
// every new one.
func (sc *StreamController) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := sc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sc.logger.Warnf(providers.TypeGet, "Websocket upgrade from %s failed: %s", r.RemoteAddr, err)
		return
	}

	client, ok := sc.register()
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	sc.logger.Infof(providers.TypeGet, "Stream client %s connected from %s", client.id, r.RemoteAddr)

	if snapshot, ok := sc.snapshots.Latest(); ok {
		if data, err := json.Marshal(snapshot); err == nil {
			sc.sendTo(client, data)
		}
	}

	go sc.readLoop(conn, client)
	sc.writeLoop(conn, client)
	sc.logger.Infof(providers.TypeGet, "Stream client %s disconnected", client.id)
}

// readLoop only detects disconnects; client messages are ignored.
func (sc *StreamController) readLoop(conn *websocket.Conn, client *streamClient) {
	defer sc.unregister(client)

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sc.logger.Debugf(providers.TypeGet, "Stream client %s read error: %s", client.id, err)
			}
			return
		}
	}
}

func (sc *StreamController) writeLoop(conn *websocket.Conn, client *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
