package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wayband/wayband/internal/cluster"
	"github.com/wayband/wayband/internal/geometry"
	"github.com/wayband/wayband/internal/sector"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// obstacleJSON is the wire shape for one obstacle. The centroid is reported
// both in pixel/depth space and projected to metric coordinates, the way
// the 3D view wants it.
type obstacleJSON struct {
	Centroid geometry.Point3D `json:"centroid"`
	Metric   struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"metric"`
	PointCount int `json:"point_count"`
}

// frameJSON is the per-frame payload broadcast to viewers.
type frameJSON struct {
	Obstacles []obstacleJSON      `json:"obstacles"`
	Sectors   map[string]*float64 `json:"sectors"`
	Timestamp int64               `json:"timestamp"`
}

// Hub broadcasts per-frame obstacle updates to websocket viewers. It is the
// pipeline's visualizer collaborator: Render is best-effort and never
// reports failure back into the frame loop.
type Hub struct {
	frameWidth  float64
	frameHeight float64
	focalLength float64
	clients     map[*websocket.Conn]bool
	mu          sync.RWMutex
}

// NewHub creates a Hub. The camera parameters are used to project obstacle
// centroids into metric space for display.
func NewHub(frameWidth, frameHeight, focalLength float64) *Hub {
	return &Hub{
		frameWidth:  frameWidth,
		frameHeight: frameHeight,
		focalLength: focalLength,
		clients:     make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests for the live feed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Render broadcasts one frame's obstacles and sector reading to all
// connected viewers. Write failures are ignored; a dead client is dropped
// by its own read loop.
func (h *Hub) Render(obstacles []cluster.Obstacle, reading sector.Reading) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	payload := frameJSON{
		Obstacles: make([]obstacleJSON, len(obstacles)),
		Sectors:   make(map[string]*float64, len(reading)),
		Timestamp: time.Now().UnixMilli(),
	}
	for i, obs := range obstacles {
		o := obstacleJSON{Centroid: obs.Centroid, PointCount: len(obs.Points)}
		o.Metric.X, o.Metric.Y, o.Metric.Z = geometry.PixelToMetric(
			obs.Centroid.U, obs.Centroid.V, obs.Centroid.Z,
			h.frameWidth, h.frameHeight, h.focalLength)
		payload.Obstacles[i] = o
	}
	for name, dist := range reading {
		if dist.Valid {
			v := dist.Value
			payload.Sectors[name] = &v
		} else {
			payload.Sectors[name] = nil
		}
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.TextMessage, msg)
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
