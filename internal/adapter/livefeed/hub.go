// Package livefeed pushes scored incidents to WebSocket subscribers as the
// pipeline loads them.
package livefeed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/couchcryptid/disaster-risk-etl/internal/domain"
	"github.com/couchcryptid/disaster-risk-etl/internal/observability"
)

// MessageIncidentScored is the type of every feed message.
const MessageIncidentScored = "incident.scored"

const writeTimeout = 5 * time.Second

// Message is the envelope written to subscribers.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Incident  domain.Incident `json:"incident"`
}

type subscriber struct {
	conn   *websocket.Conn
	send   chan Message
	filter map[domain.Severity]bool // empty means every severity
}

func (s *subscriber) wants(sev domain.Severity) bool {
	return len(s.filter) == 0 || s.filter[sev]
}

// Hub tracks live feed subscribers and fans incidents out to them. It
// implements pipeline.BatchLoader; delivery is best effort and never fails
// the batch. A subscriber whose buffer is full misses the message.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*subscriber]struct{}
	bufferSize int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewHub creates a hub that buffers up to bufferSize messages per subscriber.
func NewHub(bufferSize int, metrics *observability.Metrics, logger *slog.Logger) *Hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Hub{
		subs:       make(map[*subscriber]struct{}),
		bufferSize: bufferSize,
		metrics:    metrics,
		logger:     logger,
	}
}

// LoadBatch broadcasts each incident to the subscribers that want its severity.
func (h *Hub) LoadBatch(_ context.Context, incidents []domain.Incident) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.subs) == 0 {
		return nil
	}
	for i := range incidents {
		msg := Message{
			Type:      MessageIncidentScored,
			Timestamp: incidents[i].ProcessedAt,
			Incident:  incidents[i],
		}
		for s := range h.subs {
			if !s.wants(msg.Incident.Severity) {
				continue
			}
			select {
			case s.send <- msg:
			default:
				h.metrics.LiveFeedDropped.Inc()
			}
		}
	}
	return nil
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Hijacked WebSocket connections are
// not drained by http.Server.Shutdown, so the service calls this on exit.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs))
	for s := range h.subs {
		if s.conn != nil {
			conns = append(conns, s.conn)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.LiveFeedClients.Set(float64(n))
	h.logger.Debug("live feed subscriber connected", "subscribers", n)
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.send)
	}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.LiveFeedClients.Set(float64(n))
	h.logger.Debug("live feed subscriber disconnected", "subscribers", n)
}

// writePump sends messages from the subscriber's channel until it is closed
// or a write fails.
func (s *subscriber) writePump(ctx context.Context, logger *slog.Logger) {
	for msg := range s.send {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(writeCtx, s.conn, msg)
		cancel()
		if err != nil {
			logger.Debug("live feed write failed", "error", err)
			return
		}
	}
}

// readPump drains the connection to notice disconnects; subscribers do not
// send anything.
func (s *subscriber) readPump(ctx context.Context) {
	for {
		if _, _, err := s.conn.Read(ctx); err != nil {
			return
		}
	}
}

// parseSeverities turns severity query values into a filter. Matching is
// case-insensitive.
func parseSeverities(values []string) (map[domain.Severity]bool, error) {
	filter := make(map[domain.Severity]bool, len(values))
	for _, v := range values {
		var sev domain.Severity
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "low":
			sev = domain.SeverityLow
		case "medium":
			sev = domain.SeverityMedium
		case "high":
			sev = domain.SeverityHigh
		default:
			return nil, fmt.Errorf("unknown severity %q", v)
		}
		filter[sev] = true
	}
	return filter, nil
}
