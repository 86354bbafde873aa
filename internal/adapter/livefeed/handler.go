package livefeed

import (
	"net/http"

	"github.com/coder/websocket"
)

// ServeHTTP upgrades the request to a WebSocket and streams scored
// incidents until the client disconnects. Repeated severity query
// parameters (?severity=High&severity=Medium) restrict the feed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSeverities(r.URL.Query()["severity"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("live feed accept failed", "error", err)
		return
	}

	s := &subscriber{
		conn:   conn,
		send:   make(chan Message, h.bufferSize),
		filter: filter,
	}
	h.register(s)

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		s.writePump(ctx, h.logger)
		close(done)
	}()

	// Blocks until the client goes away.
	s.readPump(ctx)

	h.unregister(s)
	_ = conn.Close(websocket.StatusNormalClosure, "")
	<-done
}
