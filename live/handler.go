package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ltst/latest-block/block"
	"github.com/ltst/latest-block/logging"
	"github.com/ltst/latest-block/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The block page and the websocket are served from the same host;
		// embedding hosts terminate their own origin policy.
		return true
	},
}

// Envelope represents one incoming websocket message
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// submitData carries the payload of a "submit" action
type submitData struct {
	ChannelID string `json:"channelId"`
}

// Push is one outgoing state message: the active view name and the
// re-rendered block HTML.
type Push struct {
	View string `json:"view"`
	HTML string `json:"html"`
}

// Handler drives one block instance over a websocket connection. Every
// accepted action and every fetch completion pushes the re-rendered
// block back to the client.
type Handler struct {
	block  *block.Block
	logger *logging.Logger
}

// NewHandler creates a websocket handler for a block instance
func NewHandler(b *block.Block, logger *logging.Logger) *Handler {
	return &Handler{
		block:  b,
		logger: logger,
	}
}

// session wraps a connection with a write lock; gorilla allows only one
// concurrent writer per connection.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) push(view block.View, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(Push{View: view.String(), HTML: html})
}

// ServeHTTP upgrades the connection and runs the action loop until the
// client disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.LiveSessions.Inc()
	defer metrics.LiveSessions.Dec()
	defer conn.Close()

	sess := &session{conn: conn}

	// Initial state so the client renders without a round trip
	h.pushState(sess)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			// Disconnect or malformed frame; in-flight work is abandoned
			// and its eventual push fails silently.
			h.logger.Debug("Websocket session ended", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		switch env.Action {
		case "submit":
			var data submitData
			if err := json.Unmarshal(env.Data, &data); err != nil {
				h.logger.Debug("Ignoring malformed submit payload", map[string]interface{}{
					"error": err.Error(),
				})
				continue
			}
			// Fetch in the background so the loading view can be pushed
			// while the request is outstanding.
			go func() {
				h.block.Submit(context.Background(), data.ChannelID)
				h.pushState(sess)
			}()
			h.pushState(sess)

		case "reset":
			h.block.Reset()
			h.pushState(sess)

		default:
			h.logger.Debug("Ignoring unknown action", map[string]interface{}{
				"action": env.Action,
			})
		}
	}
}

// pushState renders the block and writes it to the session. Write errors
// are dropped: the client is gone and the next read will end the loop.
func (h *Handler) pushState(sess *session) {
	state, html, err := h.block.SnapshotHTML()
	if err != nil {
		h.logger.Error("Block render failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := sess.push(state.View, html); err != nil {
		h.logger.Debug("Websocket push dropped", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
