package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/ayusman/yuletide/internal/app"
)

// DefaultSceneFPS is the frame rate pushed to viewers when none is set.
const DefaultSceneFPS = 30

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameSource publishes rendered frames.
type FrameSource interface {
	Subscribe() (<-chan app.Frame, func())
}

// SceneHandler pushes rendered frames to viewers over a WebSocket.
type SceneHandler struct {
	source   FrameSource
	interval time.Duration
	logger   *log.Logger
}

// NewSceneHandler creates a SceneHandler sending at most fps frames per
// second to each client.
func NewSceneHandler(source FrameSource, fps int, logger *log.Logger) *SceneHandler {
	if fps <= 0 {
		fps = DefaultSceneFPS
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SceneHandler{
		source:   source,
		interval: time.Second / time.Duration(fps),
		logger:   logger,
	}
}

// ServeHTTP upgrades the connection and streams frames until either side
// closes.
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	frames, cancel := h.source.Subscribe()
	defer cancel()

	// Reads only detect the close; viewers send nothing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var last time.Time
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stopped"),
					time.Now().Add(writeWait))
				return
			}
			if time.Since(last) < h.interval {
				continue
			}
			last = time.Now()

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(f); err != nil {
				h.logger.Debug("websocket write", "err", err)
				return
			}
		}
	}
}
