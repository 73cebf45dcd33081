package websocket

import (
	"net/http"
	"regexp"
	"sync"

	"widget-canvas/handlers/api"

	"github.com/sirupsen/logrus"
	"github.com/zishang520/engine.io/v2/types"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

// Hub pushes persistence change events to every open canvas window.
type Hub struct {
	srv *socketio.Server

	mu      sync.RWMutex
	clients map[socketio.SocketId]struct{}
}

func NewHub() *Hub {
	opts := socketio.DefaultServerOptions()
	opts.SetMaxHttpBufferSize(api.MaxBodyBytes)
	opts.SetPath("/socket.io")
	opts.SetAllowEIO3(true)
	localhostOrigin := regexp.MustCompile(`^https?://(localhost|127\.0\.0\.1|\[::1\])(:\d+)?$`)
	opts.SetCors(&types.Cors{
		Origin: []any{
			"tauri://localhost",
			localhostOrigin,
		},
		Credentials: true,
	})

	h := &Hub{
		srv:     socketio.NewServer(nil, opts),
		clients: make(map[socketio.SocketId]struct{}),
	}

	//nolint:errcheck // Socket.IO event handlers do not return useful errors
	h.srv.On("connection", func(clients ...any) {
		socket, ok := clients[0].(*socketio.Socket)
		if !ok {
			return
		}

		me := socket.Id()
		h.mu.Lock()
		h.clients[me] = struct{}{}
		h.mu.Unlock()
		logrus.WithField("socket", me).Debug("Canvas window connected")

		socket.On("disconnect", func(...any) {
			h.mu.Lock()
			delete(h.clients, me)
			h.mu.Unlock()
			logrus.WithField("socket", me).Debug("Canvas window disconnected")
			socket.RemoveAllListeners("")
		})
	})

	return h
}

// Notify broadcasts event to every connected window.
func (h *Hub) Notify(event string) {
	h.srv.Emit(event)
	logrus.WithFields(logrus.Fields{
		"event":   event,
		"clients": h.Clients(),
	}).Debug("Broadcast event")
}

// Clients returns the number of connected windows.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Handler() http.Handler {
	return h.srv.ServeHandler(nil)
}

func (h *Hub) Close() {
	h.srv.Close(nil)
}
