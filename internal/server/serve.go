package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a websocket connection, registers it
// with the hub, and starts its read/write pumps (§4.I transport), grounded
// on the teacher's Hub.ServeWS.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Sugar().Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := NewConnection(uuid.NewString(), uuid.NewString(), conn, h)
	h.Register <- c

	go c.WritePump(ctx)
	go c.ReadPump(ctx)
}
