package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	lerrors "github.com/vango-dev/loadable/internal/errors"
	"github.com/vango-dev/loadable/pkg/hydrate"
)

// HydrateMessageType is the type of a message sent on the hydrate socket.
type HydrateMessageType string

const (
	HydrateReady HydrateMessageType = "ready"
	HydrateError HydrateMessageType = "error"
)

// HydrateRequest is the client's first and only message: the payload it
// read from the page.
type HydrateRequest struct {
	Preloadables json.RawMessage `json:"preloadables"`
}

// HydrateMessage is the server's reply.
type HydrateMessage struct {
	Type   HydrateMessageType `json:"type"`
	Loaded int                `json:"loaded,omitempty"`
	Code   string             `json:"code,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// handleHydrate upgrades the connection, reads the client's payload,
// preloads the named loadables and reports the result. The client may then
// hydrate without a loading flash.
func (s *Server) handleHydrate(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("hydrate upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.config.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))

	var req HydrateRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.reply(conn, errorMessage(lerrors.New("L040").Wrap(err)))
		return
	}
	names, err := hydrate.Decode(req.Preloadables)
	if err != nil {
		s.reply(conn, errorMessage(err))
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if err := s.config.Registry.PreloadByNames(ctx, names); err != nil {
		s.logger.Error("hydrate preload failed", "error", err, "names", len(names))
		s.reply(conn, errorMessage(err))
		return
	}
	s.reply(conn, HydrateMessage{Type: HydrateReady, Loaded: len(names)})
}

func (s *Server) reply(conn *websocket.Conn, msg HydrateMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("hydrate write failed", "error", err)
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(msg.Type)),
		time.Now().Add(time.Second))
}

func errorMessage(err error) HydrateMessage {
	msg := HydrateMessage{Type: HydrateError, Error: err.Error()}
	var le *lerrors.LoadableError
	if errors.As(err, &le) {
		msg.Code = le.Code
	}
	return msg
}
