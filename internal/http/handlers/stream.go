package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/steveyiyo/avatar-voice/internal/http/middleware"
	"github.com/steveyiyo/avatar-voice/pkg/types"
	"github.com/steveyiyo/avatar-voice/pkg/ws"
)

const (
	streamIdle         = 60 * time.Second
	streamWriteTimeout = 10 * time.Second
)

// StreamHandler runs the respond pipeline once per websocket text frame.
type StreamHandler struct {
	Hub      *ws.Hub
	Svc      Responder
	Limiter  *middleware.Limiter
	Timeout  time.Duration
	Log      zerolog.Logger
	Upgrader websocket.Upgrader
}

func NewStreamHandler(h *ws.Hub, svc Responder, l *middleware.Limiter, timeout time.Duration, origins []string, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		Hub:     h,
		Svc:     svc,
		Limiter: l,
		Timeout: timeout,
		Log:     log,
		Upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(origins),
		},
	}
}

func (h *StreamHandler) WS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	id := "ws_" + uuid.NewString()
	h.Hub.Add(id, conn)
	defer func() {
		h.Hub.Remove(id)
		conn.Close()
	}()

	conn.SetReadLimit(1 << 20)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamIdle))
		return nil
	})

	_ = conn.WriteJSON(gin.H{
		"type": "hello",
		"ts":   time.Now().UnixMilli(),
		"id":   id,
	})

	for {
		conn.SetReadDeadline(time.Now().Add(streamIdle))
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame := h.handle(c.Request.Context(), id, msg)

		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.Log.Debug().Err(err).Str("conn", id).Msg("stream write failed")
			return
		}
	}
}

func (h *StreamHandler) handle(parent context.Context, connID string, msg []byte) types.StreamFrame {
	frame := types.StreamFrame{Type: "error"}

	var req types.RespondReq
	if err := json.Unmarshal(msg, &req); err != nil {
		frame.TS = time.Now().UnixMilli()
		frame.Error = &types.ErrorResp{Error: "bad_request", Details: err.Error()}
		return frame
	}

	ctx, cancel := context.WithTimeout(parent, h.Timeout)
	defer cancel()
	if err := h.Limiter.Acquire(ctx); err != nil {
		frame.TS = time.Now().UnixMilli()
		frame.Error = &types.ErrorResp{Error: "busy", Details: err.Error()}
		return frame
	}
	defer h.Limiter.Release()

	requestID := connID + "_" + uuid.NewString()[:8]
	resp, err := h.Svc.Respond(ctx, requestID, req)
	frame.TS = time.Now().UnixMilli()
	if err != nil {
		h.Log.Warn().Err(err).Str("request_id", requestID).Msg("stream respond failed")
		_, body := errorResponse(err)
		frame.Error = &body
		return frame
	}
	frame.Type = "response"
	frame.Response = resp
	return frame
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := map[string]bool{}
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
