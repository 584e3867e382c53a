package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steveyiyo/avatar-voice/internal/core/respond"
	"github.com/steveyiyo/avatar-voice/internal/core/speech"
	"github.com/steveyiyo/avatar-voice/internal/http/middleware"
	"github.com/steveyiyo/avatar-voice/pkg/types"
)

type Responder interface {
	Respond(ctx context.Context, requestID string, req types.RespondReq) (*types.RespondResp, error)
}

type RespondHandler struct {
	Svc     Responder
	Timeout time.Duration
}

func NewRespondHandler(svc Responder, timeout time.Duration) *RespondHandler {
	return &RespondHandler{Svc: svc, Timeout: timeout}
}

func (h *RespondHandler) Respond(c *gin.Context) {
	var req types.RespondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResp{Error: "bad_request", Details: err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	resp, err := h.Svc.Respond(ctx, middleware.GetRequestID(c), req)
	if err != nil {
		_ = c.Error(err)
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func errorResponse(err error) (int, types.ErrorResp) {
	var serr *speech.SynthesisError
	switch {
	case errors.Is(err, respond.ErrBadRequest):
		return http.StatusBadRequest, types.ErrorResp{Error: "bad_request", Details: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, types.ErrorResp{Error: "timeout", Details: err.Error()}
	case errors.As(err, &serr):
		return http.StatusInternalServerError, types.ErrorResp{Error: "Synthesis failed", Details: serr.Error()}
	case errors.Is(err, respond.ErrGeneration):
		return http.StatusInternalServerError, types.ErrorResp{Error: "Generation failed", Details: err.Error()}
	case errors.Is(err, respond.ErrStorage):
		return http.StatusInternalServerError, types.ErrorResp{Error: "Storage failed", Details: err.Error()}
	}
	return http.StatusInternalServerError, types.ErrorResp{Error: "internal_error", Details: err.Error()}
}
