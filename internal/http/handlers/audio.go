package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steveyiyo/avatar-voice/internal/repo"
)

type AudioSource interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

type AudioHandler struct {
	Src AudioSource
}

func NewAudioHandler(src AudioSource) *AudioHandler {
	return &AudioHandler{Src: src}
}

func (h *AudioHandler) Get(c *gin.Context) {
	data, contentType, err := h.Src.Get(c.Request.Context(), c.Param("key"))
	if errors.Is(err, repo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audio_unavailable"})
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, contentType, data)
}
