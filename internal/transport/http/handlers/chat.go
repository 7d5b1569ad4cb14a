// Package handlers implements Bodhi's HTTP routes (spec.md §4.5).
package handlers

import (
	"bufio"
	"net/http"

	"github.com/gin-gonic/gin"

	"bodhi/internal/chatcompletion"
	apperrors "bodhi/pkg/errors"
)

// ChatHandler serves POST /v1/chat/completions.
type ChatHandler struct {
	pipeline *chatcompletion.Pipeline
}

// NewChatHandler constructs a ChatHandler over pipeline.
func NewChatHandler(pipeline *chatcompletion.Pipeline) *ChatHandler {
	return &ChatHandler{pipeline: pipeline}
}

// Create handles spec.md §4.4's 8-step algorithm end to end, delivering
// either a single JSON response or an SSE stream per the request's
// `stream` field.
func (h *ChatHandler) Create(c *gin.Context) {
	var req chatcompletion.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if !result.Stream {
		c.JSON(http.StatusOK, result.Single)
		return
	}

	streamSSE(c, result.Chunks)
}

func streamSSE(c *gin.Context, chunks <-chan string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	w := bufio.NewWriter(c.Writer)

	for chunk := range chunks {
		if _, err := w.WriteString("data: " + chunk + "\n\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
		if ok {
			flusher.Flush()
		}
		select {
		case <-c.Request.Context().Done():
			return
		default:
		}
	}
	w.WriteString("data: [DONE]\n\n")
	w.Flush()
	if ok {
		flusher.Flush()
	}
}

// writeError maps err to the HTTP status and body spec.md §7 pins.
func writeError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, chatcompletion.ErrorBody{
			Error: chatcompletion.ErrorDetail{Message: "internal server error", Type: "internal_server_error"},
		})
		return
	}
	c.JSON(appErr.StatusCode, chatcompletion.ErrorBody{
		Error: chatcompletion.ErrorDetail{Message: appErr.Message, Type: string(appErr.Type)},
	})
}
