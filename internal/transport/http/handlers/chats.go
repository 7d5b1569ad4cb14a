package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bodhi/internal/store"
	apperrors "bodhi/pkg/errors"
)

// ChatsHandler serves the /api/ui/chats* endpoints, delegating to the
// persisted conversation store (spec.md §4.5).
type ChatsHandler struct {
	store *store.Store
}

// NewChatsHandler constructs a ChatsHandler over the given store.
func NewChatsHandler(s *store.Store) *ChatsHandler {
	return &ChatsHandler{store: s}
}

// ListChats handles GET /api/ui/chats.
func (h *ChatsHandler) ListChats(c *gin.Context) {
	conversations, err := h.store.ListConversations(c.Request.Context())
	if err != nil {
		writeError(c, apperrors.NewInternal("failed to list conversations", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": conversations})
}

// DeleteChats handles DELETE /api/ui/chats.
func (h *ChatsHandler) DeleteChats(c *gin.Context) {
	if err := h.store.DeleteAllConversations(c.Request.Context()); err != nil {
		writeError(c, apperrors.NewInternal("failed to delete conversations", err))
		return
	}
	c.Status(http.StatusNoContent)
}

// GetChat handles GET /api/ui/chats/:id.
func (h *ChatsHandler) GetChat(c *gin.Context) {
	id := c.Param("id")
	conversation, ok, err := h.store.GetConversation(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperrors.NewInternal("failed to load conversation", err))
		return
	}
	if !ok {
		writeError(c, apperrors.NewConversationNotFound(id))
		return
	}
	messages, err := h.store.ListMessages(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperrors.NewInternal("failed to load messages", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conversation, "messages": messages})
}

// createMessageRequest is the body POST /api/ui/chats/:id accepts to
// append a turn to an existing conversation.
type createMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
}

// CreateChatMessage handles POST /api/ui/chats/:id: appends one message
// to the conversation, mirroring the turn the interactive REPL persists
// for its own sessions (spec.md §4.6).
func (h *ChatsHandler) CreateChatMessage(c *gin.Context) {
	id := c.Param("id")
	if _, ok, err := h.store.GetConversation(c.Request.Context(), id); err != nil {
		writeError(c, apperrors.NewInternal("failed to load conversation", err))
		return
	} else if !ok {
		writeError(c, apperrors.NewConversationNotFound(id))
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewBadRequest(err.Error()))
		return
	}

	msg, err := h.store.AppendMessage(c.Request.Context(), id, req.Role, req.Name, req.Content)
	if err != nil {
		writeError(c, apperrors.NewInternal("failed to append message", err))
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// DeleteChat handles DELETE /api/ui/chats/:id.
func (h *ChatsHandler) DeleteChat(c *gin.Context) {
	id := c.Param("id")
	if _, ok, err := h.store.GetConversation(c.Request.Context(), id); err != nil {
		writeError(c, apperrors.NewInternal("failed to load conversation", err))
		return
	} else if !ok {
		writeError(c, apperrors.NewConversationNotFound(id))
		return
	}
	if err := h.store.DeleteConversation(c.Request.Context(), id); err != nil {
		writeError(c, apperrors.NewInternal("failed to delete conversation", err))
		return
	}
	c.Status(http.StatusNoContent)
}
