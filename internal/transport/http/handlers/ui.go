package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bodhi/internal/hub"
	"bodhi/internal/objs"
	apperrors "bodhi/pkg/errors"
)

// UIHandler serves the /api/ui/* alias-management endpoints the desktop
// and web front ends use. The static UI bundle itself is out of scope
// (spec.md §1); this only exposes the alias catalog as JSON.
type UIHandler struct {
	hub *hub.Adapter
}

// NewUIHandler constructs a UIHandler over the given alias/hub adapter.
func NewUIHandler(h *hub.Adapter) *UIHandler {
	return &UIHandler{hub: h}
}

// ListAliases handles GET /api/ui/models.
func (h *UIHandler) ListAliases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.hub.ListAliases()})
}

// GetAlias handles GET /api/ui/models/:alias.
func (h *UIHandler) GetAlias(c *gin.Context) {
	alias, ok := h.hub.FindAlias(c.Param("alias"))
	if !ok {
		writeError(c, apperrors.NewAliasNotFound(c.Param("alias")))
		return
	}
	c.JSON(http.StatusOK, alias)
}

// CreateAlias handles POST /api/ui/models.
func (h *UIHandler) CreateAlias(c *gin.Context) {
	var alias objs.Alias
	if err := c.ShouldBindJSON(&alias); err != nil {
		writeError(c, apperrors.NewBadRequest(err.Error()))
		return
	}
	if _, exists := h.hub.FindAlias(alias.Alias); exists {
		writeError(c, apperrors.NewAliasExists(alias.Alias))
		return
	}
	if err := h.hub.SaveAlias(alias); err != nil {
		writeError(c, apperrors.NewInternal("failed to save alias", err))
		return
	}
	c.JSON(http.StatusCreated, alias)
}
