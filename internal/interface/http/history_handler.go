package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// History lists the caller's most recent analyses.
func (h *Handler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.historySvc.Recent(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
