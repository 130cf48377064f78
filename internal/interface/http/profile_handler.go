package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/label-insight/internal/domain/profile"
)

// GetProfile returns the caller's health profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	p, found, err := h.profileSvc.Get(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "profile_not_found", "profile not found", nil))
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveProfile creates or replaces the caller's health profile.
func (h *Handler) SaveProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req profile.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "invalid profile payload", err))
		return
	}
	saved, err := h.profileSvc.Save(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, saved)
}
