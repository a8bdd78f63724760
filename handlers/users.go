package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/abhikanjia/waste-management-api/database"
	"github.com/abhikanjia/waste-management-api/models"
)

// GetUser handles GET /api/users/:userId.
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("userId"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Errorf("Failed to fetch user: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// CreateOrUpdateUser handles POST /api/users.
func (h *Handlers) CreateOrUpdateUser(c *gin.Context) {
	var req models.CreateOrUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.service.CreateOrUpdateUser(c.Request.Context(), &req); err != nil {
		log.Errorf("Failed to save user: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User saved successfully"})
}

// GetUserStats handles GET /api/users/:userId/stats.
func (h *Handlers) GetUserStats(c *gin.Context) {
	stats, err := h.service.GetUserStats(c.Request.Context(), c.Param("userId"))
	if err != nil {
		log.Errorf("Failed to fetch user stats: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
