package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/abhikanjia/waste-management-api/database"
	"github.com/abhikanjia/waste-management-api/models"
)

// GetUserNotifications handles GET /api/notifications/user/:userId.
func (h *Handlers) GetUserNotifications(c *gin.Context) {
	notifications, err := h.service.GetNotifications(c.Request.Context(), c.Param("userId"),
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		log.Errorf("Failed to fetch notifications: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

// GetUnreadNotifications handles GET /api/notifications/user/:userId/unread.
func (h *Handlers) GetUnreadNotifications(c *gin.Context) {
	notifications, err := h.service.GetUnreadNotifications(c.Request.Context(), c.Param("userId"))
	if err != nil {
		log.Errorf("Failed to fetch unread notifications: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

// CreateNotification handles POST /api/notifications.
func (h *Handlers) CreateNotification(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, err := h.service.CreateNotification(c.Request.Context(), &req)
	if err != nil {
		log.Errorf("Failed to create notification: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"notificationId": id},
		"message": "Notification created successfully",
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:notificationId/read.
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("notificationId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid notification id")
		return
	}

	err = h.service.MarkNotificationRead(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Notification not found")
		return
	}
	if err != nil {
		log.Errorf("Failed to mark notification read: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}

// MarkAllNotificationsRead handles PATCH /api/notifications/user/:userId/read-all.
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	rows, err := h.service.MarkAllNotificationsRead(c.Request.Context(), c.Param("userId"))
	if err != nil {
		log.Errorf("Failed to mark notifications read: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infof("Marked %d notifications as read for user %s", rows, c.Param("userId"))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read"})
}
