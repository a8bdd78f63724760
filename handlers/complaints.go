package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/abhikanjia/waste-management-api/database"
	"github.com/abhikanjia/waste-management-api/mapaggr"
	"github.com/abhikanjia/waste-management-api/models"
)

// GetComplaints handles GET /api/complaints with optional equality filters
// and pagination.
func (h *Handlers) GetComplaints(c *gin.Context) {
	filter := &database.ComplaintFilter{
		UserID:     c.Query("userId"),
		Status:     c.Query("status"),
		CategoryID: c.Query("categoryId"),
		City:       c.Query("city"),
		Limit:      queryInt(c, "limit", 50),
		Offset:     queryInt(c, "offset", 0),
	}

	complaints, total, err := h.service.GetComplaints(c.Request.Context(), filter)
	if err != nil {
		log.Errorf("Failed to fetch complaints: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaints,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// GetUserComplaints handles GET /api/complaints/user/:userId.
func (h *Handlers) GetUserComplaints(c *gin.Context) {
	filter := &database.ComplaintFilter{
		UserID: c.Param("userId"),
		Status: c.Query("status"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	complaints, total, err := h.service.GetComplaints(c.Request.Context(), filter)
	if err != nil {
		log.Errorf("Failed to fetch user complaints: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    complaints,
		"total":   total,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// GetComplaint handles GET /api/complaints/:complaintId.
func (h *Handlers) GetComplaint(c *gin.Context) {
	complaint, err := h.service.GetComplaintByID(c.Request.Context(), c.Param("complaintId"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Complaint not found")
		return
	}
	if err != nil {
		log.Errorf("Failed to fetch complaint: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": complaint})
}

// GetComplaintHistory handles GET /api/complaints/:complaintId/history.
func (h *Handlers) GetComplaintHistory(c *gin.Context) {
	entries, err := h.service.GetStatusHistory(c.Request.Context(), c.Param("complaintId"))
	if err != nil {
		log.Errorf("Failed to fetch status history: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}

// CreateComplaint handles POST /api/complaints.
func (h *Handlers) CreateComplaint(c *gin.Context) {
	var req models.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	complaint, err := h.service.CreateComplaint(c.Request.Context(), &req)
	if err != nil {
		log.Errorf("Failed to create complaint: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.publishEvent("complaint.created", struct {
		ComplaintID string  `json:"complaintId"`
		UserID      string  `json:"userId"`
		CategoryID  string  `json:"categoryId"`
		City        string  `json:"city"`
		Status      string  `json:"status"`
		Priority    string  `json:"priority"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}{
		ComplaintID: complaint.ComplaintID,
		UserID:      complaint.UserID,
		CategoryID:  complaint.CategoryID,
		City:        complaint.City,
		Status:      complaint.Status,
		Priority:    complaint.Priority,
		Latitude:    complaint.Latitude,
		Longitude:   complaint.Longitude,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    complaint,
		"message": "Complaint created successfully",
	})
}

// UpdateComplaintStatus handles PATCH /api/complaints/:complaintId/status.
func (h *Handlers) UpdateComplaintStatus(c *gin.Context) {
	complaintID := c.Param("complaintId")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	err := h.service.UpdateStatus(c.Request.Context(), complaintID, &req)
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Complaint not found")
		return
	}
	if err != nil {
		log.Errorf("Failed to update status: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.publishEvent("complaint.status_changed", struct {
		ComplaintID string `json:"complaintId"`
		UserID      string `json:"userId"`
		Status      string `json:"status"`
		Notes       string `json:"notes"`
	}{
		ComplaintID: complaintID,
		UserID:      req.UserID,
		Status:      req.Status,
		Notes:       req.Notes,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated successfully"})
}

// GetComplaintMap handles GET /api/complaints/map. Pins inside the viewport
// come back clustered by S2 cell so dense areas stay readable.
func (h *Handlers) GetComplaintMap(c *gin.Context) {
	var vp models.ViewPort
	if err := c.ShouldBindQuery(&vp); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid viewport: "+err.Error())
		return
	}
	if vp.LatMin >= vp.LatMax || vp.LonMin >= vp.LonMax {
		respondError(c, http.StatusBadRequest, "Invalid viewport: latmin/lonmin must be below latmax/lonmax")
		return
	}

	var center models.Point
	if err := c.ShouldBindQuery(&center); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid center: "+err.Error())
		return
	}
	if center.Lat == 0 && center.Lon == 0 {
		center.Lat = (vp.LatMin + vp.LatMax) / 2
		center.Lon = (vp.LonMin + vp.LonMax) / 2
	}

	pins, err := h.service.GetMapPins(c.Request.Context(), vp)
	if err != nil {
		log.Errorf("Failed to fetch map pins: %v", err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	a := mapaggr.New(&vp, &center)
	for _, p := range pins {
		a.AddPin(p)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": a.ToArray()})
}

func queryInt(c *gin.Context, key string, defaultValue int) int {
	v := c.Query(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}
