package handlers

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/abhikanjia/waste-management-api/database"
	"github.com/abhikanjia/waste-management-api/rabbitmq"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	service *database.ComplaintService
	events  *rabbitmq.Publisher
}

// NewHandlers creates a new handler instance. events may be nil; lifecycle
// fan-out is then skipped.
func NewHandlers(service *database.ComplaintService, events *rabbitmq.Publisher) *Handlers {
	return &Handlers{
		service: service,
		events:  events,
	}
}

// HealthCheck handles GET /api/health.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "API is running"})
}

// publishEvent fans one lifecycle event out to RabbitMQ. Best effort: a
// missing or failing publisher never fails the request.
func (h *Handlers) publishEvent(routingKey string, message interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishWithRoutingKey(routingKey, message); err != nil {
		log.Errorf("Failed to publish %s event: %v", routingKey, err)
		return
	}
	log.Infof("Published %s event", routingKey)
}

func respondError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}
