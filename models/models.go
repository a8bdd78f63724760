package models

import "time"

// Complaint statuses. The status column is free-form on purpose: the admin
// tooling introduces new states without a schema change, so the service does
// not reject unknown values.
const (
	StatusSubmitted    = "submitted"
	StatusAcknowledged = "acknowledged"
	StatusInProgress   = "in_progress"
	StatusResolved     = "resolved"
)

// Complaint priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Complaint is a citizen-submitted report with its location and the
// denormalized reporter/category snapshot captured at submission time.
type Complaint struct {
	ComplaintID  string     `json:"complaintId"`
	UserID       string     `json:"userId"`
	UserName     string     `json:"userName"`
	UserEmail    string     `json:"userEmail"`
	UserPhone    string     `json:"userPhone"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	Pincode      string     `json:"pincode"`
	Locality     string     `json:"locality"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ResolvedAt   *time.Time `json:"resolvedAt"`
	ImageURLs    []string   `json:"imageUrls"`
}

// ComplaintImage is one attached photo URL. UploadOrder preserves the order
// the client sent the URLs in; the image at order 0 is the thumbnail.
type ComplaintImage struct {
	ComplaintID string `json:"complaintId"`
	ImageURL    string `json:"imageUrl"`
	IsThumbnail bool   `json:"isThumbnail"`
	UploadOrder int    `json:"uploadOrder"`
}

// StatusHistoryEntry is one row of the append-only transition audit trail.
type StatusHistoryEntry struct {
	ID             int64     `json:"id"`
	ComplaintID    string    `json:"complaintId"`
	UserID         string    `json:"userId"`
	PreviousStatus string    `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	ChangedBy      string    `json:"changedBy"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User is a reporter profile with its complaint counters.
type User struct {
	UserID             string    `json:"userId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	LanguagePreference string    `json:"languagePreference"`
	ProfilePictureURL  string    `json:"profilePictureUrl"`
	TotalComplaints    int       `json:"totalComplaints"`
	ResolvedComplaints int       `json:"resolvedComplaints"`
	PendingComplaints  int       `json:"pendingComplaints"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UserStats is the counter slice of the user row. Counters are maintained by
// the complaint lifecycle writes, never by callers directly.
type UserStats struct {
	TotalComplaints    int `json:"totalComplaints"`
	ResolvedComplaints int `json:"resolvedComplaints"`
	PendingComplaints  int `json:"pendingComplaints"`
}

// Category is a slow-changing reference row used to classify complaints.
type Category struct {
	CategoryID   string `json:"categoryId"`
	Name         string `json:"name"`
	IsActive     bool   `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}

// Notification is one entry in a user's mailbox, optionally linked to a
// complaint. Rows are only ever mutated to flip the read flag.
type Notification struct {
	NotificationID int64      `json:"notificationId"`
	UserID         string     `json:"userId"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	ComplaintID    *string    `json:"complaintId"`
	Status         *string    `json:"status"`
	IsRead         bool       `json:"isRead"`
	CreatedAt      time.Time  `json:"createdAt"`
	ReadAt         *time.Time `json:"readAt"`
}

// CreateComplaintRequest is the POST /api/complaints body.
type CreateComplaintRequest struct {
	UserID       string   `json:"userId" binding:"required"`
	UserName     string   `json:"userName"`
	UserEmail    string   `json:"userEmail"`
	UserPhone    string   `json:"userPhone"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	CategoryID   string   `json:"categoryId"`
	CategoryName string   `json:"categoryName"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Pincode      string   `json:"pincode"`
	Locality     string   `json:"locality"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority"`
	ImageURLs    []string `json:"imageUrls"`
}

// UpdateStatusRequest is the PATCH /api/complaints/:complaintId/status body.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	UserID string `json:"userId"`
	Notes  string `json:"notes"`
}

// CreateOrUpdateUserRequest is the POST /api/users body.
type CreateOrUpdateUserRequest struct {
	UserID             string `json:"userId" binding:"required"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	LanguagePreference string `json:"languagePreference"`
	ProfilePictureURL  string `json:"profilePictureUrl"`
}

// CreateNotificationRequest is the POST /api/notifications body.
type CreateNotificationRequest struct {
	UserID      string  `json:"userId" binding:"required"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	ComplaintID *string `json:"complaintId"`
	Status      *string `json:"status"`
}

// MapPin is one complaint location inside a requested viewport. Aggregated
// pins carry Count > 1 and no complaint id.
type MapPin struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Count       int64   `json:"count"`
	ComplaintID string  `json:"complaintId,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// ViewPort is the bounding box of a map request.
type ViewPort struct {
	LatMin float64 `form:"latmin"`
	LonMin float64 `form:"lonmin"`
	LatMax float64 `form:"latmax"`
	LonMax float64 `form:"lonmax"`
}

// Point is a map center hint used to pick the aggregation cell level.
type Point struct {
	Lat float64 `form:"latcenter"`
	Lon float64 `form:"loncenter"`
}
