package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/abhikanjia/waste-management-api/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ComplaintService owns the complaint lifecycle: creation, status
// transitions and the side effects they imply (image attachments, status
// history, user counters). It is the only writer of those tables.
type ComplaintService struct {
	db *sql.DB
}

// NewComplaintService creates a new complaint service instance.
func NewComplaintService(db *sql.DB) *ComplaintService {
	return &ComplaintService{db: db}
}

// newComplaintID returns a unique, URL-safe complaint id. The timestamp
// prefix keeps ids roughly sortable; the uuid suffix makes collisions moot.
func newComplaintID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("COMP-%d-%s", time.Now().UnixMilli(), suffix)
}

// CreateComplaint persists a new complaint, its ordered image attachments
// and the reporter's counter update as one transaction.
func (s *ComplaintService) CreateComplaint(ctx context.Context, req *models.CreateComplaintRequest) (*models.Complaint, error) {
	status := req.Status
	if status == "" {
		status = models.StatusSubmitted
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	complaintID := newComplaintID()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT INTO complaints (
	    complaintId, userId, userName, userEmail, userPhone, title, description,
	    categoryId, categoryName, latitude, longitude, address, city, state,
	    pincode, locality, status, priority
	  ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		complaintID, req.UserID, req.UserName, req.UserEmail, req.UserPhone,
		req.Title, req.Description, req.CategoryID, req.CategoryName,
		req.Latitude, req.Longitude, req.Address, req.City, req.State,
		req.Pincode, req.Locality, status, priority)
	logResult("createComplaint", result, err, true)
	if err != nil {
		return nil, fmt.Errorf("failed to insert complaint: %w", err)
	}

	// The first image is the thumbnail; uploadOrder preserves input order.
	for i, url := range req.ImageURLs {
		result, err = tx.ExecContext(ctx,
			`INSERT INTO complaint_images (complaintId, imageUrl, isThumbnail, uploadOrder)
			 VALUES (?, ?, ?, ?)`,
			complaintID, url, i == 0, i)
		logResult("createComplaintImage", result, err, true)
		if err != nil {
			return nil, fmt.Errorf("failed to insert complaint image: %w", err)
		}
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE users SET totalComplaints = totalComplaints + 1,
		                  pendingComplaints = pendingComplaints + 1
		 WHERE userId = ?`, req.UserID)
	logResult("createComplaintStats", result, err, true)
	if err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	// Read the row's timestamps back so the response carries the values the
	// database assigned, not a Go-side clock that can drift from them.
	var submittedAt, updatedAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT submittedAt, updatedAt FROM complaints WHERE complaintId = ?`,
		complaintID).Scan(&submittedAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to read complaint timestamps: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Complaint{
		ComplaintID:  complaintID,
		UserID:       req.UserID,
		UserName:     req.UserName,
		UserEmail:    req.UserEmail,
		UserPhone:    req.UserPhone,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		CategoryName: req.CategoryName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		Locality:     req.Locality,
		Status:       status,
		Priority:     priority,
		SubmittedAt:  submittedAt,
		UpdatedAt:    updatedAt,
		ImageURLs:    append([]string{}, req.ImageURLs...),
	}, nil
}

// UpdateStatus applies a status transition, appends the history entry and
// reconciles the owner's counters when the complaint gets resolved. The read
// of the previous status and all writes share one serializable transaction
// so concurrent transitions cannot double-apply the resolved counter.
func (s *ComplaintService) UpdateStatus(ctx context.Context, complaintID string, req *models.UpdateStatusRequest) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previousStatus, ownerID string
	err = tx.QueryRowContext(ctx,
		`SELECT status, userId FROM complaints WHERE complaintId = ?`,
		complaintID).Scan(&previousStatus, &ownerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read complaint: %w", err)
	}

	// resolvedAt is stamped once on the first transition into resolved and
	// intentionally never cleared afterwards.
	result, err := tx.ExecContext(ctx,
		`UPDATE complaints
		 SET status = ?, updatedAt = NOW(),
		     resolvedAt = CASE WHEN ? = 'resolved' THEN NOW() ELSE resolvedAt END
		 WHERE complaintId = ?`,
		req.Status, req.Status, complaintID)
	logResult("updateStatus", result, err, true)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO complaint_status_history
		   (complaintId, userId, previousStatus, newStatus, changedBy, notes)
		 VALUES (?, ?, ?, ?, 'user', ?)`,
		complaintID, req.UserID, previousStatus, req.Status, req.Notes)
	logResult("updateStatusHistory", result, err, true)
	if err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}

	if req.Status == models.StatusResolved && previousStatus != models.StatusResolved {
		result, err = tx.ExecContext(ctx,
			`UPDATE users SET resolvedComplaints = resolvedComplaints + 1,
			                  pendingComplaints = GREATEST(pendingComplaints - 1, 0)
			 WHERE userId = ?`, ownerID)
		logResult("updateStatusStats", result, err, true)
		if err != nil {
			return fmt.Errorf("failed to update user stats: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ComplaintFilter is the filter vocabulary of the complaint list. Empty
// fields are skipped; set fields compose with AND.
type ComplaintFilter struct {
	UserID     string
	Status     string
	CategoryID string
	City       string
	Limit      int
	Offset     int
}

const defaultListLimit = 50

// where returns the WHERE clause and its arguments.
func (f *ComplaintFilter) where() (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	add := func(column, value string) {
		if value != "" {
			clauses = append(clauses, column+" = ?")
			args = append(args, value)
		}
	}
	add("c.userId", f.UserID)
	add("c.status", f.Status)
	add("c.categoryId", f.CategoryID)
	add("c.city", f.City)
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// page normalizes Limit and Offset in place and returns the effective
// values, so callers echoing the filter report what was actually queried.
func (f *ComplaintFilter) page() (int, int) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f.Limit, f.Offset
}

const complaintColumns = `c.complaintId, c.userId, c.userName, c.userEmail, c.userPhone,
	       c.title, c.description, c.categoryId, c.categoryName,
	       c.latitude, c.longitude, c.address, c.city, c.state, c.pincode, c.locality,
	       c.status, c.priority, c.submittedAt, c.updatedAt, c.resolvedAt,
	       COALESCE(GROUP_CONCAT(ci.imageUrl ORDER BY ci.uploadOrder SEPARATOR ','), '')`

// GetComplaints returns one page of complaints matching the filter, newest
// first, plus the total match count for pagination controls.
func (s *ComplaintService) GetComplaints(ctx context.Context, filter *ComplaintFilter) ([]models.Complaint, int, error) {
	where, args := filter.where()

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM complaints c"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	limit, offset := filter.page()
	query := "SELECT " + complaintColumns + `
	  FROM complaints c
	  LEFT JOIN complaint_images ci ON c.complaintId = ci.complaintId` +
		where + `
	  GROUP BY c.complaintId
	  ORDER BY c.submittedAt DESC
	  LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			log.Errorf("Failed to scan complaint: %v", err)
			continue
		}
		complaints = append(complaints, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating complaints: %w", err)
	}

	return complaints, total, nil
}

// GetComplaintByID returns one complaint with its ordered image URLs.
func (s *ComplaintService) GetComplaintByID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	query := "SELECT " + complaintColumns + `
	  FROM complaints c
	  LEFT JOIN complaint_images ci ON c.complaintId = ci.complaintId
	  WHERE c.complaintId = ?
	  GROUP BY c.complaintId`
	rows, err := s.db.QueryContext(ctx, query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaint: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading complaint: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanComplaint(rows)
}

// GetStatusHistory returns a complaint's full transition trail, oldest first.
func (s *ComplaintService) GetStatusHistory(ctx context.Context, complaintID string) ([]models.StatusHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, complaintId, userId, previousStatus, newStatus, changedBy, notes, createdAt
		 FROM complaint_status_history
		 WHERE complaintId = ?
		 ORDER BY createdAt ASC, id ASC`, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	entries := []models.StatusHistoryEntry{}
	for rows.Next() {
		var e models.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.ComplaintID, &e.UserID, &e.PreviousStatus,
			&e.NewStatus, &e.ChangedBy, &e.Notes, &e.CreatedAt); err != nil {
			log.Errorf("Failed to scan status history entry: %v", err)
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}
	return entries, nil
}

// GetMapPins returns complaint locations inside the viewport, extended by
// half its size in every direction so pins near the edge survive panning.
func (s *ComplaintService) GetMapPins(ctx context.Context, vp models.ViewPort) ([]models.MapPin, error) {
	latSize := vp.LatMax - vp.LatMin
	lonSize := vp.LonMax - vp.LonMin
	vp.LatMin -= latSize / 2
	vp.LatMax += latSize / 2
	vp.LonMin -= lonSize / 2
	vp.LonMax += lonSize / 2

	rows, err := s.db.QueryContext(ctx,
		`SELECT complaintId, latitude, longitude, status
		 FROM complaints
		 WHERE latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?`,
		vp.LatMin, vp.LatMax, vp.LonMin, vp.LonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query map pins: %w", err)
	}
	defer rows.Close()

	pins := []models.MapPin{}
	for rows.Next() {
		p := models.MapPin{Count: 1}
		if err := rows.Scan(&p.ComplaintID, &p.Latitude, &p.Longitude, &p.Status); err != nil {
			log.Errorf("Failed to scan map pin: %v", err)
			continue
		}
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating map pins: %w", err)
	}
	return pins, nil
}

// scanner covers *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(row scanner) (*models.Complaint, error) {
	var c models.Complaint
	var resolvedAt sql.NullTime
	var imageURLs string
	err := row.Scan(&c.ComplaintID, &c.UserID, &c.UserName, &c.UserEmail, &c.UserPhone,
		&c.Title, &c.Description, &c.CategoryID, &c.CategoryName,
		&c.Latitude, &c.Longitude, &c.Address, &c.City, &c.State, &c.Pincode, &c.Locality,
		&c.Status, &c.Priority, &c.SubmittedAt, &c.UpdatedAt, &resolvedAt,
		&imageURLs)
	if err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		c.ResolvedAt = &resolvedAt.Time
	}
	c.ImageURLs = splitImageURLs(imageURLs)
	return &c, nil
}

func splitImageURLs(concatenated string) []string {
	urls := []string{}
	for _, url := range strings.Split(concatenated, ",") {
		if strings.TrimSpace(url) != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
