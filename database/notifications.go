package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apex/log"

	"github.com/abhikanjia/waste-management-api/models"
)

// CreateNotification appends one mailbox entry and returns its id.
func (s *ComplaintService) CreateNotification(ctx context.Context, req *models.CreateNotificationRequest) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (userId, type, title, body, complaintId, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.UserID, req.Type, req.Title, req.Body, req.ComplaintID, req.Status)
	logResult("createNotification", result, err, true)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get notification id: %w", err)
	}
	return id, nil
}

// GetNotifications returns one page of a user's mailbox, newest first.
func (s *ComplaintService) GetNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT notificationId, userId, type, title, body, complaintId, status, isRead, createdAt, readAt
		 FROM notifications
		 WHERE userId = ?
		 ORDER BY createdAt DESC
		 LIMIT ? OFFSET ?`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// GetUnreadNotifications returns all unread entries, newest first.
func (s *ComplaintService) GetUnreadNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT notificationId, userId, type, title, body, complaintId, status, isRead, createdAt, readAt
		 FROM notifications
		 WHERE userId = ? AND isRead = FALSE
		 ORDER BY createdAt DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread notifications: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

// MarkNotificationRead flips one entry to read and stamps the read time.
func (s *ComplaintService) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET isRead = TRUE, readAt = NOW()
		 WHERE notificationId = ?`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead flips every unread entry for the user. A second
// call affects zero rows and still succeeds.
func (s *ComplaintService) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET isRead = TRUE, readAt = NOW()
		 WHERE userId = ? AND isRead = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func collectNotifications(rows *sql.Rows) ([]models.Notification, error) {
	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var complaintID, status sql.NullString
		var readAt sql.NullTime
		if err := rows.Scan(&n.NotificationID, &n.UserID, &n.Type, &n.Title, &n.Body,
			&complaintID, &status, &n.IsRead, &n.CreatedAt, &readAt); err != nil {
			log.Errorf("Failed to scan notification: %v", err)
			continue
		}
		if complaintID.Valid {
			n.ComplaintID = &complaintID.String
		}
		if status.Valid {
			n.Status = &status.String
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}
