package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abhikanjia/waste-management-api/models"
)

// CreateOrUpdateUser upserts a reporter profile. Counters are left alone:
// only the complaint lifecycle writes them.
func (s *ComplaintService) CreateOrUpdateUser(ctx context.Context, req *models.CreateOrUpdateUserRequest) error {
	lang := req.LanguagePreference
	if lang == "" {
		lang = "en"
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (userId, name, email, phone, languagePreference, profilePictureUrl)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE name = ?, email = ?, phone = ?,
		                         languagePreference = ?, profilePictureUrl = ?`,
		req.UserID, req.Name, req.Email, req.Phone, lang, req.ProfilePictureURL,
		req.Name, req.Email, req.Phone, lang, req.ProfilePictureURL)
	logResult("createOrUpdateUser", result, err, false)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser returns one reporter profile including its counters.
func (s *ComplaintService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT userId, name, email, phone, languagePreference, profilePictureUrl,
		        totalComplaints, resolvedComplaints, pendingComplaints, createdAt, updatedAt
		 FROM users WHERE userId = ?`, userID).
		Scan(&u.UserID, &u.Name, &u.Email, &u.Phone, &u.LanguagePreference, &u.ProfilePictureURL,
			&u.TotalComplaints, &u.ResolvedComplaints, &u.PendingComplaints, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetUserStats returns the counter slice. A user without a row yet gets
// zeroes, not an error.
func (s *ComplaintService) GetUserStats(ctx context.Context, userID string) (*models.UserStats, error) {
	var stats models.UserStats
	err := s.db.QueryRowContext(ctx,
		`SELECT totalComplaints, resolvedComplaints, pendingComplaints
		 FROM users WHERE userId = ?`, userID).
		Scan(&stats.TotalComplaints, &stats.ResolvedComplaints, &stats.PendingComplaints)
	if err == sql.ErrNoRows {
		return &models.UserStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	return &stats, nil
}
