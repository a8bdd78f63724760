package database

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/abhikanjia/waste-management-api/models"
)

// GetCategories returns the active categories in display order.
func (s *ComplaintService) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT categoryId, name, isActive, displayOrder
		 FROM categories
		 WHERE isActive = TRUE
		 ORDER BY displayOrder ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.IsActive, &c.DisplayOrder); err != nil {
			log.Errorf("Failed to scan category: %v", err)
			continue
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}
