package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema contains the database schema for complaint tracking.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    userId VARCHAR(128) PRIMARY KEY,
    name VARCHAR(256),
    email VARCHAR(256),
    phone VARCHAR(32),
    languagePreference VARCHAR(8) DEFAULT 'en',
    profilePictureUrl TEXT,
    totalComplaints INT NOT NULL DEFAULT 0,
    resolvedComplaints INT NOT NULL DEFAULT 0,
    pendingComplaints INT NOT NULL DEFAULT 0,
    createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
    categoryId VARCHAR(64) PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    isActive BOOLEAN NOT NULL DEFAULT TRUE,
    displayOrder INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS complaints (
    complaintId VARCHAR(64) PRIMARY KEY,
    userId VARCHAR(128) NOT NULL,
    userName VARCHAR(256),
    userEmail VARCHAR(256),
    userPhone VARCHAR(32),
    title VARCHAR(512) NOT NULL,
    description TEXT,
    categoryId VARCHAR(64),
    categoryName VARCHAR(128),
    latitude DOUBLE NOT NULL DEFAULT 0,
    longitude DOUBLE NOT NULL DEFAULT 0,
    address TEXT,
    city VARCHAR(128),
    state VARCHAR(128),
    pincode VARCHAR(16),
    locality VARCHAR(256),
    status VARCHAR(32) NOT NULL DEFAULT 'submitted',
    priority VARCHAR(16) NOT NULL DEFAULT 'medium',
    submittedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updatedAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    resolvedAt TIMESTAMP NULL DEFAULT NULL,
    INDEX idx_complaints_user (userId),
    INDEX idx_complaints_status (status),
    INDEX idx_complaints_category (categoryId),
    INDEX idx_complaints_city (city),
    INDEX idx_complaints_submitted (submittedAt),
    INDEX idx_complaints_location (latitude, longitude)
);

CREATE TABLE IF NOT EXISTS complaint_images (
    id INT AUTO_INCREMENT PRIMARY KEY,
    complaintId VARCHAR(64) NOT NULL,
    imageUrl TEXT NOT NULL,
    isThumbnail BOOLEAN NOT NULL DEFAULT FALSE,
    uploadOrder INT NOT NULL DEFAULT 0,
    FOREIGN KEY (complaintId) REFERENCES complaints(complaintId) ON DELETE CASCADE,
    UNIQUE KEY unique_complaint_order (complaintId, uploadOrder)
);

CREATE TABLE IF NOT EXISTS complaint_status_history (
    id INT AUTO_INCREMENT PRIMARY KEY,
    complaintId VARCHAR(64) NOT NULL,
    userId VARCHAR(128),
    previousStatus VARCHAR(32),
    newStatus VARCHAR(32) NOT NULL,
    changedBy VARCHAR(32) NOT NULL DEFAULT 'user',
    notes TEXT,
    createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (complaintId) REFERENCES complaints(complaintId) ON DELETE CASCADE,
    INDEX idx_history_complaint (complaintId, createdAt)
);

CREATE TABLE IF NOT EXISTS notifications (
    notificationId INT AUTO_INCREMENT PRIMARY KEY,
    userId VARCHAR(128) NOT NULL,
    type VARCHAR(32),
    title VARCHAR(512),
    body TEXT,
    complaintId VARCHAR(64) NULL,
    status VARCHAR(32) NULL,
    isRead BOOLEAN NOT NULL DEFAULT FALSE,
    createdAt TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    readAt TIMESTAMP NULL DEFAULT NULL,
    INDEX idx_notifications_user (userId, createdAt),
    INDEX idx_notifications_unread (userId, isRead)
);
`

// CategorySeed inserts the default civic complaint categories. INSERT IGNORE
// keeps deployments free to rename or deactivate rows afterwards.
const CategorySeed = `
INSERT IGNORE INTO categories (categoryId, name, isActive, displayOrder) VALUES
    ('garbage', 'Garbage & Waste', TRUE, 1),
    ('road', 'Roads & Potholes', TRUE, 2),
    ('water', 'Water Supply', TRUE, 3),
    ('drainage', 'Drainage & Sewage', TRUE, 4),
    ('streetlight', 'Street Lighting', TRUE, 5),
    ('encroachment', 'Encroachment', TRUE, 6),
    ('other', 'Other', TRUE, 99);
`

// InitializeSchema creates the tables and seeds reference data.
func InitializeSchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec(CategorySeed); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
