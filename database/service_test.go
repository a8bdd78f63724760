package database

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"github.com/abhikanjia/waste-management-api/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func complaintRowColumns() []string {
	return []string{
		"complaintId", "userId", "userName", "userEmail", "userPhone",
		"title", "description", "categoryId", "categoryName",
		"latitude", "longitude", "address", "city", "state", "pincode", "locality",
		"status", "priority", "submittedAt", "updatedAt", "resolvedAt",
		"imageUrls",
	}
}

func addComplaintRow(rows *sqlmock.Rows, id, userID, status, city, imageURLs string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, userID, "Jane", "jane@example.com", "555-0100",
		"Overflowing bin", "The bin on the corner is overflowing", "garbage", "Garbage & Waste",
		12.9716, 77.5946, "1 Main St", city, "KA", "560001", "Indiranagar",
		status, "medium", now, now, nil,
		imageURLs)
}

func TestCreateComplaint(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO complaints").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO complaint_images").
			WithArgs(sqlmock.AnyArg(), "https://img/a.jpg", true, 0).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO complaint_images").
			WithArgs(sqlmock.AnyArg(), "https://img/b.jpg", false, 1).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec("INSERT INTO complaint_images").
			WithArgs(sqlmock.AnyArg(), "https://img/c.jpg", false, 2).
			WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectExec("UPDATE users SET totalComplaints").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		storedAt := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT submittedAt, updatedAt FROM complaints").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"submittedAt", "updatedAt"}).
				AddRow(storedAt, storedAt))
		mock.ExpectCommit()

		complaint, err := svc.CreateComplaint(context.Background(), &models.CreateComplaintRequest{
			UserID:    "user-1",
			Title:     "Overflowing bin",
			City:      "Bengaluru",
			ImageURLs: []string{"https://img/a.jpg", "https://img/b.jpg", "https://img/c.jpg"},
		})
		if err != nil {
			t.Fatalf("CreateComplaint failed: %v", err)
		}

		if !complaint.SubmittedAt.Equal(storedAt) || !complaint.UpdatedAt.Equal(storedAt) {
			t.Errorf("Expected stored timestamps %v, got submitted=%v updated=%v",
				storedAt, complaint.SubmittedAt, complaint.UpdatedAt)
		}

		if !strings.HasPrefix(complaint.ComplaintID, "COMP-") {
			t.Errorf("Complaint id %q does not have COMP- prefix", complaint.ComplaintID)
		}
		if complaint.Status != models.StatusSubmitted {
			t.Errorf("Expected default status %q, got %q", models.StatusSubmitted, complaint.Status)
		}
		if complaint.Priority != models.PriorityMedium {
			t.Errorf("Expected default priority %q, got %q", models.PriorityMedium, complaint.Priority)
		}
		if len(complaint.ImageURLs) != 3 {
			t.Errorf("Expected 3 image urls, got %d", len(complaint.ImageURLs))
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestCreateComplaintNoImages(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO complaints").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE users SET totalComplaints").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT submittedAt, updatedAt FROM complaints").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"submittedAt", "updatedAt"}).
				AddRow(time.Now(), time.Now()))
		mock.ExpectCommit()

		complaint, err := svc.CreateComplaint(context.Background(), &models.CreateComplaintRequest{
			UserID: "user-1",
			Title:  "Broken streetlight",
			Status: "acknowledged",
		})
		if err != nil {
			t.Fatalf("CreateComplaint failed: %v", err)
		}
		if complaint.Status != "acknowledged" {
			t.Errorf("Expected caller-supplied status to win, got %q", complaint.Status)
		}
		if len(complaint.ImageURLs) != 0 {
			t.Errorf("Expected no image urls, got %d", len(complaint.ImageURLs))
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestUpdateStatusResolve(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status, userId FROM complaints").
			WithArgs("COMP-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "userId"}).
				AddRow("acknowledged", "owner-1"))
		mock.ExpectExec("UPDATE complaints").
			WithArgs("resolved", "resolved", "COMP-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO complaint_status_history").
			WithArgs("COMP-1", "actor-1", "acknowledged", "resolved", "fixed it").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE users SET resolvedComplaints").
			WithArgs("owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.UpdateStatus(context.Background(), "COMP-1", &models.UpdateStatusRequest{
			Status: "resolved",
			UserID: "actor-1",
			Notes:  "fixed it",
		})
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestUpdateStatusAlreadyResolved(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		// No counter update, but history still gets a row.
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status, userId FROM complaints").
			WithArgs("COMP-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "userId"}).
				AddRow("resolved", "owner-1"))
		mock.ExpectExec("UPDATE complaints").
			WithArgs("resolved", "resolved", "COMP-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO complaint_status_history").
			WithArgs("COMP-1", "actor-1", "resolved", "resolved", "").
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		err := svc.UpdateStatus(context.Background(), "COMP-1", &models.UpdateStatusRequest{
			Status: "resolved",
			UserID: "actor-1",
		})
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestUpdateStatusNotFound(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status, userId FROM complaints").
			WithArgs("COMP-missing").
			WillReturnRows(sqlmock.NewRows([]string{"status", "userId"}))
		mock.ExpectRollback()

		err := svc.UpdateStatus(context.Background(), "COMP-missing", &models.UpdateStatusRequest{
			Status: "resolved",
		})
		if err != ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetComplaints(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectQuery("SELECT COUNT").
			WithArgs("user-1", "submitted").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		rows := sqlmock.NewRows(complaintRowColumns())
		addComplaintRow(rows, "COMP-2", "user-1", "submitted", "Bengaluru", "https://img/a.jpg,https://img/b.jpg")
		addComplaintRow(rows, "COMP-1", "user-1", "submitted", "Bengaluru", "")
		mock.ExpectQuery("SELECT c.complaintId").
			WithArgs("user-1", "submitted", 2, 0).
			WillReturnRows(rows)

		complaints, total, err := svc.GetComplaints(context.Background(), &ComplaintFilter{
			UserID: "user-1",
			Status: "submitted",
			Limit:  2,
		})
		if err != nil {
			t.Fatalf("GetComplaints failed: %v", err)
		}
		if total != 12 {
			t.Errorf("Expected total 12, got %d", total)
		}
		if len(complaints) != 2 {
			t.Fatalf("Expected 2 complaints, got %d", len(complaints))
		}
		if len(complaints[0].ImageURLs) != 2 {
			t.Errorf("Expected 2 image urls on first complaint, got %d", len(complaints[0].ImageURLs))
		}
		if complaints[0].ImageURLs[0] != "https://img/a.jpg" {
			t.Errorf("Image order not preserved: %v", complaints[0].ImageURLs)
		}
		if len(complaints[1].ImageURLs) != 0 {
			t.Errorf("Expected no image urls on second complaint, got %v", complaints[1].ImageURLs)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetComplaintsNoFilters(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT c.complaintId").
			WithArgs(defaultListLimit, 0).
			WillReturnRows(sqlmock.NewRows(complaintRowColumns()))

		complaints, total, err := svc.GetComplaints(context.Background(), &ComplaintFilter{})
		if err != nil {
			t.Fatalf("GetComplaints failed: %v", err)
		}
		if total != 0 || len(complaints) != 0 {
			t.Errorf("Expected empty result, got total=%d len=%d", total, len(complaints))
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetComplaintByID(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		rows := sqlmock.NewRows(complaintRowColumns())
		addComplaintRow(rows, "COMP-1", "user-1", "in_progress", "Bengaluru", "https://img/a.jpg")
		mock.ExpectQuery("SELECT c.complaintId").
			WithArgs("COMP-1").
			WillReturnRows(rows)

		complaint, err := svc.GetComplaintByID(context.Background(), "COMP-1")
		if err != nil {
			t.Fatalf("GetComplaintByID failed: %v", err)
		}
		if complaint.Status != "in_progress" {
			t.Errorf("Expected status in_progress, got %q", complaint.Status)
		}
		if len(complaint.ImageURLs) != 1 {
			t.Errorf("Expected 1 image url, got %d", len(complaint.ImageURLs))
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetComplaintByIDNotFound(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		mock.ExpectQuery("SELECT c.complaintId").
			WithArgs("COMP-missing").
			WillReturnRows(sqlmock.NewRows(complaintRowColumns()))

		_, err := svc.GetComplaintByID(context.Background(), "COMP-missing")
		if err != ErrNotFound {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetStatusHistory(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		base := time.Now()
		mock.ExpectQuery("SELECT id, complaintId, userId, previousStatus").
			WithArgs("COMP-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "complaintId", "userId", "previousStatus", "newStatus", "changedBy", "notes", "createdAt",
			}).
				AddRow(1, "COMP-1", "actor-1", "submitted", "acknowledged", "user", "", base).
				AddRow(2, "COMP-1", "actor-1", "acknowledged", "resolved", "user", "done", base.Add(time.Hour)))

		entries, err := svc.GetStatusHistory(context.Background(), "COMP-1")
		if err != nil {
			t.Fatalf("GetStatusHistory failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0].PreviousStatus != "submitted" || entries[0].NewStatus != "acknowledged" {
			t.Errorf("Unexpected first entry: %+v", entries[0])
		}
		if entries[1].PreviousStatus != "acknowledged" || entries[1].NewStatus != "resolved" {
			t.Errorf("Unexpected second entry: %+v", entries[1])
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}

func TestGetMapPins(t *testing.T) {
	it(func() {
		svc := NewComplaintService(db)

		// The viewport gets extended by half its size on every side.
		mock.ExpectQuery("SELECT complaintId, latitude, longitude, status").
			WithArgs(9.0, 13.0, 75.0, 79.0).
			WillReturnRows(sqlmock.NewRows([]string{"complaintId", "latitude", "longitude", "status"}).
				AddRow("COMP-1", 11.0, 77.0, "submitted").
				AddRow("COMP-2", 11.5, 76.5, "resolved"))

		pins, err := svc.GetMapPins(context.Background(), models.ViewPort{
			LatMin: 10, LatMax: 12, LonMin: 76, LonMax: 78,
		})
		if err != nil {
			t.Fatalf("GetMapPins failed: %v", err)
		}
		if len(pins) != 2 {
			t.Fatalf("Expected 2 pins, got %d", len(pins))
		}
		if pins[0].Count != 1 || pins[0].ComplaintID != "COMP-1" {
			t.Errorf("Unexpected pin: %+v", pins[0])
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})
}
