package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tutorhub/internal/models"
)

const bookingColumns = `id, tutor_id, student_id, start_time, end_time, course_id, meeting_link, notes, status, created_at, updated_at`

// CreateBooking checks for conflicting active bookings and inserts the new
// row inside one transaction. Two goroutines racing for the same window
// serialize on the write transaction, so exactly one of them sees zero
// conflicts and commits; the other gets ErrBookingConflict.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var conflicts int
	checkQuery := `SELECT COUNT(*) FROM bookings
				   WHERE tutor_id = ? AND status != 'cancelled'
				     AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, checkQuery, booking.TutorID, booking.EndTime, booking.StartTime).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("failed to check booking conflicts: %w", err)
	}
	if conflicts > 0 {
		return fmt.Errorf("%w: tutor %d already booked between %s and %s",
			ErrBookingConflict, booking.TutorID,
			booking.StartTime.Format(time.RFC3339), booking.EndTime.Format(time.RFC3339))
	}

	now := time.Now().UTC()
	insertQuery := `INSERT INTO bookings
					  (tutor_id, student_id, start_time, end_time, course_id, meeting_link, notes, status, created_at, updated_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insertQuery,
		booking.TutorID,
		booking.StudentID,
		booking.StartTime,
		booking.EndTime,
		booking.CourseID,
		booking.MeetingLink,
		booking.Notes,
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// BookingsByStudent returns all of the student's bookings, newest first.
func (db *DB) BookingsByStudent(ctx context.Context, studentID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE student_id = ?
			  ORDER BY start_time DESC`
	return db.queryBookings(ctx, query, studentID)
}

// BookingsByTutor returns all of the tutor's bookings, newest first.
func (db *DB) BookingsByTutor(ctx context.Context, tutorID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE tutor_id = ?
			  ORDER BY start_time DESC`
	return db.queryBookings(ctx, query, tutorID)
}

// SearchBookings applies the optional filter fields conjunctively.
func (db *DB) SearchBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.StudentID != nil {
		clauses = append(clauses, "student_id = ?")
		args = append(args, *filter.StudentID)
	}
	if filter.TutorID != nil {
		clauses = append(clauses, "tutor_id = ?")
		args = append(args, *filter.TutorID)
	}
	if filter.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, *filter.Status)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_time DESC"

	return db.queryBookings(ctx, query, args...)
}

// UpdateBookingStatus sets the booking's status and returns the updated row.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) (*models.Booking, error) {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("%w: booking %d", ErrNotFound, id)
	}
	return db.GetBooking(ctx, id)
}

// ActiveBookingsOn returns the tutor's non-cancelled bookings whose window
// intersects the given calendar day.
func (db *DB) ActiveBookingsOn(ctx context.Context, tutorID int64, day models.Date) ([]models.Booking, error) {
	dayStart := day.Time()
	dayEnd := dayStart.Add(24 * time.Hour)
	return db.ActiveBookingsBetween(ctx, tutorID, dayStart, dayEnd)
}

// ActiveBookingsBetween returns the tutor's non-cancelled bookings
// overlapping [from, to).
func (db *DB) ActiveBookingsBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE tutor_id = ? AND status != 'cancelled'
			    AND start_time < ? AND end_time > ?
			  ORDER BY start_time`
	return db.queryBookings(ctx, query, tutorID, to, from)
}

// BookingsByTutorBetween returns the tutor's bookings of every status
// starting inside [from, to), oldest first. Used for report exports.
func (db *DB) BookingsByTutorBetween(ctx context.Context, tutorID int64, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE tutor_id = ? AND start_time >= ? AND start_time < ?
			  ORDER BY start_time`
	return db.queryBookings(ctx, query, tutorID, from, to)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID, &booking.TutorID, &booking.StudentID,
		&booking.StartTime, &booking.EndTime,
		&booking.CourseID, &booking.MeetingLink, &booking.Notes,
		&booking.Status, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()
	return &booking, nil
}
