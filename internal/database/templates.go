package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tutorhub/internal/models"
	"tutorhub/internal/schedule"
)

const templateColumns = `id, tutor_id, weekday, start_time, end_time, location_mode, location_note, valid_from, valid_until, created_at, updated_at`

// CreateTemplate validates the candidate against the tutor's existing
// templates on the same weekday and inserts it, all inside one transaction
// so a concurrent writer cannot slip a conflicting row between the check and
// the insert. Returns ErrSlotOverlap without writing on conflict.
func (db *DB) CreateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := listTemplatesTx(ctx, tx, tpl.TutorID, tpl.Weekday)
	if err != nil {
		return err
	}
	if conflict := schedule.FindConflict(tpl, existing, 0); conflict != nil {
		return fmt.Errorf("%w: slot %d (%s-%s)", ErrSlotOverlap, conflict.ID, conflict.StartTime, conflict.EndTime)
	}

	now := time.Now().UTC()
	query := `INSERT INTO availability_templates
				(tutor_id, weekday, start_time, end_time, location_mode, location_note, valid_from, valid_until, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		tpl.TutorID,
		tpl.Weekday,
		tpl.StartTime.String(),
		tpl.EndTime.String(),
		tpl.LocationMode,
		tpl.LocationNote,
		dateOrNil(tpl.ValidFrom),
		dateOrNil(tpl.ValidUntil),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	tpl.ID = id
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	return tx.Commit()
}

// UpdateTemplate persists an already-merged template, re-running the overlap
// check against the tutor's other templates inside the same transaction.
func (db *DB) UpdateTemplate(ctx context.Context, tpl *models.AvailabilityTemplate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := listTemplatesTx(ctx, tx, tpl.TutorID, tpl.Weekday)
	if err != nil {
		return err
	}
	if conflict := schedule.FindConflict(tpl, existing, tpl.ID); conflict != nil {
		return fmt.Errorf("%w: slot %d (%s-%s)", ErrSlotOverlap, conflict.ID, conflict.StartTime, conflict.EndTime)
	}

	now := time.Now().UTC()
	query := `UPDATE availability_templates
			  SET weekday = ?, start_time = ?, end_time = ?, location_mode = ?, location_note = ?, valid_from = ?, valid_until = ?, updated_at = ?
			  WHERE id = ?`
	result, err := tx.ExecContext(ctx, query,
		tpl.Weekday,
		tpl.StartTime.String(),
		tpl.EndTime.String(),
		tpl.LocationMode,
		tpl.LocationNote,
		dateOrNil(tpl.ValidFrom),
		dateOrNil(tpl.ValidUntil),
		now,
		tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: availability slot %d", ErrNotFound, tpl.ID)
	}
	tpl.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) DeleteTemplate(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM availability_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: availability slot %d", ErrNotFound, id)
	}
	return nil
}

func (db *DB) GetTemplate(ctx context.Context, id int64) (*models.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM availability_templates WHERE id = ?`
	tpl, err := scanTemplate(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: availability slot %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns every template of the tutor, expired and future ones
// included, ordered by (weekday, start_time) for management views.
func (db *DB) ListTemplates(ctx context.Context, tutorID int64) ([]models.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + `
			  FROM availability_templates
			  WHERE tutor_id = ?
			  ORDER BY weekday, start_time`
	return db.queryTemplates(ctx, query, tutorID)
}

// ActiveTemplates returns the tutor's templates for one weekday whose
// validity window contains the given date.
func (db *DB) ActiveTemplates(ctx context.Context, tutorID int64, weekday int, day models.Date) ([]models.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + `
			  FROM availability_templates
			  WHERE tutor_id = ? AND weekday = ?
			    AND (valid_from IS NULL OR valid_from <= ?)
			    AND (valid_until IS NULL OR valid_until >= ?)
			  ORDER BY start_time`
	return db.queryTemplates(ctx, query, tutorID, weekday, day.String(), day.String())
}

func listTemplatesTx(ctx context.Context, tx *sql.Tx, tutorID int64, weekday int) ([]models.AvailabilityTemplate, error) {
	query := `SELECT ` + templateColumns + `
			  FROM availability_templates
			  WHERE tutor_id = ? AND weekday = ?`
	rows, err := tx.QueryContext(ctx, query, tutorID, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in tx: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

func (db *DB) queryTemplates(ctx context.Context, query string, args ...any) ([]models.AvailabilityTemplate, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()
	return collectTemplates(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.AvailabilityTemplate, error) {
	var (
		tpl        models.AvailabilityTemplate
		startStr   string
		endStr     string
		validFrom  sql.NullString
		validUntil sql.NullString
	)
	err := row.Scan(
		&tpl.ID, &tpl.TutorID, &tpl.Weekday, &startStr, &endStr,
		&tpl.LocationMode, &tpl.LocationNote, &validFrom, &validUntil,
		&tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tpl.StartTime, err = models.ParseTimeOfDay(startStr); err != nil {
		return nil, fmt.Errorf("failed to parse template start time: %w", err)
	}
	if tpl.EndTime, err = models.ParseTimeOfDay(endStr); err != nil {
		return nil, fmt.Errorf("failed to parse template end time: %w", err)
	}
	if tpl.ValidFrom, err = nilOrDate(validFrom); err != nil {
		return nil, err
	}
	if tpl.ValidUntil, err = nilOrDate(validUntil); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func collectTemplates(rows *sql.Rows) ([]models.AvailabilityTemplate, error) {
	var templates []models.AvailabilityTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, *tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func dateOrNil(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nilOrDate(raw sql.NullString) (*models.Date, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored date %q: %w", raw.String, err)
	}
	return &d, nil
}
