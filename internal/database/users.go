package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tutorhub/internal/models"
)

// UserNames resolves display names for a set of user ids in one query.
// Missing ids are simply absent from the result map.
func (db *DB) UserNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	query := `SELECT id, first_name, last_name FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string, len(ids))
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		names[user.ID] = user.DisplayName()
	}
	return names, rows.Err()
}

// TutorUserIDs maps tutor profile ids to their backing user ids.
func (db *DB) TutorUserIDs(ctx context.Context, tutorIDs []int64) (map[int64]int64, error) {
	if len(tutorIDs) == 0 {
		return map[int64]int64{}, nil
	}

	query := `SELECT tutor_id, user_id FROM tutor_profiles WHERE tutor_id IN (` + placeholders(len(tutorIDs)) + `)`
	rows, err := db.QueryContext(ctx, query, int64Args(tutorIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tutor profiles: %w", err)
	}
	defer rows.Close()

	userIDs := make(map[int64]int64, len(tutorIDs))
	for rows.Next() {
		var tutorID, userID int64
		if err := rows.Scan(&tutorID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan tutor profile: %w", err)
		}
		userIDs[tutorID] = userID
	}
	return userIDs, rows.Err()
}

// CourseTitles resolves course titles for a set of course ids in one query.
func (db *DB) CourseTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	query := `SELECT id, title FROM courses WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query course titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

// TutorExists reports whether a tutor profile with the given id exists.
func (db *DB) TutorExists(ctx context.Context, tutorID int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM tutor_profiles WHERE tutor_id = ?`, tutorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check tutor: %w", err)
	}
	return true, nil
}

// UpsertUser inserts or refreshes a directory user. Used by seeding.
func (db *DB) UpsertUser(ctx context.Context, user models.User) error {
	query := `INSERT INTO users (id, first_name, last_name) VALUES (?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name`
	if _, err := db.ExecContext(ctx, query, user.ID, user.FirstName, user.LastName); err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

// UpsertTutorProfile inserts or refreshes a tutor profile. Used by seeding.
func (db *DB) UpsertTutorProfile(ctx context.Context, profile models.TutorProfile) error {
	query := `INSERT INTO tutor_profiles (tutor_id, user_id, headline) VALUES (?, ?, ?)
			  ON CONFLICT(tutor_id) DO UPDATE SET user_id = excluded.user_id, headline = excluded.headline`
	if _, err := db.ExecContext(ctx, query, profile.TutorID, profile.UserID, profile.Headline); err != nil {
		return fmt.Errorf("failed to upsert tutor profile %d: %w", profile.TutorID, err)
	}
	return nil
}

// UpsertCourse inserts or refreshes a course. Used by seeding.
func (db *DB) UpsertCourse(ctx context.Context, course models.Course) error {
	query := `INSERT INTO courses (id, title) VALUES (?, ?)
			  ON CONFLICT(id) DO UPDATE SET title = excluded.title`
	if _, err := db.ExecContext(ctx, query, course.ID, course.Title); err != nil {
		return fmt.Errorf("failed to upsert course %d: %w", course.ID, err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
