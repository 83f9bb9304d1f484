package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/certifai/pkg/models"
	"github.com/jmoiron/sqlx"
)

// UserMetadataRepository keeps the user metadata bag in the local database.
// It stands in for the remote user record when running offline.
type UserMetadataRepository struct {
	db     *sqlx.DB
	userID string
}

// NewUserMetadataRepository creates a new repository instance for one user
func NewUserMetadataRepository(db *sqlx.DB, userID string) *UserMetadataRepository {
	return &UserMetadataRepository{db: db, userID: userID}
}

type userMetadataRow struct {
	FullName       string `db:"full_name"`
	DailyGoal      int    `db:"daily_goal"`
	ProgressDate   string `db:"progress_date"`
	ProgressCount  int    `db:"progress_count"`
	StreakCount    int    `db:"streak_count"`
	StreakLastDate string `db:"streak_last_date"`
}

// CurrentMetadata returns the stored metadata, defaulted when the user has no row yet
func (r *UserMetadataRepository) CurrentMetadata(ctx context.Context) (models.UserMetadata, error) {
	var row userMetadataRow
	query := r.db.Rebind(`
		SELECT full_name, daily_goal, progress_date, progress_count, streak_count, streak_last_date
		FROM user_metadata
		WHERE user_id = ?
	`)
	err := r.db.GetContext(ctx, &row, query, r.userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserMetadata{}.Normalize(), nil
	}
	if err != nil {
		return models.UserMetadata{}, fmt.Errorf("failed to get user metadata: %w", err)
	}

	meta := models.UserMetadata{
		FullName:      row.FullName,
		DailyGoal:     row.DailyGoal,
		DailyProgress: models.DailyProgress{Date: row.ProgressDate, Count: row.ProgressCount},
		StudyStreak:   models.StudyStreak{Count: row.StreakCount, LastStudiedDate: row.StreakLastDate},
	}
	return meta.Normalize(), nil
}

// UpdateProgress writes the daily counter and the streak together in one statement
func (r *UserMetadataRepository) UpdateProgress(ctx context.Context, progress models.DailyProgress, streak models.StudyStreak) error {
	query := r.db.Rebind(`
		INSERT INTO user_metadata (user_id, progress_date, progress_count, streak_count, streak_last_date, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			progress_date = excluded.progress_date,
			progress_count = excluded.progress_count,
			streak_count = excluded.streak_count,
			streak_last_date = excluded.streak_last_date,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		r.userID,
		progress.Date,
		progress.Count,
		streak.Count,
		streak.LastStudiedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update user progress: %w", err)
	}
	return nil
}

// UpdateProfile sets the display name and daily goal of the local profile
func (r *UserMetadataRepository) UpdateProfile(ctx context.Context, fullName string, dailyGoal int) error {
	query := r.db.Rebind(`
		INSERT INTO user_metadata (user_id, full_name, daily_goal, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = excluded.full_name,
			daily_goal = excluded.daily_goal,
			updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, r.userID, fullName, dailyGoal); err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}
