package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/certifai/pkg/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// StudySessionRepository handles database operations for the study history
type StudySessionRepository struct {
	db     *sqlx.DB
	userID string
}

// NewStudySessionRepository creates a new repository instance for one user
func NewStudySessionRepository(db *sqlx.DB, userID string) *StudySessionRepository {
	return &StudySessionRepository{db: db, userID: userID}
}

// CreateSession inserts a session and returns its new id
func (r *StudySessionRepository) CreateSession(ctx context.Context, session models.StudySession) (string, error) {
	id := uuid.NewString()
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := r.db.Rebind(`
		INSERT INTO study_sessions (
			id, user_id, type, certification, topic_title, result_display,
			is_success, score_achieved, score_total, review_feedback, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		id,
		r.userID,
		session.Type,
		session.Certification,
		session.TopicTitle,
		session.ResultDisplay,
		session.IsSuccess,
		session.ScoreAchieved,
		session.ScoreTotal,
		session.ReviewFeedback,
		createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create study session: %w", err)
	}
	return id, nil
}

// ListRecent returns the user's latest sessions, newest first
func (r *StudySessionRepository) ListRecent(ctx context.Context, limit int) ([]models.StudySession, error) {
	query := r.db.Rebind(`
		SELECT id, type, certification, topic_title, result_display,
		       is_success, score_achieved, score_total, review_feedback, created_at
		FROM study_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`)
	sessions := []models.StudySession{}
	if err := r.db.SelectContext(ctx, &sessions, query, r.userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", err)
	}
	return sessions, nil
}
