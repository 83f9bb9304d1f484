package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/certifai/pkg/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Connect(Options{Type: "sqlite", Path: filepath.Join(t.TempDir(), "data", "certifai.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConnect_UnsupportedType(t *testing.T) {
	_, err := Connect(Options{Type: "oracle"})
	assert.Error(t, err)
}

func TestConnect_SchemaIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, initializeSchema(db))
}

func TestKVRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVRepository(newTestDB(t))

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "topics", []byte(`{"topics":[]}`)))
	value, ok, err := repo.Get(ctx, "topics")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"topics":[]}`, string(value))

	require.NoError(t, repo.Set(ctx, "topics", []byte(`{"topics":[{"modulo":"a","prova":"b"}]}`)))
	value, _, err = repo.Get(ctx, "topics")
	require.NoError(t, err)
	assert.Equal(t, `{"topics":[{"modulo":"a","prova":"b"}]}`, string(value))
}

func TestUserMetadataRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserMetadataRepository(newTestDB(t), LocalUserID)

	meta, err := repo.CurrentMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserMetadata{DailyGoal: models.DefaultDailyGoal}, meta)

	require.NoError(t, repo.UpdateProgress(ctx,
		models.DailyProgress{Date: "2024-05-10", Count: 15},
		models.StudyStreak{Count: 3, LastStudiedDate: "2024-05-10"},
	))
	require.NoError(t, repo.UpdateProfile(ctx, "Ana Souza", 40))

	meta, err = repo.CurrentMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.UserMetadata{
		FullName:      "Ana Souza",
		DailyGoal:     40,
		DailyProgress: models.DailyProgress{Date: "2024-05-10", Count: 15},
		StudyStreak:   models.StudyStreak{Count: 3, LastStudiedDate: "2024-05-10"},
	}, meta)

	// progress updates keep the profile
	require.NoError(t, repo.UpdateProgress(ctx,
		models.DailyProgress{Date: "2024-05-11", Count: 5},
		models.StudyStreak{Count: 4, LastStudiedDate: "2024-05-11"},
	))
	meta, err = repo.CurrentMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", meta.FullName)
	assert.Equal(t, 4, meta.StudyStreak.Count)
}

func TestUserMetadataRepository_UsersAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	first := NewUserMetadataRepository(db, "first")
	second := NewUserMetadataRepository(db, "second")

	require.NoError(t, first.UpdateProgress(ctx, models.DailyProgress{Date: "2024-05-10", Count: 9}, models.StudyStreak{Count: 1, LastStudiedDate: "2024-05-10"}))

	meta, err := second.CurrentMetadata(ctx)
	require.NoError(t, err)
	assert.Zero(t, meta.DailyProgress.Count)
}

func TestStudySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStudySessionRepository(newTestDB(t), LocalUserID)

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Redes", "Identidade", "Armazenamento"} {
		id, err := repo.CreateSession(ctx, models.StudySession{
			Type:          models.SessionInteractive,
			Certification: "AZ-104",
			TopicTitle:    title,
			ResultDisplay: "10 pts",
			IsSuccess:     i%2 == 0,
			ScoreAchieved: 10,
			ScoreTotal:    12,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		assert.Len(t, id, 36)
	}

	sessions, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Armazenamento", sessions[0].TopicTitle)
	assert.Equal(t, "Identidade", sessions[1].TopicTitle)
	assert.True(t, sessions[0].IsSuccess)
	assert.False(t, sessions[1].IsSuccess)
	assert.True(t, sessions[0].CreatedAt.Equal(base.Add(2*time.Hour)))
}

func TestStudySessionRepository_Empty(t *testing.T) {
	repo := NewStudySessionRepository(newTestDB(t), LocalUserID)
	sessions, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}
