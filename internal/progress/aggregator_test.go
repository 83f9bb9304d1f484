package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/certifai/pkg/models"
)

const (
	today     = "2024-05-10"
	yesterday = "2024-05-09"
	lastWeek  = "2024-05-03"
)

func meta(progressDate string, count int, streakDate string, streak int) models.UserMetadata {
	return models.UserMetadata{
		DailyProgress: models.DailyProgress{Date: progressDate, Count: count},
		StudyStreak:   models.StudyStreak{Count: streak, LastStudiedDate: streakDate},
	}
}

func TestApplyPoints(t *testing.T) {
	tests := []struct {
		name        string
		current     models.UserMetadata
		points      int
		wantCount   int
		wantStreak  *models.StudyStreak
		wantNoTouch bool
	}{
		{
			name:       "first activity ever",
			current:    models.UserMetadata{},
			points:     10,
			wantCount:  10,
			wantStreak: &models.StudyStreak{Count: 1, LastStudiedDate: today},
		},
		{
			name:       "second activity today adds and leaves the streak alone",
			current:    meta(today, 30, today, 4),
			points:     5,
			wantCount:  35,
			wantStreak: nil,
		},
		{
			name:       "first activity today after studying yesterday",
			current:    meta(yesterday, 80, yesterday, 4),
			points:     3,
			wantCount:  3,
			wantStreak: &models.StudyStreak{Count: 5, LastStudiedDate: today},
		},
		{
			name:       "gap of several days restarts the streak",
			current:    meta(lastWeek, 50, lastWeek, 9),
			points:     1,
			wantCount:  1,
			wantStreak: &models.StudyStreak{Count: 1, LastStudiedDate: today},
		},
		{
			name:       "stale counter with a streak counted today",
			current:    meta(yesterday, 12, today, 2),
			points:     7,
			wantCount:  7,
			wantStreak: nil,
		},
		{
			name:        "zero points change nothing",
			current:     meta(today, 30, today, 4),
			points:      0,
			wantNoTouch: true,
		},
		{
			name:        "negative points change nothing",
			current:     meta(yesterday, 30, yesterday, 4),
			points:      -5,
			wantNoTouch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := ApplyPoints(tt.current, tt.points, today, yesterday)
			if tt.wantNoTouch {
				assert.True(t, update.Empty())
				return
			}
			require.NotNil(t, update.DailyProgress)
			assert.Equal(t, models.DailyProgress{Date: today, Count: tt.wantCount}, *update.DailyProgress)
			assert.Equal(t, tt.wantStreak, update.StudyStreak)
		})
	}
}

func TestApplyPoints_EmptyYesterdayDoesNotMatchMissingDate(t *testing.T) {
	update := ApplyPoints(meta("", 0, "", 7), 2, today, "")
	require.NotNil(t, update.StudyStreak)
	assert.Equal(t, 1, update.StudyStreak.Count)
}

func TestApplyPoints_ConsecutiveDays(t *testing.T) {
	current := models.UserMetadata{}
	days := []struct{ today, yesterday string }{
		{"2024-02-27", "2024-02-26"},
		{"2024-02-28", "2024-02-27"},
		{"2024-02-29", "2024-02-28"},
		{"2024-03-01", "2024-02-29"},
	}
	for i, d := range days {
		update := ApplyPoints(current, 5, d.today, d.yesterday)
		progress, streak := update.Merge(current)
		current.DailyProgress, current.StudyStreak = progress, streak
		assert.Equal(t, i+1, current.StudyStreak.Count)
		assert.Equal(t, 5, current.DailyProgress.Count)
	}
}

func TestUpdate_Merge(t *testing.T) {
	current := meta(today, 20, today, 3)

	progress, streak := ApplyPoints(current, 5, today, yesterday).Merge(current)
	assert.Equal(t, models.DailyProgress{Date: today, Count: 25}, progress)
	assert.Equal(t, models.StudyStreak{Count: 3, LastStudiedDate: today}, streak, "omitted streak keeps the current value")

	progress, streak = Update{}.Merge(current)
	assert.Equal(t, current.DailyProgress, progress)
	assert.Equal(t, current.StudyStreak, streak)
}
