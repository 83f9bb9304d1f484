package progress

import (
	"math"

	"github.com/example/certifai/pkg/models"
)

// Summary is what the home screen shows about today's study.
type Summary struct {
	FirstName  string
	Points     int
	DailyGoal  int
	Percentage float64
	Streak     int
}

// Summarize builds the home summary for the given calendar days.
// Points from a previous day read as zero, and a streak whose last day is
// neither today nor yesterday is already broken and reads as zero.
func Summarize(meta models.UserMetadata, today, yesterday string) Summary {
	meta = meta.Normalize()

	s := Summary{
		FirstName: meta.FirstName(),
		DailyGoal: meta.DailyGoal,
	}
	if meta.DailyProgress.Date == today {
		s.Points = meta.DailyProgress.Count
	}
	if last := meta.StudyStreak.LastStudiedDate; last != "" && (last == today || last == yesterday) {
		s.Streak = meta.StudyStreak.Count
	}
	s.Percentage = math.Min(100, float64(s.Points)/float64(s.DailyGoal)*100)
	return s
}
