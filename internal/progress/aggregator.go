// Package progress turns point awards into the daily counter and study streak kept on the user record.
package progress

import "github.com/example/certifai/pkg/models"

// Update carries the metadata fields changed by one award.
// StudyStreak is nil when the streak was already counted today.
type Update struct {
	DailyProgress *models.DailyProgress
	StudyStreak   *models.StudyStreak
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.DailyProgress == nil && u.StudyStreak == nil
}

// Merge applies the update on top of current and returns the full pair to persist.
func (u Update) Merge(current models.UserMetadata) (models.DailyProgress, models.StudyStreak) {
	progress, streak := current.DailyProgress, current.StudyStreak
	if u.DailyProgress != nil {
		progress = *u.DailyProgress
	}
	if u.StudyStreak != nil {
		streak = *u.StudyStreak
	}
	return progress, streak
}

// ApplyPoints computes the metadata changes caused by earning points on today.
// It performs no I/O. Callers filter out points <= 0; such calls return an empty Update.
func ApplyPoints(current models.UserMetadata, points int, today, yesterday string) Update {
	if points <= 0 {
		return Update{}
	}

	count := points
	if current.DailyProgress.Date == today {
		count = current.DailyProgress.Count + points
	}
	update := Update{
		DailyProgress: &models.DailyProgress{Date: today, Count: count},
	}

	last := current.StudyStreak.LastStudiedDate
	if last == today {
		return update
	}
	streak := 1
	if last != "" && last == yesterday {
		streak = current.StudyStreak.Count + 1
	}
	update.StudyStreak = &models.StudyStreak{Count: streak, LastStudiedDate: today}
	return update
}
