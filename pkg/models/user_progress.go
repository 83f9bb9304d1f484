package models

import "strings"

// DefaultDailyGoal is the daily point goal used when the user never set one.
const DefaultDailyGoal = 100

// DefaultDisplayName is shown when the account carries no full name.
const DefaultDisplayName = "Estudante"

// DailyProgress holds the points accumulated on one local calendar day.
type DailyProgress struct {
	Date  string `json:"date" db:"progress_date"` // YYYY-MM-DD in the user's timezone
	Count int    `json:"count" db:"progress_count"`
}

// StudyStreak counts consecutive local calendar days with at least one point-earning event.
type StudyStreak struct {
	Count           int    `json:"count" db:"streak_count"`
	LastStudiedDate string `json:"lastStudiedDate" db:"streak_last_date"`
}

// UserMetadata is the normalized view of the metadata bag stored on the user record.
// Every field carries a usable value; defaults are applied where it is decoded.
type UserMetadata struct {
	FullName      string        `json:"full_name"`
	DailyGoal     int           `json:"daily_goal"`
	DailyProgress DailyProgress `json:"daily_progress"`
	StudyStreak   StudyStreak   `json:"study_streak"`
}

// FirstName returns the first word of the full name, or the default display name.
func (m UserMetadata) FirstName() string {
	if first, _, _ := strings.Cut(m.FullName, " "); first != "" {
		return first
	}
	return DefaultDisplayName
}

// Normalize applies the defaulting rules for values that arrive missing or out of range.
func (m UserMetadata) Normalize() UserMetadata {
	if m.DailyGoal <= 0 {
		m.DailyGoal = DefaultDailyGoal
	}
	if m.DailyProgress.Count < 0 {
		m.DailyProgress.Count = 0
	}
	if m.StudyStreak.Count < 0 {
		m.StudyStreak.Count = 0
	}
	return m
}
