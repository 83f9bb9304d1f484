package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMetadata_FirstName(t *testing.T) {
	assert.Equal(t, "Ana", UserMetadata{FullName: "Ana Paula Souza"}.FirstName())
	assert.Equal(t, "Carlos", UserMetadata{FullName: "Carlos"}.FirstName())
	assert.Equal(t, DefaultDisplayName, UserMetadata{}.FirstName())
	assert.Equal(t, DefaultDisplayName, UserMetadata{FullName: " leading"}.FirstName())
}

func TestUserMetadata_Normalize(t *testing.T) {
	got := UserMetadata{
		DailyGoal:     -10,
		DailyProgress: DailyProgress{Date: "2024-05-10", Count: -3},
		StudyStreak:   StudyStreak{Count: -1, LastStudiedDate: "2024-05-09"},
	}.Normalize()

	assert.Equal(t, UserMetadata{
		DailyGoal:     DefaultDailyGoal,
		DailyProgress: DailyProgress{Date: "2024-05-10"},
		StudyStreak:   StudyStreak{LastStudiedDate: "2024-05-09"},
	}, got)

	assert.Equal(t, 40, UserMetadata{DailyGoal: 40}.Normalize().DailyGoal)
}
