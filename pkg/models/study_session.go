package models

import "time"

// Session types recorded in the study history.
const (
	SessionInteractive = "Interativa"
	SessionCase        = "Case"
	SessionSimulado    = "Simulado"
)

// SuccessRatio is the share of the maximum score that marks a session as successful.
const SuccessRatio = 0.7

// StudySession is one finished study activity kept in the user's history
type StudySession struct {
	ID             string    `json:"id,omitempty" db:"id"`
	Type           string    `json:"type" db:"type"`
	Certification  string    `json:"certification" db:"certification"`
	TopicTitle     string    `json:"topic_title" db:"topic_title"`
	ResultDisplay  string    `json:"result_display" db:"result_display"`
	IsSuccess      bool      `json:"is_success" db:"is_success"`
	ScoreAchieved  float64   `json:"score_achieved" db:"score_achieved"`
	ScoreTotal     int       `json:"score_total" db:"score_total"`
	ReviewFeedback string    `json:"review_feedback,omitempty" db:"review_feedback"`
	CreatedAt      time.Time `json:"-" db:"created_at"`
}
