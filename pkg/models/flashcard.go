package models

// Flashcard is a card due for review, as returned by the backend
type Flashcard struct {
	ID    int64  `json:"flash_card_id"`
	Front string `json:"front"`
	Back  string `json:"back"`
	Topic string `json:"topico,omitempty"`
}

// Flash-card self-assessment ratings sent back to the backend.
const (
	RatingWrong = 1
	RatingGood  = 2
	RatingEasy  = 3
)
