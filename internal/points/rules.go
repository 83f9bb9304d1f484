// Package points holds the point values awarded for study activities.
package points

import "github.com/example/certifai/pkg/models"

// Point values per activity outcome.
const (
	FlashcardWrong = 1
	FlashcardGood  = 3
	FlashcardEasy  = 5

	CaseCorrect   = 10
	CasePartial   = 5
	CaseIncorrect = 1
)

// Case question evaluations returned by the grading function.
const (
	EvaluationCorrect   = "correct"
	EvaluationPartial   = "partial"
	EvaluationIncorrect = "incorrect"
)

// ForRating returns the points for a flash-card self-assessment; unknown ratings give 0.
func ForRating(rating int) int {
	switch rating {
	case models.RatingWrong:
		return FlashcardWrong
	case models.RatingGood:
		return FlashcardGood
	case models.RatingEasy:
		return FlashcardEasy
	}
	return 0
}

// ForEvaluation returns the points for one graded case answer.
// "error" and anything unrecognised give 0.
func ForEvaluation(evaluation string) int {
	switch evaluation {
	case EvaluationCorrect:
		return CaseCorrect
	case EvaluationPartial:
		return CasePartial
	case EvaluationIncorrect:
		return CaseIncorrect
	}
	return 0
}

// CaseTotal sums the points of every answer of a study case
func CaseTotal(evaluations []string) int {
	total := 0
	for _, e := range evaluations {
		total += ForEvaluation(e)
	}
	return total
}
