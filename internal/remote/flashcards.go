package remote

import (
	"context"
	"strings"

	"github.com/example/certifai/pkg/models"
)

// FlashcardsForReview returns up to limit cards of the exam that are due for review
func (c *Client) FlashcardsForReview(ctx context.Context, exam string, limit int) ([]models.Flashcard, error) {
	params := map[string]interface{}{
		"p_prova": strings.TrimSpace(exam),
		"p_limit": limit,
	}
	cards := []models.Flashcard{}
	if err := c.RPC(ctx, "fn_get_flashcards_for_review", params, &cards); err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	return cards, nil
}

// UpdateFlashcardProgress records the user's self-assessment of a card
func (c *Client) UpdateFlashcardProgress(ctx context.Context, cardID int64, rating int) error {
	params := map[string]interface{}{
		"p_flash_card_id": cardID,
		"p_rating":        rating,
	}
	return c.RPC(ctx, "fn_update_flashcard_progress", params, nil)
}
