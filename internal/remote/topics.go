package remote

import (
	"context"

	"github.com/example/certifai/pkg/models"
)

// FetchTopics returns every (modulo, prova) pair known to the backend.
// Null fields become empty strings; a null result is an empty list.
func (c *Client) FetchTopics(ctx context.Context) ([]models.Topic, error) {
	var rows []struct {
		Modulo *string `json:"modulo"`
		Prova  *string `json:"prova"`
	}
	if err := c.RPC(ctx, "fn_get_all_topics", nil, &rows); err != nil {
		return nil, err
	}

	topics := make([]models.Topic, 0, len(rows))
	for _, r := range rows {
		var t models.Topic
		if r.Modulo != nil {
			t.Modulo = *r.Modulo
		}
		if r.Prova != nil {
			t.Prova = *r.Prova
		}
		topics = append(topics, t)
	}
	return topics, nil
}
