package remote

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/example/certifai/pkg/models"
)

// SessionTable is the table holding the study history
const SessionTable = "simulado_sessions"

// CreateSession inserts a finished study session and returns its id
func (c *Client) CreateSession(ctx context.Context, session models.StudySession) (string, error) {
	var inserted []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := c.Insert(ctx, SessionTable, session, &inserted); err != nil {
		return "", err
	}
	if len(inserted) == 0 || len(inserted[0].ID) == 0 {
		return "", nil
	}
	return strings.Trim(string(inserted[0].ID), `"`), nil
}
