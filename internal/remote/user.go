package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/example/certifai/pkg/models"
)

// User is the authenticated account as returned by the backend
type User struct {
	ID       string
	Email    string
	Metadata models.UserMetadata
}

type userResponse struct {
	ID           string                     `json:"id"`
	Email        string                     `json:"email"`
	UserMetadata map[string]json.RawMessage `json:"user_metadata"`
}

// CurrentUser fetches the authenticated user and normalizes its metadata bag.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if !c.Authenticated() {
		return nil, ErrUnauthenticated
	}
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, &resp, nil); err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}
	return &User{
		ID:       resp.ID,
		Email:    resp.Email,
		Metadata: decodeMetadata(resp.UserMetadata),
	}, nil
}

// CurrentMetadata returns the normalized metadata of the authenticated user
func (c *Client) CurrentMetadata(ctx context.Context) (models.UserMetadata, error) {
	u, err := c.CurrentUser(ctx)
	if err != nil {
		return models.UserMetadata{}, err
	}
	return u.Metadata, nil
}

// UpdateProgress writes the daily counter and the streak in one user update
func (c *Client) UpdateProgress(ctx context.Context, progress models.DailyProgress, streak models.StudyStreak) error {
	return c.UpdateUserData(ctx, map[string]interface{}{
		"daily_progress": progress,
		"study_streak":   streak,
	})
}

// UpdateUserData merges data into the authenticated user's metadata
func (c *Client) UpdateUserData(ctx context.Context, data map[string]interface{}) error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	body := map[string]interface{}{"data": data}
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", body, nil, nil); err != nil {
		return errors.Wrap(err, "failed to update user metadata")
	}
	return nil
}

// decodeMetadata applies the defaulting rules to the loosely typed metadata bag.
// A field of the wrong shape is treated as missing.
func decodeMetadata(raw map[string]json.RawMessage) models.UserMetadata {
	var meta models.UserMetadata

	if v, ok := raw["full_name"]; ok {
		var name string
		if json.Unmarshal(v, &name) == nil {
			meta.FullName = name
		}
	}
	if v, ok := raw["daily_goal"]; ok {
		var goal float64
		if json.Unmarshal(v, &goal) == nil {
			meta.DailyGoal = int(goal)
		}
	}
	if v, ok := raw["daily_progress"]; ok {
		var p struct {
			Date  *string  `json:"date"`
			Count *float64 `json:"count"`
		}
		if json.Unmarshal(v, &p) == nil {
			if p.Date != nil {
				meta.DailyProgress.Date = *p.Date
			}
			if p.Count != nil {
				meta.DailyProgress.Count = int(*p.Count)
			}
		}
	}
	if v, ok := raw["study_streak"]; ok {
		var s struct {
			Count           *float64 `json:"count"`
			LastStudiedDate *string  `json:"lastStudiedDate"`
		}
		if json.Unmarshal(v, &s) == nil {
			if s.Count != nil {
				meta.StudyStreak.Count = int(*s.Count)
			}
			if s.LastStudiedDate != nil {
				meta.StudyStreak.LastStudiedDate = *s.LastStudiedDate
			}
		}
	}
	return meta.Normalize()
}
