package topics

import (
	"context"

	"github.com/example/certifai/pkg/models"
)

// Source is the source of truth for the topic list
type Source interface {
	FetchTopics(ctx context.Context) ([]models.Topic, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context) ([]models.Topic, error)

func (f SourceFunc) FetchTopics(ctx context.Context) ([]models.Topic, error) {
	return f(ctx)
}
