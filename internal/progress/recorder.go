package progress

import (
	"context"
	"sync"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/pkg/models"
)

// MetadataStore is the user record holding the daily counter and the streak.
// UpdateProgress must write both values in a single update.
type MetadataStore interface {
	CurrentMetadata(ctx context.Context) (models.UserMetadata, error)
	UpdateProgress(ctx context.Context, progress models.DailyProgress, streak models.StudyStreak) error
}

// Recorder performs the read-modify-write of the progress fields for point awards.
type Recorder struct {
	store MetadataStore
	clock Clock
	log   *logger.Logger

	// one award in flight at a time
	mu sync.Mutex
}

// NewRecorder creates a Recorder
func NewRecorder(store MetadataStore, clock Clock, log *logger.Logger) *Recorder {
	return &Recorder{
		store: store,
		clock: clock,
		log:   log.With("component", "progress.Recorder"),
	}
}

// Award adds points to today's counter and advances the streak.
// Failures are logged and swallowed: the triggering action is already complete for the user,
// and the points are not retried. It returns the update that was persisted, empty otherwise.
func (r *Recorder) Award(ctx context.Context, points int) Update {
	if points <= 0 {
		return Update{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.store.CurrentMetadata(ctx)
	if err != nil {
		r.log.Error("failed to read user metadata, points dropped", "points", points, "error", err)
		return Update{}
	}

	today, yesterday := r.clock.Days()
	update := ApplyPoints(current, points, today, yesterday)
	progress, streak := update.Merge(current)

	if err := r.store.UpdateProgress(ctx, progress, streak); err != nil {
		r.log.Error("failed to save points and streak, points dropped", "points", points, "error", err)
		return Update{}
	}

	r.log.Info("points recorded",
		"points", points,
		"daily_count", progress.Count,
		"streak", streak.Count,
		"streak_advanced", update.StudyStreak != nil,
	)
	return update
}
