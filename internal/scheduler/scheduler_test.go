package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/pkg/models"
)

type fixedClock struct{ today, yesterday string }

func (c fixedClock) Days() (string, string) { return c.today, c.yesterday }

type staticMetadata struct {
	meta models.UserMetadata
	err  error
}

func (s staticMetadata) CurrentMetadata(context.Context) (models.UserMetadata, error) {
	return s.meta, s.err
}

func (s staticMetadata) UpdateProgress(context.Context, models.DailyProgress, models.StudyStreak) error {
	return errors.New("read only")
}

type recordingNotifier struct {
	mu      sync.Mutex
	sent    map[int64]int
	failFor int64
}

func (n *recordingNotifier) SendStreakReminder(chatID int64, streak int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if chatID == n.failFor {
		return errors.New("chat not found")
	}
	if n.sent == nil {
		n.sent = make(map[int64]int)
	}
	n.sent[chatID] = streak
	return nil
}

type countingRevalidator struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRevalidator) Revalidate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return false
}

func (r *countingRevalidator) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var clock = fixedClock{today: "2024-05-10", yesterday: "2024-05-09"}

func TestRunStreakCheck(t *testing.T) {
	tests := []struct {
		name   string
		streak models.StudyStreak
		want   int
	}{
		{"counted yesterday", models.StudyStreak{Count: 4, LastStudiedDate: "2024-05-09"}, 2},
		{"already counted today", models.StudyStreak{Count: 5, LastStudiedDate: "2024-05-10"}, 0},
		{"streak already broken", models.StudyStreak{Count: 9, LastStudiedDate: "2024-05-01"}, 0},
		{"no streak", models.StudyStreak{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			store := staticMetadata{meta: models.UserMetadata{StudyStreak: tt.streak}}
			s := New(Options{ChatIDs: []int64{10, 20}, ReminderHour: -1}, nil, store, clock, notifier, logger.Nop())

			sent, err := s.RunStreakCheck(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sent)
			if tt.want > 0 {
				assert.Equal(t, map[int64]int{10: tt.streak.Count, 20: tt.streak.Count}, notifier.sent)
			}
		})
	}
}

func TestRunStreakCheck_SendFailureSkipsChat(t *testing.T) {
	notifier := &recordingNotifier{failFor: 10}
	store := staticMetadata{meta: models.UserMetadata{StudyStreak: models.StudyStreak{Count: 2, LastStudiedDate: "2024-05-09"}}}
	s := New(Options{ChatIDs: []int64{10, 20}}, nil, store, clock, notifier, logger.Nop())

	sent, err := s.RunStreakCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, map[int64]int{20: 2}, notifier.sent)
}

func TestRunStreakCheck_MetadataError(t *testing.T) {
	s := New(Options{ChatIDs: []int64{10}}, nil, staticMetadata{err: errors.New("offline")}, clock, &recordingNotifier{}, logger.Nop())
	_, err := s.RunStreakCheck(context.Background())
	assert.Error(t, err)
}

func TestScheduler_RevalidatesPeriodically(t *testing.T) {
	topics := &countingRevalidator{}
	s := New(Options{RevalidateInterval: 50 * time.Millisecond, ReminderHour: -1, Location: time.UTC},
		topics, staticMetadata{}, clock, nil, logger.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return topics.Calls() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RegistersReminderOnlyWithChats(t *testing.T) {
	s := New(Options{ReminderHour: 20}, nil, staticMetadata{}, clock, &recordingNotifier{}, logger.Nop())
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Empty(t, s.scheduler.Jobs())

	s2 := New(Options{ReminderHour: 20, ChatIDs: []int64{1}}, nil, staticMetadata{}, clock, &recordingNotifier{}, logger.Nop())
	require.NoError(t, s2.Start())
	defer s2.Stop()
	assert.Len(t, s2.scheduler.Jobs(), 1)
}
