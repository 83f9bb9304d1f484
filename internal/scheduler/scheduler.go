package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/progress"
)

// Revalidator is the topic cache's staleness check
type Revalidator interface {
	Revalidate() bool
}

// Notifier interface for sending notifications
type Notifier interface {
	SendStreakReminder(chatID int64, streak int) error
}

// Options configures the periodic jobs
type Options struct {
	// How often the topic cache checks whether its data went stale; zero disables the job
	RevalidateInterval time.Duration
	// Local hour of the streak reminder; negative disables the job
	ReminderHour int
	Location     *time.Location
	ChatIDs      []int64
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	opts      Options
	topics    Revalidator
	store     progress.MetadataStore
	clock     progress.Clock
	notifier  Notifier
	log       *logger.Logger
}

// New creates a new scheduler instance
func New(opts Options, topics Revalidator, store progress.MetadataStore, clock progress.Clock, notifier Notifier, log *logger.Logger) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		opts:      opts,
		topics:    topics,
		store:     store,
		clock:     clock,
		notifier:  notifier,
		log:       log.With("component", "scheduler"),
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	if s.opts.RevalidateInterval > 0 && s.topics != nil {
		if _, err := s.scheduler.Every(s.opts.RevalidateInterval).WaitForSchedule().Do(s.revalidateTopics); err != nil {
			return fmt.Errorf("failed to schedule topic revalidation: %w", err)
		}
	}

	if s.opts.ReminderHour >= 0 && s.notifier != nil && len(s.opts.ChatIDs) > 0 {
		at := fmt.Sprintf("%02d:00", s.opts.ReminderHour)
		if _, err := s.scheduler.Every(1).Day().At(at).Do(s.sendStreakReminders); err != nil {
			return fmt.Errorf("failed to schedule streak reminder: %w", err)
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) revalidateTopics() {
	if s.topics.Revalidate() {
		s.log.Info("topic refresh started by staleness check")
	}
}

func (s *Scheduler) sendStreakReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.RunStreakCheck(ctx); err != nil {
		s.log.Error("streak reminder check failed", "error", err)
	}
}

// RunStreakCheck reminds every chat when the streak was counted yesterday but not yet today.
// It returns how many reminders were sent.
func (s *Scheduler) RunStreakCheck(ctx context.Context) (int, error) {
	meta, err := s.store.CurrentMetadata(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read user metadata: %w", err)
	}

	_, yesterday := s.clock.Days()
	streak := meta.StudyStreak
	if streak.Count == 0 || streak.LastStudiedDate != yesterday {
		return 0, nil
	}

	sent := 0
	for _, chatID := range s.opts.ChatIDs {
		if err := s.notifier.SendStreakReminder(chatID, streak.Count); err != nil {
			s.log.Error("failed to send streak reminder", "chat_id", chatID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
