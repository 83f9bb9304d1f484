package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/certifai/internal/bot"
	"github.com/example/certifai/internal/config"
	"github.com/example/certifai/internal/database"
	"github.com/example/certifai/internal/history"
	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/points"
	"github.com/example/certifai/internal/progress"
	"github.com/example/certifai/internal/scheduler"
	"github.com/example/certifai/pkg/models"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		cfg *config.Config
		log *logger.Logger
		a   *app
	)

	root := &cobra.Command{
		Use:          "certifai",
		Short:        "Certification study companion",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			log, err = logger.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			a, err = newApp(cfg, log)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
			if log != nil {
				log.Sync()
			}
		},
	}

	appFn := func() *app { return a }
	root.AddCommand(
		newServeCommand(appFn),
		newTopicsCommand(appFn),
		newHomeCommand(appFn),
		newAwardCommand(appFn),
		newSessionCommand(appFn),
		newCaseCommand(appFn),
		newHistoryCommand(appFn),
		newProfileCommand(appFn),
	)
	return root
}

func newServeCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.loadTopics(ctx); err != nil {
				a.log.Error("topics unavailable at startup", "error", err)
			}

			services := bot.Services{
				Topics:   a.topics,
				Progress: a.progress,
				Metadata: a.metadata,
				Clock:    a.clock,
			}
			if a.client != nil {
				services.Flashcards = a.client
			}
			botCfg := bot.DefaultConfig()
			botCfg.ReviewLimit = a.cfg.ReviewLimit
			botCfg.AllowedChatIDs = a.cfg.AllowedChatIDs

			b, err := bot.New(a.cfg.TelegramToken, botCfg, services, a.log)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			sched := scheduler.New(scheduler.Options{
				RevalidateInterval: a.cfg.RevalidateInterval,
				ReminderHour:       a.cfg.ReminderHour,
				Location:           a.cfg.Location,
				ChatIDs:            a.cfg.AllowedChatIDs,
			}, a.topics, a.metadata, a.clock, b, a.log)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			a.log.Info("bot started, press Ctrl+C to stop")
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bot error: %w", err)
			}
			a.log.Info("bot stopped successfully")
			return nil
		},
	}
}

func newTopicsCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topics [exam]",
		Short: "List the exams, or the topics of one exam",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			if err := a.loadTopics(cmd.Context()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, exam := range a.topics.Exams() {
					fmt.Fprintln(out, exam)
				}
				return nil
			}
			modules := a.topics.TopicsForExam(args[0])
			if len(modules) == 0 {
				fmt.Fprintf(out, "no topics for %s\n", args[0])
				return nil
			}
			for _, module := range modules {
				fmt.Fprintln(out, module)
			}
			return nil
		},
	}
}

func newHomeCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show today's points and the study streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			meta, err := a.metadata.CurrentMetadata(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load user metadata: %w", err)
			}
			today, yesterday := a.clock.Days()
			s := progress.Summarize(meta, today, yesterday)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Hello, %s\n", s.FirstName)
			fmt.Fprintf(out, "Today: %d/%d pts (%.0f%%)\n", s.Points, s.DailyGoal, s.Percentage)
			fmt.Fprintf(out, "Streak: %d\n", s.Streak)
			return nil
		},
	}
}

func newAwardCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "award <points>",
		Short: "Add points to today's progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid points %q: %w", args[0], err)
			}
			printUpdate(cmd, appFn().progress.Award(cmd.Context(), pts))
			return nil
		},
	}
}

func newSessionCommand(appFn func() *app) *cobra.Command {
	var feedback string
	cmd := &cobra.Command{
		Use:   "session <type> <exam> <topic> <score> <total>",
		Short: "Record a finished study session and award its score",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid score %q: %w", args[3], err)
			}
			total, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("invalid total %q: %w", args[4], err)
			}
			kind, err := sessionType(args[0])
			if err != nil {
				return err
			}

			a := appFn()
			session := history.NewSession(kind, args[1], args[2], float64(score), total, feedback)
			if id := a.history.Save(cmd.Context(), session); id != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "session %s saved\n", id)
			}
			printUpdate(cmd, a.progress.Award(cmd.Context(), score))
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "review feedback stored with the session")
	return cmd
}

func newCaseCommand(appFn func() *app) *cobra.Command {
	var feedback string
	cmd := &cobra.Command{
		Use:   "case <exam> <evaluation>...",
		Short: "Record a graded study case (correct, partial, incorrect or error per answer)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluations := make([]string, 0, len(args)-1)
			for _, e := range args[1:] {
				evaluations = append(evaluations, strings.ToLower(e))
			}

			a := appFn()
			session := history.NewCaseSession(args[0], evaluations, feedback)
			if id := a.history.Save(cmd.Context(), session); id != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "session %s saved\n", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "case result: %s\n", session.ResultDisplay)
			printUpdate(cmd, a.progress.Award(cmd.Context(), points.CaseTotal(evaluations)))
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "review feedback stored with the session")
	return cmd
}

func newHistoryCommand(appFn func() *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent study sessions stored locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			if !a.cfg.OfflineMode {
				return fmt.Errorf("history is only kept locally in offline mode")
			}
			repo := database.NewStudySessionRepository(a.db, database.LocalUserID)
			sessions, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range sessions {
				fmt.Fprintf(out, "%s  %-10s %-8s %-30s %s\n",
					s.CreatedAt.In(a.cfg.Location).Format(time.DateTime), s.Type, s.Certification, s.TopicTitle, s.ResultDisplay)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to show")
	return cmd
}

func newProfileCommand(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <full-name> <daily-goal>",
		Short: "Set the local display name and daily goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			if !a.cfg.OfflineMode {
				return fmt.Errorf("the profile is edited in the app when online")
			}
			goal, err := strconv.Atoi(args[1])
			if err != nil || goal <= 0 {
				return fmt.Errorf("invalid daily goal %q", args[1])
			}
			repo := database.NewUserMetadataRepository(a.db, database.LocalUserID)
			return repo.UpdateProfile(cmd.Context(), args[0], goal)
		},
	}
}

func sessionType(raw string) (string, error) {
	for _, kind := range []string{models.SessionInteractive, models.SessionCase, models.SessionSimulado} {
		if strings.EqualFold(raw, kind) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown session type %q", raw)
}

func printUpdate(cmd *cobra.Command, update progress.Update) {
	out := cmd.OutOrStdout()
	if update.Empty() {
		fmt.Fprintln(out, "no progress recorded")
		return
	}
	if update.DailyProgress != nil {
		fmt.Fprintf(out, "today (%s): %d pts\n", update.DailyProgress.Date, update.DailyProgress.Count)
	}
	if update.StudyStreak != nil {
		fmt.Fprintf(out, "streak: %d\n", update.StudyStreak.Count)
	}
}
