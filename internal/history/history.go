// Package history records finished study sessions.
package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/pkg/models"
)

// Store persists study sessions
type Store interface {
	CreateSession(ctx context.Context, session models.StudySession) (string, error)
}

// Case answers are scored 1 when correct and half when partial.
const (
	caseCorrectScore = 1.0
	casePartialScore = 0.5
)

// NewSession builds the history record of a scored activity.
// The session succeeds when score reaches SuccessRatio of total.
func NewSession(kind, exam, topic string, score float64, total int, feedback string) models.StudySession {
	if topic == "" {
		topic = defaultTitle(kind)
	}
	return models.StudySession{
		Type:           kind,
		Certification:  certification(exam, kind),
		TopicTitle:     topic,
		ResultDisplay:  strconv.FormatFloat(score, 'f', -1, 64) + " pts",
		IsSuccess:      succeeded(score, total),
		ScoreAchieved:  score,
		ScoreTotal:     total,
		ReviewFeedback: feedback,
	}
}

// NewCaseSession builds the history record of a graded case from the evaluation
// of each answer. The score counts answers, not points.
func NewCaseSession(exam string, evaluations []string, feedback string) models.StudySession {
	var score float64
	correct := 0
	for _, e := range evaluations {
		switch strings.ToLower(strings.TrimSpace(e)) {
		case "correct":
			score += caseCorrectScore
			correct++
		case "partial":
			score += casePartialScore
		}
	}
	total := len(evaluations)
	return models.StudySession{
		Type:           models.SessionCase,
		Certification:  certification(exam, models.SessionCase),
		TopicTitle:     fmt.Sprintf("Case Prático (%dq)", total),
		ResultDisplay:  fmt.Sprintf("%d/%d Corretas", correct, total),
		IsSuccess:      succeeded(score, total),
		ScoreAchieved:  score,
		ScoreTotal:     total,
		ReviewFeedback: feedback,
	}
}

func certification(exam, kind string) string {
	if c := strings.ToUpper(strings.TrimSpace(exam)); c != "" {
		return c
	}
	return strings.ToUpper(kind)
}

func defaultTitle(kind string) string {
	if kind == models.SessionInteractive {
		return "Diálogo Interativo"
	}
	return kind
}

func succeeded(score float64, total int) bool {
	return total > 0 && score/float64(total) >= models.SuccessRatio
}

// Recorder saves sessions without letting a failure reach the user
type Recorder struct {
	store Store
	log   *logger.Logger
}

// NewRecorder creates a Recorder
func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log.With("component", "history.Recorder")}
}

// Save stores the session and returns its id, or "" when saving failed.
func (r *Recorder) Save(ctx context.Context, session models.StudySession) string {
	id, err := r.store.CreateSession(ctx, session)
	if err != nil {
		r.log.Error("failed to save study session", "type", session.Type, "certification", session.Certification, "error", err)
		return ""
	}
	r.log.Info("study session saved", "id", id, "type", session.Type, "score", session.ScoreAchieved)
	return id
}
