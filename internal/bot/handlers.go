package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/certifai/internal/points"
	"github.com/example/certifai/internal/progress"
	"github.com/example/certifai/internal/topics"
	"github.com/example/certifai/pkg/models"
)

// Constants for callback data
const (
	callbackMainMenu   = "main_menu"
	callbackHome       = "home"
	callbackExams      = "exams"
	callbackReviewMenu = "review_menu"
	callbackFlip       = "flip"

	prefixTopics = "topics:"
	prefixReview = "review:"
	prefixRate   = "rate:"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start", "menu":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "home":
		return b.handleHome(ctx, chatID)
	case "topics":
		if args == "" {
			return b.handleExamList(chatID, prefixTopics, "📚 Escolha a prova:")
		}
		return b.handleTopics(chatID, args)
	case "review":
		if args == "" {
			return b.handleExamList(chatID, prefixReview, "🃏 Revisar flash cards de qual prova?")
		}
		return b.handleStartReview(ctx, chatID, args)
	default:
		return b.handleUnknownCommand(chatID)
	}
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always send an answer to the callback query to remove the loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(answer); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	data := callback.Data
	switch {
	case data == callbackMainMenu:
		return b.showMainMenu(chatID, "🤖 Menu principal\n\nEscolha uma opção:")
	case data == callbackHome:
		return b.handleHome(ctx, chatID)
	case data == callbackExams:
		return b.handleExamList(chatID, prefixTopics, "📚 Escolha a prova:")
	case data == callbackReviewMenu:
		return b.handleExamList(chatID, prefixReview, "🃏 Revisar flash cards de qual prova?")
	case data == callbackFlip:
		return b.handleFlip(chatID)
	case strings.HasPrefix(data, prefixTopics):
		return b.handleTopics(chatID, strings.TrimPrefix(data, prefixTopics))
	case strings.HasPrefix(data, prefixReview):
		return b.handleStartReview(ctx, chatID, strings.TrimPrefix(data, prefixReview))
	case strings.HasPrefix(data, prefixRate):
		rating, err := strconv.Atoi(strings.TrimPrefix(data, prefixRate))
		if err != nil {
			return fmt.Errorf("invalid rating in callback data: %w", err)
		}
		return b.handleRate(ctx, chatID, rating)
	default:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ Ação desconhecida"))
	}
}

func (b *Bot) handleStart(chatID int64) error {
	text := "👋 Bem-vindo ao CertifAI!\n\n" +
		"Estude para suas certificações todos os dias:\n" +
		"🏠 Acompanhe sua meta diária e sua sequência\n" +
		"📚 Veja os tópicos de cada prova\n" +
		"🃏 Revise flash cards e ganhe pontos"
	return b.showMainMenu(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 Comandos\n\n" +
		"/start - Menu principal\n" +
		"/home - Pontos de hoje e sequência\n" +
		"/topics <prova> - Tópicos da prova\n" +
		"/review <prova> - Revisar flash cards\n" +
		"/help - Esta ajuda\n\n" +
		"🎯 Pontos por flash card:\n" +
		fmt.Sprintf("❌ Errei: %d  👍 Bom: %d  🚀 Fácil: %d", points.FlashcardWrong, points.FlashcardGood, points.FlashcardEasy)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "⬅️ Voltar ao menu", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleUnknownCommand(chatID int64) error {
	return b.showMainMenu(chatID, "Comando desconhecido. Use /help para ver os comandos.")
}

func (b *Bot) handleHome(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout)
	defer cancel()

	meta, err := b.services.Metadata.CurrentMetadata(ctx)
	if err != nil {
		b.log.Error("failed to load user metadata", "chat_id", chatID, "error", err)
		return b.showMainMenu(chatID, "❌ Não foi possível carregar seu progresso. Tente novamente mais tarde.")
	}
	today, yesterday := b.services.Clock.Days()
	return b.showMainMenu(chatID, formatHome(progress.Summarize(meta, today, yesterday)))
}

func (b *Bot) handleExamList(chatID int64, prefix, title string) error {
	if text, ok := topicsUnavailable(b.services.Topics.State()); !ok {
		return b.showMainMenu(chatID, text)
	}
	exams := b.services.Topics.Exams()
	if len(exams) == 0 {
		return b.showMainMenu(chatID, "Nenhuma prova disponível no momento.")
	}

	var buttons [][]MenuButton
	for _, exam := range exams {
		buttons = append(buttons, []MenuButton{{Text: strings.ToUpper(exam), CallbackData: prefix + exam}})
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Voltar ao menu", CallbackData: callbackMainMenu}})

	msg := tgbotapi.NewMessage(chatID, title)
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleTopics(chatID int64, exam string) error {
	if text, ok := topicsUnavailable(b.services.Topics.State()); !ok {
		return b.showMainMenu(chatID, text)
	}
	modules := b.services.Topics.TopicsForExam(exam)
	msg := tgbotapi.NewMessage(chatID, formatTopics(exam, modules))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🃏 Revisar flash cards", CallbackData: prefixReview + strings.ToLower(strings.TrimSpace(exam))}},
		{{Text: "⬅️ Voltar ao menu", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleStartReview(ctx context.Context, chatID int64, exam string) error {
	exam = strings.ToLower(strings.TrimSpace(exam))
	if b.services.Flashcards == nil {
		return b.showMainMenu(chatID, "Flash cards não estão disponíveis no modo offline.")
	}

	ctx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout)
	defer cancel()
	cards, err := b.services.Flashcards.FlashcardsForReview(ctx, exam, b.config.ReviewLimit)
	if err != nil {
		b.log.Error("failed to fetch flash cards", "chat_id", chatID, "exam", exam, "error", err)
		return b.showMainMenu(chatID, "❌ Não foi possível carregar os flash cards. Tente novamente mais tarde.")
	}
	if len(cards) == 0 {
		return b.showMainMenu(chatID, fmt.Sprintf("🎉 Nenhum flash card de %s para revisar agora.", strings.ToUpper(exam)))
	}

	session := &reviewSession{Exam: exam, Cards: cards}
	b.mu.Lock()
	b.sessions[chatID] = session
	b.mu.Unlock()

	b.log.Info("review started", "chat_id", chatID, "exam", exam, "cards", len(cards))
	return b.sendCardFront(chatID, session)
}

func (b *Bot) handleFlip(chatID int64) error {
	b.mu.Lock()
	session := b.sessions[chatID]
	if session == nil || session.Saving {
		b.mu.Unlock()
		return nil
	}
	session.Flipped = true
	card := session.Cards[session.Index]
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, formatCardBack(card))
	msg.ReplyMarkup = createKeyboard(ratingButtons())
	return b.sendMessage(msg)
}

// handleRate saves the rating of the current card and moves to the next one.
// Ratings arriving while a save is outstanding are ignored.
func (b *Bot) handleRate(ctx context.Context, chatID int64, rating int) error {
	earned := points.ForRating(rating)
	if earned == 0 {
		return fmt.Errorf("unknown rating %d", rating)
	}

	b.mu.Lock()
	session := b.sessions[chatID]
	if session == nil || session.Saving || !session.Flipped {
		b.mu.Unlock()
		return nil
	}
	session.Saving = true
	card := session.Cards[session.Index]
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout)
	defer cancel()

	if err := b.services.Flashcards.UpdateFlashcardProgress(ctx, card.ID, rating); err != nil {
		b.mu.Lock()
		session.Saving = false
		b.mu.Unlock()
		b.log.Error("failed to save flash card rating", "chat_id", chatID, "card_id", card.ID, "error", err)
		msg := tgbotapi.NewMessage(chatID, "❌ Não foi possível salvar sua resposta. Tente novamente.")
		msg.ReplyMarkup = createKeyboard(ratingButtons())
		return b.sendMessage(msg)
	}

	b.services.Progress.Award(ctx, earned)

	b.mu.Lock()
	session.Saving = false
	session.Flipped = false
	session.Earned += earned
	session.Index++
	done := session.Index >= len(session.Cards)
	if done && b.sessions[chatID] == session {
		delete(b.sessions, chatID)
	}
	b.mu.Unlock()

	if done {
		b.log.Info("review finished", "chat_id", chatID, "exam", session.Exam, "cards", len(session.Cards), "points", session.Earned)
		return b.showMainMenu(chatID, formatReviewDone(session))
	}
	return b.sendCardFront(chatID, session)
}

func (b *Bot) sendCardFront(chatID int64, session *reviewSession) error {
	b.mu.Lock()
	text := formatCardFront(session)
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "🔄 Virar", CallbackData: callbackFlip}},
		{{Text: "⬅️ Sair", CallbackData: callbackMainMenu}},
	})
	return b.sendMessage(msg)
}

func ratingButtons() [][]MenuButton {
	return [][]MenuButton{{
		{Text: "❌ Errei", CallbackData: prefixRate + strconv.Itoa(models.RatingWrong)},
		{Text: "👍 Bom", CallbackData: prefixRate + strconv.Itoa(models.RatingGood)},
		{Text: "🚀 Fácil", CallbackData: prefixRate + strconv.Itoa(models.RatingEasy)},
	}}
}

// topicsUnavailable returns the text to show instead of topic screens, if any.
func topicsUnavailable(state topics.State) (string, bool) {
	switch state {
	case topics.StateUninitialized, topics.StateLoading:
		return "⏳ Carregando tópicos, tente novamente em instantes.", false
	case topics.StateError:
		return "❌ Não foi possível carregar os tópicos.", false
	}
	return "", true
}

func formatHome(s progress.Summary) string {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("👋 Olá, %s!\n\n", s.FirstName))
	text.WriteString(fmt.Sprintf("🎯 Meta diária: %d/%d pts (%.0f%%)\n", s.Points, s.DailyGoal, s.Percentage))
	text.WriteString(fmt.Sprintf("🔥 Sequência: %d %s", s.Streak, pluralDays(s.Streak)))
	if s.Percentage >= 100 {
		text.WriteString("\n\n🏆 Meta de hoje concluída!")
	}
	return text.String()
}

func formatTopics(exam string, modules []string) string {
	name := strings.ToUpper(strings.TrimSpace(exam))
	if len(modules) == 0 {
		return fmt.Sprintf("Nenhum tópico encontrado para %s.", name)
	}
	var text strings.Builder
	text.WriteString(fmt.Sprintf("📚 Tópicos de %s:\n\n", name))
	for i, module := range modules {
		text.WriteString(fmt.Sprintf("%d. %s\n", i+1, module))
	}
	return strings.TrimSuffix(text.String(), "\n")
}

func formatCardFront(s *reviewSession) string {
	card := s.Cards[s.Index]
	text := fmt.Sprintf("🃏 %s · %d/%d\n\n%s", strings.ToUpper(s.Exam), s.Index+1, len(s.Cards), card.Front)
	if card.Topic != "" {
		text += fmt.Sprintf("\n\n🏷 %s", card.Topic)
	}
	return text
}

func formatCardBack(card models.Flashcard) string {
	return fmt.Sprintf("%s\n\n💡 %s\n\nComo você foi?", card.Front, card.Back)
}

func formatReviewDone(s *reviewSession) string {
	return fmt.Sprintf("✅ Revisão de %s concluída!\n\n%d flash cards, +%d pts",
		strings.ToUpper(s.Exam), len(s.Cards), s.Earned)
}

func pluralDays(n int) string {
	if n == 1 {
		return "dia"
	}
	return "dias"
}
