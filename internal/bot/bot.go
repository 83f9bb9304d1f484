package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/certifai/internal/logger"
	"github.com/example/certifai/internal/progress"
	"github.com/example/certifai/internal/topics"
	"github.com/example/certifai/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot writes through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// FlashcardService is the backend side of a flash-card review
type FlashcardService interface {
	FlashcardsForReview(ctx context.Context, exam string, limit int) ([]models.Flashcard, error)
	UpdateFlashcardProgress(ctx context.Context, cardID int64, rating int) error
}

// Services are the collaborators the bot screens work with
type Services struct {
	Topics     *topics.Cache
	Progress   *progress.Recorder
	Metadata   progress.MetadataStore
	Clock      progress.Clock
	Flashcards FlashcardService
}

// reviewSession is a chat's ongoing flash-card review
type reviewSession struct {
	Exam    string
	Cards   []models.Flashcard
	Index   int
	Flipped bool
	Saving  bool
	Earned  int
}

// Bot represents the Telegram bot application
type Bot struct {
	api      sender
	token    string
	config   *BotConfig
	services Services
	allowed  map[int64]bool
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[int64]*reviewSession
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new bot instance
func New(token string, config *BotConfig, services Services, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if services.Topics == nil || services.Progress == nil || services.Metadata == nil || services.Clock == nil {
		return nil, fmt.Errorf("bot services are incomplete")
	}
	if config == nil {
		config = DefaultConfig()
	}

	b := newBot(nil, config, services, log)
	b.token = token
	return b, nil
}

func newBot(api sender, config *BotConfig, services Services, log *logger.Logger) *Bot {
	allowed := make(map[int64]bool)
	for _, id := range config.AllowedChatIDs {
		allowed[id] = true
	}
	return &Bot{
		api:      api,
		config:   config,
		services: services,
		allowed:  allowed,
		log:      log.With("component", "bot"),
		sessions: make(map[int64]*reviewSession),
	}
}

// Start connects to Telegram and handles updates until ctx is done or Stop is called
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.api = botAPI
	b.log.Info("authorized on account", "username", botAPI.Self.UserName)

	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, u)
			}(update)
		}
	}
}

// Stop ends Start and waits for in-flight updates
func (b *Bot) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	b.wg.Wait()
	b.log.Info("bot stopped")
}

// SendStreakReminder implements the scheduler.Notifier interface
func (b *Bot) SendStreakReminder(chatID int64, streak int) error {
	text := fmt.Sprintf("🔥 Sua sequência de %d dias termina hoje. Ganhe pontos para mantê-la!", streak)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	if err := b.sendMessage(msg); err != nil {
		return err
	}
	b.log.Info("streak reminder sent", "chat_id", chatID, "streak", streak)
	return nil
}

// isAllowed checks if a chat may use the bot
func (b *Bot) isAllowed(chatID int64) bool {
	return len(b.allowed) == 0 || b.allowed[chatID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		if !b.isAllowed(update.Message.Chat.ID) {
			b.log.Warn("ignoring message from unknown chat", "chat_id", update.Message.Chat.ID)
			return
		}
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.showMainMenu(update.Message.Chat.ID, "Não entendi. Escolha uma opção:")
		}
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message == nil || !b.isAllowed(update.CallbackQuery.Message.Chat.ID) {
			return
		}
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.Error("failed to handle update", "update_id", update.UpdateID, "error", err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "🏠 Início", CallbackData: callbackHome}},
		{{Text: "📚 Tópicos", CallbackData: callbackExams}},
		{{Text: "🃏 Flash cards", CallbackData: callbackReviewMenu}},
	}
}

func (b *Bot) showMainMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}
