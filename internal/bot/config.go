package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of flash cards fetched per review session
	ReviewLimit int
	// Timeout of each backend call made while handling an update
	RequestTimeout time.Duration
	// Chats allowed to use the bot; empty allows every chat
	AllowedChatIDs []int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		ReviewLimit:    20,
		RequestTimeout: 20 * time.Second,
	}
}
