package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// largestPhoto returns the highest-resolution variant of a Telegram photo.
// Telegram sends several downscaled sizes; the last one is the original.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	return sizes[len(sizes)-1]
}
