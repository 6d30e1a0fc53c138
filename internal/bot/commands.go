package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Command defines a bot command with its handler key and Telegram menu description.
type Command struct {
	Name        string // Command name without slash (e.g., "start")
	Description string // Description shown in Telegram command menu
}

// botCommands defines all available bot commands.
// This is the single source of truth for command definitions.
var botCommands = []Command{
	{Name: "start", Description: "הרשמה והתחלה"},
	{Name: "add", Description: "הוספת פריט לרשימה"},
	{Name: "remove", Description: "הסרת פריט מהרשימה"},
	{Name: "save", Description: "שמירת הסריקה"},
	{Name: "cancel", Description: "ביטול הסריקה הנוכחית"},
	{Name: "today", Description: "הצגת הקופסה של היום"},
	{Name: "offer", Description: "יצירת הצעת החלפה"},
	{Name: "market", Description: "הצגת הצעות מבית הספר"},
}

// RegisterCommands sets the bot's command menu in Telegram.
// This should be called once at startup.
func RegisterCommands(tg *tgbotapi.BotAPI) {
	commands := make([]tgbotapi.BotCommand, len(botCommands))
	for i, cmd := range botCommands {
		commands[i] = tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}

	config := tgbotapi.NewSetMyCommands(commands...)
	if _, err := tg.Request(config); err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
	} else {
		log.Info().Int("count", len(commands)).Msg("registered bot commands")
	}
}
