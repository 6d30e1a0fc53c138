package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/tomerlev/telegram-lunchbox-bot/internal/llm"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/lunchbox"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/media"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/scan"
)

// ScanHandler runs the scan flow: photo in, item extraction, manual edits,
// and the final /save commit.
type ScanHandler struct {
	tg         BotAPI
	analyzer   llm.Analyzer
	scans      *scan.Service
	downloader *media.Downloader
}

func NewScanHandler(tg BotAPI, analyzer llm.Analyzer, scans *scan.Service) *ScanHandler {
	return &ScanHandler{
		tg:         tg,
		analyzer:   analyzer,
		scans:      scans,
		downloader: media.NewDownloader(),
	}
}

// HandlePhoto processes a lunchbox photo: downloads it, runs item extraction
// and presents the editable item list.
// Called from session worker - no locking needed.
func (h *ScanHandler) HandlePhoto(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	photo := largestPhoto(message.Photo)

	image, err := h.downloader.FromTelegramFileID(ctx, h.tg.GetFileDirectURL, photo.FileID)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to download photo")
		session.reply(MsgDownloadFailed)
		return
	}

	session.reply(MsgAnalyzing)
	session.sendTypingAction()

	result, err := h.analyzer.ExtractItems(ctx, image, media.SniffMIME(image))
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("item extraction failed")
		// Keep the photo so the user can build the list by hand with /add.
		session.scanDraft = &ScanDraft{Image: image, Items: lunchbox.NewItemList(nil)}
		session.reply(MsgAnalyzeFailed)
		return
	}

	log.Info().
		Int64("userId", session.userId).
		Int("items", len(result.Items)).
		Int64("total_tokens", result.Usage.TotalTokens).
		Float64("cost_usd", result.Usage.CostUSD).
		Msg("lunchbox analyzed")

	session.scanDraft = &ScanDraft{Image: image, Items: lunchbox.NewItemList(result.Items)}

	if len(result.Items) == 0 {
		session.reply(MsgNoItemsFound)
		return
	}

	session.reply(itemListText(session.scanDraft.Items))
}

// HandleAdd handles /add <name>.
// Called from session worker - no locking needed.
func (h *ScanHandler) HandleAdd(session *UserSession, args string) {
	if !session.hasScanDraft() {
		session.reply(MsgNoActiveScan)
		return
	}

	name := strings.TrimSpace(args)
	if name == "" {
		session.reply(MsgAddUsage)
		return
	}

	session.scanDraft.Items.Add(name)
	session.reply(itemListText(session.scanDraft.Items))
}

// HandleRemove handles /remove <number>. Item numbers are 1-based as shown
// in the list.
// Called from session worker - no locking needed.
func (h *ScanHandler) HandleRemove(session *UserSession, args string) {
	if !session.hasScanDraft() {
		session.reply(MsgNoActiveScan)
		return
	}

	number, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		session.reply(MsgRemoveUsage)
		return
	}

	if number < 1 || number > session.scanDraft.Items.Len() {
		session.reply(MsgRemoveOutOfRange, number)
		return
	}

	session.scanDraft.Items.Remove(number - 1)
	session.reply(itemListText(session.scanDraft.Items))
}

// HandleSave commits the current scan draft.
// Called from session worker - no locking needed.
func (h *ScanHandler) HandleSave(ctx context.Context, session *UserSession) {
	if !session.hasScanDraft() {
		session.reply(MsgNoActiveScan)
		return
	}

	_, err := h.scans.CommitScan(ctx, session.userId, session.scanDraft.Image, session.scanDraft.Items.Items())
	switch {
	case err == nil:
		session.scanDraft = nil
		session.reply(MsgScanSaved)
	case errors.Is(err, scan.ErrEmptyItemList):
		session.reply(MsgEmptyItemList)
	case errors.Is(err, scan.ErrScanExists):
		session.scanDraft = nil
		session.reply(MsgScanExists)
	default:
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to commit scan")
		session.reply(MsgScanSaveFailed)
	}
}

// HandleToday handles /today - shows the committed scan for the current date.
// Called from session worker - no locking needed.
func (h *ScanHandler) HandleToday(session *UserSession) {
	todayScan, err := h.scans.GetTodayScan(session.userId)
	if errors.Is(err, scan.ErrNoScanToday) {
		session.reply(MsgNoScanToday)
		return
	}
	if err != nil {
		session.replyWithError(err)
		return
	}

	var sb strings.Builder
	sb.WriteString(MsgTodayScan)
	sb.WriteString("\n")
	for _, item := range todayScan.Items {
		sb.WriteString(fmt.Sprintf("%s %s\n", item.Icon, item.Name))
	}
	session.reply(sb.String())
}

// itemListText renders the editable item list with 1-based numbers.
func itemListText(items *lunchbox.ItemList) string {
	var sb strings.Builder
	sb.WriteString(MsgItemListHeader)
	sb.WriteString("\n")
	for i, item := range items.Items() {
		sb.WriteString(fmt.Sprintf("%d. %s %s (%s)\n", i+1, item.Icon, item.Name, item.Category))
	}
	sb.WriteString("\n")
	sb.WriteString(MsgItemListHelp)
	return sb.String()
}
