package sender

import (
	"context"
	"fmt"
	"strings"
	"whalegen/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

const TelegramMessageLimit = 4096

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender posts batch summaries to a single chat.
type TelegramSender struct {
	bot    TelegramBot
	chatID int64
}

func NewTelegramSender(bot TelegramBot, chatID int64) *TelegramSender {
	return &TelegramSender{bot: bot, chatID: chatID}
}

func (s *TelegramSender) SendSummary(ctx context.Context, summary *domain.BatchSummary) error {
	for _, chunk := range chunkText(FormatSummary(summary), TelegramMessageLimit) {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: s.chatID,
			Text:   chunk,
		})
		if err != nil {
			log.Error().Err(err).Int64("chatId", s.chatID).Msg("failed to send summary")
			return fmt.Errorf("error sending summary: %w", err)
		}
	}

	return nil
}

// FormatSummary renders a batch summary as plain text, one line per item that did not finish cleanly.
func FormatSummary(summary *domain.BatchSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "whalegen run %s\n", summary.RunID)
	if len(summary.Items) > 0 {
		fmt.Fprintf(&sb, "indices %d..%d, next %d\n", summary.Start, summary.Start+len(summary.Items)-1,
			summary.NextIndex)
	} else {
		fmt.Fprintf(&sb, "no items, next %d\n", summary.NextIndex)
	}
	fmt.Fprintf(&sb, "succeeded: %d, failed: %d, not attempted: %d, upload failures: %d\n",
		summary.Succeeded, summary.Failed, summary.NotAttempted, summary.UploadFailures)

	for _, item := range summary.Items {
		switch {
		case item.State == domain.Failed:
			fmt.Fprintf(&sb, "#%d failed while %s: %v\n", item.Index, item.FailedAt, item.Err)
		case item.State == domain.Pending:
			fmt.Fprintf(&sb, "#%d not attempted\n", item.Index)
		case item.UploadFailed():
			fmt.Fprintf(&sb, "#%d stored locally, upload incomplete\n", item.Index)
		}
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func chunkText(text string, limit int) []string {
	var chunks []string
	runes := []rune(text)

	for len(runes) > limit {
		chunks = append(chunks, string(runes[:limit]))
		runes = runes[limit:]
	}

	return append(chunks, string(runes))
}
