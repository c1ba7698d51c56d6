package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guardbot/internal/database"
	"github.com/edgard/guardbot/internal/youtube"
)

// NewSearchHandler returns a handler for the /search command.
func NewSearchHandler(deps HandlerDeps) bot.HandlerFunc {
	return searchHandler{deps}.Handle
}

type searchHandler struct {
	deps HandlerDeps
}

func (h searchHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "search")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Search handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID
	log = log.With("chat_id", chatID, "user_id", msg.From.ID)
	messages := h.deps.Config.Messages

	query := commandArgs(msg.Text)
	if query == "" {
		h.send(ctx, b, chatID, messages.SearchUsage, nil)
		return
	}

	log.InfoContext(ctx, "Handling /search command", "query", query)
	h.send(ctx, b, chatID, fmt.Sprintf(messages.Searching, html.EscapeString(query)), nil)

	videos, err := h.lookup(ctx, query)
	if err != nil {
		log.ErrorContext(ctx, "Search failed", "query", query, "error", err)
		h.send(ctx, b, chatID, messages.SearchError, nil)
		return
	}
	if len(videos) == 0 {
		h.send(ctx, b, chatID, messages.NoResults, nil)
		return
	}

	for i, v := range videos {
		h.sendResult(ctx, b, resultParams(chatID, i+1, v, messages.WatchLabel))
	}
	log.DebugContext(ctx, "Sent search results", "query", query, "count", len(videos))
}

// lookup serves query from the cache when fresh, otherwise from the search
// provider, caching what it got.
func (h searchHandler) lookup(ctx context.Context, query string) ([]youtube.Video, error) {
	log := h.deps.Logger.With("handler", "search")
	ttl := h.deps.Config.YouTube.CacheTTL
	now := h.deps.Clock.Now()

	if ttl > 0 {
		cached, err := h.deps.Store.GetCachedSearch(ctx, query, now.Add(-ttl).Unix())
		if err != nil {
			log.WarnContext(ctx, "Search cache lookup failed, querying provider", "error", err)
		} else if len(cached) > 0 {
			return videosFromCache(cached), nil
		}
	}

	var videos []youtube.Video
	for v, err := range h.deps.Search.Search(ctx, query, h.deps.Config.YouTube.MaxResults) {
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	if ttl > 0 && len(videos) > 0 {
		if err := h.deps.Store.SaveSearch(ctx, query, cacheFromVideos(videos, now)); err != nil {
			log.WarnContext(ctx, "Failed to cache search results", "error", err)
		}
	}
	return videos, nil
}

func (h searchHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text, ParseMode: models.ParseModeHTML}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send search reply", "handler", "search", "error", err, "chat_id", chatID)
	}
}

func (h searchHandler) sendResult(ctx context.Context, b *bot.Bot, params *bot.SendMessageParams) {
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send search result", "handler", "search", "error", err, "chat_id", params.ChatID)
	}
}

// resultParams renders one result with a watch button. The thumbnail, when
// known, is shown as the link preview.
func resultParams(chatID int64, pos int, v youtube.Video, watchLabel string) *bot.SendMessageParams {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      formatVideo(pos, v),
		ParseMode: models.ParseModeHTML,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: watchLabel, URL: v.URL()}},
		}},
	}
	if v.Thumbnail != "" {
		thumb := v.Thumbnail
		params.LinkPreviewOptions = &models.LinkPreviewOptions{URL: &thumb, PreferLargeMedia: bot.True()}
	} else {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: bot.True()}
	}
	return params
}

// formatVideo renders one result. Unknown durations render as "?".
func formatVideo(pos int, v youtube.Video) string {
	duration := "?"
	if v.Duration > 0 {
		duration = youtube.FormatDuration(v.Duration)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%d. %s</b>\n", pos, html.EscapeString(v.Title))
	fmt.Fprintf(&sb, "👤 %s\n", html.EscapeString(v.Channel))
	fmt.Fprintf(&sb, "⏱ %s\n", duration)
	fmt.Fprintf(&sb, "👁 %s views", humanize.Comma(v.Views))
	return sb.String()
}

func videosFromCache(rows []database.SearchResult) []youtube.Video {
	videos := make([]youtube.Video, len(rows))
	for i, r := range rows {
		videos[i] = youtube.Video{
			ID:        r.VideoID,
			Title:     r.Title,
			Channel:   r.Channel,
			Duration:  r.Duration(),
			Views:     r.Views,
			Thumbnail: r.Thumbnail,
		}
	}
	return videos
}

func cacheFromVideos(videos []youtube.Video, fetchedAt time.Time) []database.SearchResult {
	rows := make([]database.SearchResult, len(videos))
	for i, v := range videos {
		rows[i] = database.SearchResult{
			VideoID:     v.ID,
			Title:       v.Title,
			Channel:     v.Channel,
			DurationSec: int64(v.Duration / time.Second),
			Views:       v.Views,
			Thumbnail:   v.Thumbnail,
			FetchedAt:   fetchedAt.Unix(),
		}
	}
	return rows
}
