// Package youtube is a small client for the YouTube Data API v3 search and
// videos endpoints.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/go-querystring/query"

	"github.com/edgard/guardbot/internal/config"
)

var (
	// ErrSearch wraps failures of the search endpoint.
	ErrSearch = errors.New("video search failed")
	// ErrConsumed is yielded when a result sequence is ranged over twice.
	ErrConsumed = errors.New("search results already consumed")
)

const watchURL = "https://youtube.com/watch?v="

// Video is one search hit. Duration and Views are zero when the details
// lookup failed.
type Video struct {
	ID        string
	Title     string
	Channel   string
	Duration  time.Duration
	Views     int64
	Thumbnail string
}

// URL is the watch page of the video.
func (v Video) URL() string {
	return watchURL + v.ID
}

type searchParams struct {
	Part          string `url:"part"`
	Query         string `url:"q"`
	Key           string `url:"key"`
	MaxResults    int    `url:"maxResults"`
	Type          string `url:"type"`
	VideoDuration string `url:"videoDuration"`
}

type videosParams struct {
	Part string `url:"part"`
	ID   string `url:"id"`
	Key  string `url:"key"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// Client calls the YouTube Data API. It is safe for concurrent use.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	maxResults int
	logger     *slog.Logger
}

// NewClient builds a client from cfg. A nil httpClient gets the retrying
// client from NewHTTPClient.
func NewClient(cfg config.YouTubeConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "youtube")
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg.Timeout, WithMaxRetries(cfg.MaxRetries), WithHTTPLogger(logger))
	}
	return &Client{
		http:       httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		logger:     logger,
	}
}

// Search returns a lazy sequence of up to limit videos for q. Nothing is
// requested until the sequence is ranged over, details are fetched one video
// at a time, and the sequence can be ranged over only once. A limit <= 0
// uses the configured maximum.
func (c *Client) Search(ctx context.Context, q string, limit int) iter.Seq2[Video, error] {
	if limit <= 0 || limit > c.maxResults {
		limit = c.maxResults
	}
	var used atomic.Bool

	return func(yield func(Video, error) bool) {
		if !used.CompareAndSwap(false, true) {
			yield(Video{}, ErrConsumed)
			return
		}

		var resp searchResponse
		err := c.get(ctx, "/search", searchParams{
			Part:          "snippet",
			Query:         q,
			Key:           c.apiKey,
			MaxResults:    limit,
			Type:          "video",
			VideoDuration: "any",
		}, &resp)
		if err != nil {
			yield(Video{}, fmt.Errorf("%w: %w", ErrSearch, err))
			return
		}

		for i, item := range resp.Items {
			if i >= limit {
				return
			}
			if item.ID.VideoID == "" {
				continue
			}
			v := Video{
				ID:        item.ID.VideoID,
				Title:     item.Snippet.Title,
				Channel:   item.Snippet.ChannelTitle,
				Thumbnail: thumbnail(item.Snippet.Thumbnails),
			}
			c.fillDetails(ctx, &v)
			if !yield(v, nil) {
				return
			}
		}
	}
}

func thumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// fillDetails sets duration and views. Failures leave them zero.
func (c *Client) fillDetails(ctx context.Context, v *Video) {
	var resp videosResponse
	err := c.get(ctx, "/videos", videosParams{Part: "contentDetails,statistics", ID: v.ID, Key: c.apiKey}, &resp)
	if err != nil {
		c.logger.WarnContext(ctx, "Failed to fetch video details", "video_id", v.ID, "error", err)
		return
	}
	if len(resp.Items) == 0 {
		c.logger.WarnContext(ctx, "Video details not found", "video_id", v.ID)
		return
	}

	item := resp.Items[0]
	if d, err := ParseDuration(item.ContentDetails.Duration); err == nil {
		v.Duration = d
	} else {
		c.logger.WarnContext(ctx, "Unparseable video duration", "video_id", v.ID, "duration", item.ContentDetails.Duration)
	}
	if item.Statistics.ViewCount != "" {
		if n, err := strconv.ParseInt(item.Statistics.ViewCount, 10, 64); err == nil {
			v.Views = n
		}
	}
}

func (c *Client) get(ctx context.Context, path string, params any, out any) error {
	values, err := query.Values(params)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
