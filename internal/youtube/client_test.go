package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/guardbot/internal/config"
)

const searchBody = `{"items":[
 {"id":{"videoId":"v1"},"snippet":{"title":"First","channelTitle":"Chan A","thumbnails":{"high":{"url":"https://i.ytimg.com/v1.jpg"}}}},
 {"id":{"videoId":"v2"},"snippet":{"title":"Second","channelTitle":"Chan B","thumbnails":{"default":{"url":"https://i.ytimg.com/v2.jpg"}}}},
 {"id":{"videoId":"v3"},"snippet":{"title":"Third","channelTitle":"Chan C","thumbnails":{}}}
]}`

type fakeAPI struct {
	searchCalls  atomic.Int32
	detailsCalls atomic.Int32
	searchStatus int
	failDetails  string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchCalls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "amr diab", q.Get("q"))
		if f.searchStatus != 0 {
			w.WriteHeader(f.searchStatus)
			return
		}
		fmt.Fprint(w, searchBody)
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		f.detailsCalls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "contentDetails,statistics", q.Get("part"))
		id := q.Get("id")
		if id == f.failDetails {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"items":[{"contentDetails":{"duration":"PT4M13S"},"statistics":{"viewCount":"1234567"}}]}`)
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	cfg := config.YouTubeConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		MaxResults: 5,
		Timeout:    5 * time.Second,
	}
	return NewClient(cfg, NewHTTPClient(cfg.Timeout, WithMaxRetries(0)), nil)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{failDetails: "v2"}
	c := newTestClient(t, api)

	seq := c.Search(context.Background(), "amr diab", 0)
	assert.Zero(t, api.searchCalls.Load(), "search must be lazy")

	var got []Video
	for v, err := range seq {
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Len(t, got, 3)
	assert.Equal(t, Video{
		ID:        "v1",
		Title:     "First",
		Channel:   "Chan A",
		Duration:  4*time.Minute + 13*time.Second,
		Views:     1234567,
		Thumbnail: "https://i.ytimg.com/v1.jpg",
	}, got[0])
	assert.Equal(t, "https://youtube.com/watch?v=v1", got[0].URL())

	// Details failure keeps the result with zero values.
	assert.Equal(t, "v2", got[1].ID)
	assert.Zero(t, got[1].Duration)
	assert.Zero(t, got[1].Views)
	assert.Equal(t, "https://i.ytimg.com/v2.jpg", got[1].Thumbnail)
	assert.Empty(t, got[2].Thumbnail)

	t.Run("not restartable", func(t *testing.T) {
		for _, err := range seq {
			assert.ErrorIs(t, err, ErrConsumed)
		}
		assert.Equal(t, int32(1), api.searchCalls.Load())
	})
}

func TestSearchEarlyStop(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	c := newTestClient(t, api)

	for v, err := range c.Search(context.Background(), "amr diab", 0) {
		require.NoError(t, err)
		assert.Equal(t, "v1", v.ID)
		break
	}
	assert.Equal(t, int32(1), api.detailsCalls.Load(), "details are fetched per consumed item")
}

func TestSearchLimit(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	c := newTestClient(t, api)

	n := 0
	for _, err := range c.Search(context.Background(), "amr diab", 2) {
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}

func TestSearchFailure(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, &fakeAPI{searchStatus: status})

			var errs []error
			for v, err := range c.Search(context.Background(), "amr diab", 0) {
				assert.Zero(t, v)
				errs = append(errs, err)
			}
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], ErrSearch)
		})
	}
}

func TestRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	}))
	t.Cleanup(srv.Close)

	cfg := config.YouTubeConfig{APIKey: "k", BaseURL: srv.URL, MaxResults: 5, Timeout: 5 * time.Second}
	httpClient := NewHTTPClient(cfg.Timeout, WithMaxRetries(2), WithRetryWait(time.Millisecond, 5*time.Millisecond))
	c := NewClient(cfg, httpClient, nil)

	for _, err := range c.Search(context.Background(), "anything", 0) {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}
