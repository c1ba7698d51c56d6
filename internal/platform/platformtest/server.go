// Package platformtest provides a fake Telegram Bot API server for tests.
package platformtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strconv"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
)

// Token is the bot token the fake server expects.
const Token = "123456:test-token"

// Call is one recorded API request.
type Call struct {
	Method string
	Form   url.Values
}

// Server records Bot API calls and answers them with canned results.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	nextID   int
	failures map[string]string
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{nextID: 1000, failures: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Bot returns a client pointed at the fake server.
func (s *Server) Bot(t testing.TB, opts ...bot.Option) *bot.Bot {
	t.Helper()

	opts = append([]bot.Option{bot.WithServerURL(s.URL), bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(Token, opts...)
	if err != nil {
		t.Fatalf("create bot: %v", err)
	}
	return b
}

// Fail makes every following call to method fail with description.
func (s *Server) Fail(method, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = description
}

// Calls returns the recorded calls in order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (s *Server) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the method names in call order.
func (s *Server) Methods() []string {
	calls := s.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	if err := r.ParseMultipartForm(1 << 20); err != nil && err != http.ErrNotMultipart {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Form: r.Form})
	description, fail := s.failures[method]
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": description})
		return
	}

	var result any
	switch method {
	case "sendMessage", "editMessageText":
		chatID, _ := strconv.ParseInt(r.Form.Get("chat_id"), 10, 64)
		if mid := r.Form.Get("message_id"); mid != "" {
			id, _ = strconv.Atoi(mid)
		}
		result = map[string]any{
			"message_id": id,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "supergroup"},
			"text":       r.Form.Get("text"),
		}
	case "getMe":
		result = map[string]any{"id": 42, "is_bot": true, "first_name": "Guard", "username": "guard_bot"}
	default:
		result = true
	}

	if err := json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result}); err != nil {
		panic(fmt.Sprintf("encode response: %v", err))
	}
}
