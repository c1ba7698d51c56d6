package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/guardbot/internal/config"
	"github.com/edgard/guardbot/internal/policy"
)

type call struct {
	op        string
	chatID    int64
	messageID int
	text      string
}

type fakePlatform struct {
	mu         sync.Mutex
	calls      []call
	nextID     int
	deleteErrs map[int]error
	sendErr    error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{nextID: 100, deleteErrs: map[int]error{}}
}

func (p *fakePlatform) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{op: "delete", chatID: chatID, messageID: messageID})
	return p.deleteErrs[messageID]
}

func (p *fakePlatform) SendMessage(_ context.Context, chatID int64, text string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{op: "send", chatID: chatID, text: text})
	if p.sendErr != nil {
		return 0, p.sendErr
	}
	p.nextID++
	return p.nextID, nil
}

func (p *fakePlatform) snapshot() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]call, len(p.calls))
	copy(out, p.calls)
	return out
}

// clockDeferrer schedules continuations on a fake clock.
type clockDeferrer struct {
	clock clockwork.Clock
	names []string
	err   error
}

func (d *clockDeferrer) Defer(name string, delay time.Duration, fn func(ctx context.Context)) error {
	if d.err != nil {
		return d.err
	}
	d.names = append(d.names, name)
	d.clock.AfterFunc(delay, func() { fn(context.Background()) })
	return nil
}

func newFilter(t *testing.T, terms ...string) *Filter {
	t.Helper()
	set, err := policy.New(terms, config.DefaultSuspiciousPatterns)
	require.NoError(t, err)
	return NewFilter(set)
}

func groupMessage(id int, text string) Message {
	return Message{
		ID:     id,
		Text:   text,
		Sender: UserRef{ID: 42, DisplayName: "Ali <admin>"},
		Chat:   ChatRef{ID: -1001, Title: "Music", Kind: ChatSupergroup},
	}
}

func waitDone(t *testing.T, a *Action) {
	t.Helper()
	select {
	case <-a.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("action did not finish, state=%s", a.State())
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	f := newFilter(t, "spam", "bad")

	testGroups := map[string][]struct {
		name     string
		msg      Message
		violates bool
		term     string
	}{
		"Banned terms": {
			{name: "case insensitive whole word", msg: groupMessage(1, "this is SPAM here"), violates: true, term: "spam"},
			{name: "second term", msg: groupMessage(1, "Bad!"), violates: true, term: "bad"},
			{name: "first declared term wins", msg: groupMessage(1, "bad spam"), violates: true, term: "spam"},
		},
		"Clean": {
			{name: "longer word", msg: groupMessage(1, "spammy content")},
			{name: "badge", msg: groupMessage(1, "my badge")},
			{name: "no text", msg: groupMessage(1, "")},
			{name: "unrelated", msg: groupMessage(1, "hello everyone")},
		},
	}

	for group, tcs := range testGroups {
		t.Run(group, func(t *testing.T) {
			t.Parallel()
			for _, tc := range tcs {
				v := f.Evaluate(tc.msg)
				assert.Equal(t, tc.violates, v.Violates(), tc.name)
				assert.Equal(t, tc.term, v.MatchedTerm, tc.name)
			}
		})
	}
}

func TestEvaluateSuspiciousLinksAreInert(t *testing.T) {
	t.Parallel()

	f := newFilter(t, "spam")

	t.Run("link in text", func(t *testing.T) {
		t.Parallel()
		v := f.Evaluate(groupMessage(1, "join t.me/cheapstuff"))
		assert.False(t, v.Violates())
		assert.Equal(t, "t.me/cheapstuff", v.SuspiciousLink)
	})

	t.Run("hidden text link", func(t *testing.T) {
		t.Parallel()
		msg := groupMessage(1, "click here")
		msg.Entities = []Entity{{Kind: EntityTextLink, Offset: 0, Length: 10, URL: "https://bit.ly/abc"}}
		v := f.Evaluate(msg)
		assert.False(t, v.Violates())
		assert.Equal(t, "bit.ly/abc", v.SuspiciousLink)
	})

	t.Run("banned term takes precedence", func(t *testing.T) {
		t.Parallel()
		v := f.Evaluate(groupMessage(1, "spam t.me/x"))
		assert.True(t, v.Violates())
		assert.Empty(t, v.SuspiciousLink)
	})
}

func TestEntityText(t *testing.T) {
	t.Parallel()

	// The emoji takes two UTF-16 units.
	text := "😀 see example.com"
	assert.Equal(t, "example.com", entityText(text, Entity{Kind: EntityURL, Offset: 7, Length: 11}))
	assert.Empty(t, entityText(text, Entity{Kind: EntityURL, Offset: 7, Length: 100}))
	assert.Empty(t, entityText(text, Entity{Kind: EntityURL, Offset: -1, Length: 2}))
}

func TestRemediateSequence(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	deferrer := &clockDeferrer{clock: clock}
	platform := newFakePlatform()
	r := NewRemediator(deferrer, 10*time.Second, "warning for %s", nil)

	msg := groupMessage(7, "spam")
	action := r.Remediate(context.Background(), platform, msg, Verdict{MatchedTerm: "spam"})

	require.Equal(t, StateWarned, action.State())
	assert.Equal(t, 101, action.WarningID())
	assert.Equal(t, "warning for Ali &lt;admin&gt;", action.WarningText())
	assert.Equal(t, []string{"warning_cleanup:-1001:101"}, deferrer.names)

	calls := platform.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, call{op: "delete", chatID: -1001, messageID: 7}, calls[0])
	assert.Equal(t, "send", calls[1].op)
	assert.Equal(t, int64(-1001), calls[1].chatID)

	clock.Advance(9 * time.Second)
	assert.Equal(t, StateWarned, action.State(), "cleanup must not fire before the delay")
	assert.Len(t, platform.snapshot(), 2)

	clock.Advance(1 * time.Second)
	waitDone(t, action)

	assert.Equal(t, StateCleaned, action.State())
	assert.NoError(t, action.Err())
	calls = platform.snapshot()
	require.Len(t, calls, 3)
	assert.Equal(t, call{op: "delete", chatID: -1001, messageID: 101}, calls[2])
}

func TestRemediateFailures(t *testing.T) {
	t.Parallel()

	t.Run("delete failure aborts before warning", func(t *testing.T) {
		t.Parallel()
		platform := newFakePlatform()
		platform.deleteErrs[7] = errors.New("message to delete not found")
		deferrer := &clockDeferrer{clock: clockwork.NewFakeClock()}
		r := NewRemediator(deferrer, 10*time.Second, "warn %s", nil)

		action := r.Remediate(context.Background(), platform, groupMessage(7, "spam"), Verdict{MatchedTerm: "spam"})

		assert.Equal(t, StateFailed, action.State())
		assert.ErrorIs(t, action.Err(), ErrPlatformCall)
		assert.Len(t, platform.snapshot(), 1)
		assert.Empty(t, deferrer.names)
		waitDone(t, action)
	})

	t.Run("send failure aborts before cleanup", func(t *testing.T) {
		t.Parallel()
		platform := newFakePlatform()
		platform.sendErr = errors.New("not enough rights")
		deferrer := &clockDeferrer{clock: clockwork.NewFakeClock()}
		r := NewRemediator(deferrer, 10*time.Second, "warn %s", nil)

		action := r.Remediate(context.Background(), platform, groupMessage(7, "spam"), Verdict{MatchedTerm: "spam"})

		assert.Equal(t, StateFailed, action.State())
		assert.ErrorIs(t, action.Err(), ErrPlatformCall)
		calls := platform.snapshot()
		require.Len(t, calls, 2)
		assert.Equal(t, "delete", calls[0].op)
		assert.Equal(t, "send", calls[1].op)
		assert.Empty(t, deferrer.names)
	})

	t.Run("schedule failure", func(t *testing.T) {
		t.Parallel()
		platform := newFakePlatform()
		deferrer := &clockDeferrer{clock: clockwork.NewFakeClock(), err: errors.New("scheduler stopped")}
		r := NewRemediator(deferrer, 10*time.Second, "warn %s", nil)

		action := r.Remediate(context.Background(), platform, groupMessage(7, "spam"), Verdict{MatchedTerm: "spam"})

		assert.Equal(t, StateFailed, action.State())
		assert.NotErrorIs(t, action.Err(), ErrPlatformCall)
	})

	t.Run("cleanup failure is terminal", func(t *testing.T) {
		t.Parallel()
		clock := clockwork.NewFakeClock()
		platform := newFakePlatform()
		platform.deleteErrs[101] = errors.New("already gone")
		r := NewRemediator(&clockDeferrer{clock: clock}, 10*time.Second, "warn %s", nil)

		action := r.Remediate(context.Background(), platform, groupMessage(7, "spam"), Verdict{MatchedTerm: "spam"})
		clock.Advance(10 * time.Second)
		waitDone(t, action)

		assert.Equal(t, StateFailed, action.State())
		assert.ErrorIs(t, action.Err(), ErrPlatformCall)
		assert.Len(t, platform.snapshot(), 3)
	})
}

func TestRemediateIndependentCleanups(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	platform := newFakePlatform()
	r := NewRemediator(&clockDeferrer{clock: clock}, 10*time.Second, "warn %s", nil)

	first := r.Remediate(context.Background(), platform, groupMessage(1, "spam"), Verdict{MatchedTerm: "spam"})
	clock.Advance(2 * time.Second)
	second := r.Remediate(context.Background(), platform, groupMessage(2, "spam"), Verdict{MatchedTerm: "spam"})

	require.Equal(t, 101, first.WarningID())
	require.Equal(t, 102, second.WarningID())

	clock.Advance(8 * time.Second)
	waitDone(t, first)
	assert.Equal(t, StateCleaned, first.State())
	assert.Equal(t, StateWarned, second.State())

	clock.Advance(2 * time.Second)
	waitDone(t, second)
	assert.Equal(t, StateCleaned, second.State())

	var deleted []int
	for _, c := range platform.snapshot() {
		if c.op == "delete" {
			deleted = append(deleted, c.messageID)
		}
	}
	assert.Equal(t, []int{1, 2, 101, 102}, deleted)
}
