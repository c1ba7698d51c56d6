package moderation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrPlatformCall wraps every failed outbound platform call made while
// remediating.
var ErrPlatformCall = errors.New("platform call failed")

// Platform is the subset of the chat platform remediation needs.
type Platform interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	// SendMessage sends HTML formatted text and returns the new message id.
	SendMessage(ctx context.Context, chatID int64, text string) (int, error)
}

// Deferrer runs fn once after delay without blocking the caller.
type Deferrer interface {
	Defer(name string, delay time.Duration, fn func(ctx context.Context)) error
}

// State is a step of the remediation sequence.
type State int

const (
	StatePending State = iota
	StateDeleted
	StateWarned
	StateCleaned
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDeleted:
		return "deleted"
	case StateWarned:
		return "warned"
	case StateCleaned:
		return "cleaned"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Action is one remediation sequence for one violating message. It moves
// Pending -> Deleted -> Warned -> Cleaned, or to Failed from any step, and is
// never retried.
type Action struct {
	chatID       int64
	messageID    int
	warningText  string
	cleanupAfter time.Duration

	mu        sync.Mutex
	state     State
	warningID int
	err       error
	done      chan struct{}
}

func newAction(chatID int64, messageID int, warningText string, cleanupAfter time.Duration) *Action {
	return &Action{
		chatID:       chatID,
		messageID:    messageID,
		warningText:  warningText,
		cleanupAfter: cleanupAfter,
		done:         make(chan struct{}),
	}
}

// ChatID is the chat the violation happened in.
func (a *Action) ChatID() int64 { return a.chatID }

// MessageID is the violating message.
func (a *Action) MessageID() int { return a.messageID }

// WarningText is the warning body that was (or would have been) sent.
func (a *Action) WarningText() string { return a.warningText }

// CleanupAfter is the delay between the warning and its deletion.
func (a *Action) CleanupAfter() time.Duration { return a.cleanupAfter }

// State returns the current state.
func (a *Action) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// WarningID returns the warning message id, zero before Warned.
func (a *Action) WarningID() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.warningID
}

// Err returns the failure that moved the action to Failed.
func (a *Action) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Done is closed once the action reaches Cleaned or Failed.
func (a *Action) Done() <-chan struct{} {
	return a.done
}

func (a *Action) advance(to State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = to
	if to == StateCleaned {
		close(a.done)
	}
}

func (a *Action) warned(warningID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateWarned
	a.warningID = warningID
}

func (a *Action) fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = StateFailed
	a.err = err
	close(a.done)
}

// Remediator executes remediation sequences.
type Remediator struct {
	deferrer        Deferrer
	cleanupAfter    time.Duration
	warningTemplate string
	logger          *slog.Logger
}

// NewRemediator creates a Remediator. warningTemplate receives the escaped
// display name of the violating user through a single %s verb.
func NewRemediator(deferrer Deferrer, cleanupAfter time.Duration, warningTemplate string, logger *slog.Logger) *Remediator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Remediator{
		deferrer:        deferrer,
		cleanupAfter:    cleanupAfter,
		warningTemplate: warningTemplate,
		logger:          logger.With("component", "remediator"),
	}
}

// Remediate deletes msg, warns its sender, and schedules the warning for
// deletion. The delete and warn steps run before it returns; cleanup runs
// later on the deferrer. Failures are logged and recorded on the returned
// Action; nothing is retried.
func (r *Remediator) Remediate(ctx context.Context, platform Platform, msg Message, verdict Verdict) *Action {
	action := newAction(msg.Chat.ID, msg.ID, fmt.Sprintf(r.warningTemplate, html.EscapeString(msg.Sender.DisplayName)), r.cleanupAfter)
	log := r.logger.With(
		"chat_id", msg.Chat.ID,
		"user_id", msg.Sender.ID,
		"message_id", msg.ID,
		"matched_term", verdict.MatchedTerm,
	)

	if err := platform.DeleteMessage(ctx, action.chatID, action.messageID); err != nil {
		action.fail(fmt.Errorf("%w: delete message %d: %w", ErrPlatformCall, action.messageID, err))
		log.ErrorContext(ctx, "Failed to delete violating message", "error", err, "state", StateFailed)
		return action
	}
	action.advance(StateDeleted)
	log.InfoContext(ctx, "Deleted violating message")

	warningID, err := platform.SendMessage(ctx, action.chatID, action.warningText)
	if err != nil {
		action.fail(fmt.Errorf("%w: send warning: %w", ErrPlatformCall, err))
		log.ErrorContext(ctx, "Failed to send warning", "error", err, "state", StateFailed)
		return action
	}
	action.warned(warningID)
	log = log.With("warning_id", warningID)

	name := fmt.Sprintf("warning_cleanup:%d:%d", action.chatID, warningID)
	err = r.deferrer.Defer(name, action.cleanupAfter, func(ctx context.Context) {
		if err := platform.DeleteMessage(ctx, action.chatID, warningID); err != nil {
			action.fail(fmt.Errorf("%w: delete warning %d: %w", ErrPlatformCall, warningID, err))
			log.WarnContext(ctx, "Failed to delete warning", "error", err, "state", StateFailed)
			return
		}
		action.advance(StateCleaned)
		log.DebugContext(ctx, "Deleted warning")
	})
	if err != nil {
		action.fail(fmt.Errorf("schedule warning cleanup: %w", err))
		log.ErrorContext(ctx, "Failed to schedule warning cleanup", "error", err, "state", StateFailed)
		return action
	}

	log.InfoContext(ctx, "Warned user", "cleanup_after", action.cleanupAfter)
	return action
}
