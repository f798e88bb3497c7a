package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/diogo/ssechat/internal/api"
	apierrors "github.com/diogo/ssechat/internal/errors"
	"github.com/diogo/ssechat/internal/logger"
	"github.com/diogo/ssechat/internal/models"
)

// Streamer runs one streamed request and reports each decoded message.
// *api.Client implements it.
type Streamer interface {
	Stream(ctx context.Context, text string, fn api.MessageFunc) error
}

// EventKind identifies what changed
type EventKind int

const (
	// EventMessage reports one appended message, user or streamed.
	EventMessage EventKind = iota
	// EventTurnStarted reports a new session.
	EventTurnStarted
	// EventTurnEnded reports the outcome of a session.
	EventTurnEnded
	// EventReset reports that the conversation was restored to its greeting.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventTurnStarted:
		return "turn_started"
	case EventTurnEnded:
		return "turn_ended"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after the state it describes is applied
type Event struct {
	Kind    EventKind
	Turn    uint64
	Message models.Message
	Outcome Outcome
	Err     error
}

// Listener receives controller events in order. It runs outside the
// controller lock but must not call Submit, Stop or Reset synchronously.
type Listener func(Event)

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithLogger sets the controller logger
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithListener registers a listener for every event
func WithListener(l Listener) ControllerOption {
	return func(c *Controller) {
		c.listeners = append(c.listeners, l)
	}
}

// WithResetOnStop makes Stop also restore the conversation to its greeting
func WithResetOnStop(enabled bool) ControllerOption {
	return func(c *Controller) {
		c.resetOnStop = enabled
	}
}

// WithTurnTimeout bounds every turn. 0 disables the bound.
func WithTurnTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.turnTimeout = d
	}
}

// session is the transient state of the one active request
type session struct {
	turn   *Turn
	cancel context.CancelFunc
}

// Controller moves between Idle and Streaming. At most one session is
// active at any time.
type Controller struct {
	streamer    Streamer
	conv        *Conversation
	logger      *slog.Logger
	listeners   []Listener
	resetOnStop bool
	turnTimeout time.Duration

	mu      sync.Mutex
	emitMu  sync.Mutex // keeps listener order equal to mutation order
	state   State
	session *session
	nextID  uint64
}

// NewController creates a Controller that appends to conv
func NewController(streamer Streamer, conv *Conversation, opts ...ControllerOption) *Controller {
	c := &Controller{
		streamer: streamer,
		conv:     conv,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrNop(c.logger)
	return c
}

// Conversation returns the conversation the controller appends to
func (c *Controller) Conversation() *Conversation {
	return c.conv
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the streaming turn, or nil when idle
func (c *Controller) Active() *Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.turn
}

// Submit starts a turn for input. Blank input returns ErrEmptyInput and
// a second turn while one is streaming returns ErrTurnInProgress; neither
// changes any state.
func (c *Controller) Submit(ctx context.Context, input string) (*Turn, error) {
	if strings.TrimSpace(input) == "" {
		return nil, apierrors.ErrEmptyInput
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return nil, apierrors.ErrTurnInProgress
	}

	c.nextID++
	turn := newTurn(c.nextID, input)

	var turnCtx context.Context
	var cancel context.CancelFunc
	if c.turnTimeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, c.turnTimeout)
	} else {
		turnCtx, cancel = context.WithCancel(ctx)
	}

	sess := &session{turn: turn, cancel: cancel}
	c.session = sess
	c.state = StateStreaming

	msg := c.conv.AppendUserMessage(input)
	c.logger.Debug("turn started", "turn", turn.id, "chars", len(input))

	c.unlockAndEmit(
		Event{Kind: EventMessage, Turn: turn.id, Message: msg},
		Event{Kind: EventTurnStarted, Turn: turn.id},
	)

	go c.run(turnCtx, sess)

	return turn, nil
}

// Stop cancels the active turn. It reports false when nothing was streaming.
// Once Stop returns no message of the stopped turn is appended.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		return false
	}

	events := c.abortLocked(sess)
	if c.resetOnStop {
		c.conv.Reset()
		events = append(events, Event{Kind: EventReset})
	}

	c.logger.Info("turn stopped", "turn", sess.turn.id, "reset", c.resetOnStop)
	c.unlockAndEmit(events...)
	return true
}

// Reset stops any active turn and restores the conversation to its greeting
func (c *Controller) Reset() {
	c.mu.Lock()

	var events []Event
	if sess := c.session; sess != nil {
		events = c.abortLocked(sess)
	}
	c.conv.Reset()
	events = append(events, Event{Kind: EventReset})

	c.logger.Debug("conversation reset")
	c.unlockAndEmit(events...)
}

// abortLocked cancels sess and returns to Idle. c.mu must be held.
func (c *Controller) abortLocked(sess *session) []Event {
	sess.cancel()
	c.session = nil
	c.state = StateIdle
	return []Event{{
		Kind:    EventTurnEnded,
		Turn:    sess.turn.id,
		Outcome: OutcomeCancelled,
		Err:     apierrors.NewCancelledError(context.Canceled),
	}}
}

func (c *Controller) run(ctx context.Context, sess *session) {
	defer sess.cancel()

	err := c.streamer.Stream(ctx, sess.turn.input, func(m models.Message) {
		c.appendStreamed(sess, m)
	})
	c.finish(sess, err)
}

func (c *Controller) appendStreamed(sess *session, m models.Message) {
	c.mu.Lock()
	if c.session != sess {
		c.mu.Unlock()
		c.logger.Debug("dropping message of stopped turn", "turn", sess.turn.id)
		return
	}

	msg := c.conv.AppendStreamedMessage(m.Role, m.Content)
	c.unlockAndEmit(Event{Kind: EventMessage, Turn: sess.turn.id, Message: msg})
}

func (c *Controller) finish(sess *session, err error) {
	turn := sess.turn

	c.mu.Lock()
	if c.session != sess {
		// Stop or Reset already moved to Idle and emitted the outcome
		c.mu.Unlock()
		turn.complete(OutcomeCancelled, apierrors.NewCancelledError(context.Canceled))
		return
	}

	c.session = nil
	c.state = StateIdle

	var outcome Outcome
	switch {
	case err == nil:
		outcome = OutcomeCompleted
	case errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeFailed
		err = fmt.Errorf("turn timed out after %s: %w", c.turnTimeout, err)
	case apierrors.IsCancelled(err):
		outcome = OutcomeCancelled
	default:
		outcome = OutcomeFailed
	}

	var events []Event
	if outcome == OutcomeFailed {
		msg := c.conv.AppendStreamedMessage(models.RoleAssistant, "Error: "+err.Error())
		events = append(events, Event{Kind: EventMessage, Turn: turn.id, Message: msg})
		c.logger.Error("turn failed", "turn", turn.id, "error", err)
	} else {
		c.logger.Debug("turn finished", "turn", turn.id, "outcome", outcome)
	}
	events = append(events, Event{Kind: EventTurnEnded, Turn: turn.id, Outcome: outcome, Err: err})

	c.unlockAndEmit(events...)
	turn.complete(outcome, err)
}

// unlockAndEmit releases c.mu and delivers events before any later mutation
// can deliver its own.
func (c *Controller) unlockAndEmit(events ...Event) {
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()

	for _, ev := range events {
		for _, l := range c.listeners {
			l(ev)
		}
	}
}
