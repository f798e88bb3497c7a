package chat

import "sync"

// State is the controller state
type State int

const (
	StateIdle State = iota
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Outcome is how a turn ended
type Outcome int

const (
	// OutcomePending means the turn is still streaming.
	OutcomePending Outcome = iota
	// OutcomeCompleted means the end frame arrived or the body ended.
	OutcomeCompleted
	// OutcomeCancelled means the user stopped the turn.
	OutcomeCancelled
	// OutcomeFailed means the transport or the decoder failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeCompleted:
		return "completed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is the handle returned by Submit for one streamed request
type Turn struct {
	id    uint64
	input string

	done    chan struct{}
	once    sync.Once
	outcome Outcome
	err     error
}

func newTurn(id uint64, input string) *Turn {
	return &Turn{id: id, input: input, done: make(chan struct{})}
}

// ID returns the turn sequence number, starting at 1
func (t *Turn) ID() uint64 {
	return t.id
}

// Input returns the text the user submitted
func (t *Turn) Input() string {
	return t.input
}

// Done is closed once the stream goroutine has exited.
// No message of this turn is appended after that.
func (t *Turn) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the turn ends and returns its outcome.
// The error is nil for completed turns.
func (t *Turn) Wait() (Outcome, error) {
	<-t.done
	return t.outcome, t.err
}

func (t *Turn) complete(outcome Outcome, err error) {
	t.once.Do(func() {
		t.outcome = outcome
		t.err = err
		close(t.done)
	})
}
