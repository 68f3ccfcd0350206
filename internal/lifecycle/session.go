package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

// State is the lifecycle state of a node process.
type State string

// Session states.
const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateFailed   State = "failed"
)

// Session events.
const (
	eventStart   = "start"
	eventStarted = "started"
	eventFail    = "fail"
	eventStop    = "stop"
	eventStopped = "stopped"
)

// newStateMachine creates the session state machine:
//
//	stopped -> starting -> running -> stopping -> stopped
//	              \-> failed -> starting
func newStateMachine(history *[]State) *fsm.FSM {
	return fsm.NewFSM(
		string(StateStopped),
		fsm.Events{
			{Name: eventStart, Src: []string{string(StateStopped), string(StateFailed)}, Dst: string(StateStarting)},
			{Name: eventStarted, Src: []string{string(StateStarting)}, Dst: string(StateRunning)},
			{Name: eventFail, Src: []string{string(StateStarting)}, Dst: string(StateFailed)},
			{Name: eventStop, Src: []string{string(StateRunning)}, Dst: string(StateStopping)},
			{Name: eventStopped, Src: []string{string(StateStopping)}, Dst: string(StateStopped)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				*history = append(*history, State(e.Dst))
			},
		},
	)
}

// Session is the handle of one node process started by an Orchestrator.
// It holds the collaborator handles created while starting.
type Session struct {
	id        string
	process   string
	label     string
	createdAt time.Time

	mu        sync.Mutex
	machine   *fsm.FSM
	history   []State
	err       error
	config    *ProcessConfig
	storage   Storage
	sync      SyncEngine
	network   NetworkInterface
	api       PublicAPI
	forger    ForgingEngine
	lastBlock *Block
	forgers   int
}

func newSession(process string) *Session {
	s := &Session{
		id:        uuid.NewString(),
		process:   process,
		createdAt: time.Now(),
	}
	s.history = []State{StateStopped}
	s.machine = newStateMachine(&s.history)
	return s
}

// ID returns the unique session id.
func (s *Session) ID() string { return s.id }

// Process returns "relay" or "forger".
func (s *Session) Process() string { return s.process }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State(s.machine.Current())
}

// History returns every state the session has entered, oldest first.
func (s *Session) History() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.history...)
}

// Err returns the failure that moved the session to StateFailed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Label returns the node logger label of the process.
func (s *Session) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Config returns the process configuration, nil before the config stage.
func (s *Session) Config() *ProcessConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// LastBlock returns the last local block reported when the chain was
// initialized, nil when the chain was empty.
func (s *Session) LastBlock() *Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBlock
}

// Forgers returns the number of delegates a forger loaded.
func (s *Session) Forgers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forgers
}

// HasNetwork reports whether the network interface handle exists.
func (s *Session) HasNetwork() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network != nil
}

// HasPublicAPI reports whether the public API handle exists.
func (s *Session) HasPublicAPI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api != nil
}

// transition fires a state machine event.
func (s *Session) transition(ctx context.Context, event string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Event(context.WithoutCancel(ctx), event)
}

// fail records err and moves the session to StateFailed.
func (s *Session) fail(ctx context.Context, err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	_ = s.transition(ctx, eventFail)
}

// set runs fn with the session locked.
func (s *Session) set(fn func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}
