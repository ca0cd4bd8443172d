package record

import (
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/deskrec/deskrec/discovery"
	"github.com/deskrec/deskrec/encoder"
)

const (
	defaultStartGrace  = 2 * time.Second
	defaultStopGrace   = 5 * time.Second
	defaultEventBuffer = 32
)

// Options configures a Recorder.
type Options struct {
	Logger *slog.Logger

	// StartGrace bounds how long a session may sit in Starting before it is
	// assumed live despite producing no progress output.
	StartGrace time.Duration
	// StopGrace bounds how long a graceful stop may take before the encoder
	// is force killed.
	StopGrace time.Duration
	// EventBuffer sizes the event channel.
	EventBuffer int
}

func normalizeOptions(options *Options) Options {
	opts := Options{}
	if options != nil {
		opts = *options
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StartGrace <= 0 {
		opts.StartGrace = defaultStartGrace
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = defaultStopGrace
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}
	return opts
}

// Recorder is the non-blocking control surface over at most one recording
// session. Start and Stop return immediately; outcomes arrive on Events.
type Recorder struct {
	log        *slog.Logger
	startGrace time.Duration
	stopGrace  time.Duration

	events chan Event

	mu      sync.Mutex
	state   State
	sess    *session
	targets map[string]struct{}
}

func New(options *Options) *Recorder {
	opts := normalizeOptions(options)
	return &Recorder{
		log:        opts.Logger,
		startGrace: opts.StartGrace,
		stopGrace:  opts.StopGrace,
		events:     make(chan Event, opts.EventBuffer),
		state:      Idle,
	}
}

// Events delivers state transitions and progress updates. The channel is
// never closed; a slow consumer loses the oldest state event or the newest
// progress event, never blocks a session.
func (r *Recorder) Events() <-chan Event {
	return r.events
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetTargets installs the enumeration snapshot Start validates against. An
// empty snapshot disables the check.
func (r *Recorder) SetTargets(targets []discovery.Target) {
	ids := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		ids[t.ID] = struct{}{}
	}
	r.mu.Lock()
	r.targets = ids
	r.mu.Unlock()
}

// Start validates the request, builds the encoder invocation and launches the
// session. It returns once the process is spawned; progress and the eventual
// terminal state arrive on Events. A live session rejects a second Start.
func (r *Recorder) Start(req encoder.Request, devices []discovery.AudioDevice, info encoder.Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle && !r.state.Terminal() {
		return &StateConflictError{State: r.state}
	}
	if len(r.targets) > 0 {
		if _, ok := r.targets[req.Target.ID]; !ok {
			return &encoder.ValidationError{Field: "target", Reason: "not in the current enumeration; refresh targets"}
		}
	}

	command, err := encoder.Build(req, devices, info)
	if err != nil {
		return err
	}

	cmd := exec.Command(command.Path, command.Args...)
	sess, err := newSession(cmd, r.log, r.startGrace, r.stopGrace, r.transition, r.emitProgress)
	if err != nil {
		return err
	}

	r.sess = sess
	r.state = Starting
	r.log.Info("recording session starting",
		"target", req.Target.ID, "output", req.OutputPath, "pid", sess.pid())
	r.emitState(Starting, "")

	go sess.run()
	return nil
}

// Stop requests a graceful shutdown of the live session. It returns
// immediately and is a no-op when nothing is running or a stop is already in
// flight.
func (r *Recorder) Stop() {
	r.mu.Lock()
	sess := r.sess
	state := r.state
	r.mu.Unlock()

	if sess == nil || state.Terminal() || state == Idle {
		return
	}
	sess.requestStop()
}

// transition is the session's state sink. Called only from the supervision
// goroutine.
func (r *Recorder) transition(state State, diagnostic string) {
	r.mu.Lock()
	r.state = state
	if state.Terminal() {
		r.sess = nil
	}
	r.mu.Unlock()

	if diagnostic != "" {
		r.log.Error("recording session "+state.String(), "diagnostic", diagnostic)
	} else {
		r.log.Info("recording session " + state.String())
	}
	r.emitState(state, diagnostic)
}

// emitState delivers a state event, discarding the oldest queued event when
// the buffer is full so transitions keep their order.
func (r *Recorder) emitState(state State, diagnostic string) {
	ev := Event{Kind: EventStateChange, State: state, Diagnostic: diagnostic, Time: time.Now()}
	for {
		select {
		case r.events <- ev:
			return
		default:
			select {
			case <-r.events:
			default:
			}
		}
	}
}

// emitProgress delivers a progress event, dropping it when the buffer is
// full.
func (r *Recorder) emitProgress(elapsed time.Duration) {
	ev := Event{Kind: EventProgress, State: Recording, Elapsed: elapsed, Time: time.Now()}
	select {
	case r.events <- ev:
	default:
	}
}
