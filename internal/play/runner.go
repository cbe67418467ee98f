// Package play drives a single player through one tour's ordered stops:
// answer verification, failure counting, hint and skip gating, and the
// intro/playing/transition/completed state machine. All of its state is
// ephemeral session state; nothing here ever touches persistence.
package play

import (
	"errors"
	"strings"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

// State is the player-facing phase of a run.
type State string

const (
	StateIntro      State = "intro"
	StatePlaying    State = "playing"
	StateTransition State = "transition"
	StateCompleted  State = "completed"
)

// Event types emitted to the session observer.
const (
	EventStopCompleted = "stop_completed"
	EventTourCompleted = "tour_completed"
	EventWrongAnswer   = "wrong_answer"
	EventHintSuggested = "hint_suggested"
	EventSkipUnlocked  = "skip_unlocked"
)

// Event is a notification about the run, delivered to the observer
// registered at construction. Observers pace the UI; they never gate a
// transition.
type Event struct {
	Type       string `json:"type"`
	StopNumber int    `json:"stopNumber,omitempty"`
}

var (
	ErrNotStarted   = errors.New("run not started")
	ErrNotPlaying   = errors.New("no stop awaiting an answer")
	ErrNotInTransit = errors.New("no transition to advance from")
	ErrNoStops      = errors.New("tour has no stops")
	ErrSkipLocked   = errors.New("skip not available")
)

// Runner is the finite-state machine for one play session. It reads the
// stop list it was given and owns only ephemeral state: current index,
// state, and the failed-attempt count for the active stop. Not safe for
// concurrent use; callers serialize access.
type Runner struct {
	stops  []tourquest.Stop
	notify func(Event)

	state  State
	index  int
	failed int
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver registers a callback for run events.
func WithObserver(fn func(Event)) Option {
	return func(r *Runner) { r.notify = fn }
}

// NewRunner builds a runner over a tour's ordered stop list.
func NewRunner(stops []tourquest.Stop, opts ...Option) (*Runner, error) {
	if len(stops) == 0 {
		return nil, ErrNoStops
	}
	r := &Runner{
		stops: stops,
		state: StateIntro,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Result describes the outcome of an answer submission or skip.
type Result struct {
	Correct       bool
	State         State
	StopNumber    int
	TourCompleted bool
	SkipAvailable bool
	HintSuggested bool
}

// State returns the current phase.
func (r *Runner) State() State { return r.state }

// StopIndex returns the zero-based index of the current stop.
func (r *Runner) StopIndex() int { return r.index }

// TotalStops returns the number of stops in the run.
func (r *Runner) TotalStops() int { return len(r.stops) }

// FailedAttempts returns the wrong-answer count for the active stop.
func (r *Runner) FailedAttempts() int { return r.failed }

// CurrentStop returns the stop the player is on. The second return is
// false once the run has completed.
func (r *Runner) CurrentStop() (tourquest.Stop, bool) {
	if r.state == StateCompleted {
		return tourquest.Stop{}, false
	}
	return r.stops[r.index], true
}

// PeekNextStop returns the stop after the current one, if any. Used for
// the transition screen's preview.
func (r *Runner) PeekNextStop() (tourquest.Stop, bool) {
	if r.state == StateCompleted || r.index+1 >= len(r.stops) {
		return tourquest.Stop{}, false
	}
	return r.stops[r.index+1], true
}

// SkipAvailable reports whether the skip affordance has unlocked for the
// current stop: enough failed attempts, and skipping not disabled.
func (r *Runner) SkipAvailable() bool {
	if r.state != StatePlaying {
		return false
	}
	stop := r.stops[r.index]
	return stop.EnableSkip && r.failed >= failuresAllowed(stop)
}

// Start begins the run. Only valid from the intro screen.
func (r *Runner) Start() error {
	if r.state != StateIntro {
		return ErrNotStarted
	}
	r.state = StatePlaying
	return nil
}

// Submit adjudicates an answer for the current stop. A correct answer
// moves to the transition screen, or straight to completed when the last
// stop was just solved. A wrong answer increments the failure count and
// leaves the machine in playing.
func (r *Runner) Submit(input string) (Result, error) {
	if r.state != StatePlaying {
		return Result{}, ErrNotPlaying
	}

	stop := r.stops[r.index]
	if Verify(stop, input) {
		return r.succeed(stop), nil
	}
	return r.fail(stop), nil
}

// Skip forces a success for the current stop. Available only once the
// failure threshold has been reached; past that point it never requires
// re-verification.
func (r *Runner) Skip() (Result, error) {
	if r.state != StatePlaying {
		return Result{}, ErrNotPlaying
	}
	if !r.SkipAvailable() {
		return Result{}, ErrSkipLocked
	}
	return r.succeed(r.stops[r.index]), nil
}

// Advance leaves the transition screen for the next stop, resetting the
// failure count.
func (r *Runner) Advance() error {
	if r.state != StateTransition {
		return ErrNotInTransit
	}
	r.index++
	r.failed = 0
	r.state = StatePlaying
	return nil
}

// Restart resets to a fresh session at the intro screen. Completed runs
// are not resumable; this is the only way out of the terminal state.
func (r *Runner) Restart() {
	r.index = 0
	r.failed = 0
	r.state = StateIntro
}

func (r *Runner) succeed(stop tourquest.Stop) Result {
	r.failed = 0

	last := r.index == len(r.stops)-1
	if last {
		// The last stop completes the run directly; the transition
		// interstitial is never shown.
		r.state = StateCompleted
		r.emit(Event{Type: EventTourCompleted, StopNumber: stop.StopNumber})
	} else {
		r.state = StateTransition
		r.emit(Event{Type: EventStopCompleted, StopNumber: stop.StopNumber})
	}

	return Result{
		Correct:       true,
		State:         r.state,
		StopNumber:    stop.StopNumber,
		TourCompleted: last,
	}
}

func (r *Runner) fail(stop tourquest.Stop) Result {
	r.failed++
	r.emit(Event{Type: EventWrongAnswer, StopNumber: stop.StopNumber})

	hint := r.failed == 1 && stop.AutoShowHint && len(stop.Tips) > 0
	if hint {
		r.emit(Event{Type: EventHintSuggested, StopNumber: stop.StopNumber})
	}
	if r.failed == failuresAllowed(stop) && stop.EnableSkip {
		r.emit(Event{Type: EventSkipUnlocked, StopNumber: stop.StopNumber})
	}

	return Result{
		State:         r.state,
		StopNumber:    stop.StopNumber,
		SkipAvailable: r.SkipAvailable(),
		HintSuggested: hint,
	}
}

func (r *Runner) emit(ev Event) {
	if r.notify != nil {
		r.notify(ev)
	}
}

// failuresAllowed falls back to 3 for stops that never had a threshold
// set; store-created stops always carry an explicit value.
func failuresAllowed(stop tourquest.Stop) int {
	if stop.FailuresAllowed > 0 {
		return stop.FailuresAllowed
	}
	return 3
}

// Verify adjudicates input against a stop's verification challenge.
// Info-only stops advance on acknowledgement alone. GPS and photo stops
// are manual-confirm placeholders: the player attests they are there and
// the stop passes. Real geofence and image checks would slot in here.
func Verify(stop tourquest.Stop, input string) bool {
	if stop.IsInfoOnly {
		return true
	}

	switch stop.VerificationType {
	case tourquest.VerificationText:
		return strings.EqualFold(
			strings.TrimSpace(input),
			strings.TrimSpace(stop.Password),
		)
	case tourquest.VerificationMultipleChoice:
		return input == stop.CorrectAnswer
	case tourquest.VerificationGPS, tourquest.VerificationPhoto:
		return true
	default:
		return false
	}
}
