package play

import (
	"errors"
	"testing"

	"github.com/mysteryserved/tourquest/internal/tourquest"
)

func textStop(number int, password string) tourquest.Stop {
	return tourquest.Stop{
		ID:               "stop",
		StopNumber:       number,
		Name:             "Stop",
		VerificationType: tourquest.VerificationText,
		Password:         password,
		FailuresAllowed:  2,
		AutoShowHint:     true,
		EnableSkip:       true,
		Tips:             []string{"a hint"},
	}
}

func mustRunner(t *testing.T, stops []tourquest.Stop, opts ...Option) *Runner {
	t.Helper()
	r, err := NewRunner(stops, opts...)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r
}

func startPlaying(t *testing.T, r *Runner) {
	t.Helper()
	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestNewRunnerRejectsEmptyTour(t *testing.T) {
	if _, err := NewRunner(nil); !errors.Is(err, ErrNoStops) {
		t.Errorf("expected ErrNoStops, got %v", err)
	}
}

func TestVerifyText(t *testing.T) {
	stop := textStop(1, "1212")

	tests := []struct {
		input string
		want  bool
	}{
		{"1212", true},
		{"  1212  ", true},
		{"1213", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Verify(stop, tt.input); got != tt.want {
			t.Errorf("Verify(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestVerifyTextCaseInsensitive(t *testing.T) {
	stop := textStop(1, "MAGNIFY")
	if !Verify(stop, "magnify") {
		t.Error("text verification should ignore case")
	}
	if !Verify(stop, " Magnify ") {
		t.Error("text verification should ignore surrounding whitespace")
	}
}

func TestVerifyMultipleChoice(t *testing.T) {
	stop := tourquest.Stop{
		VerificationType: tourquest.VerificationMultipleChoice,
		Options:          []string{"A", "B", "C"},
		CorrectAnswer:    "B",
	}
	if !Verify(stop, "B") {
		t.Error("correct option rejected")
	}
	if Verify(stop, "A") {
		t.Error("wrong option accepted")
	}
	// Unlike text, choice matching is exact.
	if Verify(stop, "b") {
		t.Error("choice matching must be case sensitive")
	}
}

func TestVerifyInfoOnlyIgnoresChallenge(t *testing.T) {
	stop := textStop(1, "secret")
	stop.IsInfoOnly = true
	if !Verify(stop, "anything at all") {
		t.Error("info-only stops pass on acknowledgement")
	}
}

func TestVerifyManualConfirmTypes(t *testing.T) {
	for _, vt := range []tourquest.VerificationType{tourquest.VerificationGPS, tourquest.VerificationPhoto} {
		stop := tourquest.Stop{VerificationType: vt}
		if !Verify(stop, "") {
			t.Errorf("%s stops should pass on manual confirmation", vt)
		}
	}
}

func TestVerifyUnknownTypeFails(t *testing.T) {
	stop := tourquest.Stop{VerificationType: "telepathy"}
	if Verify(stop, "anything") {
		t.Error("unknown verification type must never pass")
	}
}

func TestStartOnlyFromIntro(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "x")})

	if r.State() != StateIntro {
		t.Fatalf("initial state = %q", r.State())
	}
	startPlaying(t, r)
	if r.State() != StatePlaying {
		t.Fatalf("state after start = %q", r.State())
	}
	if err := r.Start(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("second start should fail, got %v", err)
	}
}

func TestSubmitCorrectMovesToTransition(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "1212"), textStop(2, "mystery")})
	startPlaying(t, r)

	res, err := r.Submit("1212")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct {
		t.Error("correct answer reported wrong")
	}
	if res.State != StateTransition || r.State() != StateTransition {
		t.Errorf("state = %q, want transition", r.State())
	}
	if res.TourCompleted {
		t.Error("mid-tour success must not complete the run")
	}
}

func TestSubmitWrongStaysPlaying(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "1212")})
	startPlaying(t, r)

	res, err := r.Submit("wrong")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Correct {
		t.Error("wrong answer reported correct")
	}
	if r.State() != StatePlaying {
		t.Errorf("state = %q, want playing", r.State())
	}
	if r.FailedAttempts() != 1 {
		t.Errorf("failed attempts = %d, want 1", r.FailedAttempts())
	}
}

func TestSubmitOutsidePlaying(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "x")})
	if _, err := r.Submit("x"); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("submit from intro: %v", err)
	}
}

func TestHintSuggestedOnFirstFailureOnly(t *testing.T) {
	var events []Event
	r := mustRunner(t, []tourquest.Stop{textStop(1, "1212")},
		WithObserver(func(ev Event) { events = append(events, ev) }))
	startPlaying(t, r)

	res, _ := r.Submit("wrong")
	if !res.HintSuggested {
		t.Error("first failure should suggest the hint")
	}
	res, _ = r.Submit("wrong again")
	if res.HintSuggested {
		t.Error("hint is suggested exactly once")
	}

	hints := 0
	for _, ev := range events {
		if ev.Type == EventHintSuggested {
			hints++
		}
	}
	if hints != 1 {
		t.Errorf("hint events = %d, want 1", hints)
	}
}

func TestNoHintWithoutTips(t *testing.T) {
	stop := textStop(1, "1212")
	stop.Tips = nil
	r := mustRunner(t, []tourquest.Stop{stop})
	startPlaying(t, r)

	res, _ := r.Submit("wrong")
	if res.HintSuggested {
		t.Error("no tips, no hint")
	}
}

func TestNoHintWhenAutoShowDisabled(t *testing.T) {
	stop := textStop(1, "1212")
	stop.AutoShowHint = false
	r := mustRunner(t, []tourquest.Stop{stop})
	startPlaying(t, r)

	res, _ := r.Submit("wrong")
	if res.HintSuggested {
		t.Error("auto hint disabled but hint suggested")
	}
}

func TestSkipUnlocksAtThreshold(t *testing.T) {
	var events []Event
	r := mustRunner(t, []tourquest.Stop{textStop(1, "1212"), textStop(2, "x")},
		WithObserver(func(ev Event) { events = append(events, ev) }))
	startPlaying(t, r)

	if _, err := r.Skip(); !errors.Is(err, ErrSkipLocked) {
		t.Fatalf("skip before any failure: %v", err)
	}

	r.Submit("wrong")
	if r.SkipAvailable() {
		t.Error("skip unlocked below threshold")
	}
	res, _ := r.Submit("wrong")
	if !res.SkipAvailable || !r.SkipAvailable() {
		t.Error("skip should unlock at the failure threshold")
	}

	unlocked := false
	for _, ev := range events {
		if ev.Type == EventSkipUnlocked {
			unlocked = true
		}
	}
	if !unlocked {
		t.Error("skip_unlocked event missing")
	}

	// Skipping behaves exactly like a correct answer.
	skipRes, err := r.Skip()
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !skipRes.Correct || skipRes.State != StateTransition {
		t.Errorf("skip result = %+v", skipRes)
	}
	if r.State() != StateTransition {
		t.Errorf("state after skip = %q", r.State())
	}
}

func TestSkipDisabledStop(t *testing.T) {
	stop := textStop(1, "1212")
	stop.EnableSkip = false
	r := mustRunner(t, []tourquest.Stop{stop})
	startPlaying(t, r)

	r.Submit("wrong")
	r.Submit("wrong")
	r.Submit("wrong")
	if r.SkipAvailable() {
		t.Error("skip must stay locked when disabled on the stop")
	}
	if _, err := r.Skip(); !errors.Is(err, ErrSkipLocked) {
		t.Errorf("skip on disabled stop: %v", err)
	}
}

func TestFailuresAllowedFallback(t *testing.T) {
	stop := textStop(1, "1212")
	stop.FailuresAllowed = 0
	r := mustRunner(t, []tourquest.Stop{stop})
	startPlaying(t, r)

	r.Submit("a")
	r.Submit("b")
	if r.SkipAvailable() {
		t.Error("fallback threshold is 3, skip unlocked at 2")
	}
	r.Submit("c")
	if !r.SkipAvailable() {
		t.Error("skip should unlock at the fallback threshold of 3")
	}
}

func TestAdvanceResetsFailureCount(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "1212"), textStop(2, "x")})
	startPlaying(t, r)

	r.Submit("wrong")
	r.Submit("1212")
	if err := r.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if r.FailedAttempts() != 0 {
		t.Errorf("failed attempts after advance = %d", r.FailedAttempts())
	}
	if r.StopIndex() != 1 || r.State() != StatePlaying {
		t.Errorf("index = %d, state = %q", r.StopIndex(), r.State())
	}
}

func TestAdvanceOnlyFromTransition(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "x"), textStop(2, "y")})
	if err := r.Advance(); !errors.Is(err, ErrNotInTransit) {
		t.Errorf("advance from intro: %v", err)
	}
	startPlaying(t, r)
	if err := r.Advance(); !errors.Is(err, ErrNotInTransit) {
		t.Errorf("advance while playing: %v", err)
	}
}

func TestLastStopCompletesWithoutTransition(t *testing.T) {
	var events []Event
	r := mustRunner(t, []tourquest.Stop{textStop(1, "only")},
		WithObserver(func(ev Event) { events = append(events, ev) }))
	startPlaying(t, r)

	res, err := r.Submit("only")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.TourCompleted || res.State != StateCompleted {
		t.Errorf("result = %+v", res)
	}
	if r.State() != StateCompleted {
		t.Errorf("state = %q, want completed", r.State())
	}
	if _, ok := r.CurrentStop(); ok {
		t.Error("completed run has no current stop")
	}

	for _, ev := range events {
		if ev.Type == EventStopCompleted {
			t.Error("last stop must emit tour_completed, not stop_completed")
		}
	}
}

func TestFullRunThroughFiveStops(t *testing.T) {
	stops := []tourquest.Stop{
		textStop(1, "1212"),
		textStop(2, "mystery"),
		textStop(3, "MAGNIFY"),
		textStop(4, "4521"),
		textStop(5, "AGENT"),
	}
	var events []Event
	r := mustRunner(t, stops, WithObserver(func(ev Event) { events = append(events, ev) }))
	startPlaying(t, r)

	answers := []string{"1212", "Mystery", " magnify ", "4521", "agent"}
	for i, answer := range answers {
		res, err := r.Submit(answer)
		if err != nil {
			t.Fatalf("stop %d submit: %v", i+1, err)
		}
		if !res.Correct {
			t.Fatalf("stop %d answer %q rejected", i+1, answer)
		}
		if i < len(answers)-1 {
			if r.State() != StateTransition {
				t.Fatalf("stop %d: state %q, want transition", i+1, r.State())
			}
			if next, ok := r.PeekNextStop(); !ok || next.StopNumber != i+2 {
				t.Fatalf("stop %d: bad next-stop preview", i+1)
			}
			if err := r.Advance(); err != nil {
				t.Fatalf("stop %d advance: %v", i+1, err)
			}
		}
	}

	if r.State() != StateCompleted {
		t.Fatalf("final state = %q", r.State())
	}

	var completed, tourDone int
	for _, ev := range events {
		switch ev.Type {
		case EventStopCompleted:
			completed++
		case EventTourCompleted:
			tourDone++
		}
	}
	if completed != 4 || tourDone != 1 {
		t.Errorf("events: %d stop_completed, %d tour_completed", completed, tourDone)
	}
}

func TestRestart(t *testing.T) {
	r := mustRunner(t, []tourquest.Stop{textStop(1, "a"), textStop(2, "b")})
	startPlaying(t, r)
	r.Submit("wrong")
	r.Submit("a")
	r.Advance()

	r.Restart()
	if r.State() != StateIntro || r.StopIndex() != 0 || r.FailedAttempts() != 0 {
		t.Errorf("restart left state %q index %d failed %d", r.State(), r.StopIndex(), r.FailedAttempts())
	}

	// Restart is also the way out of completed.
	startPlaying(t, r)
	r.Submit("a")
	r.Advance()
	r.Submit("b")
	if r.State() != StateCompleted {
		t.Fatalf("state = %q", r.State())
	}
	r.Restart()
	if r.State() != StateIntro {
		t.Errorf("restart from completed left state %q", r.State())
	}
}
