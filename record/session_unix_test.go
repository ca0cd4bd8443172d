//go:build !windows

package record

import (
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"
)

const progressLine = `printf 'frame=   30 fps=30 q=28.0 size=100kB time=00:00:01.00 bitrate=1k\n' >&2`

type transition struct {
	state State
	diag  string
}

func startScript(t *testing.T, script string, startGrace, stopGrace time.Duration) (*session, chan transition, chan time.Duration) {
	t.Helper()

	states := make(chan transition, 16)
	progress := make(chan time.Duration, 16)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cmd := exec.Command("sh", "-c", script)
	sess, err := newSession(cmd, logger, startGrace, stopGrace,
		func(s State, d string) { states <- transition{s, d} },
		func(e time.Duration) {
			select {
			case progress <- e:
			default:
			}
		})
	if err != nil {
		t.Fatal(err)
	}
	go sess.run()
	return sess, states, progress
}

func waitFor(t *testing.T, states chan transition, want State) transition {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case tr := <-states:
			if tr.state == want {
				return tr
			}
			if tr.state.Terminal() {
				t.Fatalf("reached %s (%s) while waiting for %s", tr.state, tr.diag, want)
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestSessionCleanLifecycle(t *testing.T) {
	sess, states, progress := startScript(t,
		progressLine+"; sleep 30",
		5*time.Second, 5*time.Second)

	waitFor(t, states, Recording)

	select {
	case elapsed := <-progress:
		if elapsed != time.Second {
			t.Errorf("progress elapsed = %s, want 1s", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Error("no progress event")
	}

	sess.requestStop()
	waitFor(t, states, Stopping)
	tr := waitFor(t, states, Stopped)
	if tr.diag != "" {
		t.Errorf("clean stop carried diagnostic %q", tr.diag)
	}
}

func TestSessionEarlyExitFails(t *testing.T) {
	_, states, _ := startScript(t,
		`echo 'boom: cannot open display' >&2; exit 1`,
		5*time.Second, time.Second)

	deadline := time.After(10 * time.Second)
	for {
		select {
		case tr := <-states:
			if tr.state == Failed {
				if !strings.Contains(tr.diag, "boom") {
					t.Errorf("diagnostic %q missing stderr tail", tr.diag)
				}
				if !strings.Contains(tr.diag, "before producing output") {
					t.Errorf("diagnostic %q missing early-exit reason", tr.diag)
				}
				return
			}
			t.Fatalf("unexpected state %s before failure", tr.state)
		case <-deadline:
			t.Fatal("timed out waiting for failure")
		}
	}
}

func TestSessionCrashWhileRecording(t *testing.T) {
	_, states, _ := startScript(t,
		progressLine+"; sleep 0.3; exit 1",
		5*time.Second, time.Second)

	waitFor(t, states, Recording)
	tr := waitFor(t, states, Failed)
	if !strings.Contains(tr.diag, "unexpectedly") {
		t.Errorf("diagnostic = %q", tr.diag)
	}
}

func TestSessionForceKill(t *testing.T) {
	sess, states, _ := startScript(t,
		`trap '' INT; `+progressLine+`; while :; do sleep 1; done`,
		5*time.Second, 300*time.Millisecond)

	waitFor(t, states, Recording)
	sess.requestStop()
	waitFor(t, states, Stopping)
	tr := waitFor(t, states, Failed)
	if !strings.Contains(tr.diag, "force killed") {
		t.Errorf("diagnostic = %q", tr.diag)
	}
}

func TestSessionStopWhileStarting(t *testing.T) {
	sess, states, _ := startScript(t,
		"sleep 30",
		200*time.Millisecond, 5*time.Second)

	sess.requestStop()

	// A stop during startup still walks the full lifecycle so the encoder
	// gets a chance to finalize output.
	waitFor(t, states, Recording)
	waitFor(t, states, Stopping)
	waitFor(t, states, Stopped)
}
