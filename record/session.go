package record

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/deskrec/deskrec/internal/processutil"
)

// tailLines bounds how much encoder stderr is retained for diagnostics.
const tailLines = 200

// progressPattern matches the time= field of ffmpeg's periodic status line.
var progressPattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// session supervises one encoder process from launch to exit. After launch
// the run goroutine is the only writer of the session's state; Stop only
// signals intent through stopCh.
type session struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	log   *slog.Logger

	startGrace time.Duration
	stopGrace  time.Duration

	setState     func(state State, diagnostic string)
	emitProgress func(elapsed time.Duration)

	stopCh   chan struct{}
	stopOnce sync.Once

	readyCh   chan struct{}
	readyOnce sync.Once

	startedAt time.Time

	mu   sync.Mutex
	tail []string
}

func newSession(cmd *exec.Cmd, log *slog.Logger, startGrace, stopGrace time.Duration,
	setState func(State, string), emitProgress func(time.Duration)) (*session, error) {

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stderr: %w", err)
	}

	s := &session{
		cmd:          cmd,
		stdin:        stdin,
		log:          log,
		startGrace:   startGrace,
		stopGrace:    stopGrace,
		setState:     setState,
		emitProgress: emitProgress,
		stopCh:       make(chan struct{}),
		readyCh:      make(chan struct{}),
	}

	processutil.HideConsoleWindow(cmd)
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("launch encoder: %w", err)
	}
	s.startedAt = time.Now()

	go s.readStderr(stderr)
	return s, nil
}

// pid returns the encoder process id, or 0 before launch.
func (s *session) pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// requestStop signals the supervisor to begin a graceful shutdown. Safe to
// call any number of times from any goroutine.
func (s *session) requestStop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// run drives the state machine until a terminal state. It must be the only
// goroutine calling setState.
func (s *session) run() {
	waitCh := make(chan error, 1)
	go func() { waitCh <- s.cmd.Wait() }()

	startTimer := time.NewTimer(s.startGrace)
	defer startTimer.Stop()

	// Starting: wait for the first progress line or the grace period. A stop
	// request here is remembered and applied once the session is live, so the
	// output file still gets finalized.
	pendingStop := false
	select {
	case err := <-waitCh:
		s.setState(Failed, s.exitDiagnostic("encoder exited before producing output", err))
		return
	case <-s.readyCh:
	case <-startTimer.C:
		s.log.Debug("no progress within start grace, assuming live", "grace", s.startGrace)
	case <-s.stopCh:
		pendingStop = true
		select {
		case err := <-waitCh:
			s.setState(Failed, s.exitDiagnostic("encoder exited before producing output", err))
			return
		case <-s.readyCh:
		case <-startTimer.C:
		}
	}

	s.setState(Recording, "")

	if !pendingStop {
		select {
		case err := <-waitCh:
			s.setState(Failed, s.exitDiagnostic("encoder exited unexpectedly", err))
			return
		case <-s.stopCh:
		}
	}

	s.setState(Stopping, "")
	s.requestQuit()

	stopTimer := time.NewTimer(s.stopGrace)
	defer stopTimer.Stop()

	select {
	case <-waitCh:
		s.setState(Stopped, "")
	case <-stopTimer.C:
		s.log.Warn("encoder ignored quit request, killing", "grace", s.stopGrace)
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		<-waitCh
		s.setState(Failed, fmt.Sprintf("encoder did not exit within %s; force killed, output may be unplayable", s.stopGrace))
	}
}

// requestQuit asks ffmpeg to finalize and exit: the interactive quit command
// on stdin, plus an interrupt where the platform supports one.
func (s *session) requestQuit() {
	if _, err := io.WriteString(s.stdin, "q"); err != nil {
		s.log.Debug("quit command write failed", "error", err)
	}
	s.stdin.Close()
	if err := processutil.GracefulInterrupt(s.cmd); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		s.log.Debug("interrupt failed", "error", err)
	}
}

// readStderr consumes encoder status output. ffmpeg rewrites its progress
// line in place with carriage returns, so the scanner splits on both CR and
// LF. The first progress line marks the session as live.
func (s *session) readStderr(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(scanCRLines)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.appendTail(line)

		if isProgressLine(line) {
			s.readyOnce.Do(func() { close(s.readyCh) })
			if elapsed, ok := parseProgress(line); ok {
				s.emitProgress(elapsed)
			}
		}
	}
}

func (s *session) appendTail(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tail = append(s.tail, line)
	if len(s.tail) > tailLines {
		s.tail = s.tail[len(s.tail)-tailLines:]
	}
}

// stderrTail returns the last retained stderr lines for diagnostics.
func (s *session) stderrTail(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.tail) {
		n = len(s.tail)
	}
	out := make([]string, n)
	copy(out, s.tail[len(s.tail)-n:])
	return out
}

func (s *session) exitDiagnostic(prefix string, waitErr error) string {
	var b strings.Builder
	b.WriteString(prefix)
	if waitErr != nil {
		fmt.Fprintf(&b, " (%v)", waitErr)
	}
	if tail := s.stderrTail(5); len(tail) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(tail, " | "))
	}
	return b.String()
}

// scanCRLines is a bufio.SplitFunc treating both \r and \n as line breaks.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// isProgressLine reports whether the line is ffmpeg's periodic status line.
func isProgressLine(line string) bool {
	return strings.HasPrefix(line, "frame=") ||
		(strings.HasPrefix(line, "size=") && strings.Contains(line, "time="))
}

// parseProgress extracts the recorded duration from a status line.
func parseProgress(line string) (time.Duration, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.ParseFloat(m[3], 64)
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), true
}
