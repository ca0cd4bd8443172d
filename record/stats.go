package record

import (
	"errors"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a point-in-time resource snapshot of the live encoder process.
type Stats struct {
	CPUPercent float64
	RSSBytes   uint64
	Elapsed    time.Duration
}

// ErrNoSession means Stats was called with no live session.
var ErrNoSession = errors.New("no recording session")

// Stats samples CPU and memory usage of the encoder process.
func (r *Recorder) Stats() (Stats, error) {
	r.mu.Lock()
	sess := r.sess
	r.mu.Unlock()

	if sess == nil {
		return Stats{}, ErrNoSession
	}

	proc, err := process.NewProcess(int32(sess.pid()))
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Elapsed: time.Since(sess.startedAt)}
	if cpu, err := proc.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
	}
	return stats, nil
}
