package pidfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// PIDFile enforces a single paced simulation run per host. A run that holds
// real machine pacing for hours should not silently race a second copy over
// the same journal database.
type PIDFile struct {
	path string
}

func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Acquire claims the file with an exclusive create, so two concurrent runs
// cannot both win. A leftover file is reclaimed only if its PID is dead or
// unreadable; at most one reclaim attempt is made.
func (p *PIDFile) Acquire() error {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil {
				_ = os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			if cerr != nil {
				_ = os.Remove(p.path)
				return fmt.Errorf("failed to write PID file: %w", cerr)
			}
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		pid, rerr := p.readPID()
		if rerr == nil && isProcessRunning(pid) {
			return fmt.Errorf("another run is already active (PID %d)", pid)
		}
		// Dead owner or garbage content, reclaim and retry once.
		_ = os.Remove(p.path)
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// Release removes the PID file.
func (p *PIDFile) Release() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) readPID() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isProcessRunning checks a PID with signal 0.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// FindProcess always succeeds on Unix, the signal is the real check
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == syscall.ESRCH {
		return false
	}
	if err == syscall.EPERM {
		// Exists but owned by someone else
		return true
	}
	return false
}
