// Package lockmgr implements the server's per-file write lock: a
// mutex-protected mapping from filename to the client identity currently
// holding it. At most one client may hold a file's lock at a time;
// reacquisition by the current holder is idempotent.
package lockmgr

import "sync"

// Result is the outcome of an Acquire call.
type Result int

const (
	// Granted means no prior holder existed and client_id now owns the lock.
	Granted Result = iota
	// AlreadyHeldBySelf means client_id already held the lock; idempotent success.
	AlreadyHeldBySelf
	// HeldByOther means a different client_id holds the lock. Holder is set.
	HeldByOther
	// Rejected means filename or client_id was empty. Reason is set.
	Rejected
)

func (r Result) String() string {
	switch r {
	case Granted:
		return "Granted"
	case AlreadyHeldBySelf:
		return "AlreadyHeldBySelf"
	case HeldByOther:
		return "HeldByOther"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Outcome carries a Result plus the extra detail that HeldByOther and
// Rejected attach.
type Outcome struct {
	Result Result
	Holder string // set on HeldByOther
	Reason string // set on Rejected
}

// Manager is a mutex-protected filename -> holder map. The zero value is
// ready to use.
type Manager struct {
	mu      sync.Mutex
	holders map[string]string
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{holders: make(map[string]string)}
}

// Acquire attempts to claim filename on behalf of clientID. See Result for
// the possible outcomes. The manager's mutex is held only across the
// in-memory map update, never across I/O.
func (m *Manager) Acquire(filename, clientID string) Outcome {
	if filename == "" || clientID == "" {
		return Outcome{Result: Rejected, Reason: "filename and client_id must be non-empty"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.holders == nil {
		m.holders = make(map[string]string)
	}

	holder, held := m.holders[filename]
	switch {
	case !held:
		m.holders[filename] = clientID
		return Outcome{Result: Granted}
	case holder == clientID:
		return Outcome{Result: AlreadyHeldBySelf}
	default:
		return Outcome{Result: HeldByOther, Holder: holder}
	}
}

// Release unconditionally removes any lock held on filename. It is not an
// error for filename to be unlocked already.
func (m *Manager) Release(filename string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holders, filename)
}

// HasLock reports whether clientID currently holds filename's lock.
func (m *Manager) HasLock(filename, clientID string) bool {
	if filename == "" || clientID == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holders[filename] == clientID
}
