// Package session owns the logged-in identity and its inactivity
// timeout. A warning fires a fixed interval before expiry; any
// qualifying activity event re-arms both timers. The identity persists
// in the document store under the "user" key so a session survives a
// process reload.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gatehouse/internal/model"
	"gatehouse/internal/store"
)

const (
	// DefaultWarnAfter is the inactivity interval before the
	// pre-expiry warning.
	DefaultWarnAfter = 50 * time.Second
	// DefaultExpireAfter is the total inactivity interval before
	// forced logout.
	DefaultExpireAfter = 60 * time.Second
)

// State is the session lifecycle state.
type State int

const (
	NoSession State = iota
	Active
	WarningShown
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case WarningShown:
		return "warning"
	default:
		return "none"
	}
}

// Snapshot is a point-in-time view of the session for callers.
type Snapshot struct {
	ID           uuid.UUID      `json:"id"`
	Identity     model.Identity `json:"identity"`
	State        string         `json:"state"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastActivity time.Time      `json:"lastActivity"`
	ExpiresAt    time.Time      `json:"expiresAt"`
}

// Config carries timer intervals and outcome callbacks. The manager is
// message-text-agnostic: OnWarning and OnExpire are semantic outcomes
// that the consuming surface maps to user-facing notifications.
type Config struct {
	WarnAfter   time.Duration
	ExpireAfter time.Duration
	OnWarning   func(model.Identity)
	OnExpire    func(model.Identity)
}

// Manager tracks at most one session per process.
type Manager struct {
	store store.DocumentStore
	clock Clock
	cfg   Config

	mu           sync.Mutex
	state        State
	id           uuid.UUID
	identity     model.Identity
	createdAt    time.Time
	lastActivity time.Time
	warnTimer    Timer
	expireTimer  Timer
	generation   uint64
}

// NewManager builds a manager with injected store and clock.
func NewManager(docs store.DocumentStore, clock Clock, cfg Config) *Manager {
	if cfg.WarnAfter <= 0 {
		cfg.WarnAfter = DefaultWarnAfter
	}
	if cfg.ExpireAfter <= 0 {
		cfg.ExpireAfter = DefaultExpireAfter
	}
	return &Manager{store: docs, clock: clock, cfg: cfg}
}

// Restore resumes a session from the "user" document, if present.
// A stored identity is presumed valid here; route guards are
// responsible for rejecting identities with no matching user record.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	data, err := m.store.Get(ctx, store.KeyUser)
	if err != nil {
		return false, fmt.Errorf("read session doc: %w", err)
	}
	if data == nil {
		return false, nil
	}
	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return false, fmt.Errorf("decode session doc: %w", err)
	}
	if identity.Username == "" {
		return false, nil
	}
	return true, m.Start(ctx, identity)
}

// Start establishes a session for identity, persisting it and arming
// the inactivity timers. An existing session is replaced.
func (m *Manager) Start(ctx context.Context, identity model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode session doc: %w", err)
	}
	if err := m.store.Set(ctx, store.KeyUser, data); err != nil {
		return fmt.Errorf("persist session doc: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	m.state = Active
	m.id = uuid.New()
	m.identity = identity
	m.createdAt = now
	m.lastActivity = now
	m.rearmLocked()
	return nil
}

// Touch records a qualifying activity event: the warning (if shown) is
// dismissed and both timers restart. A touch with no session is a
// no-op.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession {
		return
	}
	m.state = Active
	m.lastActivity = m.clock.Now()
	m.rearmLocked()
}

// End terminates the session explicitly, cancelling timers and
// removing the persisted identity.
func (m *Manager) End(ctx context.Context) error {
	m.mu.Lock()
	m.cancelLocked()
	m.state = NoSession
	m.identity = model.Identity{}
	m.mu.Unlock()
	if err := m.store.Delete(ctx, store.KeyUser); err != nil {
		return fmt.Errorf("clear session doc: %w", err)
	}
	return nil
}

// Stop cancels timers without touching the persisted identity. Used on
// teardown so a live session survives the next Restore.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

// Identity returns the current identity and whether a session is
// active.
func (m *Manager) Identity() (model.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession {
		return model.Identity{}, false
	}
	return m.identity, true
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a snapshot and whether a session is active.
func (m *Manager) Session() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == NoSession {
		return Snapshot{}, false
	}
	return Snapshot{
		ID:           m.id,
		Identity:     m.identity,
		State:        m.state.String(),
		CreatedAt:    m.createdAt,
		LastActivity: m.lastActivity,
		ExpiresAt:    m.lastActivity.Add(m.cfg.ExpireAfter),
	}, true
}

// rearmLocked cancels any live timers and arms a fresh pair. The
// generation counter makes an already-fired stale callback a no-op.
func (m *Manager) rearmLocked() {
	m.cancelLocked()
	m.generation++
	gen := m.generation
	m.warnTimer = m.clock.AfterFunc(m.cfg.WarnAfter, func() { m.warn(gen) })
	m.expireTimer = m.clock.AfterFunc(m.cfg.ExpireAfter, func() { m.expire(gen) })
}

func (m *Manager) cancelLocked() {
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.expireTimer != nil {
		m.expireTimer.Stop()
		m.expireTimer = nil
	}
}

func (m *Manager) warn(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state != Active {
		m.mu.Unlock()
		return
	}
	m.state = WarningShown
	identity := m.identity
	cb := m.cfg.OnWarning
	m.mu.Unlock()

	if cb != nil {
		cb(identity)
	}
}

func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.generation || m.state == NoSession {
		m.mu.Unlock()
		return
	}
	m.cancelLocked()
	m.state = NoSession
	identity := m.identity
	m.identity = model.Identity{}
	cb := m.cfg.OnExpire
	m.mu.Unlock()

	if err := m.store.Delete(context.Background(), store.KeyUser); err != nil {
		// a leftover document would resurrect this session on Restore
		log.Printf("clear session doc after expiry: %v", err)
	}
	if cb != nil {
		cb(identity)
	}
}
