// Package history keeps debounced undo/redo snapshots of the sheet.
//
// Snapshots are opaque serialized strings; two snapshots are the same state
// when their bytes match. The top of the undo stack is always the current
// state, so once seeded the stack never drops below one entry.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/piwi3910/PrintSheet/internal/model"
)

// State of the manager's capture machinery.
type State int

const (
	Idle           State = iota // Nothing pending
	PendingCapture              // A debounce timer is armed
	Restoring                   // A restore or batch is running; changes are ignored
)

func (s State) String() string {
	switch s {
	case PendingCapture:
		return "PendingCapture"
	case Restoring:
		return "Restoring"
	default:
		return "Idle"
	}
}

// Serializer converts the live item set to and from snapshots.
type Serializer interface {
	// Serialize returns the current non-decoration item set.
	Serialize() (string, error)
	// Restore replaces the live item set with the snapshot's contents.
	Restore(ctx context.Context, snapshot string) error
}

// Manager owns the undo and redo stacks.
type Manager struct {
	// opMu serializes captures, restores and batches against each other.
	opMu sync.Mutex

	mu        sync.Mutex // guards everything below
	undoStack []string
	redoStack []string
	maxDepth  int
	delay     time.Duration
	state     State
	timer     *time.Timer
	gen       uint64 // bumped whenever the pending timer is replaced or cancelled

	ser      Serializer
	dispatch func(func())
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxDepth bounds the undo stack. Values below 1 are ignored.
func WithMaxDepth(n int) Option {
	return func(m *Manager) {
		if n >= 1 {
			m.maxDepth = n
		}
	}
}

// WithDelay sets the debounce delay between the last change and its capture.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithDispatcher routes timer expiry through fn, so the capture runs on
// the same thread that mutates the scene (for example fyne.Do).
func WithDispatcher(fn func(func())) Option {
	return func(m *Manager) {
		if fn != nil {
			m.dispatch = fn
		}
	}
}

// WithLogger sets the logger used for capture and restore failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Manager with the default depth and delay. Call Init to
// seed it with the current state.
func New(ser Serializer, opts ...Option) *Manager {
	m := &Manager{
		maxDepth: model.DefaultMaxHistory,
		delay:    model.DefaultDebounceMillis * time.Millisecond,
		ser:      ser,
		dispatch: func(fn func()) { fn() },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init discards all history and seeds the undo stack with the current state.
func (m *Manager) Init() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	m.cancelPendingLocked()
	m.undoStack = nil
	m.redoStack = nil
	m.mu.Unlock()

	return m.capture()
}

// NotifyChange records that the scene changed. The snapshot is taken once
// no further change has arrived for the debounce delay; each call restarts
// the countdown. Changes made while restoring or inside a batch are ignored.
func (m *Manager) NotifyChange() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Restoring {
		return
	}

	m.cancelPendingLocked()
	m.state = PendingCapture
	m.armLocked(m.gen)
}

// armLocked starts the debounce timer for gen. Callers hold mu.
func (m *Manager) armLocked(gen uint64) {
	m.timer = time.AfterFunc(m.delay, func() {
		m.dispatch(func() { m.fire(gen) })
	})
}

// currentLocked reports whether the timer for gen is still the pending
// one. Callers hold mu.
func (m *Manager) currentLocked(gen uint64) bool {
	return gen == m.gen && m.state == PendingCapture
}

// fire runs a debounced capture unless it has been superseded. It runs on
// the dispatcher thread, so it never waits for a running restore or batch:
// when one holds opMu the timer is re-armed instead.
func (m *Manager) fire(gen uint64) {
	m.mu.Lock()
	if !m.currentLocked(gen) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if !m.opMu.TryLock() {
		m.mu.Lock()
		if m.currentLocked(gen) {
			m.armLocked(gen)
		}
		m.mu.Unlock()
		return
	}
	defer m.opMu.Unlock()

	m.mu.Lock()
	if !m.currentLocked(gen) {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	m.state = Idle
	m.mu.Unlock()

	if err := m.capture(); err != nil {
		m.logger.Error("history: debounced capture failed", "error", err)
	}
}

// cancelPendingLocked drops any armed timer. Callers hold mu.
func (m *Manager) cancelPendingLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	if m.state == PendingCapture {
		m.state = Idle
	}
}

// CaptureNow snapshots the scene immediately, replacing any pending capture.
func (m *Manager) CaptureNow() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	m.cancelPendingLocked()
	m.mu.Unlock()

	return m.capture()
}

// Flush runs a pending debounced capture right away. It does nothing when
// no capture is pending.
func (m *Manager) Flush() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.flushLocked()
}

// flushLocked captures if a timer is armed. Callers hold opMu.
func (m *Manager) flushLocked() error {
	m.mu.Lock()
	pending := m.state == PendingCapture
	m.cancelPendingLocked()
	m.mu.Unlock()

	if !pending {
		return nil
	}
	return m.capture()
}

// capture pushes the serialized scene if it differs from the top of the
// undo stack. Callers hold opMu.
func (m *Manager) capture() error {
	snap, err := m.ser.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize scene: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.undoStack); n > 0 && m.undoStack[n-1] == snap {
		return nil
	}
	m.undoStack = append(m.undoStack, snap)
	if len(m.undoStack) > m.maxDepth {
		m.undoStack = m.undoStack[len(m.undoStack)-m.maxDepth:]
	}
	m.redoStack = nil
	return nil
}

// Undo steps back one snapshot. It is a no-op when only the current state
// is on the stack. A pending capture is flushed first so the latest edit
// is not lost. If the restore fails the stacks are left as they were.
func (m *Manager) Undo(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.flushLocked(); err != nil {
		return err
	}

	m.mu.Lock()
	n := len(m.undoStack)
	if n <= 1 {
		m.mu.Unlock()
		return nil
	}
	top := m.undoStack[n-1]
	target := m.undoStack[n-2]
	m.undoStack = m.undoStack[:n-1]
	m.redoStack = append(m.redoStack, top)
	m.mu.Unlock()

	if err := m.restore(ctx, target); err != nil {
		m.mu.Lock()
		m.redoStack = m.redoStack[:len(m.redoStack)-1]
		m.undoStack = append(m.undoStack, top)
		m.mu.Unlock()
		return err
	}
	return nil
}

// Redo re-applies the most recently undone snapshot. It is a no-op when
// there is nothing to redo.
func (m *Manager) Redo(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.flushLocked(); err != nil {
		return err
	}

	m.mu.Lock()
	n := len(m.redoStack)
	if n == 0 {
		m.mu.Unlock()
		return nil
	}
	snap := m.redoStack[n-1]
	m.redoStack = m.redoStack[:n-1]
	m.undoStack = append(m.undoStack, snap)
	m.mu.Unlock()

	if err := m.restore(ctx, snap); err != nil {
		m.mu.Lock()
		m.undoStack = m.undoStack[:len(m.undoStack)-1]
		m.redoStack = append(m.redoStack, snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

// Restore loads snapshot into the scene without touching the stacks.
func (m *Manager) Restore(ctx context.Context, snapshot string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.restore(ctx, snapshot)
}

// restore holds the Restoring state for the duration of the deserialize
// and always releases it. Callers hold opMu.
func (m *Manager) restore(ctx context.Context, snapshot string) error {
	m.mu.Lock()
	m.cancelPendingLocked()
	m.state = Restoring
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.state = Idle
		m.mu.Unlock()
	}()

	if err := m.ser.Restore(ctx, snapshot); err != nil {
		m.logger.Error("history: restore failed", "error", err)
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return nil
}

// Batch runs fn with change tracking suspended and then captures exactly
// once, so a bulk operation becomes a single undo step. A pending capture
// is committed first so earlier edits keep their own step. The capture
// after fn happens even if fn fails part way, since fn may already have
// changed the scene.
func (m *Manager) Batch(fn func() error) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.flushLocked(); err != nil {
		m.logger.Error("history: capture before batch failed", "error", err)
	}

	m.mu.Lock()
	m.state = Restoring
	m.mu.Unlock()

	err := func() error {
		defer func() {
			m.mu.Lock()
			m.state = Idle
			m.mu.Unlock()
		}()
		return fn()
	}()

	if capErr := m.capture(); capErr != nil {
		m.logger.Error("history: capture after batch failed", "error", capErr)
		if err == nil {
			err = capErr
		}
	}
	return err
}

// Close stops any pending timer. The manager stays usable.
func (m *Manager) Close() {
	m.mu.Lock()
	m.cancelPendingLocked()
	m.mu.Unlock()
}

// CanUndo returns true if there is a snapshot older than the current one.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 1
}

// CanRedo returns true if there is at least one snapshot to redo.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// Len returns the number of snapshots on the undo stack.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack)
}

// RedoLen returns the number of snapshots on the redo stack.
func (m *Manager) RedoLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshots returns a copy of the undo stack, oldest first.
func (m *Manager) Snapshots() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.undoStack))
	copy(cp, m.undoStack)
	return cp
}
