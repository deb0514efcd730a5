package draft

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hangeul-lab/authoring/internal/debounce"
)

// DefaultDebounce is the quiet period after the last edit before an
// automatic save starts.
const DefaultDebounce = 1500 * time.Millisecond

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	delay     time.Duration
	afterFunc debounce.AfterFunc
	logger    *slog.Logger
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.delay = d
	}
}

// WithDebounceTimer replaces the timer source of the autosave debouncer.
func WithDebounceTimer(af debounce.AfterFunc) SessionOption {
	return func(o *sessionOptions) {
		o.afterFunc = af
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// Session is one editor's lifetime: it owns a Store and saves it after the
// user stops typing. Pipeline runs started by the session never overlap.
type Session[P, C, G any] struct {
	store     *Store[P, C, G]
	debouncer *debounce.Debouncer
	scopeID   int64
	logger    *slog.Logger

	// ctx is used for automatic saves, which have no caller.
	ctx context.Context

	saveMu sync.Mutex
	closed atomic.Bool
}

// NewSession wraps store. Every mutation of store from now on schedules an
// automatic save under scopeID. ctx bounds automatic saves.
func NewSession[P, C, G any](
	ctx context.Context,
	store *Store[P, C, G],
	scopeID int64,
	opts ...SessionOption,
) *Session[P, C, G] {
	if store == nil {
		panic("store cannot be nil")
	}

	o := sessionOptions{delay: DefaultDebounce, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	sess := &Session[P, C, G]{
		store:   store,
		scopeID: scopeID,
		logger:  o.logger.With(slog.String("component", "draft_session")),
		ctx:     ctx,
	}

	var dopts []debounce.Option
	if o.afterFunc != nil {
		dopts = append(dopts, debounce.WithAfterFunc(o.afterFunc))
	}
	sess.debouncer = debounce.New(o.delay, sess.autosave, dopts...)
	store.setChangeHook(sess.changed)
	return sess
}

// Store returns the draft edited by this session.
func (s *Session[P, C, G]) Store() *Store[P, C, G] {
	return s.store
}

// Status is shorthand for Store().Status().
func (s *Session[P, C, G]) Status() Status {
	return s.store.Status()
}

func (s *Session[P, C, G]) changed() {
	if s.closed.Load() {
		return
	}
	s.debouncer.Schedule()
}

// autosave runs when the debounce timer fires. If a save is already running
// it does nothing; that save reschedules when edits are left over.
func (s *Session[P, C, G]) autosave() {
	if s.closed.Load() {
		return
	}
	if !s.saveMu.TryLock() {
		return
	}
	defer s.saveMu.Unlock()

	if !s.store.IsDirty() {
		return
	}
	if err := s.store.SaveAll(s.ctx, s.scopeID); err != nil {
		s.logger.Warn("autosave failed", slog.String("error", err.Error()))
	}
}

// Save cancels the pending autosave and saves now.
func (s *Session[P, C, G]) Save(ctx context.Context) error {
	s.debouncer.Cancel()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.store.SaveAll(ctx, s.scopeID)
}

// Retry re-runs a failed save.
func (s *Session[P, C, G]) Retry(ctx context.Context) error {
	s.debouncer.Cancel()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.store.Retry(ctx)
}

// TrySaveAndClose is the close guard. It cancels the pending autosave,
// waits for a running save and saves whatever is still unsaved. It returns
// true when the editor can be dismissed: there was nothing to save or the
// save succeeded. On false the session stays usable and Retry is
// available.
func (s *Session[P, C, G]) TrySaveAndClose(ctx context.Context) bool {
	s.debouncer.Cancel()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if !s.store.IsDirty() {
		return true
	}
	if err := s.store.SaveAll(ctx, s.scopeID); err != nil {
		s.logger.Warn("save before close failed", slog.String("error", err.Error()))
		return false
	}
	return s.store.Status() == StatusSaved
}

// Close stops automatic saving. A save already running is left to finish.
func (s *Session[P, C, G]) Close() {
	s.closed.Store(true)
	s.debouncer.Cancel()
}
