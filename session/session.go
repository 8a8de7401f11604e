// Package session auto-saves in-progress drafts so a crash or closed
// terminal never loses operator work. A saved draft is restored on the
// next start if it is recent enough, and cleared the moment a submission
// succeeds.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/innovagov/policyhub/policy"
)

// Defaults for the auto-save loop.
const (
	DefaultAutosaveInterval = 30 * time.Second
	DefaultExpiry           = 24 * time.Hour
)

// Saved is a persisted draft snapshot.
type Saved struct {
	Draft   policy.Draft `json:"draft"`
	SavedAt time.Time    `json:"saved_at"`
}

// Sink persists draft snapshots. Implementations: FileSink for real use,
// MemorySink for tests.
type Sink interface {
	// Save persists a snapshot, replacing any previous one.
	Save(s *Saved) error

	// Load returns the current snapshot, or ErrNoSession.
	Load() (*Saved, error)

	// Clear removes any snapshot. Clearing an empty sink is not an
	// error.
	Clear() error
}

// Session tracks one draft under edit and writes it to the sink on a
// fixed interval while it has content.
type Session struct {
	mu    sync.Mutex
	draft policy.Draft
	dirty bool

	sink     Sink
	interval time.Duration
	expiry   time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithInterval overrides the auto-save interval.
func WithInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithExpiry overrides how long a saved draft stays restorable.
func WithExpiry(d time.Duration) Option {
	return func(s *Session) { s.expiry = d }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// New creates a Session over the given sink.
func New(sink Sink, opts ...Option) *Session {
	s := &Session{
		sink:     sink,
		interval: DefaultAutosaveInterval,
		expiry:   DefaultExpiry,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update replaces the tracked draft. The next tick persists it.
func (s *Session) Update(d policy.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
	s.dirty = true
}

// Draft returns a copy of the tracked draft.
func (s *Session) Draft() policy.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Restore loads a previously saved draft. Expired snapshots are cleared
// and not restored. The restored draft becomes the tracked draft.
func (s *Session) Restore() (*policy.Draft, bool) {
	saved, err := s.sink.Load()
	if err != nil {
		return nil, false
	}
	if isExpired(saved.SavedAt, s.now(), s.expiry) {
		if err := s.sink.Clear(); err != nil {
			s.logger.Warn("Clearing expired draft failed", "error", err)
		}
		return nil, false
	}

	s.mu.Lock()
	s.draft = saved.Draft
	s.dirty = false
	s.mu.Unlock()

	d := saved.Draft
	return &d, true
}

// SaveNow persists the draft immediately if it has unsaved content.
func (s *Session) SaveNow() error {
	s.mu.Lock()
	d := s.draft
	dirty := s.dirty
	s.mu.Unlock()

	if !shouldSave(&d, dirty) {
		return nil
	}
	if err := s.sink.Save(&Saved{Draft: d, SavedAt: s.now()}); err != nil {
		return err
	}

	s.mu.Lock()
	// Only clean if no edit arrived while saving.
	if !s.dirtySince(d) {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// dirtySince reports whether the tracked draft changed relative to the
// snapshot just written. Caller holds the lock.
func (s *Session) dirtySince(snapshot policy.Draft) bool {
	return s.dirty && !equalDrafts(&s.draft, &snapshot)
}

// Complete clears the session after a successful submission.
func (s *Session) Complete() error {
	s.mu.Lock()
	s.draft = policy.Draft{}
	s.dirty = false
	s.mu.Unlock()
	return s.sink.Clear()
}

// Run auto-saves on the configured interval until ctx is cancelled. A
// final save runs on shutdown so the freshest edit survives.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.SaveNow(); err != nil {
				s.logger.Warn("Final draft save failed", "error", err)
			}
			return
		case <-ticker.C:
			if err := s.SaveNow(); err != nil {
				s.logger.Warn("Draft auto-save failed", "error", err)
			}
		}
	}
}

// shouldSave reports whether a snapshot is worth persisting: there must
// be an unsaved change and the draft must carry operator content.
func shouldSave(d *policy.Draft, dirty bool) bool {
	return dirty && !d.IsEmpty()
}

// isExpired reports whether a snapshot saved at savedAt is too old to
// restore at time now.
func isExpired(savedAt, now time.Time, expiry time.Duration) bool {
	return now.Sub(savedAt) >= expiry
}

// equalDrafts compares two drafts through their JSON form. Draft is a
// plain data struct; marshaling cannot fail.
func equalDrafts(a, b *policy.Draft) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return bytes.Equal(aj, bj)
}
