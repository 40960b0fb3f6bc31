// Package feed exposes the obligation collection as a live, in-memory list.
package feed

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	obligationStore "github.com/tiagotdas/calendario-fiscal/internal/adapters/storage/obligation"
	domain "github.com/tiagotdas/calendario-fiscal/internal/domain/obligation"
)

// Snapshot is one complete read of the collection.
// INVARIANT: Err != nil means the read failed; Obligations is then nil, never a
// partial list. A successful empty read has Err == nil and a non-nil empty slice.
type Snapshot struct {
	Obligations []domain.Obligation
	Err         error
	At          time.Time
}

// Failed reports whether the snapshot represents a read failure.
func (s Snapshot) Failed() bool {
	return s.Err != nil
}

// Gate reports whether the backend may be read. A non-nil error blocks reads and writes.
type Gate func() error

type subscription struct {
	cancelled atomic.Bool
	fn        func(Snapshot)
}

// deliver runs fn unless the subscription was cancelled. No lock is held
// while fn runs, so fn may call its own cancel.
func (s *subscription) deliver(snap Snapshot) {
	if s.cancelled.Load() {
		return
	}
	s.fn(snap)
}

// ObligationFeed owns the current obligation list and fans out snapshots.
// Callbacks must not write through the feed they are subscribed to.
type ObligationFeed struct {
	store obligationStore.Store
	gate  Gate
	now   func() time.Time

	// pubMu serializes read-and-publish so subscribers see snapshots in order.
	pubMu sync.Mutex

	mu      sync.Mutex
	current *Snapshot
	subs    map[int]*subscription
	nextID  int
}

// New creates a feed over store. A nil gate always allows access.
func New(store obligationStore.Store, gate Gate) *ObligationFeed {
	if gate == nil {
		gate = func() error { return nil }
	}
	return &ObligationFeed{
		store: store,
		gate:  gate,
		now:   time.Now,
		subs:  make(map[int]*subscription),
	}
}

// Subscribe registers fn and immediately delivers the current snapshot if one exists.
// cancel may be called from inside fn. A delivery already running on another
// goroutine when cancel is called may still complete.
// PRE: fn is non-nil
// POST: fn receives every later snapshot; no delivery starts after cancel returns
func (f *ObligationFeed) Subscribe(fn func(Snapshot)) (cancel func()) {
	sub := &subscription{fn: fn}

	f.pubMu.Lock()
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	cur := f.current
	f.mu.Unlock()
	if cur != nil {
		sub.deliver(*cur)
	}
	f.pubMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.cancelled.Store(true)

			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

// Current returns the latest snapshot and whether one has been taken.
func (f *ObligationFeed) Current() (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Snapshot{}, false
	}
	return *f.current, true
}

// Subscribers returns the number of live subscriptions.
func (f *ObligationFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Refresh reads the whole collection and publishes the result.
// POST: Current reflects the read; every subscriber received it
func (f *ObligationFeed) Refresh(ctx context.Context) Snapshot {
	return f.refresh(ctx, false)
}

func (f *ObligationFeed) refresh(ctx context.Context, onlyIfChanged bool) Snapshot {
	f.pubMu.Lock()
	defer f.pubMu.Unlock()

	snap := f.read(ctx)

	f.mu.Lock()
	prev := f.current
	if onlyIfChanged && prev != nil && sameContent(*prev, snap) {
		f.mu.Unlock()
		return *prev
	}
	f.current = &snap
	subs := make([]*subscription, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.deliver(snap)
	}
	return snap
}

func (f *ObligationFeed) read(ctx context.Context) Snapshot {
	at := f.now()
	if err := f.gate(); err != nil {
		return Snapshot{Err: err, At: at}
	}
	list, err := f.store.List(ctx)
	if err != nil {
		slog.Error("feed_event", "event", "read_failed", "error", err)
		return Snapshot{Err: err, At: at}
	}
	return Snapshot{Obligations: list, At: at}
}

func sameContent(a, b Snapshot) bool {
	if (a.Err == nil) != (b.Err == nil) {
		return false
	}
	if a.Err != nil {
		return a.Err.Error() == b.Err.Error()
	}
	return reflect.DeepEqual(a.Obligations, b.Obligations)
}

// Create writes a new obligation and publishes a fresh snapshot.
// Invalid fields are a silent no-op: ("", nil) and nothing is written.
func (f *ObligationFeed) Create(ctx context.Context, fields domain.Fields) (string, error) {
	if !fields.Valid() {
		return "", nil
	}
	if err := f.gate(); err != nil {
		return "", err
	}
	id, err := f.store.Create(ctx, fields)
	if err != nil {
		return "", err
	}
	slog.Info("obligation_event", "event", "obligation_created", "id", id, "date", fields.Date)
	f.Refresh(ctx)
	return id, nil
}

// Update merges fields into obligation id and publishes a fresh snapshot.
// Invalid fields are a silent no-op.
func (f *ObligationFeed) Update(ctx context.Context, id string, fields domain.Fields) error {
	if !fields.Valid() {
		return nil
	}
	if err := f.gate(); err != nil {
		return err
	}
	if err := f.store.Update(ctx, id, fields); err != nil {
		return err
	}
	slog.Info("obligation_event", "event", "obligation_updated", "id", id)
	f.Refresh(ctx)
	return nil
}

// Delete removes obligation id and publishes a fresh snapshot.
func (f *ObligationFeed) Delete(ctx context.Context, id string) error {
	if err := f.gate(); err != nil {
		return err
	}
	if err := f.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("obligation_event", "event", "obligation_deleted", "id", id)
	f.Refresh(ctx)
	return nil
}

// Watch re-reads the collection every interval until ctx is done, publishing
// only when the content changed. Writes from other processes reach subscribers this way.
// PRE: interval > 0
func (f *ObligationFeed) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.refresh(ctx, true)
		}
	}
}
