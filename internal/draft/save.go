package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/hangeul-lab/authoring/internal/platform/logger"
)

// saveRun is one pass of the save pipeline. It works on a copy of the draft
// taken when the pass started and writes back only while its version is
// still the newest.
type saveRun[P, C, G any] struct {
	s       *Store[P, C, G]
	log     *slog.Logger
	version uint64
	editSeq uint64
	scopeID int64

	parentID    Ident
	parent      P
	parentDirty bool
	children    []Child[C, G]
	childPrints map[ServerID]string
	itemPrints  map[ServerID]string

	deletedChildren []ServerID
	deletedItems    []ServerID

	prints   []printCommit
	failures []error
	calls    int
}

type printCommit struct {
	child bool
	id    ServerID
	fp    string
}

// SaveAll pushes the draft to the backend. scopeID is passed through to
// SaveParent and names the container the parent belongs to.
//
// The returned error is nil when everything was saved, ErrSuperseded when a
// newer save started before this one finished, or a failure wrapping
// ErrDeleteFailed, ErrParentFailed or ErrItemsFailed. On failure the status
// becomes StatusError and Err returns the same error.
func (s *Store[P, C, G]) SaveAll(ctx context.Context, scopeID int64) (err error) {
	run := s.begin(ctx, scopeID)

	defer func() {
		if r := recover(); r != nil {
			err = run.fail(fmt.Errorf("save panicked: %v", r))
		}
	}()

	if err := run.deletions(ctx); err != nil {
		return run.fail(err)
	}

	parentID, err := run.saveParent(ctx)
	if err != nil {
		return run.fail(err)
	}

	resolved, err := run.saveChildren(ctx, parentID)
	if err != nil {
		return run.fail(err)
	}

	if err := run.saveItems(ctx, resolved); err != nil {
		return run.fail(err)
	}

	return run.finish()
}

// Retry runs the pipeline again after a failed save, with the scope of the
// failed attempt.
func (s *Store[P, C, G]) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusError {
		s.mu.Unlock()
		return ErrNothingToRetry
	}
	scope := s.lastScope
	s.mu.Unlock()

	return s.SaveAll(ctx, scope)
}

func (s *Store[P, C, G]) begin(ctx context.Context, scopeID int64) *saveRun[P, C, G] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	s.lastScope = scopeID

	run := &saveRun[P, C, G]{
		s:               s,
		version:         s.version,
		editSeq:         s.editSeq,
		scopeID:         scopeID,
		parentID:        s.parentID,
		parent:          s.parent,
		parentDirty:     s.dirty[SectionMeta] || s.dirty[SectionContent],
		children:        cloneChildren(s.children),
		childPrints:     make(map[ServerID]string, len(s.childPrints)),
		itemPrints:      make(map[ServerID]string, len(s.itemPrints)),
		deletedChildren: append([]ServerID(nil), s.deletedChildren...),
	}
	for id, fp := range s.childPrints {
		run.childPrints[id] = fp
	}
	for id, fp := range s.itemPrints {
		run.itemPrints[id] = fp
	}
	for _, d := range s.deletedItems {
		run.deletedItems = append(run.deletedItems, d.id)
	}

	run.log = logger.FromContextOrDefault(ctx, s.logger).With(
		slog.Uint64("save_version", run.version),
		slog.String("parent_id", run.parentID.String()))

	s.setStatusLocked(StatusSaving)
	return run
}

// apply runs fn under the store lock if this run is still the newest one.
func (r *saveRun[P, C, G]) apply(fn func()) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.version != r.version {
		return false
	}
	fn()
	return true
}

func (r *saveRun[P, C, G]) deletions(ctx context.Context) error {
	err := r.deleteAll(ctx, "child", r.deletedChildren, r.s.backend.DeleteChild, func(id ServerID) {
		r.s.deletedChildren = removeID(r.s.deletedChildren, id)
	})
	if err != nil {
		return err
	}
	return r.deleteAll(ctx, "item", r.deletedItems, r.s.backend.DeleteGrandchild, func(id ServerID) {
		out := r.s.deletedItems[:0]
		for _, d := range r.s.deletedItems {
			if d.id != id {
				out = append(out, d)
			}
		}
		r.s.deletedItems = out
	})
}

// deleteAll issues one call per id. The first failure cancels the calls
// still in flight.
func (r *saveRun[P, C, G]) deleteAll(
	ctx context.Context,
	kind string,
	ids []ServerID,
	del func(context.Context, ServerID) (Envelope, error),
	clear func(ServerID),
) error {
	if len(ids) == 0 {
		return nil
	}
	r.calls += len(ids)

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			env, err := del(gctx, id)
			if err := callError(env, err, false); err != nil {
				return fmt.Errorf("%w: %s %d: %w", ErrDeleteFailed, kind, id, err)
			}
			if !r.apply(func() { clear(id) }) {
				return ErrSuperseded
			}
			r.log.Debug("deleted record", slog.String("kind", kind), slog.Int64("id", int64(id)))
			return nil
		})
	}
	return g.Wait()
}

func (r *saveRun[P, C, G]) saveParent(ctx context.Context) (ServerID, error) {
	sid, saved := AsServerID(r.parentID)
	if saved && !r.parentDirty {
		return sid, nil
	}

	r.calls++
	env, err := r.s.backend.SaveParent(ctx, r.scopeID, r.parent, r.parentID)
	if err := callError(env, err, !saved); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParentFailed, err)
	}
	if !saved {
		sid = env.ID
	}

	ok := r.apply(func() {
		if !r.s.parentID.Saved() {
			r.s.parentID = sid
		}
	})
	if !ok {
		return 0, ErrSuperseded
	}
	return sid, nil
}

// saveChildren writes every changed child and returns, per position in the
// run's copy, the server id to save that child's items under. Zero means
// the items are skipped this pass.
func (r *saveRun[P, C, G]) saveChildren(ctx context.Context, parentID ServerID) ([]ServerID, error) {
	resolved := make([]ServerID, len(r.children))

	for i, child := range r.children {
		fp := r.s.fingerprint("child", i, child.Data)
		sid, saved := AsServerID(child.ID)
		if saved && unchanged(r.childPrints, child.ID, fp) {
			resolved[i] = sid
			continue
		}

		r.calls++
		env, err := r.s.backend.SaveChild(ctx, parentID, i, child.Data, child.ID)
		if err := callError(env, err, !saved); err != nil {
			r.failed("child", child.ID, i, err)
			continue
		}
		if !saved {
			sid = env.ID
		}

		var live bool
		var conflict error
		if !r.apply(func() { live, conflict = r.s.reconcileChildLocked(child.ID, sid) }) {
			return nil, ErrSuperseded
		}
		if conflict != nil {
			r.failed("child", child.ID, i, conflict)
			continue
		}
		if !live {
			continue
		}
		resolved[i] = sid
		r.prints = append(r.prints, printCommit{child: true, id: sid, fp: fp})
	}
	return resolved, nil
}

func (r *saveRun[P, C, G]) saveItems(ctx context.Context, resolved []ServerID) error {
	for i, child := range r.children {
		childID := resolved[i]
		if childID == 0 {
			if len(child.Items) > 0 {
				r.log.Debug("skipping items of unsaved child",
					slog.String("child_id", child.ID.String()),
					slog.Int("items", len(child.Items)))
			}
			continue
		}

		for j, item := range child.Items {
			fp := r.s.fingerprint("item", j, item.Data)
			sid, saved := AsServerID(item.ID)
			if saved && unchanged(r.itemPrints, item.ID, fp) {
				continue
			}

			r.calls++
			env, err := r.s.backend.SaveGrandchild(ctx, childID, j, item.Data, item.ID)
			if err := callError(env, err, !saved); err != nil {
				r.failed("item", item.ID, j, err)
				continue
			}
			if !saved {
				sid = env.ID
			}

			var live bool
			var conflict error
			if !r.apply(func() { live, conflict = r.s.reconcileItemLocked(childID, item.ID, sid) }) {
				return ErrSuperseded
			}
			if conflict != nil {
				r.failed("item", item.ID, j, conflict)
				continue
			}
			if live {
				r.prints = append(r.prints, printCommit{id: sid, fp: fp})
			}
		}
	}
	return nil
}

func (r *saveRun[P, C, G]) failed(kind string, id Ident, position int, err error) {
	r.log.Warn("record save failed",
		slog.String("kind", kind),
		slog.String("id", id.String()),
		slog.Int("position", position),
		slog.String("error", err.Error()))
	r.failures = append(r.failures, fmt.Errorf("%s %s at %d: %w", kind, id, position, err))
}

// finish commits fingerprints and settles the status.
func (r *saveRun[P, C, G]) finish() error {
	s := r.s
	s.mu.Lock()
	if s.version != r.version {
		s.mu.Unlock()
		r.log.Debug("save superseded before completion")
		return ErrSuperseded
	}

	for _, p := range r.prints {
		if p.child {
			s.childPrints[p.id] = p.fp
		} else {
			s.itemPrints[p.id] = p.fp
		}
	}

	if s.editSeq == r.editSeq {
		s.dirty[SectionMeta] = false
		s.dirty[SectionContent] = false
		if len(r.failures) == 0 {
			s.dirty[SectionItems] = false
		}
	}

	if len(r.failures) > 0 {
		err := fmt.Errorf("%w: %w", ErrItemsFailed, multierr.Combine(r.failures...))
		s.setStatusLocked(StatusError)
		s.err = err
		s.mu.Unlock()
		r.log.Error("save finished with failures",
			slog.Int("failed", len(r.failures)),
			slog.Int("calls", r.calls))
		return err
	}

	var hook func()
	if s.isDirtyLocked() {
		s.setStatusLocked(StatusDirty)
		hook = s.onChange
	} else {
		s.setStatusLocked(StatusSaved)
	}
	s.mu.Unlock()

	r.log.Info("draft saved", slog.Int("calls", r.calls))
	if hook != nil {
		hook()
	}
	return nil
}

// fail records a pipeline abort unless the run has been superseded.
func (r *saveRun[P, C, G]) fail(err error) error {
	if errors.Is(err, ErrSuperseded) {
		r.log.Debug("save superseded")
		return ErrSuperseded
	}

	s := r.s
	s.mu.Lock()
	if s.version != r.version {
		s.mu.Unlock()
		r.log.Debug("save superseded", slog.String("error", err.Error()))
		return ErrSuperseded
	}
	s.setStatusLocked(StatusError)
	s.err = err
	s.mu.Unlock()

	r.log.Error("save aborted", slog.String("error", err.Error()))
	return err
}

// reconcileChildLocked swaps a temporary child id for the server id. It
// reports whether the child is still part of the draft. A child created on
// the server after it was removed locally is queued for deletion.
func (s *Store[P, C, G]) reconcileChildLocked(orig Ident, sid ServerID) (bool, error) {
	idx := s.childIndexLocked(orig)
	if orig.Saved() {
		return idx >= 0, nil
	}
	if idx < 0 {
		s.deletedChildren = append(s.deletedChildren, sid)
		return false, nil
	}
	if s.childIndexLocked(sid) >= 0 {
		return false, fmt.Errorf("%w: child %d", ErrDuplicateID, sid)
	}
	s.children[idx].ID = sid
	return true, nil
}

// reconcileItemLocked is reconcileChildLocked for items of child childID.
func (s *Store[P, C, G]) reconcileItemLocked(childID ServerID, orig Ident, sid ServerID) (bool, error) {
	ci := s.childIndexLocked(childID)
	if ci < 0 {
		// The child is gone and its deletion removes the item as well.
		return false, nil
	}
	items := s.children[ci].Items
	idx := itemIndex(items, orig)
	if orig.Saved() {
		return idx >= 0, nil
	}
	if idx < 0 {
		s.deletedItems = append(s.deletedItems, itemDeletion{child: childID, id: sid})
		return false, nil
	}
	if itemIndex(items, sid) >= 0 {
		return false, fmt.Errorf("%w: item %d", ErrDuplicateID, sid)
	}
	items[idx].ID = sid
	return true, nil
}

func removeID(ids []ServerID, id ServerID) []ServerID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
