package draft

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hangeul-lab/authoring/internal/debounce"
)

// DefaultSettleAfter is how long a draft reports StatusSaved before it
// returns to StatusIdle.
const DefaultSettleAfter = 2 * time.Second

// Child is a second level record, such as a question in a question set.
type Child[C, G any] struct {
	ID    Ident
	Data  C
	Items []Item[G]
}

// Item is a third level record, such as an answer option of a question.
type Item[G any] struct {
	ID   Ident
	Data G
}

// itemDeletion is a queued item delete. The owning child is kept so the
// marker can be dropped when the whole child is deleted.
type itemDeletion struct {
	child ServerID
	id    ServerID
}

// Option configures a Store.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	onChange    func()
	settleAfter time.Duration
	afterFunc   debounce.AfterFunc
}

// WithLogger sets the logger used for save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithChangeHook registers fn to run after every mutation, outside the
// store's lock. It also runs when a save finishes and edits made during the
// save are still unsaved.
func WithChangeHook(fn func()) Option {
	return func(o *options) {
		o.onChange = fn
	}
}

// WithSettleAfter overrides DefaultSettleAfter. Zero or negative disables
// the automatic return to idle.
func WithSettleAfter(d time.Duration) Option {
	return func(o *options) {
		o.settleAfter = d
	}
}

// WithAfterFunc replaces the timer source used to settle the status.
func WithAfterFunc(af debounce.AfterFunc) Option {
	return func(o *options) {
		o.afterFunc = af
	}
}

// Store is the editable draft of one parent record with its children and
// their items. It is safe for concurrent use, although it is meant to be
// owned by a single editor session.
type Store[P, C, G any] struct {
	backend Backend[P, C, G]
	logger  *slog.Logger

	mu       sync.Mutex
	onChange func()

	parentID Ident
	parent   P
	children []Child[C, G]

	deletedChildren []ServerID
	deletedItems    []itemDeletion

	dirty [sectionCount]bool
	// editSeq counts mutations; a save only clears dirty flags when no
	// mutation happened while it ran.
	editSeq uint64

	// childPrints and itemPrints hold the fingerprint of the last state the
	// server acknowledged for each persisted record.
	childPrints map[ServerID]string
	itemPrints  map[ServerID]string

	status    Status
	err       error
	version   uint64
	lastScope int64

	settleAfter time.Duration
	afterFunc   debounce.AfterFunc
	settleTimer debounce.Timer
}

func newStore[P, C, G any](backend Backend[P, C, G], opts []Option) *Store[P, C, G] {
	if backend == nil {
		panic("backend cannot be nil")
	}

	o := options{
		logger:      slog.Default(),
		settleAfter: DefaultSettleAfter,
		afterFunc: func(d time.Duration, f func()) debounce.Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[P, C, G]{
		backend:     backend,
		logger:      o.logger.With(slog.String("component", "draft_store")),
		onChange:    o.onChange,
		childPrints: make(map[ServerID]string),
		itemPrints:  make(map[ServerID]string),
		settleAfter: o.settleAfter,
		afterFunc:   o.afterFunc,
	}
}

// New starts a draft for a record that does not exist on the server yet.
// The draft starts clean; the first save creates the parent.
func New[P, C, G any](backend Backend[P, C, G], parent P, opts ...Option) *Store[P, C, G] {
	s := newStore(backend, opts)
	s.parentID = NewTempID()
	s.parent = parent
	return s
}

// Load starts a draft from a persisted record. The given state is taken as
// the server's current state, so an immediate save issues no calls.
func Load[P, C, G any](
	backend Backend[P, C, G],
	id ServerID,
	parent P,
	children []Child[C, G],
	opts ...Option,
) (*Store[P, C, G], error) {
	s := newStore(backend, opts)
	s.parentID = id
	s.parent = parent
	s.children = cloneChildren(children)

	seenChildren := make(map[ServerID]struct{}, len(children))
	seenItems := make(map[ServerID]struct{})
	for i, child := range s.children {
		if sid, ok := AsServerID(child.ID); ok {
			if _, dup := seenChildren[sid]; dup {
				return nil, fmt.Errorf("%w: child %d", ErrDuplicateID, sid)
			}
			seenChildren[sid] = struct{}{}
			s.childPrints[sid] = s.fingerprint("child", i, child.Data)
		}
		for j, item := range child.Items {
			sid, ok := AsServerID(item.ID)
			if !ok {
				continue
			}
			if _, dup := seenItems[sid]; dup {
				return nil, fmt.Errorf("%w: item %d", ErrDuplicateID, sid)
			}
			seenItems[sid] = struct{}{}
			s.itemPrints[sid] = s.fingerprint("item", j, item.Data)
		}
	}
	return s, nil
}

// ParentID returns the parent's current identity.
func (s *Store[P, C, G]) ParentID() Ident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parentID
}

// Parent returns a copy of the parent fields.
func (s *Store[P, C, G]) Parent() P {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// Children returns a copy of the active children in position order.
func (s *Store[P, C, G]) Children() []Child[C, G] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneChildren(s.children)
}

// PendingDeletions returns the server ids of children and items whose
// deletion will be sent on the next save.
func (s *Store[P, C, G]) PendingDeletions() (children, items []ServerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	children = append([]ServerID(nil), s.deletedChildren...)
	for _, d := range s.deletedItems {
		items = append(items, d.id)
	}
	return children, items
}

// Status returns the current save state.
func (s *Store[P, C, G]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the cause of the last failed save, if the status is error.
func (s *Store[P, C, G]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// IsDirty reports whether any section has unsaved changes or deletions are
// queued.
func (s *Store[P, C, G]) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDirtyLocked()
}

// Dirty reports the flag of one section.
func (s *Store[P, C, G]) Dirty(section Section) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if section < 0 || section >= sectionCount {
		return false
	}
	return s.dirty[section]
}

func (s *Store[P, C, G]) isDirtyLocked() bool {
	for _, d := range s.dirty {
		if d {
			return true
		}
	}
	return len(s.deletedChildren) > 0 || len(s.deletedItems) > 0
}

// UpdateParent applies fn to the parent fields and marks section dirty.
func (s *Store[P, C, G]) UpdateParent(section Section, fn func(*P)) {
	if section != SectionMeta && section != SectionContent {
		s.logger.Warn("parent update with unexpected section, treating as content",
			slog.String("section", section.String()))
		section = SectionContent
	}
	s.mutate(section, func() bool {
		fn(&s.parent)
		return true
	})
}

// AddChild appends a new child and returns its temporary id.
func (s *Store[P, C, G]) AddChild(data C) TempID {
	id := NewTempID()
	s.mutate(SectionItems, func() bool {
		s.children = append(s.children, Child[C, G]{ID: id, Data: data})
		return true
	})
	return id
}

// UpdateChild applies fn to the child at index. An index out of range is
// logged and ignored.
func (s *Store[P, C, G]) UpdateChild(index int, fn func(*C)) bool {
	return s.mutate(SectionItems, func() bool {
		if !s.validChildLocked("update child", index) {
			return false
		}
		fn(&s.children[index].Data)
		return true
	})
}

// RemoveChild drops the child at index. A persisted child is queued for
// deletion on the next save, together with its items on the server.
func (s *Store[P, C, G]) RemoveChild(index int) bool {
	return s.mutate(SectionItems, func() bool {
		if !s.validChildLocked("remove child", index) {
			return false
		}
		child := s.children[index]
		s.children = append(s.children[:index], s.children[index+1:]...)

		sid, ok := AsServerID(child.ID)
		if !ok {
			return true
		}
		s.deletedChildren = append(s.deletedChildren, sid)
		delete(s.childPrints, sid)
		// The server removes the items together with the child.
		s.deletedItems = dropItemDeletionsOf(s.deletedItems, sid)
		for _, item := range child.Items {
			if isid, ok := AsServerID(item.ID); ok {
				delete(s.itemPrints, isid)
			}
		}
		return true
	})
}

// AddItem appends a new item to the child at childIndex.
func (s *Store[P, C, G]) AddItem(childIndex int, data G) (TempID, bool) {
	id := NewTempID()
	ok := s.mutate(SectionItems, func() bool {
		if !s.validChildLocked("add item", childIndex) {
			return false
		}
		child := &s.children[childIndex]
		child.Items = append(child.Items, Item[G]{ID: id, Data: data})
		return true
	})
	if !ok {
		return "", false
	}
	return id, true
}

// UpdateItem applies fn to one item. Out of range indexes are logged and
// ignored.
func (s *Store[P, C, G]) UpdateItem(childIndex, itemIndex int, fn func(*G)) bool {
	return s.mutate(SectionItems, func() bool {
		if !s.validItemLocked("update item", childIndex, itemIndex) {
			return false
		}
		fn(&s.children[childIndex].Items[itemIndex].Data)
		return true
	})
}

// RemoveItem drops one item, queueing its deletion when it is persisted.
func (s *Store[P, C, G]) RemoveItem(childIndex, itemIndex int) bool {
	return s.mutate(SectionItems, func() bool {
		if !s.validItemLocked("remove item", childIndex, itemIndex) {
			return false
		}
		child := &s.children[childIndex]
		item := child.Items[itemIndex]
		child.Items = append(child.Items[:itemIndex], child.Items[itemIndex+1:]...)

		isid, ok := AsServerID(item.ID)
		if !ok {
			return true
		}
		csid, _ := AsServerID(child.ID)
		s.deletedItems = append(s.deletedItems, itemDeletion{child: csid, id: isid})
		delete(s.itemPrints, isid)
		return true
	})
}

// mutate runs fn under the lock and, if it reports a change, marks section
// dirty and fires the change hook.
func (s *Store[P, C, G]) mutate(section Section, fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	if changed {
		s.markDirtyLocked(section)
	}
	hook := s.onChange
	s.mu.Unlock()

	if changed && hook != nil {
		hook()
	}
	return changed
}

func (s *Store[P, C, G]) markDirtyLocked(section Section) {
	s.dirty[section] = true
	s.editSeq++
	if s.status != StatusSaving {
		s.setStatusLocked(StatusDirty)
	}
}

func (s *Store[P, C, G]) setStatusLocked(status Status) {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.status = status
	if status != StatusError {
		s.err = nil
	}
	if status == StatusSaved && s.settleAfter > 0 {
		version := s.version
		s.settleTimer = s.afterFunc(s.settleAfter, func() { s.settle(version) })
	}
}

// settle moves a saved draft back to idle unless something happened since.
func (s *Store[P, C, G]) settle(version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version == version && s.status == StatusSaved {
		s.status = StatusIdle
		s.settleTimer = nil
	}
}

func (s *Store[P, C, G]) setChangeHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Store[P, C, G]) validChildLocked(op string, index int) bool {
	if index >= 0 && index < len(s.children) {
		return true
	}
	s.logger.Warn("child index out of range",
		slog.String("op", op),
		slog.Int("index", index),
		slog.Int("children", len(s.children)))
	return false
}

func (s *Store[P, C, G]) validItemLocked(op string, childIndex, itemIndex int) bool {
	if !s.validChildLocked(op, childIndex) {
		return false
	}
	items := s.children[childIndex].Items
	if itemIndex >= 0 && itemIndex < len(items) {
		return true
	}
	s.logger.Warn("item index out of range",
		slog.String("op", op),
		slog.Int("child_index", childIndex),
		slog.Int("index", itemIndex),
		slog.Int("items", len(items)))
	return false
}

func (s *Store[P, C, G]) childIndexLocked(id Ident) int {
	for i, child := range s.children {
		if child.ID == id {
			return i
		}
	}
	return -1
}

func itemIndex[G any](items []Item[G], id Ident) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func cloneChildren[C, G any](in []Child[C, G]) []Child[C, G] {
	if in == nil {
		return nil
	}
	out := make([]Child[C, G], len(in))
	for i, child := range in {
		child.Items = append([]Item[G](nil), child.Items...)
		out[i] = child
	}
	return out
}

func dropItemDeletionsOf(in []itemDeletion, child ServerID) []itemDeletion {
	out := in[:0]
	for _, d := range in {
		if d.child != child {
			out = append(out, d)
		}
	}
	return out
}
