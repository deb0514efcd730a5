package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScope int64 = 7

func newDraft(backend *fakeBackend, opts ...Option) *testStore {
	opts = append([]Option{WithSettleAfter(0)}, opts...)
	return New[testParent, testChild, testItem](backend, testParent{}, opts...)
}

// loadFixture opens a persisted set:
//
//	10
//	├── 100 "q1" ── 200 "a", 201 "b"
//	└── 101 "q2" ── 202 "c"
func loadFixture(t *testing.T, backend *fakeBackend, opts ...Option) *testStore {
	t.Helper()
	opts = append([]Option{WithSettleAfter(0)}, opts...)
	s, err := Load[testParent, testChild, testItem](backend, 10, testParent{Title: "Loaded"}, []Child[testChild, testItem]{
		{
			ID:   ServerID(100),
			Data: testChild{Prompt: "q1"},
			Items: []Item[testItem]{
				{ID: ServerID(200), Data: testItem{Text: "a"}},
				{ID: ServerID(201), Data: testItem{Text: "b"}},
			},
		},
		{
			ID:    ServerID(101),
			Data:  testChild{Prompt: "q2"},
			Items: []Item[testItem]{{ID: ServerID(202), Data: testItem{Text: "c"}}},
		},
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestSetAScenario(t *testing.T) {
	backend := newFakeBackend()
	s := newDraft(backend)

	s.UpdateParent(SectionMeta, func(p *testParent) { p.Title = "Set A" })
	s.AddChild(testChild{Prompt: "first"})
	s.AddChild(testChild{Prompt: "second"})
	require.True(t, s.RemoveChild(1))
	assert.Empty(t, backend.recorded(), "mutations must not call the backend")

	require.NoError(t, s.SaveAll(context.Background(), testScope))

	calls := backend.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, opSaveParent, calls[0].op)
	assert.Equal(t, testScope, calls[0].owner)
	assert.Equal(t, testParent{Title: "Set A"}, calls[0].data)
	assert.Equal(t, opSaveChild, calls[1].op)
	assert.Equal(t, testChild{Prompt: "first"}, calls[1].data)
	assert.Equal(t, calls[0].id, ServerID(calls[1].owner))
	assert.Zero(t, backend.count(opDeleteChild))

	assert.Equal(t, StatusSaved, s.Status())
	assert.False(t, s.IsDirty())
}

func TestUnchangedChildrenAreSkipped(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Empty(t, backend.recorded(), "loaded state is already on the server")

	require.True(t, s.UpdateChild(1, func(c *testChild) { c.Prompt = "q2 edited" }))
	require.True(t, s.UpdateChild(0, func(c *testChild) { c.Prompt = "q1" }), "rewrite with the same value")
	require.NoError(t, s.SaveAll(context.Background(), testScope))

	calls := backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, opSaveChild, calls[0].op)
	assert.Equal(t, ServerID(101), calls[0].existing)
	assert.Equal(t, 1, calls[0].position)
}

func TestTempIDsAreReconciled(t *testing.T) {
	backend := newFakeBackend()
	s := newDraft(backend)

	tmp := s.AddChild(testChild{Prompt: "q"})
	assert.True(t, IsTempID(string(tmp)))
	_, ok := s.AddItem(0, testItem{Text: "opt"})
	require.True(t, ok)

	require.NoError(t, s.SaveAll(context.Background(), testScope))

	children := s.Children()
	require.Len(t, children, 1)
	childID, ok := AsServerID(children[0].ID)
	require.True(t, ok, "child id must be replaced")
	require.Len(t, children[0].Items, 1)
	itemID, ok := AsServerID(children[0].Items[0].ID)
	require.True(t, ok, "item id must be replaced")

	calls := backend.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, calls[1].id, childID)
	assert.Equal(t, calls[2].id, itemID)
	assert.Equal(t, int64(childID), calls[2].owner)

	backend.reset()
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Empty(t, backend.recorded(), "a second save must not create duplicates")
	assert.Len(t, s.Children(), 1)
}

func TestDeletionIsDeferredUntilSave(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	require.True(t, s.RemoveChild(0))
	assert.Empty(t, backend.recorded())
	children, items := s.PendingDeletions()
	assert.Equal(t, []ServerID{100}, children)
	assert.Empty(t, items)
	assert.Len(t, s.Children(), 1)
	assert.True(t, s.IsDirty())

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, 1, backend.count(opDeleteChild))
	children, _ = s.PendingDeletions()
	assert.Empty(t, children)

	// 101 moved from position 1 to 0 and is written again.
	saves := backend.recorded()[1:]
	require.Len(t, saves, 1)
	assert.Equal(t, opSaveChild, saves[0].op)
	assert.Equal(t, ServerID(101), saves[0].existing)
	assert.Equal(t, 0, saves[0].position)

	backend.reset()
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Empty(t, backend.recorded(), "delete must be issued exactly once")
}

func TestRemovingTempChildNeverReachesServer(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	s.AddChild(testChild{Prompt: "new"})
	require.True(t, s.RemoveChild(2))

	children, _ := s.PendingDeletions()
	assert.Empty(t, children)
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Empty(t, backend.recorded())
}

func TestRemovingSavedChildDropsItsItemDeletions(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	require.True(t, s.RemoveItem(0, 1))
	_, items := s.PendingDeletions()
	assert.Equal(t, []ServerID{201}, items)

	require.True(t, s.RemoveChild(0))
	children, items := s.PendingDeletions()
	assert.Equal(t, []ServerID{100}, children)
	assert.Empty(t, items, "deleting the child removes its items on the server")

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, 1, backend.count(opDeleteChild))
	assert.Zero(t, backend.count(opDeleteGrandchild))
}

func TestDeletionFailureAbortsPipeline(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	require.True(t, s.RemoveItem(1, 0))
	s.UpdateParent(SectionMeta, func(p *testParent) { p.Title = "renamed" })
	backend.setFail(func(c call) (Envelope, error, bool) {
		if c.op == opDeleteGrandchild {
			return Envelope{Success: false, Error: "locked"}, nil, true
		}
		return Envelope{}, nil, false
	})

	err := s.SaveAll(context.Background(), testScope)
	require.ErrorIs(t, err, ErrDeleteFailed)
	assert.ErrorContains(t, err, "locked")
	assert.Equal(t, StatusError, s.Status())
	assert.ErrorIs(t, s.Err(), ErrDeleteFailed)
	assert.Zero(t, backend.count(opSaveParent), "content must not be saved after a failed delete")
	_, items := s.PendingDeletions()
	assert.Equal(t, []ServerID{202}, items, "failed marker stays queued")

	backend.setFail(nil)
	backend.reset()
	require.NoError(t, s.Retry(context.Background()))
	assert.Equal(t, 1, backend.count(opDeleteGrandchild))
	assert.Equal(t, 1, backend.count(opSaveParent))
	assert.Equal(t, StatusSaved, s.Status())
	assert.Nil(t, s.Err())
}

func TestParentFailureAbortsPipeline(t *testing.T) {
	backend := newFakeBackend()
	s := newDraft(backend)
	s.AddChild(testChild{Prompt: "q"})

	backend.setFail(func(c call) (Envelope, error, bool) {
		if c.op == opSaveParent {
			return Envelope{}, errors.New("connection reset"), true
		}
		return Envelope{}, nil, false
	})

	err := s.SaveAll(context.Background(), testScope)
	require.ErrorIs(t, err, ErrParentFailed)
	assert.Equal(t, StatusError, s.Status())
	assert.Zero(t, backend.count(opSaveChild))
	assert.False(t, s.ParentID().Saved())
	assert.False(t, s.Children()[0].ID.Saved())
	assert.True(t, s.IsDirty())
}

func TestChildFailuresAreBestEffort(t *testing.T) {
	backend := newFakeBackend()
	s := newDraft(backend)
	for _, prompt := range []string{"a", "b", "c"} {
		s.AddChild(testChild{Prompt: prompt})
	}
	for i := range 3 {
		_, ok := s.AddItem(i, testItem{Text: "opt"})
		require.True(t, ok)
	}

	backend.setFail(func(c call) (Envelope, error, bool) {
		if c.op == opSaveChild && c.position == 1 {
			return Envelope{Success: false, Error: "prompt too long"}, nil, true
		}
		return Envelope{}, nil, false
	})

	err := s.SaveAll(context.Background(), testScope)
	require.ErrorIs(t, err, ErrItemsFailed)
	assert.ErrorContains(t, err, "prompt too long")
	assert.Equal(t, StatusError, s.Status())
	assert.True(t, s.Dirty(SectionItems))
	assert.False(t, s.Dirty(SectionMeta))

	assert.Equal(t, 3, backend.count(opSaveChild), "siblings continue after a failure")
	assert.Equal(t, 2, backend.count(opSaveGrandchild), "items of the failed child wait for the next pass")

	children := s.Children()
	assert.True(t, children[0].ID.Saved())
	assert.False(t, children[1].ID.Saved())
	assert.True(t, children[2].ID.Saved())

	backend.setFail(nil)
	backend.reset()
	require.NoError(t, s.Retry(context.Background()))
	calls := backend.recorded()
	require.Len(t, calls, 2, "only the failed child and its item are written")
	assert.Equal(t, opSaveChild, calls[0].op)
	assert.Equal(t, 1, calls[0].position)
	assert.Equal(t, opSaveGrandchild, calls[1].op)
	assert.Equal(t, StatusSaved, s.Status())
	assert.False(t, s.IsDirty())
}

func TestStaleSaveIsAbandoned(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	release := make(chan struct{})
	entered := make(chan struct{})
	first := true
	backend.setGate(func(c call) {
		if c.op == opSaveChild && first {
			first = false
			close(entered)
			<-release
		}
	})

	require.True(t, s.UpdateChild(0, func(c *testChild) { c.Prompt = "v1" }))
	firstErr := make(chan error, 1)
	go func() { firstErr <- s.SaveAll(context.Background(), testScope) }()
	<-entered

	require.True(t, s.UpdateChild(0, func(c *testChild) { c.Prompt = "v2" }))
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, StatusSaved, s.Status())

	close(release)
	require.ErrorIs(t, <-firstErr, ErrSuperseded)

	assert.Equal(t, StatusSaved, s.Status(), "a stale save must not change the status")
	assert.Equal(t, "v2", s.Children()[0].Data.Prompt)
	assert.False(t, s.IsDirty())

	// Had the stale save recorded its snapshot, v2 would be written again.
	backend.reset()
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Empty(t, backend.recorded())
}

func TestEditDuringSaveStaysDirty(t *testing.T) {
	backend := newFakeBackend()
	hooks := 0
	s := loadFixture(t, backend, WithChangeHook(func() { hooks++ }))

	require.True(t, s.UpdateChild(0, func(c *testChild) { c.Prompt = "typed" }))
	require.Equal(t, 1, hooks)

	backend.setGate(func(c call) {
		if c.op == opSaveChild {
			backend.setGate(nil)
			s.UpdateChild(1, func(c *testChild) { c.Prompt = "typed during save" })
		}
	})

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, StatusDirty, s.Status())
	assert.True(t, s.Dirty(SectionItems))
	assert.Equal(t, 3, hooks, "edit plus the completion reschedule")

	backend.reset()
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	calls := backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, ServerID(101), calls[0].existing)
	assert.Equal(t, StatusSaved, s.Status())
}

func TestChildRemovedDuringCreateIsDeleted(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)
	s.AddChild(testChild{Prompt: "short lived"})

	var created ServerID
	backend.setGate(func(c call) {
		if c.op == opSaveChild {
			backend.setGate(nil)
			created = c.id
			s.RemoveChild(2)
		}
	})

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	require.NotZero(t, created)
	assert.Len(t, s.Children(), 2)
	children, _ := s.PendingDeletions()
	assert.Equal(t, []ServerID{created}, children)
	assert.Equal(t, StatusDirty, s.Status())

	backend.reset()
	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, 1, backend.count(opDeleteChild))
	assert.False(t, s.IsDirty())
}

func TestOutOfRangeMutationsAreNoops(t *testing.T) {
	backend := newFakeBackend()
	s := loadFixture(t, backend)

	assert.False(t, s.UpdateChild(5, func(*testChild) { t.Fatal("must not run") }))
	assert.False(t, s.UpdateChild(-1, func(*testChild) { t.Fatal("must not run") }))
	assert.False(t, s.RemoveChild(2))
	assert.False(t, s.UpdateItem(0, 9, func(*testItem) { t.Fatal("must not run") }))
	assert.False(t, s.RemoveItem(3, 0))
	_, ok := s.AddItem(4, testItem{})
	assert.False(t, ok)

	assert.False(t, s.IsDirty())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestStatusSettlesToIdle(t *testing.T) {
	backend := newFakeBackend()
	timers := &fakeTimers{}
	s := loadFixture(t, backend, WithSettleAfter(DefaultSettleAfter), WithAfterFunc(timers.AfterFunc))

	s.UpdateParent(SectionContent, func(p *testParent) { p.Body = "x" })
	assert.Equal(t, StatusDirty, s.Status())
	assert.True(t, s.Dirty(SectionContent))

	require.NoError(t, s.SaveAll(context.Background(), testScope))
	assert.Equal(t, StatusSaved, s.Status())
	require.Equal(t, 1, timers.fireLive())
	assert.Equal(t, StatusIdle, s.Status())
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	_, err := Load[testParent, testChild, testItem](newFakeBackend(), 1, testParent{}, []Child[testChild, testItem]{
		{ID: ServerID(5)},
		{ID: ServerID(5)},
	})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestRetryWithoutFailure(t *testing.T) {
	s := newDraft(newFakeBackend())
	assert.ErrorIs(t, s.Retry(context.Background()), ErrNothingToRetry)
}
