package draft

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, s *testStore) (*Session[testParent, testChild, testItem], *fakeTimers) {
	t.Helper()
	timers := &fakeTimers{}
	sess := NewSession(context.Background(), s, testScope, WithDebounceTimer(timers.AfterFunc))
	t.Cleanup(sess.Close)
	return sess, timers
}

func TestTrySaveAndCloseWithoutChanges(t *testing.T) {
	backend := newFakeBackend()
	sess, _ := newTestSession(t, loadFixture(t, backend))

	assert.True(t, sess.TrySaveAndClose(context.Background()))
	assert.Empty(t, backend.recorded())

	fresh, _ := newTestSession(t, newDraft(backend))
	assert.True(t, fresh.TrySaveAndClose(context.Background()), "an untouched new draft has nothing to save")
	assert.Empty(t, backend.recorded())
}

func TestTrySaveAndCloseSavesPendingEdits(t *testing.T) {
	backend := newFakeBackend()
	sess, timers := newTestSession(t, loadFixture(t, backend))

	sess.Store().UpdateChild(0, func(c *testChild) { c.Prompt = "edited" })
	require.Equal(t, 1, timers.live())

	assert.True(t, sess.TrySaveAndClose(context.Background()))
	assert.Zero(t, timers.live(), "pending autosave is cancelled")
	assert.Equal(t, 1, backend.count(opSaveChild))
	assert.Equal(t, StatusSaved, sess.Status())

	assert.Zero(t, timers.fireLive())
	assert.Equal(t, 1, backend.count(opSaveChild))
}

func TestTrySaveAndCloseFailureKeepsSessionOpen(t *testing.T) {
	backend := newFakeBackend()
	sess, _ := newTestSession(t, loadFixture(t, backend))

	sess.Store().UpdateParent(SectionMeta, func(p *testParent) { p.Title = "new title" })
	backend.setFail(func(c call) (Envelope, error, bool) {
		return Envelope{Success: false, Error: "unavailable"}, nil, true
	})

	assert.False(t, sess.TrySaveAndClose(context.Background()))
	assert.Equal(t, StatusError, sess.Status())
	assert.ErrorIs(t, sess.Store().Err(), ErrParentFailed)

	backend.setFail(nil)
	require.NoError(t, sess.Retry(context.Background()))
	assert.Equal(t, StatusSaved, sess.Status())
	assert.True(t, sess.TrySaveAndClose(context.Background()))
}

func TestTrySaveAndCloseWaitsForRunningSave(t *testing.T) {
	backend := newFakeBackend()
	sess, timers := newTestSession(t, loadFixture(t, backend))

	entered := make(chan struct{})
	release := make(chan struct{})
	backend.setGate(func(c call) {
		backend.setGate(nil)
		close(entered)
		<-release
	})

	sess.Store().UpdateChild(1, func(c *testChild) { c.Prompt = "autosaved" })
	go timers.fireLive()
	<-entered

	closed := make(chan bool, 1)
	go func() { closed <- sess.TrySaveAndClose(context.Background()) }()

	select {
	case <-closed:
		t.Fatal("close guard returned while a save was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case ok := <-closed:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("close guard never returned")
	}
	assert.Equal(t, 1, backend.count(opSaveChild), "the running save covered the edit")
}

func TestAutosaveCoalescesEdits(t *testing.T) {
	backend := newFakeBackend()
	sess, timers := newTestSession(t, newDraft(backend))
	st := sess.Store()

	st.UpdateParent(SectionMeta, func(p *testParent) { p.Title = "S" })
	st.UpdateParent(SectionMeta, func(p *testParent) { p.Title = "Se" })
	st.UpdateParent(SectionMeta, func(p *testParent) { p.Title = "Set" })
	assert.Equal(t, 1, timers.live())
	assert.Empty(t, backend.recorded())

	require.Equal(t, 1, timers.fireLive())
	calls := backend.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, testParent{Title: "Set"}, calls[0].data)
	assert.Equal(t, StatusSaved, sess.Status())
}

func TestExplicitSaveCancelsAutosave(t *testing.T) {
	backend := newFakeBackend()
	sess, timers := newTestSession(t, loadFixture(t, backend))

	sess.Store().UpdateChild(0, func(c *testChild) { c.Prompt = "now" })
	require.NoError(t, sess.Save(context.Background()))
	assert.Zero(t, timers.live())
	assert.Equal(t, 1, backend.count(opSaveChild))
}

func TestClosedSessionStopsScheduling(t *testing.T) {
	backend := newFakeBackend()
	sess, timers := newTestSession(t, loadFixture(t, backend))

	sess.Store().UpdateChild(0, func(c *testChild) { c.Prompt = "x" })
	sess.Close()
	assert.Zero(t, timers.live())

	sess.Store().UpdateChild(0, func(c *testChild) { c.Prompt = "y" })
	assert.Zero(t, timers.live())
	assert.Zero(t, timers.fireLive())
	assert.Empty(t, backend.recorded())
}
