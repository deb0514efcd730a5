package draft

import (
	"context"
	"sync"
	"time"

	"github.com/hangeul-lab/authoring/internal/debounce"
)

type testParent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type testChild struct {
	Prompt string `json:"prompt"`
}

type testItem struct {
	Text string `json:"text"`
}

type testStore = Store[testParent, testChild, testItem]

const (
	opSaveParent       = "save_parent"
	opSaveChild        = "save_child"
	opSaveGrandchild   = "save_grandchild"
	opDeleteChild      = "delete_child"
	opDeleteGrandchild = "delete_grandchild"
)

type call struct {
	op       string
	owner    int64
	position int
	existing Ident
	data     any
	id       ServerID
}

// fakeBackend records calls and assigns increasing ids to creates.
// gate, when set, runs before a call returns; fail, when set, can replace
// the result of a call.
type fakeBackend struct {
	mu     sync.Mutex
	nextID ServerID
	calls  []call

	gate func(c call)
	fail func(c call) (Envelope, error, bool)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 1000}
}

func (f *fakeBackend) do(c call) (Envelope, error) {
	f.mu.Lock()
	if c.existing == nil || !c.existing.Saved() {
		f.nextID++
		c.id = f.nextID
	} else {
		c.id, _ = AsServerID(c.existing)
	}
	f.calls = append(f.calls, c)
	gate, fail := f.gate, f.fail
	f.mu.Unlock()

	if gate != nil {
		gate(c)
	}
	if fail != nil {
		if env, err, ok := fail(c); ok {
			return env, err
		}
	}
	return Envelope{Success: true, ID: c.id}, nil
}

func (f *fakeBackend) SaveParent(_ context.Context, scopeID int64, fields testParent, existing Ident) (Envelope, error) {
	return f.do(call{op: opSaveParent, owner: scopeID, existing: existing, data: fields})
}

func (f *fakeBackend) SaveChild(_ context.Context, parentID ServerID, position int, data testChild, existing Ident) (Envelope, error) {
	return f.do(call{op: opSaveChild, owner: int64(parentID), position: position, existing: existing, data: data})
}

func (f *fakeBackend) SaveGrandchild(_ context.Context, childID ServerID, position int, data testItem, existing Ident) (Envelope, error) {
	return f.do(call{op: opSaveGrandchild, owner: int64(childID), position: position, existing: existing, data: data})
}

func (f *fakeBackend) DeleteChild(_ context.Context, id ServerID) (Envelope, error) {
	return f.do(call{op: opDeleteChild, existing: id})
}

func (f *fakeBackend) DeleteGrandchild(_ context.Context, id ServerID) (Envelope, error) {
	return f.do(call{op: opDeleteGrandchild, existing: id})
}

func (f *fakeBackend) setFail(fn func(c call) (Envelope, error, bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fn
}

func (f *fakeBackend) setGate(fn func(c call)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = fn
}

func (f *fakeBackend) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeBackend) count(op string) int {
	n := 0
	for _, c := range f.recorded() {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// fakeTimers hands out timers that only fire when a test says so.
type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	fn      func()
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (ft *fakeTimers) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{fn: f}
	ft.timers = append(ft.timers, t)
	return t
}

// fireLive runs every timer that has not been stopped and reports how many
// ran.
func (ft *fakeTimers) fireLive() int {
	ft.mu.Lock()
	timers := append([]*fakeTimer(nil), ft.timers...)
	ft.mu.Unlock()

	n := 0
	for _, t := range timers {
		if !t.isStopped() {
			t.Stop()
			t.fn()
			n++
		}
	}
	return n
}

func (ft *fakeTimers) live() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.timers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}
