package draft

import (
	"context"
	"errors"
)

// Envelope is the uniform result of a persistence call. Business failures
// come back as Success false with a message; the error return of a Backend
// method is reserved for transport faults.
type Envelope struct {
	Success bool     `json:"success"`
	ID      ServerID `json:"id,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Backend persists the three levels of a draft. The existing argument is
// the record's current identity: a TempID means create, a ServerID means
// update. Positions are zero based.
type Backend[P, C, G any] interface {
	SaveParent(ctx context.Context, scopeID int64, fields P, existing Ident) (Envelope, error)
	SaveChild(ctx context.Context, parentID ServerID, position int, data C, existing Ident) (Envelope, error)
	SaveGrandchild(ctx context.Context, childID ServerID, position int, data G, existing Ident) (Envelope, error)
	DeleteChild(ctx context.Context, id ServerID) (Envelope, error)
	DeleteGrandchild(ctx context.Context, id ServerID) (Envelope, error)
}

// None is the item type of drafts that have no third level.
type None struct{}

// errNoGrandchildren is returned by NoGrandchildren if it is ever called.
var errNoGrandchildren = errors.New("record type has no nested items")

// NoGrandchildren can be embedded in a Backend for two-level drafts.
type NoGrandchildren struct{}

func (NoGrandchildren) SaveGrandchild(context.Context, ServerID, int, None, Ident) (Envelope, error) {
	return Envelope{}, errNoGrandchildren
}

func (NoGrandchildren) DeleteGrandchild(context.Context, ServerID) (Envelope, error) {
	return Envelope{}, errNoGrandchildren
}
