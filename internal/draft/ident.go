package draft

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// tempPrefix marks identifiers minted on the client.
const tempPrefix = "tmp-"

// Ident identifies a record in a draft. It is either a TempID, for records
// the server has never seen, or a ServerID.
type Ident interface {
	// Saved reports whether the record has been persisted.
	Saved() bool
	String() string
	ident()
}

// TempID is a client generated placeholder identifier.
type TempID string

// ServerID is the identifier assigned by the server.
type ServerID int64

// NewTempID mints a fresh TempID.
func NewTempID() TempID {
	return TempID(tempPrefix + uuid.NewString())
}

func (TempID) Saved() bool      { return false }
func (t TempID) String() string { return string(t) }
func (TempID) ident()           {}

func (ServerID) Saved() bool      { return true }
func (s ServerID) String() string { return strconv.FormatInt(int64(s), 10) }
func (ServerID) ident()           {}

// AsServerID returns the server id carried by id, if any.
func AsServerID(id Ident) (ServerID, bool) {
	sid, ok := id.(ServerID)
	return sid, ok
}

// IsTempID reports whether s looks like an identifier minted by NewTempID.
func IsTempID(s string) bool {
	return strings.HasPrefix(s, tempPrefix)
}
