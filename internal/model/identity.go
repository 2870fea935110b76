package model

// Identity is either a known user or an anonymous caller.  The zero
// value is anonymous.
type Identity struct {
    userID uint64
    known  bool
}

// Known returns the identity of the user with the given id.
func Known(userID uint64) Identity { return Identity{userID: userID, known: true} }

// Anonymous returns the identity of an unauthenticated caller.
func Anonymous() Identity { return Identity{} }

// UserID returns the user id and true for a known identity.
func (i Identity) UserID() (uint64, bool) { return i.userID, i.known }

// IsAnonymous reports whether no user is attached.
func (i Identity) IsAnonymous() bool { return !i.known }

// Caller is a resolved, authenticated user as seen by the core.  The
// administrator flag is consumed for authorization only.
type Caller struct {
    ID       uint64
    Username string
    IsAdmin  bool
}

// Identity returns the caller as a known identity.
func (c Caller) Identity() Identity { return Known(c.ID) }

// CanActFor reports whether the caller may act on a resource owned by
// ownerID: either it is theirs or they are an administrator.
func (c Caller) CanActFor(ownerID uint64) bool { return c.IsAdmin || c.ID == ownerID }
