package models

import "fmt"

// IdentityKind distinguishes account-owned from guest-owned results
type IdentityKind string

const (
	IdentityKindAccount IdentityKind = "account"
	IdentityKindGuest   IdentityKind = "guest"
)

// Identity is the owner of a game result: either a registered account or a guest.
// The zero value is invalid; build one with AccountIdentity or GuestIdentity.
type Identity struct {
	kind IdentityKind
	id   string
}

// AccountIdentity returns an identity owned by a registered player
func AccountIdentity(playerID string) Identity {
	return Identity{kind: IdentityKindAccount, id: playerID}
}

// GuestIdentity returns an identity owned by a locally generated guest id
func GuestIdentity(guestID string) Identity {
	return Identity{kind: IdentityKindGuest, id: guestID}
}

// IdentityFromColumns rebuilds an identity from the user_id/guest_id column pair.
// Exactly one of the two must be set.
func IdentityFromColumns(userID, guestID *string) (Identity, error) {
	switch {
	case userID != nil && guestID == nil:
		return AccountIdentity(*userID), nil
	case userID == nil && guestID != nil:
		return GuestIdentity(*guestID), nil
	default:
		return Identity{}, fmt.Errorf("identity requires exactly one of user_id or guest_id")
	}
}

func (i Identity) ID() string { return i.id }

func (i Identity) IsAccount() bool { return i.kind == IdentityKindAccount }

func (i Identity) IsGuest() bool { return i.kind == IdentityKindGuest }

// Valid reports whether the identity was built through a constructor with a non-empty id
func (i Identity) Valid() bool {
	return (i.kind == IdentityKindAccount || i.kind == IdentityKindGuest) && i.id != ""
}

// Columns returns the nullable user_id and guest_id values for persistence
func (i Identity) Columns() (userID, guestID *string) {
	id := i.id
	if i.IsAccount() {
		return &id, nil
	}
	if i.IsGuest() {
		return nil, &id
	}
	return nil, nil
}

func (i Identity) String() string {
	if !i.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%s:%s", i.kind, i.id)
}
