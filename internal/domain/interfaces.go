package domain

import (
	"context"
)

// Repository interfaces
type GigRepository interface {
	CreateGig(ctx context.Context, gig *Gig) error
	GetGig(ctx context.Context, gigID string) (*Gig, error)
	ListGigs(ctx context.Context) ([]*GigSummary, error)
	UpdateGig(ctx context.Context, gig *Gig) error
	DeleteGig(ctx context.Context, gigID string) error
}

type BidRepository interface {
	CreateBid(ctx context.Context, bid *Bid) error
	GetBid(ctx context.Context, bidID string) (*Bid, error)
	ListBidsForGig(ctx context.Context, gigID string) ([]*Bid, error)
	RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error)
	ListUnsettledAssignments(ctx context.Context) ([]Assignment, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// HireTx is the transaction-scoped view of storage used by the hire flow.
// AssignGig and HireBid are conditional updates: they apply only when the row
// is still in the expected prior state and report whether any row matched.
// That matched-or-not answer is the race guard; callers must not substitute a
// read followed by a plain write.
type HireTx interface {
	GetGig(ctx context.Context, gigID string) (*Gig, error)
	GetBidForGig(ctx context.Context, bidID, gigID string) (*Bid, error)
	AssignGig(ctx context.Context, gigID, ownerID string) (bool, error)
	HireBid(ctx context.Context, bidID, gigID string) (bool, error)
	RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error)
}

// TxRunner runs fn inside a single transaction. A non-nil error from fn rolls
// everything back.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(tx HireTx) error) error
}

// Event interfaces
type EventBus interface {
	Publish(room, event string, payload interface{}) error
	// PublishExcept delivers to room, skipping connections that are members
	// of exceptRoom.
	PublishExcept(room, exceptRoom, event string, payload interface{}) error
}

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
}

// Connection is one live client connection as seen by the registry.
type Connection interface {
	Send(event string, payload interface{}) error
	Close() error
	ID() string
}

// RoomRegistry tracks which connections belong to which rooms. Join and Leave
// are idempotent; Disconnect removes the connection from every room.
type RoomRegistry interface {
	Join(conn Connection, room string)
	Leave(conn Connection, room string)
	Disconnect(conn Connection)
}
