package domain

import (
	"time"
)

type Gig struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget"`
	Status      GigStatus `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type GigStatus string

const (
	GigOpen     GigStatus = "open"
	GigAssigned GigStatus = "assigned"
)

// GigSummary is a gig together with its bid count, as returned by listings.
type GigSummary struct {
	Gig
	BidCount int `json:"bidCount"`
}

type Bid struct {
	ID           string    `json:"id"`
	GigID        string    `json:"gigId"`
	FreelancerID string    `json:"freelancerId"`
	Message      string    `json:"message"`
	Price        float64   `json:"price"`
	Status       BidStatus `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidHired    BidStatus = "hired"
	BidRejected BidStatus = "rejected"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Assignment pairs an assigned gig with its hired bid. The reconciler uses it
// to find gigs whose sibling bids were never rejected.
type Assignment struct {
	GigID      string
	HiredBidID string
}

// Rooms are named channels scoping notification delivery. A connection may be
// in any number of rooms at once; membership lives only as long as the
// connection does.
const BroadcastRoom = "all-users"

func UserRoom(userID string) string {
	return "user-" + userID
}

func GigRoom(gigID string) string {
	return "gig-" + gigID
}

// Event names pushed to connected clients.
const (
	EventNewBid          = "new-bid"
	EventFreelancerHired = "freelancer-hired"
	EventNewGig          = "new-gig"
)

type NewBidEvent struct {
	GigID   string `json:"gigId"`
	BidID   string `json:"bidId"`
	Message string `json:"message"`
}

type FreelancerHiredEvent struct {
	Message  string `json:"message"`
	GigID    string `json:"gigId"`
	GigTitle string `json:"gigTitle"`
	BidID    string `json:"bidId"`
}

type NewGigEvent struct {
	Message  string `json:"message"`
	GigID    string `json:"gigId"`
	GigTitle string `json:"gigTitle"`
}
