package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gig-marketplace/internal/domain"
)

// memStore is an in-memory stand-in for the MySQL gateway. Transactions take
// the store lock for their whole body, so concurrent hire attempts serialize
// the way competing database transactions would, and the conditional updates
// answer matched/not-matched against the state the previous transaction left.
type memStore struct {
	mu    sync.Mutex
	gigs  map[string]*domain.Gig
	bids  map[string]*domain.Bid
	users map[string]*domain.User
}

func newMemStore() *memStore {
	return &memStore{
		gigs:  make(map[string]*domain.Gig),
		bids:  make(map[string]*domain.Bid),
		users: make(map[string]*domain.User),
	}
}

func (s *memStore) putGig(gig domain.Gig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gigs[gig.ID] = &gig
}

func (s *memStore) putBid(bid domain.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[bid.ID] = &bid
}

func (s *memStore) gigStatus(gigID string) domain.GigStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gigs[gigID].Status
}

func (s *memStore) bidStatus(bidID string) domain.BidStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bids[bidID].Status
}

// GigRepository

func (s *memStore) CreateGig(ctx context.Context, gig *domain.Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *gig
	s.gigs[gig.ID] = &copied
	return nil
}

func (s *memStore) GetGig(ctx context.Context, gigID string) (*domain.Gig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gig, ok := s.gigs[gigID]
	if !ok {
		return nil, domain.NotFound("Gig not found")
	}
	copied := *gig
	return &copied, nil
}

func (s *memStore) ListGigs(ctx context.Context) ([]*domain.GigSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gigs []*domain.GigSummary
	for _, gig := range s.gigs {
		summary := &domain.GigSummary{Gig: *gig}
		for _, bid := range s.bids {
			if bid.GigID == gig.ID {
				summary.BidCount++
			}
		}
		gigs = append(gigs, summary)
	}
	return gigs, nil
}

func (s *memStore) UpdateGig(ctx context.Context, gig *domain.Gig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *gig
	s.gigs[gig.ID] = &copied
	return nil
}

func (s *memStore) DeleteGig(ctx context.Context, gigID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gigs, gigID)
	return nil
}

// BidRepository

func (s *memStore) CreateBid(ctx context.Context, bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *bid
	s.bids[bid.ID] = &copied
	return nil
}

func (s *memStore) GetBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, domain.NotFound("Bid not found")
	}
	copied := *bid
	return &copied, nil
}

func (s *memStore) ListBidsForGig(ctx context.Context, gigID string) ([]*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bids []*domain.Bid
	for _, bid := range s.bids {
		if bid.GigID == gigID {
			copied := *bid
			bids = append(bids, &copied)
		}
	}
	return bids, nil
}

func (s *memStore) RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejectSiblingsLocked(gigID, keepBidID), nil
}

func (s *memStore) rejectSiblingsLocked(gigID, keepBidID string) int64 {
	var rejected int64
	for _, bid := range s.bids {
		if bid.GigID == gigID && bid.ID != keepBidID && bid.Status != domain.BidRejected {
			bid.Status = domain.BidRejected
			rejected++
		}
	}
	return rejected
}

func (s *memStore) ListUnsettledAssignments(ctx context.Context) ([]domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var assignments []domain.Assignment
	for _, gig := range s.gigs {
		if gig.Status != domain.GigAssigned {
			continue
		}
		var hired string
		pending := false
		for _, bid := range s.bids {
			if bid.GigID != gig.ID {
				continue
			}
			switch bid.Status {
			case domain.BidHired:
				hired = bid.ID
			case domain.BidPending:
				pending = true
			}
		}
		if hired != "" && pending {
			assignments = append(assignments, domain.Assignment{GigID: gig.ID, HiredBidID: hired})
		}
	}
	return assignments, nil
}

// UserRepository

func (s *memStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("Error 1062: Duplicate entry '%s' for key 'users.email'", user.Email)
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NotFound("User not found")
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.NotFound("User not found")
}

// TxRunner

func (s *memStore) RunTransaction(ctx context.Context, fn func(tx domain.HireTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gigSnapshot := snapshotGigs(s.gigs)
	bidSnapshot := snapshotBids(s.bids)

	if err := fn(&memTx{store: s}); err != nil {
		s.gigs = gigSnapshot
		s.bids = bidSnapshot
		return err
	}
	return nil
}

func snapshotGigs(gigs map[string]*domain.Gig) map[string]*domain.Gig {
	out := make(map[string]*domain.Gig, len(gigs))
	for id, gig := range gigs {
		copied := *gig
		out[id] = &copied
	}
	return out
}

func snapshotBids(bids map[string]*domain.Bid) map[string]*domain.Bid {
	out := make(map[string]*domain.Bid, len(bids))
	for id, bid := range bids {
		copied := *bid
		out[id] = &copied
	}
	return out
}

// memTx operates with the store lock already held by RunTransaction.
type memTx struct {
	store *memStore
}

func (t *memTx) GetGig(ctx context.Context, gigID string) (*domain.Gig, error) {
	gig, ok := t.store.gigs[gigID]
	if !ok {
		return nil, domain.NotFound("Gig not found")
	}
	copied := *gig
	return &copied, nil
}

func (t *memTx) GetBidForGig(ctx context.Context, bidID, gigID string) (*domain.Bid, error) {
	bid, ok := t.store.bids[bidID]
	if !ok || bid.GigID != gigID {
		return nil, domain.NotFound("Bid not found")
	}
	copied := *bid
	return &copied, nil
}

func (t *memTx) AssignGig(ctx context.Context, gigID, ownerID string) (bool, error) {
	gig, ok := t.store.gigs[gigID]
	if !ok || gig.Status != domain.GigOpen || gig.OwnerID != ownerID {
		return false, nil
	}
	gig.Status = domain.GigAssigned
	return true, nil
}

func (t *memTx) HireBid(ctx context.Context, bidID, gigID string) (bool, error) {
	bid, ok := t.store.bids[bidID]
	if !ok || bid.GigID != gigID || bid.Status != domain.BidPending {
		return false, nil
	}
	bid.Status = domain.BidHired
	return true, nil
}

func (t *memTx) RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error) {
	return t.store.rejectSiblingsLocked(gigID, keepBidID), nil
}

// memBus records every publish.
type memBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Room    string
	Except  string
	Event   string
	Payload interface{}
}

func (b *memBus) Publish(room, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Room: room, Event: event, Payload: payload})
	return nil
}

func (b *memBus) PublishExcept(room, exceptRoom, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Room: room, Except: exceptRoom, Event: event, Payload: payload})
	return nil
}

func (b *memBus) eventsIn(room string) []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []publishedEvent
	for _, e := range b.events {
		if e.Room == room {
			out = append(out, e)
		}
	}
	return out
}

func (b *memBus) all() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedEvent(nil), b.events...)
}

// failingBidRepo wraps memStore to fail bid inserts.
type failingBidRepo struct {
	*memStore
}

func (r *failingBidRepo) CreateBid(ctx context.Context, bid *domain.Bid) error {
	return errors.New("connection refused")
}
