package services

import (
	"context"
	"time"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
	"gig-marketplace/pkg/utils"
)

type BidService struct {
	bids domain.BidRepository
	gigs domain.GigRepository
	bus  domain.EventBus
	log  logger.Logger
}

func NewBidService(
	bids domain.BidRepository,
	gigs domain.GigRepository,
	bus domain.EventBus,
	log logger.Logger,
) *BidService {
	return &BidService{
		bids: bids,
		gigs: gigs,
		bus:  bus,
		log:  log,
	}
}

// CreateBid inserts a pending bid against the gig. The gig must exist, but
// its status is deliberately not checked: a late bid against an assigned gig
// is accepted and left for the rejection sweep.
func (s *BidService) CreateBid(ctx context.Context, gigID, freelancerID, message string, price float64) (*domain.Bid, error) {
	if _, err := s.gigs.GetGig(ctx, gigID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.Internal("failed to load gig", err)
	}

	now := time.Now()
	bid := &domain.Bid{
		ID:           utils.NewID(),
		GigID:        gigID,
		FreelancerID: freelancerID,
		Message:      message,
		Price:        price,
		Status:       domain.BidPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.bids.CreateBid(ctx, bid); err != nil {
		return nil, domain.Internal("failed to create bid", err)
	}

	s.notifyNewBid(bid)

	s.log.Info("Bid created", "bid_id", bid.ID, "gig_id", gigID, "freelancer_id", freelancerID)
	return bid, nil
}

func (s *BidService) notifyNewBid(bid *domain.Bid) {
	event := domain.NewBidEvent{
		GigID:   bid.GigID,
		BidID:   bid.ID,
		Message: "New bid placed on this gig",
	}

	if err := s.bus.Publish(domain.GigRoom(bid.GigID), domain.EventNewBid, event); err != nil {
		s.log.Error("Failed to publish bid notification", "bid_id", bid.ID, "error", err)
	}
}

// ListBidsForGig returns the gig and every bid against it. Visibility is not
// restricted to the owner here; callers that need that enforce it themselves.
func (s *BidService) ListBidsForGig(ctx context.Context, gigID string) (*domain.Gig, []*domain.Bid, error) {
	gig, err := s.gigs.GetGig(ctx, gigID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, nil, err
		}
		return nil, nil, domain.Internal("failed to load gig", err)
	}

	bids, err := s.bids.ListBidsForGig(ctx, gigID)
	if err != nil {
		return nil, nil, domain.Internal("failed to list bids", err)
	}

	return gig, bids, nil
}

// RejectSiblings bulk-rejects every bid for the gig other than keepBidID.
// It is idempotent; the hire transaction does the same work inline, and the
// reconciler replays it when a sweep was lost.
func (s *BidService) RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error) {
	rejected, err := s.bids.RejectSiblings(ctx, gigID, keepBidID)
	if err != nil {
		return 0, domain.Internal("failed to reject bids", err)
	}
	return rejected, nil
}
