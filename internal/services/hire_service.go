package services

import (
	"context"
	"fmt"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
)

// HireService owns the open→assigned transition. All of its preconditions and
// writes run inside one storage transaction; it holds no locks of its own and
// relies entirely on the conditional-update guards to decide races.
type HireService struct {
	txRunner domain.TxRunner
	bus      domain.EventBus
	log      logger.Logger
}

func NewHireService(txRunner domain.TxRunner, bus domain.EventBus, log logger.Logger) *HireService {
	return &HireService{
		txRunner: txRunner,
		bus:      bus,
		log:      log,
	}
}

// Hire assigns the gig to the bid's freelancer and rejects every competing
// bid. Exactly one of any number of concurrent attempts on the same gig can
// succeed; the rest fail with a Conflict and leave no trace.
func (s *HireService) Hire(ctx context.Context, gigID, bidID, requesterID string) (*domain.Bid, error) {
	var gig *domain.Gig
	var bid *domain.Bid

	err := s.txRunner.RunTransaction(ctx, func(tx domain.HireTx) error {
		var err error

		gig, err = tx.GetGig(ctx, gigID)
		if err != nil {
			return gigTxErr(err)
		}
		if gig.OwnerID != requesterID {
			return domain.Forbidden("You are not the owner of this gig")
		}

		bid, err = tx.GetBidForGig(ctx, bidID, gigID)
		if err != nil {
			return bidTxErr(err)
		}

		matched, err := tx.AssignGig(ctx, gigID, requesterID)
		if err != nil {
			return domain.Internal("failed to assign gig", err)
		}
		if !matched {
			return domain.Conflict("Gig is already assigned")
		}

		matched, err = tx.HireBid(ctx, bidID, gigID)
		if err != nil {
			return domain.Internal("failed to hire bid", err)
		}
		if !matched {
			return domain.Conflict("Bid is no longer available for hiring")
		}

		if _, err := tx.RejectSiblings(ctx, gigID, bidID); err != nil {
			return domain.Internal("failed to reject competing bids", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	gig.Status = domain.GigAssigned
	bid.Status = domain.BidHired

	s.notifyHired(gig, bid)

	s.log.Info("Bid hired", "gig_id", gig.ID, "bid_id", bid.ID, "freelancer_id", bid.FreelancerID)
	return bid, nil
}

// notifyHired runs after the commit; a lost notification never unwinds the
// hire, so failures are only logged.
func (s *HireService) notifyHired(gig *domain.Gig, bid *domain.Bid) {
	event := domain.FreelancerHiredEvent{
		Message:  fmt.Sprintf("You have been hired for %s!", gig.Title),
		GigID:    gig.ID,
		GigTitle: gig.Title,
		BidID:    bid.ID,
	}

	if err := s.bus.Publish(domain.UserRoom(bid.FreelancerID), domain.EventFreelancerHired, event); err != nil {
		s.log.Error("Failed to publish hire notification",
			"gig_id", gig.ID, "bid_id", bid.ID, "error", err)
	}
}

func gigTxErr(err error) error {
	if domain.KindOf(err) == domain.KindNotFound {
		return err
	}
	return domain.Internal("failed to load gig", err)
}

func bidTxErr(err error) error {
	if domain.KindOf(err) == domain.KindNotFound {
		return err
	}
	return domain.Internal("failed to load bid", err)
}
