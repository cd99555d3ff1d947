package services

import (
	"context"
	"fmt"
	"time"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
	"gig-marketplace/pkg/utils"
)

type GigService struct {
	gigs domain.GigRepository
	bus  domain.EventBus
	log  logger.Logger
}

func NewGigService(gigs domain.GigRepository, bus domain.EventBus, log logger.Logger) *GigService {
	return &GigService{
		gigs: gigs,
		bus:  bus,
		log:  log,
	}
}

// CreateGig posts a new open gig and announces it to every connected client
// except the owner's own connections.
func (s *GigService) CreateGig(ctx context.Context, ownerID, title, description string, budget float64) (*domain.Gig, error) {
	now := time.Now()
	gig := &domain.Gig{
		ID:          utils.NewID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Budget:      budget,
		Status:      domain.GigOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.gigs.CreateGig(ctx, gig); err != nil {
		return nil, domain.Internal("failed to create gig", err)
	}

	s.notifyNewGig(gig)

	s.log.Info("Gig created", "gig_id", gig.ID, "owner_id", ownerID)
	return gig, nil
}

func (s *GigService) notifyNewGig(gig *domain.Gig) {
	event := domain.NewGigEvent{
		Message:  fmt.Sprintf("New gig created: %s", gig.Title),
		GigID:    gig.ID,
		GigTitle: gig.Title,
	}

	err := s.bus.PublishExcept(domain.BroadcastRoom, domain.UserRoom(gig.OwnerID),
		domain.EventNewGig, event)
	if err != nil {
		s.log.Error("Failed to publish gig notification", "gig_id", gig.ID, "error", err)
	}
}

func (s *GigService) ListGigs(ctx context.Context) ([]*domain.GigSummary, error) {
	gigs, err := s.gigs.ListGigs(ctx)
	if err != nil {
		return nil, domain.Internal("failed to list gigs", err)
	}
	return gigs, nil
}

func (s *GigService) GetGig(ctx context.Context, gigID string) (*domain.Gig, error) {
	gig, err := s.gigs.GetGig(ctx, gigID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, err
		}
		return nil, domain.Internal("failed to load gig", err)
	}
	return gig, nil
}

// UpdateGig edits title, description and budget. Only the owner may edit, and
// the status field is never writable through this path.
func (s *GigService) UpdateGig(ctx context.Context, gigID, requesterID, title, description string, budget float64) (*domain.Gig, error) {
	gig, err := s.GetGig(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.OwnerID != requesterID {
		return nil, domain.Forbidden("You are not the owner of this gig")
	}

	gig.Title = title
	gig.Description = description
	gig.Budget = budget
	gig.UpdatedAt = time.Now()

	if err := s.gigs.UpdateGig(ctx, gig); err != nil {
		return nil, domain.Internal("failed to update gig", err)
	}

	return gig, nil
}

func (s *GigService) DeleteGig(ctx context.Context, gigID, requesterID string) error {
	gig, err := s.GetGig(ctx, gigID)
	if err != nil {
		return err
	}
	if gig.OwnerID != requesterID {
		return domain.Forbidden("You are not the owner of this gig")
	}

	if err := s.gigs.DeleteGig(ctx, gigID); err != nil {
		return domain.Internal("failed to delete gig", err)
	}

	return nil
}
