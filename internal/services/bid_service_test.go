package services_test

import (
	"context"
	"testing"

	"gig-marketplace/internal/domain"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestCreateBidPublishesToGigRoom(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Title: "Build a website", Status: domain.GigOpen})
	bus := &memBus{}
	svc := services.NewBidService(store, store, bus, logger.NewNop())

	bid, err := svc.CreateBid(context.Background(), "g1", "f1", "I can do this", 150)
	require.NoError(t, err)
	require.NotEmpty(t, bid.ID)
	require.Equal(t, domain.BidPending, bid.Status)
	require.Equal(t, "f1", bid.FreelancerID)

	events := bus.eventsIn(domain.GigRoom("g1"))
	require.Len(t, events, 1)
	require.Equal(t, domain.EventNewBid, events[0].Event)

	payload, ok := events[0].Payload.(domain.NewBidEvent)
	require.True(t, ok)
	require.Equal(t, "g1", payload.GigID)
	require.Equal(t, bid.ID, payload.BidID)
}

func TestCreateBidMissingGig(t *testing.T) {
	store := newMemStore()
	bus := &memBus{}
	svc := services.NewBidService(store, store, bus, logger.NewNop())

	_, err := svc.CreateBid(context.Background(), "missing", "f1", "hello", 50)
	require.Error(t, err)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
	require.Empty(t, bus.all())
}

func TestCreateBidAcceptsAssignedGig(t *testing.T) {
	// Gig status is intentionally not checked on creation; a late bid lands
	// as pending and is left for the rejection sweep.
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigAssigned})
	bus := &memBus{}
	svc := services.NewBidService(store, store, bus, logger.NewNop())

	bid, err := svc.CreateBid(context.Background(), "g1", "f1", "late to the party", 80)
	require.NoError(t, err)
	require.Equal(t, domain.BidPending, bid.Status)
}

func TestCreateBidStorageFailure(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigOpen})
	bus := &memBus{}
	svc := services.NewBidService(&failingBidRepo{store}, store, bus, logger.NewNop())

	_, err := svc.CreateBid(context.Background(), "g1", "f1", "hello", 50)
	require.Error(t, err)
	require.Equal(t, domain.KindInternal, domain.KindOf(err))
	require.Equal(t, "something went wrong", domain.MessageOf(err))
	require.Empty(t, bus.all())
}

func TestListBidsForGig(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigOpen})
	store.putBid(domain.Bid{ID: "b1", GigID: "g1", FreelancerID: "f1", Status: domain.BidPending})
	store.putBid(domain.Bid{ID: "b2", GigID: "g1", FreelancerID: "f2", Status: domain.BidPending})
	store.putBid(domain.Bid{ID: "b3", GigID: "other", FreelancerID: "f3", Status: domain.BidPending})
	svc := services.NewBidService(store, store, &memBus{}, logger.NewNop())

	gig, bids, err := svc.ListBidsForGig(context.Background(), "g1")
	require.NoError(t, err)
	require.Equal(t, "g1", gig.ID)
	require.Len(t, bids, 2)

	_, _, err = svc.ListBidsForGig(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestRejectSiblingsIdempotent(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigAssigned})
	store.putBid(domain.Bid{ID: "b1", GigID: "g1", FreelancerID: "f1", Status: domain.BidHired})
	store.putBid(domain.Bid{ID: "b2", GigID: "g1", FreelancerID: "f2", Status: domain.BidPending})
	store.putBid(domain.Bid{ID: "b3", GigID: "g1", FreelancerID: "f3", Status: domain.BidPending})
	svc := services.NewBidService(store, store, &memBus{}, logger.NewNop())

	rejected, err := svc.RejectSiblings(context.Background(), "g1", "b1")
	require.NoError(t, err)
	require.EqualValues(t, 2, rejected)

	rejected, err = svc.RejectSiblings(context.Background(), "g1", "b1")
	require.NoError(t, err)
	require.EqualValues(t, 0, rejected)

	require.Equal(t, domain.BidHired, store.bidStatus("b1"))
	require.Equal(t, domain.BidRejected, store.bidStatus("b2"))
	require.Equal(t, domain.BidRejected, store.bidStatus("b3"))
}
