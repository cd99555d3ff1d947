package services_test

import (
	"context"
	"testing"

	"gig-marketplace/internal/domain"
	"gig-marketplace/internal/services"
	"gig-marketplace/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestCreateGigBroadcastsExceptOwner(t *testing.T) {
	store := newMemStore()
	bus := &memBus{}
	svc := services.NewGigService(store, bus, logger.NewNop())

	gig, err := svc.CreateGig(context.Background(), "owner", "Build a website", "HTML and CSS", 500)
	require.NoError(t, err)
	require.Equal(t, domain.GigOpen, gig.Status)
	require.Equal(t, "owner", gig.OwnerID)

	events := bus.eventsIn(domain.BroadcastRoom)
	require.Len(t, events, 1)
	require.Equal(t, domain.EventNewGig, events[0].Event)
	require.Equal(t, domain.UserRoom("owner"), events[0].Except)

	payload, ok := events[0].Payload.(domain.NewGigEvent)
	require.True(t, ok)
	require.Equal(t, gig.ID, payload.GigID)
	require.Equal(t, "Build a website", payload.GigTitle)
}

func TestUpdateGigOwnerOnly(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Title: "Old", Status: domain.GigOpen})
	svc := services.NewGigService(store, &memBus{}, logger.NewNop())
	ctx := context.Background()

	_, err := svc.UpdateGig(ctx, "g1", "intruder", "New", "desc", 100)
	require.Error(t, err)
	require.Equal(t, domain.KindForbidden, domain.KindOf(err))

	updated, err := svc.UpdateGig(ctx, "g1", "owner", "New", "desc", 100)
	require.NoError(t, err)
	require.Equal(t, "New", updated.Title)

	stored, err := store.GetGig(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "New", stored.Title)
}

func TestDeleteGigOwnerOnly(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigOpen})
	svc := services.NewGigService(store, &memBus{}, logger.NewNop())
	ctx := context.Background()

	err := svc.DeleteGig(ctx, "g1", "intruder")
	require.Error(t, err)
	require.Equal(t, domain.KindForbidden, domain.KindOf(err))

	require.NoError(t, svc.DeleteGig(ctx, "g1", "owner"))

	_, err = svc.GetGig(ctx, "g1")
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestListGigsIncludesBidCounts(t *testing.T) {
	store := newMemStore()
	store.putGig(domain.Gig{ID: "g1", OwnerID: "owner", Status: domain.GigOpen})
	store.putBid(domain.Bid{ID: "b1", GigID: "g1", FreelancerID: "f1", Status: domain.BidPending})
	store.putBid(domain.Bid{ID: "b2", GigID: "g1", FreelancerID: "f2", Status: domain.BidPending})
	svc := services.NewGigService(store, &memBus{}, logger.NewNop())

	gigs, err := svc.ListGigs(context.Background())
	require.NoError(t, err)
	require.Len(t, gigs, 1)
	require.Equal(t, 2, gigs[0].BidCount)
}
