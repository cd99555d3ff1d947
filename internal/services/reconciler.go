package services

import (
	"context"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AssignmentReconciler periodically finishes rejection sweeps that a hire
// left incomplete (a crash between commit and a later repair call, or manual
// data surgery). The sweep reuses the idempotent sibling rejection, so
// running it against a settled gig changes nothing.
type AssignmentReconciler struct {
	cron *cron.Cron
	bids domain.BidRepository
	spec string
	log  logger.Logger
}

func NewAssignmentReconciler(bids domain.BidRepository, spec string, log logger.Logger) *AssignmentReconciler {
	return &AssignmentReconciler{
		cron: cron.New(),
		bids: bids,
		spec: spec,
		log:  log,
	}
}

func (r *AssignmentReconciler) Start(ctx context.Context) error {
	r.log.Info("Starting assignment reconciler", "spec", r.spec)

	_, err := r.cron.AddFunc(r.spec, func() {
		r.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	return nil
}

func (r *AssignmentReconciler) Stop() error {
	r.log.Info("Stopping assignment reconciler")
	r.cron.Stop()
	return nil
}

// Sweep runs one pass. Exported so it can be triggered outside the schedule.
func (r *AssignmentReconciler) Sweep(ctx context.Context) {
	assignments, err := r.bids.ListUnsettledAssignments(ctx)
	if err != nil {
		r.log.Error("Failed to list unsettled assignments", "error", err)
		return
	}

	for _, a := range assignments {
		rejected, err := r.bids.RejectSiblings(ctx, a.GigID, a.HiredBidID)
		if err != nil {
			r.log.Error("Failed to reject stale bids", "gig_id", a.GigID, "error", err)
			continue
		}
		r.log.Info("Rejected stale bids", "gig_id", a.GigID, "count", rejected)
	}
}
