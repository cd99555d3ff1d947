package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gig-marketplace/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// rejectSiblingsQuery is shared with the hire transaction; the sweep skips
// rows that are already rejected so replays are no-ops.
const rejectSiblingsQuery = `
    UPDATE bids SET status = ?, updated_at = ?
    WHERE gig_id = ? AND id <> ? AND status <> ?
`

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

func (r *MySQLBidRepository) CreateBid(ctx context.Context, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, gig_id, freelancer_id, message, price, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		bid.ID, bid.GigID, bid.FreelancerID, bid.Message,
		bid.Price, string(bid.Status), bid.CreatedAt, bid.UpdatedAt)
	return err
}

func (r *MySQLBidRepository) GetBid(ctx context.Context, bidID string) (*domain.Bid, error) {
	query := `
        SELECT id, gig_id, freelancer_id, message, price, status, created_at, updated_at
        FROM bids WHERE id = ?
    `

	bid, err := scanBid(r.db.QueryRowContext(ctx, query, bidID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Bid not found")
	}
	if err != nil {
		return nil, err
	}
	return bid, nil
}

func (r *MySQLBidRepository) ListBidsForGig(ctx context.Context, gigID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, gig_id, freelancer_id, message, price, status, created_at, updated_at
        FROM bids WHERE gig_id = ?
        ORDER BY created_at ASC
    `

	rows, err := r.db.QueryContext(ctx, query, gigID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}

	return bids, rows.Err()
}

func (r *MySQLBidRepository) RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, rejectSiblingsQuery,
		string(domain.BidRejected), time.Now(), gigID, keepBidID, string(domain.BidRejected))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListUnsettledAssignments finds gigs that were assigned but still carry
// pending bids, so the reconciler can finish the rejection sweep.
func (r *MySQLBidRepository) ListUnsettledAssignments(ctx context.Context) ([]domain.Assignment, error) {
	query := `
        SELECT g.id, h.id
        FROM gigs g
        JOIN bids h ON h.gig_id = g.id AND h.status = ?
        WHERE g.status = ?
          AND EXISTS (SELECT 1 FROM bids p WHERE p.gig_id = g.id AND p.status = ?)
    `

	rows, err := r.db.QueryContext(ctx, query,
		string(domain.BidHired), string(domain.GigAssigned), string(domain.BidPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.GigID, &a.HiredBidID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
