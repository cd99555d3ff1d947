package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gig-marketplace/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLGigRepository struct {
	db *sql.DB
}

func NewMySQLGigRepository(db *sql.DB) *MySQLGigRepository {
	return &MySQLGigRepository{db: db}
}

func (r *MySQLGigRepository) CreateGig(ctx context.Context, gig *domain.Gig) error {
	query := `
        INSERT INTO gigs (id, owner_id, title, description, budget, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		gig.ID, gig.OwnerID, gig.Title, gig.Description,
		gig.Budget, string(gig.Status), gig.CreatedAt, gig.UpdatedAt)
	return err
}

func (r *MySQLGigRepository) GetGig(ctx context.Context, gigID string) (*domain.Gig, error) {
	query := `
        SELECT id, owner_id, title, description, budget, status, created_at, updated_at
        FROM gigs WHERE id = ?
    `

	gig, err := scanGig(r.db.QueryRowContext(ctx, query, gigID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Gig not found")
	}
	if err != nil {
		return nil, err
	}
	return gig, nil
}

func (r *MySQLGigRepository) ListGigs(ctx context.Context) ([]*domain.GigSummary, error) {
	query := `
        SELECT g.id, g.owner_id, g.title, g.description, g.budget, g.status,
               g.created_at, g.updated_at, COUNT(b.id)
        FROM gigs g
        LEFT JOIN bids b ON b.gig_id = g.id
        GROUP BY g.id, g.owner_id, g.title, g.description, g.budget, g.status,
                 g.created_at, g.updated_at
        ORDER BY g.created_at DESC
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gigs []*domain.GigSummary
	for rows.Next() {
		var gig domain.GigSummary
		var status string

		err := rows.Scan(&gig.ID, &gig.OwnerID, &gig.Title, &gig.Description,
			&gig.Budget, &status, &gig.CreatedAt, &gig.UpdatedAt, &gig.BidCount)
		if err != nil {
			return nil, err
		}

		gig.Status = domain.GigStatus(status)
		gigs = append(gigs, &gig)
	}

	return gigs, rows.Err()
}

func (r *MySQLGigRepository) UpdateGig(ctx context.Context, gig *domain.Gig) error {
	query := `
        UPDATE gigs SET title = ?, description = ?, budget = ?, updated_at = ?
        WHERE id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		gig.Title, gig.Description, gig.Budget, time.Now(), gig.ID)
	return err
}

func (r *MySQLGigRepository) DeleteGig(ctx context.Context, gigID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM gigs WHERE id = ?`, gigID)
	return err
}
