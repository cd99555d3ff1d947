package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gig-marketplace/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id            VARCHAR(64)  PRIMARY KEY,
        name          VARCHAR(255) NOT NULL,
        email         VARCHAR(255) NOT NULL UNIQUE,
        password_hash VARCHAR(255) NOT NULL,
        created_at    DATETIME     NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS gigs (
        id          VARCHAR(64)  PRIMARY KEY,
        owner_id    VARCHAR(64)  NOT NULL,
        title       VARCHAR(255) NOT NULL,
        description TEXT         NOT NULL,
        budget      DOUBLE       NOT NULL,
        status      VARCHAR(16)  NOT NULL,
        created_at  DATETIME     NOT NULL,
        updated_at  DATETIME     NOT NULL,
        CONSTRAINT fk_gigs_owner FOREIGN KEY (owner_id) REFERENCES users (id)
    )`,
	`CREATE TABLE IF NOT EXISTS bids (
        id            VARCHAR(64) PRIMARY KEY,
        gig_id        VARCHAR(64) NOT NULL,
        freelancer_id VARCHAR(64) NOT NULL,
        message       TEXT        NOT NULL,
        price         DOUBLE      NOT NULL,
        status        VARCHAR(16) NOT NULL,
        created_at    DATETIME    NOT NULL,
        updated_at    DATETIME    NOT NULL,
        CONSTRAINT fk_bids_gig FOREIGN KEY (gig_id) REFERENCES gigs (id) ON DELETE CASCADE,
        CONSTRAINT fk_bids_freelancer FOREIGN KEY (freelancer_id) REFERENCES users (id),
        INDEX idx_bids_gig_id (gig_id)
    )`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// MySQLTxRunner implements domain.TxRunner over a database handle. The
// transaction-scoped operations it hands to fn carry the conditional-update
// guards the hire flow depends on.
type MySQLTxRunner struct {
	db *sql.DB
}

func NewMySQLTxRunner(db *sql.DB) *MySQLTxRunner {
	return &MySQLTxRunner{db: db}
}

func (r *MySQLTxRunner) RunTransaction(ctx context.Context, fn func(tx domain.HireTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&hireTx{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

type hireTx struct {
	tx *sql.Tx
}

func (t *hireTx) GetGig(ctx context.Context, gigID string) (*domain.Gig, error) {
	query := `
        SELECT id, owner_id, title, description, budget, status, created_at, updated_at
        FROM gigs WHERE id = ?
    `
	gig, err := scanGig(t.tx.QueryRowContext(ctx, query, gigID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Gig not found")
	}
	return gig, err
}

func (t *hireTx) GetBidForGig(ctx context.Context, bidID, gigID string) (*domain.Bid, error) {
	query := `
        SELECT id, gig_id, freelancer_id, message, price, status, created_at, updated_at
        FROM bids WHERE id = ? AND gig_id = ?
    `
	bid, err := scanBid(t.tx.QueryRowContext(ctx, query, bidID, gigID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("Bid not found")
	}
	return bid, err
}

// AssignGig flips the gig to assigned only while it is still open and owned by
// ownerID. A zero match means a competing hire won the race.
func (t *hireTx) AssignGig(ctx context.Context, gigID, ownerID string) (bool, error) {
	query := `
        UPDATE gigs SET status = ?, updated_at = ?
        WHERE id = ? AND status = ? AND owner_id = ?
    `
	result, err := t.tx.ExecContext(ctx, query,
		string(domain.GigAssigned), time.Now(), gigID, string(domain.GigOpen), ownerID)
	if err != nil {
		return false, err
	}

	matched, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

// HireBid flips the bid to hired only while it is still pending.
func (t *hireTx) HireBid(ctx context.Context, bidID, gigID string) (bool, error) {
	query := `
        UPDATE bids SET status = ?, updated_at = ?
        WHERE id = ? AND gig_id = ? AND status = ?
    `
	result, err := t.tx.ExecContext(ctx, query,
		string(domain.BidHired), time.Now(), bidID, gigID, string(domain.BidPending))
	if err != nil {
		return false, err
	}

	matched, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (t *hireTx) RejectSiblings(ctx context.Context, gigID, keepBidID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx, rejectSiblingsQuery,
		string(domain.BidRejected), time.Now(), gigID, keepBidID, string(domain.BidRejected))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGig(row rowScanner) (*domain.Gig, error) {
	var gig domain.Gig
	var status string

	err := row.Scan(&gig.ID, &gig.OwnerID, &gig.Title, &gig.Description,
		&gig.Budget, &status, &gig.CreatedAt, &gig.UpdatedAt)
	if err != nil {
		return nil, err
	}

	gig.Status = domain.GigStatus(status)
	return &gig, nil
}

func scanBid(row rowScanner) (*domain.Bid, error) {
	var bid domain.Bid
	var status string

	err := row.Scan(&bid.ID, &bid.GigID, &bid.FreelancerID, &bid.Message,
		&bid.Price, &status, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		return nil, err
	}

	bid.Status = domain.BidStatus(status)
	return &bid, nil
}
