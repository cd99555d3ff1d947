package mysql

import (
	"context"
	"database/sql"
	"errors"

	"gig-marketplace/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (id, name, email, password_hash, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

func (r *MySQLUserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, created_at
        FROM users WHERE id = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *MySQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, created_at
        FROM users WHERE email = ?
    `
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *MySQLUserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
