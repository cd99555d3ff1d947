package services

import (
	"context"
	"strings"
	"time"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
	"gig-marketplace/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users     domain.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       logger.Logger
}

func NewUserService(users domain.UserRepository, jwtSecret string, tokenTTL time.Duration, log logger.Logger) *UserService {
	return &UserService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

func (s *UserService) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.Internal("failed to hash password", err)
	}

	user := &domain.User{
		ID:           utils.NewID(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if isDuplicateEntry(err) {
			return nil, domain.Conflict("User already exists")
		}
		return nil, domain.Internal("failed to create user", err)
	}

	s.log.Info("User created", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and issues a signed token carrying the user
// id as its subject.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, "", domain.Unauthenticated("User not found")
		}
		return nil, "", domain.Internal("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.Unauthenticated("Invalid password")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, "", domain.Internal("failed to sign token", err)
	}

	return user, token, nil
}

// VerifyToken resolves a token to its user, failing with Unauthenticated on
// any parse, signature, expiry or lookup problem.
func (s *UserService) VerifyToken(ctx context.Context, tokenString string) (*domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.Unauthenticated("Invalid token")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.Unauthenticated("Invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, domain.Unauthenticated("Invalid token")
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if err != nil {
		return nil, domain.Unauthenticated("User not found")
	}

	return user, nil
}

// MySQL duplicate-key errors surface as error 1062; matching on the message
// keeps the service decoupled from the driver's error type.
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
