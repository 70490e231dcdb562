// Package auth is the identity and role component: it resolves credentials to
// users, mints and validates bearer tokens, and exposes the role predicates
// the catalog and order components authorize against.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

type Service struct {
	users  store.UserStore
	tokens *TokenManager
	google GoogleVerifier
	logger *zap.Logger
}

func NewService(users store.UserStore, tokens *TokenManager, google GoogleVerifier, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		google: google,
		logger: logger,
	}
}

// Session is the response to every successful authentication flow.
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates a customer account. The role is always customer;
// escalation only happens through shop admin membership or a superadmin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", errs.ErrInvalidInput)
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      models.RoleCustomer,
		Shops:     []string{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.session(user)
}

// PasswordLogin authenticates with the password grant. Unknown emails, wrong
// passwords and federated-only accounts all collapse to ErrUnauthenticated.
func (s *Service) PasswordLogin(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("incorrect email or password: %w", errs.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || !verifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("incorrect email or password: %w", errs.ErrUnauthenticated)
	}
	return s.session(user)
}

// GoogleLogin exchanges a verified Google ID token for a session, creating a
// customer account with no local credential on first sight.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (*Session, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid google token: %w", errs.ErrUnauthenticated)
	}

	email := normalizeEmail(identity.Email)
	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		now := time.Now().UTC()
		user = &models.User{
			ID:         uuid.NewString(),
			Email:      email,
			FirstName:  identity.GivenName,
			LastName:   identity.FamilyName,
			ProfilePic: identity.Picture,
			Role:       models.RoleCustomer,
			Shops:      []string{},
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.users.Insert(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user created from google identity", zap.String("user_id", user.ID))
	} else if err != nil {
		return nil, err
	}

	return s.session(user)
}

// Authenticate resolves a bearer token to the live user record. Role and
// active flag come from the store, not the token, so changes take effect
// immediately.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*models.User, error) {
	email, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.ByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("unknown subject: %w", errs.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("inactive user: %w", errs.ErrForbidden)
	}
	return user, nil
}

// SetRole changes a user's global role. Superadmin only.
func (s *Service) SetRole(ctx context.Context, actor *models.User, userID string, role models.Role) (*models.User, error) {
	if !actor.IsSuperadmin() {
		return nil, fmt.Errorf("role management requires superadmin: %w", errs.ErrForbidden)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q: %w", role, errs.ErrConflict)
	}
	if _, err := s.users.ByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return nil, err
	}
	s.logger.Info("user role updated",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.ID))
	return s.users.ByID(ctx, userID)
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsSuperadmin is the global-role predicate.
func IsSuperadmin(u *models.User) bool {
	return u.IsSuperadmin()
}

// CanManageShop reports whether u may mutate the given shop: superadmins
// always, shop admins only with membership in the shop's admin set.
func CanManageShop(u *models.User, shop *models.Shop) bool {
	if u.IsSuperadmin() {
		return true
	}
	return u.Role.AtLeastShopAdmin() && shop.HasAdmin(u.ID)
}
