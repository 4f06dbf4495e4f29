// Package services contains server-side business logic. This file implements
// UserService: registration with uniqueness enforcement, credential
// verification with JWT issuance, token refresh, and account lifecycle
// transitions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/withgossing/bank-app/internal/common"
	"github.com/withgossing/bank-app/internal/dbx"
	"github.com/withgossing/bank-app/internal/logging"
	"github.com/withgossing/bank-app/internal/server/auth"
	"github.com/withgossing/bank-app/internal/server/config"
	"github.com/withgossing/bank-app/internal/server/events"
	"github.com/withgossing/bank-app/internal/server/models"
	"github.com/withgossing/bank-app/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterRequest carries the registration input. The boundary layer owns
// format and length validation; the service only guards against blank
// identifiers reaching the hash and storage steps.
type RegisterRequest struct {
	Username    string
	Password    string
	Email       string
	FullName    string
	PhoneNumber string
}

// UpdateRequest carries a partial account update. Nil fields are left
// untouched, not cleared.
type UpdateRequest struct {
	Email       *string
	FullName    *string
	PhoneNumber *string
}

// UserService provides the identity operations:
//   - Register: create accounts, enforcing username/email uniqueness
//   - Login: verify credentials and mint an access/refresh token pair
//   - Refresh: exchange a valid refresh token for a new pair
//   - Update / Deactivate: account lifecycle transitions
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	publisher                    events.Publisher
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	dummyHash                    string
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, p events.Publisher, l logging.Logger, cfg *config.Config) *UserService {
	// Hashed once so that a login against an unknown username costs the same
	// bcrypt work as a login against a real one.
	dummyHash, err := auth.HashPassword("dummy-password", cfg.BcryptCost)
	if err != nil {
		dummyHash = ""
	}

	return &UserService{
		db:                           db,
		repomanager:                  m,
		publisher:                    p,
		logger:                       l.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
		dummyHash:                    dummyHash,
	}
}

// Register creates a new account. Username and email are pre-checked before
// any hash work, but the insert-time unique violation remains the
// authoritative signal: two concurrent registrations for the same identifier
// both pass the pre-check and only one insert wins.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		s.logger.Error(ctx, "username existence check failed", "error", err)
		return nil, common.ErrorStorageUnavailable
	}
	if taken {
		return nil, common.NewDuplicateError("username")
	}

	taken, err = repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error(ctx, "email existence check failed", "error", err)
		return nil, common.ErrorStorageUnavailable
	}
	if taken {
		return nil, common.NewDuplicateError("email")
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "password hash failed", "error", err)
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		Role:         models.RoleUser,
		Active:       true,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		// Lost the pre-check race: surface the same duplicate error, not a
		// raw storage failure.
		if _, ok := common.IsDuplicate(err); ok {
			return nil, err
		}
		s.logger.Error(ctx, "user insert failed", "error", err)
		return nil, common.ErrorStorageUnavailable
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	s.notify(ctx, events.EventTypeAccountCreated, user)

	return user, nil
}

// Login verifies the credentials and, on success, returns a token pair keyed
// on the account's immutable id together with the account itself. Unknown
// username, wrong password, and deactivated account all surface as the same
// bad-credentials error.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, *models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn the same bcrypt work as a real verification so the miss
			// is not distinguishable by timing.
			auth.VerifyPassword(password, s.dummyHash)
			return nil, nil, common.ErrorBadCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, nil, common.ErrorStorageUnavailable
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrorBadCredentials
	}

	if !user.Active {
		return nil, nil, common.ErrorBadCredentials
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err)
		return nil, nil, common.ErrorInternal
	}

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The account
// is re-loaded and must still exist and be active.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseTokenOfKind(refreshToken, s.jwtSecret, auth.TokenKindRefresh)
	if err != nil {
		s.logger.Warn(ctx, "refresh token rejected", "reason", err)
		return nil, common.ErrorInvalidToken
	}

	user, err := s.repomanager.Users(s.db).FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidToken
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorStorageUnavailable
	}

	if !user.Active {
		return nil, common.ErrorBadCredentials
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		s.logger.Error(ctx, "token generation failed", "error", err)
		return nil, common.ErrorInternal
	}

	return pair, nil
}

// VerifyAccessToken checks signature, expiry, and kind of an access token and
// returns its claims. The classified error is for logging; callers must
// collapse it to a generic invalid-token response.
func (s *UserService) VerifyAccessToken(tokenString string) (*auth.Claims, error) {
	return auth.ParseTokenOfKind(tokenString, s.jwtSecret, auth.TokenKindAccess)
}

// TokenValidity returns the configured lifetime for the given token kind.
// Pure configuration lookup, used to populate login-response metadata.
func (s *UserService) TokenValidity(kind auth.TokenKind) time.Duration {
	if kind == auth.TokenKindRefresh {
		return s.refreshTokenValidityDuration
	}
	return s.accessTokenValidityDuration
}

// GetByID loads one account by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, func(ctx context.Context) (*models.User, error) {
		return s.repomanager.Users(s.db).FindByID(ctx, id)
	})
}

// Update applies a partial update to the account with the given id on behalf
// of caller. Non-admin callers may only update their own account. An email
// change is re-checked against the uniqueness invariant inside the same
// transaction as the write.
func (s *UserService) Update(ctx context.Context, caller *models.User, id string, req UpdateRequest) (*models.User, error) {
	if caller == nil || (caller.Role != models.RoleAdmin && caller.ID != id) {
		return nil, common.ErrorForbidden
	}

	var updated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Email != nil && *req.Email != user.Email {
			taken, err := repo.ExistsByEmail(ctx, *req.Email)
			if err != nil {
				return err
			}
			if taken {
				return common.NewDuplicateError("email")
			}
			user.Email = *req.Email
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.PhoneNumber != nil {
			user.PhoneNumber = *req.PhoneNumber
		}

		updated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, s.mutationError(ctx, err)
	}

	s.logger.Info(ctx, "user updated", "user_id", updated.ID)
	s.notify(ctx, events.EventTypeAccountUpdated, updated)

	return updated, nil
}

// Deactivate soft-deletes the account: active is set to false and the record
// stays, its username and email remaining reserved. There is no reactivation
// path. Only admins may deactivate.
func (s *UserService) Deactivate(ctx context.Context, caller *models.User, id string) error {
	if caller == nil || caller.Role != models.RoleAdmin {
		return common.ErrorForbidden
	}

	var deactivated *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		user.Active = false
		deactivated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return s.mutationError(ctx, err)
	}

	s.logger.Info(ctx, "user deactivated", "user_id", deactivated.ID)
	s.notify(ctx, events.EventTypeAccountDeactivated, deactivated)

	return nil
}

// --- helpers below ---

func (s *UserService) generateTokenPair(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, string(user.Role), auth.TokenKindAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateToken(user.ID, string(user.Role), auth.TokenKindRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) findUser(ctx context.Context, find func(context.Context) (*models.User, error)) (*models.User, error) {
	user, err := find(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorStorageUnavailable
	}
	return user, nil
}

func (s *UserService) mutationError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	if _, ok := common.IsDuplicate(err); ok {
		return err
	}
	s.logger.Error(ctx, "user mutation failed", "error", err)
	return common.ErrorStorageUnavailable
}

// notify emits a best-effort account event. The write already committed, so
// delivery failures are logged and swallowed, and a canceled request context
// does not abort the attempt.
func (s *UserService) notify(ctx context.Context, eventType events.EventType, user *models.User) {
	ctx = context.WithoutCancel(ctx)
	event := events.NewEvent(eventType, user)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "event publish failed", "event_type", eventType, "user_id", user.ID, "error", err)
	}
}
