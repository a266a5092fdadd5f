// Package services contains server-side business logic. UserService handles
// registration, credential checks, access token issuance and resolution of
// bearer tokens back to a trusted identity.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// UserService holds no per-request state; every operation checks its own
// connection or transaction out of db and returns it before completing.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	hasher                      auth.PasswordHasher
	tokens                      *auth.TokenService
	logger                      logging.Logger
	accessTokenValidityDuration time.Duration
	// compared against when the username is unknown, so both failure paths
	// pay for one hash verification
	dummyHash string
}

// NewUserService constructs a UserService using repositories and server config.
// It fails if hasher cannot produce the hash used for unknown usernames.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens *auth.TokenService, cfg *config.Config, logger logging.Logger) (*UserService, error) {

	dummy, err := hasher.Hash("gophauth-absent-user")
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}

	return &UserService{
		db:                          db,
		repomanager:                 m,
		hasher:                      hasher,
		tokens:                      tokens,
		logger:                      logger.With("module", "user_service"),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		dummyHash:                   dummy,
	}, nil
}

// Register creates a user. The username check and insert share one
// transaction; the unique constraint catches concurrent registrations that
// slip past the check. The returned user has HashedPassword cleared.
func (s *UserService) Register(ctx context.Context, in models.NewUser) (*models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, common.ErrInvalidRole
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		UserName:       in.UserName,
		HashedPassword: hash,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           role,
		PhoneNumber:    in.PhoneNumber,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		_, err := repo.GetUserByLogin(ctx, user.UserName)
		if err == nil {
			return common.ErrUsernameTaken
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		s.logger.Error(ctx, "registration failed", "error", err)
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.UserName)

	user.HashedPassword = ""
	return user, nil
}

// Authenticate checks a username/password pair. An unknown username and a
// wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*models.User, error) {
	var user *models.User
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(conn).GetUserByLogin(ctx, userName)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates the credentials and mints an access token valid for
// the configured access token lifetime. No token is issued on failure.
func (s *UserService) Login(ctx context.Context, userName, password string) (string, error) {
	user, err := s.Authenticate(ctx, userName, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.logger.Warn(ctx, "login rejected", "username", userName)
		}
		return "", err
	}

	token, err := s.tokens.Issue(auth.ClaimsFor(user), s.accessTokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "login", "user_id", user.ID)
	return token, nil
}

// Delete removes a user. Tokens already issued to that user stop resolving
// on their next use.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		return s.repomanager.Users(conn).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.logger.Info(ctx, "user deleted", "user_id", id)
	return nil
}
