package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Resolve turns a bearer token into the identity of a user that still
// exists. Every token problem and a vanished user come back as
// common.ErrorUnauthorized; the specific reason is only logged.
func (s *UserService) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Warn(ctx, "token rejected", "reason", err.Error())
		return nil, common.ErrorUnauthorized
	}

	var user *models.User
	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(conn).GetUserByID(ctx, claims.UserID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "token user no longer exists", "user_id", claims.UserID)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "user_id", claims.UserID, "error", err)
		return nil, common.ErrorInternal
	}

	return user.Identity(), nil
}
