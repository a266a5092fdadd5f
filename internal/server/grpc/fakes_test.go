package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type fakeUsers struct {
	registerOut *models.User
	registerErr error
	registered  models.NewUser

	loginOut string
	loginErr error

	// tokens maps accepted bearer tokens to identities
	tokens     map[string]*models.Identity
	resolveErr error

	deleted   []int64
	deleteErr error
}

func (f *fakeUsers) Register(_ context.Context, in models.NewUser) (*models.User, error) {
	f.registered = in
	return f.registerOut, f.registerErr
}

func (f *fakeUsers) Login(_ context.Context, _, _ string) (string, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUsers) Resolve(_ context.Context, token string) (*models.Identity, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	id, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return id, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestServer(us UserService) *GRPCServer {
	return NewGRPCServer("", logging.Nop(), us)
}

var alice = &models.Identity{ID: 1, UserName: "alice", FirstName: "Alice", LastName: "Liddell", Role: models.RoleUser}

var admin = &models.Identity{ID: 2, UserName: "root", FirstName: "Root", Role: models.RoleAdmin}
