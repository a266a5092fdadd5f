package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

// memUsers is an in-memory users.Repository keyed by id.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User

	failWith error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, existing := range m.byID {
		if existing.UserName == u.UserName {
			return nil, common.ErrUsernameTaken
		}
	}
	m.nextID++
	stored := *u
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	m.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memUsers) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, u := range m.byID {
		if u.UserName == userName {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (m *memUsers) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.byID, id)
	return nil
}

type fakeRepoManager struct {
	users *memUsers
	// handles records every DBTX a repository was bound to
	handles []dbx.DBTX
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	f.handles = append(f.handles, db)
	return f.users
}

func testConfig(secret string) *config.Config {
	return &config.Config{SecretKey: secret, SigningMethod: "HS256", AccessTokenValidityDuration: 10 * time.Minute}
}

// failingHasher refuses to hash anything.
type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errBoom }
func (failingHasher) Verify(string, string) bool { return false }

type fixture struct {
	svc   *UserService
	mock  sqlmock.Sqlmock
	repo  *memUsers
	rm    *fakeRepoManager
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	cfg := testConfig("test-secret")
	tokens, err := auth.NewTokenService(cfg, auth.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	repo := newMemUsers()
	rm := &fakeRepoManager{users: repo}
	svc, err := NewUserService(db, rm, auth.NewBcryptHasher(bcrypt.MinCost), tokens, cfg, logging.Nop())
	require.NoError(t, err)

	return &fixture{svc: svc, mock: mock, repo: repo, rm: rm, clock: &now}
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func (f *fixture) register(t *testing.T, name, password string) *models.User {
	t.Helper()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	u, err := f.svc.Register(context.Background(), models.NewUser{UserName: name, Password: password, FirstName: "F", LastName: "L"})
	require.NoError(t, err)
	return u
}
