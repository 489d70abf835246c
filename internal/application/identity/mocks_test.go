package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var testNow = time.Now().Truncate(time.Second)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) FindActiveByRoles(ctx context.Context, roles ...identity.Role) ([]identity.User, error) {
	args := m.Called(ctx, roles)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type memoryAudits struct {
	mu      sync.Mutex
	entries []audit.Log
}

func (r *memoryAudits) Save(_ context.Context, l *audit.Log) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *l)
	return nil
}

func (r *memoryAudits) Search(context.Context, audit.Filter) ([]audit.Log, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *memoryAudits) CountByAction(context.Context, audit.Filter) (map[string]int64, error) {
	return nil, nil
}

func (r *memoryAudits) actions() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "letatchebois",
	})
}

func newUser(email string, role identity.Role, active bool) *identity.User {
	u, err := identity.NewUser(identity.UserParams{Email: email, Name: "Test " + string(role), Role: role, IsActive: active},
		"motdepasse1", testNow.Add(-24*time.Hour))
	if err != nil {
		panic(err)
	}
	return u
}

type testEnv struct {
	repo      *MockUserRepository
	audits    *memoryAudits
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
	auth      *AuthService
	users     *UserService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:      new(MockUserRepository),
		audits:    &memoryAudits{},
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt:       newTestJWT(),
	}
	env.auth = NewAuthService(env.repo, env.jwt, env.blacklist, env.audits, zap.NewNop())
	env.auth.SetClock(func() time.Time { return testNow })
	env.users = NewUserService(env.repo, env.blacklist, env.audits, 7*24*time.Hour, zap.NewNop())
	env.users.SetClock(func() time.Time { return testNow })
	return env
}
