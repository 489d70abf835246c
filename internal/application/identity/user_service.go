package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appaudit "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/audit"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// UserService is the admin management of back office accounts
type UserService struct {
	users     identity.UserRepository
	blacklist auth.TokenBlacklist
	auditRepo audit.Repository
	logger    *zap.Logger
	now       func() time.Time
	// sessionTTL bounds how long a revocation must be remembered
	sessionTTL time.Duration
}

// NewUserService creates a new UserService
func NewUserService(
	users identity.UserRepository,
	blacklist auth.TokenBlacklist,
	auditRepo audit.Repository,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:      users,
		blacklist:  blacklist,
		auditRepo:  auditRepo,
		logger:     logger,
		now:        time.Now,
		sessionTTL: sessionTTL,
	}
}

// SetClock overrides the service clock
func (s *UserService) SetClock(now func() time.Time) {
	s.now = now
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, req UserListRequest) (*shared.Paginated[UserResponse], error) {
	f := req.filter()
	users, total, err := s.users.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(u)
	return &resp, nil
}

// Create registers a new account
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actor *uuid.UUID) (*UserResponse, error) {
	taken, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(req.Email), nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, identity.ErrEmailTaken
	}

	u, err := identity.NewUser(req.params(), req.Password, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionCreate, audit.EntityUser, &u.ID, fmt.Sprintf("Utilisateur %s créé (%s)", u.Email, u.Role)).
			Classify(audit.CategorySystem, audit.SeverityInfo).
			By(actor))
	resp := ToUserResponse(u)
	return &resp, nil
}

// Update edits an account. Demoting or disabling the last active admin is refused.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest, actor *uuid.UUID) (*UserResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := req.merge(u)

	if p.Email != u.Email {
		taken, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(p.Email), &u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, identity.ErrEmailTaken
		}
	}
	losesAdmin := u.Role.IsAdmin() && u.IsActive && (!p.Role.IsAdmin() || !p.IsActive)
	if losesAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	oldRole, wasActive := u.Role, u.IsActive
	if err := u.Update(p, s.now()); err != nil {
		return nil, err
	}
	if req.Password != nil {
		if err := u.SetPassword(*req.Password, s.now()); err != nil {
			return nil, err
		}
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	// role and password changes take effect on the next login
	if oldRole != u.Role || (wasActive && !u.IsActive) || req.Password != nil {
		if err := s.blacklist.RevokeUser(ctx, u.ID.String(), s.sessionTTL); err != nil {
			s.logger.Error("failed to revoke sessions", zap.String("user_id", u.ID.String()), zap.Error(err))
		}
	}

	entry := audit.New(audit.ActionUpdate, audit.EntityUser, &u.ID, "Utilisateur "+u.Email+" modifié").
		Classify(audit.CategorySystem, audit.SeverityInfo).
		By(actor)
	if oldRole != u.Role {
		entry.WithChange("role", oldRole, u.Role).Severity = audit.SeverityWarning
	}
	if wasActive != u.IsActive {
		entry.WithChange("isActive", wasActive, u.IsActive)
	}
	appaudit.Write(ctx, s.auditRepo, s.logger, entry)

	resp := ToUserResponse(u)
	return &resp, nil
}

// Delete removes an account. Users cannot delete themselves nor the last admin.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	if actor != nil && *actor == id {
		return identity.ErrSelfDelete
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role.IsAdmin() && u.IsActive {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUser(ctx, id.String(), s.sessionTTL); err != nil {
		s.logger.Error("failed to revoke sessions", zap.String("user_id", id.String()), zap.Error(err))
	}
	appaudit.Write(ctx, s.auditRepo, s.logger,
		audit.New(audit.ActionDelete, audit.EntityUser, &id, "Utilisateur "+u.Email+" supprimé").
			Classify(audit.CategorySystem, audit.SeverityWarning).
			By(actor))
	return nil
}

func (s *UserService) ensureAnotherAdmin(ctx context.Context) error {
	n, err := s.users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return identity.ErrLastAdmin
	}
	return nil
}

// NotificationRecipients returns the active users that receive staff notifications
func (s *UserService) NotificationRecipients(ctx context.Context) ([]uuid.UUID, error) {
	users, err := s.users.FindActiveByRoles(ctx, identity.RoleAdmin, identity.RoleManager)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// EnsureAdmin creates the first administrator when no user exists
func (s *UserService) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	n, err := s.users.CountActiveAdmins(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 || email == "" {
		return false, nil
	}
	_, err = s.Create(ctx, CreateUserRequest{Email: email, Password: password, Name: name, Role: string(identity.RoleAdmin)}, nil)
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap administrator created", zap.String("email", email))
	return true, nil
}
